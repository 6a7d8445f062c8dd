package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"krishi-ai/internal/domain"
	"krishi-ai/internal/infra/tracer"
)

// State names one stage of the per-query pipeline.
type State string

const (
	StateReceived      State = "RECEIVED"
	StateClassified    State = "CLASSIFIED"
	StateContextLoaded State = "CONTEXT_LOADED"
	StateRouted        State = "ROUTED"
	StateResponded     State = "RESPONDED"
	StateEnhanced      State = "ENHANCED"
	StateRecorded      State = "RECORDED"
	StateDone          State = "DONE"
	StateFailed        State = "FAILED"
)

// SystemAgentName identifies the fixed fallback reply emitted when a
// responder fails.
const SystemAgentName = "System"

// Pipeline runs one query through classification, context load, routing,
// enhancement, and recording. A single request is strictly sequential; the
// only yield points are the store calls and the responder invocation.
type Pipeline struct {
	classifier *Classifier
	store      domain.ContextStore
	router     *Router
	enhancer   *Enhancer
	recorder   *Recorder
	logger     *slog.Logger
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(classifier *Classifier, store domain.ContextStore, router *Router, enhancer *Enhancer, recorder *Recorder, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		store:      store,
		router:     router,
		enhancer:   enhancer,
		recorder:   recorder,
		logger:     logger,
	}
}

// Process runs the full pipeline for one query. It always returns a valid
// AgentResponse: responder failures degrade to a fixed low-confidence
// system reply, and auxiliary failures (context load, persistence) degrade
// silently.
func (p *Pipeline) Process(ctx context.Context, q domain.Query) *domain.AgentResponse {
	ctx, span := tracer.StartSpan(ctx, "pipeline.process")
	defer span.End()
	span.SetAttributes(tracer.StringAttr("user_id", q.UserID))

	state := StateReceived

	cls := p.classifier.Classify(q.Text)
	state = p.advance(state, StateClassified, q.UserID,
		"intent", string(cls.PrimaryIntent), "confidence", cls.Confidence)

	load := p.loadContext(ctx, q.UserID)
	uc := load.Value
	if load.Degraded {
		p.logger.Warn("context load degraded, using empty context",
			"user_id", q.UserID, "reason", load.Reason)
	}
	uc.Apply(q.Overrides)
	if uc.ConversationHistory == nil {
		uc.ConversationHistory = []domain.Exchange{}
	}
	p.attachAgentMemory(ctx, q.UserID, uc)
	state = p.advance(state, StateContextLoaded, q.UserID, "degraded", load.Degraded)

	responder, capability, err := p.router.Resolve(cls.PrimaryIntent, q.Overrides)
	if err != nil {
		return p.fail(state, q.UserID, err)
	}
	state = p.advance(state, StateRouted, q.UserID, "capability", capability)

	rctx, rspan := tracer.StartSpan(ctx, "responder.process")
	rspan.SetAttributes(tracer.StringAttr("capability", capability))
	resp, err := responder.Process(rctx, q.Text, uc)
	if err != nil {
		tracer.RecordError(rspan, err)
		rspan.End()
		return p.fail(state, q.UserID,
			domain.NewDomainError("Pipeline.Process", domain.ErrResponderFailed, err.Error()))
	}
	tracer.SetOK(rspan)
	rspan.End()
	state = p.advance(state, StateResponded, q.UserID, "agent", resp.AgentName)

	enhanced := p.enhancer.Enhance(resp, cls, uc)
	state = p.advance(state, StateEnhanced, q.UserID)

	if out := p.recorder.Record(ctx, q.UserID, q.SessionID, q.Text, enhanced, uc); out.Degraded {
		p.logger.Warn("recording degraded", "user_id", q.UserID, "reason", out.Reason)
	}
	state = p.advance(state, StateRecorded, q.UserID)

	p.advance(state, StateDone, q.UserID)
	tracer.SetOK(span)
	return enhanced
}

// loadContext wraps the store read in an Ok/Degraded outcome. A missing
// record is a clean empty context; read or decode failures substitute an
// empty context and mark the outcome degraded.
func (p *Pipeline) loadContext(ctx context.Context, userID string) domain.Outcome[*domain.UserContext] {
	sctx, span := tracer.StartSpan(ctx, "context.load")
	defer span.End()

	uc, err := p.store.LoadContext(sctx, userID)
	if err != nil {
		tracer.RecordError(span, err)
		return domain.Degraded(domain.NewUserContext(), err.Error())
	}
	if uc == nil {
		uc = domain.NewUserContext()
	}
	return domain.Ok(uc)
}

// attachAgentMemory exposes the 24-hour agent memory snapshot to responders
// under the context's extension area. Best-effort.
func (p *Pipeline) attachAgentMemory(ctx context.Context, userID string, uc *domain.UserContext) {
	mem, err := p.store.LoadAgentMemory(ctx, userID)
	if err != nil {
		p.logger.Debug("agent memory load failed", "user_id", userID, "error", err)
		return
	}
	if len(mem) == 0 {
		return
	}
	if uc.Extra == nil {
		uc.Extra = make(map[string]any)
	}
	uc.Extra["agent_memory"] = mem
}

func (p *Pipeline) advance(from, to State, userID string, attrs ...any) State {
	args := append([]any{"from", string(from), "to", string(to), "user_id", userID}, attrs...)
	p.logger.Debug("pipeline state", args...)
	return to
}

// fail converts a responder or routing error into the fixed-shape system
// reply. The error is surfaced as a degraded-but-successful response, never
// as a hard failure to the caller.
func (p *Pipeline) fail(state State, userID string, err error) *domain.AgentResponse {
	p.advance(state, StateFailed, userID, "error", err.Error())
	p.logger.Error("pipeline failed", "user_id", userID, "state", string(state), "error", err)
	return &domain.AgentResponse{
		AgentName: SystemAgentName,
		Response: fmt.Sprintf("I encountered an error while processing your query. "+
			"Please try again or rephrase your question. Error: %s", err.Error()),
		Confidence: 0.1,
		Metadata: map[string]any{
			"error":    err.Error(),
			"fallback": true,
		},
	}
}
