package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"krishi-ai/internal/domain"
)

// Recorder persists the outcome of one pipeline run: the managed
// conversation history inside the user context, the rolling turn log, and
// salient fields extracted from response metadata. Recording is
// best-effort; persistence failures are logged and swallowed so the
// user-visible reply is unaffected.
type Recorder struct {
	store  domain.ContextStore
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(store domain.ContextStore, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger, now: time.Now}
}

// Record appends the turn, extracts metadata into the context, and persists
// both records under their own TTL tiers. The returned outcome reports
// whether any persistence step degraded.
func (r *Recorder) Record(ctx context.Context, userID, sessionID, query string, resp *domain.AgentResponse, uc *domain.UserContext) domain.Outcome[struct{}] {
	uc.AppendExchange(query, resp.Response)
	r.extractMetadata(resp.Metadata, uc)

	degradedReason := ""

	turn := domain.ConversationTurn{
		ID:         ulid.Make().String(),
		Query:      query,
		Response:   resp.Response,
		AgentName:  resp.AgentName,
		Confidence: resp.Confidence,
		Timestamp:  r.now(),
	}
	if err := r.store.AppendTurn(ctx, userID, sessionID, turn, domain.MaxLogEntries, domain.ConversationLogTTL); err != nil {
		r.logger.Error("conversation log append failed", "user_id", userID, "error", err)
		degradedReason = "turn log: " + err.Error()
	}

	if err := r.store.SaveContext(ctx, userID, uc, domain.UserContextTTL); err != nil {
		r.logger.Error("context save failed", "user_id", userID, "error", err)
		if degradedReason != "" {
			degradedReason += "; "
		}
		degradedReason += "context: " + err.Error()
	} else {
		// Last-write-wins on overlapping requests for the same user; this
		// line makes competing saves observable.
		r.logger.Debug("context saved", "user_id", userID,
			"history_len", len(uc.ConversationHistory))
	}

	// Narrow per-agent snapshot on its own 24-hour tier, separate from the
	// durable context record.
	snapshot := map[string]any{
		"last_agent": resp.AgentName,
		"last_seen":  turn.Timestamp.UTC().Format(time.RFC3339),
	}
	if intent, ok := resp.Metadata[domain.MetaPrimaryIntent].(string); ok {
		snapshot["last_intent"] = intent
	}
	if uc.Location != "" {
		snapshot[domain.MetaLocation] = uc.Location
	}
	if err := r.store.SaveAgentMemory(ctx, userID, snapshot, domain.AgentMemoryTTL); err != nil {
		r.logger.Error("agent memory save failed", "user_id", userID, "error", err)
		if degradedReason != "" {
			degradedReason += "; "
		}
		degradedReason += "agent memory: " + err.Error()
	}

	if degradedReason != "" {
		return domain.Degraded(struct{}{}, degradedReason)
	}
	return domain.Ok(struct{}{})
}

// extractMetadata copies well-known responder metadata back into the user
// context before it is persisted.
func (r *Recorder) extractMetadata(metadata map[string]any, uc *domain.UserContext) {
	if metadata == nil {
		return
	}
	if loc, ok := metadata[domain.MetaLocation].(string); ok && loc != "" {
		uc.Location = loc
	}
	if com, ok := metadata[domain.MetaCommodity].(string); ok && com != "" {
		uc.LastCommodity = com
	}
	switch crops := metadata[domain.MetaCropTypes].(type) {
	case []string:
		if len(crops) > 0 {
			uc.CropInterests = crops
		}
	case []any:
		var out []string
		for _, c := range crops {
			if s, ok := c.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			uc.CropInterests = out
		}
	}
}
