package usecase

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"krishi-ai/internal/domain"
)

// FallbackCapability is the single universal default responder for
// unmapped intents and configuration gaps.
const FallbackCapability = "crop_advisory"

// Registry holds all registered responders keyed by capability name.
type Registry struct {
	mu         sync.RWMutex
	responders map[string]domain.Responder
	logger     *slog.Logger
}

// NewRegistry creates an empty responder registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		responders: make(map[string]domain.Responder),
		logger:     logger,
	}
}

// Register adds a responder under the given capability name.
func (r *Registry) Register(capability string, resp domain.Responder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responders[capability] = resp
	r.logger.Info("responder registered", "capability", capability, "name", resp.Name())
}

// Get returns the responder for the capability, or ErrNotFound.
func (r *Registry) Get(capability string) (domain.Responder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	resp, ok := r.responders[capability]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return resp, nil
}

// List returns a status snapshot for every registered responder, sorted by
// capability name.
func (r *Registry) List() []domain.ResponderStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]domain.ResponderStatus, 0, len(r.responders))
	for cap, resp := range r.responders {
		statuses = append(statuses, domain.ResponderStatus{
			ID:           cap,
			Name:         resp.Name(),
			Description:  resp.Description(),
			Capabilities: resp.Capabilities(),
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].ID < statuses[j].ID })
	return statuses
}

// HealthCheck probes every responder with a canned query and reports
// per-capability health.
func (r *Registry) HealthCheck(ctx context.Context) map[string]string {
	r.mu.RLock()
	caps := make(map[string]domain.Responder, len(r.responders))
	for cap, resp := range r.responders {
		caps[cap] = resp
	}
	r.mu.RUnlock()

	health := make(map[string]string, len(caps))
	for cap, resp := range caps {
		if _, err := resp.Process(ctx, "health check", domain.NewUserContext()); err != nil {
			health[cap] = "error: " + err.Error()
		} else {
			health[cap] = "healthy"
		}
	}
	return health
}

// DefaultRoutes returns the static intent-to-capability map. Translation is
// deliberately absent: it is selectable only by explicit caller request.
func DefaultRoutes() map[domain.Intent]string {
	return map[domain.Intent]string{
		domain.IntentCropAdvisory: "crop_advisory",
		domain.IntentSoilAnalysis: "soil_analysis",
		domain.IntentWeather:      "weather",
		domain.IntentIrrigation:   "irrigation_planning",
		domain.IntentPestDisease:  "pest_disease",
		domain.IntentMarket:       "market_intelligence",
		domain.IntentFinancial:    "financial_planning",
		domain.IntentPolicy:       "policy_query",
		domain.IntentGeneral:      "crop_advisory",
	}
}

// Router resolves an intent to a responder. Unknown intents and capability
// gaps fall back to the crop advisory responder.
type Router struct {
	registry *Registry
	routes   map[domain.Intent]string
	logger   *slog.Logger
}

// NewRouter creates a router over the registry using the given routes.
func NewRouter(registry *Registry, routes map[domain.Intent]string, logger *slog.Logger) *Router {
	return &Router{registry: registry, routes: routes, logger: logger}
}

// Resolve picks the responder for the intent. A non-empty TargetLanguage in
// the overrides selects the translation capability regardless of intent.
// Returns the chosen responder and its capability name.
func (r *Router) Resolve(intent domain.Intent, overrides *domain.ContextOverrides) (domain.Responder, string, error) {
	capability := ""
	if overrides != nil && overrides.TargetLanguage != "" {
		capability = "translation"
	} else if mapped, ok := r.routes[intent]; ok {
		capability = mapped
	} else {
		capability = FallbackCapability
	}

	resp, err := r.registry.Get(capability)
	if err != nil {
		r.logger.Warn("capability not registered, using fallback",
			"capability", capability, "fallback", FallbackCapability)
		capability = FallbackCapability
		resp, err = r.registry.Get(capability)
		if err != nil {
			return nil, "", domain.NewDomainError("Router.Resolve", domain.ErrNotFound,
				"fallback responder not registered")
		}
	}

	r.logger.Debug("intent routed", "intent", string(intent), "capability", capability)
	return resp, capability, nil
}
