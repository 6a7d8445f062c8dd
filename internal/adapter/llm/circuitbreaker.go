package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"krishi-ai/internal/domain"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// CircuitBreakerGenerator wraps a TextGenerator with circuit breaker
// protection. When the wrapped generator fails repeatedly, the circuit
// opens and subsequent calls fail fast without reaching the remote API.
type CircuitBreakerGenerator struct {
	inner   domain.TextGenerator
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
}

// NewCircuitBreakerGenerator wraps inner with a circuit breaker using
// default settings.
func NewCircuitBreakerGenerator(inner domain.TextGenerator, logger *slog.Logger) *CircuitBreakerGenerator {
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "llm:" + inner.Name(),
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    defaultCBInterval,
		Timeout:     defaultCBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= defaultCBMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &CircuitBreakerGenerator{inner: inner, breaker: cb, logger: logger}
}

func (g *CircuitBreakerGenerator) Name() string { return g.inner.Name() }

// Generate routes the call through the circuit breaker.
func (g *CircuitBreakerGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.breaker.Execute(func() (string, error) {
		return g.inner.Generate(ctx, prompt)
	})
}
