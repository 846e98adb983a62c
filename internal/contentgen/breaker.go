package contentgen

import (
	"context"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/heartmarshall/myenglish-backend/internal/config"
	"github.com/heartmarshall/myenglish-backend/internal/domain"
)

// BreakerSettings configures the circuit breaker guarding a Generator.
type BreakerSettings = gobreaker.Settings

// NewBreakerSettings builds gobreaker settings from config.ContentGenConfig,
// tripping after FailureThreshold consecutive failures, same shape as the
// pack's own circuit breaker config (name, max half-open requests, reset
// interval, open-state timeout, consecutive-failure threshold).
func NewBreakerSettings(name string, cfg config.ContentGenConfig) BreakerSettings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailureThreshold
		},
	}
}

// CircuitBreakerGenerator decorates a Generator so a flaky external
// generator cannot cascade into review-session latency: once it trips, calls
// fail fast with gobreaker.ErrOpenState instead of blocking on the
// underlying client (spec §1: "the only blocking points are storage
// reads/writes and outbound calls to the external content generator").
type CircuitBreakerGenerator struct {
	next Generator
	cb   *gobreaker.CircuitBreaker[domain.Item]
}

// NewCircuitBreakerGenerator wraps next with a circuit breaker configured by
// settings.
func NewCircuitBreakerGenerator(next Generator, settings BreakerSettings) *CircuitBreakerGenerator {
	return &CircuitBreakerGenerator{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[domain.Item](settings),
	}
}

// GenerateSentenceItem implements Generator.
func (g *CircuitBreakerGenerator) GenerateSentenceItem(ctx context.Context, req GenerateRequest) (domain.Item, error) {
	return g.cb.Execute(func() (domain.Item, error) {
		return g.next.GenerateSentenceItem(ctx, req)
	})
}

// State reports the breaker's current state, for health/metrics reporting.
func (g *CircuitBreakerGenerator) State() gobreaker.State {
	return g.cb.State()
}

var _ Generator = (*CircuitBreakerGenerator)(nil)
