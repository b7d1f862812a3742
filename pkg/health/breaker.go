package health

import (
	"github.com/sony/gobreaker"
)

// NewBreaker returns a sony/gobreaker circuit breaker for provider,
// configured to trip on the same consecutive-failure threshold as m's
// own Health state machine. It is an inner fast-fail layer: Health
// remains the source of truth for availability (it alone supports the
// injectable clock and exact consecutive-count semantics), but a
// tripped breaker short-circuits a dispatch attempt without waiting on
// a slow provider that is already failing.
func NewBreaker[T any](m *Manager, provider string) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name: provider,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(m.Threshold())
		},
		Timeout: m.TimeoutDuration(),
	})
}
