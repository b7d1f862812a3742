// Package health implements the per-provider circuit breaker and
// cooldown state machine: lazy-expiring availability, rate-limit and
// credit-exhaustion cooldowns, and a consecutive-failure breaker
// layered with a sony/gobreaker fast-fail guard.
package health

import (
	"time"

	searcherrors "github.com/jordigilh/omnisearch-orchestrator/internal/errors"
)

// failureResetWindow: a provider's failure_count is halved if its last
// success was within this window.
const failureResetWindow = 30 * time.Minute

// ErrorInfo is the last classified failure recorded for a provider.
type ErrorInfo struct {
	Kind    searcherrors.ErrorType
	Message string
	Details string
}

// Health is one provider's mutable health record.
type Health struct {
	Available               bool
	FailureCount            int
	LastSuccess             *time.Time
	LastError               *ErrorInfo
	RateLimitedUntil        *time.Time
	CircuitBreakerOpen      bool
	CircuitBreakerOpenUntil *time.Time
}

// newHealth returns the health record of a provider seen for the
// first time: available, with no failure history.
func newHealth() *Health {
	return &Health{Available: true}
}

// expire applies lazy-expiry rules as of now, mutating h in place. It
// must run before every availability read.
func (h *Health) expire(now time.Time) {
	if h.RateLimitedUntil != nil && !now.Before(*h.RateLimitedUntil) {
		h.RateLimitedUntil = nil
		h.Available = true
	}
	if h.CircuitBreakerOpenUntil != nil && !now.Before(*h.CircuitBreakerOpenUntil) {
		h.CircuitBreakerOpen = false
		h.CircuitBreakerOpenUntil = nil
		h.FailureCount = 0
		h.Available = true
	}
	if h.LastSuccess != nil && now.Sub(*h.LastSuccess) <= failureResetWindow {
		h.FailureCount /= 2
	}
}

// isAvailable reports whether h is usable right now:
// available ∧ ¬circuit_breaker_open ∧ (rate_limited_until = ∅ ∨ rate_limited_until ≤ now).
func (h *Health) isAvailable(now time.Time) bool {
	h.expire(now)
	if !h.Available || h.CircuitBreakerOpen {
		return false
	}
	if h.RateLimitedUntil != nil && now.Before(*h.RateLimitedUntil) {
		return false
	}
	return true
}

// recordSuccess clears all failure state.
func (h *Health) recordSuccess(now time.Time) {
	h.LastError = nil
	h.RateLimitedUntil = nil
	h.CircuitBreakerOpen = false
	h.CircuitBreakerOpenUntil = nil
	h.FailureCount = 0
	h.Available = true
	h.LastSuccess = &now
}

// reset clears all failure state without requiring a success outcome.
func (h *Health) reset() {
	h.LastError = nil
	h.RateLimitedUntil = nil
	h.CircuitBreakerOpen = false
	h.CircuitBreakerOpenUntil = nil
	h.FailureCount = 0
	h.Available = true
}
