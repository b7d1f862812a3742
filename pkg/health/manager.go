package health

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jordigilh/omnisearch-orchestrator/internal/clock"
	searcherrors "github.com/jordigilh/omnisearch-orchestrator/internal/errors"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/shared/logging"
)

const (
	rateLimitCooldown      = 1 * time.Hour
	creditExhaustedCooldown = 24 * time.Hour
)

// Manager owns every provider's Health record behind a single coarse
// lock: every field mutation is serialized through it.
type Manager struct {
	mu        sync.Mutex
	clock     clock.Clock
	threshold int
	timeoutMs int
	records   map[string]*Health
	onMutate  func()
	log       *logrus.Logger
}

// NewManager returns a Manager using clk as its time source.
// onMutate, if non-nil, is invoked after every state change so the
// caller can schedule a throttled snapshot save.
func NewManager(clk clock.Clock, breakerThreshold, breakerTimeoutMs int, log *logrus.Logger, onMutate func()) *Manager {
	if log == nil {
		log = logrus.New()
	}
	return &Manager{
		clock:     clk,
		threshold: breakerThreshold,
		timeoutMs: breakerTimeoutMs,
		records:   make(map[string]*Health),
		onMutate:  onMutate,
		log:       log,
	}
}

// Threshold returns the configured consecutive-failure breaker threshold.
func (m *Manager) Threshold() int { return m.threshold }

// TimeoutDuration returns the configured breaker-open duration.
func (m *Manager) TimeoutDuration() time.Duration {
	return time.Duration(m.timeoutMs) * time.Millisecond
}

func (m *Manager) recordFor(provider string) *Health {
	h, ok := m.records[provider]
	if !ok {
		h = newHealth()
		m.records[provider] = h
	}
	return h
}

// IsAvailable reports whether provider may be dispatched to right now,
// applying lazy expiry as a side effect.
func (m *Manager) IsAvailable(provider string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recordFor(provider).isAvailable(m.clock.Now())
}

// Snapshot returns a copy of provider's current health record.
func (m *Manager) Snapshot(provider string) Health {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.recordFor(provider)
	h.expire(m.clock.Now())
	return *h
}

// RecordSuccess transitions provider to the all-clear state.
func (m *Manager) RecordSuccess(provider string) {
	m.mu.Lock()
	m.recordFor(provider).recordSuccess(m.clock.Now())
	m.mu.Unlock()
	m.notify()
}

// RecordFailure classifies err and applies the matching state
// transition. serverResetTime, if non-nil, overrides the default
// cooldown window for RATE_LIMIT outcomes.
func (m *Manager) RecordFailure(provider string, err *searcherrors.SearchError, serverResetTime *time.Time) {
	classified := searcherrors.Classify(err)
	now := m.clock.Now()

	m.mu.Lock()
	h := m.recordFor(provider)
	h.LastError = &ErrorInfo{Kind: classified.Type, Message: classified.Message, Details: classified.Details}

	switch classified.Type {
	case searcherrors.ErrorTypeRateLimit:
		reset := now.Add(rateLimitCooldown)
		if serverResetTime != nil {
			reset = *serverResetTime
		}
		h.RateLimitedUntil = &reset
		h.Available = false

	case searcherrors.ErrorTypeCreditExhausted, searcherrors.ErrorTypeQuotaExceeded:
		reset := now.Add(creditExhaustedCooldown)
		h.RateLimitedUntil = &reset
		h.Available = false

	case searcherrors.ErrorTypeAuthentication:
		h.Available = false

	default: // PROVIDER_ERROR, TIMEOUT, API_ERROR already reclassified above
		h.FailureCount++
		if h.FailureCount >= m.threshold {
			openUntil := now.Add(m.TimeoutDuration())
			h.CircuitBreakerOpen = true
			h.CircuitBreakerOpenUntil = &openUntil
			h.Available = false
		}
	}
	m.mu.Unlock()

	m.log.WithFields(logging.ProviderFields("record_failure", provider).
		Custom("error_type", string(classified.Type)).ToLogrus()).Warn("provider attempt failed")
	m.notify()
}

// Seed replaces the manager's in-memory records with records restored
// from a persisted snapshot at startup. It must only be called before
// the manager is shared with any dispatcher.
func (m *Manager) Seed(records map[string]Health) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, h := range records {
		copied := h
		m.records[name] = &copied
	}
}

// Reset manually clears provider's failure state.
func (m *Manager) Reset(provider string) {
	m.mu.Lock()
	m.recordFor(provider).reset()
	m.mu.Unlock()
	m.notify()
}

// AvailableSet returns priorityOrder filtered to providers that are
// both enabled (per isEnabled) and currently available.
func (m *Manager) AvailableSet(priorityOrder []string, isEnabled func(string) bool) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()

	var available []string
	for _, name := range priorityOrder {
		if isEnabled != nil && !isEnabled(name) {
			continue
		}
		if m.recordFor(name).isAvailable(now) {
			available = append(available, name)
		}
	}
	return available
}

func (m *Manager) notify() {
	if m.onMutate != nil {
		m.onMutate()
	}
}
