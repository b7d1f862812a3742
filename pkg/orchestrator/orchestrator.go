package orchestrator

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/jordigilh/omnisearch-orchestrator/internal/clock"
	"github.com/jordigilh/omnisearch-orchestrator/internal/config"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/health"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/query"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/searcher"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/state"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/tracker"
)

// Orchestrator is an injected-context struct: every entry point takes
// one explicit instance rather than relying on process-wide
// singletons, so tests can stand up an isolated instance.
type Orchestrator struct {
	cfgMu sync.RWMutex
	cfg   *config.Config

	registry *searcher.Registry
	health   *health.Manager
	tracker  *tracker.Tracker
	stateMgr *state.Manager
	clock    clock.Clock
	log      *logrus.Logger

	breakersMu sync.Mutex
	breakers   map[string]*gobreaker.CircuitBreaker[[]searcher.Result]
}

// New wires a fully configured Orchestrator from its subsystems.
// stateMgr may be nil, in which case no snapshot is ever scheduled.
func New(cfg *config.Config, registry *searcher.Registry, h *health.Manager, t *tracker.Tracker, stateMgr *state.Manager, clk clock.Clock, log *logrus.Logger) *Orchestrator {
	if log == nil {
		log = logrus.New()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Orchestrator{
		cfg:      cfg,
		registry: registry,
		health:   h,
		tracker:  t,
		stateMgr: stateMgr,
		clock:    clk,
		log:      log,
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]searcher.Result]),
	}
}

// breakerFor returns provider's lazily created inner fast-fail breaker,
// layered over the Health state machine. It trips on the same
// consecutive-failure threshold Health uses, but reacts within a
// single dispatch loop instead of waiting on the next RecordFailure
// call to update Health's own CircuitBreakerOpen flag.
func (o *Orchestrator) breakerFor(provider string) *gobreaker.CircuitBreaker[[]searcher.Result] {
	o.breakersMu.Lock()
	defer o.breakersMu.Unlock()
	if b, ok := o.breakers[provider]; ok {
		return b
	}
	b := health.NewBreaker[[]searcher.Result](o.health, provider)
	o.breakers[provider] = b
	return b
}

// configSnapshot returns a shallow copy of the live configuration for
// read-only use during one dispatch; slices/maps inside it are shared
// with the live config and must not be mutated by callers.
func (o *Orchestrator) configSnapshot() config.Config {
	o.cfgMu.RLock()
	defer o.cfgMu.RUnlock()
	return *o.cfg
}

// priorityOrderFor returns cfg's configured priority order for category,
// falling back to the static registry's registration order when no
// explicit order has been configured.
func (o *Orchestrator) priorityOrderFor(category string, cfg *config.Config) []string {
	var configured []string
	switch category {
	case categoryAIResponse:
		configured = cfg.AIProviderOrder
	default:
		configured = cfg.ProviderOrder
	}
	if len(configured) > 0 {
		return configured
	}
	return o.registry.Names(category)
}

// descriptorsFor returns the static capability descriptors registered
// under category.
func descriptorsFor(category string) map[string]query.Descriptor {
	out := make(map[string]query.Descriptor)
	for name, d := range query.StaticDescriptors {
		if d.Category == category {
			out[name] = d
		}
	}
	return out
}

func uniqueNames(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lists {
		for _, name := range l {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func containsString(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}
