package orchestrator

import (
	"fmt"

	"github.com/jordigilh/omnisearch-orchestrator/internal/config"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/health"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/query"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/tracker"
)

// ProviderHealth reports every known provider's health record plus the
// currently available set for each category.
func (o *Orchestrator) ProviderHealth() ProviderHealthView {
	cfg := o.configSnapshot()
	searchOrder := o.priorityOrderFor(categorySearch, &cfg)
	aiOrder := o.priorityOrderFor(categoryAIResponse, &cfg)

	providers := make(map[string]health.Health)
	for _, name := range uniqueNames(searchOrder, aiOrder) {
		providers[name] = o.health.Snapshot(name)
	}

	return ProviderHealthView{
		Providers:           providers,
		AvailableSearch:     o.health.AvailableSet(searchOrder, cfg.IsEnabled),
		AvailableAIResponse: o.health.AvailableSet(aiOrder, cfg.IsEnabled),
	}
}

// ResetProviderHealth manually clears provider's failure state.
func (o *Orchestrator) ResetProviderHealth(provider string) {
	o.health.Reset(provider)
}

// ConfigureProviders applies a configuration mutation directly to the
// live config under lock, then schedules a snapshot save so the
// override persists across restarts.
func (o *Orchestrator) ConfigureProviders(req ConfigureRequest) {
	o.cfgMu.Lock()
	if req.ProviderOrder != nil {
		if req.Category == categoryAIResponse {
			o.cfg.AIProviderOrder = req.ProviderOrder
		} else {
			o.cfg.ProviderOrder = req.ProviderOrder
		}
	}
	if req.DisabledProviders != nil {
		o.cfg.DisabledProviders = req.DisabledProviders
	}
	if req.FallbackEnabled != nil {
		o.cfg.FallbackEnabled = *req.FallbackEnabled
	}
	o.cfgMu.Unlock()

	if o.stateMgr != nil {
		o.stateMgr.ScheduleSave()
	}
}

// GetProviderConfig returns the live configuration plus every
// configured provider's health and priority order.
func (o *Orchestrator) GetProviderConfig() ProviderConfigView {
	cfg := o.configSnapshot()
	searchOrder := o.priorityOrderFor(categorySearch, &cfg)
	aiOrder := o.priorityOrderFor(categoryAIResponse, &cfg)

	providerHealth := make(map[string]health.Health)
	for _, name := range uniqueNames(searchOrder, aiOrder) {
		providerHealth[name] = o.health.Snapshot(name)
	}

	return ProviderConfigView{
		Configuration:   cfg,
		ProviderHealth:  providerHealth,
		SearchOrder:     searchOrder,
		AIResponseOrder: aiOrder,
	}
}

// AnalyzeQuery runs the analyzer and static-capability scoring over the
// currently available search providers without dispatching anything.
func (o *Orchestrator) AnalyzeQuery(q string) QueryAnalysisView {
	c := query.Analyze(q)
	cfg := o.configSnapshot()
	candidates := o.health.AvailableSet(o.priorityOrderFor(categorySearch, &cfg), cfg.IsEnabled)
	descriptors := descriptorsFor(categorySearch)

	return QueryAnalysisView{
		Query:          q,
		Analysis:       c,
		Recommendation: query.Recommend(c, descriptors, candidates),
		ProviderScores: query.Score(c, descriptors, candidates),
	}
}

// PerformanceInsights summarizes tracked performance across every
// configured provider.
func (o *Orchestrator) PerformanceInsights() PerformanceInsightsView {
	cfg := o.configSnapshot()
	candidates := uniqueNames(o.priorityOrderFor(categorySearch, &cfg), o.priorityOrderFor(categoryAIResponse, &cfg))

	stats := make(map[string]tracker.Aggregate)
	for _, name := range candidates {
		if agg, ok := o.tracker.Aggregate(name); ok {
			stats[name] = agg
		}
	}

	return PerformanceInsightsView{
		Insights:           o.tracker.Insights(candidates),
		ProviderStatistics: stats,
		DetailedExport:     o.tracker.History(),
	}
}

// GetMode returns the configured front-end mode.
func (o *Orchestrator) GetMode() config.Mode {
	o.cfgMu.RLock()
	defer o.cfgMu.RUnlock()
	return o.cfg.Mode
}

// SetMode updates the front-end mode, rejecting any value outside the
// closed {direct, unified} set.
func (o *Orchestrator) SetMode(m config.Mode) error {
	if m != config.ModeDirect && m != config.ModeUnified {
		return fmt.Errorf("unsupported mode %q", m)
	}
	o.cfgMu.Lock()
	o.cfg.Mode = m
	o.cfgMu.Unlock()

	if o.stateMgr != nil {
		o.stateMgr.ScheduleSave()
	}
	return nil
}
