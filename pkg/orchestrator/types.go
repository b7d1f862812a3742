// Package orchestrator implements the search orchestrator: it combines
// the query analyzer's recommendation with the performance tracker's
// adaptive ranking, dispatches to providers with per-attempt timeout
// and bounded retries, falls back through alternates on failure, and
// records every outcome into health and performance state. It is the
// one component that ties query, health, tracker, state, and config
// together behind the tool surface.
package orchestrator

import (
	"github.com/jordigilh/omnisearch-orchestrator/internal/config"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/health"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/query"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/searcher"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/tracker"
)

const (
	categorySearch     = "search"
	categoryAIResponse = "ai_response"
)

// UnifiedResult is the result envelope returned by both UnifiedSearch
// and UnifiedAISearch.
type UnifiedResult struct {
	Results          []searcher.Result  `json:"results"`
	ProviderUsed     string              `json:"provider_used"`
	FallbackAttempts []string            `json:"fallback_attempts"`
	TotalTimeMs      int64               `json:"total_time_ms"`
	Success          bool                `json:"success"`
	Error            string              `json:"error,omitempty"`
	QueryAnalysis    *QueryAnalysisInfo  `json:"query_analysis,omitempty"`
	RequestID        string              `json:"request_id"`
}

// QueryAnalysisInfo is the abbreviated analyzer summary attached to a
// successful UnifiedResult.
type QueryAnalysisInfo struct {
	Type                 query.Type `json:"type"`
	RecommendedProvider  string     `json:"recommended_provider"`
	Confidence           int        `json:"confidence"`
	Reasoning            string     `json:"reasoning"`
}

// ProviderHealthView is the response shape for the provider_health tool.
type ProviderHealthView struct {
	Providers            map[string]health.Health `json:"providers"`
	AvailableSearch      []string                 `json:"available_search"`
	AvailableAIResponse  []string                 `json:"available_ai_response"`
}

// ConfigureRequest is the request shape accepted by configure_providers.
// Category selects which priority order ProviderOrder applies to; it
// defaults to the search category when empty.
type ConfigureRequest struct {
	ProviderOrder     []string
	DisabledProviders []string
	FallbackEnabled   *bool
	Category          string
}

// ProviderConfigView is the response shape for get_provider_config.
type ProviderConfigView struct {
	Configuration   config.Config            `json:"configuration"`
	ProviderHealth  map[string]health.Health `json:"provider_health"`
	SearchOrder     []string                 `json:"search_order"`
	AIResponseOrder []string                 `json:"ai_response_order"`
}

// QueryAnalysisView is the response shape for analyze_query.
type QueryAnalysisView struct {
	Query          string                `json:"query"`
	Analysis       query.Characteristics `json:"analysis"`
	Recommendation query.Recommendation  `json:"recommendation"`
	ProviderScores []query.Scored        `json:"provider_scores"`
}

// PerformanceInsightsView is the response shape for performance_insights.
type PerformanceInsightsView struct {
	Insights           tracker.Insights            `json:"insights"`
	ProviderStatistics map[string]tracker.Aggregate `json:"provider_statistics"`
	DetailedExport     []tracker.Record            `json:"detailed_export"`
}
