package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jordigilh/omnisearch-orchestrator/internal/config"
	searcherrors "github.com/jordigilh/omnisearch-orchestrator/internal/errors"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/metrics"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/query"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/searcher"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/shared/logging"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/tracker"
)

// UnifiedSearch dispatches a search-category query: it classifies the
// query, combines the analyzer's recommendation with adaptive ranking,
// and falls back through the ranked provider list until one succeeds
// or the list is exhausted.
func (o *Orchestrator) UnifiedSearch(ctx context.Context, q string, limit int, includeDomains, excludeDomains []string) UnifiedResult {
	characteristics := query.Analyze(q)
	params := searcher.Params{Query: q, Limit: clampLimit(limit), IncludeDomains: includeDomains, ExcludeDomains: excludeDomains}
	return o.dispatch(ctx, categorySearch, characteristics, true, params)
}

// UnifiedAISearch dispatches an ai_response-category query using the
// same dispatch/fallback machinery, but never consults the analyzer's
// recommendation — only adaptive ranking and configured priority order
// decide dispatch order.
func (o *Orchestrator) UnifiedAISearch(ctx context.Context, q string, limit int, includeDomains, excludeDomains []string) UnifiedResult {
	characteristics := query.Analyze(q)
	params := searcher.Params{Query: q, Limit: clampLimit(limit), IncludeDomains: includeDomains, ExcludeDomains: excludeDomains}
	return o.dispatch(ctx, categoryAIResponse, characteristics, false, params)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 10
	case limit > 50:
		return 50
	default:
		return limit
	}
}

func (o *Orchestrator) dispatch(ctx context.Context, category string, c query.Characteristics, useRecommendation bool, params searcher.Params) UnifiedResult {
	start := time.Now()
	requestID := uuid.NewString()
	cfg := o.configSnapshot()

	priorityOrder := o.priorityOrderFor(category, &cfg)
	available := o.health.AvailableSet(priorityOrder, cfg.IsEnabled)

	var recommendation query.Recommendation
	if useRecommendation {
		recommendation = query.Recommend(c, descriptorsFor(category), available)
	}
	adaptive := o.tracker.AdaptiveRank(c, available)
	order := combinedRanking(recommendation, adaptive, available)

	log := o.log.WithFields(logging.NewFields().Component("orchestrator").Operation("dispatch").
		RequestID(requestID).Custom("category", category).ToLogrus())

	var attempts []string
	for i, name := range order {
		if i > 0 {
			if err := o.sleep(ctx, cfg.FallbackDelayMs); err != nil {
				return o.finish(UnifiedResult{
					Success:          false,
					Error:            "cancelled",
					FallbackAttempts: attempts,
					RequestID:        requestID,
				}, start, category, attempts)
			}
		}

		s, ok := o.registry.Get(name)
		if !ok {
			continue
		}

		maxRetries, deadline := perProviderDispatchParams(cfg, name)
		outcome := o.attemptSearch(ctx, s, params, maxRetries, deadline)
		respMs := outcome.responseTime.Milliseconds()

		if outcome.cancelled {
			o.recordOutcome(name, category, c, params.Query, false, respMs, 0, "cancelled", outcome.timer)
			attempts = append(attempts, name)
			log.WithField("provider", name).Info("dispatch cancelled")
			return o.finish(UnifiedResult{
				Success:          false,
				Error:            "cancelled",
				FallbackAttempts: attempts,
				RequestID:        requestID,
			}, start, category, attempts)
		}

		if outcome.err == nil {
			o.health.RecordSuccess(name)
			o.recordOutcome(name, category, c, params.Query, true, respMs, len(outcome.results), "", outcome.timer)
			metrics.SetCircuitBreakerOpen(name, false)
			log.WithField("provider", name).Info("dispatch succeeded")

			var analysis *QueryAnalysisInfo
			if useRecommendation {
				analysis = &QueryAnalysisInfo{
					Type:                c.QueryType,
					RecommendedProvider: recommendation.Provider,
					Confidence:          recommendation.Confidence,
					Reasoning:           recommendation.Reasoning,
				}
			}
			return o.finish(UnifiedResult{
				Results:          outcome.results,
				ProviderUsed:     name,
				FallbackAttempts: attempts,
				Success:          true,
				QueryAnalysis:    analysis,
				RequestID:        requestID,
			}, start, category, attempts)
		}

		var serverReset *time.Time
		if outcome.err.Type == searcherrors.ErrorTypeRateLimit && !outcome.err.ResetAt.IsZero() {
			reset := outcome.err.ResetAt
			serverReset = &reset
		}
		o.health.RecordFailure(name, outcome.err, serverReset)
		o.recordOutcome(name, category, c, params.Query, false, respMs, 0, string(outcome.err.Type), outcome.timer)
		attempts = append(attempts, name)
		log.WithField("provider", name).WithError(outcome.err).Warn("dispatch attempt failed")

		if snap := o.health.Snapshot(name); snap.CircuitBreakerOpen {
			metrics.SetCircuitBreakerOpen(name, true)
		}

		if !cfg.FallbackEnabled {
			break
		}
	}

	return o.finish(UnifiedResult{
		Success:          false,
		ProviderUsed:     "",
		FallbackAttempts: attempts,
		Error:            fmt.Sprintf("All %d %s providers failed", len(available), category),
		RequestID:        requestID,
	}, start, category, attempts)
}

func (o *Orchestrator) finish(result UnifiedResult, start time.Time, category string, attempts []string) UnifiedResult {
	result.TotalTimeMs = time.Since(start).Milliseconds()
	metrics.RecordFallbackAttempts(category, len(attempts))
	return result
}

// combinedRanking lets the analyzer's recommendation lead the dispatch
// order only when it is present, available, and confident (> 70);
// otherwise the adaptive ranking is used unchanged.
func combinedRanking(rec query.Recommendation, adaptive []string, available []string) []string {
	if rec.Provider == "" || rec.Confidence <= 70 || !containsString(available, rec.Provider) {
		return adaptive
	}
	order := make([]string, 0, len(adaptive))
	order = append(order, rec.Provider)
	for _, p := range adaptive {
		if p != rec.Provider {
			order = append(order, p)
		}
	}
	return order
}

// perProviderDispatchParams resolves the retry count and per-attempt
// deadline for provider, falling back to the package defaults
// (max_retries=2, 30s) when the provider has no explicit override.
func perProviderDispatchParams(cfg config.Config, provider string) (int, time.Duration) {
	maxRetries := defaultMaxRetries
	deadline := defaultPerAttemptDeadline

	if settings, ok := cfg.Providers[provider]; ok {
		if settings.MaxRetries > 0 {
			maxRetries = settings.MaxRetries
		}
		if settings.TimeoutMs > 0 {
			deadline = time.Duration(settings.TimeoutMs) * time.Millisecond
		}
	}
	return maxRetries, deadline
}

func (o *Orchestrator) recordOutcome(provider, category string, c query.Characteristics, q string, success bool, responseMs int64, resultCount int, errKind string, timer *metrics.Timer) {
	o.tracker.Record(tracker.Record{
		Query:           q,
		Characteristics: c,
		ProviderUsed:    provider,
		Success:         success,
		ResponseTimeMs:  responseMs,
		ResultCount:     resultCount,
		Timestamp:       o.clock.Now(),
		ErrorKind:       errKind,
	})
	if timer != nil {
		timer.RecordDispatch(provider, category, success)
	} else {
		metrics.RecordDispatch(provider, category, success, time.Duration(responseMs)*time.Millisecond)
	}
	if o.stateMgr != nil {
		o.stateMgr.ScheduleSave()
	}
}
