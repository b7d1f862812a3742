package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/jordigilh/omnisearch-orchestrator/internal/clock"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/query"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/shared/mathutil"
)

// Tracker owns the full performance-record history and per-provider
// aggregates behind a single coarse lock.
type Tracker struct {
	mu         sync.Mutex
	clock      clock.Clock
	maxHistory int
	history    []Record
	byProvider map[string]*Aggregate
	onMutate   func()
}

// NewTracker returns a Tracker capped at maxHistory records.
func NewTracker(clk clock.Clock, maxHistory int, onMutate func()) *Tracker {
	return &Tracker{
		clock:      clk,
		maxHistory: maxHistory,
		byProvider: make(map[string]*Aggregate),
		onMutate:   onMutate,
	}
}

// Seed rebuilds history and per-provider aggregates from records
// restored from a persisted snapshot at startup. It must only be
// called before the tracker is shared with any dispatcher, since it
// replays records without notifying onMutate.
func (t *Tracker) Seed(records []Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range records {
		t.history = append(t.history, rec)
		agg, ok := t.byProvider[rec.ProviderUsed]
		if !ok {
			agg = newAggregate()
			t.byProvider[rec.ProviderUsed] = agg
		}
		updateAggregate(agg, rec)
		t.recomputeRecentWindows(agg, rec.ProviderUsed)
	}
	if len(t.history) > t.maxHistory {
		t.history = t.history[len(t.history)-t.maxHistory:]
	}
}

func newAggregate() *Aggregate {
	return &Aggregate{ByQueryType: make(map[query.Type]*TypeStats)}
}

// Record appends rec, evicts the oldest entry if over cap, and updates
// rec.ProviderUsed's aggregate in O(1) amortized time aside from the
// recent-window recomputation.
func (t *Tracker) Record(rec Record) {
	t.mu.Lock()
	t.history = append(t.history, rec)
	if len(t.history) > t.maxHistory {
		t.history = t.history[len(t.history)-t.maxHistory:]
	}

	agg, ok := t.byProvider[rec.ProviderUsed]
	if !ok {
		agg = newAggregate()
		t.byProvider[rec.ProviderUsed] = agg
	}
	updateAggregate(agg, rec)
	t.recomputeRecentWindows(agg, rec.ProviderUsed)
	t.mu.Unlock()

	if t.onMutate != nil {
		t.onMutate()
	}
}

func updateAggregate(agg *Aggregate, rec Record) {
	agg.TotalRequests++
	if rec.Success {
		agg.SuccessfulRequests++
	} else {
		agg.FailedRequests++
	}
	agg.SuccessRate = float64(agg.SuccessfulRequests) / float64(agg.TotalRequests)

	_, agg.AvgResponseTimeMs = mathutil.RunningMean(agg.TotalRequests-1, agg.AvgResponseTimeMs, float64(rec.ResponseTimeMs))

	stats, ok := agg.ByQueryType[rec.Characteristics.QueryType]
	if !ok {
		stats = &TypeStats{}
		agg.ByQueryType[rec.Characteristics.QueryType] = stats
	}
	prevCount := stats.Count
	stats.Count++
	outcome := 0.0
	if rec.Success {
		outcome = 1.0
	}
	stats.SuccessRate = (stats.SuccessRate*float64(prevCount) + outcome) / float64(stats.Count)
	_, stats.AvgResponseTimeMs = mathutil.RunningMean(prevCount, stats.AvgResponseTimeMs, float64(rec.ResponseTimeMs))
}

// recomputeRecentWindows is the only O(n) step in the hot path: it
// filters this provider's slice of history for each sliding window.
func (t *Tracker) recomputeRecentWindows(agg *Aggregate, provider string) {
	now := t.clock.Now()
	agg.LastHourRate = t.windowSuccessRate(provider, now, time.Hour)
	agg.LastDayRate = t.windowSuccessRate(provider, now, 24*time.Hour)
	agg.LastWeekRate = t.windowSuccessRate(provider, now, 7*24*time.Hour)
}

func (t *Tracker) windowSuccessRate(provider string, now time.Time, window time.Duration) float64 {
	cutoff := now.Add(-window)
	var total, success int
	for _, r := range t.history {
		if r.ProviderUsed != provider || r.Timestamp.Before(cutoff) {
			continue
		}
		total++
		if r.Success {
			success++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(success) / float64(total)
}

// Aggregate returns a copy of provider's current aggregate, or the
// zero value with ok=false if nothing has been recorded for it.
func (t *Tracker) Aggregate(provider string) (Aggregate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	agg, ok := t.byProvider[provider]
	if !ok {
		return Aggregate{}, false
	}
	return *agg, true
}

// AdaptiveRank orders candidates by the weighted success/latency
// formula: a provider absent from the tracker is scored 0.5. Ties keep
// the input order (sort is stable).
func (t *Tracker) AdaptiveRank(c query.Characteristics, candidates []string) []string {
	t.mu.Lock()
	scores := make([]float64, len(candidates))
	for i, name := range candidates {
		scores[i] = t.adaptiveScore(c, name)
	}
	t.mu.Unlock()

	idx := make([]int, len(candidates))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return scores[idx[i]] > scores[idx[j]]
	})

	ranked := make([]string, len(candidates))
	for i, j := range idx {
		ranked[i] = candidates[j]
	}
	return ranked
}

func (t *Tracker) adaptiveScore(c query.Characteristics, provider string) float64 {
	agg, ok := t.byProvider[provider]
	if !ok {
		return 0.5
	}

	typeRate := agg.SuccessRate
	if stats, ok := agg.ByQueryType[c.QueryType]; ok && stats.Count >= 3 {
		typeRate = stats.SuccessRate
	}

	speed := 1 - agg.AvgResponseTimeMs/30000
	if speed < 0 {
		speed = 0
	}

	return 0.2*agg.SuccessRate + 0.3*agg.LastHourRate + 0.4*typeRate + 0.1*speed
}

// Insights computes cross-provider comparisons over candidates.
func (t *Tracker) Insights(candidates []string) Insights {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out Insights
	bestOverallScore, bestSpeedMs, bestReliability := -1.0, -1.0, -1.0

	for _, name := range candidates {
		agg, ok := t.byProvider[name]
		if !ok {
			continue
		}

		overall := agg.SuccessRate * (1 - agg.AvgResponseTimeMs/10000)
		if overall > bestOverallScore {
			bestOverallScore = overall
			out.BestOverall = name
		}
		if bestSpeedMs < 0 || agg.AvgResponseTimeMs < bestSpeedMs {
			bestSpeedMs = agg.AvgResponseTimeMs
			out.BestForSpeed = name
		}
		if agg.SuccessRate > bestReliability {
			bestReliability = agg.SuccessRate
			out.MostReliable = name
		}

		delta := agg.LastHourRate - agg.LastWeekRate
		switch {
		case delta > 0.1:
			out.TrendingUp = append(out.TrendingUp, name)
		case delta < -0.1:
			out.TrendingDown = append(out.TrendingDown, name)
		}
	}
	return out
}

// History returns a copy of the full recorded history, oldest first.
func (t *Tracker) History() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.history))
	copy(out, t.history)
	return out
}
