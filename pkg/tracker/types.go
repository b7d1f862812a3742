// Package tracker maintains per-provider rolling performance
// aggregates and derives an adaptive ranking from them.
package tracker

import (
	"time"

	"github.com/jordigilh/omnisearch-orchestrator/pkg/query"
)

// Record is one dispatched attempt, success or failure.
type Record struct {
	Query           string
	Characteristics query.Characteristics
	ProviderUsed    string
	Success         bool
	ResponseTimeMs  int64
	ResultCount     int
	Timestamp       time.Time
	ErrorKind       string
	UserFeedback    string
}

// TypeStats are the incrementally maintained per-query-type aggregates.
type TypeStats struct {
	Count             int64
	SuccessRate       float64
	AvgResponseTimeMs float64
}

// Aggregate is a provider's full set of derived statistics.
type Aggregate struct {
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	SuccessRate        float64
	AvgResponseTimeMs  float64
	ByQueryType        map[query.Type]*TypeStats

	LastHourRate float64
	LastDayRate  float64
	LastWeekRate float64
}

// Insights summarizes cross-provider comparisons.
type Insights struct {
	BestOverall   string
	BestForSpeed  string
	MostReliable  string
	TrendingUp    []string
	TrendingDown  []string
}
