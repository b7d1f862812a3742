// Package state persists the orchestrator's health, history, and
// configuration-override data to a single versioned JSON document,
// throttled and coalesced so concurrent mutations never trigger more
// than one write per save window.
package state

import (
	"time"

	"github.com/jordigilh/omnisearch-orchestrator/pkg/health"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/tracker"
)

// CurrentVersion is the only snapshot format this package writes or
// accepts without falling back to an empty state.
const CurrentVersion = "1.0"

// Snapshot is the literal projection of the records persisted to disk.
type Snapshot struct {
	Version                string                   `json:"version"`
	LastUpdated            time.Time                `json:"last_updated"`
	ProviderHealth         map[string]health.Health  `json:"provider_health"`
	PerformanceRecords     []tracker.Record          `json:"performance_records"`
	ConfigurationOverrides map[string]interface{}    `json:"configuration_overrides"`
}

// Empty returns a freshly initialized, version-stamped Snapshot.
func Empty() Snapshot {
	return Snapshot{
		Version:                CurrentVersion,
		ProviderHealth:         make(map[string]health.Health),
		PerformanceRecords:     nil,
		ConfigurationOverrides: make(map[string]interface{}),
	}
}

// capHistory truncates records to its last n entries.
func capHistory(records []tracker.Record, n int) []tracker.Record {
	if n <= 0 || len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}
