package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/jordigilh/omnisearch-orchestrator/internal/clock"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/health"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/metrics"
)

// Manager owns the single snapshot document, on disk or in Redis.
// Callers never read the backing store directly; they mutate
// in-memory state and call ScheduleSave, which this Manager throttles
// and coalesces.
type Manager struct {
	mu         sync.Mutex
	path       string
	redis      *RedisStore
	throttle   time.Duration
	maxHistory int
	clock      clock.Clock
	timer      *time.Timer
	sf         singleflight.Group
	source     func() Snapshot
	log        *logrus.Logger
}

// NewManager returns a Manager that writes to path, debouncing writes
// to no more than one per throttle window. source is called at flush
// time to gather the current in-memory state from the health manager,
// tracker, and configuration.
func NewManager(path string, throttle time.Duration, maxHistory int, clk clock.Clock, source func() Snapshot, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
	}
	return &Manager{
		path:       path,
		throttle:   throttle,
		maxHistory: maxHistory,
		clock:      clk,
		source:     source,
		log:        log,
	}
}

// NewRedisManager returns a Manager backed by store instead of the
// local filesystem, for deployments where multiple orchestrator
// processes share one persisted snapshot.
func NewRedisManager(store *RedisStore, throttle time.Duration, maxHistory int, clk clock.Clock, source func() Snapshot, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
	}
	return &Manager{
		redis:      store,
		throttle:   throttle,
		maxHistory: maxHistory,
		clock:      clk,
		source:     source,
		log:        log,
	}
}

// Load reads the snapshot at path. A missing file, or one whose
// version does not match CurrentVersion, yields an empty Snapshot
// rather than an error: a version bump should never prevent startup.
func Load(path string, maxHistory int) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return Empty(), fmt.Errorf("failed to read state file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Empty(), nil
	}
	if snap.Version != CurrentVersion {
		return Empty(), nil
	}
	if snap.ProviderHealth == nil {
		snap.ProviderHealth = make(map[string]health.Health)
	}
	snap.PerformanceRecords = capHistory(snap.PerformanceRecords, maxHistory)
	return snap, nil
}

// ScheduleSave debounces a write: each call cancels any pending timer
// and reschedules it throttle out from now, so a burst of mutations
// produces exactly one flush once the burst quiets down.
func (m *Manager) ScheduleSave() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.throttle, func() {
		if err := m.Flush(); err != nil {
			m.log.WithError(err).Warn("snapshot flush failed, continuing on in-memory state")
		}
	})
}

// Flush writes the current snapshot immediately. Concurrent Flush
// calls coalesce into a single write via singleflight.
func (m *Manager) Flush() error {
	_, err, _ := m.sf.Do("flush", func() (interface{}, error) {
		return nil, m.writeNow()
	})
	return err
}

func (m *Manager) writeNow() (err error) {
	defer func() { metrics.RecordSnapshotSave(err) }()

	snap := m.source()
	snap.Version = CurrentVersion
	snap.LastUpdated = m.clock.Now()
	snap.PerformanceRecords = capHistory(snap.PerformanceRecords, m.maxHistory)

	if m.redis != nil {
		if saveErr := m.redis.Save(context.Background(), snap); saveErr != nil {
			err = fmt.Errorf("failed to save snapshot to redis: %w", saveErr)
			return err
		}
		return nil
	}

	data, marshalErr := json.MarshalIndent(snap, "", "  ")
	if marshalErr != nil {
		err = fmt.Errorf("failed to marshal snapshot: %w", marshalErr)
		return err
	}

	dir := filepath.Dir(m.path)
	tmp, createErr := os.CreateTemp(dir, ".snapshot-*.tmp")
	if createErr != nil {
		err = fmt.Errorf("failed to create temp snapshot file: %w", createErr)
		return err
	}
	tmpPath := tmp.Name()
	if _, writeErr := tmp.Write(data); writeErr != nil {
		tmp.Close()
		os.Remove(tmpPath)
		err = fmt.Errorf("failed to write temp snapshot file: %w", writeErr)
		return err
	}
	if closeErr := tmp.Close(); closeErr != nil {
		os.Remove(tmpPath)
		err = fmt.Errorf("failed to close temp snapshot file: %w", closeErr)
		return err
	}
	if renameErr := os.Rename(tmpPath, m.path); renameErr != nil {
		os.Remove(tmpPath)
		err = fmt.Errorf("failed to atomically replace snapshot file: %w", renameErr)
		return err
	}
	return nil
}
