package state_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/jordigilh/omnisearch-orchestrator/internal/clock"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/health"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/state"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/tracker"
)

func newMiniredisStore(t *testing.T) (*state.RedisStore, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return state.NewRedisStore(client, "omnisearch:snapshot"), mr.Close
}

func TestRedisStoreLoadMissingKeyYieldsEmptySnapshot(t *testing.T) {
	store, cleanup := newMiniredisStore(t)
	defer cleanup()

	snap, err := store.Load(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, state.CurrentVersion, snap.Version)
	require.Empty(t, snap.ProviderHealth)
}

func TestRedisStoreSaveThenLoadRoundTrips(t *testing.T) {
	store, cleanup := newMiniredisStore(t)
	defer cleanup()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := state.Snapshot{
		Version:     state.CurrentVersion,
		LastUpdated: now,
		ProviderHealth: map[string]health.Health{
			"tavily": {Available: true, FailureCount: 2},
		},
		PerformanceRecords: []tracker.Record{
			{ProviderUsed: "tavily", Success: true, ResponseTimeMs: 120, Timestamp: now},
		},
		ConfigurationOverrides: map[string]interface{}{"fallback_enabled": true},
	}

	require.NoError(t, store.Save(context.Background(), snap))

	got, err := store.Load(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, snap.Version, got.Version)
	require.Equal(t, snap.ProviderHealth["tavily"].FailureCount, got.ProviderHealth["tavily"].FailureCount)
	require.Len(t, got.PerformanceRecords, 1)
}

func TestRedisStoreLoadCapsHistoryToMaxHistory(t *testing.T) {
	store, cleanup := newMiniredisStore(t)
	defer cleanup()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var records []tracker.Record
	for i := 0; i < 5; i++ {
		records = append(records, tracker.Record{ProviderUsed: "tavily", Success: true, Timestamp: now})
	}
	require.NoError(t, store.Save(context.Background(), state.Snapshot{
		Version:            state.CurrentVersion,
		PerformanceRecords: records,
	}))

	got, err := store.Load(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got.PerformanceRecords, 2)
}

func TestRedisStoreLoadRejectsVersionMismatch(t *testing.T) {
	store, cleanup := newMiniredisStore(t)
	defer cleanup()

	require.NoError(t, store.Save(context.Background(), state.Snapshot{Version: "0.1"}))

	got, err := store.Load(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, state.CurrentVersion, got.Version)
	require.Empty(t, got.ProviderHealth)
}

func TestManagerFlushWritesToRedisBackend(t *testing.T) {
	store, cleanup := newMiniredisStore(t)
	defer cleanup()

	clk := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	source := func() state.Snapshot {
		return state.Snapshot{
			ProviderHealth: map[string]health.Health{"kagi": {Available: true}},
		}
	}
	mgr := state.NewRedisManager(store, 10*time.Millisecond, 100, clk, source, silentLogger())

	require.NoError(t, mgr.Flush())

	got, err := store.Load(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, got.ProviderHealth["kagi"].Available)
}
