// Command omnisearchd runs the search orchestrator as a standalone
// process: it loads configuration, restores persisted health and
// performance state, registers search back-ends, and serves Prometheus
// metrics and a health check until terminated.
//
// No real provider credentials are required to run this binary: the
// registered back-ends are the in-process doubles under
// pkg/searcher/fake, useful for smoke-testing the dispatch and
// fallback machinery end to end without network access.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jordigilh/omnisearch-orchestrator/internal/clock"
	"github.com/jordigilh/omnisearch-orchestrator/internal/config"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/health"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/metrics"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/orchestrator"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/searcher"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/searcher/fake"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/state"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/tracker"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file (optional)")
	metricsPort := flag.String("metrics-port", "9090", "port for the /metrics and /healthz endpoints")
	flag.Parse()

	log := newLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	applyLogLevel(log, cfg.Logging)

	clk := clock.Real{}
	registry := buildRegistry()

	redisStore := newRedisStore(cfg)

	var snapshot state.Snapshot
	statePath := stateFilePath(cfg)
	if redisStore != nil {
		snapshot, err = redisStore.Load(context.Background(), cfg.MaxHistory)
	} else {
		snapshot, err = state.Load(statePath, cfg.MaxHistory)
	}
	if err != nil {
		log.WithError(err).Warn("failed to load persisted state, starting from empty state")
	}
	if err := config.ApplyOverrides(cfg, snapshot.ConfigurationOverrides); err != nil {
		log.WithError(err).Warn("failed to apply persisted configuration overrides")
	}

	healthMgr := health.NewManager(clk, cfg.CircuitBreakerThreshold, cfg.CircuitBreakerTimeoutMs, log, nil)
	healthMgr.Seed(snapshot.ProviderHealth)

	perfTracker := tracker.NewTracker(clk, cfg.MaxHistory, nil)
	perfTracker.Seed(snapshot.PerformanceRecords)

	source := func() state.Snapshot {
		return state.Snapshot{
			ProviderHealth:         snapshotHealth(healthMgr, registry),
			PerformanceRecords:     perfTracker.History(),
			ConfigurationOverrides: config.Overrides(cfg),
		}
	}
	throttle := time.Duration(cfg.SaveThrottleMs) * time.Millisecond
	var stateMgr *state.Manager
	if redisStore != nil {
		stateMgr = state.NewRedisManager(redisStore, throttle, cfg.MaxHistory, clk, source, log)
		log.WithField("redis_addr", cfg.RedisAddr).Info("using redis state backend")
	} else {
		stateMgr = state.NewManager(statePath, throttle, cfg.MaxHistory, clk, source, log)
	}

	orch := orchestrator.New(cfg, registry, healthMgr, perfTracker, stateMgr, clk, log)
	log.WithField("mode", orch.GetMode()).Info("orchestrator ready")

	metricsSrv := metrics.NewServer(*metricsPort, log)
	metricsSrv.StartAsync()
	log.WithField("port", *metricsPort).Info("metrics server listening")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("metrics server did not shut down cleanly")
	}
	if err := stateMgr.Flush(); err != nil {
		log.WithError(err).Warn("final state flush failed")
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
	return log
}

func applyLogLevel(log *logrus.Logger, cfg config.LoggingConfig) {
	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{})
	}
	if lvl, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(lvl)
	} else {
		log.WithField("configured_level", cfg.Level).Warn("unrecognized log level, keeping default")
	}
}

// newRedisStore constructs the Redis-backed snapshot store when cfg
// selects it, or returns nil for the default file backend.
func newRedisStore(cfg *config.Config) *state.RedisStore {
	if cfg.StateBackend != config.StateBackendRedis {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return state.NewRedisStore(client, cfg.RedisKey)
}

func stateFilePath(cfg *config.Config) string {
	dir := cfg.StateDir
	if dir == "" {
		dir = os.TempDir()
	}
	return dir + "/omnisearch-state.json"
}

// buildRegistry registers the in-process search and ai_response doubles.
// A production deployment would replace this with real HTTP-backed
// adapters, one per credentialed provider; adapters missing credentials
// are simply not registered.
func buildRegistry() *searcher.Registry {
	r := searcher.NewRegistry()
	r.Register(fake.NewFastSearcher("brave", 80*time.Millisecond), "search")
	r.Register(fake.NewFastSearcher("tavily", 120*time.Millisecond), "search")
	r.Register(fake.NewFastSearcher("duckduckgo", 60*time.Millisecond), "search")
	r.Register(fake.NewFastSearcher("kagi", 90*time.Millisecond), "search")
	r.Register(fake.NewFastSearcher("perplexity", 200*time.Millisecond), "ai_response")
	r.Register(fake.NewFastSearcher("claude_search", 180*time.Millisecond), "ai_response")
	return r
}

func snapshotHealth(h *health.Manager, r *searcher.Registry) map[string]health.Health {
	out := make(map[string]health.Health)
	for _, category := range []string{"search", "ai_response"} {
		for _, name := range r.Names(category) {
			out[name] = h.Snapshot(name)
		}
	}
	return out
}
