// Package config loads and validates the orchestrator's startup
// configuration: mode, provider ordering and enablement, fallback and
// circuit-breaker timing, and persistence knobs. Values come from an
// optional YAML file, then are overridden by environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode selects whether the front-end exposes per-provider tools
// directly or only the unified orchestration surface.
type Mode string

const (
	ModeDirect  Mode = "direct"
	ModeUnified Mode = "unified"
)

// ProviderSettings is the per-provider slice of the runtime configuration.
type ProviderSettings struct {
	Enabled      bool     `yaml:"enabled"`
	Priority     int      `yaml:"priority"`
	PreferredFor []string `yaml:"preferred_for"`
	MaxRetries   int      `yaml:"max_retries"`
	TimeoutMs    int      `yaml:"timeout_ms"`
}

// LoggingConfig controls the ambient logrus setup.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the orchestrator's full runtime configuration.
type Config struct {
	Mode Mode `yaml:"mode"`

	ProviderOrder     []string `yaml:"provider_order"`
	AIProviderOrder   []string `yaml:"ai_provider_order"`
	DisabledProviders []string `yaml:"disabled_providers"`

	Providers map[string]ProviderSettings `yaml:"providers"`

	FallbackEnabled         bool `yaml:"fallback_enabled"`
	FallbackDelayMs         int  `yaml:"fallback_delay_ms"`
	CircuitBreakerThreshold int  `yaml:"circuit_breaker_threshold"`
	CircuitBreakerTimeoutMs int  `yaml:"circuit_breaker_timeout_ms"`

	StateDir       string `yaml:"state_dir"`
	MaxHistory     int    `yaml:"max_history"`
	SaveThrottleMs int    `yaml:"save_throttle_ms"`

	// StateBackend selects where the persisted snapshot lives: "file"
	// (default) writes state_dir/omnisearch-state.json; "redis" stores
	// it under RedisKey in the server at RedisAddr.
	StateBackend string `yaml:"state_backend"`
	RedisAddr    string `yaml:"redis_addr"`
	RedisKey     string `yaml:"redis_key"`

	Logging LoggingConfig `yaml:"logging"`
}

const (
	StateBackendFile  = "file"
	StateBackendRedis = "redis"
)

// Default returns the configuration used when no file and no
// environment overrides are present.
func Default() *Config {
	return &Config{
		Mode:                    ModeUnified,
		Providers:               map[string]ProviderSettings{},
		FallbackEnabled:         true,
		FallbackDelayMs:         200,
		CircuitBreakerThreshold: 3,
		CircuitBreakerTimeoutMs: 60_000,
		StateDir:                os.TempDir(),
		MaxHistory:              1000,
		SaveThrottleMs:          5000,
		StateBackend:            StateBackendFile,
		RedisKey:                "omnisearch:snapshot",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path (if it exists), applies environment overrides, and
// validates the result. A missing file is not an error: defaults plus
// environment overrides are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Mode != ModeDirect && cfg.Mode != ModeUnified {
		return fmt.Errorf("unsupported mode %q", cfg.Mode)
	}
	if cfg.CircuitBreakerThreshold < 1 || cfg.CircuitBreakerThreshold > 20 {
		return fmt.Errorf("circuit breaker threshold must be between 1 and 20")
	}
	if cfg.CircuitBreakerTimeoutMs < 10_000 || cfg.CircuitBreakerTimeoutMs > 3_600_000 {
		return fmt.Errorf("circuit breaker timeout must be between 10000 and 3600000 ms")
	}
	if cfg.FallbackDelayMs < 0 || cfg.FallbackDelayMs > 10_000 {
		return fmt.Errorf("fallback delay must be between 0 and 10000 ms")
	}
	if cfg.MaxHistory <= 0 {
		return fmt.Errorf("max history must be greater than 0")
	}
	if cfg.SaveThrottleMs < 0 {
		return fmt.Errorf("save throttle must not be negative")
	}
	if cfg.StateBackend != StateBackendFile && cfg.StateBackend != StateBackendRedis {
		return fmt.Errorf("unsupported state backend %q", cfg.StateBackend)
	}
	if cfg.StateBackend == StateBackendRedis && cfg.RedisAddr == "" {
		return fmt.Errorf("redis_addr is required when state_backend is %q", StateBackendRedis)
	}
	return nil
}

// loadFromEnv applies the OMNISEARCH_* environment variables over cfg.
// Invalid numeric/bool values are ignored without being logged: the
// prior value is left untouched rather than aborting startup.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("OMNISEARCH_MODE"); v != "" {
		cfg.Mode = Mode(v)
	}
	if v := os.Getenv("OMNISEARCH_PROVIDER_ORDER"); v != "" {
		cfg.ProviderOrder = splitCSV(v)
	}
	if v := os.Getenv("OMNISEARCH_AI_PROVIDER_ORDER"); v != "" {
		cfg.AIProviderOrder = splitCSV(v)
	}
	if v := os.Getenv("OMNISEARCH_DISABLED_PROVIDERS"); v != "" {
		cfg.DisabledProviders = splitCSV(v)
	}
	if v := os.Getenv("OMNISEARCH_FALLBACK_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.FallbackEnabled = b
		}
	}
	if v := os.Getenv("OMNISEARCH_FALLBACK_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FallbackDelayMs = n
		}
	}
	if v := os.Getenv("OMNISEARCH_CIRCUIT_BREAKER_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CircuitBreakerThreshold = n
		}
	}
	if v := os.Getenv("OMNISEARCH_CIRCUIT_BREAKER_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CircuitBreakerTimeoutMs = n
		}
	}
	if v := os.Getenv("OMNISEARCH_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv("OMNISEARCH_MAX_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxHistory = n
		}
	}
	if v := os.Getenv("OMNISEARCH_SAVE_THROTTLE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SaveThrottleMs = n
		}
	}
	if v := os.Getenv("OMNISEARCH_STATE_BACKEND"); v != "" {
		cfg.StateBackend = v
	}
	if v := os.Getenv("OMNISEARCH_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("OMNISEARCH_REDIS_KEY"); v != "" {
		cfg.RedisKey = v
	}
	return nil
}

// ApplyOverrides re-applies a persisted configuration_overrides map
// onto cfg. Overrides are stored as plain YAML-shaped values, so the
// map is round-tripped through yaml.v3 rather than hand-decoded field
// by field.
func ApplyOverrides(cfg *Config, overrides map[string]interface{}) error {
	if len(overrides) == 0 {
		return nil
	}
	data, err := yaml.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration overrides: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to apply configuration overrides: %w", err)
	}
	return nil
}

// Overrides captures cfg's fields that the tool surface can mutate at
// runtime, shaped for direct storage in a persisted snapshot's
// configuration_overrides map.
func Overrides(cfg *Config) map[string]interface{} {
	return map[string]interface{}{
		"mode":               cfg.Mode,
		"provider_order":     cfg.ProviderOrder,
		"ai_provider_order":  cfg.AIProviderOrder,
		"disabled_providers": cfg.DisabledProviders,
		"fallback_enabled":   cfg.FallbackEnabled,
	}
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsDisabled reports whether name appears in DisabledProviders.
func (c *Config) IsDisabled(name string) bool {
	for _, d := range c.DisabledProviders {
		if d == name {
			return true
		}
	}
	return false
}

// IsEnabled reports whether name is usable: not globally disabled, and
// not explicitly disabled in its own ProviderSettings.
func (c *Config) IsEnabled(name string) bool {
	if c.IsDisabled(name) {
		return false
	}
	if settings, ok := c.Providers[name]; ok {
		return settings.Enabled
	}
	return true
}

// PreferredProviderFor returns the first available provider (from
// candidates, in order) whose PreferredFor keyword list contains a
// substring match in query, falling back to the first candidate.
func (c *Config) PreferredProviderFor(query string, candidates []string) string {
	lowerQuery := strings.ToLower(query)
	for _, name := range candidates {
		settings, ok := c.Providers[name]
		if !ok {
			continue
		}
		for _, kw := range settings.PreferredFor {
			if kw == "" {
				continue
			}
			if strings.Contains(lowerQuery, strings.ToLower(kw)) {
				return name
			}
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}
