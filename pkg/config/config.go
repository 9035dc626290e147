// Package config handles engine configuration via environment variables
// with an optional YAML overlay.
//
// Configuration is environment-first: Load() reads every ASH_* variable,
// applying defaults where unset, and an explicit YAML file can be merged
// on top for deployments that prefer checked-in configuration.
//
// Example Usage:
//
//	cfg := config.LoadFromEnv()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//	h := ash.MustNew(cfg.Engine.ToOptions())
//
// Environment Variables:
//   - ASH_BACKEND="dense" or "interval"
//   - ASH_REMOVAL_ENABLED=true
//   - ASH_METRICS_ENABLED=true
//   - ASH_WALK_BUDGET=10000
//   - ASH_WALK_SAMPLE_RATE=1.0
//   - ASH_WALK_SEED=42
//   - ASH_WALK_P=1.0
//   - ASH_WALK_Q=1.0
//   - ASH_LOG_LEVEL=INFO
//   - ASH_LOG_FORMAT="text" or "json"
//   - ASH_LOG_OUTPUT=stdout
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GiulioRossetti/ash/pkg/ash"
)

// Config holds all engine configuration.
//
// Use LoadFromEnv() to create a Config from environment variables, or
// LoadFromFile() to overlay a YAML file on top of the environment.
type Config struct {
	// Engine settings for the hypergraph registry
	Engine EngineConfig `yaml:"engine"`

	// Walks settings for walk enumeration and sampling
	Walks WalksConfig `yaml:"walks"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig holds registry settings.
type EngineConfig struct {
	// Backend selects the presence index: "dense" or "interval"
	Backend string `yaml:"backend"`
	// RemovalEnabled controls whether hyperedges and nodes may be removed
	RemovalEnabled bool `yaml:"removal_enabled"`
	// MetricsEnabled controls Prometheus instrumentation
	MetricsEnabled bool `yaml:"metrics_enabled"`
}

// WalksConfig holds walk engine settings.
type WalksConfig struct {
	// Budget caps the simple paths enumerated per source/target pair
	Budget int `yaml:"budget"`
	// SampleRate in (0,1] subsamples source/target pairs
	SampleRate float64 `yaml:"sample_rate"`
	// Seed drives all randomized sampling; 0 seeds from the clock
	Seed int64 `yaml:"seed"`
	// P is the node2vec return parameter
	P float64 `yaml:"p"`
	// Q is the node2vec in-out parameter
	Q float64 `yaml:"q"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level (DEBUG, INFO, WARN, ERROR)
	Level string `yaml:"level"`
	// Format (json, text)
	Format string `yaml:"format"`
	// Output path (stdout, stderr, or file path)
	Output string `yaml:"output"`
}

// ToOptions converts the engine section into registry options.
func (e EngineConfig) ToOptions() ash.Options {
	return ash.Options{
		Backend:        ash.Backend(e.Backend),
		RemovalEnabled: e.RemovalEnabled,
		Metrics:        e.MetricsEnabled,
	}
}

// LoadFromEnv loads configuration from ASH_* environment variables.
//
// All values have sensible defaults, so LoadFromEnv() can be called
// without any environment variables set. Returns a fully populated
// Config with defaults applied where variables are missing.
func LoadFromEnv() *Config {
	cfg := &Config{}

	cfg.Engine.Backend = getEnv("ASH_BACKEND", string(ash.BackendDense))
	cfg.Engine.RemovalEnabled = getEnvBool("ASH_REMOVAL_ENABLED", true)
	cfg.Engine.MetricsEnabled = getEnvBool("ASH_METRICS_ENABLED", true)

	cfg.Walks.Budget = getEnvInt("ASH_WALK_BUDGET", 10000)
	cfg.Walks.SampleRate = getEnvFloat("ASH_WALK_SAMPLE_RATE", 1.0)
	cfg.Walks.Seed = getEnvInt64("ASH_WALK_SEED", 0)
	cfg.Walks.P = getEnvFloat("ASH_WALK_P", 1.0)
	cfg.Walks.Q = getEnvFloat("ASH_WALK_Q", 1.0)

	cfg.Logging.Level = getEnv("ASH_LOG_LEVEL", "INFO")
	cfg.Logging.Format = getEnv("ASH_LOG_FORMAT", "text")
	cfg.Logging.Output = getEnv("ASH_LOG_OUTPUT", "stdout")

	return cfg
}

// LoadFromFile loads configuration from the environment and overlays the
// YAML file at path. File values win over environment values; fields the
// file omits keep their environment or default values.
func LoadFromFile(path string) (*Config, error) {
	cfg := LoadFromEnv()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for logical errors.
//
// Call Validate() after loading and before using the Config.
func (c *Config) Validate() error {
	switch ash.Backend(c.Engine.Backend) {
	case ash.BackendDense, ash.BackendInterval:
	default:
		return fmt.Errorf("invalid backend %q", c.Engine.Backend)
	}
	if c.Walks.Budget < 0 {
		return fmt.Errorf("invalid walk budget: %d", c.Walks.Budget)
	}
	if c.Walks.SampleRate <= 0 || c.Walks.SampleRate > 1 {
		return fmt.Errorf("invalid walk sample rate: %g", c.Walks.SampleRate)
	}
	if c.Walks.P <= 0 || c.Walks.Q <= 0 {
		return fmt.Errorf("walk bias parameters must be positive: p=%g q=%g", c.Walks.P, c.Walks.Q)
	}
	switch strings.ToUpper(c.Logging.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	return nil
}

// String returns a string representation of the Config, suitable for
// logging.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Backend: %s, Removal: %v, Metrics: %v, WalkBudget: %d}",
		c.Engine.Backend, c.Engine.RemovalEnabled, c.Engine.MetricsEnabled, c.Walks.Budget,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}
