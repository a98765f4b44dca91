// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Engine   EngineConfig   `yaml:"engine"`
	Insights InsightsConfig `yaml:"insights"`
}

type ServerConfig struct {
	Port     int    `yaml:"port" default:"8080"`
	LogLevel string `yaml:"log_level" default:"info"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" default:"5432"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode" default:"disable"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr" default:"localhost:6379"`
	CacheTTL time.Duration `yaml:"cache_ttl" default:"15m"`
}

// MetricPair names one independent/dependent combination to analyze.
type MetricPair struct {
	Exposure string `yaml:"exposure"`
	Outcome  string `yaml:"outcome"`
}

type EngineConfig struct {
	// AnchorHours are the daily processing-window anchors, UTC.
	AnchorHours []int `yaml:"anchor_hours"`
	// RunHistory caps the in-memory run record history.
	RunHistory int `yaml:"run_history" default:"20"`
	// MetricPairs are the exposure/outcome combinations swept per user.
	MetricPairs []MetricPair `yaml:"metric_pairs"`
	// BaselineMetrics are the metrics whose rolling baselines the
	// designated daily window refreshes.
	BaselineMetrics []string `yaml:"baseline_metrics"`
	// FreshnessSignals restricts freshness checks; empty means all.
	FreshnessSignals []string `yaml:"freshness_signals"`
}

type InsightsConfig struct {
	// Endpoint of the external text-generation service. Empty disables
	// publishing; findings are still counted and logged.
	Endpoint string `yaml:"endpoint"`
	// RequestsPerSecond throttles calls to the text service.
	RequestsPerSecond float64       `yaml:"requests_per_second" default:"5"`
	Timeout           time.Duration `yaml:"timeout" default:"30s"`
}

// Default returns the engine's shipping configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, LogLevel: "info"},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "vitalgraph",
			User:     "vitalgraph",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{Addr: "localhost:6379", CacheTTL: 15 * time.Minute},
		Engine: EngineConfig{
			AnchorHours: []int{0, 6, 12, 18},
			RunHistory:  20,
			MetricPairs: []MetricPair{
				{Exposure: "caffeine_mg", Outcome: "sleep_hours"},
				{Exposure: "alcohol_g", Outcome: "hrv_ms"},
				{Exposure: "exercise_min", Outcome: "resting_hr"},
				{Exposure: "magnesium_mg", Outcome: "deep_sleep_min"},
			},
			BaselineMetrics: []string{
				"sleep_hours", "deep_sleep_min", "resting_hr", "hrv_ms",
				"fasting_glucose", "steps",
			},
		},
		Insights: InsightsConfig{RequestsPerSecond: 5, Timeout: 30 * time.Second},
	}
}

// Load reads a YAML config file over the defaults, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	LoadFromEnv(cfg)
	return cfg, cfg.Validate()
}

// Validate rejects configurations the orchestrator cannot run with.
func (c *Config) Validate() error {
	if len(c.Engine.AnchorHours) == 0 {
		return fmt.Errorf("config: at least one anchor hour required")
	}
	for _, h := range c.Engine.AnchorHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("config: anchor hour %d out of range", h)
		}
	}
	if c.Engine.RunHistory <= 0 {
		return fmt.Errorf("config: run history must be positive")
	}
	return nil
}
