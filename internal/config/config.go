package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Madra/internal/explorer"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Hermes  HermesConfig  `yaml:"hermes"`
	Catalog CatalogConfig `yaml:"catalog"`
	Limits  LimitsConfig  `yaml:"limits"`
	Sweep   SweepConfig   `yaml:"sweep"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port               int    `yaml:"port" env:"PORT"`
	MetricsPort        int    `yaml:"metrics_port" env:"METRICS_PORT"`
	AdminToken         string `yaml:"admin_token" env:"ADMIN_TOKEN"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE"`
}

type HermesConfig struct {
	URL string `yaml:"url" env:"HERMES_URL"`
}

type CatalogConfig struct {
	Path string `yaml:"path" env:"CATALOG_PATH"`
}

// LimitsConfig holds the accepted ranges for scenario inputs.
type LimitsConfig struct {
	MinCapacity    float64 `yaml:"min_capacity" env:"LIMITS_MIN_CAPACITY"`
	MaxCapacity    float64 `yaml:"max_capacity" env:"LIMITS_MAX_CAPACITY"`
	MaxDurationMin float64 `yaml:"max_duration_min" env:"LIMITS_MAX_DURATION_MIN"`
	MinDtMin       float64 `yaml:"min_dt_min" env:"LIMITS_MIN_DT_MIN"`
	MaxDtMin       float64 `yaml:"max_dt_min" env:"LIMITS_MAX_DT_MIN"`
}

type SweepConfig struct {
	MaxPoints int `yaml:"max_points" env:"SWEEP_MAX_POINTS"`
	Workers   int `yaml:"workers" env:"SWEEP_WORKERS"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// EnvPrefix is prepended to every environment override, e.g. MADRA_PORT.
const EnvPrefix = "MADRA_"

func (c *Config) ExplorerLimits() explorer.Limits {
	return explorer.Limits{
		MinCapacity:    c.Limits.MinCapacity,
		MaxCapacity:    c.Limits.MaxCapacity,
		MaxDurationMin: c.Limits.MaxDurationMin,
		MinDtMin:       c.Limits.MinDtMin,
		MaxDtMin:       c.Limits.MaxDtMin,
	}
}

func (c *Config) ExplorerSweep() explorer.SweepConfig {
	return explorer.SweepConfig{
		MaxPoints: c.Sweep.MaxPoints,
		Workers:   c.Sweep.Workers,
	}
}

// LogLevel maps logging.level to a slog level. Unknown values mean info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load builds the configuration from defaults, then the YAML file at path (if
// any), then MADRA_* environment variables.
func Load(path string) (*Config, error) {
	limits := explorer.DefaultLimits()
	sweep := explorer.DefaultSweepConfig()
	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 120,
		},
		Limits: LimitsConfig{
			MinCapacity:    limits.MinCapacity,
			MaxCapacity:    limits.MaxCapacity,
			MaxDurationMin: limits.MaxDurationMin,
			MinDtMin:       limits.MinDtMin,
			MaxDtMin:       limits.MaxDtMin,
		},
		Sweep: SweepConfig{
			MaxPoints: sweep.MaxPoints,
			Workers:   sweep.Workers,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects limits that no scenario could satisfy.
func (c *Config) Validate() error {
	l := c.Limits
	if l.MinCapacity <= 0 || l.MaxCapacity < l.MinCapacity {
		return fmt.Errorf("limits: capacity range [%g, %g] is invalid", l.MinCapacity, l.MaxCapacity)
	}
	if l.MinDtMin <= 0 || l.MaxDtMin < l.MinDtMin {
		return fmt.Errorf("limits: dt range [%g, %g] is invalid", l.MinDtMin, l.MaxDtMin)
	}
	if l.MaxDurationMin < l.MinDtMin {
		return fmt.Errorf("limits: max duration %g is below min dt %g", l.MaxDurationMin, l.MinDtMin)
	}
	if c.Sweep.MaxPoints < 1 || c.Sweep.Workers < 1 {
		return fmt.Errorf("sweep: max_points and workers must be positive")
	}
	return nil
}
