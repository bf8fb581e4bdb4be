// Package config loads the journey engine's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/journey-engine/internal/logging"
	"github.com/danielpatrickdp/journey-engine/internal/persist"
	"github.com/danielpatrickdp/journey-engine/internal/session"
)

// Environment variables that override file values.
const (
	EnvConfigPath = "JOURNEY_CONFIG"
	EnvDBPath     = "JOURNEY_DB"
	EnvLogLevel   = "JOURNEY_LOG_LEVEL"
)

// #region types

// Config is the root configuration.
type Config struct {
	Store    StoreConfig          `yaml:"store"`
	Logging  logging.LoggerConfig `yaml:"logging"`
	Session  session.Config       `yaml:"session"`
	Persist  PersistConfig        `yaml:"persist"`
	Registry RegistryConfig       `yaml:"registry"`
	Metrics  MetricsConfig        `yaml:"metrics"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// PersistConfig tunes the async writer.
type PersistConfig struct {
	QueueSize    int           `yaml:"queue_size"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RegistryConfig bounds the journeys held in memory.
type RegistryConfig struct {
	MaxOpen int `yaml:"max_open"`
}

// MetricsConfig names the Prometheus namespace.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// #endregion types

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Store:   StoreConfig{Path: "journey.db"},
		Logging: logging.LoggerConfig{Level: "info"},
		Session: session.DefaultConfig(),
		Persist: PersistConfig{
			QueueSize:    persist.DefaultQueueSize,
			WriteTimeout: persist.DefaultWriteTimeout,
		},
		Registry: RegistryConfig{MaxOpen: 256},
		Metrics:  MetricsConfig{Enabled: true, Namespace: "journey"},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is empty")
	}
	if c.Persist.QueueSize <= 0 {
		return fmt.Errorf("persist.queue_size must be positive, got %d", c.Persist.QueueSize)
	}
	if c.Registry.MaxOpen <= 0 {
		return fmt.Errorf("registry.max_open must be positive, got %d", c.Registry.MaxOpen)
	}
	sc := c.Session.Scoring
	if sc.AssumedContentTotal <= 0 {
		return fmt.Errorf("session.scoring.assumed_content_total must be positive, got %d", sc.AssumedContentTotal)
	}
	if sc.EngagementSaturationSeconds <= 0 {
		return fmt.Errorf("session.scoring.engagement_saturation_seconds must be positive, got %v", sc.EngagementSaturationSeconds)
	}
	g := c.Session.Gate
	if g.MinWeight < 0 || g.MaxWeight > 1 || g.MinWeight > g.MaxWeight {
		return fmt.Errorf("session.gate weight range [%v,%v] must lie within [0,1]", g.MinWeight, g.MaxWeight)
	}
	if g.MaxElapsedSeconds < 0 {
		return fmt.Errorf("session.gate.max_elapsed_seconds must not be negative")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	c.Store.Path = envOr(EnvDBPath, c.Store.Path)
	c.Logging.Level = envOr(EnvLogLevel, c.Logging.Level)
}

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
