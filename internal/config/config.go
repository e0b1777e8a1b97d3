package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/maureliano/hvdc-simulator-sub000/internal/logging"
	"github.com/maureliano/hvdc-simulator-sub000/internal/orchestrator"
)

// Config holds everything the fidelity service needs at startup.
type Config struct {
	// Storage
	DatabasePath string `yaml:"database_path"`

	// gRPC listen address for the serve command
	ListenAddr string `yaml:"listen_addr"`

	// Reports replayed from storage into the in-memory history at startup
	RestoreLimit int `yaml:"restore_limit"`

	Log    logging.Config      `yaml:"log"`
	Engine orchestrator.Config `yaml:"engine"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DatabasePath: "fidelity.db",
		ListenAddr:   "localhost:50061",
		RestoreLimit: 500,
		Log:          logging.DefaultConfig(),
		Engine:       orchestrator.DefaultConfig(),
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path uses defaults and environment only.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnvOverrides lets deployments override the file without editing it.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("FIDELITY_DB"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("FIDELITY_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("FIDELITY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("FIDELITY_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FIDELITY_HISTORY_LIMIT: %w", err)
		}
		c.Engine.HistoryLimit = n
	}
	return nil
}

// Validate checks cross-field consistency.
func (c Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if c.RestoreLimit < 0 {
		return fmt.Errorf("restore_limit must be >= 0")
	}
	if c.Engine.HistoryLimit < 0 {
		return fmt.Errorf("engine.history_limit must be >= 0")
	}
	cond := c.Engine.Condition
	if cond.TransientFrequencyHz > cond.FaultFrequencyHz || cond.TransientVoltagePct > cond.FaultVoltagePct {
		return fmt.Errorf("engine.condition transient limits must not exceed fault limits")
	}
	if err := c.Engine.Fidelity.Validate(); err != nil {
		return err
	}
	if err := c.Engine.Uncertainty.Validate(); err != nil {
		return err
	}
	if err := c.Engine.Gate.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}
