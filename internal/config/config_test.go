package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maureliano/hvdc-simulator-sub000/internal/gate"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fidelity.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := writeConfig(t, `
database_path: /var/lib/fidelity/reports.db
listen_addr: 0.0.0.0:7000
log:
  level: debug
engine:
  history_limit: 50
  fidelity:
    centers:
      frequency_hz: 0.2
  gate:
    allow_min_fidelity: 88
    base_risk:
      control: 65
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/fidelity/reports.db", cfg.DatabasePath)
	assert.Equal(t, "0.0.0.0:7000", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 50, cfg.Engine.HistoryLimit)
	assert.Equal(t, 0.2, cfg.Engine.Fidelity.Centers.FrequencyHz)
	assert.Equal(t, 2.0, cfg.Engine.Fidelity.Centers.VoltagePct, "untouched keys keep defaults")
	assert.Equal(t, 88.0, cfg.Engine.Gate.AllowMinFidelity)
	assert.Equal(t, 65.0, cfg.Engine.Gate.BaseRisk[gate.OpControl])
	assert.Equal(t, 80.0, cfg.Engine.Gate.BaseRisk[gate.OpOptimization])
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FIDELITY_DB", "/tmp/env.db")
	t.Setenv("FIDELITY_ADDR", "127.0.0.1:9999")
	t.Setenv("FIDELITY_LOG_LEVEL", "warn")
	t.Setenv("FIDELITY_HISTORY_LIMIT", "25")

	cfg, err := Load(writeConfig(t, "database_path: from-file.db\n"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env.db", cfg.DatabasePath)
	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 25, cfg.Engine.HistoryLimit)
}

func TestEnvOverrideBadHistoryLimit(t *testing.T) {
	t.Setenv("FIDELITY_HISTORY_LIMIT", "lots")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "engine: [not, a, map]"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "engine:\n  fidelity:\n    weights:\n      power: 0.9\n"))
	assert.ErrorContains(t, err, "weights")

	_, err = Load(writeConfig(t, "engine:\n  condition:\n    transient_voltage_pct: 20\n"))
	assert.ErrorContains(t, err, "condition")

	_, err = Load(writeConfig(t, "log:\n  level: loud\n"))
	assert.Error(t, err)
}
