package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NJ2612/ev-charge-optimizer/core/routing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
http:
  addr: ":9090"
network:
  db_path: stations.db
routing:
  battery_policy: recharge-en-route
predictor:
  ridge: 0.5
traffic:
  base_url: "http://traffic.local"
metrics:
  prometheus_enabled: true
  prometheus_port: ":9100"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "stations.db", cfg.Network.DBPath)
	assert.Equal(t, routing.PolicyRechargeEnRoute, cfg.Routing.Policy())
	assert.Equal(t, 0.5, cfg.Predictor.Ridge)
	assert.Equal(t, "http://traffic.local", cfg.Traffic.BaseURL)
	assert.True(t, cfg.Metrics.PrometheusEnabled)
	assert.Equal(t, ":9100", cfg.Metrics.PrometheusPort)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", "http: {}\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "ev_charger.db", cfg.Network.DBPath)
	assert.Equal(t, "load_predictor.json", cfg.Predictor.ModelPath)
	assert.Equal(t, 1e-6, cfg.Predictor.Ridge)
	assert.Equal(t, routing.PolicyInitialCharge, cfg.Routing.Policy())
	assert.Equal(t, ":2112", cfg.Metrics.PrometheusPort)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", "http:\n  addr: \":9090\"\n")
	t.Setenv("EV_HTTP__ADDR", ":7070")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"http": {"addr": ":6060"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.HTTP.Addr)
}

func TestLoadRejectsBadInput(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeConfig(t, "config.yaml", "routing:\n  battery_policy: teleport\n")
	_, err = Load(path)
	assert.Error(t, err)
}
