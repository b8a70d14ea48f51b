package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kektorgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.MatchOptions(), 3)
	assert.True(t, cfg.StoreOptions().CacheLoaded)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
store:
  data_dir: /var/lib/graphs
  direct: true
match:
  eigen_max_nodes: 0
  timeout: 30s
metrics:
  enabled: true
server:
  auth_token: secret
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/graphs", cfg.Store.DataDir)
	assert.True(t, cfg.Store.Direct)
	assert.True(t, cfg.Store.CacheLoaded, "untouched default")
	assert.Equal(t, 0, cfg.Match.EigenMaxNodes)
	assert.Equal(t, 30*time.Second, cfg.Match.Timeout)
	assert.Equal(t, DefaultConfig().Match.CheckInterval, cfg.Match.CheckInterval)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9464", cfg.Metrics.Addr)
	assert.Equal(t, "secret", cfg.Server.AuthToken)
	assert.Equal(t, ":9470", cfg.Server.Addr)

	opts := cfg.StoreOptions()
	assert.Equal(t, "/var/lib/graphs", opts.DataDir)
	assert.True(t, opts.Direct)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":    "store:\n  data_dri: x\n",
		"bad duration":   "match:\n  timeout: soon\n",
		"bad interval":   "match:\n  check_interval: 0\n",
		"empty data dir": "store:\n  data_dir: \"\"\n",
		"syntax":         "store: [\n",
		"negative max":   "match:\n  max_workers: -1\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			require.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestWorkersClamp(t *testing.T) {
	m := MatchConfig{MaxWorkers: 4}
	assert.Equal(t, 4, m.Workers(0))
	assert.Equal(t, 4, m.Workers(-3))
	assert.Equal(t, 2, m.Workers(2))
	assert.Equal(t, 4, m.Workers(1_000_000))

	m.MaxWorkers = 0
	assert.Equal(t, runtime.GOMAXPROCS(0), m.Workers(0))
	assert.LessOrEqual(t, m.Workers(1_000_000), runtime.GOMAXPROCS(0))
}

func TestInjectiveEdgesOption(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "match:\n  injective_edges: true\n  max_workers: 8\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Match.InjectiveEdges)
	assert.Equal(t, 8, cfg.Match.MaxWorkers)
	assert.Len(t, cfg.MatchOptions(), 4)
}
