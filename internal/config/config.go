// Package config loads the kektorgraph tool configuration from YAML.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sanonone/kektorgraph/pkg/isomorph"
	"github.com/sanonone/kektorgraph/pkg/store"
)

// Config is the root configuration document.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Match   MatchConfig   `yaml:"match"`
	Metrics MetricsConfig `yaml:"metrics"`
	Server  ServerConfig  `yaml:"server"`
}

// StoreConfig maps onto store.Options.
type StoreConfig struct {
	DataDir     string `yaml:"data_dir"`
	Direct      bool   `yaml:"direct"`
	CacheLoaded bool   `yaml:"cache_loaded"`
}

// MatchConfig tunes the matchers.
type MatchConfig struct {
	EigenMaxNodes int           `yaml:"eigen_max_nodes"` // 0 disables the spectrum filter
	EigenDecimals int           `yaml:"eigen_decimals"`
	CheckInterval int           `yaml:"check_interval"`
	MaxEmbeddings int           `yaml:"max_embeddings"` // 0 means no limit
	Timeout       time.Duration `yaml:"timeout"`        // 0 means no timeout
	MaxWorkers    int           `yaml:"max_workers"`    // 0 means GOMAXPROCS

	InjectiveEdges bool `yaml:"injective_edges"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ServerConfig controls the HTTP API started by the serve command.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"auth_token"` // empty disables authentication
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			DataDir:     "kektorgraph-data",
			Direct:      false,
			CacheLoaded: true,
		},
		Match: MatchConfig{
			EigenMaxNodes: isomorph.DefaultEigenMaxNodes,
			EigenDecimals: isomorph.DefaultEigenDecimals,
			CheckInterval: isomorph.DefaultCheckInterval,
			MaxEmbeddings: 1000,
			Timeout:       5 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9464",
		},
		Server: ServerConfig{
			Addr: ":9470",
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults. Unknown keys are
// rejected. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("YAML error in config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Store.DataDir == "":
		return fmt.Errorf("store.data_dir must not be empty")
	case c.Match.EigenMaxNodes < 0:
		return fmt.Errorf("match.eigen_max_nodes must not be negative")
	case c.Match.EigenDecimals < 0 || c.Match.EigenDecimals > 12:
		return fmt.Errorf("match.eigen_decimals must be in [0,12]")
	case c.Match.CheckInterval <= 0:
		return fmt.Errorf("match.check_interval must be positive")
	case c.Match.MaxEmbeddings < 0:
		return fmt.Errorf("match.max_embeddings must not be negative")
	case c.Match.Timeout < 0:
		return fmt.Errorf("match.timeout must not be negative")
	case c.Match.MaxWorkers < 0:
		return fmt.Errorf("match.max_workers must not be negative")
	case c.Metrics.Enabled && c.Metrics.Addr == "":
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	case c.Server.Addr == "":
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}

// StoreOptions converts the store section.
func (c Config) StoreOptions() store.Options {
	return store.Options{
		DataDir:     c.Store.DataDir,
		Direct:      c.Store.Direct,
		CacheLoaded: c.Store.CacheLoaded,
	}
}

// MatchOptions converts the match section into matcher options.
func (c Config) MatchOptions() []isomorph.Option {
	opts := []isomorph.Option{
		isomorph.WithEigenMaxNodes(c.Match.EigenMaxNodes),
		isomorph.WithEigenDecimals(c.Match.EigenDecimals),
		isomorph.WithCheckInterval(c.Match.CheckInterval),
	}
	if c.Match.InjectiveEdges {
		opts = append(opts, isomorph.WithInjectiveEdges())
	}
	return opts
}

// Workers clamps a requested batch worker count to max_workers. Zero or
// negative requests get the maximum.
func (m MatchConfig) Workers(requested int) int {
	limit := m.MaxWorkers
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	if requested <= 0 || requested > limit {
		return limit
	}
	return requested
}
