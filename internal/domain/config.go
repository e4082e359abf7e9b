package domain

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries all engine settings. Zero values are filled in by
// applyDefaults; a nil Logger falls back to slog.Default.
type Config struct {
	DataDir string       `json:"data_dir" yaml:"data_dir"`
	Logger  *slog.Logger `json:"-" yaml:"-"`

	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Registry RegistryConfig `json:"registry" yaml:"registry"`
	Engine   EngineConfig   `json:"engine" yaml:"engine"`
}

type StorageConfig struct {
	// InMemory keeps all records in process memory; used by tests and
	// embedded callers that bring their own durability.
	InMemory   bool `json:"in_memory" yaml:"in_memory"`
	SyncWrites bool `json:"sync_writes" yaml:"sync_writes"`
}

type RegistryConfig struct {
	// LoadTimeout bounds how long a read blocks waiting for built-in type
	// loading. Zero means wait until the caller's context is done.
	LoadTimeout time.Duration `json:"load_timeout" yaml:"load_timeout"`
}

type EngineConfig struct {
	// DisableBuiltins skips registering the built-in node types at start.
	DisableBuiltins bool `json:"disable_builtins" yaml:"disable_builtins"`

	// MaxCallDepth caps cross-workflow call nesting to keep a pair of
	// mutually-triggering workflows from recursing forever.
	MaxCallDepth int `json:"max_call_depth" yaml:"max_call_depth"`
}

func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.Engine.MaxCallDepth <= 0 {
		c.Engine.MaxCallDepth = 8
	}
}

// DefaultConfig returns a config with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a yaml config file and applies defaults on top.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Normalized returns the config with defaults applied, treating nil as the
// default config.
func (c *Config) Normalized() *Config {
	if c == nil {
		return DefaultConfig()
	}
	c.applyDefaults()
	return c
}
