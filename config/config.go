// Package config loads and saves the emulator's TOML configuration. Only
// knobs the emulator actually consumes are represented: execution defaults
// for the CLI, debugger history depth, and the trace/statistics output
// settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk configuration. Missing fields keep their defaults.
type Config struct {
	Execution struct {
		ThreadCount    int  `toml:"thread_count"`
		MemorySize     int  `toml:"memory_size"`
		EnableTrace    bool `toml:"enable_trace"`
		EnableMemTrace bool `toml:"enable_mem_trace"`
		EnableStats    bool `toml:"enable_stats"`
	} `toml:"execution"`

	Debugger struct {
		HistorySize int `toml:"history_size"`
	} `toml:"debugger"`

	Trace struct {
		OutputFile    string `toml:"output_file"`
		FilterRegs    string `toml:"filter_registers"` // comma-separated: "r0,ra3,rb12"
		IncludeFlags  bool   `toml:"include_flags"`
		IncludeTiming bool   `toml:"include_timing"`
		MaxEntries    int    `toml:"max_entries"`
	} `toml:"trace"`

	Statistics struct {
		OutputFile     string `toml:"output_file"`
		Format         string `toml:"format"` // json, csv
		CollectHotPath bool   `toml:"collect_hotpath"`
	} `toml:"statistics"`
}

// DefaultConfig returns the built-in defaults: 12 threads over 16MB of
// memory, tracing and statistics off but pointed at sensible filenames.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Execution.ThreadCount = 12
	cfg.Execution.MemorySize = 16 * 1024 * 1024

	cfg.Debugger.HistorySize = 1000

	cfg.Trace.OutputFile = "trace.log"
	cfg.Trace.IncludeFlags = true
	cfg.Trace.IncludeTiming = true
	cfg.Trace.MaxEntries = 100000

	cfg.Statistics.OutputFile = "stats.json"
	cfg.Statistics.Format = "json"
	cfg.Statistics.CollectHotPath = true
	return cfg
}

// GetConfigPath returns the per-user config file path
// (<user-config-dir>/qpuemu/config.toml), falling back to ./config.toml
// when the user directory cannot be resolved or created.
func GetConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	dir := filepath.Join(base, "qpuemu")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "config.toml")
}

// Load reads the default config file; a missing file yields the defaults.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads a config file, layering it over the defaults. A missing
// file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes the configuration to path as TOML.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}
