package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the orbis CLI configuration.
type Config struct {
	Directory   string `yaml:"directory"`
	Adaptation  string `yaml:"adaptation"`
	DataURL     string `yaml:"data_url"`
	Index       bool   `yaml:"index"` // record pack scans in <directory>/packs.db
	ScanWorkers int    `yaml:"scan_workers"`
	LogLevel    string `yaml:"log_level"`

	World string `yaml:"world"`
	Pack  string `yaml:"pack"`
	Seed  int64  `yaml:"seed"`

	PreviewOut    string `yaml:"preview_out"`
	PreviewRadius int    `yaml:"preview_radius"` // in chunks around the origin
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Directory:     "orbis",
		Adaptation:    "1_20_4",
		ScanWorkers:   8,
		LogLevel:      "info",
		World:         "world",
		PreviewRadius: 4,
	}
}

// Load reads a YAML (or JSON) config file on top of the defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["dir"] {
		cfg.Directory = fromFile.Directory
	}
	if !explicitFlags["adaptation"] {
		cfg.Adaptation = fromFile.Adaptation
	}
	if !explicitFlags["data-url"] {
		cfg.DataURL = fromFile.DataURL
	}
	if !explicitFlags["index"] {
		cfg.Index = fromFile.Index
	}
	if !explicitFlags["scan-workers"] {
		cfg.ScanWorkers = fromFile.ScanWorkers
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
	if !explicitFlags["world"] {
		cfg.World = fromFile.World
	}
	if !explicitFlags["pack"] {
		cfg.Pack = fromFile.Pack
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["preview"] {
		cfg.PreviewOut = fromFile.PreviewOut
	}
	if !explicitFlags["radius"] {
		cfg.PreviewRadius = fromFile.PreviewRadius
	}
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}
