// Package config loads the explorer configuration.
//
// Configuration comes from a single YAML file. A .env file in the working
// directory is loaded first when present, then a few EXPLORER_* variables
// override file values:
//
//	EXPLORER_RECORDS           records.path
//	EXPLORER_LISTEN            server.listen
//	EXPLORER_GRAPH_CACHE_SIZE  server.graphCacheSize
//
// A relative records path is resolved against the config file directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bayleafwalker/bindery-explorer/internal/filter"
	"github.com/bayleafwalker/bindery-explorer/internal/graph"
)

const (
	EnvConfig         = "EXPLORER_CONFIG"
	EnvRecords        = "EXPLORER_RECORDS"
	EnvListen         = "EXPLORER_LISTEN"
	EnvGraphCacheSize = "EXPLORER_GRAPH_CACHE_SIZE"

	DefaultListen         = ":9090"
	DefaultGraphCacheSize = 64
)

// ErrUnknownPreset is returned by Config.Preset.
var ErrUnknownPreset = errors.New("unknown filter preset")

type Config struct {
	Distribution DistributionConfig `yaml:"distribution"`
	Records      RecordsConfig      `yaml:"records"`
	Filters      []Preset           `yaml:"filters,omitempty"`
	Graph        GraphConfig        `yaml:"graph"`
	Server       ServerConfig       `yaml:"server"`
}

// DistributionConfig overrides the name and version recorded in the dump
// when set.
type DistributionConfig struct {
	Name    string `yaml:"name,omitempty"`
	Version string `yaml:"version,omitempty"`
}

type RecordsConfig struct {
	// Path of the distribution dump.
	Path string `yaml:"path"`
}

// Preset is a named criterion filter.
type Preset struct {
	Name              string `yaml:"name"`
	filter.Criteria   `yaml:",inline"`
	IncludeReferences bool `yaml:"includeReferences,omitempty"`
}

type GraphConfig struct {
	// Categories are matched longest prefix first.
	Categories []graph.CategoryRule `yaml:"categories,omitempty"`
}

type ServerConfig struct {
	Listen         string `yaml:"listen"`
	GraphCacheSize int    `yaml:"graphCacheSize"`
}

// Default returns the configuration used before any file is read.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:         DefaultListen,
			GraphCacheSize: DefaultGraphCacheSize,
		},
	}
}

// Load reads the file named by EXPLORER_CONFIG, or only the defaults and
// environment when it is unset.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFile(os.Getenv(EnvConfig))
}

// LoadFile reads path (skipped when empty), applies environment overrides
// and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate %q: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}
	if c.Records.Path != "" && !filepath.IsAbs(c.Records.Path) {
		c.Records.Path = filepath.Join(filepath.Dir(path), c.Records.Path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvRecords)); v != "" {
		c.Records.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvListen)); v != "" {
		if !strings.Contains(v, ":") {
			v = ":" + v
		}
		c.Server.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGraphCacheSize)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: parse %s=%q: %w", EnvGraphCacheSize, v, err)
		}
		c.Server.GraphCacheSize = n
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	seen := make(map[string]struct{}, len(c.Filters))
	for i, p := range c.Filters {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("filters[%d]: name is required", i))
			continue
		}
		if _, dup := seen[p.Name]; dup {
			errs = append(errs, fmt.Errorf("filters[%d]: duplicate name %q", i, p.Name))
		}
		seen[p.Name] = struct{}{}
		if p.Criteria.IsEmpty() {
			errs = append(errs, fmt.Errorf("filters[%d] %q: no include criteria", i, p.Name))
		}
	}

	for i, r := range c.Graph.Categories {
		if r.Prefix == "" || r.Category == "" {
			errs = append(errs, fmt.Errorf("graph.categories[%d]: prefix and category are required", i))
		}
	}

	if c.Server.GraphCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("server.graphCacheSize must be positive, got %d", c.Server.GraphCacheSize))
	}

	return errors.Join(errs...)
}

// Preset returns the filter preset called name.
func (c *Config) Preset(name string) (Preset, error) {
	for _, p := range c.Filters {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("config: preset %q: %w", name, ErrUnknownPreset)
}
