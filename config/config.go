// Package config loads storagecache settings from YAML or JSON files.
//
// Files are expanded with ExpandEnvStrict before parsing, so secrets and
// per-environment values can be referenced as ${VAR}. Fields omitted from
// a file keep the values from Default.
//
//	retention:
//	  threshold: 2s
//	template:
//	  max_bytes: 10MiB
//	  idle_expiry: 24h
//	  eviction: lru
//	  persistence: none
//	observe:
//	  service_name: ${SERVICE_NAME}
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/storagecache/observe"
	"github.com/jonwraymond/storagecache/region"
	"github.com/jonwraymond/storagecache/retention"
)

// DefaultServiceName is the observe service name used by Default.
const DefaultServiceName = "storagecache"

// Config is the complete storagecache configuration.
type Config struct {
	Retention RetentionConfig `yaml:"retention" json:"retention"`
	Template  TemplateConfig  `yaml:"template" json:"template"`
	Observe   observe.Config  `yaml:"observe" json:"observe"`
}

// RetentionConfig configures which results are worth caching.
type RetentionConfig struct {
	// Threshold is the minimum computation time for a result to be cached.
	Threshold Duration `yaml:"threshold" json:"threshold"`
}

// TemplateConfig mirrors region.Template in file form.
type TemplateConfig struct {
	MaxEntries    int      `yaml:"max_entries" json:"max_entries"`
	MaxBytes      ByteSize `yaml:"max_bytes" json:"max_bytes"`
	IdleExpiry    Duration `yaml:"idle_expiry" json:"idle_expiry"`
	Eviction      string   `yaml:"eviction" json:"eviction"`
	Persistence   string   `yaml:"persistence" json:"persistence"`
	SweepInterval Duration `yaml:"sweep_interval" json:"sweep_interval"`
}

// Default returns the built-in configuration: a 2s retention threshold,
// the default region template and telemetry disabled.
func Default() *Config {
	tmpl := region.DefaultTemplate()
	return &Config{
		Retention: RetentionConfig{Threshold: Duration(retention.DefaultThreshold)},
		Template: TemplateConfig{
			MaxEntries:    tmpl.MaxEntries,
			MaxBytes:      ByteSize(tmpl.MaxBytes),
			IdleExpiry:    Duration(tmpl.IdleExpiry),
			Eviction:      string(tmpl.Eviction),
			Persistence:   string(tmpl.Persistence),
			SweepInterval: Duration(tmpl.SweepInterval),
		},
		Observe: observe.Config{
			ServiceName: DefaultServiceName,
			Logging:     observe.LoggingConfig{Level: "info"},
		},
	}
}

// Load reads, expands and parses the file at path, then validates it.
// Supported formats: YAML (.yaml, .yml) and JSON (.json).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, err := ExpandEnvStrict(string(data))
	if err != nil {
		return nil, err
	}

	cfg := Default()
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("config: parsing YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("config: parsing JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q (use .json, .yaml or .yml)", ErrUnsupportedFormat, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports whether the configuration is usable.
func (c *Config) Validate() error {
	if c.Retention.Threshold < 0 {
		return fmt.Errorf("%w: retention threshold %s is negative", ErrInvalidConfig, c.Retention.Threshold)
	}
	if err := c.RegionTemplate().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// RegionTemplate converts the template section to a region.Template.
func (c *Config) RegionTemplate() region.Template {
	return region.Template{
		MaxEntries:    c.Template.MaxEntries,
		MaxBytes:      int64(c.Template.MaxBytes),
		Eviction:      region.EvictionPolicy(c.Template.Eviction),
		IdleExpiry:    c.Template.IdleExpiry.Std(),
		Persistence:   region.PersistenceMode(c.Template.Persistence),
		SweepInterval: c.Template.SweepInterval.Std(),
	}
}

// ThresholdSource returns a fixed retention source for c. Use Threshold
// when the value must change at runtime.
func (c *Config) ThresholdSource() retention.ThresholdSource {
	return retention.FixedThreshold(c.Retention.Threshold.Std())
}

// Observer builds the telemetry Observer described by the observe section.
// The caller owns the result and must Shutdown it.
func (c *Config) Observer(ctx context.Context) (observe.Observer, error) {
	if err := c.Observe.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	obs, err := observe.NewObserver(ctx, c.Observe)
	if err != nil {
		return nil, fmt.Errorf("config: building observer: %w", err)
	}
	return obs, nil
}
