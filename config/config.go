// Package config loads the homeopt configuration from a YAML or JSON file
// with HOMEOPT_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/homeopt/connectors/tariff"
	"github.com/kilianp07/homeopt/core/metrics"
	"github.com/kilianp07/homeopt/core/optimizer"
	"github.com/kilianp07/homeopt/infra/mqtt"
	"github.com/kilianp07/homeopt/pkg/export"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore: HOMEOPT_OPTIMIZER__GENERATIONS=200.
const EnvPrefix = "HOMEOPT_"

// ScenarioConfig points at the scenario file. Empty means the built-in
// reference household.
type ScenarioConfig struct {
	Path string `json:"path"`
}

type Config struct {
	Optimizer optimizer.Params `json:"optimizer"`
	Scenario  ScenarioConfig   `json:"scenario"`
	Tariff    tariff.Config    `json:"tariff"`
	Metrics   metrics.Config   `json:"metrics"`
	MQTT      mqtt.Config      `json:"mqtt"`
	Export    export.Config    `json:"export"`
	Logging   LoggingConfig    `json:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Optimizer: optimizer.DefaultParams()}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills every section's defaults.
func (c *Config) SetDefaults() {
	c.Tariff.SetDefaults()
	c.Export.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Optimizer.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Tariff.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.MQTT.Enabled() {
		if err := c.MQTT.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.Export.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Load reads path on top of the defaults, then applies environment
// overrides. An empty path loads the defaults and the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := &Config{Optimizer: optimizer.DefaultParams()}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
