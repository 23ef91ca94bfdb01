package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/flightrecovery/core/benders"
	"github.com/kilianp07/flightrecovery/core/delay"
	"github.com/kilianp07/flightrecovery/core/metrics"
	"github.com/kilianp07/flightrecovery/core/runlog"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore, e.g. FR_SOLVER__MAX_ITERATIONS=50.
const EnvPrefix = "FR_"

type Config struct {
	Solver    benders.Config `json:"solver"`
	Scenarios delay.Config   `json:"scenarios"`
	Metrics   metrics.Config `json:"metrics"`
	RunLog    runlog.Config  `json:"runlog"`
	Sentry    SentryConfig   `json:"sentry"`
}

// Load reads the configuration file at path, applies environment overrides
// and defaults, then validates every section. An empty path yields the
// defaults plus environment overrides.
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
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset fields in every section.
func (c *Config) SetDefaults() {
	c.Solver.SetDefaults()
	c.Scenarios.SetDefaults()
	c.Metrics.SetDefaults()
	c.RunLog.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if err := c.Scenarios.Validate(); err != nil {
		return fmt.Errorf("scenarios: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := c.RunLog.Validate(); err != nil {
		return fmt.Errorf("runlog: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return err
	}
	return nil
}
