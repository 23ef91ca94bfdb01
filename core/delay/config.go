package delay

import (
	"fmt"
	"strings"
)

// Distribution names the primary delay distribution.
type Distribution string

const (
	Exponential     Distribution = "EXPONENTIAL"
	TruncatedNormal Distribution = "TRUNCATED_NORMAL"
	LogNormal       Distribution = "LOGNORMAL"
)

// PickStrategy names which legs receive primary delays.
type PickStrategy string

const (
	PickAll      PickStrategy = "ALL"
	PickHub      PickStrategy = "HUB"
	PickRushTime PickStrategy = "RUSH_TIME"
)

// Config defines how scenarios are sampled.
type Config struct {
	Distribution Distribution `json:"distribution"`
	Mean         float64      `json:"mean"`
	SD           float64      `json:"sd"`
	Strategy     PickStrategy `json:"strategy"`
	NumScenarios int          `json:"num_scenarios"`
	Seed         uint64       `json:"seed"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Distribution == "" {
		c.Distribution = Exponential
	}
	c.Distribution = Distribution(strings.ToUpper(string(c.Distribution)))
	if c.Mean == 0 {
		c.Mean = 30
	}
	if c.SD == 0 {
		c.SD = 15
	}
	if c.Strategy == "" {
		c.Strategy = PickAll
	}
	c.Strategy = PickStrategy(strings.ToUpper(string(c.Strategy)))
	if c.NumScenarios == 0 {
		c.NumScenarios = 10
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	switch c.Distribution {
	case Exponential, TruncatedNormal, LogNormal:
	default:
		return fmt.Errorf("unknown distribution %q", c.Distribution)
	}
	switch c.Strategy {
	case PickAll, PickHub, PickRushTime:
	default:
		return fmt.Errorf("unknown flight pick strategy %q", c.Strategy)
	}
	if c.Mean <= 0 {
		return fmt.Errorf("mean must be positive")
	}
	if c.SD < 0 {
		return fmt.Errorf("sd must not be negative")
	}
	if c.NumScenarios < 1 {
		return fmt.Errorf("num_scenarios must be at least 1")
	}
	return nil
}
