package metrics

import (
	"fmt"

	"github.com/kilianp07/flightrecovery/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// ListenAddr exposes /metrics when a prometheus sink is configured.
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.ListenAddr == "" && c.HasSink("prometheus") {
		c.ListenAddr = ":2112"
	}
}

// Validate checks that every sink entry names a type.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics sink %d: missing type", i)
		}
	}
	return nil
}

// HasSink reports whether a sink of the given type is configured.
func (c Config) HasSink(name string) bool {
	for _, s := range c.Sinks {
		if s.Type == name {
			return true
		}
	}
	return false
}
