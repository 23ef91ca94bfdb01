// Package instance reads schedule files.
package instance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/core/registry"
)

// File is the on-disk layout of an instance. Scenario delays are keyed by leg
// position in Legs.
type File struct {
	Name      string           `json:"name,omitempty" yaml:"name,omitempty"`
	Legs      []*model.Leg     `json:"legs" yaml:"legs"`
	Scenarios []model.Scenario `json:"scenarios,omitempty" yaml:"scenarios,omitempty"`
}

// Instance is a loaded schedule with its optional explicit scenarios.
type Instance struct {
	Name      string
	Registry  *registry.Registry
	Scenarios []model.Scenario
}

// Load reads a YAML or JSON instance picked by file extension.
func Load(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Decode(bytes.NewReader(data), filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("instance %s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f.Build()
}

// Decode parses an instance. ext is a file extension such as ".yaml".
func Decode(r io.Reader, ext string) (*File, error) {
	var f File
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	case ".json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported instance format: %s", ext)
	}
	return &f, nil
}

// Build indexes the legs and checks explicit scenarios.
func (f *File) Build() (*Instance, error) {
	reg, err := registry.New(f.Legs)
	if err != nil {
		return nil, err
	}
	if len(f.Scenarios) > 0 {
		for i, s := range f.Scenarios {
			for idx := range s.PrimaryDelays {
				if idx < 0 || idx >= len(f.Legs) {
					return nil, fmt.Errorf("scenario %d: leg index %d out of range", i, idx)
				}
			}
		}
		if err := model.ValidateScenarios(f.Scenarios); err != nil {
			return nil, err
		}
	}
	return &Instance{Name: f.Name, Registry: reg, Scenarios: f.Scenarios}, nil
}
