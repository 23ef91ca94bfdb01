package model

import (
	"fmt"
	"math"
)

// Scenario is one realization of primary delays.
type Scenario struct {
	Probability   float64     `json:"probability" yaml:"probability"`
	PrimaryDelays map[int]int `json:"primary_delays" yaml:"primary_delays"` // leg index -> minutes
}

// Delays expands the sparse delay map into a per-leg slice.
func (s Scenario) Delays(numLegs int) []int {
	out := make([]int, numLegs)
	for idx, d := range s.PrimaryDelays {
		if idx >= 0 && idx < numLegs {
			out[idx] = d
		}
	}
	return out
}

// ValidateScenarios checks that probabilities are positive and sum to one.
func ValidateScenarios(scenarios []Scenario) error {
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios")
	}
	sum := 0.0
	for i, s := range scenarios {
		if s.Probability <= 0 {
			return fmt.Errorf("scenario %d: probability must be positive", i)
		}
		for idx, d := range s.PrimaryDelays {
			if d < 0 {
				return fmt.Errorf("scenario %d: negative delay on leg %d", i, idx)
			}
		}
		sum += s.Probability
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("scenario probabilities sum to %.6f", sum)
	}
	return nil
}
