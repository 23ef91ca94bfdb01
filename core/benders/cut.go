package benders

import (
	"fmt"

	"github.com/kilianp07/flightrecovery/core/model"
)

// Cut is the inequality beta·r + theta >= alpha, where r holds the
// reschedule minutes of every leg.
type Cut struct {
	Alpha float64
	Beta  []float64
}

// NewCut returns a zero cut over numLegs legs.
func NewCut(numLegs int) *Cut { return &Cut{Beta: make([]float64, numLegs)} }

// Add accumulates o into c.
func (c *Cut) Add(o *Cut) {
	c.Alpha += o.Alpha
	for i, b := range o.Beta {
		c.Beta[i] += b
	}
}

// LHS evaluates theta + beta·r.
func (c *Cut) LHS(reschedules []float64, theta float64) float64 {
	lhs := theta
	for i, b := range c.Beta {
		lhs += b * reschedules[i]
	}
	return lhs
}

// Separates reports whether the master point violates the cut by at least
// MinimumCutViolation.
func (c *Cut) Separates(reschedules []float64, theta float64) bool {
	return c.LHS(reschedules, theta) <= c.Alpha-model.MinimumCutViolation
}

func (c *Cut) String() string {
	return fmt.Sprintf("Cut(alpha=%.4f, beta=%v)", c.Alpha, c.Beta)
}
