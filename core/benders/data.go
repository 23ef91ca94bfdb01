package benders

import "sync"

// Data aggregates the scenario contributions of one iteration: one cut per
// scenario under multi-cut, a single cut otherwise, and the upper bound of the
// evaluated first-stage solution.
type Data struct {
	mu         sync.Mutex
	cuts       []*Cut
	upperBound float64
}

// NewData starts an aggregation at the reschedule cost of the evaluated
// solution.
func NewData(numCuts, numLegs int, rescheduleCost float64) *Data {
	d := &Data{cuts: make([]*Cut, numCuts), upperBound: rescheduleCost}
	for i := range d.cuts {
		d.cuts[i] = NewCut(numLegs)
	}
	return d
}

// AddScenario adds a probability weighted cut and objective. Safe for
// concurrent use.
func (d *Data) AddScenario(cutIdx int, cut *Cut, weightedObjective float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cuts[cutIdx].Add(cut)
	d.upperBound += weightedObjective
}

// Cuts returns the aggregated cuts.
func (d *Data) Cuts() []*Cut {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cuts
}

// UpperBound returns the cost of the evaluated solution.
func (d *Data) UpperBound() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.upperBound
}
