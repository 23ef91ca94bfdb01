package secondstage

import (
	"fmt"
	"math"
	"time"
)

// DelaySolution describes the delays of one scenario under a fixed reschedule.
type DelaySolution struct {
	Objective          float64       `json:"objective"`
	PrimaryDelays      []int         `json:"primary_delays"`
	TotalDelays        []int         `json:"total_delays"`
	PropagatedDelays   []int         `json:"propagated_delays"`
	ExcessDelays       []int         `json:"excess_delays"`
	DelayCost          float64       `json:"delay_cost"`
	ExpExcessDelayCost float64       `json:"exp_excess_delay_cost"`
	SolutionTime       time.Duration `json:"solution_time"`
}

// DelaySolution reads leg delays from an integral solution. Every leg must be
// covered by exactly one selected route.
func (b *Builder) DelaySolution(sol *Solution, primary []int) (*DelaySolution, error) {
	n := len(b.legs)
	ds := &DelaySolution{
		Objective:        sol.Objective,
		PrimaryDelays:    append([]int(nil), primary...),
		TotalDelays:      make([]int, n),
		PropagatedDelays: make([]int, n),
		ExcessDelays:     make([]int, n),
	}

	covered := make([]bool, n)
	for t := range b.tails {
		for k, y := range sol.Y[t] {
			if y < 0.5 {
				continue
			}
			p := b.paths[t][k]
			for i, leg := range p.Legs {
				if covered[leg.Index] {
					return nil, fmt.Errorf("leg %d covered twice", leg.ID)
				}
				covered[leg.Index] = true
				ds.TotalDelays[leg.Index] = p.Delays[i]
				ds.PropagatedDelays[leg.Index] = p.Delays[i] - primary[leg.Index]
			}
		}
	}

	rescheduleCost := 0.0
	for i, leg := range b.legs {
		if !covered[i] {
			return nil, fmt.Errorf("leg %d not covered", leg.ID)
		}
		ds.ExcessDelays[i] = int(math.Round(sol.D[i]))
		ds.DelayCost += sol.D[i] * leg.DelayCostPerMin
		rescheduleCost += float64(b.reschedules[i]) * leg.RescheduleCostPerMin
	}
	ds.ExpExcessDelayCost = math.Max(ds.DelayCost+rescheduleCost-b.opts.ExcessTarget, 0)

	want := ds.DelayCost
	if b.opts.ExpectedExcess {
		want += b.opts.RiskAversion * sol.V
	}
	if math.Abs(want-sol.Objective) > 1e-4*(1+math.Abs(sol.Objective)) {
		return nil, fmt.Errorf("delay cost %.4f does not match objective %.4f", want, sol.Objective)
	}
	return ds, nil
}

// Stats summarizes one delay vector.
type Stats struct {
	Total   float64 `json:"total"`
	Maximum float64 `json:"maximum"`
	Average float64 `json:"average"`
}

func statsOf(v []int) Stats {
	var s Stats
	for _, d := range v {
		s.Total += float64(d)
		s.Maximum = math.Max(s.Maximum, float64(d))
	}
	if len(v) > 0 {
		s.Average = s.Total / float64(len(v))
	}
	return s
}

// TotalStats summarizes total leg delays.
func (d *DelaySolution) TotalStats() Stats { return statsOf(d.TotalDelays) }

// PropagatedStats summarizes propagated leg delays.
func (d *DelaySolution) PropagatedStats() Stats { return statsOf(d.PropagatedDelays) }

// ExcessStats summarizes excess delays beyond the on-time threshold.
func (d *DelaySolution) ExcessStats() Stats { return statsOf(d.ExcessDelays) }

// OnTime reports the share of legs without excess delay.
func (d *DelaySolution) OnTime() float64 {
	if len(d.ExcessDelays) == 0 {
		return 1
	}
	n := 0
	for _, e := range d.ExcessDelays {
		if e == 0 {
			n++
		}
	}
	return float64(n) / float64(len(d.ExcessDelays))
}
