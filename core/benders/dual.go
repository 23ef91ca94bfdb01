package benders

import (
	"fmt"
	"math"

	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/core/network"
	"github.com/kilianp07/flightrecovery/core/pricing"
	"github.com/kilianp07/flightrecovery/core/secondstage"
)

// Dual is a dual vector of the scenario routing problem. Bound duals are
// keyed by path index and default to zero.
type Dual struct {
	Tail  []float64
	Leg   []float64
	Delay []float64
	Bound map[int]float64
	Risk  float64
}

// zeroDual is feasible for every route and leg since all costs are
// non-negative.
func zeroDual(numTails, numLegs int) *Dual {
	return &Dual{
		Tail:  make([]float64, numTails),
		Leg:   make([]float64, numLegs),
		Delay: make([]float64, numLegs),
		Bound: map[int]float64{},
	}
}

func dualFrom(d *secondstage.Duals) *Dual {
	out := &Dual{
		Tail:  append([]float64(nil), d.Tail...),
		Leg:   append([]float64(nil), d.Leg...),
		Delay: append([]float64(nil), d.Delay...),
		Bound: make(map[int]float64, len(d.Bound)),
		Risk:  d.Risk,
	}
	for k, v := range d.Bound {
		out.Bound[k] = v
	}
	return out
}

// anchor turns a converged dual into one that stays feasible in later
// Benders iterations. The first-stage reschedules only move right-hand sides,
// so feasibility carries over, but bound duals are keyed by columns of the
// current model. They are folded into the tail duals instead: each tail dual
// drops by the most negative bound dual of its routes. paths holds the model
// routes per tail.
func (d *Dual) anchor(paths [][]*network.Path) *Dual {
	out := zeroDual(len(d.Tail), len(d.Leg))
	copy(out.Leg, d.Leg)
	copy(out.Delay, d.Delay)
	out.Risk = d.Risk
	for t, v := range d.Tail {
		low := 0.0
		if t < len(paths) {
			for _, p := range paths[t] {
				low = math.Min(low, d.Bound[p.Index])
			}
		}
		out.Tail[t] = v + low
	}
	return out
}

// prices returns the pricing input of tail t.
func (d *Dual) prices(t int) pricing.Prices {
	return pricing.Prices{Leg: d.Leg, Delay: d.Delay, Tail: d.Tail[t]}
}

// LegSlack is the reduced cost of the excess delay variable of leg.
func (d *Dual) LegSlack(leg *model.Leg) float64 {
	return d.Delay[leg.Index] + leg.DelayCostPerMin*(1-d.Risk)
}

// PathSlack is the reduced cost of the selection variable of p.
func (d *Dual) PathSlack(p *network.Path) float64 {
	s := -d.Tail[p.Tail.Index] - d.Bound[p.Index]
	for i, leg := range p.Legs {
		s -= d.Leg[leg.Index] + float64(p.Delays[i])*d.Delay[leg.Index]
	}
	return s
}

// stabilize returns λ·d + (1−λ)·observed for the smallest λ in [0,1] that
// keeps the given routes and every leg priced non-negatively. d must be
// feasible for them.
func (d *Dual) stabilize(observed *Dual, paths []*network.Path, legs []*model.Leg, opts secondstage.Options) (*Dual, float64) {
	lambda := 0.0
	update := func(est, obs float64) {
		if obs >= -model.EPS {
			return
		}
		denom := est - obs
		if denom <= 0 {
			lambda = 1
			return
		}
		lambda = math.Max(lambda, -obs/denom)
	}
	for _, p := range paths {
		update(d.PathSlack(p), observed.PathSlack(p))
	}
	for _, leg := range legs {
		update(d.LegSlack(leg), observed.LegSlack(leg))
	}
	if opts.ExpectedExcess {
		update(opts.RiskAversion+d.Risk, opts.RiskAversion+observed.Risk)
	}
	lambda = math.Min(lambda, 1)
	return d.combine(observed, lambda), lambda
}

func (d *Dual) combine(o *Dual, lambda float64) *Dual {
	mix := func(a, b float64) float64 { return lambda*a + (1-lambda)*b }
	out := zeroDual(len(d.Tail), len(d.Leg))
	for i := range d.Tail {
		out.Tail[i] = mix(d.Tail[i], o.Tail[i])
	}
	for i := range d.Leg {
		out.Leg[i] = mix(d.Leg[i], o.Leg[i])
		out.Delay[i] = mix(d.Delay[i], o.Delay[i])
	}
	for k := range d.Bound {
		out.Bound[k] = mix(d.Bound[k], o.Bound[k])
	}
	for k := range o.Bound {
		out.Bound[k] = mix(d.Bound[k], o.Bound[k])
	}
	out.Risk = mix(d.Risk, o.Risk)
	return out
}

// cut builds the probability weighted cut implied by the dual. The delay link
// right-hand side is OTPTimeLimit plus the reschedule, so the reschedule part
// moves into beta.
func (d *Dual) cut(legs []*model.Leg, probability float64, opts secondstage.Options) *Cut {
	c := NewCut(len(legs))
	for _, v := range d.Tail {
		c.Alpha += v
	}
	for _, v := range d.Bound {
		c.Alpha += v
	}
	for i, leg := range legs {
		c.Alpha += d.Leg[i] + d.Delay[i]*model.OTPTimeLimit
		c.Beta[i] = -d.Delay[i]
		if opts.ExpectedExcess {
			c.Beta[i] += d.Risk * leg.RescheduleCostPerMin
		}
	}
	if opts.ExpectedExcess {
		c.Alpha += d.Risk * opts.ExcessTarget
	}
	c.Alpha *= probability
	for i := range c.Beta {
		c.Beta[i] *= probability
	}
	return c
}

// checkFeasibility verifies the excess delay columns price out. A violation
// after column generation has converged is a defect, not a numerical hiccup.
func (d *Dual) checkFeasibility(legs []*model.Leg) error {
	for _, leg := range legs {
		if s := d.LegSlack(leg); s < -model.EPS {
			return fmt.Errorf("%w: leg %d has slack %.6f", ErrDualInfeasible, leg.ID, s)
		}
	}
	return nil
}
