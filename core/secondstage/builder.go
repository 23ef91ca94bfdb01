// Package secondstage builds the per-scenario routing model: path selection
// variables per tail, excess delay variables per leg, coverage rows and the
// delay link rows that tie path delays to excess delay.
package secondstage

import (
	"context"
	"fmt"
	"math"

	"github.com/kilianp07/flightrecovery/core/lp"
	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/core/network"
)

// Options controls the optional parts of the model.
type Options struct {
	ExpectedExcess bool
	RiskAversion   float64
	ExcessTarget   float64
	// MIP makes path selection binary. Used for quality evaluation.
	MIP bool
}

// Builder owns one restricted master problem. Paths can be added between
// solves.
type Builder struct {
	legs        []*model.Leg
	tails       []*model.Tail
	reschedules []int
	opts        Options

	m         *lp.Model
	tailRows  []int
	legRows   []int
	delayRows []int
	riskRow   int
	dVars     []int
	vVar      int

	paths     [][]*network.Path
	yVars     [][]int
	boundRows [][]int
	known     map[int]bool
}

// NewBuilder creates the rows and delay variables. reschedules holds the
// first-stage reschedule of every leg in minutes.
func NewBuilder(legs []*model.Leg, tails []*model.Tail, reschedules []int, opts Options) *Builder {
	b := &Builder{
		legs:        legs,
		tails:       tails,
		reschedules: reschedules,
		opts:        opts,
		m:           lp.NewModel("second_stage"),
		riskRow:     -1,
		vVar:        -1,
		paths:       make([][]*network.Path, len(tails)),
		yVars:       make([][]int, len(tails)),
		boundRows:   make([][]int, len(tails)),
		known:       map[int]bool{},
	}

	for _, t := range tails {
		b.tailRows = append(b.tailRows, b.m.AddRow(fmt.Sprintf("tail_%d", t.ID), nil, lp.Equal, 1))
	}
	for _, l := range legs {
		b.legRows = append(b.legRows, b.m.AddRow(fmt.Sprintf("leg_%d", l.ID), nil, lp.Equal, 1))
	}
	for _, l := range legs {
		d := b.m.AddVar(fmt.Sprintf("d_%d", l.ID), 0, math.Inf(1), l.DelayCostPerMin, false)
		b.dVars = append(b.dVars, d)
		rhs := float64(model.OTPTimeLimit + reschedules[l.Index])
		b.delayRows = append(b.delayRows,
			b.m.AddRow(fmt.Sprintf("delay_%d", l.ID), []lp.Term{{Var: d, Coef: -1}}, lp.LessEqual, rhs))
	}

	if opts.ExpectedExcess {
		b.vVar = b.m.AddVar("v", 0, math.Inf(1), opts.RiskAversion, false)
		terms := []lp.Term{{Var: b.vVar, Coef: -1}}
		rhs := opts.ExcessTarget
		for i, l := range legs {
			terms = append(terms, lp.Term{Var: b.dVars[i], Coef: l.DelayCostPerMin})
			rhs -= float64(reschedules[i]) * l.RescheduleCostPerMin
		}
		b.riskRow = b.m.AddRow("risk", terms, lp.LessEqual, rhs)
	}
	return b
}

// AddPath adds a route column for the tail at tailIdx. Paths already in the
// model are ignored and false is returned.
func (b *Builder) AddPath(tailIdx int, p *network.Path) bool {
	if b.known[p.Index] {
		return false
	}
	b.known[p.Index] = true

	entries := []lp.Entry{{Row: b.tailRows[tailIdx], Coef: 1}}
	for i, leg := range p.Legs {
		entries = append(entries, lp.Entry{Row: b.legRows[leg.Index], Coef: 1})
		if p.Delays[i] != 0 {
			entries = append(entries, lp.Entry{Row: b.delayRows[leg.Index], Coef: float64(p.Delays[i])})
		}
	}
	upper := math.Inf(1)
	if b.opts.MIP {
		upper = 1
	}
	y := b.m.AddColumn(fmt.Sprintf("y_%d_%d", b.tails[tailIdx].ID, p.Index), 0, upper, 0, b.opts.MIP, entries)
	bound := b.m.AddRow(fmt.Sprintf("bound_%d", p.Index), []lp.Term{{Var: y, Coef: 1}}, lp.LessEqual, 1)

	b.paths[tailIdx] = append(b.paths[tailIdx], p)
	b.yVars[tailIdx] = append(b.yVars[tailIdx], y)
	b.boundRows[tailIdx] = append(b.boundRows[tailIdx], bound)
	return true
}

// Paths returns the routes of a tail in column order.
func (b *Builder) Paths(tailIdx int) []*network.Path { return b.paths[tailIdx] }

// NumPaths returns the number of route columns.
func (b *Builder) NumPaths() int { return len(b.known) }

// Model exposes the underlying model.
func (b *Builder) Model() *lp.Model { return b.m }

// Solve solves the model as an LP, or as a MIP when Options.MIP is set.
func (b *Builder) Solve(ctx context.Context, solver lp.Solver) (*Solution, error) {
	var (
		res *lp.Solution
		err error
	)
	if b.opts.MIP {
		res, err = solver.SolveMIP(ctx, b.m)
	} else {
		res, err = solver.SolveLP(ctx, b.m)
	}
	if err != nil {
		return nil, fmt.Errorf("second stage: %w", err)
	}

	sol := &Solution{Objective: res.Objective, Y: make([][]float64, len(b.tails)), D: make([]float64, len(b.legs))}
	for t := range b.tails {
		sol.Y[t] = make([]float64, len(b.yVars[t]))
		for k, v := range b.yVars[t] {
			sol.Y[t][k] = res.X[v]
		}
	}
	for i, v := range b.dVars {
		sol.D[i] = res.X[v]
	}
	if b.vVar >= 0 {
		sol.V = res.X[b.vVar]
	}
	if res.Duals != nil {
		sol.Duals = b.duals(res.Duals)
	}
	return sol, nil
}

func (b *Builder) duals(rows []float64) *Duals {
	d := &Duals{
		Tail:  make([]float64, len(b.tails)),
		Leg:   make([]float64, len(b.legs)),
		Delay: make([]float64, len(b.legs)),
		Bound: map[int]float64{},
	}
	for i, r := range b.tailRows {
		d.Tail[i] = rows[r]
	}
	for i, r := range b.legRows {
		d.Leg[i] = rows[r]
	}
	for i, r := range b.delayRows {
		d.Delay[i] = rows[r]
	}
	for t := range b.tails {
		for k, r := range b.boundRows[t] {
			d.Bound[b.paths[t][k].Index] = rows[r]
		}
	}
	if b.riskRow >= 0 {
		d.Risk = rows[b.riskRow]
	}
	return d
}

// Selected returns the routes with a positive selection value.
func (b *Builder) Selected(sol *Solution) [][]*network.Path {
	out := make([][]*network.Path, len(b.tails))
	for t := range b.tails {
		for k, y := range sol.Y[t] {
			if y > model.EPS {
				out[t] = append(out[t], b.paths[t][k])
			}
		}
	}
	return out
}
