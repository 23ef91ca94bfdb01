// Package quality replays reschedules against delay scenarios with an exact
// routing MIP and reports the resulting delays.
package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/flightrecovery/core/logger"
	"github.com/kilianp07/flightrecovery/core/lp"
	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/core/network"
	"github.com/kilianp07/flightrecovery/core/registry"
	"github.com/kilianp07/flightrecovery/core/secondstage"
)

// ScenarioQuality is the delay outcome of one scenario.
type ScenarioQuality struct {
	Scenario    int                        `json:"scenario"`
	Probability float64                    `json:"probability"`
	Solution    *secondstage.DelaySolution `json:"solution"`
}

// Summary holds probability weighted delay figures.
type Summary struct {
	DelayCost       float64 `json:"delay_cost"`
	TotalDelay      float64 `json:"total_delay"`
	PropagatedDelay float64 `json:"propagated_delay"`
	ExcessDelay     float64 `json:"excess_delay"`
	OnTime          float64 `json:"on_time"`
}

// Report is the evaluation of one reschedule.
type Report struct {
	Name           string            `json:"name"`
	Reschedules    []int             `json:"reschedules"`
	RescheduleCost float64           `json:"reschedule_cost"`
	Scenarios      []ScenarioQuality `json:"scenarios"`
	Expected       Summary           `json:"expected"`
}

// Comparison sets a candidate against the original schedule. Decreases are
// percentages of the original value.
type Comparison struct {
	Original                *Report `json:"original"`
	Candidate               *Report `json:"candidate"`
	DelayCostDecrease       float64 `json:"delay_cost_decrease"`
	TotalDelayDecrease      float64 `json:"total_delay_decrease"`
	PropagatedDelayDecrease float64 `json:"propagated_delay_decrease"`
	ExcessDelayDecrease     float64 `json:"excess_delay_decrease"`
}

// Evaluator runs quality checks. It never mutates the registry legs.
type Evaluator struct {
	reg    *registry.Registry
	solver lp.Solver
	opts   secondstage.Options
	log    logger.Logger
}

// NewEvaluator creates an Evaluator. opts.MIP is forced on.
func NewEvaluator(reg *registry.Registry, solver lp.Solver, opts secondstage.Options, log logger.Logger) *Evaluator {
	opts.MIP = true
	return &Evaluator{reg: reg, solver: solver, opts: opts, log: log}
}

// Evaluate applies reschedules to a copy of the schedule and solves every
// scenario. A nil reschedules evaluates the original schedule.
func (e *Evaluator) Evaluate(ctx context.Context, name string, reschedules []int, scenarios []model.Scenario) (*Report, error) {
	legs := model.CloneLegs(e.reg.Legs())
	if reschedules == nil {
		reschedules = make([]int, len(legs))
	}
	if len(reschedules) != len(legs) {
		return nil, fmt.Errorf("quality: %d reschedules for %d legs", len(reschedules), len(legs))
	}
	rep := &Report{Name: name, Reschedules: reschedules}
	for i, l := range legs {
		l.Reschedule(reschedules[i])
		rep.RescheduleCost += float64(reschedules[i]) * l.RescheduleCostPerMin
	}
	tails, err := cloneTails(e.reg.Tails(), legs)
	if err != nil {
		return nil, err
	}
	net := network.New(legs)

	for i, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ds, err := e.solveScenario(ctx, legs, tails, net, sc)
		if err != nil {
			return nil, fmt.Errorf("quality: %s scenario %d: %w", name, i, err)
		}
		rep.Scenarios = append(rep.Scenarios, ScenarioQuality{Scenario: i, Probability: sc.Probability, Solution: ds})
		rep.Expected.DelayCost += sc.Probability * ds.DelayCost
		rep.Expected.TotalDelay += sc.Probability * ds.TotalStats().Total
		rep.Expected.PropagatedDelay += sc.Probability * ds.PropagatedStats().Total
		rep.Expected.ExcessDelay += sc.Probability * ds.ExcessStats().Total
		rep.Expected.OnTime += sc.Probability * ds.OnTime()
	}
	e.log.Infow("quality check done", map[string]any{
		"name":       name,
		"scenarios":  len(scenarios),
		"delay_cost": rep.Expected.DelayCost,
	})
	return rep, nil
}

// Compare evaluates the original schedule and the candidate on the same
// scenarios.
func (e *Evaluator) Compare(ctx context.Context, reschedules []int, scenarios []model.Scenario) (*Comparison, error) {
	orig, err := e.Evaluate(ctx, "original", nil, scenarios)
	if err != nil {
		return nil, err
	}
	cand, err := e.Evaluate(ctx, "candidate", reschedules, scenarios)
	if err != nil {
		return nil, err
	}
	return &Comparison{
		Original:                orig,
		Candidate:               cand,
		DelayCostDecrease:       decrease(orig.Expected.DelayCost, cand.Expected.DelayCost),
		TotalDelayDecrease:      decrease(orig.Expected.TotalDelay, cand.Expected.TotalDelay),
		PropagatedDelayDecrease: decrease(orig.Expected.PropagatedDelay, cand.Expected.PropagatedDelay),
		ExcessDelayDecrease:     decrease(orig.Expected.ExcessDelay, cand.Expected.ExcessDelay),
	}, nil
}

func (e *Evaluator) solveScenario(ctx context.Context, legs []*model.Leg, tails []*model.Tail, net *network.Network, sc model.Scenario) (*secondstage.DelaySolution, error) {
	start := time.Now()
	delays := sc.Delays(len(legs))
	// Reschedules are already in the leg times.
	b := secondstage.NewBuilder(legs, tails, make([]int, len(legs)), e.opts)
	for t, tail := range tails {
		b.AddPath(t, network.EmptyPath(tail))
		paths, err := net.EnumeratePaths(tail, delays)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			b.AddPath(t, p)
		}
	}
	sol, err := b.Solve(ctx, e.solver)
	if err != nil {
		return nil, err
	}
	ds, err := b.DelaySolution(sol, delays)
	if err != nil {
		return nil, err
	}
	ds.SolutionTime = time.Since(start)
	return ds, nil
}

// cloneTails rebuilds tails over cloned legs, keeping ids and indices.
func cloneTails(tails []*model.Tail, legs []*model.Leg) ([]*model.Tail, error) {
	out := make([]*model.Tail, len(tails))
	for i, t := range tails {
		route := make([]*model.Leg, len(t.OrigLegs))
		for k, l := range t.OrigLegs {
			route[k] = legs[l.Index]
		}
		c, err := model.NewTail(t.ID, route)
		if err != nil {
			return nil, err
		}
		c.Index = t.Index
		out[i] = c
	}
	return out, nil
}

func decrease(orig, cand float64) float64 {
	if orig == 0 {
		return 0
	}
	return (orig - cand) / orig * 100
}
