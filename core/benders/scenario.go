package benders

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/flightrecovery/core/logger"
	"github.com/kilianp07/flightrecovery/core/lp"
	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/core/network"
	"github.com/kilianp07/flightrecovery/core/pricing"
	"github.com/kilianp07/flightrecovery/core/secondstage"
)

// ScenarioInput is the work item of one scenario task.
type ScenarioInput struct {
	Index       int
	Scenario    model.Scenario
	Reschedules []int
	// Master is the solution being evaluated. Theta may be nil.
	Master *MasterSolution
	// Cache seeds the restricted master. It is updated when column caching
	// is enabled.
	Cache *PathCache
	// Anchor is a dual feasible for every route of the scenario, usually the
	// converged dual of an earlier iteration. Nil means the zero dual.
	Anchor *Dual
}

// ScenarioResult is what a scenario task hands back to the coordinator.
// Objective is the last restricted master objective, so after an early exit
// it over-estimates the recourse.
type ScenarioResult struct {
	Index       int
	Probability float64
	Objective   float64
	Cut         *Cut
	Columns     int
	Passes      int
	EarlyExit   bool
	Lambda      float64
	Duration    time.Duration
	// Dual is the converged dual prepared as the next anchor. It is nil
	// after an early exit.
	Dual *Dual
}

// ScenarioSolver solves the routing subproblem of one scenario by column
// generation or full enumeration and derives its Benders cut.
type ScenarioSolver struct {
	legs    []*model.Leg
	tails   []*model.Tail
	net     *network.Network
	lp      lp.Solver
	pricer  *pricing.Solver
	cfg     Config
	opts    secondstage.Options
	log     logger.Logger
	numCuts int
}

// NewScenarioSolver validates the column generation mode and prepares the
// pricing solver.
func NewScenarioSolver(legs []*model.Leg, tails []*model.Tail, net *network.Network, solver lp.Solver, cfg Config, log logger.Logger) (*ScenarioSolver, error) {
	s := &ScenarioSolver{
		legs:  legs,
		tails: tails,
		net:   net,
		lp:    solver,
		cfg:   cfg,
		opts:  cfg.SecondStageOptions(),
		log:   log,
	}
	if cfg.ColumnGen != FullEnumeration {
		strategy, err := cfg.PricingStrategy()
		if err != nil {
			return nil, err
		}
		s.pricer = pricing.NewSolver(net, strategy, cfg.ReducedCostPaths)
	}
	return s, nil
}

// InitialPaths returns the empty and on-plan route of every tail.
func (s *ScenarioSolver) InitialPaths(delays []int) ([][]*network.Path, error) {
	out := make([][]*network.Path, len(s.tails))
	for t, tail := range s.tails {
		onPlan, err := network.OnPlanPath(tail, delays)
		if err != nil {
			return nil, fmt.Errorf("tail %d: %w", tail.ID, err)
		}
		out[t] = []*network.Path{network.EmptyPath(tail), onPlan}
	}
	return out, nil
}

// Solve runs one scenario.
func (s *ScenarioSolver) Solve(ctx context.Context, in ScenarioInput) (*ScenarioResult, error) {
	start := time.Now()
	delays := in.Scenario.Delays(len(s.legs))

	seed := in.Cache
	if seed == nil {
		paths, err := s.InitialPaths(delays)
		if err != nil {
			return nil, err
		}
		seed = NewPathCache(paths)
	}

	b := secondstage.NewBuilder(s.legs, s.tails, in.Reschedules, s.opts)
	for t, paths := range seed.Paths() {
		for _, p := range paths {
			b.AddPath(t, p)
		}
	}

	var (
		res *ScenarioResult
		sol *secondstage.Solution
		err error
	)
	if s.cfg.ColumnGen == FullEnumeration {
		res, sol, err = s.enumerate(ctx, b, delays, in)
	} else {
		res, sol, err = s.generate(ctx, b, delays, in)
	}
	if err != nil {
		return nil, err
	}

	if s.cfg.UseColumnCaching && in.Cache != nil {
		in.Cache.Merge(b.Selected(sol))
	}
	res.Index = in.Index
	res.Probability = in.Scenario.Probability
	res.Duration = time.Since(start)
	return res, nil
}

func (s *ScenarioSolver) enumerate(ctx context.Context, b *secondstage.Builder, delays []int, in ScenarioInput) (*ScenarioResult, *secondstage.Solution, error) {
	for t, tail := range s.tails {
		paths, err := s.net.EnumeratePaths(tail, delays)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range paths {
			b.AddPath(t, p)
		}
	}
	sol, err := b.Solve(ctx, s.lp)
	if err != nil {
		return nil, nil, err
	}
	dual := dualFrom(sol.Duals)
	if err := dual.checkFeasibility(s.legs); err != nil {
		return nil, nil, err
	}
	return &ScenarioResult{
		Objective: sol.Objective,
		Cut:       dual.cut(s.legs, in.Scenario.Probability, s.opts),
		Columns:   b.NumPaths(),
		Passes:    1,
		Dual:      dual.anchor(s.modelPaths(b)),
	}, sol, nil
}

func (s *ScenarioSolver) modelPaths(b *secondstage.Builder) [][]*network.Path {
	out := make([][]*network.Path, len(s.tails))
	for t := range s.tails {
		out[t] = b.Paths(t)
	}
	return out
}

// pricesOut reports whether no route of any tail has a negative reduced cost
// under d.
func (s *ScenarioSolver) pricesOut(d *Dual, delays []int) bool {
	for t, tail := range s.tails {
		if len(s.pricer.Solve(tail, delays, d.prices(t))) > 0 {
			return false
		}
	}
	return true
}

// generate runs column generation. The stabilized dual starts at the anchor
// and moves toward the observed duals as far as the newly priced routes allow.
// A stabilized cut ends the scenario early only when it separates the master
// point and no route prices out negatively under it.
func (s *ScenarioSolver) generate(ctx context.Context, b *secondstage.Builder, delays []int, in ScenarioInput) (*ScenarioResult, *secondstage.Solution, error) {
	estimate := in.Anchor
	if estimate == nil {
		estimate = zeroDual(len(s.tails), len(s.legs))
	}
	var (
		canExit   = s.cfg.MultiCut && in.Master != nil && in.Master.Theta != nil
		point     []float64
		res       = &ScenarioResult{}
		lastSol   *secondstage.Solution
		lastDual  *Dual
		lambda    float64
		separates bool
	)
	if canExit {
		point = in.Master.Point()
	}

	for {
		sol, err := b.Solve(ctx, s.lp)
		if err != nil {
			return nil, nil, err
		}
		res.Passes++
		lastSol = sol
		observed := dualFrom(sol.Duals)
		lastDual = observed

		var fresh []*network.Path
		for t, tail := range s.tails {
			for _, p := range s.pricer.Solve(tail, delays, observed.prices(t)) {
				if b.AddPath(t, p) {
					fresh = append(fresh, p)
				}
			}
		}
		if len(fresh) == 0 {
			break
		}

		estimate, lambda = estimate.stabilize(observed, fresh, s.legs, s.opts)
		if canExit {
			cut := estimate.cut(s.legs, in.Scenario.Probability, s.opts)
			if cut.Separates(point, in.Master.Theta[in.Index]) && s.pricesOut(estimate, delays) {
				res.Cut, res.EarlyExit, separates = cut, true, true
				break
			}
		}
	}

	if !separates {
		if err := lastDual.checkFeasibility(s.legs); err != nil {
			return nil, nil, err
		}
		res.Cut = lastDual.cut(s.legs, in.Scenario.Probability, s.opts)
		res.Dual = lastDual.anchor(s.modelPaths(b))
	}
	res.Objective = lastSol.Objective
	res.Columns = b.NumPaths()
	res.Lambda = lambda
	s.log.Debugw("scenario solved", map[string]any{
		"scenario":   in.Index,
		"objective":  res.Objective,
		"passes":     res.Passes,
		"columns":    res.Columns,
		"early_exit": res.EarlyExit,
		"lambda":     lambda,
	})
	return res, lastSol, nil
}
