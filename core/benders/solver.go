package benders

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/flightrecovery/core/events"
	"github.com/kilianp07/flightrecovery/core/logger"
	"github.com/kilianp07/flightrecovery/core/lp"
	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/core/registry"
	"github.com/kilianp07/flightrecovery/internal/eventbus"
)

// Result is the outcome of a Benders run. Reschedules is indexed by leg index
// and holds the incumbent, the evaluated solution with the lowest cost.
//
// Converged is set when the loop stopped before MaxIterations, either because
// the relative gap fell to Tolerance or because no scenario cut separated the
// master point. In the second case Gap is not compared against Tolerance and
// may exceed it by up to MinimumCutViolation per theta over UpperBound.
type Result struct {
	RunID          string        `json:"run_id" yaml:"run_id"`
	Reschedules    []int         `json:"reschedules" yaml:"reschedules"`
	RescheduleCost float64       `json:"reschedule_cost" yaml:"reschedule_cost"`
	LowerBound     float64       `json:"lower_bound" yaml:"lower_bound"`
	UpperBound     float64       `json:"upper_bound" yaml:"upper_bound"`
	Gap            float64       `json:"gap" yaml:"gap"`
	Iterations     int           `json:"iterations" yaml:"iterations"`
	CutsAdded      int           `json:"cuts_added" yaml:"cuts_added"`
	Converged      bool          `json:"converged" yaml:"converged"`
	Duration       time.Duration `json:"duration_ns" yaml:"duration_ns"`
}

// Solver is the Benders coordinator.
type Solver struct {
	reg       *registry.Registry
	scenarios []model.Scenario
	cfg       Config
	lp        lp.Solver
	bus       eventbus.EventBus
	log       logger.Logger
	runID     string
	warm      []int
}

// NewSolver validates its inputs. A nil bus discards events.
func NewSolver(reg *registry.Registry, scenarios []model.Scenario, cfg Config, solver lp.Solver, bus eventbus.EventBus, log logger.Logger) (*Solver, error) {
	if reg == nil || solver == nil || log == nil {
		return nil, fmt.Errorf("benders: nil parameter provided to NewSolver")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("benders: %w", err)
	}
	if err := model.ValidateScenarios(scenarios); err != nil {
		return nil, fmt.Errorf("benders: %w", err)
	}
	if bus == nil {
		bus = eventbus.Nop{}
	}
	return &Solver{
		reg:       reg,
		scenarios: scenarios,
		cfg:       cfg,
		lp:        solver,
		bus:       bus,
		log:       log,
		runID:     uuid.NewString(),
	}, nil
}

// RunID identifies the run in logs, events and stored records.
func (s *Solver) RunID() string { return s.runID }

// WarmStart evaluates reschedules before the first master solve and seeds the
// master with their cuts.
func (s *Solver) WarmStart(reschedules []int) error {
	if len(reschedules) != s.reg.NumLegs() {
		return fmt.Errorf("warm start has %d reschedules for %d legs", len(reschedules), s.reg.NumLegs())
	}
	for i, r := range reschedules {
		if r < 0 {
			return fmt.Errorf("warm start: negative reschedule on leg index %d", i)
		}
	}
	s.warm = append([]int(nil), reschedules...)
	return nil
}

type bounds struct {
	lower, upper float64
	incumbent    *MasterSolution
}

// observe folds an evaluated solution into the upper bound.
func (b *bounds) observe(ms *MasterSolution, upper float64) {
	if upper < b.upper {
		b.upper = upper
		b.incumbent = ms
	}
}

func (b *bounds) gap() float64 {
	if math.IsInf(b.upper, 1) {
		return math.Inf(1)
	}
	if math.Abs(b.upper) < model.EPS {
		return math.Max(0, b.upper-b.lower)
	}
	return math.Max(0, (b.upper-b.lower)/math.Abs(b.upper))
}

// Solve runs the decomposition until the relative gap falls under the
// tolerance, no cut separates the master point, or the iteration cap is hit.
func (s *Solver) Solve(ctx context.Context) (*Result, error) {
	start := time.Now()
	s.bus.Publish(events.RunEvent{RunID: s.runID, Status: events.RunStarted, Time: start})

	res, err := s.solve(ctx, start)
	if err != nil {
		s.bus.Publish(events.RunEvent{RunID: s.runID, Status: events.RunFailed, Err: err, Time: time.Now()})
		return nil, err
	}
	s.bus.Publish(events.RunEvent{RunID: s.runID, Status: events.RunFinished, Time: time.Now()})
	return res, nil
}

func (s *Solver) solve(ctx context.Context, start time.Time) (*Result, error) {
	legs, tails := s.reg.Legs(), s.reg.Tails()
	master := NewMaster(legs, tails, s.cfg.Menu(), s.cfg.Budget(legs), s.lp, s.log)
	scenario, err := NewScenarioSolver(legs, tails, s.reg.Network(), s.lp, s.cfg, s.log)
	if err != nil {
		return nil, err
	}
	wrapper, err := NewWrapper(scenario, s.scenarios, s.cfg)
	if err != nil {
		return nil, err
	}

	b := &bounds{upper: math.Inf(1)}
	cutsAdded := 0

	if s.warm != nil {
		ms := &MasterSolution{Reschedules: s.warm}
		for i, r := range s.warm {
			ms.RescheduleCost += float64(r) * legs[i].RescheduleCostPerMin
		}
		data, _, err := wrapper.Run(ctx, ms)
		if err != nil {
			return nil, fmt.Errorf("warm start: %w", err)
		}
		b.observe(ms, data.UpperBound())
		master.AddTheta(wrapper.NumCuts())
		for i, c := range data.Cuts() {
			master.AddCut(c, i)
			cutsAdded++
		}
		s.log.Infof("warm start upper bound %.4f", data.UpperBound())
	}

	ms, err := master.Solve(ctx)
	if err != nil {
		return nil, err
	}
	b.lower = math.Max(0, ms.Objective)

	res := &Result{RunID: s.runID}
	for iter := 1; iter <= s.cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iterStart := time.Now()
		res.Iterations = iter

		data, results, err := wrapper.Run(ctx, ms)
		if err != nil {
			return nil, err
		}
		b.observe(ms, data.UpperBound())
		columns := s.publishScenarios(iter, results)

		point := ms.Point()
		added := 0
		master.AddTheta(wrapper.NumCuts())
		for i, c := range data.Cuts() {
			if ms.Theta == nil || c.Separates(point, ms.Theta[i]) {
				master.AddCut(c, i)
				added++
			}
		}
		cutsAdded += added
		if added == 0 {
			res.Converged = true
			s.publishIteration(iter, b, added, columns, ms, time.Since(iterStart))
			break
		}

		ms, err = master.Solve(ctx)
		if err != nil {
			return nil, err
		}
		b.lower = math.Max(b.lower, ms.Objective)
		s.publishIteration(iter, b, added, columns, ms, time.Since(iterStart))

		if b.upper-b.lower <= s.cfg.Tolerance*math.Abs(b.upper) {
			res.Converged = true
			break
		}
	}

	res.LowerBound = b.lower
	res.UpperBound = b.upper
	res.Gap = b.gap()
	res.CutsAdded = cutsAdded
	res.Reschedules = append([]int(nil), b.incumbent.Reschedules...)
	res.RescheduleCost = b.incumbent.RescheduleCost
	res.Duration = time.Since(start)
	s.log.Infow("benders finished", map[string]any{
		"run_id":     s.runID,
		"lb":         res.LowerBound,
		"ub":         res.UpperBound,
		"gap":        res.Gap,
		"iterations": res.Iterations,
		"cuts":       res.CutsAdded,
		"converged":  res.Converged,
		"cached":     wrapper.CacheSize(),
	})
	return res, nil
}

func (s *Solver) publishIteration(iter int, b *bounds, added, columns int, ms *MasterSolution, d time.Duration) {
	ev := events.IterationEvent{
		RunID:          s.runID,
		Iteration:      iter,
		LowerBound:     b.lower,
		UpperBound:     b.upper,
		Gap:            b.gap(),
		CutsAdded:      added,
		Columns:        columns,
		RescheduleCost: ms.RescheduleCost,
		Duration:       d,
		Time:           time.Now(),
	}
	s.bus.Publish(ev)
	s.log.Infow("benders iteration", map[string]any{
		"iteration": iter,
		"lb":        ev.LowerBound,
		"ub":        ev.UpperBound,
		"gap":       ev.Gap,
		"cuts":      added,
	})
}

// publishScenarios returns the number of routes over all scenario models.
func (s *Solver) publishScenarios(iter int, results []*ScenarioResult) int {
	now := time.Now()
	columns := 0
	for _, r := range results {
		columns += r.Columns
		s.bus.Publish(events.ScenarioEvent{
			RunID:     s.runID,
			Iteration: iter,
			Scenario:  r.Index,
			Objective: r.Objective,
			Passes:    r.Passes,
			Columns:   r.Columns,
			EarlyExit: r.EarlyExit,
			Duration:  r.Duration,
			Time:      now,
		})
	}
	return columns
}
