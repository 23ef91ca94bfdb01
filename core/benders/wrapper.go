package benders

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/flightrecovery/core/model"
)

// Wrapper fans scenario tasks out, sequentially or on a bounded pool, and
// folds their results into a Data in scenario order. It keeps one
// stabilization anchor per scenario across iterations.
type Wrapper struct {
	solver    *ScenarioSolver
	scenarios []model.Scenario
	caches    []*PathCache
	anchors   []*Dual
	parallel  bool
	threads   int
	multiCut  bool
}

// NewWrapper prepares one column cache per scenario when caching is on.
func NewWrapper(solver *ScenarioSolver, scenarios []model.Scenario, cfg Config) (*Wrapper, error) {
	w := &Wrapper{
		solver:    solver,
		scenarios: scenarios,
		anchors:   make([]*Dual, len(scenarios)),
		parallel:  cfg.Parallel,
		threads:   cfg.Threads,
		multiCut:  cfg.MultiCut,
	}
	if cfg.UseColumnCaching {
		w.caches = make([]*PathCache, len(scenarios))
		for i, sc := range scenarios {
			paths, err := solver.InitialPaths(sc.Delays(len(solver.legs)))
			if err != nil {
				return nil, fmt.Errorf("scenario %d: %w", i, err)
			}
			w.caches[i] = NewPathCache(paths)
		}
	}
	return w, nil
}

// NumCuts returns how many theta variables the master needs.
func (w *Wrapper) NumCuts() int {
	if w.multiCut {
		return len(w.scenarios)
	}
	return 1
}

// CacheSize returns the number of cached routes over all scenarios.
func (w *Wrapper) CacheSize() int {
	n := 0
	for _, c := range w.caches {
		n += c.Size()
	}
	return n
}

// Run evaluates the master solution on every scenario. The first failure
// cancels the remaining tasks. A panicking task fails like any other.
func (w *Wrapper) Run(ctx context.Context, ms *MasterSolution) (*Data, []*ScenarioResult, error) {
	results := make([]*ScenarioResult, len(w.scenarios))
	task := func(ctx context.Context, i int) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("scenario %d: %w: panic: %v", i, ErrScenarioFailed, r)
			}
		}()
		in := ScenarioInput{
			Index:       i,
			Scenario:    w.scenarios[i],
			Reschedules: ms.Reschedules,
			Master:      ms,
			Anchor:      w.anchors[i],
		}
		if w.caches != nil {
			in.Cache = w.caches[i]
		}
		res, err := w.solver.Solve(ctx, in)
		if err != nil {
			return fmt.Errorf("scenario %d: %w: %w", i, ErrScenarioFailed, err)
		}
		if res.Dual != nil {
			w.anchors[i] = res.Dual
		}
		results[i] = res
		return nil
	}

	if w.parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(w.threads)
		for i := range w.scenarios {
			g.Go(func() error { return task(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	} else {
		for i := range w.scenarios {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			if err := task(ctx, i); err != nil {
				return nil, nil, err
			}
		}
	}

	data := NewData(w.NumCuts(), len(w.solver.legs), ms.RescheduleCost)
	for i, res := range results {
		idx := 0
		if w.multiCut {
			idx = i
		}
		data.AddScenario(idx, res.Cut, res.Probability*res.Objective)
	}
	return data, results, nil
}
