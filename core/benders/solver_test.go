package benders

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/flightrecovery/core/events"
	"github.com/kilianp07/flightrecovery/core/lp"
	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/core/network"
	"github.com/kilianp07/flightrecovery/core/registry"
	"github.com/kilianp07/flightrecovery/core/secondstage"
	"github.com/kilianp07/flightrecovery/internal/eventbus"
)

// bruteForce evaluates every feasible reschedule of the master and returns
// the lowest expected cost.
func bruteForce(t *testing.T, reg *registry.Registry, scenarios []model.Scenario, cfg Config) float64 {
	t.Helper()
	legs, tails := reg.Legs(), reg.Tails()
	options := append([]int{0}, cfg.Menu()...)
	budget := cfg.Budget(legs)
	best := math.Inf(1)

	r := make([]int, len(legs))
	var walk func(i int)
	walk = func(i int) {
		if i < len(legs) {
			for _, d := range options {
				r[i] = d
				walk(i + 1)
			}
			return
		}
		total := 0
		cost := 0.0
		for k, v := range r {
			total += v
			cost += float64(v) * legs[k].RescheduleCostPerMin
		}
		if total > budget {
			return
		}
		for _, tail := range tails {
			for k := 0; k+1 < len(tail.OrigLegs); k++ {
				cur, next := tail.OrigLegs[k], tail.OrigLegs[k+1]
				if r[cur.Index]-r[next.Index] > next.DepTime-cur.ArrTime-cur.TurnTime {
					return
				}
			}
		}
		for _, sc := range scenarios {
			delays := sc.Delays(len(legs))
			b := secondstage.NewBuilder(legs, tails, r, secondstage.Options{})
			for ti, tail := range tails {
				b.AddPath(ti, network.EmptyPath(tail))
				paths, err := reg.Network().EnumeratePaths(tail, delays)
				require.NoError(t, err)
				for _, p := range paths {
					b.AddPath(ti, p)
				}
			}
			sol, err := b.Solve(context.Background(), lp.NewSimplex())
			require.NoError(t, err)
			cost += sc.Probability * sol.Objective
		}
		best = math.Min(best, cost)
	}
	walk(0)
	return best
}

func collectIterations(bus *eventbus.Bus) (<-chan eventbus.Event, func() []events.IterationEvent) {
	sub := bus.Subscribe()
	return sub, func() []events.IterationEvent {
		var out []events.IterationEvent
		for {
			select {
			case ev := <-sub:
				if it, ok := ev.(events.IterationEvent); ok {
					out = append(out, it)
				}
			default:
				return out
			}
		}
	}
}

func TestSolverFindsOptimum(t *testing.T) {
	for _, multiCut := range []bool{false, true} {
		cfg := hubConfig()
		cfg.MultiCut = multiCut
		reg := hubRegistry()
		want := bruteForce(t, reg, hubScenarios(), cfg)

		bus := eventbus.New()
		_, drain := collectIterations(bus)
		s, err := NewSolver(reg, hubScenarios(), cfg, lp.NewSimplex(), bus, nopLog())
		require.NoError(t, err)
		res, err := s.Solve(context.Background())
		require.NoError(t, err)

		assert.NotEmpty(t, res.RunID)
		assert.LessOrEqual(t, res.LowerBound, want+1e-4, "multiCut=%v", multiCut)
		assert.GreaterOrEqual(t, res.UpperBound, want-1e-4, "multiCut=%v", multiCut)
		assert.InDelta(t, want, res.UpperBound, 0.05, "multiCut=%v", multiCut)
		assert.LessOrEqual(t, res.Iterations, cfg.MaxIterations)
		assert.Len(t, res.Reschedules, 4)

		iters := drain()
		require.NotEmpty(t, iters)
		for i := 1; i < len(iters); i++ {
			assert.GreaterOrEqual(t, iters[i].LowerBound, iters[i-1].LowerBound-1e-9)
			assert.LessOrEqual(t, iters[i].UpperBound, iters[i-1].UpperBound+1e-9)
		}
		for _, it := range iters {
			assert.LessOrEqual(t, it.LowerBound, it.UpperBound+1e-4)
		}
	}
}

func TestSolverIncumbentCost(t *testing.T) {
	cfg := hubConfig()
	s, err := NewSolver(hubRegistry(), hubScenarios(), cfg, lp.NewSimplex(), nil, nopLog())
	require.NoError(t, err)
	res, err := s.Solve(context.Background())
	require.NoError(t, err)

	legs := hubRegistry().Legs()
	cost := 0.0
	total := 0
	for i, r := range res.Reschedules {
		cost += float64(r) * legs[i].RescheduleCostPerMin
		total += r
	}
	assert.InDelta(t, cost, res.RescheduleCost, 1e-9)
	assert.LessOrEqual(t, total, cfg.RescheduleBudget)
}

func TestSolverWarmStart(t *testing.T) {
	cfg := hubConfig()
	cfg.WarmStart = true
	s, err := NewSolver(hubRegistry(), hubScenarios(), cfg, lp.NewSimplex(), nil, nopLog())
	require.NoError(t, err)
	require.Error(t, s.WarmStart([]int{1, 2}))
	require.Error(t, s.WarmStart([]int{0, -1, 0, 0}))
	require.NoError(t, s.WarmStart([]int{0, 0, 0, 0}))

	res, err := s.Solve(context.Background())
	require.NoError(t, err)
	want := bruteForce(t, hubRegistry(), hubScenarios(), cfg)
	assert.InDelta(t, want, res.UpperBound, 0.05)
	assert.GreaterOrEqual(t, res.CutsAdded, 1)
}

func TestSolverStopsAtIterationCap(t *testing.T) {
	cfg := hubConfig()
	cfg.MaxIterations = 1
	s, err := NewSolver(hubRegistry(), hubScenarios(), cfg, lp.NewSimplex(), nil, nopLog())
	require.NoError(t, err)
	res, err := s.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)
	assert.LessOrEqual(t, res.LowerBound, res.UpperBound+1e-4)
}

func TestSolverCancelled(t *testing.T) {
	bus := eventbus.New()
	sub := bus.Subscribe()
	s, err := NewSolver(hubRegistry(), hubScenarios(), hubConfig(), lp.NewSimplex(), bus, nopLog())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Solve(ctx)
	require.ErrorIs(t, err, context.Canceled)

	var statuses []string
	for len(sub) > 0 {
		if ev, ok := (<-sub).(events.RunEvent); ok {
			statuses = append(statuses, ev.Status)
		}
	}
	assert.Equal(t, []string{events.RunStarted, events.RunFailed}, statuses)
}

func TestNewSolverValidates(t *testing.T) {
	cfg := hubConfig()
	_, err := NewSolver(nil, hubScenarios(), cfg, lp.NewSimplex(), nil, nopLog())
	assert.Error(t, err)

	_, err = NewSolver(hubRegistry(), []model.Scenario{{Probability: 0.3}}, cfg, lp.NewSimplex(), nil, nopLog())
	assert.Error(t, err)

	bad := cfg
	bad.ColumnGen = "SOMETIMES"
	_, err = NewSolver(hubRegistry(), hubScenarios(), bad, lp.NewSimplex(), nil, nopLog())
	assert.Error(t, err)
}

func TestWrapperSequentialMatchesParallel(t *testing.T) {
	for _, multiCut := range []bool{false, true} {
		run := func(parallel bool) *Data {
			cfg := hubConfig()
			cfg.MultiCut = multiCut
			cfg.Parallel = parallel
			cfg.Threads = 2
			w, err := NewWrapper(newHubScenarioSolver(t, cfg), hubScenarios(), cfg)
			require.NoError(t, err)
			ms := &MasterSolution{Reschedules: []int{10, 0, 30, 0}, RescheduleCost: 20}
			data, results, err := w.Run(context.Background(), ms)
			require.NoError(t, err)
			require.Len(t, results, 2)
			return data
		}
		seq, par := run(false), run(true)
		assert.InDelta(t, seq.UpperBound(), par.UpperBound(), 1e-6)
		require.Len(t, par.Cuts(), len(seq.Cuts()))
		// Cuts may differ between degenerate dual solutions but must agree
		// at the evaluated point.
		point := []float64{10, 0, 30, 0}
		for i := range seq.Cuts() {
			a, b := seq.Cuts()[i], par.Cuts()[i]
			assert.InDelta(t, a.Alpha-a.LHS(point, 0), b.Alpha-b.LHS(point, 0), 1e-3)
		}
	}
}

func TestWrapperFailureIsWrapped(t *testing.T) {
	cfg := hubConfig()
	cfg.Parallel = true
	reg := hubRegistry()
	s, err := NewScenarioSolver(reg.Legs(), reg.Tails(), reg.Network(), failingLP{}, cfg, nopLog())
	require.NoError(t, err)
	w, err := NewWrapper(s, hubScenarios(), cfg)
	require.NoError(t, err)
	_, _, err = w.Run(context.Background(), &MasterSolution{Reschedules: make([]int, 4)})
	assert.ErrorIs(t, err, ErrScenarioFailed)
	assert.ErrorIs(t, err, lp.ErrNotOptimal)
}

func TestWrapperRecoversPanickingTask(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		cfg := hubConfig()
		cfg.Parallel = parallel
		cfg.Threads = 2
		reg := hubRegistry()
		s, err := NewScenarioSolver(reg.Legs(), reg.Tails(), reg.Network(), panickingLP{}, cfg, nopLog())
		require.NoError(t, err)
		w, err := NewWrapper(s, hubScenarios(), cfg)
		require.NoError(t, err)

		var runErr error
		require.NotPanics(t, func() {
			_, _, runErr = w.Run(context.Background(), &MasterSolution{Reschedules: make([]int, 4)})
		})
		assert.ErrorIs(t, runErr, ErrScenarioFailed, "parallel=%v", parallel)
		assert.ErrorContains(t, runErr, "simplex blew up")
	}
}

func TestWrapperCarriesAnchorsAcrossRuns(t *testing.T) {
	cfg := hubConfig()
	cfg.MultiCut = true
	w, err := NewWrapper(newHubScenarioSolver(t, cfg), hubScenarios(), cfg)
	require.NoError(t, err)

	first, results, err := w.Run(context.Background(), &MasterSolution{Reschedules: make([]int, 4)})
	require.NoError(t, err)
	for i, res := range results {
		assert.False(t, res.EarlyExit)
		assert.NotNil(t, w.anchors[i])
	}

	ms := &MasterSolution{Reschedules: make([]int, 4), Theta: []float64{0, 0}}
	_, results, err = w.Run(context.Background(), ms)
	require.NoError(t, err)
	require.True(t, results[0].EarlyExit)
	assert.True(t, results[0].Cut.Separates(ms.Point(), 0))
	// The restricted objective of an early exit over-estimates the recourse.
	assert.GreaterOrEqual(t, results[0].Objective, 46.0-1e-4)
	assert.NotNil(t, w.anchors[0])
	assert.Greater(t, first.UpperBound(), 0.0)
}

// Stopping without a separating cut leaves at most MinimumCutViolation per
// theta between the bounds.
func TestSolverConvergedGapBound(t *testing.T) {
	for _, multiCut := range []bool{false, true} {
		cfg := hubConfig()
		cfg.MultiCut = multiCut
		s, err := NewSolver(hubRegistry(), hubScenarios(), cfg, lp.NewSimplex(), nil, nopLog())
		require.NoError(t, err)
		res, err := s.Solve(context.Background())
		require.NoError(t, err)
		require.True(t, res.Converged)

		numCuts := 1
		if multiCut {
			numCuts = len(hubScenarios())
		}
		limit := math.Max(cfg.Tolerance, model.MinimumCutViolation*float64(numCuts)/res.UpperBound)
		assert.LessOrEqual(t, res.Gap, limit+1e-4, "multiCut=%v", multiCut)
	}
}
