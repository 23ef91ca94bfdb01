package benders

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/flightrecovery/core/lp"
	"github.com/kilianp07/flightrecovery/core/model"
)

func TestScenarioColumnGenerationMatchesEnumeration(t *testing.T) {
	for _, sc := range hubScenarios() {
		for _, resched := range [][]int{{0, 0, 0, 0}, {10, 0, 30, 0}} {
			full := hubConfig()
			full.ColumnGen = FullEnumeration
			want, err := newHubScenarioSolver(t, full).Solve(context.Background(), ScenarioInput{Scenario: sc, Reschedules: resched})
			require.NoError(t, err)

			for _, mode := range []ColumnGen{AllPaths, BestPaths, FirstPaths} {
				cfg := hubConfig()
				cfg.ColumnGen = mode
				got, err := newHubScenarioSolver(t, cfg).Solve(context.Background(), ScenarioInput{Scenario: sc, Reschedules: resched})
				require.NoError(t, err)
				assert.InDelta(t, want.Objective, got.Objective, 1e-4, "mode %s", mode)
				assert.False(t, got.EarlyExit)
				assert.GreaterOrEqual(t, got.Passes, 1)
			}
		}
	}
}

// A converged cut is tight at the point it was generated from.
func TestScenarioCutIsTight(t *testing.T) {
	s := newHubScenarioSolver(t, hubConfig())
	sc := hubScenarios()[0]
	resched := []int{10, 0, 0, 0}
	res, err := s.Solve(context.Background(), ScenarioInput{Scenario: sc, Reschedules: resched})
	require.NoError(t, err)

	point := []float64{10, 0, 0, 0}
	assert.InDelta(t, sc.Probability*res.Objective, res.Cut.Alpha-res.Cut.LHS(point, 0), 1e-3)
}

// The cut under-estimates the recourse at every other point.
func TestScenarioCutIsValid(t *testing.T) {
	cfg := hubConfig()
	s := newHubScenarioSolver(t, cfg)
	sc := hubScenarios()[1]
	res, err := s.Solve(context.Background(), ScenarioInput{Scenario: sc, Reschedules: []int{0, 0, 0, 0}})
	require.NoError(t, err)

	for _, r := range [][]int{{0, 0, 10, 0}, {0, 0, 30, 0}, {30, 30, 0, 0}} {
		other, err := s.Solve(context.Background(), ScenarioInput{Scenario: sc, Reschedules: r})
		require.NoError(t, err)
		point := make([]float64, len(r))
		for i, v := range r {
			point[i] = float64(v)
		}
		bound := res.Cut.Alpha - res.Cut.LHS(point, 0)
		assert.LessOrEqual(t, bound, sc.Probability*other.Objective+1e-4, "reschedules %v", r)
	}
}

func TestScenarioColumnCaching(t *testing.T) {
	cfg := hubConfig()
	cfg.UseColumnCaching = true
	s := newHubScenarioSolver(t, cfg)
	sc := hubScenarios()[0]

	paths, err := s.InitialPaths(sc.Delays(4))
	require.NoError(t, err)
	cache := NewPathCache(paths)
	require.Equal(t, 4, cache.Size())

	first, err := s.Solve(context.Background(), ScenarioInput{Scenario: sc, Reschedules: make([]int, 4), Cache: cache})
	require.NoError(t, err)
	assert.Greater(t, cache.Size(), 4)

	second, err := s.Solve(context.Background(), ScenarioInput{Scenario: sc, Reschedules: make([]int, 4), Cache: cache})
	require.NoError(t, err)
	assert.InDelta(t, first.Objective, second.Objective, 1e-6)
	assert.InDelta(t, 46.0, second.Objective, 1e-4)
}

// A scenario solved once leaves an anchor dual. Solving it again from a cold
// restricted master stops after the first pricing pass because the
// stabilized cut already separates the master point.
func TestScenarioEarlyExitFromAnchor(t *testing.T) {
	cfg := hubConfig()
	cfg.MultiCut = true
	s := newHubScenarioSolver(t, cfg)
	sc := hubScenarios()[0]
	resched := make([]int, 4)

	full, err := s.Solve(context.Background(), ScenarioInput{Scenario: sc, Reschedules: resched})
	require.NoError(t, err)
	require.False(t, full.EarlyExit)
	require.NotNil(t, full.Dual)
	require.Greater(t, full.Passes, 1)

	ms := &MasterSolution{Reschedules: resched, Theta: []float64{0, 0}}
	res, err := s.Solve(context.Background(), ScenarioInput{Scenario: sc, Reschedules: resched, Master: ms, Anchor: full.Dual})
	require.NoError(t, err)
	require.True(t, res.EarlyExit)
	assert.True(t, res.Cut.Separates(ms.Point(), 0))
	assert.Less(t, res.Passes, full.Passes)
	assert.Nil(t, res.Dual)

	// The stabilized cut under-estimates the recourse everywhere.
	for _, r := range [][]int{{0, 0, 0, 0}, {10, 0, 0, 0}, {0, 0, 30, 0}, {30, 30, 0, 0}} {
		other, err := s.Solve(context.Background(), ScenarioInput{Scenario: sc, Reschedules: r})
		require.NoError(t, err)
		point := make([]float64, len(r))
		for i, v := range r {
			point[i] = float64(v)
		}
		bound := res.Cut.Alpha - res.Cut.LHS(point, 0)
		assert.LessOrEqual(t, bound, sc.Probability*other.Objective+1e-4, "reschedules %v", r)
	}

	// A huge theta is never separated, so the driver runs to convergence.
	ms.Theta = []float64{math.MaxFloat32, math.MaxFloat32}
	res, err = s.Solve(context.Background(), ScenarioInput{Scenario: sc, Reschedules: resched, Master: ms, Anchor: full.Dual})
	require.NoError(t, err)
	assert.False(t, res.EarlyExit)
	assert.NotNil(t, res.Dual)
}

func TestScenarioNoEarlyExitWithoutAnchor(t *testing.T) {
	cfg := hubConfig()
	cfg.MultiCut = true
	s := newHubScenarioSolver(t, cfg)
	ms := &MasterSolution{Reschedules: make([]int, 4), Theta: []float64{0, 0}}
	res, err := s.Solve(context.Background(), ScenarioInput{Scenario: hubScenarios()[0], Reschedules: ms.Reschedules, Master: ms})
	require.NoError(t, err)
	assert.False(t, res.EarlyExit)
	assert.InDelta(t, 46.0, res.Objective, 1e-4)
}

type failingLP struct{ lp.Solver }

type panickingLP struct{ lp.Solver }

func (panickingLP) SolveLP(context.Context, *lp.Model) (*lp.Solution, error) {
	panic("simplex blew up")
}

func (failingLP) SolveLP(context.Context, *lp.Model) (*lp.Solution, error) {
	return nil, lp.ErrNotOptimal
}

func TestScenarioSolverPropagatesLPFailure(t *testing.T) {
	reg := hubRegistry()
	s, err := NewScenarioSolver(reg.Legs(), reg.Tails(), reg.Network(), failingLP{}, hubConfig(), nopLog())
	require.NoError(t, err)
	_, err = s.Solve(context.Background(), ScenarioInput{Scenario: model.Scenario{Probability: 1}, Reschedules: make([]int, 4)})
	assert.True(t, errors.Is(err, lp.ErrNotOptimal))
}
