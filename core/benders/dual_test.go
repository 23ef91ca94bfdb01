package benders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/flightrecovery/core/network"
	"github.com/kilianp07/flightrecovery/core/secondstage"
	"github.com/kilianp07/flightrecovery/internal/fixture"
)

func TestStabilizeLegSlack(t *testing.T) {
	legs, tails := fixture.Hub()
	est := zeroDual(len(tails), len(legs))
	obs := zeroDual(len(tails), len(legs))
	obs.Delay[0] = -2 // slack -1 against an estimate slack of 1

	got, lambda := est.stabilize(obs, nil, legs, secondstage.Options{})
	assert.InDelta(t, 0.5, lambda, 1e-12)
	assert.InDelta(t, -1.0, got.Delay[0], 1e-12)
	assert.InDelta(t, 0.0, got.LegSlack(legs[0]), 1e-12)
}

func TestStabilizeFeasibleObservation(t *testing.T) {
	legs, tails := fixture.Hub()
	est := zeroDual(len(tails), len(legs))
	obs := zeroDual(len(tails), len(legs))
	obs.Tail[0] = -3
	obs.Delay[1] = -0.5

	got, lambda := est.stabilize(obs, nil, legs, secondstage.Options{})
	assert.Zero(t, lambda)
	assert.Equal(t, obs.Tail, got.Tail)
	assert.Equal(t, obs.Delay, got.Delay)
}

func TestStabilizePathSlack(t *testing.T) {
	legs, tails := fixture.Hub()
	p, err := network.OnPlanPath(tails[0], make([]int, len(legs)))
	require.NoError(t, err)

	est := zeroDual(len(tails), len(legs))
	obs := zeroDual(len(tails), len(legs))
	obs.Tail[0] = 4 // path slack -4, estimate slack 0

	got, lambda := est.stabilize(obs, []*network.Path{p}, legs, secondstage.Options{})
	assert.Equal(t, 1.0, lambda)
	assert.InDelta(t, 0.0, got.PathSlack(p), 1e-12)
}

func TestStabilizeRiskSlack(t *testing.T) {
	legs, tails := fixture.Hub()
	opts := secondstage.Options{ExpectedExcess: true, RiskAversion: 1}
	est := zeroDual(len(tails), len(legs))
	obs := zeroDual(len(tails), len(legs))
	obs.Risk = -3 // rho + risk = -2, estimate 1

	_, lambda := est.stabilize(obs, nil, legs, opts)
	assert.InDelta(t, 2.0/3.0, lambda, 1e-12)
}

func TestDualCut(t *testing.T) {
	legs, tails := fixture.Hub()
	d := zeroDual(len(tails), len(legs))
	d.Tail = []float64{1, 2}
	d.Leg[0] = 3
	d.Delay[0] = -0.5
	d.Bound[7] = -1

	c := d.cut(legs, 0.5, secondstage.Options{})
	// 0.5 * (1 + 2 + 3 - 0.5*14 - 1)
	assert.InDelta(t, -1.0, c.Alpha, 1e-12)
	assert.InDelta(t, 0.25, c.Beta[0], 1e-12)
	assert.Zero(t, c.Beta[1])

	risk := d.cut(legs, 1, secondstage.Options{ExpectedExcess: true, ExcessTarget: 10})
	d.Risk = -0.2
	risk2 := d.cut(legs, 1, secondstage.Options{ExpectedExcess: true, ExcessTarget: 10})
	assert.InDelta(t, risk.Alpha-2, risk2.Alpha, 1e-12)
	assert.InDelta(t, 0.5-0.1, risk2.Beta[0], 1e-12)
}

func TestCheckFeasibility(t *testing.T) {
	legs, tails := fixture.Hub()
	d := zeroDual(len(tails), len(legs))
	require.NoError(t, d.checkFeasibility(legs))

	d.Delay[2] = -1.5
	err := d.checkFeasibility(legs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDualInfeasible))
}

func TestDualFromCopies(t *testing.T) {
	src := &secondstage.Duals{
		Tail:  []float64{1},
		Leg:   []float64{2},
		Delay: []float64{-1},
		Bound: map[int]float64{3: -0.5},
	}
	d := dualFrom(src)
	src.Tail[0] = 9
	src.Bound[3] = 9
	assert.Equal(t, 1.0, d.Tail[0])
	assert.Equal(t, -0.5, d.Bound[3])
}

// From a feasible anchor the estimate only moves part of the way.
func TestStabilizeFromFeasibleAnchor(t *testing.T) {
	legs, tails := fixture.Hub()
	p, err := network.OnPlanPath(tails[0], make([]int, len(legs)))
	require.NoError(t, err)

	anchor := zeroDual(len(tails), len(legs))
	anchor.Tail[0] = -2 // path slack 2
	obs := zeroDual(len(tails), len(legs))
	obs.Tail[0] = 2 // path slack -2

	got, lambda := anchor.stabilize(obs, []*network.Path{p}, legs, secondstage.Options{})
	assert.InDelta(t, 0.5, lambda, 1e-12)
	assert.InDelta(t, 0.0, got.Tail[0], 1e-12)
	assert.InDelta(t, 0.0, got.PathSlack(p), 1e-12)
}

func TestDualAnchorFoldsBoundDuals(t *testing.T) {
	legs, tails := fixture.Hub()
	p0, err := network.OnPlanPath(tails[0], make([]int, len(legs)))
	require.NoError(t, err)
	e0 := network.EmptyPath(tails[0])
	p1, err := network.OnPlanPath(tails[1], make([]int, len(legs)))
	require.NoError(t, err)

	d := zeroDual(len(tails), len(legs))
	d.Tail = []float64{1, 2}
	d.Leg[0] = -4
	d.Bound[p0.Index] = -3
	d.Bound[e0.Index] = -1
	d.Bound[p1.Index] = -0.5

	got := d.anchor([][]*network.Path{{e0, p0}, {p1}})
	assert.Equal(t, []float64{-2, 1.5}, got.Tail)
	assert.Empty(t, got.Bound)
	assert.Equal(t, d.Leg, got.Leg)
	for _, p := range []*network.Path{e0, p0, p1} {
		assert.GreaterOrEqual(t, got.PathSlack(p), d.PathSlack(p), "path %d", p.Index)
	}
}
