package delay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/internal/fixture"
)

func newGenerator(t *testing.T, cfg Config) *Generator {
	t.Helper()
	legs, _ := fixture.Hub()
	cfg.SetDefaults()
	g, err := NewGenerator(cfg, legs)
	require.NoError(t, err)
	return g
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Exponential, cfg.Distribution)
	assert.Equal(t, PickAll, cfg.Strategy)

	lower := Config{Distribution: "lognormal", Strategy: "hub"}
	lower.SetDefaults()
	require.NoError(t, lower.Validate())
	assert.Equal(t, LogNormal, lower.Distribution)

	tests := []Config{
		{Distribution: "UNIFORM", Strategy: PickAll, Mean: 1, NumScenarios: 1},
		{Distribution: Exponential, Strategy: "NIGHT", Mean: 1, NumScenarios: 1},
		{Distribution: Exponential, Strategy: PickAll, Mean: -1, NumScenarios: 1},
		{Distribution: Exponential, Strategy: PickAll, Mean: 1, NumScenarios: 0},
	}
	for _, c := range tests {
		assert.Error(t, c.Validate(), "%+v", c)
	}
}

func TestGenerateProbabilitiesAndSupport(t *testing.T) {
	for _, dist := range []Distribution{Exponential, TruncatedNormal, LogNormal} {
		g := newGenerator(t, Config{Distribution: dist, NumScenarios: 8, Mean: 20, SD: 30})
		scenarios := g.Generate()
		require.Len(t, scenarios, 8)
		require.NoError(t, model.ValidateScenarios(scenarios), "distribution %s", dist)
		for _, s := range scenarios {
			assert.Len(t, s.PrimaryDelays, 4)
			for _, d := range s.PrimaryDelays {
				assert.GreaterOrEqual(t, d, 0)
			}
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := Config{Distribution: LogNormal, NumScenarios: 5, Seed: 42}
	a := newGenerator(t, cfg).Generate()
	b := newGenerator(t, cfg).Generate()
	assert.Equal(t, a, b)

	cfg.Seed = 43
	c := newGenerator(t, cfg).Generate()
	assert.NotEqual(t, a, c)
}

func TestSampleMean(t *testing.T) {
	g := newGenerator(t, Config{Distribution: Exponential, Mean: 30, Seed: 7})
	sum := 0
	const n = 20000
	for i := 0; i < n; i++ {
		sum += g.Sample()
	}
	assert.InDelta(t, 30.0, float64(sum)/n, 1.5)
}

func TestSelectLegs(t *testing.T) {
	legs := []*model.Leg{
		{ID: 1, DepPort: 5, ArrPort: 6, DepTime: 0, ArrTime: 60},
		{ID: 2, DepPort: 6, ArrPort: 5, DepTime: 100, ArrTime: 160},
		{ID: 3, DepPort: 5, ArrPort: 7, DepTime: 300, ArrTime: 360},
		{ID: 4, DepPort: 7, ArrPort: 5, DepTime: 700, ArrTime: 800},
	}
	model.IndexLegs(legs)

	tests := []struct {
		strategy PickStrategy
		want     []int
	}{
		{PickAll, []int{1, 2, 3, 4}},
		{PickHub, []int{1, 3}},
		{PickRushTime, []int{1, 2}},
	}
	for _, tt := range tests {
		cfg := Config{Strategy: tt.strategy}
		cfg.SetDefaults()
		g, err := NewGenerator(cfg, legs)
		require.NoError(t, err)
		var ids []int
		for _, l := range g.SelectLegs() {
			ids = append(ids, l.ID)
		}
		assert.Equal(t, tt.want, ids, "strategy %s", tt.strategy)
	}
	assert.Equal(t, 5, Hub(legs))
}
