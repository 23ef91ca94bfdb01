package benders

import (
	"testing"

	"github.com/kilianp07/flightrecovery/core/lp"
	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/core/registry"
	infralogger "github.com/kilianp07/flightrecovery/infra/logger"
	"github.com/kilianp07/flightrecovery/internal/fixture"
)

// hubScenarios delays the first outbound leg in one scenario and the second
// outbound leg in the other.
func hubScenarios() []model.Scenario {
	return []model.Scenario{
		{Probability: 0.5, PrimaryDelays: map[int]int{0: 60}},
		{Probability: 0.5, PrimaryDelays: map[int]int{2: 45}},
	}
}

func hubConfig() Config {
	cfg := Config{
		Durations:        []int{10, 30},
		RescheduleBudget: 60,
		MaxIterations:    100,
		Tolerance:        1e-6,
	}
	cfg.SetDefaults()
	return cfg
}

func hubRegistry() *registry.Registry {
	legs, tails := fixture.Hub()
	return registry.FromTails(legs, tails)
}

func nopLog() infralogger.Logger { return infralogger.NopLogger{} }

func newHubScenarioSolver(t *testing.T, cfg Config) *ScenarioSolver {
	t.Helper()
	reg := hubRegistry()
	s, err := NewScenarioSolver(reg.Legs(), reg.Tails(), reg.Network(), lp.NewSimplex(), cfg, infralogger.NopLogger{})
	if err != nil {
		t.Fatalf("scenario solver: %v", err)
	}
	return s
}
