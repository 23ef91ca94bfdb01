package benders

import (
	"fmt"
	"strings"

	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/core/pricing"
	"github.com/kilianp07/flightrecovery/core/secondstage"
)

// ColumnGen names how scenario subproblems obtain their routes.
type ColumnGen string

const (
	FullEnumeration ColumnGen = "FULL_ENUMERATION"
	AllPaths        ColumnGen = "ALL_PATHS"
	BestPaths       ColumnGen = "BEST_PATHS"
	FirstPaths      ColumnGen = "FIRST_PATHS"
)

// Config defines the decomposition settings.
type Config struct {
	// Durations is the reschedule menu in minutes.
	Durations []int `json:"durations"`
	// RescheduleBudget caps the total reschedule minutes. When zero the
	// budget is RescheduleBudgetFraction of the total block time.
	RescheduleBudget         int     `json:"reschedule_budget"`
	RescheduleBudgetFraction float64 `json:"reschedule_budget_fraction"`
	// FlightRescheduleBound drops menu entries above this many minutes.
	FlightRescheduleBound int `json:"flight_reschedule_bound"`

	Tolerance     float64 `json:"tolerance"`
	MaxIterations int     `json:"max_iterations"`
	MultiCut      bool    `json:"multi_cut"`
	WarmStart     bool    `json:"warm_start"`

	ColumnGen        ColumnGen `json:"column_gen"`
	ReducedCostPaths int       `json:"reduced_cost_paths"`
	UseColumnCaching bool      `json:"use_column_caching"`

	Parallel bool `json:"parallel"`
	Threads  int  `json:"threads"`

	ExpectedExcess bool    `json:"expected_excess"`
	RiskAversion   float64 `json:"risk_aversion"`
	ExcessTarget   float64 `json:"excess_target"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if len(c.Durations) == 0 {
		c.Durations = []int{5, 10, 15, 20, 25, 30}
	}
	if c.RescheduleBudget == 0 && c.RescheduleBudgetFraction == 0 {
		c.RescheduleBudgetFraction = 0.5
	}
	if c.Tolerance == 0 {
		c.Tolerance = 1e-3
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 30
	}
	if c.ColumnGen == "" {
		c.ColumnGen = AllPaths
	}
	c.ColumnGen = ColumnGen(strings.ToUpper(string(c.ColumnGen)))
	if c.ReducedCostPaths == 0 {
		c.ReducedCostPaths = 10
	}
	if c.Threads == 0 {
		c.Threads = 2
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if len(c.Durations) == 0 {
		return fmt.Errorf("durations are required")
	}
	for _, d := range c.Durations {
		if d <= 0 {
			return fmt.Errorf("duration %d must be positive", d)
		}
	}
	if c.RescheduleBudget < 0 || c.RescheduleBudgetFraction < 0 {
		return fmt.Errorf("reschedule budget must not be negative")
	}
	if c.Tolerance < 0 || c.Tolerance >= 1 {
		return fmt.Errorf("tolerance %v out of range [0,1)", c.Tolerance)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1")
	}
	if c.ColumnGen != FullEnumeration {
		if _, err := c.PricingStrategy(); err != nil {
			return err
		}
	}
	if c.ReducedCostPaths < 1 {
		return fmt.Errorf("reduced_cost_paths must be at least 1")
	}
	if c.Parallel && c.Threads < 1 {
		return fmt.Errorf("threads must be at least 1")
	}
	if c.ExpectedExcess && c.RiskAversion < 0 {
		return fmt.Errorf("risk_aversion must not be negative")
	}
	return nil
}

// PricingStrategy maps the column generation mode to a pricing strategy.
func (c Config) PricingStrategy() (pricing.Strategy, error) {
	return pricing.ParseStrategy(string(c.ColumnGen))
}

// Budget returns the total reschedule budget in minutes.
func (c Config) Budget(legs []*model.Leg) int {
	if c.RescheduleBudget > 0 {
		return c.RescheduleBudget
	}
	total := 0
	for _, l := range legs {
		total += l.BlockTime()
	}
	return int(c.RescheduleBudgetFraction * float64(total))
}

// Menu returns the durations allowed for a single leg.
func (c Config) Menu() []int {
	if c.FlightRescheduleBound <= 0 {
		return c.Durations
	}
	var out []int
	for _, d := range c.Durations {
		if d <= c.FlightRescheduleBound {
			out = append(out, d)
		}
	}
	return out
}

// SecondStageOptions returns the routing model options.
func (c Config) SecondStageOptions() secondstage.Options {
	return secondstage.Options{
		ExpectedExcess: c.ExpectedExcess,
		RiskAversion:   c.RiskAversion,
		ExcessTarget:   c.ExcessTarget,
	}
}
