package benders

import "errors"

var (
	// ErrDualInfeasible means column generation converged on duals that do
	// not price out the excess delay columns.
	ErrDualInfeasible = errors.New("dual infeasible after column generation")
	// ErrScenarioFailed wraps any failure of a scenario task.
	ErrScenarioFailed = errors.New("scenario subproblem failed")
)
