package lp

import "errors"

var (
	// ErrInfeasible is returned when no point satisfies the constraints.
	ErrInfeasible = errors.New("lp: model is infeasible")
	// ErrUnbounded is returned when the objective decreases without limit.
	ErrUnbounded = errors.New("lp: model is unbounded")
	// ErrNotOptimal covers numerical failures and node limits.
	ErrNotOptimal = errors.New("lp: solver did not reach an optimal solution")
)
