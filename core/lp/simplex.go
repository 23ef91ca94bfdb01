package lp

import (
	"context"
	"errors"
	"fmt"
	"math"

	gonumlp "gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	feasTol         = 1e-7
	artificialTol   = 1e-6
	dualityGapTol   = 1e-4
	defaultTol      = 1e-9
	defaultBigM     = 1e4
	bigMGrowth      = 100
	bigMAttempts    = 3
	integralityTol  = 1e-6
	defaultMIPGap   = 1e-6
	defaultMaxNodes = 200000
)

// runSimplex is swapped in tests to simulate numerical failures.
var runSimplex = gonumlp.Simplex

// Solution is the result of a solve. Duals are reported per model row for LP
// solves only, with the sign convention of a minimization problem: rows of
// type <= have non-positive duals and rows of type >= non-negative ones.
type Solution struct {
	Objective float64
	X         []float64
	Duals     []float64
	Nodes     int
}

// Solver is the contract the decomposition relies on.
type Solver interface {
	SolveLP(ctx context.Context, m *Model) (*Solution, error)
	SolveMIP(ctx context.Context, m *Model) (*Solution, error)
}

// Simplex solves models with gonum's dense simplex. Row duals are obtained by
// solving the dual of the standard form problem.
type Simplex struct {
	Tol      float64
	BigM     float64
	MIPGap   float64
	MaxNodes int
}

// NewSimplex returns a solver with default tolerances.
func NewSimplex() *Simplex {
	return &Simplex{Tol: defaultTol, BigM: defaultBigM, MIPGap: defaultMIPGap, MaxNodes: defaultMaxNodes}
}

func (s *Simplex) tol() float64 {
	if s.Tol > 0 {
		return s.Tol
	}
	return defaultTol
}

// SolveLP solves the continuous relaxation and returns row duals.
func (s *Simplex) SolveLP(ctx context.Context, m *Model) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.solve(m, true)
}

func (s *Simplex) solve(m *Model, withDuals bool) (*Solution, error) {
	bigM := s.BigM
	if bigM <= 0 {
		bigM = defaultBigM
	}
	var lastErr error
	for attempt := 0; attempt < bigMAttempts; attempt++ {
		sol, err := s.solveOnce(m, bigM, withDuals)
		if !errors.Is(err, errArtificial) {
			return sol, err
		}
		lastErr = err
		bigM *= bigMGrowth
	}
	return nil, fmt.Errorf("%s: %w", lastErr, ErrInfeasible)
}

var errArtificial = errors.New("artificial columns remain in the basis")

func (s *Simplex) solveOnce(m *Model, bigM float64, withDuals bool) (*Solution, error) {
	sf, err := toStandard(m, bigM)
	if err != nil {
		return nil, err
	}
	if sf.a == nil {
		x := sf.recover(nil)
		return &Solution{Objective: m.Objective(x), X: x, Duals: make([]float64, len(m.rows))}, nil
	}

	optF, xStd, err := runSimplex(sf.c, sf.a, sf.b, s.tol(), sf.artificial)
	if err != nil {
		if errors.Is(err, gonumlp.ErrUnbounded) {
			return nil, ErrUnbounded
		}
		if errors.Is(err, gonumlp.ErrInfeasible) {
			return nil, ErrInfeasible
		}
		return nil, fmt.Errorf("%w: %v", ErrNotOptimal, err)
	}
	for i, art := range sf.artificial {
		if xStd[art] > artificialTol*(1+sf.b[i]) {
			return nil, errArtificial
		}
	}

	x := sf.recover(xStd)
	sol := &Solution{Objective: m.Objective(x), X: x}
	if !withDuals {
		return sol, nil
	}
	y, dualF, err := solveDual(sf, s.tol())
	if err != nil {
		return nil, err
	}
	if math.Abs(dualF-optF) > dualityGapTol*(1+math.Abs(optF)) {
		return nil, fmt.Errorf("%w: duality gap %.6g (primal %.6g, dual %.6g)",
			ErrNotOptimal, math.Abs(dualF-optF), optF, dualF)
	}
	sol.Duals = make([]float64, sf.modelRows)
	for i := range sol.Duals {
		sol.Duals[i] = sf.rowSign[i] * y[i]
	}
	return sol, nil
}

// solveDual solves max bᵀy s.t. Aᵀy <= c with y free.
func solveDual(sf *standardForm, tol float64) ([]float64, float64, error) {
	m, n := sf.a.Dims()
	negB := make([]float64, m)
	for i, v := range sf.b {
		negB[i] = -v
	}
	c, a, b := gonumlp.Convert(negB, sf.a.T(), sf.c, nil, nil)

	var basic []int
	nonNegative := true
	for _, v := range sf.c {
		if v < 0 {
			nonNegative = false
			break
		}
	}
	if nonNegative {
		basic = make([]int, n)
		for j := range basic {
			basic[j] = 2*m + j
		}
	}

	f, z, err := runSimplex(c, a, b, tol, basic)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: dual solve: %v", ErrNotOptimal, err)
	}
	y := make([]float64, m)
	for i := range y {
		y[i] = z[i] - z[m+i]
	}
	return y, -f, nil
}
