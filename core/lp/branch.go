package lp

import (
	"context"
	"errors"
	"fmt"
	"math"
)

type node struct {
	lower []float64
	upper []float64
	depth int
}

// SolveMIP runs a depth-first branch and bound over LP relaxations. The
// branching variable is the most fractional integer variable and the child
// closest to the relaxed value is explored first.
func (s *Simplex) SolveMIP(ctx context.Context, m *Model) (*Solution, error) {
	ints := m.Integers()
	if len(ints) == 0 {
		return s.SolveLP(ctx, m)
	}

	work := m.Clone()
	root := node{lower: make([]float64, len(ints)), upper: make([]float64, len(ints))}
	for k, v := range ints {
		lo, hi := m.Bounds(v)
		root.lower[k], root.upper[k] = math.Ceil(lo-integralityTol), math.Floor(hi+integralityTol)
	}

	var (
		best    *Solution
		bestObj = math.Inf(1)
		stack   = []node{root}
		nodes   int
		limited bool
	)
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.MaxNodes > 0 && nodes >= s.MaxNodes {
			limited = true
			break
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		infeasible := false
		for k, v := range ints {
			if nd.lower[k] > nd.upper[k] {
				infeasible = true
				break
			}
			work.SetBounds(v, nd.lower[k], nd.upper[k])
		}
		if infeasible {
			continue
		}

		sol, err := s.solve(work, false)
		if errors.Is(err, ErrInfeasible) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if sol.Objective >= bestObj-s.pruneGap(bestObj) {
			continue
		}

		k := mostFractional(sol.X, ints)
		if k < 0 {
			for _, v := range ints {
				sol.X[v] = math.Round(sol.X[v])
			}
			sol.Objective = m.Objective(sol.X)
			best, bestObj = sol, sol.Objective
			continue
		}

		val := sol.X[ints[k]]
		down, up := nd.child(), nd.child()
		down.upper[k] = math.Floor(val)
		up.lower[k] = math.Ceil(val)
		if val-math.Floor(val) < 0.5 {
			stack = append(stack, up, down)
		} else {
			stack = append(stack, down, up)
		}
	}

	if best == nil {
		if limited {
			return nil, fmt.Errorf("%w: node limit %d reached without incumbent", ErrNotOptimal, s.MaxNodes)
		}
		return nil, ErrInfeasible
	}
	best.Nodes = nodes
	return best, nil
}

func (n node) child() node {
	return node{
		lower: append([]float64(nil), n.lower...),
		upper: append([]float64(nil), n.upper...),
		depth: n.depth + 1,
	}
}

func (s *Simplex) pruneGap(incumbent float64) float64 {
	if math.IsInf(incumbent, 1) {
		return 0
	}
	gap := s.MIPGap
	if gap <= 0 {
		gap = defaultMIPGap
	}
	return math.Max(1e-9, gap*math.Abs(incumbent))
}

func mostFractional(x []float64, ints []int) int {
	best, bestFrac := -1, integralityTol
	for k, v := range ints {
		f := x[v] - math.Floor(x[v])
		dist := math.Min(f, 1-f)
		if dist > bestFrac {
			best, bestFrac = k, dist
		}
	}
	return best
}
