package benders

import (
	"context"
	"fmt"
	"math"

	"github.com/kilianp07/flightrecovery/core/logger"
	"github.com/kilianp07/flightrecovery/core/lp"
	"github.com/kilianp07/flightrecovery/core/model"
)

// Master is the first-stage reschedule model. x[d][leg] selects duration d
// for leg; theta approximates the recourse cost once subproblems have been
// solved.
type Master struct {
	legs      []*model.Leg
	durations []int
	solver    lp.Solver
	log       logger.Logger

	m     *lp.Model
	x     [][]int
	theta []int
	cuts  int
}

// MasterSolution is one solved master.
type MasterSolution struct {
	Reschedules    []int
	RescheduleCost float64
	Theta          []float64 // nil before theta variables exist
	Objective      float64
}

// Point returns the reschedules as floats for cut evaluation.
func (s *MasterSolution) Point() []float64 {
	out := make([]float64, len(s.Reschedules))
	for i, r := range s.Reschedules {
		out[i] = float64(r)
	}
	return out
}

// NewMaster builds the duration cover, routing consistency and budget rows.
func NewMaster(legs []*model.Leg, tails []*model.Tail, durations []int, budget int, solver lp.Solver, log logger.Logger) *Master {
	m := &Master{legs: legs, durations: durations, solver: solver, log: log, m: lp.NewModel("master")}

	m.x = make([][]int, len(durations))
	for d, dur := range durations {
		m.x[d] = make([]int, len(legs))
		for i, leg := range legs {
			m.x[d][i] = m.m.AddBinary(fmt.Sprintf("x_%d_%d", dur, leg.ID), float64(dur)*leg.RescheduleCostPerMin)
		}
	}

	for i, leg := range legs {
		terms := make([]lp.Term, 0, len(durations))
		for d := range durations {
			terms = append(terms, lp.Term{Var: m.x[d][i], Coef: 1})
		}
		m.m.AddRow(fmt.Sprintf("duration_cover_%d", leg.ID), terms, lp.LessEqual, 1)
	}

	for _, tail := range tails {
		for k := 0; k+1 < len(tail.OrigLegs); k++ {
			cur, next := tail.OrigLegs[k], tail.OrigLegs[k+1]
			terms := make([]lp.Term, 0, 2*len(durations))
			for d, dur := range durations {
				terms = append(terms,
					lp.Term{Var: m.x[d][cur.Index], Coef: float64(dur)},
					lp.Term{Var: m.x[d][next.Index], Coef: -float64(dur)})
			}
			slack := next.DepTime - cur.ArrTime - cur.TurnTime
			m.m.AddRow(fmt.Sprintf("routing_%d_%d", cur.ID, next.ID), terms, lp.LessEqual, float64(slack))
		}
	}

	budgetTerms := make([]lp.Term, 0, len(durations)*len(legs))
	for d, dur := range durations {
		for i := range legs {
			budgetTerms = append(budgetTerms, lp.Term{Var: m.x[d][i], Coef: float64(dur)})
		}
	}
	m.m.AddRow("budget", budgetTerms, lp.LessEqual, float64(budget))
	return m
}

// AddTheta adds count recourse variables. Recourse cost is never negative, so
// theta is bounded below by zero.
func (m *Master) AddTheta(count int) {
	if m.theta != nil {
		return
	}
	for i := 0; i < count; i++ {
		m.theta = append(m.theta, m.m.AddVar(fmt.Sprintf("theta_%d", i), 0, math.Inf(1), 1, false))
	}
}

// HasTheta reports whether theta variables exist.
func (m *Master) HasTheta() bool { return m.theta != nil }

// AddCut adds beta·r + theta[thetaIdx] >= alpha. Tiny coefficients are
// dropped and a near-zero alpha is snapped to zero.
func (m *Master) AddCut(cut *Cut, thetaIdx int) {
	terms := []lp.Term{{Var: m.theta[thetaIdx], Coef: 1}}
	for i, b := range cut.Beta {
		if math.Abs(b) < model.EPS {
			continue
		}
		for d, dur := range m.durations {
			terms = append(terms, lp.Term{Var: m.x[d][i], Coef: b * float64(dur)})
		}
	}
	alpha := cut.Alpha
	if math.Abs(alpha) < model.EPS {
		alpha = 0
	}
	m.m.AddRow(fmt.Sprintf("cut_%d", m.cuts), terms, lp.GreaterEqual, alpha)
	m.cuts++
}

// NumCuts returns the number of cuts added so far.
func (m *Master) NumCuts() int { return m.cuts }

// Solve solves the master MIP.
func (m *Master) Solve(ctx context.Context) (*MasterSolution, error) {
	res, err := m.solver.SolveMIP(ctx, m.m)
	if err != nil {
		return nil, fmt.Errorf("master: %w", err)
	}
	sol := &MasterSolution{Reschedules: make([]int, len(m.legs)), Objective: res.Objective}
	for d, dur := range m.durations {
		for i, leg := range m.legs {
			if res.X[m.x[d][i]] > 0.5 {
				sol.Reschedules[i] += dur
				sol.RescheduleCost += float64(dur) * leg.RescheduleCostPerMin
			}
		}
	}
	if m.theta != nil {
		sol.Theta = make([]float64, len(m.theta))
		for i, v := range m.theta {
			sol.Theta[i] = res.X[v]
		}
	}
	m.log.Debugw("master solved", map[string]any{
		"objective":       sol.Objective,
		"reschedule_cost": sol.RescheduleCost,
		"cuts":            m.cuts,
		"nodes":           res.Nodes,
	})
	return sol, nil
}
