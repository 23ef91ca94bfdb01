// Package lp provides a small linear and mixed-integer programming service on
// top of gonum's simplex implementation. Models are built incrementally: rows
// and columns can be appended after the first solve, which is how restricted
// master problems grow during column generation.
package lp

import (
	"fmt"
	"math"
)

// Sense is the direction of a linear constraint.
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Term is a coefficient on a variable.
type Term struct {
	Var  int
	Coef float64
}

// Entry is a coefficient in a row, used when adding a column.
type Entry struct {
	Row  int
	Coef float64
}

type variable struct {
	name    string
	lower   float64
	upper   float64
	cost    float64
	integer bool
}

type row struct {
	name  string
	terms []Term
	sense Sense
	rhs   float64
}

// Model is a minimization problem.
type Model struct {
	Name string
	vars []variable
	rows []row
}

// NewModel creates an empty model.
func NewModel(name string) *Model { return &Model{Name: name} }

// AddVar adds a variable and returns its index. Use math.Inf for missing
// bounds.
func (m *Model) AddVar(name string, lower, upper, cost float64, integer bool) int {
	m.vars = append(m.vars, variable{name: name, lower: lower, upper: upper, cost: cost, integer: integer})
	return len(m.vars) - 1
}

// AddBinary adds a {0,1} variable.
func (m *Model) AddBinary(name string, cost float64) int {
	return m.AddVar(name, 0, 1, cost, true)
}

// AddColumn adds a variable together with its coefficients in existing rows.
func (m *Model) AddColumn(name string, lower, upper, cost float64, integer bool, entries []Entry) int {
	v := m.AddVar(name, lower, upper, cost, integer)
	for _, e := range entries {
		r := &m.rows[e.Row]
		r.terms = append(r.terms, Term{Var: v, Coef: e.Coef})
	}
	return v
}

// AddRow adds a constraint and returns its index.
func (m *Model) AddRow(name string, terms []Term, sense Sense, rhs float64) int {
	m.rows = append(m.rows, row{name: name, terms: append([]Term(nil), terms...), sense: sense, rhs: rhs})
	return len(m.rows) - 1
}

// SetCost changes the objective coefficient of a variable.
func (m *Model) SetCost(v int, cost float64) { m.vars[v].cost = cost }

// SetBounds changes the bounds of a variable.
func (m *Model) SetBounds(v int, lower, upper float64) {
	m.vars[v].lower = lower
	m.vars[v].upper = upper
}

// SetInteger toggles integrality of a variable.
func (m *Model) SetInteger(v int, integer bool) { m.vars[v].integer = integer }

// SetRHS changes the right-hand side of a row.
func (m *Model) SetRHS(r int, rhs float64) { m.rows[r].rhs = rhs }

// NumVars returns the number of variables.
func (m *Model) NumVars() int { return len(m.vars) }

// NumRows returns the number of constraints.
func (m *Model) NumRows() int { return len(m.rows) }

// VarName returns the name of a variable.
func (m *Model) VarName(v int) string { return m.vars[v].name }

// RowName returns the name of a row.
func (m *Model) RowName(r int) string { return m.rows[r].name }

// Bounds returns the bounds of a variable.
func (m *Model) Bounds(v int) (float64, float64) { return m.vars[v].lower, m.vars[v].upper }

// Integers returns the indices of integer variables.
func (m *Model) Integers() []int {
	var out []int
	for i, v := range m.vars {
		if v.integer {
			out = append(out, i)
		}
	}
	return out
}

// Objective evaluates the objective at x.
func (m *Model) Objective(x []float64) float64 {
	f := 0.0
	for i, v := range m.vars {
		f += v.cost * x[i]
	}
	return f
}

// Clone copies the model so bounds can be changed independently.
func (m *Model) Clone() *Model {
	c := &Model{Name: m.Name, vars: append([]variable(nil), m.vars...), rows: make([]row, len(m.rows))}
	for i, r := range m.rows {
		c.rows[i] = r
		c.rows[i].terms = append([]Term(nil), r.terms...)
	}
	return c
}

// Violation returns the largest constraint or bound violation of x.
func (m *Model) Violation(x []float64) float64 {
	worst := 0.0
	for i, v := range m.vars {
		worst = math.Max(worst, v.lower-x[i])
		worst = math.Max(worst, x[i]-v.upper)
	}
	for _, r := range m.rows {
		lhs := 0.0
		for _, t := range r.terms {
			lhs += t.Coef * x[t.Var]
		}
		switch r.sense {
		case LessEqual:
			worst = math.Max(worst, lhs-r.rhs)
		case GreaterEqual:
			worst = math.Max(worst, r.rhs-lhs)
		case Equal:
			worst = math.Max(worst, math.Abs(lhs-r.rhs))
		}
	}
	return worst
}
