package lp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// column maps a standard-form column back to a model variable. Model variable
// v equals shift[v] plus the signed sum of its columns.
type column struct {
	v    int
	sign float64
}

// standardForm is min cᵀx s.t. Ax = b, x >= 0, b >= 0 with one artificial
// column per row so the artificial columns form a feasible starting basis.
type standardForm struct {
	c     []float64
	a     *mat.Dense
	b     []float64
	cols  []column // structural columns first
	shift []float64

	rowSign    []float64
	modelRows  int
	artificial []int
}

type boundRow struct {
	col int
	rhs float64
}

func toStandard(m *Model, bigM float64) (*standardForm, error) {
	sf := &standardForm{shift: make([]float64, len(m.vars)), modelRows: len(m.rows)}

	used := make([]bool, len(m.vars))
	for _, r := range m.rows {
		for _, t := range r.terms {
			if t.Coef != 0 {
				used[t.Var] = true
			}
		}
	}

	varCols := make([][]int, len(m.vars))
	var bounds []boundRow
	addCol := func(v int, sign float64) int {
		sf.cols = append(sf.cols, column{v: v, sign: sign})
		sf.c = append(sf.c, sign*m.vars[v].cost)
		idx := len(sf.cols) - 1
		varCols[v] = append(varCols[v], idx)
		return idx
	}

	for j, v := range m.vars {
		lowerFinite, upperFinite := !math.IsInf(v.lower, -1), !math.IsInf(v.upper, 1)
		if lowerFinite && upperFinite && v.lower > v.upper+feasTol {
			return nil, ErrInfeasible
		}
		switch {
		case lowerFinite:
			sf.shift[j] = v.lower
			if upperFinite {
				if v.upper-v.lower <= feasTol {
					// fixed variable
					continue
				}
				bounds = append(bounds, boundRow{col: addCol(j, 1), rhs: v.upper - v.lower})
				continue
			}
			if used[j] {
				addCol(j, 1)
			} else if v.cost < 0 {
				return nil, ErrUnbounded
			}
		case upperFinite:
			sf.shift[j] = v.upper
			if used[j] {
				addCol(j, -1)
			} else if v.cost > 0 {
				return nil, ErrUnbounded
			}
		default:
			if used[j] {
				addCol(j, 1)
				addCol(j, -1)
			} else if v.cost != 0 {
				return nil, ErrUnbounded
			}
		}
	}

	numSlack := len(bounds)
	for _, r := range m.rows {
		if r.sense != Equal {
			numSlack++
		}
	}
	numRows := len(m.rows) + len(bounds)
	numStruct := len(sf.cols)
	numCols := numStruct + numSlack + numRows
	if numRows == 0 {
		return sf, nil
	}

	scale := 1.0
	for _, c := range sf.c {
		scale = math.Max(scale, math.Abs(c))
	}

	sf.a = mat.NewDense(numRows, numCols, nil)
	sf.b = make([]float64, numRows)
	sf.rowSign = make([]float64, numRows)
	sf.c = append(sf.c, make([]float64, numSlack+numRows)...)

	slack := numStruct
	for i, r := range m.rows {
		rhs := r.rhs
		for _, t := range r.terms {
			rhs -= t.Coef * sf.shift[t.Var]
			for _, col := range varCols[t.Var] {
				sf.a.Set(i, col, sf.a.At(i, col)+t.Coef*sf.cols[col].sign)
			}
		}
		switch r.sense {
		case LessEqual:
			sf.a.Set(i, slack, 1)
			slack++
		case GreaterEqual:
			sf.a.Set(i, slack, -1)
			slack++
		}
		sf.b[i] = rhs
	}
	for k, br := range bounds {
		i := len(m.rows) + k
		sf.a.Set(i, br.col, 1)
		sf.a.Set(i, slack, 1)
		slack++
		sf.b[i] = br.rhs
	}

	for i := 0; i < numRows; i++ {
		sf.rowSign[i] = 1
		if sf.b[i] < 0 {
			sf.rowSign[i] = -1
			sf.b[i] = -sf.b[i]
			for j := 0; j < numStruct+numSlack; j++ {
				if v := sf.a.At(i, j); v != 0 {
					sf.a.Set(i, j, -v)
				}
			}
		}
		art := numStruct + numSlack + i
		sf.a.Set(i, art, 1)
		sf.c[art] = bigM * scale
		sf.artificial = append(sf.artificial, art)
	}
	return sf, nil
}

// recover maps a standard-form point back to model variables.
func (sf *standardForm) recover(xStd []float64) []float64 {
	x := append([]float64(nil), sf.shift...)
	for k, col := range sf.cols {
		if xStd != nil {
			x[col.v] += col.sign * xStd[k]
		}
	}
	return x
}
