package canon

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/thiremani/cvxsym/constraint"
	"github.com/thiremani/cvxsym/expr"
	"github.com/thiremani/cvxsym/sparse"
)

// Dims describes the cone K of Gx <=_K h: L linear rows followed by one
// second-order cone per entry of Q.
type Dims struct {
	L int   `json:"l"`
	Q []int `json:"q"`
}

// Matrices is the canonical problem
//
//	minimize c'x + Offset  s.t.  Ax = b, h - Gx in K
//
// with T either expr.Expr before value assignment or float64 after.
type Matrices[T any] struct {
	C      []T               `json:"c"`
	A      *sparse.Matrix[T] `json:"A"`
	B      []T               `json:"b"`
	G      *sparse.Matrix[T] `json:"G"`
	H      []T               `json:"h"`
	Dims   Dims              `json:"dims"`
	Offset T                 `json:"offset"`
	Vars   []string          `json:"vars"`
	Params []string          `json:"params"`
}

// rows accumulates one block of stuffed constraint rows.
type rows struct {
	coo sparse.COO[expr.Expr]
	rhs []expr.Expr
}

type column struct {
	j int
	v *expr.Symbol
}

func (r *rows) add(c *constraint.Constraint, cols map[int]int) error {
	row := len(r.rhs)
	var used []column
	for _, v := range c.Expr.Vars() {
		if v == nil {
			continue
		}
		j, ok := cols[v.ID()]
		if !ok {
			return fmt.Errorf("%w: %s is not a column of %s", expr.ErrAlgebra, v, c)
		}
		if !slices.ContainsFunc(used, func(u column) bool { return u.j == j }) {
			used = append(used, column{j: j, v: v})
		}
	}
	slices.SortFunc(used, func(a, b column) int { return cmp.Compare(a.j, b.j) })

	for _, u := range used {
		coeff, err := c.Expr.CoefficientOf(u.v)
		if err != nil {
			return err
		}
		if expr.IsZero(coeff) {
			continue
		}
		r.coo.Append(row, u.j, coeff)
	}

	off, err := c.Expr.Offset()
	if err != nil {
		return err
	}
	rhs, err := expr.Neg(off)
	if err != nil {
		return err
	}
	r.rhs = append(r.rhs, rhs)
	return nil
}

// stuff assembles the canonical matrices from expanded constraints.
func stuff(ctx *expr.Context, obj expr.Expr, eqs, les []*constraint.Constraint, cones []*constraint.SOC) (*Matrices[expr.Expr], error) {
	vars, err := ctx.Variables()
	if err != nil {
		return nil, err
	}
	cols := make(map[int]int, len(vars))
	names := make([]string, len(vars))
	for j, v := range vars {
		cols[v.ID()] = j
		names[j] = v.Name()
	}

	m := &Matrices[expr.Expr]{Vars: names}
	for _, p := range ctx.Parameters() {
		m.Params = append(m.Params, p.Name())
	}

	objective, err := expr.SumOf(obj)
	if err != nil {
		return nil, err
	}
	m.C = make([]expr.Expr, len(vars))
	for j, v := range vars {
		if m.C[j], err = objective.CoefficientOf(v); err != nil {
			return nil, err
		}
	}
	if m.Offset, err = objective.Offset(); err != nil {
		return nil, err
	}

	var eq rows
	for _, c := range eqs {
		if err := eq.add(c, cols); err != nil {
			return nil, err
		}
	}

	var ineq rows
	for _, c := range les {
		if err := ineq.add(c, cols); err != nil {
			return nil, err
		}
	}
	m.Dims.L = len(les)
	m.Dims.Q = []int{}
	for _, q := range cones {
		m.Dims.Q = append(m.Dims.Q, q.Dims)
		for _, c := range q.Members {
			if err := ineq.add(c, cols); err != nil {
				return nil, err
			}
		}
	}

	if m.A, err = sparse.FromCOO(eq.coo, len(eq.rhs), len(vars), sparse.CSC); err != nil {
		return nil, err
	}
	if m.A != nil {
		m.B = eq.rhs
	}
	if m.G, err = sparse.FromCOO(ineq.coo, len(ineq.rhs), len(vars), sparse.CSC); err != nil {
		return nil, err
	}
	if m.G != nil {
		m.H = ineq.rhs
	}
	return m, nil
}

// Strings renders every symbolic entry, for printing and serialization.
func Strings(m *Matrices[expr.Expr]) *Matrices[string] {
	str := func(e expr.Expr) (string, error) { return e.String(), nil }
	all := func(es []expr.Expr) []string {
		if es == nil {
			return nil
		}
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.String()
		}
		return out
	}

	out := &Matrices[string]{
		C:      all(m.C),
		B:      all(m.B),
		H:      all(m.H),
		Dims:   m.Dims,
		Vars:   m.Vars,
		Params: m.Params,
	}
	// str never fails
	out.A, _ = sparse.Map(m.A, str)
	out.G, _ = sparse.Map(m.G, str)
	if m.Offset != nil {
		out.Offset = m.Offset.String()
	}
	return out
}
