package canon

import (
	"fmt"

	"github.com/thiremani/cvxsym/expr"
	"github.com/thiremani/cvxsym/sparse"
)

// Assign substitutes parameter values into symbolic matrices.
func Assign(m *Matrices[expr.Expr], values map[string]float64) (*Matrices[float64], error) {
	eval := func(e expr.Expr) (float64, error) {
		if f := residualFunc(e); f != nil {
			return 0, fmt.Errorf("%w: non-parametric function %s left in canonical matrices", expr.ErrAlgebra, f)
		}
		return expr.Eval(e, values)
	}

	out := &Matrices[float64]{
		Dims:   m.Dims,
		Vars:   m.Vars,
		Params: m.Params,
	}
	var err error
	if out.C, err = evalAll(m.C, eval); err != nil {
		return nil, fmt.Errorf("c: %w", err)
	}
	if out.B, err = evalAll(m.B, eval); err != nil {
		return nil, fmt.Errorf("b: %w", err)
	}
	if out.H, err = evalAll(m.H, eval); err != nil {
		return nil, fmt.Errorf("h: %w", err)
	}
	if out.A, err = sparse.Map(m.A, eval); err != nil {
		return nil, fmt.Errorf("A: %w", err)
	}
	if out.G, err = sparse.Map(m.G, eval); err != nil {
		return nil, fmt.Errorf("G: %w", err)
	}
	if m.Offset != nil {
		if out.Offset, err = eval(m.Offset); err != nil {
			return nil, fmt.Errorf("offset: %w", err)
		}
	}
	return out, nil
}

func evalAll(es []expr.Expr, eval func(expr.Expr) (float64, error)) ([]float64, error) {
	if es == nil {
		return nil, nil
	}
	out := make([]float64, len(es))
	for i, e := range es {
		v, err := eval(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// residualFunc finds a function that canonicalization should have lifted.
func residualFunc(e expr.Expr) *expr.Func {
	switch e := e.(type) {
	case *expr.Func:
		if !e.Parametric() {
			return e
		}
	case *expr.Sum:
		for _, t := range e.Terms() {
			if f := residualFunc(t); f != nil {
				return f
			}
		}
	case *expr.Mul:
		if f := residualFunc(e.Coeff()); f != nil {
			return f
		}
		return residualFunc(e.Term())
	}
	return nil
}
