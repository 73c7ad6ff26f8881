package canon

import (
	"fmt"

	"github.com/thiremani/cvxsym/constraint"
	"github.com/thiremani/cvxsym/expr"
)

// smith rewrites expressions so that every nonlinear function is applied
// directly to symbols, introducing one auxiliary variable per hoisted
// subexpression. The defining equalities are collected in constraints.
type smith struct {
	ctx         *expr.Context
	constraints []*constraint.Constraint
}

func (s *smith) emit(lhs, rhs expr.Expr) error {
	c, err := constraint.Eq(lhs, rhs)
	if err != nil {
		return err
	}
	s.constraints = append(s.constraints, c)
	return nil
}

func (s *smith) rewrite(e expr.Expr, withAux bool) (expr.Expr, error) {
	switch e := e.(type) {
	case *expr.Symbol, *expr.Constant:
		return e, nil
	case *expr.Vector:
		return s.vector(e)
	case *expr.Func:
		return s.function(e)
	case *expr.Sum:
		ns, err := s.sum(e)
		if err != nil {
			return nil, err
		}
		if !withAux {
			return ns, nil
		}
		return s.hoist(ns)
	case *expr.Mul:
		nm, err := s.mul(e)
		if err != nil {
			return nil, err
		}
		if !withAux {
			return nm, nil
		}
		return s.hoist(nm)
	}
	return nil, fmt.Errorf("%w: smith form of %s", expr.ErrUnsupported, e)
}

// hoist replaces e with a fresh auxiliary constrained to equal it.
func (s *smith) hoist(e expr.Expr) (expr.Expr, error) {
	aux, err := s.ctx.Aux(e.Shape())
	if err != nil {
		return nil, err
	}
	if err := s.emit(aux, e); err != nil {
		return nil, err
	}
	return aux, nil
}

func (s *smith) sum(e *expr.Sum) (*expr.Sum, error) {
	terms := e.Terms()
	for i, t := range terms {
		nt, err := s.rewrite(t, false)
		if err != nil {
			return nil, err
		}
		terms[i] = nt
	}
	return expr.SumOf(terms...)
}

// mul rebuilds the product without regrouping so that unit coefficients
// stay in place for the relaxation step.
func (s *smith) mul(e *expr.Mul) (*expr.Mul, error) {
	coeff, err := s.rewrite(e.Coeff(), false)
	if err != nil {
		return nil, err
	}
	term, err := s.rewrite(e.Term(), false)
	if err != nil {
		return nil, err
	}
	return e.WithArgs(coeff, term), nil
}

// vector replaces v with an auxiliary of its shape, one equality per element.
func (s *smith) vector(v *expr.Vector) (expr.Expr, error) {
	aux, err := s.ctx.Aux(v.Shape())
	if err != nil {
		return nil, err
	}
	for _, idx := range v.Shape().Indices() {
		el, err := v.At(idx.Row, idx.Col)
		if err != nil {
			return nil, err
		}
		switch e := el.(type) {
		case *expr.Func:
			args, err := s.args(e.Args())
			if err != nil {
				return nil, err
			}
			el = e.WithArgs(args)
		case *expr.Sum, *expr.Mul:
			if el, err = s.rewrite(e, false); err != nil {
				return nil, err
			}
		}
		a, err := aux.At(idx.Row, idx.Col)
		if err != nil {
			return nil, err
		}
		if err := s.emit(a, el); err != nil {
			return nil, err
		}
	}
	return aux, nil
}

func (s *smith) function(f *expr.Func) (expr.Expr, error) {
	if f.Parametric() || !needsAux(f) {
		return f, nil
	}
	// allocate before recursing so auxiliaries number outside-in
	aux, err := s.ctx.Aux(f.Shape())
	if err != nil {
		return nil, err
	}
	args, err := s.args(f.Args())
	if err != nil {
		return nil, err
	}
	if err := s.emit(aux, f.WithArgs(args)); err != nil {
		return nil, err
	}
	return aux, nil
}

// args hoists every composite, non-parametric argument.
func (s *smith) args(args []expr.Expr) ([]expr.Expr, error) {
	for i, a := range args {
		switch a.(type) {
		case *expr.Sum, *expr.Mul, *expr.Func, *expr.Vector:
			if expr.IsParametric(a) {
				continue
			}
			na, err := s.rewrite(a, true)
			if err != nil {
				return nil, err
			}
			args[i] = na
		}
	}
	return args, nil
}

func needsAux(f *expr.Func) bool {
	for _, a := range f.Args() {
		switch a.(type) {
		case *expr.Symbol, *expr.Sum, *expr.Mul:
			return true
		case *expr.Func, *expr.Vector:
			if !expr.IsParametric(a) {
				return true
			}
		}
	}
	return false
}
