package canon

import (
	"github.com/thiremani/cvxsym/constraint"
	"github.com/thiremani/cvxsym/expr"
)

// relax turns a defining equality lhs == rhs with one curved side into the
// inequality that is tight at the optimum. Other constraints are returned
// unchanged.
func relax(c *constraint.Constraint) (*constraint.Constraint, error) {
	if c.Op != constraint.EQ || c.Expr.Len() != 2 {
		return c, nil
	}
	terms := c.Expr.Terms()
	lhs := terms[0]
	rhs, err := expr.Neg(terms[1])
	if err != nil {
		return nil, err
	}

	l, r := lhs.Curvature(), rhs.Curvature()
	switch {
	case l.IsConvex() && (r.IsConcave() || r.IsAffine()),
		l.IsAffine() && r.IsConcave():
		return constraint.Le(lhs, rhs)
	case r.IsConvex() && (l.IsConcave() || l.IsAffine()),
		l.IsConcave() && r.IsAffine():
		return constraint.Ge(lhs, rhs)
	}
	return c, nil
}
