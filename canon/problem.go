package canon

import (
	"fmt"

	"github.com/thiremani/cvxsym/constraint"
	"github.com/thiremani/cvxsym/expr"
)

// Problem is minimize Objective subject to Constraints.
type Problem struct {
	Objective   expr.Expr
	Constraints []*constraint.Constraint
	// Maximized records that Objective is the negation of a maximized
	// expression.
	Maximized bool
}

func Minimize(obj expr.Expr, constraints ...*constraint.Constraint) (*Problem, error) {
	if !obj.Shape().IsScalar() {
		return nil, fmt.Errorf("%w: objective %s has shape %s", expr.ErrShape, obj, obj.Shape())
	}
	return &Problem{Objective: obj, Constraints: constraints}, nil
}

// Maximize is Minimize(-obj).
func Maximize(obj expr.Expr, constraints ...*constraint.Constraint) (*Problem, error) {
	if !obj.Shape().IsScalar() {
		return nil, fmt.Errorf("%w: objective %s has shape %s", expr.ErrShape, obj, obj.Shape())
	}
	neg, err := expr.Neg(obj)
	if err != nil {
		return nil, err
	}
	return &Problem{Objective: neg, Constraints: constraints, Maximized: true}, nil
}
