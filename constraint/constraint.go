package constraint

import (
	"fmt"
	"strings"

	"github.com/thiremani/cvxsym/expr"
	"github.com/thiremani/cvxsym/types"
)

type Op int

const (
	EQ Op = iota // expr == 0
	LE           // expr <= 0
)

func (op Op) String() string {
	switch op {
	case EQ:
		return "=="
	case LE:
		return "<="
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Constraint compares Expr with zero. Expr holds lhs - rhs.
type Constraint struct {
	Op   Op
	Expr *expr.Sum
}

func New(op Op, e *expr.Sum) *Constraint {
	return &Constraint{Op: op, Expr: e}
}

func diff(lhs, rhs expr.Expr) (*expr.Sum, error) {
	nr, err := expr.Neg(rhs)
	if err != nil {
		return nil, err
	}
	return expr.SumOf(lhs, nr)
}

// Eq is lhs == rhs.
func Eq(lhs, rhs expr.Expr) (*Constraint, error) {
	d, err := diff(lhs, rhs)
	if err != nil {
		return nil, err
	}
	return New(EQ, d), nil
}

// Le is lhs <= rhs.
func Le(lhs, rhs expr.Expr) (*Constraint, error) {
	d, err := diff(lhs, rhs)
	if err != nil {
		return nil, err
	}
	return New(LE, d), nil
}

// Ge is lhs >= rhs, stored as -lhs <= -rhs.
func Ge(lhs, rhs expr.Expr) (*Constraint, error) {
	nl, err := expr.Neg(lhs)
	if err != nil {
		return nil, err
	}
	nr, err := expr.Neg(rhs)
	if err != nil {
		return nil, err
	}
	return Le(nl, nr)
}

func (c *Constraint) Shape() types.Shape { return c.Expr.Shape() }

func (c *Constraint) String() string {
	return c.Expr.String() + " " + c.Op.String() + " 0"
}

// Expand splits a shaped constraint into one scalar constraint per
// element, in row-major order.
func (c *Constraint) Expand() ([]*Constraint, error) {
	shape := c.Expr.Shape()
	if shape.IsScalar() {
		return []*Constraint{c}, nil
	}
	out := make([]*Constraint, 0, shape.Len())
	for _, idx := range shape.Indices() {
		s, err := c.Expr.ElementSum(idx.Row, idx.Col)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", c, err)
		}
		out = append(out, New(c.Op, s))
	}
	return out, nil
}

// GraphForm lifts a two-term inequality f + g <= 0 with one non-affine
// term f into the cone of f <= -g. It returns nil when c is already linear.
func (c *Constraint) GraphForm() (*SOC, error) {
	if c.Op != LE || c.Expr.Len() != 2 {
		return nil, nil
	}
	terms := c.Expr.Terms()
	lifted := -1
	for i, t := range terms {
		if t.Curvature().IsAffine() {
			continue
		}
		if lifted >= 0 {
			return nil, nil
		}
		lifted = i
	}
	if lifted < 0 {
		return nil, nil
	}

	t, err := expr.Neg(terms[1-lifted])
	if err != nil {
		return nil, err
	}
	axes, dims, err := expr.GraphForm(terms[lifted], t)
	if err != nil {
		return nil, fmt.Errorf("graph form of %s: %w", c, err)
	}
	return NewSOC(axes, dims)
}

// SOC is a second-order cone ||(s_1..s_n)|| <= s_0 over the slacks of its
// members. Member 0 is -axis_0 <= 0, the rest are axis_i <= 0.
type SOC struct {
	Dims    int
	Members []*Constraint
}

func NewSOC(axes []expr.Expr, dims int) (*SOC, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("%w: cone without axes", expr.ErrShape)
	}
	first, err := Ge(axes[0], expr.Const(0))
	if err != nil {
		return nil, err
	}
	members := []*Constraint{first}
	for _, ax := range axes[1:] {
		m, err := Le(ax, expr.Const(0))
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return &SOC{Dims: dims, Members: members}, nil
}

// Expand expands every member. A shaped bound with no other members is a
// set of one-dimensional cones, one per element.
func (s *SOC) Expand() ([]*SOC, error) {
	var members []*Constraint
	for i, m := range s.Members {
		rows, err := m.Expand()
		if err != nil {
			return nil, err
		}
		if i == 0 && len(rows) > 1 {
			return splitBound(rows)
		}
		members = append(members, rows...)
	}
	return []*SOC{{Dims: s.Dims, Members: members}}, nil
}

func splitBound(rows []*Constraint) ([]*SOC, error) {
	out := make([]*SOC, 0, len(rows))
	for _, r := range rows {
		bound, err := expr.Neg(r.Expr)
		if err != nil {
			return nil, err
		}
		cone, err := NewSOC([]expr.Expr{bound}, 1)
		if err != nil {
			return nil, err
		}
		out = append(out, cone)
	}
	return out, nil
}

func (s *SOC) String() string {
	parts := make([]string, len(s.Members))
	for i, m := range s.Members {
		parts[i] = m.String()
	}
	return fmt.Sprintf("soc(%d): [%s]", s.Dims, strings.Join(parts, "; "))
}
