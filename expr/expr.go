package expr

import (
	"fmt"

	"github.com/thiremani/cvxsym/types"
)

// Expr is a node of a DCP expression tree. The set of node kinds is
// closed: *Constant, *Symbol, *Vector, *Sum, *Mul and *Func.
// Nodes are immutable once built.
type Expr interface {
	Shape() types.Shape
	Curvature() types.Curvature
	String() string
	exprNode()
}

type Constant struct {
	Value float64
}

func Const(v float64) *Constant { return &Constant{Value: v} }

func (c *Constant) exprNode()                  {}
func (c *Constant) Shape() types.Shape         { return types.Scalar }
func (c *Constant) Curvature() types.Curvature { return types.Affine }
func (c *Constant) String() string             { return formatFloat(c.Value) }

func isConst(e Expr, v float64) bool {
	c, ok := e.(*Constant)
	return ok && c.Value == v
}

// IsZero reports whether e is the constant 0.
func IsZero(e Expr) bool { return isConst(e, 0) }

// CompareConstants evaluates a comparison between two constants.
// op is one of "==", "<=", ">=".
func CompareConstants(op string, a, b *Constant) (bool, error) {
	switch op {
	case "==":
		return a.Value == b.Value, nil
	case "<=":
		return a.Value <= b.Value, nil
	case ">=":
		return a.Value >= b.Value, nil
	}
	return false, fmt.Errorf("%w: comparison %q", ErrUnsupported, op)
}

// At returns element (i, j) of e. A scalar expression is its own element.
func At(e Expr, i, j int) (Expr, error) {
	shape := e.Shape()
	if shape.IsScalar() {
		return e, nil
	}
	if !shape.Contains(i, j) {
		return nil, fmt.Errorf("%w: index %s out of range for %s of shape %s",
			ErrShape, types.Index{Row: i, Col: j}, e, shape)
	}

	switch e := e.(type) {
	case *Symbol:
		s, err := e.At(i, j)
		if err != nil {
			return nil, err
		}
		return s, nil
	case *Vector:
		return e.At(i, j)
	case *Sum:
		return e.At(i, j)
	case *Mul:
		return e.At(i, j)
	case *Func:
		return e.At(i, j)
	}
	return nil, fmt.Errorf("%w: cannot index %s", ErrUnsupported, e)
}

// Elements lists the scalar elements of e in row-major order.
func Elements(e Expr) ([]Expr, error) {
	if v, ok := e.(*Vector); ok {
		return v.Elems(), nil
	}
	shape := e.Shape()
	elems := make([]Expr, 0, shape.Len())
	for _, idx := range shape.Indices() {
		el, err := At(e, idx.Row, idx.Col)
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
	}
	return elems, nil
}

// HasVar reports whether v occurs anywhere in e.
func HasVar(e Expr, v *Symbol) bool {
	switch e := e.(type) {
	case *Symbol:
		return e == v
	case *Vector:
		for _, el := range e.elems {
			if HasVar(el, v) {
				return true
			}
		}
	case *Sum:
		for _, t := range e.terms {
			if HasVar(t, v) {
				return true
			}
		}
	case *Mul:
		return HasVar(e.coeff, v) || HasVar(e.term, v)
	case *Func:
		for _, a := range e.args {
			if HasVar(a, v) {
				return true
			}
		}
	}
	return false
}

// isParametric reports whether e can be evaluated once parameters are bound.
func isParametric(e Expr) bool {
	switch e := e.(type) {
	case *Constant:
		return true
	case *Symbol:
		return e.IsParameter()
	case *Vector:
		return e.Parametric()
	}
	return false
}

// IsParametric reports whether e is a parameter, a constant, or a
// vector or function built only from those.
func IsParametric(e Expr) bool {
	if f, ok := e.(*Func); ok {
		return f.Parametric()
	}
	return isParametric(e)
}

// termVar returns the variable carried by a term of a sum, or nil.
func termVar(e Expr) *Symbol {
	switch e := e.(type) {
	case *Symbol:
		if !e.IsParameter() {
			return e
		}
	case *Mul:
		if v := termVar(e.coeff); v != nil {
			return v
		}
		return termVar(e.term)
	}
	return nil
}

// broadcastShape returns the common shape of es. Scalars broadcast; all
// shaped operands must agree.
func broadcastShape(es ...Expr) (types.Shape, error) {
	shape := types.Scalar
	for _, e := range es {
		s := e.Shape()
		if s.IsScalar() {
			continue
		}
		if shape.IsScalar() {
			shape = s
			continue
		}
		if s != shape {
			return types.Shape{}, fmt.Errorf("%w: %s and %s", ErrShape, shape, s)
		}
	}
	return shape, nil
}
