package expr

import (
	"fmt"
	"slices"

	"github.com/thiremani/cvxsym/types"
)

// Vector is an ordered list of scalar expressions. It is a column unless
// transposed.
type Vector struct {
	elems      []Expr
	transposed bool
}

func NewVector(elems ...Expr) (*Vector, error) {
	for _, e := range elems {
		if !e.Shape().IsScalar() {
			return nil, fmt.Errorf("%w: vector element %s has shape %s", ErrShape, e, e.Shape())
		}
	}
	return &Vector{elems: slices.Clone(elems)}, nil
}

func (v *Vector) exprNode() {}

func (v *Vector) Elems() []Expr { return slices.Clone(v.elems) }

func (v *Vector) Len() int { return len(v.elems) }

func (v *Vector) Shape() types.Shape {
	if v.transposed {
		return types.Shape{Rows: 1, Cols: len(v.elems)}
	}
	return types.Shape{Rows: len(v.elems), Cols: 1}
}

func (v *Vector) T() *Vector {
	return &Vector{elems: v.elems, transposed: !v.transposed}
}

func (v *Vector) At(i, j int) (Expr, error) {
	if v.transposed {
		i, j = j, i
	}
	if j != 0 || i < 0 || i >= len(v.elems) {
		return nil, fmt.Errorf("%w: index %s out of range for vector of length %d",
			ErrShape, types.Index{Row: i, Col: j}, len(v.elems))
	}
	return v.elems[i], nil
}

// Parametric reports whether every element is a parameter, a constant or a
// parametric vector. An empty vector is parametric.
func (v *Vector) Parametric() bool {
	for _, e := range v.elems {
		if !isParametric(e) {
			return false
		}
	}
	return true
}

// Curvature is the common curvature of the elements, or Unknown when they
// disagree.
func (v *Vector) Curvature() types.Curvature {
	if len(v.elems) == 0 {
		return types.Affine
	}
	c := v.elems[0].Curvature()
	for _, e := range v.elems[1:] {
		if e.Curvature() != c {
			return types.Unknown
		}
	}
	return c
}

func (v *Vector) String() string {
	return "<" + joinExprs(v.elems, ", ") + ">"
}
