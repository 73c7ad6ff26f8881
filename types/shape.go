package types

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrBadShape = errors.New("types: invalid shape")

// Shape is the (rows, cols) extent of an expression. Every expression is
// conformed to two dimensions: scalars are (1, 1) and vectors are columns.
type Shape struct {
	Rows int
	Cols int
}

var Scalar = Shape{Rows: 1, Cols: 1}

// NewShape conforms dims to a two-dimensional shape.
// () and (1) and (1, 1) are scalar, (n) is the column (n, 1).
func NewShape(dims ...int) (Shape, error) {
	for _, d := range dims {
		if d <= 0 {
			return Shape{}, fmt.Errorf("%w: non-positive dimension in %v", ErrBadShape, dims)
		}
	}
	switch len(dims) {
	case 0:
		return Scalar, nil
	case 1:
		return Shape{Rows: dims[0], Cols: 1}, nil
	case 2:
		return Shape{Rows: dims[0], Cols: dims[1]}, nil
	}
	return Shape{}, fmt.Errorf("%w: %d dimensions", ErrBadShape, len(dims))
}

func (s Shape) IsScalar() bool { return s.Rows == 1 && s.Cols == 1 }

func (s Shape) Len() int { return s.Rows * s.Cols }

func (s Shape) T() Shape { return Shape{Rows: s.Cols, Cols: s.Rows} }

// Contains reports whether (i, j) is a valid index into s.
func (s Shape) Contains(i, j int) bool {
	return 0 <= i && i < s.Rows && 0 <= j && j < s.Cols
}

// Indices lists every index of s in row-major order.
func (s Shape) Indices() []Index {
	idx := make([]Index, 0, s.Len())
	for i := 0; i < s.Rows; i++ {
		for j := 0; j < s.Cols; j++ {
			idx = append(idx, Index{Row: i, Col: j})
		}
	}
	return idx
}

func (s Shape) String() string {
	return "(" + strconv.Itoa(s.Rows) + ", " + strconv.Itoa(s.Cols) + ")"
}

// Index addresses one element of a shaped expression.
type Index struct {
	Row int
	Col int
}

// String renders the element suffix used for symbol and parameter names.
func (i Index) String() string {
	return "[" + strconv.Itoa(i.Row) + "][" + strconv.Itoa(i.Col) + "]"
}
