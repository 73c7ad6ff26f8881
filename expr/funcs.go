package expr

import (
	"fmt"
	"math"
	"slices"

	"github.com/thiremani/cvxsym/types"
)

type FuncKind int

const (
	FuncSquare FuncKind = iota
	FuncQuadOverLin
	FuncInvPos
	FuncNorm2
	FuncGeoMean
	FuncSqrt
	FuncAbs
	FuncMax
	FuncMin
	FuncMatMul
)

var funcNames = [...]string{
	FuncSquare:      "square",
	FuncQuadOverLin: "quad_over_lin",
	FuncInvPos:      "inv_pos",
	FuncNorm2:       "norm2",
	FuncGeoMean:     "geo_mean",
	FuncSqrt:        "sqrt",
	FuncAbs:         "abs",
	FuncMax:         "max",
	FuncMin:         "min",
	FuncMatMul:      "matmul",
}

var funcCurvatures = [...]types.Curvature{
	FuncSquare:      types.Convex,
	FuncQuadOverLin: types.Convex,
	FuncInvPos:      types.Convex,
	FuncNorm2:       types.Convex,
	FuncGeoMean:     types.Concave,
	FuncSqrt:        types.Concave,
	FuncAbs:         types.Convex,
	FuncMax:         types.Convex,
	FuncMin:         types.Concave,
	FuncMatMul:      types.Affine,
}

func (k FuncKind) String() string {
	if 0 <= k && int(k) < len(funcNames) {
		return funcNames[k]
	}
	return fmt.Sprintf("func(%d)", int(k))
}

// Func is a nonlinear operator applied to its arguments.
type Func struct {
	kind  FuncKind
	args  []Expr
	shape types.Shape
}

func (f *Func) exprNode() {}

func (f *Func) Kind() FuncKind     { return f.kind }
func (f *Func) Args() []Expr       { return slices.Clone(f.args) }
func (f *Func) Shape() types.Shape { return f.shape }

func (f *Func) Curvature() types.Curvature { return funcCurvatures[f.kind] }

func (f *Func) String() string {
	return f.kind.String() + "(" + joinExprs(f.args, ", ") + ")"
}

// Parametric reports whether every argument is a parameter, a constant or
// a parametric vector. Such a function is a number once values are bound.
func (f *Func) Parametric() bool {
	for _, a := range f.args {
		if !isParametric(a) {
			return false
		}
	}
	return true
}

// WithArgs returns a copy of f applied to args. args must keep the shapes
// of the original arguments.
func (f *Func) WithArgs(args []Expr) *Func {
	cp := *f
	cp.args = slices.Clone(args)
	return &cp
}

// scalarFunc applies kind to a scalar, or elementwise to a shaped argument.
func scalarFunc(kind FuncKind, x Expr) (Expr, error) {
	shape := x.Shape()
	if shape.IsScalar() {
		return &Func{kind: kind, args: []Expr{x}, shape: types.Scalar}, nil
	}
	elems, err := Elements(x)
	if err != nil {
		return nil, err
	}
	out := make([]Expr, len(elems))
	for i, el := range elems {
		out[i] = &Func{kind: kind, args: []Expr{el}, shape: types.Scalar}
	}
	v, err := NewVector(out...)
	if err != nil {
		return nil, err
	}
	v.transposed = shape.Rows == 1
	return v, nil
}

func Square(x Expr) (Expr, error) { return scalarFunc(FuncSquare, x) }
func InvPos(x Expr) (Expr, error) { return scalarFunc(FuncInvPos, x) }
func Sqrt(x Expr) (Expr, error)   { return scalarFunc(FuncSqrt, x) }
func Abs(x Expr) (Expr, error)    { return scalarFunc(FuncAbs, x) }

// QuadOverLin is sum(x_i^2) / y.
func QuadOverLin(x, y Expr) (Expr, error) {
	if !y.Shape().IsScalar() {
		return nil, fmt.Errorf("%w: quad_over_lin denominator %s has shape %s", ErrShape, y, y.Shape())
	}
	elems, err := Elements(x)
	if err != nil {
		return nil, err
	}
	return &Func{kind: FuncQuadOverLin, args: append(elems, y), shape: types.Scalar}, nil
}

// vectorLen is the length of a vector argument; matrices are rejected.
func vectorLen(name string, x Expr) (int, error) {
	s := x.Shape()
	if s.Rows > 1 && s.Cols > 1 {
		return 0, fmt.Errorf("%w: %s of matrix %s%s", ErrShape, name, x, s)
	}
	return max(s.Rows, s.Cols), nil
}

func reduce(kind FuncKind, x Expr) (Expr, error) {
	if _, err := vectorLen(kind.String(), x); err != nil {
		return nil, err
	}
	return &Func{kind: kind, args: []Expr{x}, shape: types.Scalar}, nil
}

func Norm2(x Expr) (Expr, error) { return reduce(FuncNorm2, x) }
func Max(x Expr) (Expr, error)   { return reduce(FuncMax, x) }
func Min(x Expr) (Expr, error)   { return reduce(FuncMin, x) }

// GeoMean is sqrt(x*y). It does not broadcast.
func GeoMean(x, y Expr) (Expr, error) {
	if !x.Shape().IsScalar() || !y.Shape().IsScalar() {
		return nil, fmt.Errorf("%w: geo_mean of %s%s and %s%s", ErrShape, x, x.Shape(), y, y.Shape())
	}
	return &Func{kind: FuncGeoMean, args: []Expr{x, y}, shape: types.Scalar}, nil
}

// MatMul is the matrix product a*b. A product with a scalar result is
// returned as its single element sum.
func MatMul(a, b Expr) (Expr, error) {
	sa, sb := a.Shape(), b.Shape()
	if sa.Cols != sb.Rows {
		return nil, fmt.Errorf("%w: matmul of %s%s and %s%s", ErrShape, a, sa, b, sb)
	}
	f := &Func{
		kind:  FuncMatMul,
		args:  []Expr{a, b},
		shape: types.Shape{Rows: sa.Rows, Cols: sb.Cols},
	}
	if f.shape.IsScalar() {
		return f.element(0, 0)
	}
	return f, nil
}

// At returns element (i, j) of a matrix product.
func (f *Func) At(i, j int) (Expr, error) {
	if f.shape.IsScalar() {
		return f, nil
	}
	if f.kind != FuncMatMul {
		return nil, fmt.Errorf("%w: cannot index %s", ErrUnsupported, f)
	}
	if !f.shape.Contains(i, j) {
		return nil, fmt.Errorf("%w: index %s out of range for %s", ErrShape, types.Index{Row: i, Col: j}, f)
	}
	return f.element(i, j)
}

func (f *Func) element(i, j int) (Expr, error) {
	a, b := f.args[0], f.args[1]
	inner := a.Shape().Cols
	terms := make([]Expr, 0, inner)
	for k := 0; k < inner; k++ {
		aik, err := At(a, i, k)
		if err != nil {
			return nil, err
		}
		bkj, err := At(b, k, j)
		if err != nil {
			return nil, err
		}
		p, err := smul(aik, bkj)
		if err != nil {
			return nil, err
		}
		terms = append(terms, p)
	}
	return Add(terms...)
}

// Expand returns every element of a matrix product.
func (f *Func) Expand() ([][]Expr, error) {
	if f.kind != FuncMatMul {
		return [][]Expr{{f}}, nil
	}
	out := make([][]Expr, f.shape.Rows)
	for i := range out {
		out[i] = make([]Expr, f.shape.Cols)
		for j := range out[i] {
			el, err := f.element(i, j)
			if err != nil {
				return nil, err
			}
			out[i][j] = el
		}
	}
	return out, nil
}

// Norm builds the p-norm of x for p in {1, 2, +Inf}.
func Norm(x Expr, p float64) (Expr, error) {
	switch {
	case p == 2:
		return Norm2(x)
	case p == 1:
		a, err := Abs(x)
		if err != nil {
			return nil, err
		}
		if x.Shape().IsScalar() {
			return a, nil
		}
		return SumElems(a)
	case math.IsInf(p, 1):
		a, err := Abs(x)
		if err != nil {
			return nil, err
		}
		return Max(a)
	}
	return nil, fmt.Errorf("%w: norm kind %s", ErrUnsupported, formatFloat(p))
}

// SumSquares is square(norm2(x)).
func SumSquares(x Expr) (Expr, error) {
	n, err := Norm2(x)
	if err != nil {
		return nil, err
	}
	return Square(n)
}

// SumElems adds up the elements of x.
func SumElems(x Expr) (Expr, error) {
	elems, err := Elements(x)
	if err != nil {
		return nil, err
	}
	return Add(elems...)
}
