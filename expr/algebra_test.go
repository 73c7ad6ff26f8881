package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thiremani/cvxsym/types"
)

type fixture struct {
	ctx    *Context
	v0, v1 *Symbol
	p0, p1 *Symbol
	x      *Symbol
	A      *Symbol
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := NewContext(nil)
	f := &fixture{ctx: ctx}
	var err error
	f.v0, err = ctx.Variable("v0")
	require.NoError(t, err)
	f.v1, err = ctx.Variable("v1")
	require.NoError(t, err)
	f.p0, err = ctx.Parameter("p0")
	require.NoError(t, err)
	f.p1, err = ctx.Parameter("p1")
	require.NoError(t, err)
	f.x, err = ctx.Variable("x", 3)
	require.NoError(t, err)
	f.A, err = ctx.Parameter("A", 2, 3)
	require.NoError(t, err)
	return f
}

// must unwraps a constructor result inside composite expressions.
func must(e Expr, err error) Expr {
	if err != nil {
		panic(err)
	}
	return e
}

func TestSum(t *testing.T) {
	f := newFixture(t)

	single := must(Add(f.v0))
	require.Same(t, f.v0, single)

	tests := []struct {
		name string
		got  func() (Expr, error)
		want string
	}{
		{"drop zero", func() (Expr, error) { return Add(f.v0, Const(0), f.v1) }, "(v0 + v1)"},
		{"single term sum", func() (Expr, error) { return Add(f.p0, Const(0)) }, "(p0)"},
		{"flatten", func() (Expr, error) {
			return Add(must(Add(f.v0, f.v1)), must(Add(f.p0, Const(0))))
		}, "(v0 + v1 + p0)"},
		{"sub", func() (Expr, error) { return Sub(f.v0, f.v1) }, "(v0 + (-1.0 * v1))"},
		{"empty", func() (Expr, error) { return SumOf() }, "0"},
	}
	for _, tt := range tests {
		e, err := tt.got()
		require.NoError(t, err, tt.name)
		if e.String() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, e.String(), tt.want)
		}
	}

	s, err := SumOf(f.v0)
	require.NoError(t, err)
	require.Equal(t, "(v0)", s.String())
	require.Equal(t, 1, s.Len())
}

func TestSumFlatteningIdempotent(t *testing.T) {
	f := newFixture(t)
	inner := must(Add(f.v0, must(Add(f.v1, f.p0))))
	outer := must(Add(inner, Const(0)))
	require.Equal(t, inner.String(), outer.String())

	for _, term := range outer.(*Sum).Terms() {
		if _, ok := term.(*Sum); ok {
			t.Fatalf("nested sum %s in %s", term, outer)
		}
		if IsZero(term) {
			t.Fatalf("zero constant in %s", outer)
		}
	}
}

func TestMul(t *testing.T) {
	f := newFixture(t)

	require.Same(t, f.v0, must(MulOf(Const(1), f.v0)))

	tests := []struct {
		name string
		a, b Expr
		want string
	}{
		{"fold", Const(2), Const(3), "6.0"},
		{"zero", Const(0), f.v0, "0.0"},
		{"const var", Const(2), f.v0, "(2.0 * v0)"},
		{"param var", f.p0, f.v0, "(p0 * v0)"},
		{"var param", f.v0, f.p0, "(p0 * v0)"},
		{"regroup", Const(2), must(MulOf(f.p0, f.v0)), "((2.0 * p0) * v0)"},
		{"param only", Const(-1), f.p0, "(-1.0 * p0)"},
		{"distribute", Const(3), must(Add(f.v0, Const(1))), "((3.0 * v0) + 3.0)"},
		{"double negation keeps unit", Const(-1), must(Neg(f.v0)), "(1.0 * v0)"},
		{"vector", Const(2), must(NewVector(f.v0, f.p0)), "<(2.0 * v0), (2.0 * p0)>"},
		{"function factor", Const(2), must(Square(f.v0)), "(2.0 * square(v0))"},
	}
	for _, tt := range tests {
		e, err := MulOf(tt.a, tt.b)
		require.NoError(t, err, tt.name)
		if e.String() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, e.String(), tt.want)
		}
	}

	if _, err := MulOf(f.v0, f.v1); !errors.Is(err, ErrAlgebra) {
		t.Fatalf("expected ErrAlgebra for var*var, got %v", err)
	}
	sq := must(Square(f.v1))
	if _, err := MulOf(f.v0, sq); !errors.Is(err, ErrAlgebra) {
		t.Fatalf("expected ErrAlgebra for var*function, got %v", err)
	}
}

func TestDiv(t *testing.T) {
	f := newFixture(t)
	e := must(Div(f.v0, Const(2)))
	require.Equal(t, "(inv_pos(2.0) * v0)", e.String())

	e = must(Div(Const(1), f.v0))
	require.Equal(t, "inv_pos(v0)", e.String())
	require.Equal(t, types.Convex, e.Curvature())
}

func TestCurvature(t *testing.T) {
	f := newFixture(t)
	sq := must(Square(f.v0))
	rt := must(Sqrt(f.v1))

	tests := []struct {
		name string
		e    Expr
		want types.Curvature
	}{
		{"symbol", f.v0, types.Affine},
		{"function", sq, types.Convex},
		{"positive scale", must(MulOf(Const(2), sq)), types.Convex},
		{"negative scale", must(MulOf(Const(-2), sq)), types.Concave},
		{"negated concave", must(Neg(rt)), types.Convex},
		{"parameter scale", must(MulOf(f.p0, sq)), types.Affine},
		{"convex plus affine", must(Add(sq, f.v1)), types.Convex},
		{"mixed", must(Add(sq, rt)), types.Unknown},
		{"geo mean", must(GeoMean(f.v0, f.v1)), types.Concave},
		{"mixed vector", must(NewVector(f.v0, sq)), types.Unknown},
		{"parameter product", must(MulOf(Const(-1), f.p0)), types.Affine},
	}
	for _, tt := range tests {
		if got := tt.e.Curvature(); got != tt.want {
			t.Errorf("%s: %s curvature = %s, want %s", tt.name, tt.e, got, tt.want)
		}
	}
}

func TestCoefficients(t *testing.T) {
	f := newFixture(t)
	s, err := SumOf(
		must(MulOf(Const(2), f.v0)),
		must(MulOf(f.p0, f.v0)),
		f.v1,
		Const(3),
		f.p1,
	)
	require.NoError(t, err)

	c0, err := s.CoefficientOf(f.v0)
	require.NoError(t, err)
	require.Equal(t, "(2.0 + p0)", c0.String())

	c1, err := s.CoefficientOf(f.v1)
	require.NoError(t, err)
	require.Equal(t, "1.0", c1.String())

	off, err := s.Offset()
	require.NoError(t, err)
	require.Equal(t, "(3.0 + p1)", off.String())

	require.Equal(t, []*Symbol{f.v0, f.v0, f.v1, nil, nil}, s.Vars())
	require.True(t, s.HasVar(f.v1))
	require.False(t, s.HasVar(f.p0))

	folded, err := SumOf(must(MulOf(Const(2), f.v0)), must(MulOf(Const(3), f.v0)))
	require.NoError(t, err)
	c, err := folded.CoefficientOf(f.v0)
	require.NoError(t, err)
	require.Equal(t, "5.0", c.String())
	off, err = folded.Offset()
	require.NoError(t, err)
	require.Equal(t, "0.0", off.String())

	absent, err := folded.CoefficientOf(f.v1)
	require.NoError(t, err)
	require.True(t, IsZero(absent))
}

func TestShapedAlgebra(t *testing.T) {
	f := newFixture(t)

	s := must(Add(f.x, Const(1)))
	require.Equal(t, types.Shape{Rows: 3, Cols: 1}, s.Shape())
	el := must(At(s, 1, 0))
	require.Equal(t, "(x[1][0] + 1.0)", el.String())

	y, err := f.ctx.Variable("y", 2)
	require.NoError(t, err)
	if _, err := Add(f.x, y); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}

	m := must(MulOf(Const(2), f.x))
	require.Equal(t, "(2.0 * x[2][0])", must(At(m, 2, 0)).String())

	// a unit coefficient is multiplied through when indexing
	unit := must(Neg(must(Neg(f.x))))
	require.Equal(t, "(1.0 * x)", unit.String())
	require.Equal(t, "x[0][0]", must(At(unit, 0, 0)).String())

	if _, err := At(f.x, 0, 1); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
}

func TestVector(t *testing.T) {
	f := newFixture(t)

	v, err := NewVector(f.v0, f.p0)
	require.NoError(t, err)
	require.Equal(t, "<v0, p0>", v.String())
	require.Equal(t, types.Shape{Rows: 2, Cols: 1}, v.Shape())
	require.Equal(t, types.Shape{Rows: 1, Cols: 2}, v.T().Shape())
	require.False(t, v.Parametric())

	el, err := v.T().At(0, 1)
	require.NoError(t, err)
	require.Same(t, f.p0, el)

	pv, err := NewVector(f.p0, Const(1))
	require.NoError(t, err)
	require.True(t, pv.Parametric())

	empty, err := NewVector()
	require.NoError(t, err)
	require.True(t, empty.Parametric())
	require.Equal(t, types.Affine, empty.Curvature())

	if _, err := NewVector(f.x); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape for shaped element, got %v", err)
	}
}

func TestMatMul(t *testing.T) {
	f := newFixture(t)

	ax := must(MulOf(f.A, f.x))
	require.Equal(t, types.Shape{Rows: 2, Cols: 1}, ax.Shape())
	require.Equal(t, "matmul(A, x)", ax.String())
	require.Equal(t, types.Affine, ax.Curvature())

	el := must(At(ax, 1, 0))
	require.Equal(t, "((A[1][0] * x[0][0]) + (A[1][1] * x[1][0]) + (A[1][2] * x[2][0]))", el.String())

	rows, err := ax.(*Func).Expand()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Len(t, rows[0], 1)
	require.Equal(t, el.String(), rows[1][0].String())

	row, err := f.A.Row(0)
	require.NoError(t, err)
	dot := must(MulOf(row.(*Vector).T(), f.x))
	require.Equal(t, "((A[0][0] * x[0][0]) + (A[0][1] * x[1][0]) + (A[0][2] * x[2][0]))", dot.String())

	if _, err := MulOf(f.x, f.A); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
}
