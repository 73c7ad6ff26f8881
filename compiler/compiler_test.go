package compiler

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thiremani/cvxsym/canon"
	"github.com/thiremani/cvxsym/expr"
	"github.com/thiremani/cvxsym/lexer"
	"github.com/thiremani/cvxsym/parser"
)

func compileSource(t *testing.T, src string) (*canon.Problem, *Compiler, *expr.Context) {
	t.Helper()
	p := parser.New(lexer.New("test.cvx", src))
	program := p.ParseProgram()
	for _, e := range p.Errors() {
		t.Fatalf("parser error: %s", e)
	}
	ctx := expr.NewContext(nil)
	c := NewCompiler(ctx)
	return c.Compile(program), c, ctx
}

func mustCompile(t *testing.T, src string) (*canon.Problem, *expr.Context) {
	t.Helper()
	prob, c, ctx := compileSource(t, src)
	for _, e := range c.Errors {
		t.Errorf("compile error: %s", e)
	}
	if prob == nil {
		t.FailNow()
	}
	return prob, ctx
}

const chebyshev = `# Chebyshev center of a triangle
variable r, x(2)
parameter A(3, 2), B(3)
maximize r
A[0, :].T * x + r * norm(A[0, :]) <= B[0]
A[1, :].T * x + r * norm(A[1, :]) <= B[1]
A[2, :].T * x + r * norm(A[2, :]) <= B[2]
r >= 0
`

func TestChebyshev(t *testing.T) {
	prob, ctx := mustCompile(t, chebyshev)
	require.True(t, prob.Maximized)
	require.Len(t, prob.Constraints, 4)

	sym, err := canon.Canonicalize(ctx, prob)
	require.NoError(t, err)
	require.Equal(t, []string{"r", "x[0][0]", "x[1][0]"}, sym.Vars)
	require.Equal(t, []string{"A", "B"}, sym.Params)

	values, err := canon.ExpandParams(map[string]any{
		"A": []any{[]any{-1, 1}, []any{1, 1}, []any{0, -1}},
		"B": []any{3, 3, 0},
	})
	require.NoError(t, err)
	m, err := canon.Assign(sym, values)
	require.NoError(t, err)

	require.Equal(t, []float64{-1, 0, 0}, m.C)
	require.Nil(t, m.A)
	require.Equal(t, 4, m.Dims.L)

	rs := 3 / (1 + math.Sqrt2)
	point := []float64{rs, 0, rs}
	for i, row := range m.G.Dense() {
		slack := m.H[i]
		for j, g := range row {
			slack -= g * point[j]
		}
		if slack < -1e-9 {
			t.Errorf("row %d violated at optimum: slack %g", i, slack)
		}
	}
}

func TestLowering(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"variable x\nparameter p\nminimize x\nx >= p", []string{"((-1.0 * x) + p) <= 0"}},
		{"variable x\nparameter p\nminimize x\nx == p", []string{"(x + (-1.0 * p)) == 0"}},
		{"variable x\nminimize x\n1 <= 2\nx <= 2", []string{"(x + -2.0) <= 0"}},
		{"variable x(2)\nminimize sum(x)\nx[1] <= 2", []string{"(x[1][0] + -2.0) <= 0"}},
	}
	for _, tt := range tests {
		prob, _ := mustCompile(t, tt.src)
		got := make([]string, len(prob.Constraints))
		for i, c := range prob.Constraints {
			got[i] = c.String()
		}
		require.Equal(t, tt.want, got, tt.src)
	}
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		call string
		want string
	}{
		{"square(y)", "square(y)"},
		{"norm(x)", "norm2(x)"},
		{"norm2(x)", "norm2(x)"},
		{"max(y, z)", "max(<y, z>)"},
		{"quad_over_lin(y, z)", "quad_over_lin(y, z)"},
		{"geo_mean(y, z)", "geo_mean(y, z)"},
	}
	for _, tt := range tests {
		prob, _ := mustCompile(t, "variable x(2), y, z\nminimize "+tt.call)
		require.Equal(t, tt.want, prob.Objective.String(), tt.call)
	}
}

func TestMatrixNameRenamed(t *testing.T) {
	prob, ctx := mustCompile(t, "variable x\nparameter b\nminimize x\nx >= b")
	require.Len(t, prob.Constraints, 1)
	require.Equal(t, "((-1.0 * x) + b_) <= 0", prob.Constraints[0].String())
	_, ok := ctx.Lookup("b_")
	require.True(t, ok)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"variable x\nminimize y", "undefined: y"},
		{"variable norm\nminimize 0", "cannot declare norm: reserved name"},
		{"variable x, x\nminimize x", "redeclaration of x"},
		{"variable x\nminimize x\n1 >= 2", "constraint 1 >= 2 is never satisfied"},
		{"variable x\nminimize x\nminimize x", "second objective; the first is at line 2"},
		{"variable x", "problem has no objective; add a minimize or maximize statement"},
		{"variable x\nminimize square(x, x)", "square expects 1 arguments, got 2"},
		{"variable x(2)\nminimize norm(x, 3)", "expr: unsupported operation: norm kind 3.0"},
		{"variable x(2)\nminimize x", "objective x must be scalar, has shape (2, 1)"},
		{"variable x(2)\nminimize x[2]", "index [2][0] out of range for x of shape (2, 1)"},
		{"variable x\nminimize foo(x)", "undefined function: foo"},
		{"variable x\nminimize x(1)", "x is not a function"},
		{"variable x\nminimize x / 0", "division by zero"},
		{"variable x\nminimize x[0.5]", "index 0.5 is not a non-negative integer constant"},
		{"variable x\nminimize max", "max is a function; call it as max(...)"},
	}
	for _, tt := range tests {
		prob, c, _ := compileSource(t, tt.src)
		if prob != nil {
			t.Errorf("%q: expected no problem", tt.src)
		}
		if len(c.Errors) != 1 {
			t.Errorf("%q: expected 1 error, got %v", tt.src, c.Errors)
			continue
		}
		if c.Errors[0].Msg != tt.msg {
			t.Errorf("%q: expected %q, got %q", tt.src, tt.msg, c.Errors[0].Msg)
		}
	}
}

func TestAlgebraErrorPosition(t *testing.T) {
	_, c, _ := compileSource(t, "variable x, y\nminimize x * y")
	require.Len(t, c.Errors, 1)
	require.True(t, strings.HasPrefix(c.Errors[0].Msg, "expr: invalid algebra"), c.Errors[0].Msg)
	require.Equal(t, 2, c.Errors[0].Token.Line)
	require.Equal(t, 12, c.Errors[0].Token.Column)
}

func TestScopes(t *testing.T) {
	scopes := []Scope[int]{NewScope[int](BuiltinScope)}
	Put(scopes, "a", 1)
	PushScope(&scopes, ProblemScope)
	PutBulk(scopes, map[string]int{"a": 2, "b": 3})

	v, ok := Get(scopes, "a")
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.True(t, Declared(scopes, "b"))

	PopScope(&scopes)
	v, _ = Get(scopes, "a")
	require.Equal(t, 1, v)
	_, ok = Get(scopes, "b")
	require.False(t, ok)
	require.Panics(t, func() { PopScope(&scopes) })
}
