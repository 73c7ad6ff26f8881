package compiler

import (
	"math"

	"github.com/thiremani/cvxsym/ast"
	"github.com/thiremani/cvxsym/expr"
)

type builtin struct {
	minArgs, maxArgs int
	build            func(c *Compiler, call *ast.CallExpression, args []expr.Expr) (expr.Expr, error)
}

func unary(f func(expr.Expr) (expr.Expr, error)) builtin {
	return builtin{1, 1, func(_ *Compiler, _ *ast.CallExpression, args []expr.Expr) (expr.Expr, error) {
		return f(args[0])
	}}
}

func binary(f func(a, b expr.Expr) (expr.Expr, error)) builtin {
	return builtin{2, 2, func(_ *Compiler, _ *ast.CallExpression, args []expr.Expr) (expr.Expr, error) {
		return f(args[0], args[1])
	}}
}

// variadic applies a reduction to one vector argument, or to the list of
// its scalar arguments.
func variadic(f func(expr.Expr) (expr.Expr, error)) builtin {
	return builtin{1, -1, func(_ *Compiler, _ *ast.CallExpression, args []expr.Expr) (expr.Expr, error) {
		if len(args) == 1 {
			return f(args[0])
		}
		v, err := expr.NewVector(args...)
		if err != nil {
			return nil, err
		}
		return f(v)
	}}
}

func pnorm(p float64) builtin {
	return unary(func(x expr.Expr) (expr.Expr, error) { return expr.Norm(x, p) })
}

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"square":        unary(expr.Square),
		"sqrt":          unary(expr.Sqrt),
		"abs":           unary(expr.Abs),
		"inv_pos":       unary(expr.InvPos),
		"norm":          {1, 2, buildNorm},
		"norm1":         pnorm(1),
		"norm2":         pnorm(2),
		"norm_inf":      pnorm(math.Inf(1)),
		"max":           variadic(expr.Max),
		"min":           variadic(expr.Min),
		"sum":           unary(expr.SumElems),
		"sum_squares":   unary(expr.SumSquares),
		"geo_mean":      binary(expr.GeoMean),
		"quad_over_lin": binary(expr.QuadOverLin),
		"matmul":        binary(expr.MatMul),
	}
}

// buildNorm handles norm(x) and norm(x, p) with p one of 1, 2 or inf.
func buildNorm(c *Compiler, call *ast.CallExpression, args []expr.Expr) (expr.Expr, error) {
	if len(args) == 1 {
		return expr.Norm2(args[0])
	}
	p, ok := args[1].(*expr.Constant)
	if !ok {
		c.errorf(call.Arguments[1].Tok(), "norm kind %s must be 1, 2 or inf", call.Arguments[1])
		return nil, nil
	}
	return expr.Norm(args[0], p.Value)
}

func (c *Compiler) compileCall(e *ast.CallExpression) (expr.Expr, bool) {
	name := e.Function.Value
	b, ok := builtins[name]
	if !ok {
		if _, declared := Get(c.Scopes, name); declared {
			c.errorf(e.Function.Token, "%s is not a function", name)
		} else {
			c.errorf(e.Function.Token, "undefined function: %s", name)
		}
		return nil, false
	}

	n := len(e.Arguments)
	if n < b.minArgs || (b.maxArgs >= 0 && n > b.maxArgs) {
		switch {
		case b.minArgs == b.maxArgs:
			c.errorf(e.Token, "%s expects %d arguments, got %d", name, b.minArgs, n)
		case b.maxArgs < 0:
			c.errorf(e.Token, "%s expects at least %d arguments, got %d", name, b.minArgs, n)
		default:
			c.errorf(e.Token, "%s expects %d to %d arguments, got %d", name, b.minArgs, b.maxArgs, n)
		}
		return nil, false
	}

	args := make([]expr.Expr, 0, n)
	for _, a := range e.Arguments {
		v, ok := c.compileExpression(a)
		if !ok {
			return nil, false
		}
		args = append(args, v)
	}

	prevLen := len(c.Errors)
	v, err := b.build(c, e, args)
	if len(c.Errors) > prevLen {
		return nil, false
	}
	return c.check(e.Token, v, err)
}
