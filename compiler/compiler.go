// Package compiler lowers a parsed problem into the expression algebra.
package compiler

import (
	"fmt"
	"math"

	"github.com/thiremani/cvxsym/ast"
	"github.com/thiremani/cvxsym/canon"
	"github.com/thiremani/cvxsym/constraint"
	"github.com/thiremani/cvxsym/expr"
	"github.com/thiremani/cvxsym/token"
	"github.com/thiremani/cvxsym/types"
)

type Compiler struct {
	ctx    *expr.Context
	Scopes []Scope[expr.Expr]
	Errors []*token.CompileError

	objective   *ast.ObjectiveStatement
	value       expr.Expr
	constraints []*constraint.Constraint
}

func NewCompiler(ctx *expr.Context) *Compiler {
	c := &Compiler{
		ctx:    ctx,
		Scopes: []Scope[expr.Expr]{NewScope[expr.Expr](BuiltinScope)},
		Errors: []*token.CompileError{},
	}
	Put(c.Scopes, "inf", expr.Expr(expr.Const(math.Inf(1))))
	PushScope(&c.Scopes, ProblemScope)
	return c
}

func (c *Compiler) errorf(tok token.Token, format string, args ...any) {
	c.Errors = append(c.Errors, &token.CompileError{
		Token: tok,
		Msg:   fmt.Sprintf(format, args...),
	})
}

// algebraError reports an error from the expression algebra at tok.
func (c *Compiler) algebraError(tok token.Token, err error) {
	c.errorf(tok, "%s", err)
}

// Compile lowers program into a problem. It returns nil when any statement
// failed; the diagnostics are in Errors.
func (c *Compiler) Compile(program *ast.Program) *canon.Problem {
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.DeclStatement:
			c.compileDecl(s)
		case *ast.ObjectiveStatement:
			c.compileObjective(s)
		case *ast.ConstraintStatement:
			c.compileConstraint(s)
		default:
			panic(fmt.Sprintf("unsupported statement type: %T", s))
		}
	}

	if c.objective == nil && len(c.Errors) == 0 {
		c.errorf(program.Tok(), "problem has no objective; add a minimize or maximize statement")
	}
	if len(c.Errors) > 0 {
		return nil
	}

	build := canon.Minimize
	if c.objective.Maximize() {
		build = canon.Maximize
	}
	p, err := build(c.value, c.constraints...)
	if err != nil {
		c.algebraError(c.objective.Token, err)
		return nil
	}
	return p
}

func (c *Compiler) compileDecl(s *ast.DeclStatement) {
	declare := c.ctx.Variable
	if s.Token.Type == token.PARAMETER {
		declare = c.ctx.Parameter
	}

	for _, d := range s.Decls {
		name := d.Name.Value
		if types.IsReservedFuncName(name) || name == "inf" {
			c.errorf(d.Name.Token, "cannot declare %s: reserved name", name)
			continue
		}
		if Declared(c.Scopes, name) {
			c.errorf(d.Name.Token, "redeclaration of %s", name)
			continue
		}
		sym, err := declare(name, d.Dims...)
		if err != nil {
			c.algebraError(d.Name.Token, err)
			continue
		}
		Put(c.Scopes, name, expr.Expr(sym))
	}
}

func (c *Compiler) compileObjective(s *ast.ObjectiveStatement) {
	if c.objective != nil {
		c.errorf(s.Token, "second objective; the first is at line %d", c.objective.Token.Line)
		return
	}
	v, ok := c.compileExpression(s.Value)
	if !ok {
		return
	}
	if !v.Shape().IsScalar() {
		c.errorf(s.Token, "objective %s must be scalar, has shape %s", s.Value, v.Shape())
		return
	}
	c.objective = s
	c.value = v
}

func (c *Compiler) compileConstraint(s *ast.ConstraintStatement) {
	lhs, ok := c.compileExpression(s.Left)
	if !ok {
		return
	}
	rhs, ok := c.compileExpression(s.Right)
	if !ok {
		return
	}

	// a comparison of constants is checked now and contributes no row
	lc, lok := lhs.(*expr.Constant)
	rc, rok := rhs.(*expr.Constant)
	if lok && rok {
		holds, err := expr.CompareConstants(s.Token.Literal, lc, rc)
		if err != nil {
			c.algebraError(s.Token, err)
			return
		}
		if !holds {
			c.errorf(s.Token, "constraint %s is never satisfied", s)
		}
		return
	}

	var con *constraint.Constraint
	var err error
	switch s.Token.Type {
	case token.EQL:
		con, err = constraint.Eq(lhs, rhs)
	case token.LEQ:
		con, err = constraint.Le(lhs, rhs)
	case token.GEQ:
		con, err = constraint.Ge(lhs, rhs)
	}
	if err != nil {
		c.algebraError(s.Token, err)
		return
	}
	c.constraints = append(c.constraints, con)
}

func (c *Compiler) compileExpression(e ast.Expression) (expr.Expr, bool) {
	switch e := e.(type) {
	case *ast.NumberLiteral:
		return expr.Const(e.Value), true
	case *ast.Identifier:
		v, ok := Get(c.Scopes, e.Value)
		if !ok {
			if types.IsReservedFuncName(e.Value) {
				c.errorf(e.Token, "%s is a function; call it as %s(...)", e.Value, e.Value)
			} else {
				c.errorf(e.Token, "undefined: %s", e.Value)
			}
			return nil, false
		}
		return v, true
	case *ast.PrefixExpression:
		return c.compilePrefix(e)
	case *ast.InfixExpression:
		return c.compileInfix(e)
	case *ast.CallExpression:
		return c.compileCall(e)
	case *ast.IndexExpression:
		return c.compileIndex(e)
	case *ast.TransposeExpression:
		return c.compileTranspose(e)
	case *ast.ListLiteral:
		return c.compileList(e)
	case *ast.Slice:
		c.errorf(e.Token, "':' is only valid as an index")
		return nil, false
	}
	panic(fmt.Sprintf("unsupported expression type: %T", e))
}

func (c *Compiler) check(tok token.Token, v expr.Expr, err error) (expr.Expr, bool) {
	if err != nil {
		c.algebraError(tok, err)
		return nil, false
	}
	return v, true
}

func (c *Compiler) compilePrefix(e *ast.PrefixExpression) (expr.Expr, bool) {
	right, ok := c.compileExpression(e.Right)
	if !ok {
		return nil, false
	}
	v, err := expr.Neg(right)
	return c.check(e.Token, v, err)
}

func (c *Compiler) compileInfix(e *ast.InfixExpression) (expr.Expr, bool) {
	left, lok := c.compileExpression(e.Left)
	right, rok := c.compileExpression(e.Right)
	if !lok || !rok {
		return nil, false
	}

	var v expr.Expr
	var err error
	switch e.Operator {
	case "+":
		v, err = expr.Add(left, right)
	case "-":
		v, err = expr.Sub(left, right)
	case "*":
		v, err = expr.MulOf(left, right)
	case "/":
		if rc, ok := right.(*expr.Constant); ok && rc.Value == 0 {
			c.errorf(e.Token, "division by zero")
			return nil, false
		}
		v, err = expr.Div(left, right)
	default:
		panic("unsupported infix operator: " + e.Operator)
	}
	return c.check(e.Token, v, err)
}

func (c *Compiler) compileList(e *ast.ListLiteral) (expr.Expr, bool) {
	elems := make([]expr.Expr, 0, len(e.Elements))
	for _, el := range e.Elements {
		v, ok := c.compileExpression(el)
		if !ok {
			return nil, false
		}
		elems = append(elems, v)
	}
	v, err := expr.NewVector(elems...)
	if err != nil {
		return c.check(e.Token, nil, err)
	}
	return v, true
}

func (c *Compiler) compileTranspose(e *ast.TransposeExpression) (expr.Expr, bool) {
	left, ok := c.compileExpression(e.Left)
	if !ok {
		return nil, false
	}
	switch v := left.(type) {
	case *expr.Symbol:
		return v.T(), true
	case *expr.Vector:
		return v.T(), true
	}
	if left.Shape().IsScalar() {
		return left, true
	}
	c.errorf(e.Token, "cannot transpose %s", e.Left)
	return nil, false
}

// index reads a constant non-negative integer subscript.
func (c *Compiler) index(e ast.Expression) (int, bool) {
	v, ok := c.compileExpression(e)
	if !ok {
		return 0, false
	}
	k, isConst := v.(*expr.Constant)
	if !isConst || k.Value != math.Trunc(k.Value) || k.Value < 0 {
		c.errorf(e.Tok(), "index %s is not a non-negative integer constant", e)
		return 0, false
	}
	return int(k.Value), true
}

func (c *Compiler) compileIndex(e *ast.IndexExpression) (expr.Expr, bool) {
	left, ok := c.compileExpression(e.Left)
	if !ok {
		return nil, false
	}

	if len(e.Indices) == 1 {
		i, ok := c.index(e.Indices[0])
		if !ok {
			return nil, false
		}
		shape := left.Shape()
		switch {
		case shape.Rows == 1 && shape.Cols > 1:
			return c.element(e, left, 0, i)
		case shape.Cols == 1:
			return c.element(e, left, i, 0)
		}
		sym, isSym := left.(*expr.Symbol)
		if !isSym {
			c.errorf(e.Token, "%s has shape %s and needs two indices", e.Left, shape)
			return nil, false
		}
		v, err := sym.Row(i)
		return c.check(e.Token, v, err)
	}

	_, rowSlice := e.Indices[0].(*ast.Slice)
	_, colSlice := e.Indices[1].(*ast.Slice)
	if rowSlice && colSlice {
		return left, true
	}
	if rowSlice || colSlice {
		sym, isSym := left.(*expr.Symbol)
		if !isSym {
			c.errorf(e.Token, "only declared symbols can be sliced, not %s", e.Left)
			return nil, false
		}
		if rowSlice {
			j, ok := c.index(e.Indices[1])
			if !ok {
				return nil, false
			}
			v, err := sym.Col(j)
			return c.check(e.Token, v, err)
		}
		i, ok := c.index(e.Indices[0])
		if !ok {
			return nil, false
		}
		v, err := sym.Row(i)
		return c.check(e.Token, v, err)
	}

	i, iok := c.index(e.Indices[0])
	j, jok := c.index(e.Indices[1])
	if !iok || !jok {
		return nil, false
	}
	return c.element(e, left, i, j)
}

func (c *Compiler) element(e *ast.IndexExpression, left expr.Expr, i, j int) (expr.Expr, bool) {
	if !left.Shape().Contains(i, j) {
		c.errorf(e.Token, "index %s out of range for %s of shape %s",
			types.Index{Row: i, Col: j}, e.Left, left.Shape())
		return nil, false
	}
	v, err := expr.At(left, i, j)
	return c.check(e.Token, v, err)
}
