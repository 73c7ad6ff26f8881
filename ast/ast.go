package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/thiremani/cvxsym/token"
)

// The base Node interface
type Node interface {
	Tok() token.Token
	String() string
}

// All statement nodes implement this
type Statement interface {
	Node
	statementNode()
}

// All expression nodes implement this
type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) Tok() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Tok()
	}
	return token.Token{Type: token.EOF}
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}

	return out.String()
}

func printVec(a []Expression) string {
	parts := make([]string, len(a))
	for i, e := range a {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// Statements

// Decl is one declared name with its optional dimensions, e.g. A(3, 2).
type Decl struct {
	Name *Identifier
	Dims []int
}

func (d *Decl) String() string {
	if len(d.Dims) == 0 {
		return d.Name.String()
	}
	dims := make([]string, len(d.Dims))
	for i, n := range d.Dims {
		dims[i] = strconv.Itoa(n)
	}
	return d.Name.String() + "(" + strings.Join(dims, ", ") + ")"
}

type DeclStatement struct {
	Token token.Token // token.VARIABLE or token.PARAMETER
	Decls []*Decl
}

func (ds *DeclStatement) statementNode()   {}
func (ds *DeclStatement) Tok() token.Token { return ds.Token }
func (ds *DeclStatement) String() string {
	decls := make([]string, len(ds.Decls))
	for i, d := range ds.Decls {
		decls[i] = d.String()
	}
	return ds.Token.Literal + " " + strings.Join(decls, ", ")
}

type ObjectiveStatement struct {
	Token token.Token // token.MINIMIZE or token.MAXIMIZE
	Value Expression
}

func (os *ObjectiveStatement) statementNode()   {}
func (os *ObjectiveStatement) Tok() token.Token { return os.Token }
func (os *ObjectiveStatement) String() string {
	return os.Token.Literal + " " + os.Value.String()
}

func (os *ObjectiveStatement) Maximize() bool { return os.Token.Type == token.MAXIMIZE }

type ConstraintStatement struct {
	Token token.Token // the comparison token
	Left  Expression
	Right Expression
}

func (cs *ConstraintStatement) statementNode()   {}
func (cs *ConstraintStatement) Tok() token.Token { return cs.Token }
func (cs *ConstraintStatement) String() string {
	return cs.Left.String() + " " + cs.Token.Literal + " " + cs.Right.String()
}

// Expressions
type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()  {}
func (i *Identifier) Tok() token.Token { return i.Token }
func (i *Identifier) String() string   { return i.Value }

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()  {}
func (nl *NumberLiteral) Tok() token.Token { return nl.Token }
func (nl *NumberLiteral) String() string   { return nl.Token.Literal }

type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. -
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()  {}
func (pe *PrefixExpression) Tok() token.Token { return pe.Token }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()  {}
func (ie *InfixExpression) Tok() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

type CallExpression struct {
	Token     token.Token // The '(' token
	Function  *Identifier
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()  {}
func (ce *CallExpression) Tok() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + printVec(ce.Arguments) + ")"
}

// Slice is a bare ':' index selecting a whole row or column.
type Slice struct {
	Token token.Token
}

func (s *Slice) expressionNode()  {}
func (s *Slice) Tok() token.Token { return s.Token }
func (s *Slice) String() string   { return ":" }

// IndexExpression is x[i] or A[i, j]; either index may be a *Slice.
type IndexExpression struct {
	Token   token.Token // The '[' token
	Left    Expression
	Indices []Expression
}

func (ie *IndexExpression) expressionNode()  {}
func (ie *IndexExpression) Tok() token.Token { return ie.Token }
func (ie *IndexExpression) String() string {
	return ie.Left.String() + "[" + printVec(ie.Indices) + "]"
}

type TransposeExpression struct {
	Token token.Token // The '.' token
	Left  Expression
}

func (te *TransposeExpression) expressionNode()  {}
func (te *TransposeExpression) Tok() token.Token { return te.Token }
func (te *TransposeExpression) String() string   { return te.Left.String() + ".T" }

// ListLiteral is [a, b, c], a column of scalars.
type ListLiteral struct {
	Token    token.Token // The '[' token
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()  {}
func (ll *ListLiteral) Tok() token.Token { return ll.Token }
func (ll *ListLiteral) String() string   { return "[" + printVec(ll.Elements) + "]" }
