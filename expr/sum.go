package expr

import (
	"fmt"
	"slices"

	"github.com/thiremani/cvxsym/types"
)

// Sum is a flat list of terms. It never contains a nested Sum or a zero
// constant.
type Sum struct {
	terms []Expr
	shape types.Shape
}

// Add sums args. A single argument is returned unchanged.
func Add(args ...Expr) (Expr, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return SumOf(args...)
}

// SumOf is Add but always builds a *Sum, even of one or zero terms.
func SumOf(args ...Expr) (*Sum, error) {
	terms := make([]Expr, 0, len(args))
	for _, a := range args {
		if s, ok := a.(*Sum); ok {
			terms = append(terms, s.terms...)
			continue
		}
		if IsZero(a) {
			continue
		}
		terms = append(terms, a)
	}
	shape, err := broadcastShape(terms...)
	if err != nil {
		return nil, fmt.Errorf("sum %s: %w", joinExprs(terms, " + "), err)
	}
	return &Sum{terms: terms, shape: shape}, nil
}

func Sub(a, b Expr) (Expr, error) {
	nb, err := Neg(b)
	if err != nil {
		return nil, err
	}
	return Add(a, nb)
}

func (s *Sum) exprNode() {}

func (s *Sum) Terms() []Expr { return slices.Clone(s.terms) }

func (s *Sum) Len() int { return len(s.terms) }

func (s *Sum) Shape() types.Shape { return s.shape }

func (s *Sum) Curvature() types.Curvature {
	c := types.Affine
	for _, t := range s.terms {
		c = types.Combine(c, t.Curvature())
	}
	return c
}

func (s *Sum) String() string {
	if len(s.terms) == 0 {
		return "0"
	}
	return "(" + joinExprs(s.terms, " + ") + ")"
}

// Vars returns, for each term, the variable it carries or nil.
func (s *Sum) Vars() []*Symbol {
	vars := make([]*Symbol, len(s.terms))
	for i, t := range s.terms {
		vars[i] = termVar(t)
	}
	return vars
}

func (s *Sum) HasVar(v *Symbol) bool { return HasVar(s, v) }

// CoefficientOf returns the total coefficient of v across the terms.
func (s *Sum) CoefficientOf(v *Symbol) (Expr, error) {
	var coeffs []Expr
	for _, t := range s.terms {
		var c Expr
		switch t := t.(type) {
		case *Symbol:
			if t == v {
				c = Const(1)
			}
		case *Mul:
			c = t.CoefficientOf(v)
		}
		if c == nil || IsZero(c) {
			continue
		}
		coeffs = append(coeffs, c)
	}
	return collect(coeffs)
}

// Offset returns the sum of the variable-free terms.
func (s *Sum) Offset() (Expr, error) {
	var rest []Expr
	for _, t := range s.terms {
		if termVar(t) == nil {
			rest = append(rest, t)
		}
	}
	return collect(rest)
}

// collect sums es, folding them when they are all constants.
func collect(es []Expr) (Expr, error) {
	switch len(es) {
	case 0:
		return Const(0), nil
	case 1:
		return es[0], nil
	}
	total := 0.0
	for _, e := range es {
		c, ok := e.(*Constant)
		if !ok {
			return Add(es...)
		}
		total += c.Value
	}
	return Const(total), nil
}

func (s *Sum) At(i, j int) (Expr, error) {
	if s.shape.IsScalar() {
		return s, nil
	}
	terms := make([]Expr, 0, len(s.terms))
	for _, t := range s.terms {
		el, err := At(t, i, j)
		if err != nil {
			return nil, err
		}
		terms = append(terms, el)
	}
	return Add(terms...)
}

// ElementSum is At but always returns a *Sum.
func (s *Sum) ElementSum(i, j int) (*Sum, error) {
	terms := make([]Expr, 0, len(s.terms))
	for _, t := range s.terms {
		el, err := At(t, i, j)
		if err != nil {
			return nil, err
		}
		terms = append(terms, el)
	}
	return SumOf(terms...)
}
