package expr

import (
	"fmt"

	"github.com/thiremani/cvxsym/types"
)

// Mul is a product in standard form (const * params) * var. Coeff holds
// the constant and parameter factors; Term holds the single variable or
// non-parametric function. A product with no variable factor is built as
// Mul{coeff, param} and carries no variable.
type Mul struct {
	coeff Expr
	term  Expr
	shape types.Shape
}

// MulOf multiplies a and b: a scalar multiply when either is scalar,
// a matrix product otherwise.
func MulOf(a, b Expr) (Expr, error) {
	if a.Shape().IsScalar() || b.Shape().IsScalar() {
		return smul(a, b)
	}
	return MatMul(a, b)
}

// Neg is -1 * a.
func Neg(a Expr) (Expr, error) { return smul(Const(-1), a) }

// Div is a * inv_pos(b). There is no other division.
func Div(a, b Expr) (Expr, error) {
	inv, err := InvPos(b)
	if err != nil {
		return nil, err
	}
	return MulOf(a, inv)
}

// baseMul applies the rewrites shared by every product: multiplication by
// 0 and 1, and constant folding.
func baseMul(a, b Expr) (Expr, bool) {
	switch {
	case IsZero(a) || IsZero(b):
		return Const(0), true
	case isConst(a, 1):
		return b, true
	case isConst(b, 1):
		return a, true
	}
	ca, aok := a.(*Constant)
	cb, bok := b.(*Constant)
	if aok && bok {
		return Const(ca.Value * cb.Value), true
	}
	return nil, false
}

func smul(a, b Expr) (Expr, error) {
	if e, ok := baseMul(a, b); ok {
		return e, nil
	}

	if s, ok := a.(*Sum); ok {
		return distribute(s.terms, func(t Expr) (Expr, error) { return smul(b, t) })
	}
	if s, ok := b.(*Sum); ok {
		return distribute(s.terms, func(t Expr) (Expr, error) { return smul(a, t) })
	}
	if v, ok := a.(*Vector); ok {
		return distributeVector(v, func(el Expr) (Expr, error) { return smul(b, el) })
	}
	if v, ok := b.(*Vector); ok {
		return distributeVector(v, func(el Expr) (Expr, error) { return smul(a, el) })
	}

	return group(a, b)
}

func distribute(terms []Expr, mul func(Expr) (Expr, error)) (Expr, error) {
	products := make([]Expr, 0, len(terms))
	for _, t := range terms {
		p, err := mul(t)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return Add(products...)
}

func distributeVector(v *Vector, mul func(Expr) (Expr, error)) (Expr, error) {
	elems := make([]Expr, 0, len(v.elems))
	for _, el := range v.elems {
		p, err := mul(el)
		if err != nil {
			return nil, err
		}
		elems = append(elems, p)
	}
	out, err := NewVector(elems...)
	if err != nil {
		return nil, err
	}
	out.transposed = v.transposed
	return out, nil
}

// group sorts the factors of a*b into constants, parameters and at most one
// variable-bearing factor, flattening nested products.
func group(a, b Expr) (Expr, error) {
	var (
		consts []*Constant
		params []Expr
		vars   []Expr
	)
	var visit func(e Expr) error
	visit = func(e Expr) error {
		switch e := e.(type) {
		case *Constant:
			consts = append(consts, e)
		case *Symbol:
			if e.IsParameter() {
				params = append(params, e)
			} else {
				vars = append(vars, e)
			}
		case *Func:
			if e.Parametric() {
				params = append(params, e)
			} else {
				vars = append(vars, e)
			}
		case *Mul:
			if err := visit(e.coeff); err != nil {
				return err
			}
			return visit(e.term)
		case *Sum:
			return fmt.Errorf("%w: product with undistributed sum %s", ErrAlgebra, e)
		case *Vector:
			return fmt.Errorf("%w: product with undistributed vector %s", ErrAlgebra, e)
		}
		return nil
	}
	if err := visit(a); err != nil {
		return nil, err
	}
	if err := visit(b); err != nil {
		return nil, err
	}
	if len(vars) > 1 {
		return nil, fmt.Errorf("%w: %s * %s multiplies two variable factors", ErrAlgebra, a, b)
	}

	k := 1.0
	for _, c := range consts {
		k *= c.Value
	}
	coeff := Expr(Const(k))
	for _, p := range params {
		var err error
		if coeff, err = rawMul(coeff, p); err != nil {
			return nil, err
		}
	}
	if len(vars) == 0 {
		return coeff, nil
	}
	return newMul(coeff, vars[0])
}

// rawMul builds a*b without regrouping.
func rawMul(a, b Expr) (Expr, error) {
	if e, ok := baseMul(a, b); ok {
		return e, nil
	}
	return newMul(a, b)
}

func newMul(coeff, term Expr) (*Mul, error) {
	shape, err := mulShape(coeff, term)
	if err != nil {
		return nil, err
	}
	return &Mul{coeff: coeff, term: term, shape: shape}, nil
}

func mulShape(a, b Expr) (types.Shape, error) {
	sa, sb := a.Shape(), b.Shape()
	switch {
	case sa.IsScalar():
		return sb, nil
	case sb.IsScalar():
		return sa, nil
	}
	return types.Shape{}, fmt.Errorf("%w: scalar product of %s%s and %s%s", ErrShape, a, sa, b, sb)
}

func (m *Mul) exprNode() {}

func (m *Mul) Coeff() Expr        { return m.coeff }
func (m *Mul) Term() Expr         { return m.term }
func (m *Mul) Shape() types.Shape { return m.shape }

func (m *Mul) String() string {
	return "(" + m.coeff.String() + " * " + m.term.String() + ")"
}

// WithArgs returns a copy of m with its factors replaced. The result is not
// regrouped, so a unit coefficient survives.
func (m *Mul) WithArgs(coeff, term Expr) *Mul {
	cp := *m
	cp.coeff = coeff
	cp.term = term
	return &cp
}

// hasVarFactor reports whether the term is a variable or a
// non-parametric function.
func (m *Mul) hasVarFactor() bool {
	switch t := m.term.(type) {
	case *Symbol:
		return !t.IsParameter()
	case *Func:
		return !t.Parametric()
	}
	return false
}

// Curvature follows the sign of a constant coefficient. A coefficient with
// parameters has no known sign and is taken as affine.
func (m *Mul) Curvature() types.Curvature {
	if !m.hasVarFactor() {
		return types.Affine
	}
	c, ok := m.coeff.(*Constant)
	if !ok {
		return types.Affine
	}
	switch {
	case c.Value > 0:
		return m.term.Curvature()
	case c.Value < 0:
		return m.term.Curvature().Negate()
	}
	return types.Affine
}

// CoefficientOf returns the coefficient of v, or 0 if the term is not v.
func (m *Mul) CoefficientOf(v *Symbol) Expr {
	if m.term == Expr(v) {
		return m.coeff
	}
	return Const(0)
}

func (m *Mul) At(i, j int) (Expr, error) {
	if m.shape.IsScalar() {
		return m, nil
	}
	if !m.coeff.Shape().IsScalar() {
		c, err := At(m.coeff, i, j)
		if err != nil {
			return nil, err
		}
		return smul(c, m.term)
	}
	t, err := At(m.term, i, j)
	if err != nil {
		return nil, err
	}
	return smul(m.coeff, t)
}
