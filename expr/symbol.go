package expr

import (
	"fmt"

	"github.com/thiremani/cvxsym/types"
)

type Kind int

const (
	VariableKind Kind = iota
	ParameterKind
	// AuxKind is a decision variable introduced by canonicalization.
	AuxKind
)

func (k Kind) String() string {
	switch k {
	case VariableKind:
		return "variable"
	case ParameterKind:
		return "parameter"
	case AuxKind:
		return "aux"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Symbol is a named leaf: a variable, a parameter or an auxiliary.
// Shaped symbols own lazily created element symbols named parent[i][j].
type Symbol struct {
	ctx    *Context
	id     int
	name   string
	shape  types.Shape
	kind   Kind
	parent *Symbol
	base   *Symbol // set on transposed views
	elems  map[types.Index]*Symbol
}

func (s *Symbol) exprNode() {}

// ID is a handle unique within the context that created s.
func (s *Symbol) ID() int { return s.id }

func (s *Symbol) Name() string              { return s.name }
func (s *Symbol) Kind() Kind                { return s.kind }
func (s *Symbol) IsParameter() bool         { return s.kind == ParameterKind }
func (s *Symbol) Shape() types.Shape        { return s.shape }
func (s *Symbol) Curvature() types.Curvature { return types.Affine }

// Parent returns the symbol s is an element of, or nil.
func (s *Symbol) Parent() *Symbol { return s.parent }

func (s *Symbol) String() string {
	if s.base != nil {
		return s.base.name + ".T"
	}
	return s.name
}

// T returns the transpose of s. The view shares its elements with s.
func (s *Symbol) T() *Symbol {
	if s.base != nil {
		return s.base
	}
	if s.shape.IsScalar() {
		return s
	}
	view := *s
	view.shape = s.shape.T()
	view.base = s
	view.elems = nil
	return &view
}

// At returns element (i, j), registering it on first access.
func (s *Symbol) At(i, j int) (*Symbol, error) {
	if s.base != nil {
		return s.base.At(j, i)
	}
	if s.shape.IsScalar() && i == 0 && j == 0 {
		return s, nil
	}
	if !s.shape.Contains(i, j) {
		return nil, fmt.Errorf("%w: index %s out of range for %s of shape %s",
			ErrShape, types.Index{Row: i, Col: j}, s.name, s.shape)
	}

	idx := types.Index{Row: i, Col: j}
	if el, ok := s.elems[idx]; ok {
		return el, nil
	}
	el, err := s.ctx.register(s.name+idx.String(), types.Scalar, s.kind, s)
	if err != nil {
		return nil, err
	}
	if s.elems == nil {
		s.elems = make(map[types.Index]*Symbol)
	}
	s.elems[idx] = el
	return el, nil
}

// Row indexes a single subscript: element (i, 0) of a column, otherwise
// row i as a column vector.
func (s *Symbol) Row(i int) (Expr, error) {
	if s.shape.Cols == 1 {
		el, err := s.At(i, 0)
		if err != nil {
			return nil, err
		}
		return el, nil
	}
	elems := make([]Expr, 0, s.shape.Cols)
	for j := 0; j < s.shape.Cols; j++ {
		el, err := s.At(i, j)
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
	}
	return NewVector(elems...)
}

// Col returns column j as a column vector.
func (s *Symbol) Col(j int) (Expr, error) {
	elems := make([]Expr, 0, s.shape.Rows)
	for i := 0; i < s.shape.Rows; i++ {
		el, err := s.At(i, j)
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
	}
	return NewVector(elems...)
}

// Elements materializes every element of s in row-major order.
func (s *Symbol) Elements() ([]*Symbol, error) {
	elems := make([]*Symbol, 0, s.shape.Len())
	for _, idx := range s.shape.Indices() {
		el, err := s.At(idx.Row, idx.Col)
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
	}
	return elems, nil
}
