package expr

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/thiremani/cvxsym/types"
)

// DefaultName requests a generated name sym0, sym1, ... from the context.
const DefaultName = "sym"

// Context is the symbol registry of one compilation. It is not safe for
// concurrent use; independent problems use independent contexts.
type Context struct {
	logger  *slog.Logger
	symbols []*Symbol // creation order
	names   map[string]*Symbol
	counter int
	nextID  int
}

// NewContext returns an empty registry. A nil logger uses slog.Default().
func NewContext(logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Context{logger: logger}
	c.Reset()
	return c
}

// Reset forgets every symbol and restarts generated names at sym0.
func (c *Context) Reset() {
	c.symbols = nil
	c.names = make(map[string]*Symbol)
	c.counter = -1
	c.nextID = 0
}

func (c *Context) Variable(name string, dims ...int) (*Symbol, error) {
	return c.declare(name, VariableKind, dims)
}

func (c *Context) Parameter(name string, dims ...int) (*Symbol, error) {
	return c.declare(name, ParameterKind, dims)
}

// Symbol declares an auxiliary decision variable.
func (c *Context) Symbol(name string, dims ...int) (*Symbol, error) {
	return c.declare(name, AuxKind, dims)
}

// Aux declares an auxiliary variable with a generated name.
func (c *Context) Aux(shape types.Shape) (*Symbol, error) {
	return c.register(DefaultName, shape, AuxKind, nil)
}

func (c *Context) declare(name string, kind Kind, dims []int) (*Symbol, error) {
	shape, err := types.NewShape(dims...)
	if err != nil {
		return nil, fmt.Errorf("%w: symbol %s: %v", ErrShape, name, err)
	}
	return c.register(name, shape, kind, nil)
}

func (c *Context) register(name string, shape types.Shape, kind Kind, parent *Symbol) (*Symbol, error) {
	if name == DefaultName {
		name = c.freshName()
	}
	if types.IsMatrixName(name) {
		renamed := name + "_"
		c.logger.Warn("symbol name collides with a canonical matrix, renaming", "name", name, "renamed", renamed)
		name = renamed
	}
	if _, ok := c.names[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrName, name)
	}

	s := &Symbol{
		ctx:    c,
		id:     c.nextID,
		name:   name,
		shape:  shape,
		kind:   kind,
		parent: parent,
	}
	c.nextID++
	c.names[name] = s
	c.symbols = append(c.symbols, s)
	return s, nil
}

// freshName skips generated names already taken by user symbols.
func (c *Context) freshName() string {
	for {
		c.counter++
		name := DefaultName + strconv.Itoa(c.counter)
		if _, ok := c.names[name]; !ok {
			return name
		}
	}
}

// Lookup returns the live symbol with the given name.
func (c *Context) Lookup(name string) (*Symbol, bool) {
	s, ok := c.names[name]
	return s, ok
}

// Evict removes s and its elements from the registry. An evicted element
// is also dropped from its parent, so the next At registers it afresh.
func (c *Context) Evict(s *Symbol) {
	if s.base != nil {
		s = s.base
	}
	gone := map[*Symbol]bool{s: true}
	for _, el := range s.elems {
		gone[el] = true
	}
	for sym := range gone {
		delete(c.names, sym.name)
	}
	c.symbols = slices.DeleteFunc(c.symbols, func(sym *Symbol) bool { return gone[sym] })
	s.elems = nil
	if s.parent != nil {
		maps.DeleteFunc(s.parent.elems, func(_ types.Index, el *Symbol) bool { return el == s })
	}
}

// Variables lists the scalar decision variables in column order: top-level
// non-parameter symbols in creation order, each shaped symbol replaced by
// its elements in row-major order. Elements are materialized as needed.
func (c *Context) Variables() ([]*Symbol, error) {
	var vars []*Symbol
	for _, s := range slices.Clone(c.symbols) {
		if s.IsParameter() || s.parent != nil {
			continue
		}
		if s.shape.IsScalar() {
			vars = append(vars, s)
			continue
		}
		elems, err := s.Elements()
		if err != nil {
			return nil, err
		}
		vars = append(vars, elems...)
	}
	return vars, nil
}

// Parameters lists the top-level parameters in creation order.
func (c *Context) Parameters() []*Symbol {
	var params []*Symbol
	for _, s := range c.symbols {
		if s.IsParameter() && s.parent == nil {
			params = append(params, s)
		}
	}
	return params
}
