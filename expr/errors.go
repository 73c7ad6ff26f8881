package expr

import "errors"

// Every error returned by this package wraps one of these sentinels.
// Callers match them with errors.Is; all are fatal to a compilation.
var (
	// ErrShape reports incompatible operand shapes or an index outside
	// the declared bounds of a symbol.
	ErrShape = errors.New("expr: incompatible shape")

	// ErrAlgebra reports a product that cannot be put in standard form,
	// such as two variable-bearing factors.
	ErrAlgebra = errors.New("expr: invalid algebra")

	// ErrName reports a symbol name already live in the context.
	ErrName = errors.New("expr: duplicate symbol name")

	// ErrMissingParameter reports a parameter with no bound value.
	ErrMissingParameter = errors.New("expr: missing parameter")

	// ErrUnsupported reports an operation with no defined rewrite, such as
	// an unknown norm kind or the graph form of a parametric product.
	ErrUnsupported = errors.New("expr: unsupported operation")
)
