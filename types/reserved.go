package types

var reservedFuncNames = []string{
	"square",
	"quad_over_lin",
	"inv_pos",
	"norm",
	"norm1",
	"norm2",
	"norm_inf",
	"geo_mean",
	"sqrt",
	"abs",
	"max",
	"min",
	"sum",
	"sum_squares",
	"matmul",
}

// matrixNames are the names of the canonical problem matrices. A user
// symbol with one of these names would shadow generated code identifiers.
var matrixNames = []string{"b", "c", "h"}

func setOf(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

var (
	reservedFuncSet = setOf(reservedFuncNames)
	matrixNameSet   = setOf(matrixNames)
)

// ReservedFuncNames returns a copy of the builtin function names.
func ReservedFuncNames() []string {
	return append([]string(nil), reservedFuncNames...)
}

// IsReservedFuncName reports whether name is a builtin function.
func IsReservedFuncName(name string) bool {
	_, ok := reservedFuncSet[name]
	return ok
}

// IsMatrixName reports whether name collides with a canonical matrix name.
func IsMatrixName(name string) bool {
	_, ok := matrixNameSet[name]
	return ok
}
