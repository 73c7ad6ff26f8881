package types

// Curvature is the DCP sign of an expression.
type Curvature int

const (
	Concave Curvature = -1
	Affine  Curvature = 0
	Convex  Curvature = 1
	// Unknown marks mixed curvature. No rewrite rule matches it.
	Unknown Curvature = 2
)

func (c Curvature) IsConvex() bool  { return c == Convex }
func (c Curvature) IsConcave() bool { return c == Concave }
func (c Curvature) IsAffine() bool  { return c == Affine }

// Negate flips convex and concave. Affine and Unknown are unchanged.
func (c Curvature) Negate() Curvature {
	switch c {
	case Convex:
		return Concave
	case Concave:
		return Convex
	}
	return c
}

// Combine returns the curvature of a sum of a and b.
func Combine(a, b Curvature) Curvature {
	switch {
	case a == Affine:
		return b
	case b == Affine, a == b:
		return a
	}
	return Unknown
}

func (c Curvature) String() string {
	switch c {
	case Concave:
		return "concave"
	case Affine:
		return "affine"
	case Convex:
		return "convex"
	}
	return "unknown"
}
