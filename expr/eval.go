package expr

import (
	"fmt"
	"math"
)

// Eval computes the value of a scalar expression whose only symbols are
// parameters bound in values. Parameter elements are looked up by their
// element name, e.g. A[0][1].
func Eval(e Expr, values map[string]float64) (float64, error) {
	if !e.Shape().IsScalar() {
		return 0, fmt.Errorf("%w: cannot evaluate %s of shape %s", ErrShape, e, e.Shape())
	}

	switch e := e.(type) {
	case *Constant:
		return e.Value, nil
	case *Symbol:
		if !e.IsParameter() {
			return 0, fmt.Errorf("%w: cannot evaluate %s %s", ErrUnsupported, e.kind, e)
		}
		v, ok := values[e.name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingParameter, e.name)
		}
		return v, nil
	case *Sum:
		total := 0.0
		for _, t := range e.terms {
			v, err := Eval(t, values)
			if err != nil {
				return 0, err
			}
			total += v
		}
		return total, nil
	case *Mul:
		c, err := Eval(e.coeff, values)
		if err != nil {
			return 0, err
		}
		t, err := Eval(e.term, values)
		if err != nil {
			return 0, err
		}
		return c * t, nil
	case *Func:
		return e.eval(values)
	}
	return 0, fmt.Errorf("%w: cannot evaluate %s", ErrUnsupported, e)
}

func evalAll(es []Expr, values map[string]float64) ([]float64, error) {
	out := make([]float64, len(es))
	for i, e := range es {
		v, err := Eval(e, values)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *Func) eval(values map[string]float64) (float64, error) {
	if f.kind == FuncNorm2 || f.kind == FuncMax || f.kind == FuncMin {
		elems, err := Elements(f.args[0])
		if err != nil {
			return 0, err
		}
		xs, err := evalAll(elems, values)
		if err != nil {
			return 0, err
		}
		return reduceValues(f.kind, xs), nil
	}

	xs, err := evalAll(f.args, values)
	if err != nil {
		return 0, err
	}
	switch f.kind {
	case FuncSquare:
		return xs[0] * xs[0], nil
	case FuncQuadOverLin:
		n := len(xs) - 1
		ss := 0.0
		for _, x := range xs[:n] {
			ss += x * x
		}
		return ss / xs[n], nil
	case FuncInvPos:
		return 1 / xs[0], nil
	case FuncGeoMean:
		return math.Sqrt(xs[0] * xs[1]), nil
	case FuncSqrt:
		return math.Sqrt(xs[0]), nil
	case FuncAbs:
		return math.Abs(xs[0]), nil
	}
	return 0, fmt.Errorf("%w: cannot evaluate %s", ErrUnsupported, f)
}

func reduceValues(kind FuncKind, xs []float64) float64 {
	switch kind {
	case FuncNorm2:
		ss := 0.0
		for _, x := range xs {
			ss += x * x
		}
		return math.Sqrt(ss)
	case FuncMax:
		m := math.Inf(-1)
		for _, x := range xs {
			m = math.Max(m, x)
		}
		return m
	}
	m := math.Inf(1)
	for _, x := range xs {
		m = math.Min(m, x)
	}
	return m
}
