package expr

import "fmt"

// GraphForm returns the second-order cone axes of the epigraph e <= t
// (or hypograph e >= t for concave e) together with the cone dimension.
// Axis 0 is the cone's bound, the rest are its members.
func GraphForm(e, t Expr) ([]Expr, int, error) {
	switch e := e.(type) {
	case *Func:
		return e.graphForm(t)
	case *Mul:
		return e.graphForm(t)
	}
	return nil, 0, fmt.Errorf("%w: graph form of %s", ErrUnsupported, e)
}

// graphForm lifts a product with a unit coefficient. The -1 coefficient of
// a concave factor comes from writing t >= f(x) as -f(x) - (-t) <= 0.
func (m *Mul) graphForm(t Expr) ([]Expr, int, error) {
	c, ok := m.coeff.(*Constant)
	if !ok {
		return nil, 0, fmt.Errorf("%w: graph form of %s with parameter coefficient", ErrUnsupported, m)
	}
	if m.term.Curvature().IsConcave() && c.Value == -1 {
		nt, err := Neg(t)
		if err != nil {
			return nil, 0, err
		}
		return GraphForm(m.term, nt)
	}
	if c.Value != 1 {
		return nil, 0, fmt.Errorf("%w: graph form of %s with coefficient %s", ErrUnsupported, m, c)
	}
	return GraphForm(m.term, t)
}

func (f *Func) graphForm(t Expr) ([]Expr, int, error) {
	switch f.kind {
	case FuncSquare:
		return qolGraph(f.args, Const(1), t)
	case FuncInvPos:
		return qolGraph([]Expr{Const(1)}, f.args[0], t)
	case FuncQuadOverLin:
		n := len(f.args) - 1
		return qolGraph(f.args[:n], f.args[n], t)
	case FuncSqrt:
		return geoGraph(f.args[0], Const(1), t)
	case FuncGeoMean:
		return geoGraph(f.args[0], f.args[1], t)
	case FuncNorm2:
		n, err := vectorLen("norm2", f.args[0])
		if err != nil {
			return nil, 0, err
		}
		return []Expr{t, f.args[0]}, n + 1, nil
	case FuncAbs:
		return []Expr{t, f.args[0]}, 2, nil
	case FuncMax:
		d, err := Sub(t, f.args[0])
		if err != nil {
			return nil, 0, err
		}
		return []Expr{d}, 1, nil
	case FuncMin:
		// TODO: t - v is the hypograph sign used by every caller so far;
		// verify against an independent DCP reference before changing it.
		nv, err := Neg(f.args[0])
		if err != nil {
			return nil, 0, err
		}
		d, err := Add(nv, t)
		if err != nil {
			return nil, 0, err
		}
		return []Expr{d}, 1, nil
	}
	return nil, 0, fmt.Errorf("%w: graph form of %s", ErrUnsupported, f)
}

// qolGraph is ||(y - t, 2x)|| <= y + t.
func qolGraph(xs []Expr, y, t Expr) ([]Expr, int, error) {
	top, err := Add(y, t)
	if err != nil {
		return nil, 0, err
	}
	diff, err := Sub(y, t)
	if err != nil {
		return nil, 0, err
	}
	axes := []Expr{top, diff}
	for _, x := range xs {
		x2, err := smul(Const(2), x)
		if err != nil {
			return nil, 0, err
		}
		axes = append(axes, x2)
	}
	return axes, len(xs) + 2, nil
}

// geoGraph is ||(y - x, 2t)|| <= y + x.
func geoGraph(x, y, t Expr) ([]Expr, int, error) {
	top, err := Add(y, x)
	if err != nil {
		return nil, 0, err
	}
	diff, err := Sub(y, x)
	if err != nil {
		return nil, 0, err
	}
	t2, err := smul(Const(2), t)
	if err != nil {
		return nil, 0, err
	}
	return []Expr{top, diff, t2}, 3, nil
}
