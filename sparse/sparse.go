// Package sparse converts coordinate triples into compressed sparse
// row or column matrices. Entries are generic so that symbolic
// coefficients and numbers share one representation.
package sparse

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Major selects the compressed dimension.
type Major int

const (
	CSR Major = iota // compressed rows
	CSC              // compressed columns
)

// ParseMajor accepts csr, row, csc, ccs and col in any case.
func ParseMajor(s string) (Major, error) {
	switch strings.ToLower(s) {
	case "csr", "row":
		return CSR, nil
	case "csc", "ccs", "col":
		return CSC, nil
	}
	return 0, fmt.Errorf("sparse: unknown major order %q", s)
}

func (m Major) String() string {
	if m == CSR {
		return "csr"
	}
	return "csc"
}

func (m Major) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Major) UnmarshalText(b []byte) error {
	v, err := ParseMajor(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// COO holds parallel coordinate arrays.
type COO[T any] struct {
	Rows []int
	Cols []int
	Vals []T
}

func (c *COO[T]) Append(row, col int, v T) {
	c.Rows = append(c.Rows, row)
	c.Cols = append(c.Cols, col)
	c.Vals = append(c.Vals, v)
}

func (c *COO[T]) Len() int { return len(c.Vals) }

// Matrix is a compressed sparse matrix. Along the major dimension k,
// entries Data[Indptr[k]:Indptr[k+1]] sit at minor positions
// Indices[Indptr[k]:Indptr[k+1]].
type Matrix[T any] struct {
	Major   Major `json:"major"`
	Rows    int   `json:"rows"`
	Cols    int   `json:"cols"`
	Data    []T   `json:"data"`
	Indices []int `json:"indices"`
	Indptr  []int `json:"indptr"`
}

// FromCOO compresses coo into a rows x cols matrix. Entries keep their
// input order within each major index. A zero dimension yields nil.
func FromCOO[T any](coo COO[T], rows, cols int, major Major) (*Matrix[T], error) {
	if rows == 0 || cols == 0 {
		return nil, nil
	}
	n := coo.Len()
	if len(coo.Rows) != n || len(coo.Cols) != n {
		return nil, fmt.Errorf("sparse: coordinate lengths %d, %d, %d differ", len(coo.Rows), len(coo.Cols), n)
	}
	for k := 0; k < n; k++ {
		if coo.Rows[k] < 0 || coo.Rows[k] >= rows || coo.Cols[k] < 0 || coo.Cols[k] >= cols {
			return nil, fmt.Errorf("sparse: entry (%d, %d) outside %dx%d", coo.Rows[k], coo.Cols[k], rows, cols)
		}
	}

	majorIdx, minorIdx, size := coo.Rows, coo.Cols, rows
	if major == CSC {
		majorIdx, minorIdx, size = coo.Cols, coo.Rows, cols
	}

	perm := make([]int, n)
	for k := range perm {
		perm[k] = k
	}
	slices.SortStableFunc(perm, func(a, b int) int { return cmp.Compare(majorIdx[a], majorIdx[b]) })

	m := &Matrix[T]{
		Major:   major,
		Rows:    rows,
		Cols:    cols,
		Data:    make([]T, n),
		Indices: make([]int, n),
		Indptr:  make([]int, size+1),
	}
	for k, p := range perm {
		m.Data[k] = coo.Vals[p]
		m.Indices[k] = minorIdx[p]
		m.Indptr[majorIdx[p]+1]++
	}
	for k := 0; k < size; k++ {
		m.Indptr[k+1] += m.Indptr[k]
	}
	return m, nil
}

func (m *Matrix[T]) NNZ() int { return len(m.Data) }

// ToCOO reads the entries back in compressed order.
func (m *Matrix[T]) ToCOO() COO[T] {
	var coo COO[T]
	for k := 0; k+1 < len(m.Indptr); k++ {
		for p := m.Indptr[k]; p < m.Indptr[k+1]; p++ {
			if m.Major == CSC {
				coo.Append(m.Indices[p], k, m.Data[p])
			} else {
				coo.Append(k, m.Indices[p], m.Data[p])
			}
		}
	}
	return coo
}

// Dense expands m, filling absent entries with the zero value of T.
func (m *Matrix[T]) Dense() [][]T {
	out := make([][]T, m.Rows)
	for i := range out {
		out[i] = make([]T, m.Cols)
	}
	coo := m.ToCOO()
	for k := range coo.Vals {
		out[coo.Rows[k]][coo.Cols[k]] = coo.Vals[k]
	}
	return out
}

// Map converts every entry of m with fn. A nil matrix maps to nil.
func Map[T, U any](m *Matrix[T], fn func(T) (U, error)) (*Matrix[U], error) {
	if m == nil {
		return nil, nil
	}
	out := &Matrix[U]{
		Major:   m.Major,
		Rows:    m.Rows,
		Cols:    m.Cols,
		Data:    make([]U, len(m.Data)),
		Indices: slices.Clone(m.Indices),
		Indptr:  slices.Clone(m.Indptr),
	}
	for k, v := range m.Data {
		u, err := fn(v)
		if err != nil {
			return nil, err
		}
		out.Data[k] = u
	}
	return out, nil
}
