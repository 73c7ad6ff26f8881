package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewShape(t *testing.T) {
	tests := []struct {
		dims []int
		want Shape
	}{
		{nil, Scalar},
		{[]int{1}, Scalar},
		{[]int{1, 1}, Scalar},
		{[]int{3}, Shape{3, 1}},
		{[]int{1, 4}, Shape{1, 4}},
		{[]int{2, 3}, Shape{2, 3}},
	}
	for _, tt := range tests {
		got, err := NewShape(tt.dims...)
		require.NoError(t, err)
		if got != tt.want {
			t.Errorf("NewShape(%v) = %v, want %v", tt.dims, got, tt.want)
		}
	}

	for _, dims := range [][]int{{0}, {2, -1}, {1, 2, 3}} {
		if _, err := NewShape(dims...); !errors.Is(err, ErrBadShape) {
			t.Errorf("NewShape(%v): expected ErrBadShape, got %v", dims, err)
		}
	}
}

func TestShapeIndices(t *testing.T) {
	s := Shape{2, 2}
	require.Equal(t, []Index{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, s.Indices())
	require.Equal(t, "(2, 2)", s.String())
	require.Equal(t, Shape{3, 2}, Shape{2, 3}.T())
	require.True(t, s.Contains(1, 1))
	require.False(t, s.Contains(2, 0))
	require.Equal(t, "[1][0]", Index{1, 0}.String())
}

func TestCombine(t *testing.T) {
	tests := []struct {
		a, b, want Curvature
	}{
		{Affine, Affine, Affine},
		{Convex, Affine, Convex},
		{Affine, Concave, Concave},
		{Convex, Convex, Convex},
		{Convex, Concave, Unknown},
		{Unknown, Affine, Unknown},
		{Affine, Unknown, Unknown},
	}
	for _, tt := range tests {
		if got := Combine(tt.a, tt.b); got != tt.want {
			t.Errorf("Combine(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
	require.Equal(t, Concave, Convex.Negate())
	require.Equal(t, Unknown, Unknown.Negate())
}

func TestReservedNames(t *testing.T) {
	require.True(t, IsReservedFuncName("geo_mean"))
	require.False(t, IsReservedFuncName("x"))
	require.True(t, IsMatrixName("h"))
	require.False(t, IsMatrixName("A"))

	names := ReservedFuncNames()
	names[0] = "changed"
	require.True(t, IsReservedFuncName("square"))
}
