package solve

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thiremani/cvxsym/canon"
)

func TestMissingSolverWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	sol, err := Solve(context.Background(), "ecos", &canon.Matrices[float64]{}, logger)
	require.NoError(t, err)
	require.Nil(t, sol)
	if !strings.Contains(buf.String(), "no solver registered") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
}

func TestRegisteredSolver(t *testing.T) {
	m := &canon.Matrices[float64]{C: []float64{1}, Vars: []string{"v0"}}
	Register("fixed", SolverFunc(func(_ context.Context, m *canon.Matrices[float64]) (*Solution, error) {
		return &Solution{Status: Optimal, Objective: m.C[0] * 2, Values: map[string]float64{"v0": 2}}, nil
	}))
	defer Register("fixed", nil)

	require.Contains(t, Names(), "fixed")
	sol, err := Solve(context.Background(), "fixed", m, nil)
	require.NoError(t, err)
	require.Equal(t, Optimal, sol.Status)
	require.Equal(t, 2.0, sol.Objective)
	require.Equal(t, map[string]float64{"v0": 2}, sol.Values)
}

func TestSolverError(t *testing.T) {
	boom := errors.New("boom")
	Register("broken", SolverFunc(func(context.Context, *canon.Matrices[float64]) (*Solution, error) {
		return nil, boom
	}))
	defer Register("broken", nil)

	_, err := Solve(context.Background(), "broken", &canon.Matrices[float64]{}, nil)
	require.ErrorIs(t, err, boom)

	_, ok := Lookup("broken")
	require.True(t, ok)
}

func TestSolverNoSolution(t *testing.T) {
	Register("empty", SolverFunc(func(context.Context, *canon.Matrices[float64]) (*Solution, error) {
		return nil, nil
	}))
	defer Register("empty", nil)

	sol, err := Solve(context.Background(), "empty", &canon.Matrices[float64]{}, nil)
	require.Error(t, err)
	require.Nil(t, sol)
	if !strings.Contains(err.Error(), "no solution") {
		t.Errorf("unexpected error %q", err)
	}
}
