// Package solve is the boundary between canonical matrices and a numeric
// conic solver. No solver is built in; programs register one by name.
package solve

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/thiremani/cvxsym/canon"
)

type Status string

const (
	Optimal    Status = "optimal"
	Infeasible Status = "infeasible"
	Unbounded  Status = "unbounded"
	Failed     Status = "failed"
)

// Solution maps variable names to values.
type Solution struct {
	Status    Status             `json:"status"`
	Objective float64            `json:"objective"`
	Values    map[string]float64 `json:"values"`
}

type Solver interface {
	Solve(ctx context.Context, m *canon.Matrices[float64]) (*Solution, error)
}

// SolverFunc adapts a function to Solver.
type SolverFunc func(ctx context.Context, m *canon.Matrices[float64]) (*Solution, error)

func (f SolverFunc) Solve(ctx context.Context, m *canon.Matrices[float64]) (*Solution, error) {
	return f(ctx, m)
}

var (
	mu      sync.RWMutex
	solvers = map[string]Solver{}
)

// Register makes s available under name, replacing any earlier one.
func Register(name string, s Solver) {
	mu.Lock()
	defer mu.Unlock()
	if s == nil {
		delete(solvers, name)
		return
	}
	solvers[name] = s
}

func Lookup(name string) (Solver, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := solvers[name]
	return s, ok
}

// Names lists the registered solvers in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(solvers))
	for name := range solvers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Solve runs the named solver on m. A missing solver is logged and yields
// a nil solution with no error; the matrices remain usable by the caller.
func Solve(ctx context.Context, name string, m *canon.Matrices[float64], logger *slog.Logger) (*Solution, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, ok := Lookup(name)
	if !ok {
		logger.Warn("no solver registered; returning canonical matrices only", "solver", name)
		return nil, nil
	}
	sol, err := s.Solve(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("solve %s: %w", name, err)
	}
	if sol == nil {
		return nil, fmt.Errorf("solve %s: solver returned no solution", name)
	}
	if sol.Values == nil && len(m.Vars) > 0 {
		return nil, fmt.Errorf("solve %s: solution has no values", name)
	}
	return sol, nil
}
