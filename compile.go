package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thiremani/cvxsym/canon"
	"github.com/thiremani/cvxsym/compiler"
	"github.com/thiremani/cvxsym/expr"
	"github.com/thiremani/cvxsym/lexer"
	"github.com/thiremani/cvxsym/parser"
	"github.com/thiremani/cvxsym/solve"
	"github.com/thiremani/cvxsym/sparse"
	"github.com/thiremani/cvxsym/token"
)

const (
	formatJSON = "json"
	formatText = "text"
)

type compileOptions struct {
	stage  canon.Stage
	format string
	// params is the raw parameter file; nil leaves the matrices symbolic
	params []byte
	solver string
	logger *slog.Logger
}

// fileResult is what one input file compiles to.
type fileResult struct {
	File      string                   `json:"file"`
	Stage     canon.Stage              `json:"stage"`
	Lines     []string                 `json:"lines,omitempty"`
	Symbolic  *canon.Matrices[string]  `json:"symbolic,omitempty"`
	Numeric   *canon.Matrices[float64] `json:"numeric,omitempty"`
	Maximized bool                     `json:"maximized,omitempty"`
	Solution  *solve.Solution          `json:"solution,omitempty"`
}

// loadParams decodes a YAML mapping of parameter names to numbers, lists
// or lists of lists.
func loadParams(data []byte) (map[string]float64, error) {
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}
	return canon.ExpandParams(raw)
}

func compileErrors(errs []*token.CompileError) error {
	joined := make([]error, len(errs))
	for i, e := range errs {
		joined[i] = e
	}
	return errors.Join(joined...)
}

// compileSource runs the front end and the canonicalizer on one problem.
// Each call owns a fresh symbol context.
func compileSource(ctx context.Context, file string, source []byte, opts compileOptions) (*fileResult, error) {
	p := parser.New(lexer.New(file, string(source)))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, compileErrors(errs)
	}

	symbols := expr.NewContext(opts.logger)
	c := compiler.NewCompiler(symbols)
	prob := c.Compile(program)
	if len(c.Errors) > 0 {
		return nil, compileErrors(c.Errors)
	}

	res, err := canon.New(symbols, canon.Options{Stop: opts.stage, Logger: opts.logger}).Compile(prob)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	out := &fileResult{File: file, Stage: res.Stage, Maximized: prob.Maximized}
	if res.Matrices == nil {
		out.Lines = res.Lines()
		return out, nil
	}
	out.Symbolic = canon.Strings(res.Matrices)
	if opts.params == nil {
		return out, nil
	}

	values, err := loadParams(opts.params)
	if err != nil {
		return nil, err
	}
	if out.Numeric, err = canon.Assign(res.Matrices, values); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if opts.solver != "" {
		if out.Solution, err = solve.Solve(ctx, opts.solver, out.Numeric, opts.logger); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}
	return out, nil
}

func compileFile(ctx context.Context, file string, opts compileOptions, cache *resultCache) ([]byte, error) {
	source, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	build := func() ([]byte, error) {
		res, err := compileSource(ctx, file, source, opts)
		if err != nil {
			return nil, err
		}
		return render(res, opts.format)
	}
	// solver output is not a pure function of the inputs
	if cache == nil || opts.solver != "" {
		return build()
	}

	data, hit, err := cache.getOrBuild(build,
		[]byte(file), source, opts.params, []byte(opts.stage.String()), []byte(opts.format))
	if err != nil {
		return nil, err
	}
	if hit {
		opts.logger.Info("cached", "file", file)
	}
	return data, nil
}

func render(res *fileResult, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case formatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return nil, fmt.Errorf("encode %s: %w", res.File, err)
		}
	case formatText:
		writeText(&buf, res)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return buf.Bytes(), nil
}

func writeText(w io.Writer, res *fileResult) {
	fmt.Fprintf(w, "# %s (%s)\n", res.File, res.Stage)
	for _, line := range res.Lines {
		fmt.Fprintln(w, line)
	}
	if res.Numeric != nil {
		writeMatrices(w, res.Numeric, func(v float64) string { return fmt.Sprint(v) })
	} else if res.Symbolic != nil {
		writeMatrices(w, res.Symbolic, func(s string) string { return s })
	}
	if sol := res.Solution; sol != nil {
		fmt.Fprintf(w, "status: %s\nobjective: %g\n", sol.Status, sol.Objective)
		for _, v := range res.Symbolic.Vars {
			fmt.Fprintf(w, "%s = %g\n", v, sol.Values[v])
		}
	}
}

func writeMatrices[T any](w io.Writer, m *canon.Matrices[T], str func(T) string) {
	vec := func(name string, vs []T) {
		parts := make([]string, len(vs))
		for i, v := range vs {
			parts[i] = str(v)
		}
		fmt.Fprintf(w, "%s = [%s]\n", name, strings.Join(parts, ", "))
	}
	mat := func(name string, a *sparse.Matrix[T]) {
		if a == nil {
			fmt.Fprintf(w, "%s = none\n", name)
			return
		}
		fmt.Fprintf(w, "%s = %s(%d, %d)\n", name, a.Major, a.Rows, a.Cols)
		coo := a.ToCOO()
		for k := range coo.Vals {
			fmt.Fprintf(w, "  [%d, %d] %s\n", coo.Rows[k], coo.Cols[k], str(coo.Vals[k]))
		}
	}

	fmt.Fprintf(w, "vars = [%s]\n", strings.Join(m.Vars, ", "))
	vec("c", m.C)
	mat("A", m.A)
	vec("b", m.B)
	mat("G", m.G)
	vec("h", m.H)
	fmt.Fprintf(w, "dims = l: %d, q: %v\n", m.Dims.L, m.Dims.Q)
}
