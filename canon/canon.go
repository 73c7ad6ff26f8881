// Package canon compiles a DCP problem into the canonical conic form
// consumed by second-order cone solvers.
//
// The rewrite runs four stages in order:
//
//	smith  hoist every nonlinear subexpression into an auxiliary variable
//	relax  turn the defining equalities into inequalities
//	graph  replace each nonlinear inequality by its second-order cone
//	canon  expand, number the variables and stuff c, A, b, G, h
package canon

import (
	"log/slog"

	"github.com/thiremani/cvxsym/constraint"
	"github.com/thiremani/cvxsym/expr"
)

type Options struct {
	// Stop ends the pipeline after the named stage. Zero runs every stage.
	Stop   Stage
	Logger *slog.Logger
}

// Canonicalizer owns the registry of one compilation.
type Canonicalizer struct {
	ctx    *expr.Context
	stop   Stage
	logger *slog.Logger
}

func New(ctx *expr.Context, opts Options) *Canonicalizer {
	c := &Canonicalizer{ctx: ctx, stop: opts.Stop, logger: opts.Logger}
	if c.stop == 0 {
		c.stop = StageCanon
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Result holds the problem as of the last stage run.
type Result struct {
	Stage       Stage
	Objective   expr.Expr
	Constraints []*constraint.Constraint
	Cones       []*constraint.SOC
	// Matrices is set only when the canon stage ran.
	Matrices *Matrices[expr.Expr]
}

// Lines renders the objective, constraints and cones one per line.
func (r *Result) Lines() []string {
	lines := []string{"minimize " + r.Objective.String()}
	for _, c := range r.Constraints {
		lines = append(lines, c.String())
	}
	for _, q := range r.Cones {
		lines = append(lines, q.String())
	}
	return lines
}

func (c *Canonicalizer) Compile(p *Problem) (*Result, error) {
	res := &Result{Stage: StageSmith}

	sf := &smith{ctx: c.ctx}
	obj, err := sf.rewrite(p.Objective, false)
	if err != nil {
		return nil, err
	}
	for _, con := range p.Constraints {
		e, err := sf.sum(con.Expr)
		if err != nil {
			return nil, err
		}
		sf.constraints = append(sf.constraints, constraint.New(con.Op, e))
	}
	res.Objective = obj
	res.Constraints = sf.constraints
	c.dump(res)
	if c.stop == StageSmith {
		return res, nil
	}

	res.Stage = StageRelax
	for i, con := range res.Constraints {
		if res.Constraints[i], err = relax(con); err != nil {
			return nil, err
		}
	}
	c.dump(res)
	if c.stop == StageRelax {
		return res, nil
	}

	res.Stage = StageGraph
	var linear []*constraint.Constraint
	for _, con := range res.Constraints {
		cone, err := con.GraphForm()
		if err != nil {
			return nil, err
		}
		if cone == nil {
			linear = append(linear, con)
			continue
		}
		res.Cones = append(res.Cones, cone)
	}
	res.Constraints = linear
	c.dump(res)
	if c.stop == StageGraph {
		return res, nil
	}

	res.Stage = StageCanon
	var eqs, les []*constraint.Constraint
	for _, con := range res.Constraints {
		rows, err := con.Expand()
		if err != nil {
			return nil, err
		}
		if con.Op == constraint.EQ {
			eqs = append(eqs, rows...)
		} else {
			les = append(les, rows...)
		}
	}
	var cones []*constraint.SOC
	for _, q := range res.Cones {
		expanded, err := q.Expand()
		if err != nil {
			return nil, err
		}
		cones = append(cones, expanded...)
	}
	res.Constraints = append(eqs, les...)
	res.Cones = cones

	if res.Matrices, err = stuff(c.ctx, obj, eqs, les, cones); err != nil {
		return nil, err
	}
	c.dump(res)
	return res, nil
}

func (c *Canonicalizer) dump(r *Result) {
	c.logger.Debug("canonicalize",
		"stage", r.Stage.String(),
		"objective", r.Objective.String(),
		"constraints", len(r.Constraints),
		"cones", len(r.Cones),
	)
	for _, line := range r.Lines()[1:] {
		c.logger.Debug("canonicalize", "stage", r.Stage.String(), "row", line)
	}
	if m := r.Matrices; m != nil {
		c.logger.Debug("canonicalize",
			"stage", r.Stage.String(),
			"vars", len(m.Vars),
			"l", m.Dims.L,
			"q", m.Dims.Q,
		)
	}
}

// Canonicalize runs every stage on p.
func Canonicalize(ctx *expr.Context, p *Problem) (*Matrices[expr.Expr], error) {
	res, err := New(ctx, Options{}).Compile(p)
	if err != nil {
		return nil, err
	}
	return res.Matrices, nil
}
