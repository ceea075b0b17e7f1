// Package transform is the pass-level API shared by every mutation: a
// transformation edits one program in place and reports what it did.
package transform

import (
	"context"
	"fmt"
	"strings"

	"glfuzz/internal/ast"
	"glfuzz/internal/config"
	"glfuzz/internal/inject"
	"glfuzz/internal/rng"
)

// Env is everything a pass may touch. Prog is owned by the pass for its
// whole duration.
type Env struct {
	Prog   *ast.Program
	Rand   rng.Source
	Params config.GenerationParams
	Probs  config.Probabilities
}

// Mutation describes one applied edit.
type Mutation struct {
	Pass     string
	Function string
	Site     inject.SiteKind
	Detail   string
}

func (m Mutation) String() string {
	var sb strings.Builder
	sb.WriteString(m.Pass)
	if m.Function != "" {
		sb.WriteString(" in " + m.Function)
	}
	sb.WriteString(" at " + m.Site.String())
	if m.Detail != "" {
		sb.WriteString(": " + m.Detail)
	}
	return sb.String()
}

// Result is the outcome of one pass.
type Result struct {
	Applied []Mutation
	Changed bool
}

// Record notes a mutation made at p.
func (r *Result) Record(env *Env, pass string, p inject.Point, detail string) {
	m := Mutation{Pass: pass, Site: p.Kind(), Detail: detail}
	if fn, ok := env.Prog.Decls.Func(p.EnclosingFunction()); ok {
		m.Function = fn.Name
	}
	r.Applied = append(r.Applied, m)
	r.Changed = true
}

// Merge appends other to r.
func (r *Result) Merge(other Result) {
	r.Applied = append(r.Applied, other.Applied...)
	r.Changed = r.Changed || other.Changed
}

// Transformation is one semantics-preserving mutation pass.
type Transformation interface {
	Name() string
	Apply(ctx context.Context, env *Env) (Result, error)
}

// Func adapts a function to Transformation.
type Func struct {
	PassName string
	Fn       func(ctx context.Context, env *Env) (Result, error)
}

func (f Func) Name() string { return f.PassName }

func (f Func) Apply(ctx context.Context, env *Env) (Result, error) {
	res, err := f.Fn(ctx, env)
	if err != nil {
		return res, fmt.Errorf("%s: %w", f.PassName, err)
	}
	return res, nil
}
