package donate

import (
	"context"
	"errors"
	"fmt"

	"glfuzz/internal/ast"
	"glfuzz/internal/fuzzer"
	"glfuzz/internal/inject"
	"glfuzz/internal/source"
	"glfuzz/internal/trace"
	"glfuzz/internal/transform"
)

// Pass is a donation transformation. It keeps its pool between runs, so a
// Pass belongs to one variant.
type Pass struct {
	Pool *Pool
}

// NewPass returns a pass donating from sources with s.
func NewPass(s Strategy, sources []Source) *Pass {
	return &Pass{Pool: NewPool(s, sources)}
}

func (p *Pass) Name() string { return p.Pool.Strategy().Name() }

// Apply donates one statement at each selected point of env.Prog, then
// adds the declarations the donated code depends on.
func (p *Pass) Apply(ctx context.Context, env *transform.Env) (transform.Result, error) {
	var res transform.Result
	if p.Pool.Empty() {
		return res, nil
	}
	strategy := p.Pool.Strategy()
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	p.Pool.begin(env.Prog)
	points := inject.Find(env.Prog, nil).Select(env.Rand, strategy.Probability(env.Probs))
	for _, pt := range points {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		detail, ok, err := p.injectAt(ctx, pt, env)
		if err != nil {
			return res, err
		}
		if ok {
			res.Record(env, strategy.Name(), pt, detail)
		}
	}
	if n := p.Pool.finish(env.Prog); n > 0 {
		trace.Point(tracer, trace.ScopeNode, strategy.Name(), fmt.Sprintf("%d declarations donated", n), parent)
	}
	return res, nil
}

// injectAt donates at one point. Soft failures and structural errors of
// the point are traced and reported as ok == false; the pass goes on with
// the next point.
func (p *Pass) injectAt(ctx context.Context, pt inject.Point, env *transform.Env) (detail string, ok bool, err error) {
	name := p.Name()
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	stmt, detail, err := p.prepare(pt, env)
	switch {
	case errors.Is(err, ErrNoDonors):
		trace.Point(tracer, trace.ScopeNode, name, "no compatible donor", parent)
	case errors.Is(err, ErrDonationImpossible), errors.Is(err, fuzzer.ErrFuzzedIntoCorner):
		trace.Point(tracer, trace.ScopeNode, name, "skipped: "+err.Error(), parent)
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	if !stmt.IsValid() {
		stmt = env.Prog.Stmts.NewNull(source.Span{})
		detail = "null"
	}
	if err := pt.Inject(stmt); err != nil {
		trace.Point(tracer, trace.ScopeNode, name, "skipped: "+err.Error(), parent)
		return "", false, nil
	}
	return detail, true, nil
}

// prepare tries up to MaxDonationTries fragments of one donor. It returns
// NoStmtID when none of them fits the point.
func (p *Pass) prepare(pt inject.Point, env *transform.Env) (ast.StmtID, string, error) {
	donor, err := p.Pool.Choose(env)
	if err != nil {
		return ast.NoStmtID, "", err
	}
	tries := max(env.Params.MaxDonationTries, 1)
	for range tries {
		c, err := FindContext(donor.Prog, env.Rand, env.Params.MaxDonationSize)
		if err != nil {
			return ast.NoStmtID, "", err
		}
		if !fits(pt, c, env) {
			continue
		}
		stmt, err := p.Pool.Strategy().Prepare(pt, c, env)
		if err != nil {
			return ast.NoStmtID, "", err
		}
		return stmt, donor.Name, nil
	}
	return ast.NoStmtID, "", nil
}

// fits rejects fragments calling a function whose name a variable of the
// site hides, and, when array indexing is restricted, fragments indexing
// with a variable they do not declare.
func fits(pt inject.Point, c *Context, env *transform.Env) bool {
	called := c.CalledFunctions()
	if len(called) > 0 {
		for _, name := range pt.Scope().Names() {
			if called[name] {
				return false
			}
		}
	}
	if env.Params.RestrictArrayIndexing && c.IndexesArrayUsingFreeVariable() {
		return false
	}
	return true
}
