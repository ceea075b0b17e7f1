package transform

import (
	"context"
	"fmt"
	"strconv"

	"glfuzz/internal/trace"
)

// Pipeline runs transformations one after another over the same program.
type Pipeline struct {
	Steps []Transformation
	// Shuffle runs the steps in an order drawn from the environment's
	// random source.
	Shuffle bool
}

// Run applies every step. Cancellation is checked between steps only.
func (p Pipeline) Run(ctx context.Context, env *Env) (Result, error) {
	steps := append([]Transformation(nil), p.Steps...)
	if p.Shuffle {
		for i := len(steps) - 1; i > 0; i-- {
			j := env.Rand.NextInt(i + 1)
			steps[i], steps[j] = steps[j], steps[i]
		}
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	var total Result
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		span := trace.Begin(tracer, trace.ScopePass, step.Name(), parent)
		stepCtx := trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})
		res, err := step.Apply(stepCtx, env)
		span.WithExtra("applied", strconv.Itoa(len(res.Applied))).End("")
		if err != nil {
			return total, fmt.Errorf("pass %s: %w", step.Name(), err)
		}
		total.Merge(res)
	}
	return total, nil
}
