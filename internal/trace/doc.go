// Package trace records what the mutation engine did and how long it took.
//
// Spans mark the CLI run, each transformation pass, each variant and
// individual injection points. Points the engine gives up on (an
// impossible donation, a site with nothing to switchify) are emitted as
// point events at detail level, so a run can be inspected without failing.
//
//	glfuzz generate --trace=- --trace-level=detail ref.frag
//
// Levels nest: phase admits driver and pass spans, detail adds variants,
// debug adds injection points. Level error keeps phases in the ring only;
// the CLI dumps the ring when a command fails.
//
// The tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "wrap", parentID)
//	defer span.End("")
package trace
