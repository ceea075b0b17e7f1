// Package controlflow holds the guarded control-flow injections. Each one
// hides new code behind a guard whose run-time value is fixed (opaque
// true, opaque false, or a loop that runs exactly once), so the program
// computes what it computed before.
package controlflow

import (
	"context"

	"glfuzz/internal/ast"
	"glfuzz/internal/opaque"
	"glfuzz/internal/source"
	"glfuzz/internal/trace"
	"glfuzz/internal/transform"
	"glfuzz/internal/types"
)

const (
	NameJumps            = "add_jump_stmts"
	NameDeadOutputWrites = "add_dead_output_variable_writes"
	NameLiveOutputWrites = "add_live_output_variable_writes"
	NameWrap             = "add_wrapping_conditional_stmts"
	NameSwitches         = "add_switch_stmts"
)

var (
	AddJumps            = transform.Func{PassName: NameJumps, Fn: addJumps}
	AddDeadOutputWrites = transform.Func{PassName: NameDeadOutputWrites, Fn: addDeadOutputWrites}
	AddLiveOutputWrites = transform.Func{PassName: NameLiveOutputWrites, Fn: addLiveOutputWrites}
	WrapStatements      = transform.Func{PassName: NameWrap, Fn: wrapStatements}
	AddSwitches         = transform.Func{PassName: NameSwitches, Fn: addSwitches}
)

func init() {
	for _, t := range []transform.Transformation{
		AddJumps, AddDeadOutputWrites, AddLiveOutputWrites, WrapStatements, AddSwitches,
	} {
		transform.Register(t)
	}
}

// deadIf returns "if (_GLF_DEAD(<opaque false>)) then".
func deadIf(env *transform.Env, then ast.StmtID) ast.StmtID {
	b := env.Prog.Builder
	cond := opaque.New(b, env.Rand, env.Params).Dead()
	return b.Stmts.NewIf(source.Span{}, cond, then, ast.NoStmtID)
}

// skipped traces a point given up on.
func skipped(ctx context.Context, pass string, err error) {
	trace.Point(trace.FromContext(ctx), trace.ScopeNode, pass, "skipped: "+err.Error(), trace.CurrentSpan(ctx).SpanID)
}

// escapes reports whether root holds a statement of kind (break or
// continue) that would leave a construct wrapped around root.
func escapes(b *ast.Builder, root ast.StmtID, kind ast.StmtKind) bool {
	k := b.Stmts.Kind(root)
	switch {
	case k == kind:
		return true
	case k.IsLoop():
		return false
	case k == ast.StmtSwitch && kind == ast.StmtBreak:
		return false
	}
	for _, c := range b.StmtChildren(root) {
		if escapes(b, c, kind) {
			return true
		}
	}
	return false
}

// canonical builds the expression types.Type.CanonicalConstant describes.
func canonical(b *ast.Builder, t types.Type) (ast.ExprID, bool) {
	if _, ok := t.CanonicalConstant(); !ok {
		return ast.NoExprID, false
	}
	exprs := b.Exprs
	scalar := func(k types.Kind) ast.ExprID {
		switch k {
		case types.KindBool:
			return exprs.Bool(true)
		case types.KindUint:
			return exprs.NewLiteral(source.Span{}, ast.ExprLitUint, "1u")
		case types.KindFloat:
			return exprs.NewLiteral(source.Span{}, ast.ExprLitFloat, "1.0")
		}
		return exprs.Int("1")
	}
	if t.IsScalar() {
		return scalar(t.Kind), true
	}
	return exprs.Invoke(t.String(), scalar(t.Elem)), true
}
