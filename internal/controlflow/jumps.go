package controlflow

import (
	"context"

	"glfuzz/internal/ast"
	"glfuzz/internal/inject"
	"glfuzz/internal/source"
	"glfuzz/internal/transform"
)

func addJumps(ctx context.Context, env *transform.Env) (transform.Result, error) {
	var res transform.Result
	for _, pt := range inject.Find(env.Prog, nil).Select(env.Rand, env.Probs.InjectJump) {
		jump, what := jumpStmt(env, pt)
		if err := pt.Inject(deadIf(env, jump)); err != nil {
			skipped(ctx, NameJumps, err)
			continue
		}
		res.Record(env, NameJumps, pt, what)
	}
	return res, nil
}

// jumpStmt picks the statement to hide. break and continue need a loop
// around the point; discard exists in fragment shaders only.
func jumpStmt(env *transform.Env, pt inject.Point) (ast.StmtID, string) {
	stmts := env.Prog.Stmts
	kinds := []string{"return"}
	if pt.InLoop() {
		kinds = append(kinds, "break", "continue")
	}
	if env.Prog.Kind == ast.ShaderFragment {
		kinds = append(kinds, "discard")
	}
	switch what := kinds[env.Rand.NextInt(len(kinds))]; what {
	case "break":
		return stmts.NewBreak(source.Span{}), what
	case "continue":
		return stmts.NewContinue(source.Span{}), what
	case "discard":
		return stmts.NewDiscard(source.Span{}), what
	}
	return returnStmt(env.Prog, pt.EnclosingFunction()), "return"
}

// returnStmt returns a well-typed return for fn: the canonical constant
// of its result, "return;" for void, and an empty block when the result
// has no constant.
func returnStmt(prog *ast.Program, fn ast.DeclID) ast.StmtID {
	stmts := prog.Stmts
	decl, ok := prog.Decls.Func(fn)
	if !ok {
		return stmts.NewBlock(source.Span{}, nil, true)
	}
	result := decl.Result.Unqualified()
	if result.IsVoid() {
		return stmts.NewReturn(source.Span{}, ast.NoExprID)
	}
	if value, ok := canonical(prog.Builder, result); ok {
		return stmts.NewReturn(source.Span{}, value)
	}
	return stmts.NewBlock(source.Span{}, nil, true)
}
