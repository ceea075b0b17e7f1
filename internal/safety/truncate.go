// Package safety holds the structural passes that keep generated code
// well-behaved: loop truncation bounds run time, and index clamping keeps
// array, vector and matrix accesses in bounds.
package safety

import (
	"fmt"
	"strconv"

	"glfuzz/internal/ast"
	"glfuzz/internal/source"
	"glfuzz/internal/types"
)

// LoopLimiter is the name fragment shared by all limiter variables.
const LoopLimiter = "looplimiter"

// LimiterName returns the name of the n-th limiter created with prefix.
func LimiterName(prefix string, n int) string {
	return prefix + "_" + LoopLimiter + strconv.Itoa(n)
}

// TruncateLoops rewrites every loop of prog so that it runs at most limit
// iterations:
//
//	{
//	    int <prefix>_looplimiterN = 0;
//	    for (...) {
//	        if (<prefix>_looplimiterN >= limit) {
//	            break;
//	        }
//	        <prefix>_looplimiterN++;
//	        ...
//	    }
//	}
//
// Inner loops are handled first, so limiter numbers grow outwards. With
// skipShortLoops, for loops whose trip count is a constant below limit
// are left as they are. It returns the number of loops rewritten.
func TruncateLoops(prog *ast.Program, limit int, prefix string, skipShortLoops bool) int {
	var loops []ast.StmtID
	for _, d := range prog.Functions() {
		fn, _ := prog.Decls.Func(d)
		collectLoops(prog.Builder, fn.Body, &loops)
	}
	if len(loops) == 0 {
		return 0
	}
	ps := prog.Parents()
	n := 0
	for _, loop := range loops {
		if skipShortLoops && isShortLoop(prog.Builder, loop, limit) {
			continue
		}
		name := LimiterName(prefix, n)
		n++
		truncate(prog, ps, loop, name, limit)
	}
	return n
}

// collectLoops appends the loops below root in post-order.
func collectLoops(b *ast.Builder, root ast.StmtID, out *[]ast.StmtID) {
	if !root.IsValid() {
		return
	}
	for _, c := range b.StmtChildren(root) {
		collectLoops(b, c, out)
	}
	if b.Stmts.Kind(root).IsLoop() {
		*out = append(*out, root)
	}
}

// truncate relies on post-order: the owner of loop has not been touched
// by earlier rewrites, only its descendants have.
func truncate(prog *ast.Program, ps *ast.Parents, loop ast.StmtID, name string, limit int) {
	stmts, exprs := prog.Stmts, prog.Exprs

	check := stmts.NewIf(source.Span{},
		exprs.Bin(ast.ExprBinaryGreaterEq, exprs.Var(name), exprs.Int(strconv.Itoa(limit))),
		stmts.NewBlock(source.Span{}, []ast.StmtID{stmts.NewBreak(source.Span{})}, true),
		ast.NoStmtID)
	incr := stmts.NewExpr(source.Span{}, exprs.NewUnary(source.Span{}, ast.ExprUnaryPostInc, exprs.Var(name)))

	body, _ := stmts.LoopBody(loop)
	if blk, ok := stmts.Block(body); ok {
		blk.Stmts = append([]ast.StmtID{check, incr}, blk.Stmts...)
	} else {
		stmts.SetLoopBody(loop, stmts.NewBlock(source.Span{}, []ast.StmtID{check, incr, body}, true))
	}

	decl := stmts.NewDecl(source.Span{}, ast.VarDecl{
		Type: types.Int,
		Vars: []ast.Declarator{{Name: name, Init: exprs.Int("0")}},
	})
	wrapper := stmts.NewBlock(source.Span{}, []ast.StmtID{decl, loop}, true)
	if err := prog.ReplaceStmt(ps, loop, wrapper); err != nil {
		// все циклы собраны из тел функций, сюда попасть нельзя
		panic(fmt.Sprintf("truncate loop %d: %v", loop, err))
	}
}
