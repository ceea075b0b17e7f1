package safety

import (
	"glfuzz/internal/ast"
	"glfuzz/internal/sema"
	"glfuzz/internal/types"
)

// isShortLoop recognises
//
//	for (i = c0; i <cmp> c1; i += step)
//
// (and the declaring, mirrored-comparison, ++/-- and -= spellings) with
// c0, c1 and step constant, and reports whether it provably runs fewer
// than limit iterations. The body must not write i.
func isShortLoop(b *ast.Builder, loop ast.StmtID, limit int) bool {
	fs, ok := b.Stmts.For(loop)
	if !ok {
		return false
	}
	name, start, ok := loopStart(b, fs.Init)
	if !ok {
		return false
	}
	bound, op, ok := loopBound(b, fs.Cond, name)
	if !ok {
		return false
	}
	step, ok := loopStep(b, fs.Post, name)
	if !ok || step == 0 {
		return false
	}
	if writes(b, fs.Body, name) {
		return false
	}
	n, ok := tripCount(start, bound, step, op)
	return ok && n < int64(limit)
}

func loopStart(b *ast.Builder, init ast.StmtID) (string, int64, bool) {
	if vd, ok := b.Stmts.Decl(init); ok {
		if len(vd.Vars) != 1 || vd.Type.Unqualified() != types.Int || vd.Vars[0].ArrayLen != 0 {
			return "", 0, false
		}
		c, ok := sema.FoldConst(b, vd.Vars[0].Init)
		if !ok || c.Kind != types.KindInt {
			return "", 0, false
		}
		return vd.Vars[0].Name, c.Int, true
	}
	es, ok := b.Stmts.Expr(init)
	if !ok {
		return "", 0, false
	}
	bin, ok := b.Exprs.Binary(b.Exprs.Unparen(es.Expr))
	if !ok || bin.Op != ast.ExprBinaryAssign {
		return "", 0, false
	}
	id, ok := b.Exprs.Ident(bin.Left)
	if !ok {
		return "", 0, false
	}
	c, ok := sema.FoldConst(b, bin.Right)
	if !ok || c.Kind != types.KindInt {
		return "", 0, false
	}
	return id.Name, c.Int, true
}

// loopBound normalises the condition to "name op bound".
func loopBound(b *ast.Builder, cond ast.ExprID, name string) (int64, ast.ExprBinaryOp, bool) {
	bin, ok := b.Exprs.Binary(b.Exprs.Unparen(cond))
	if !ok {
		return 0, 0, false
	}
	op := bin.Op
	switch op {
	case ast.ExprBinaryLess, ast.ExprBinaryLessEq, ast.ExprBinaryGreater, ast.ExprBinaryGreaterEq:
	default:
		return 0, 0, false
	}
	left, right := b.Exprs.Unparen(bin.Left), b.Exprs.Unparen(bin.Right)
	if !isIdent(b, left, name) {
		if !isIdent(b, right, name) {
			return 0, 0, false
		}
		left, right = right, left
		op = mirror(op)
	}
	c, ok := sema.FoldConst(b, right)
	if !ok || c.Kind != types.KindInt {
		return 0, 0, false
	}
	return c.Int, op, true
}

func mirror(op ast.ExprBinaryOp) ast.ExprBinaryOp {
	switch op {
	case ast.ExprBinaryLess:
		return ast.ExprBinaryGreater
	case ast.ExprBinaryLessEq:
		return ast.ExprBinaryGreaterEq
	case ast.ExprBinaryGreater:
		return ast.ExprBinaryLess
	}
	return ast.ExprBinaryLessEq
}

func loopStep(b *ast.Builder, post ast.ExprID, name string) (int64, bool) {
	post = b.Exprs.Unparen(post)
	if un, ok := b.Exprs.Unary(post); ok {
		if !isIdent(b, b.Exprs.Unparen(un.Operand), name) {
			return 0, false
		}
		switch un.Op {
		case ast.ExprUnaryPreInc, ast.ExprUnaryPostInc:
			return 1, true
		case ast.ExprUnaryPreDec, ast.ExprUnaryPostDec:
			return -1, true
		}
		return 0, false
	}
	bin, ok := b.Exprs.Binary(post)
	if !ok || !isIdent(b, b.Exprs.Unparen(bin.Left), name) {
		return 0, false
	}
	c, ok := sema.FoldConst(b, bin.Right)
	if !ok || c.Kind != types.KindInt {
		return 0, false
	}
	switch bin.Op {
	case ast.ExprBinaryAddAssign:
		return c.Int, true
	case ast.ExprBinarySubAssign:
		return -c.Int, true
	}
	return 0, false
}

// tripCount is the number of iterations of "for (i = start; i op bound;
// i += step)"; ok is false for loops that never leave.
func tripCount(start, bound, step int64, op ast.ExprBinaryOp) (int64, bool) {
	switch op {
	case ast.ExprBinaryLess, ast.ExprBinaryLessEq:
		if op == ast.ExprBinaryLessEq {
			bound++
		}
		if start >= bound {
			return 0, true
		}
		if step <= 0 {
			return 0, false
		}
		return (bound - start + step - 1) / step, true
	default:
		if op == ast.ExprBinaryGreaterEq {
			bound--
		}
		if start <= bound {
			return 0, true
		}
		if step >= 0 {
			return 0, false
		}
		return (start - bound - step - 1) / -step, true
	}
}

func isIdent(b *ast.Builder, id ast.ExprID, name string) bool {
	d, ok := b.Exprs.Ident(id)
	return ok && d.Name == name
}

// writes reports whether anything below root assigns to, increments or
// decrements name, or redeclares it.
func writes(b *ast.Builder, root ast.StmtID, name string) bool {
	found := false
	b.WalkStmts(root, func(s ast.StmtID) bool {
		if vd, ok := b.Stmts.Decl(s); ok {
			for _, d := range vd.Vars {
				if d.Name == name {
					found = true
				}
			}
		}
		return !found
	})
	if found {
		return true
	}
	b.WalkExprs(root, func(e ast.ExprID) bool {
		var target ast.ExprID
		if bin, ok := b.Exprs.Binary(e); ok && bin.Op.IsAssign() {
			target = bin.Left
		} else if un, ok := b.Exprs.Unary(e); ok && un.Op.HasSideEffect() {
			target = un.Operand
		} else if call, ok := b.Exprs.Call(e); ok && !pureCallee(call.Callee) {
			// аргумент может быть out-параметром
			for _, a := range call.Args {
				if rootIdent(b, a) == name {
					found = true
				}
			}
			return !found
		} else {
			return !found
		}
		if rootIdent(b, target) == name {
			found = true
		}
		return !found
	})
	return found
}

// rootIdent strips indexing, member access and parentheses from an lvalue.
func rootIdent(b *ast.Builder, id ast.ExprID) string {
	for {
		id = b.Exprs.Unparen(id)
		if d, ok := b.Exprs.Index(id); ok {
			id = d.Target
			continue
		}
		if d, ok := b.Exprs.Member(id); ok {
			id = d.Target
			continue
		}
		if d, ok := b.Exprs.Ident(id); ok {
			return d.Name
		}
		return ""
	}
}

func pureCallee(name string) bool {
	if _, ok := types.LookupBasic(name); ok {
		return true
	}
	return sema.IsBuiltinFunction(name)
}
