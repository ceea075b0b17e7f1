package symbols

import "glfuzz/internal/ast"

// VisitFunc is called for every statement of every function body with the
// live scope valid immediately before that statement. The scope must be
// snapshotted if kept. Returning false stops the walk.
type VisitFunc func(stmt ast.StmtID, fn ast.DeclID, scope *Scope) bool

// Walk visits the function bodies of prog in declaration order, threading
// scopes the way the compiler sees them: globals are visible only after
// their declaration, block-local declarations only after their statement.
func Walk(prog *ast.Program, visit VisitFunc) {
	global := NewGlobalScope(prog.Kind)
	for _, d := range prog.Items {
		decl := prog.Decls.Get(d)
		if decl.Kind != ast.DeclFunc {
			DeclareGlobal(global, prog, d)
			continue
		}
		fn, _ := prog.Decls.Func(d)
		if fn.IsPrototype() {
			continue
		}
		fs := EnterFunction(global, fn)
		if !walkStmt(prog.Builder, fn.Body, d, fs, visit) {
			return
		}
	}
}

// EnterFunction opens the parameter scope of fn.
func EnterFunction(global *Scope, fn *ast.FuncDecl) *Scope {
	fs := global.Push(ScopeFunction)
	DeclareParams(fs, fn)
	return fs
}

// EnterBlock returns the scope for the statements of a block.
func EnterBlock(s *Scope, blk *ast.StmtBlockData) *Scope {
	if blk.NewScope {
		return s.Push(ScopeBlock)
	}
	return s
}

func walkStmt(b *ast.Builder, id ast.StmtID, fn ast.DeclID, s *Scope, visit VisitFunc) bool {
	if !id.IsValid() {
		return true
	}
	if !visit(id, fn, s) {
		return false
	}
	switch b.Stmts.Kind(id) {
	case ast.StmtBlock:
		blk, _ := b.Stmts.Block(id)
		inner := EnterBlock(s, blk)
		for _, c := range append([]ast.StmtID(nil), blk.Stmts...) {
			if !walkStmt(b, c, fn, inner, visit) {
				return false
			}
			DeclareLocal(inner, b, c)
		}
	case ast.StmtIf:
		ifs, _ := b.Stmts.If(id)
		then, els := ifs.Then, ifs.Else
		if !walkStmt(b, then, fn, s, visit) {
			return false
		}
		return walkStmt(b, els, fn, s, visit)
	case ast.StmtFor:
		fs, _ := b.Stmts.For(id)
		init, body := fs.Init, fs.Body
		inner := s.Push(ScopeLoop)
		if !walkStmt(b, init, fn, inner, visit) {
			return false
		}
		if init.IsValid() {
			DeclareLocal(inner, b, init)
		}
		return walkStmt(b, body, fn, inner, visit)
	case ast.StmtWhile, ast.StmtDo:
		body, _ := b.Stmts.LoopBody(id)
		return walkStmt(b, body, fn, s, visit)
	case ast.StmtSwitch:
		sw, _ := b.Stmts.Switch(id)
		return walkStmt(b, sw.Body, fn, s, visit)
	}
	return true
}

// ScopeAt returns a snapshot of the scope valid immediately before target
// together with the function containing it.
func ScopeAt(prog *ast.Program, target ast.StmtID) (*Scope, ast.DeclID, bool) {
	var (
		found *Scope
		owner ast.DeclID
	)
	Walk(prog, func(stmt ast.StmtID, fn ast.DeclID, s *Scope) bool {
		if stmt == target {
			found, owner = s.Snapshot(), fn
			return false
		}
		return true
	})
	return found, owner, found != nil
}

// GlobalScope returns the scope holding built-ins and every top-level
// declaration of prog.
func GlobalScope(prog *ast.Program) *Scope {
	global := NewGlobalScope(prog.Kind)
	for _, d := range prog.Items {
		DeclareGlobal(global, prog, d)
	}
	return global
}
