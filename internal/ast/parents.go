package ast

import "errors"

// ErrNotInTree is returned when a statement has no owner in the program.
var ErrNotInTree = errors.New("statement is not attached to the program")

// Parents is a snapshot of the statement ownership of a program. It goes
// stale as soon as the tree is edited.
type Parents struct {
	parent map[StmtID]StmtID
	fn     map[StmtID]DeclID
}

// Parents computes the owner of every statement reachable from a function body.
func (p *Program) Parents() *Parents {
	ps := &Parents{
		parent: make(map[StmtID]StmtID),
		fn:     make(map[StmtID]DeclID),
	}
	for _, d := range p.Functions() {
		fn, _ := p.Decls.Func(d)
		ps.fn[fn.Body] = d
		p.WalkStmts(fn.Body, func(s StmtID) bool {
			for _, c := range p.StmtChildren(s) {
				ps.parent[c] = s
			}
			return true
		})
	}
	return ps
}

// Parent returns the statement owning id. Function bodies report
// NoStmtID with ok set.
func (ps *Parents) Parent(id StmtID) (StmtID, bool) {
	if par, ok := ps.parent[id]; ok {
		return par, true
	}
	if _, ok := ps.fn[id]; ok {
		return NoStmtID, true
	}
	return NoStmtID, false
}

// EnclosingFunction walks up to the function whose body contains id.
func (ps *Parents) EnclosingFunction(id StmtID) DeclID {
	for {
		if d, ok := ps.fn[id]; ok {
			return d
		}
		par, ok := ps.parent[id]
		if !ok {
			return NoDeclID
		}
		id = par
	}
}

// ReplaceStmt swaps old for repl in whatever owns old.
func (p *Program) ReplaceStmt(ps *Parents, old, repl StmtID) error {
	par, ok := ps.Parent(old)
	if !ok {
		return ErrNotInTree
	}
	if !par.IsValid() {
		fn, _ := p.Decls.Func(ps.fn[old])
		fn.Body = repl
		return nil
	}
	if !p.ReplaceChild(par, old, repl) {
		return ErrNotInTree
	}
	return nil
}
