package donate

import "glfuzz/internal/ast"

// identVisit is called for every identifier of a fragment. bound is set
// when a declaration inside the fragment introduces the name at that
// point; inIndex when the identifier is part of the subscript of an index
// expression.
type identVisit func(id ast.ExprID, name string, bound, inIndex bool)

// scanner walks a fragment tracking the names it declares itself, with
// the block structure the compiler would see.
type scanner struct {
	b      *ast.Builder
	scopes []map[string]bool
	visit  identVisit
	index  int
}

func scanFragment(b *ast.Builder, root ast.StmtID, visit identVisit) {
	s := &scanner{b: b, visit: visit}
	s.push()
	s.stmt(root)
}

func (s *scanner) push() { s.scopes = append(s.scopes, make(map[string]bool)) }
func (s *scanner) pop()  { s.scopes = s.scopes[:len(s.scopes)-1] }

func (s *scanner) bind(name string) { s.scopes[len(s.scopes)-1][name] = true }

func (s *scanner) bound(name string) bool {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if s.scopes[i][name] {
			return true
		}
	}
	return false
}

func (s *scanner) declarators(vars []ast.Declarator) {
	for _, d := range vars {
		// инициализатор видит имена до объявления
		s.expr(d.Init)
		s.bind(d.Name)
	}
}

func (s *scanner) stmt(id ast.StmtID) {
	b := s.b
	switch b.Stmts.Kind(id) {
	case ast.StmtBlock:
		blk, _ := b.Stmts.Block(id)
		s.push()
		for _, c := range blk.Stmts {
			s.stmt(c)
		}
		s.pop()
	case ast.StmtDecl:
		vd, _ := b.Stmts.Decl(id)
		s.declarators(vd.Vars)
	case ast.StmtStruct:
		sd, _ := b.Stmts.Struct(id)
		s.declarators(sd.Vars)
	case ast.StmtFor:
		fs, _ := b.Stmts.For(id)
		s.push()
		s.stmt(fs.Init)
		s.expr(fs.Cond)
		s.expr(fs.Post)
		s.stmt(fs.Body)
		s.pop()
	case ast.StmtDo:
		ls, _ := b.Stmts.Loop(id)
		s.stmt(ls.Body)
		s.expr(ls.Cond)
	default:
		for _, e := range b.StmtExprs(id) {
			s.expr(e)
		}
		for _, c := range b.StmtChildren(id) {
			s.stmt(c)
		}
	}
}

func (s *scanner) expr(id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	b := s.b
	if d, ok := b.Exprs.Ident(id); ok {
		s.visit(id, d.Name, s.bound(d.Name), s.index > 0)
		return
	}
	if ix, ok := b.Exprs.Index(id); ok {
		target, index := ix.Target, ix.Index
		s.expr(target)
		s.index++
		s.expr(index)
		s.index--
		return
	}
	for _, c := range b.ExprChildren(id) {
		s.expr(c)
	}
}

// renameFree rewrites the identifiers of the fragment at root that are not
// bound inside it, according to names.
func renameFree(b *ast.Builder, root ast.StmtID, names map[string]string) {
	if len(names) == 0 {
		return
	}
	scanFragment(b, root, func(id ast.ExprID, name string, bound, _ bool) {
		if bound {
			return
		}
		if to, ok := names[name]; ok {
			d, _ := b.Exprs.Ident(id)
			d.Name = to
		}
	})
}
