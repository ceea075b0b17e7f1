package donate

import (
	"glfuzz/internal/ast"
	"glfuzz/internal/source"
)

// jumpRules says which statements of a donated fragment must go. Each
// removed statement is replaced by a null statement.
type jumpRules struct {
	keepBreak    bool // break not enclosed by a loop or switch of the fragment
	keepContinue bool // continue not enclosed by a loop of the fragment
	keepReturn   bool
	keepDiscard  bool
}

type sanitizer struct {
	b     *ast.Builder
	rules jumpRules
	loops int
	swits int
}

func sanitize(b *ast.Builder, root ast.StmtID, rules jumpRules) ast.StmtID {
	s := &sanitizer{b: b, rules: rules}
	return s.stmt(root)
}

// stmt returns the statement that replaces id.
func (s *sanitizer) stmt(id ast.StmtID) ast.StmtID {
	b := s.b
	kind := b.Stmts.Kind(id)
	switch kind {
	case ast.StmtBreak:
		if s.loops == 0 && s.swits == 0 && !s.rules.keepBreak {
			return b.Stmts.NewNull(source.Span{})
		}
		return id
	case ast.StmtContinue:
		if s.loops == 0 && !s.rules.keepContinue {
			return b.Stmts.NewNull(source.Span{})
		}
		return id
	case ast.StmtCase, ast.StmtDefault:
		if s.swits == 0 {
			return b.Stmts.NewNull(source.Span{})
		}
		return id
	case ast.StmtReturn:
		if !s.rules.keepReturn {
			return b.Stmts.NewNull(source.Span{})
		}
		return id
	case ast.StmtDiscard:
		if !s.rules.keepDiscard {
			return b.Stmts.NewNull(source.Span{})
		}
		return id
	}

	if kind.IsLoop() {
		s.loops++
		defer func() { s.loops-- }()
	}
	if kind == ast.StmtSwitch {
		s.swits++
		defer func() { s.swits-- }()
	}
	for _, c := range b.StmtChildren(id) {
		if repl := s.stmt(c); repl != c {
			b.ReplaceChild(id, c, repl)
		}
	}
	return id
}

// removeDiscards nulls every discard of prog.
func removeDiscards(prog *ast.Program) int {
	n := 0
	for _, d := range prog.Functions() {
		fn, _ := prog.Decls.Func(d)
		var found []ast.StmtID
		prog.WalkStmts(fn.Body, func(s ast.StmtID) bool {
			if prog.Stmts.Kind(s) == ast.StmtDiscard {
				found = append(found, s)
			}
			return true
		})
		if len(found) == 0 {
			continue
		}
		ps := prog.Parents()
		for _, s := range found {
			if err := prog.ReplaceStmt(ps, s, prog.Stmts.NewNull(source.Span{})); err == nil {
				n++
			}
		}
	}
	return n
}
