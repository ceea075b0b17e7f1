package format

import (
	"glfuzz/internal/ast"
)

type Options struct {
	IndentWidth int
	UseTabs     bool
	// Prelude is emitted right after the #version line (marker macro
	// definitions, for instance).
	Prelude string
}

func (o Options) withDefaults() Options {
	if o.IndentWidth == 0 {
		o.IndentWidth = 4
	}
	return o
}

type printer struct {
	b *ast.Builder
	w *Writer
}

// Program renders a whole translation unit.
func Program(prog *ast.Program, opt Options) []byte {
	w := NewWriter(opt)
	pr := printer{b: prog.Builder, w: w}
	if prog.Version != "" {
		w.Line(prog.Version)
	}
	if opt.Prelude != "" {
		w.WriteString(opt.Prelude)
		w.Newline()
	}
	for i, d := range prog.Items {
		if i > 0 && prog.Decls.Get(d).Kind == ast.DeclFunc {
			w.Newline()
			w.buf = append(w.buf, '\n')
		}
		pr.decl(d)
	}
	return w.Bytes()
}

// Stmt renders a single statement subtree; handy in tests and traces.
func Stmt(b *ast.Builder, id ast.StmtID) string {
	w := NewWriter(Options{})
	pr := printer{b: b, w: w}
	pr.stmt(id)
	return string(w.Bytes())
}

// Expr renders a single expression.
func Expr(b *ast.Builder, id ast.ExprID) string {
	pr := printer{b: b}
	return pr.expr(id)
}
