package format

import (
	"glfuzz/internal/ast"
)

// stmt печатает оператор, начиная с текущей позиции, и завершает строку.
func (pr *printer) stmt(id ast.StmtID) {
	b, w := pr.b, pr.w
	st := b.Stmts.Get(id)
	if st == nil {
		w.Line(";")
		return
	}
	switch st.Kind {
	case ast.StmtBlock:
		blk, _ := b.Stmts.Block(id)
		w.Line("{")
		w.IndentPush()
		for _, s := range blk.Stmts {
			pr.stmt(s)
		}
		w.IndentPop()
		w.Line("}")
	case ast.StmtDecl, ast.StmtExpr, ast.StmtNull:
		w.Line(pr.simple(id))
	case ast.StmtStruct:
		sd, _ := b.Stmts.Struct(id)
		pr.structDef(&sd.Def)
		if len(sd.Vars) > 0 {
			w.WriteString(" " + pr.declarators(sd.Vars))
		}
		w.Line(";")
	case ast.StmtIf:
		ifs, _ := b.Stmts.If(id)
		w.WriteString("if (" + pr.expr(ifs.Cond) + ") ")
		pr.body(ifs.Then)
		for ifs.Else.IsValid() {
			w.WriteString("else ")
			next, isIf := b.Stmts.If(ifs.Else)
			if !isIf {
				pr.body(ifs.Else)
				break
			}
			w.WriteString("if (" + pr.expr(next.Cond) + ") ")
			pr.body(next.Then)
			ifs = next
		}
	case ast.StmtFor:
		fs, _ := b.Stmts.For(id)
		head := "for (" + pr.simple(fs.Init)
		if fs.Cond.IsValid() {
			head += " " + pr.expr(fs.Cond)
		}
		head += ";"
		if fs.Post.IsValid() {
			head += " " + pr.expr(fs.Post)
		}
		w.WriteString(head + ") ")
		pr.body(fs.Body)
	case ast.StmtWhile:
		ls, _ := b.Stmts.Loop(id)
		w.WriteString("while (" + pr.expr(ls.Cond) + ") ")
		pr.body(ls.Body)
	case ast.StmtDo:
		ls, _ := b.Stmts.Loop(id)
		w.WriteString("do ")
		pr.body(ls.Body)
		w.Line("while (" + pr.expr(ls.Cond) + ");")
	case ast.StmtSwitch:
		sw, _ := b.Stmts.Switch(id)
		w.WriteString("switch (" + pr.expr(sw.Expr) + ") ")
		pr.stmt(sw.Body)
	case ast.StmtCase:
		cs, _ := b.Stmts.Case(id)
		w.Line("case " + pr.expr(cs.Value) + ":")
	case ast.StmtDefault:
		w.Line("default:")
	case ast.StmtBreak:
		w.Line("break;")
	case ast.StmtContinue:
		w.Line("continue;")
	case ast.StmtDiscard:
		w.Line("discard;")
	case ast.StmtReturn:
		rs, _ := b.Stmts.Return(id)
		if rs.Value.IsValid() {
			w.Line("return " + pr.expr(rs.Value) + ";")
		} else {
			w.Line("return;")
		}
	}
}

// body печатает ветку или тело цикла: блок на той же строке, иначе с отступом.
func (pr *printer) body(id ast.StmtID) {
	if pr.b.Stmts.Kind(id) == ast.StmtBlock {
		pr.stmt(id)
		return
	}
	pr.w.Newline()
	pr.w.IndentPush()
	pr.stmt(id)
	pr.w.IndentPop()
}

// simple renders a declaration, expression or null statement on one line.
func (pr *printer) simple(id ast.StmtID) string {
	switch pr.b.Stmts.Kind(id) {
	case ast.StmtDecl:
		vd, _ := pr.b.Stmts.Decl(id)
		return pr.varDecl(vd)
	case ast.StmtExpr:
		es, _ := pr.b.Stmts.Expr(id)
		return pr.expr(es.Expr) + ";"
	}
	return ";"
}
