package format

import (
	"fmt"
	"strings"

	"glfuzz/internal/ast"
	"glfuzz/internal/types"
)

func typeString(t types.Type) string {
	s := t.Quals.String() + t.String()
	if t.ArrayLen != 0 {
		s += fmt.Sprintf("[%d]", t.ArrayLen)
	}
	return s
}

func (pr *printer) declarators(vars []ast.Declarator) string {
	parts := make([]string, 0, len(vars))
	for _, d := range vars {
		s := d.Name
		if d.ArrayLen != 0 {
			s += fmt.Sprintf("[%d]", d.ArrayLen)
		}
		if d.Init.IsValid() {
			s += " = " + pr.exprPrec(d.Init, 1)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func (pr *printer) varDecl(vd *ast.VarDecl) string {
	return typeString(vd.Type) + " " + pr.declarators(vd.Vars) + ";"
}

func (pr *printer) structDef(def *types.StructDef) {
	pr.w.Line("struct " + def.Name + " {")
	pr.w.IndentPush()
	for _, f := range def.Fields {
		ft := f.Type
		n := ft.ArrayLen
		ft.ArrayLen = 0
		line := typeString(ft) + " " + f.Name
		if n != 0 {
			line += fmt.Sprintf("[%d]", n)
		}
		pr.w.Line(line + ";")
	}
	pr.w.IndentPop()
	pr.w.WriteString("}")
}

func (pr *printer) decl(id ast.DeclID) {
	decl := pr.b.Decls.Get(id)
	switch decl.Kind {
	case ast.DeclVars:
		vd, _ := pr.b.Decls.VarsOf(id)
		pr.w.Line(pr.varDecl(vd))
	case ast.DeclStruct:
		def, _ := pr.b.Decls.Struct(id)
		pr.structDef(def)
		pr.w.Line(";")
	case ast.DeclPrecision:
		pd, _ := pr.b.Decls.Precision(id)
		pr.w.Line("precision " + pd.Precision.String() + " " + typeString(pd.Type) + ";")
	case ast.DeclFunc:
		fn, _ := pr.b.Decls.Func(id)
		params := make([]string, 0, len(fn.Params))
		for _, p := range fn.Params {
			pt := p.Type
			n := pt.ArrayLen
			pt.ArrayLen = 0
			s := typeString(pt)
			if p.Name != "" {
				s += " " + p.Name
			}
			if n != 0 {
				s += fmt.Sprintf("[%d]", n)
			}
			params = append(params, s)
		}
		sig := typeString(fn.Result) + " " + fn.Name + "(" + strings.Join(params, ", ") + ")"
		if fn.IsPrototype() {
			pr.w.Line(sig + ";")
			return
		}
		pr.w.WriteString(sig + " ")
		pr.stmt(fn.Body)
	}
}
