package symbols

import (
	"glfuzz/internal/ast"
	"glfuzz/internal/types"
)

// DeclareGlobal makes the variables and structs of a top-level declaration
// visible in s. Functions and precision statements declare nothing.
func DeclareGlobal(s *Scope, prog *ast.Program, id ast.DeclID) {
	switch prog.Decls.Get(id).Kind {
	case ast.DeclVars:
		vd, _ := prog.Decls.VarsOf(id)
		declareVars(s, vd, SymbolGlobal, ast.NoStmtID)
	case ast.DeclStruct:
		def, _ := prog.Decls.Struct(id)
		s.DeclareStruct(def.Clone())
	}
}

// DeclareParams adds the named parameters of fn.
func DeclareParams(s *Scope, fn *ast.FuncDecl) {
	for _, p := range fn.Params {
		if p.Name == "" {
			continue
		}
		s.Declare(Symbol{Name: p.Name, Type: p.Type, Kind: SymbolParam})
	}
}

// DeclareLocal adds whatever the statement id declares. It reports whether
// anything was declared.
func DeclareLocal(s *Scope, b *ast.Builder, id ast.StmtID) bool {
	switch b.Stmts.Kind(id) {
	case ast.StmtDecl:
		vd, _ := b.Stmts.Decl(id)
		declareVars(s, vd, SymbolLocal, id)
		return true
	case ast.StmtStruct:
		sd, _ := b.Stmts.Struct(id)
		s.DeclareStruct(sd.Def.Clone())
		vd := ast.VarDecl{Type: types.Struct(sd.Def.Name), Vars: sd.Vars}
		declareVars(s, &vd, SymbolLocal, id)
		return true
	}
	return false
}

func declareVars(s *Scope, vd *ast.VarDecl, kind SymbolKind, decl ast.StmtID) {
	for i, d := range vd.Vars {
		s.Declare(Symbol{Name: d.Name, Type: vd.TypeOf(i), Kind: kind, Decl: decl})
	}
}
