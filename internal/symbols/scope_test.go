package symbols

import (
	"slices"
	"testing"

	"glfuzz/internal/ast"
	"glfuzz/internal/parser"
	"glfuzz/internal/types"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseString("test.frag", src, ast.ShaderFragment)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog
}

func TestScopeShadowingAndSnapshot(t *testing.T) {
	g := New(ScopeGlobal, nil)
	g.Declare(Symbol{Name: "x", Type: types.Float, Kind: SymbolGlobal})
	inner := g.Push(ScopeBlock)
	inner.Declare(Symbol{Name: "x", Type: types.Int, Kind: SymbolLocal})

	sym, ok := inner.Lookup("x")
	if !ok || sym.Type != types.Int {
		t.Fatalf("inner x = %v, %v", sym, ok)
	}
	if inner.IsGlobal("x") {
		t.Fatalf("shadowed x must not resolve globally")
	}

	snap := inner.Snapshot()
	inner.Declare(Symbol{Name: "y", Type: types.Bool, Kind: SymbolLocal})
	g.Declare(Symbol{Name: "z", Type: types.Bool, Kind: SymbolGlobal})
	if _, ok := snap.Lookup("y"); ok {
		t.Fatalf("snapshot sees a later local")
	}
	if _, ok := snap.Lookup("z"); ok {
		t.Fatalf("snapshot sees a later global")
	}
	if got := snap.Names(); !slices.Equal(got, []string{"x"}) {
		t.Fatalf("names = %v", got)
	}
}

func TestScopeAtSeesEarlierDeclarations(t *testing.T) {
	prog := mustParse(t, `#version 310 es
uniform float u;
void f(int p) {
    int a = 1;
    {
        float a = 2.0;
        a = a + 1.0;
    }
    a = a + p;
}
float late;
`)
	_, fn, _ := prog.LookupFunction("f")
	body, _ := prog.Stmts.Block(fn.Body)
	inner, _ := prog.Stmts.Block(body.Stmts[1])

	sc, owner, ok := ScopeAt(prog, inner.Stmts[1])
	if !ok {
		t.Fatalf("statement not found")
	}
	if prog.Decls.Get(owner).Kind != ast.DeclFunc {
		t.Fatalf("owner is not a function")
	}
	a, _ := sc.Lookup("a")
	if a.Type != types.Float {
		t.Fatalf("inner a has type %v", a.Type)
	}
	if _, ok := sc.Lookup("late"); ok {
		t.Fatalf("global declared after f is visible")
	}
	for _, name := range []string{"u", "p", "gl_FragCoord"} {
		if _, ok := sc.Lookup(name); !ok {
			t.Fatalf("%s not visible", name)
		}
	}

	sc, _, _ = ScopeAt(prog, body.Stmts[0])
	if _, ok := sc.Lookup("a"); ok {
		t.Fatalf("a visible before its declaration")
	}
	sc, _, _ = ScopeAt(prog, body.Stmts[2])
	if a, _ := sc.Lookup("a"); a.Type != types.Int {
		t.Fatalf("outer a has type %v", a.Type)
	}
}

func TestForInitIsScopedToLoop(t *testing.T) {
	prog := mustParse(t, `void main() {
    for (int i = 0; i < 4; i++) {
        i;
    }
    int j;
}
`)
	_, fn, _ := prog.LookupFunction("main")
	body, _ := prog.Stmts.Block(fn.Body)
	loop, _ := prog.Stmts.For(body.Stmts[0])
	blk, _ := prog.Stmts.Block(loop.Body)

	sc, _, _ := ScopeAt(prog, blk.Stmts[0])
	if _, ok := sc.Lookup("i"); !ok {
		t.Fatalf("loop counter not visible in body")
	}
	sc, _, _ = ScopeAt(prog, body.Stmts[1])
	if _, ok := sc.Lookup("i"); ok {
		t.Fatalf("loop counter leaked")
	}
}

func TestStructsVisible(t *testing.T) {
	prog := mustParse(t, `struct S { int a; float b; };
void main() {
    struct T { S s; } t;
    t.s.a = 1;
}
`)
	_, fn, _ := prog.LookupFunction("main")
	body, _ := prog.Stmts.Block(fn.Body)
	sc, _, _ := ScopeAt(prog, body.Stmts[1])

	var names []string
	for _, d := range sc.Structs() {
		names = append(names, d.Name)
	}
	if !slices.Equal(names, []string{"S", "T"}) {
		t.Fatalf("structs = %v", names)
	}
	if sym, ok := sc.Lookup("t"); !ok || sym.Type != types.Struct("T") {
		t.Fatalf("t = %v", sym)
	}
}

func TestStructsInnerShadowsOuter(t *testing.T) {
	g := New(ScopeGlobal, nil)
	g.DeclareStruct(types.StructDef{Name: "S", Fields: []types.Field{{Name: "a", Type: types.Int}}})
	g.DeclareStruct(types.StructDef{Name: "U", Fields: []types.Field{{Name: "c", Type: types.Bool}}})
	inner := g.Push(ScopeBlock)
	inner.DeclareStruct(types.StructDef{Name: "S", Fields: []types.Field{{Name: "b", Type: types.Float}}})

	defs := inner.Structs()
	if len(defs) != 2 || defs[0].Name != "S" || defs[1].Name != "U" {
		t.Fatalf("structs = %v", defs)
	}
	if _, ok := defs[0].Field("b"); !ok {
		t.Fatalf("outer S kept over the inner one: %v", defs[0])
	}
	if def, ok := inner.LookupStruct("S"); !ok || len(def.Fields) != 1 || def.Fields[0].Name != "b" {
		t.Fatalf("LookupStruct(S) = %v, %v", def, ok)
	}
}
