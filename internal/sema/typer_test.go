package sema

import (
	"testing"

	"glfuzz/internal/ast"
	"glfuzz/internal/parser"
	"glfuzz/internal/symbols"
	"glfuzz/internal/types"
)

// lastExpr parses src and returns the expression of the last statement of
// main together with the scope in front of it.
func lastExpr(t *testing.T, src string) (*ast.Program, *symbols.Scope, ast.ExprID) {
	t.Helper()
	prog, err := parser.ParseString("test.frag", src, ast.ShaderFragment)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, fn, ok := prog.LookupFunction("main")
	if !ok {
		t.Fatalf("no main")
	}
	body, _ := prog.Stmts.Block(fn.Body)
	last := body.Stmts[len(body.Stmts)-1]
	sc, _, ok := symbols.ScopeAt(prog, last)
	if !ok {
		t.Fatalf("no scope")
	}
	es, ok := prog.Stmts.Expr(last)
	if !ok {
		t.Fatalf("last statement is not an expression")
	}
	return prog, sc, es.Expr
}

func TestTypeOf(t *testing.T) {
	vec3 := types.Vector(types.KindFloat, 3)
	tests := []struct {
		name string
		src  string
		want types.Type
	}{
		{"literal", "void main() { 1u; }", types.Uint},
		{"uniform", "uniform vec3 c; void main() { c; }", vec3},
		{"swizzle", "uniform vec4 c; void main() { c.xy; }", types.Vector(types.KindFloat, 2)},
		{"scalar times vector", "void main() { vec3 v; 2.0 * v; }", vec3},
		{"matrix times vector", "void main() { mat3 m; vec3 v; m * v; }", vec3},
		{"comparison", "void main() { int a; a < 3; }", types.Bool},
		{"array element", "void main() { float a[4]; a[1]; }", types.Float},
		{"array", "void main() { float a[4]; a; }", types.Type{Kind: types.KindFloat, ArrayLen: 4}},
		{"matrix column", "void main() { mat2 m; m[0]; }", types.Vector(types.KindFloat, 2)},
		{"struct field", "struct S { ivec2 p; }; void main() { S s; s.p.y; }", types.Int},
		{"constructor", "void main() { vec3(1.0); }", vec3},
		{"user function", "uint f() { return 1u; } void main() { f(); }", types.Uint},
		{"builtin", "void main() { vec3 v; length(v); }", types.Float},
		{"builtin same as arg", "void main() { vec3 v; normalize(v); }", vec3},
		{"ternary", "void main() { bool b; b ? 1 : 2; }", types.Int},
		{"unknown", "void main() { nope; }", types.Invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, sc, e := lastExpr(t, tt.src)
			if got := TypeOf(prog, sc, e); got != tt.want {
				t.Fatalf("TypeOf = %v (%+v), want %v", got, got, tt.want)
			}
		})
	}
}

func TestTypeOfDropsQualifiers(t *testing.T) {
	prog, sc, e := lastExpr(t, "const int k = 3; void main() { k; }")
	if got := TypeOf(prog, sc, e); got != types.Int {
		t.Fatalf("TypeOf = %+v", got)
	}
}

func TestFoldConst(t *testing.T) {
	tests := []struct {
		src  string
		want Const
		ok   bool
	}{
		{"1 + 2 * 3;", Const{Kind: types.KindInt, Int: 7}, true},
		{"(10 - 4) / 2;", Const{Kind: types.KindInt, Int: 3}, true},
		{"1 << 4 | 3;", Const{Kind: types.KindInt, Int: 19}, true},
		{"0x0F & 6 ^ 1;", Const{Kind: types.KindInt, Int: 7}, true},
		{"-(3);", Const{Kind: types.KindInt, Int: -3}, true},
		{"~0u;", Const{Kind: types.KindUint, Int: 0xFFFFFFFF}, true},
		{"true ^^ false && true;", Const{Kind: types.KindBool, Bool: true}, true},
		{"!true || false;", Const{Kind: types.KindBool}, true},
		{"1 / 0;", Const{}, false},
		{"2147483647 + 1;", Const{}, false},
		{"1 + 2u;", Const{}, false},
		{"1.0 + 2.0;", Const{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog, _, e := lastExpr(t, "void main() { "+tt.src+" }")
			got, ok := FoldConst(prog.Builder, e)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Fatalf("FoldConst = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
