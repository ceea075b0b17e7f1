package format

import (
	"strings"
	"testing"

	"glfuzz/internal/ast"
	"glfuzz/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseString("t.frag", src, ast.ShaderFragment)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog
}

func TestIndentOptions(t *testing.T) {
	prog := mustParse(t, "void main() { if (true) { int a; } }")
	cases := []struct {
		name string
		opt  Options
		want string
	}{
		{"default", Options{}, "\n        int a;\n"},
		{"two", Options{IndentWidth: 2}, "\n    int a;\n"},
		{"tabs", Options{UseTabs: true}, "\n\t\tint a;\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := string(Program(prog, tc.opt)); !strings.Contains(got, tc.want) {
				t.Fatalf("missing %q in\n%s", tc.want, got)
			}
		})
	}
}

func TestPreludeFollowsVersion(t *testing.T) {
	prog := mustParse(t, "#version 100\nvoid main() { }\n")
	got := string(Program(prog, Options{Prelude: "#define X 1\n"}))
	if !strings.HasPrefix(got, "#version 100\n#define X 1\n") {
		t.Fatalf("prelude misplaced:\n%s", got)
	}
}

func TestFunctionsSeparatedByBlankLine(t *testing.T) {
	prog := mustParse(t, "float f() { return 1.0; }\nvoid main() { }\n")
	if got := string(Program(prog, Options{})); !strings.Contains(got, "}\n\nvoid main()") {
		t.Fatalf("no blank line between functions:\n%s", got)
	}
}

func TestExprParenthesizesByPrecedence(t *testing.T) {
	b := ast.NewProgram(ast.ShaderFragment).Builder
	e := b.Exprs
	sum := e.Bin(ast.ExprBinaryAdd, e.Var("b"), e.Var("c"))
	cases := []struct {
		id   ast.ExprID
		want string
	}{
		{e.Bin(ast.ExprBinaryMul, sum, e.Var("d")), "(b + c) * d"},
		{e.Bin(ast.ExprBinaryAdd, e.Var("d"), e.Bin(ast.ExprBinaryMul, e.Var("b"), e.Var("c"))), "d + b * c"},
		{e.Bin(ast.ExprBinaryAssign, e.Var("a"), sum), "a = b + c"},
		{e.Invoke("f", sum, e.Int("1")), "f(b + c, 1)"},
	}
	for _, tc := range cases {
		if got := Expr(b, tc.id); got != tc.want {
			t.Errorf("Expr = %q, want %q", got, tc.want)
		}
	}
}
