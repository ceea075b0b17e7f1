package parser

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"glfuzz/internal/ast"
	"glfuzz/internal/diag"
	"glfuzz/internal/format"
	"glfuzz/internal/source"
)

var kindByExt = map[string]ast.ShaderKind{
	".frag": ast.ShaderFragment,
	".vert": ast.ShaderVertex,
	".comp": ast.ShaderCompute,
}

func TestTestdataShadersRoundTrip(t *testing.T) {
	root := filepath.Join("..", "..", "testdata", "shaders")
	var seen int
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		kind, ok := kindByExt[filepath.Ext(path)]
		if !ok {
			return nil
		}
		seen++
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			prog, err := ParseString(path, string(src), kind)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			first := format.Program(prog, format.Options{})
			again, err := ParseString("printed", string(first), kind)
			if err != nil {
				t.Fatalf("reparse of printed program: %v\n%s", err, first)
			}
			if second := format.Program(again, format.Options{}); !bytes.Equal(first, second) {
				t.Fatalf("printing is not a fixed point:\n%s\n---\n%s", first, second)
			}
		})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if seen == 0 {
		t.Fatal("no shaders under testdata")
	}
}

func TestParseVersion(t *testing.T) {
	prog, err := ParseString("v.frag", "#version 300 es\nprecision highp float;\nout vec4 c;\nvoid main() { c = vec4(0.0); }\n", ast.ShaderFragment)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(prog.Version, "300 es") {
		t.Errorf("version = %q", prog.Version)
	}
	if _, _, ok := prog.LookupFunction("main"); !ok {
		t.Error("main not found")
	}
}

func TestParseReportsErrors(t *testing.T) {
	cases := map[string]string{
		"missing semicolon": "void main() { int x = 1 }",
		"unclosed call":     "float f(float",
		"late version":      "float g;\n#version 100\n",
		"stray token":       "void main() { ) }",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseString("bad.frag", src, ast.ShaderFragment)
			if err == nil {
				t.Fatal("expected a parse error")
			}
			if !strings.Contains(err.Error(), "SYN") {
				t.Errorf("error lacks a syntax code: %v", err)
			}
		})
	}
}

func TestParseStopsAtMaxErrors(t *testing.T) {
	src := strings.Repeat("void main() { ) }\n", 50)
	fset := source.NewFileSet()
	id := fset.AddVirtual("many.frag", []byte(src))
	bag := diag.NewBag(1000)
	ParseFile(fset, id, Options{Kind: ast.ShaderFragment, MaxErrors: 3, Reporter: &diag.BagReporter{Bag: bag}})
	if !bag.HasErrors() {
		t.Fatal("no errors reported")
	}
	if bag.Len() > 10 {
		t.Fatalf("reported %d diagnostics with MaxErrors=3", bag.Len())
	}
}
