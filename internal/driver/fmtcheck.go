package driver

import (
	"bytes"

	"glfuzz/internal/ast"
	"glfuzz/internal/format"
	"glfuzz/internal/parser"
)

// RunFmtCheck prints prog, re-parses the output and prints it again. The
// printer must reach a fixed point and keep the kinds of top-level items;
// generated variants rely on both.
func RunFmtCheck(prog *ast.Program) (success bool, msg string) {
	first := format.Program(prog, format.Options{})
	again, err := parser.ParseString("fmt-check", string(first), prog.Kind)
	if err != nil {
		return false, "fmt-check: reparse failed: " + err.Error()
	}
	if !sameTopItemKinds(prog, again) {
		return false, "fmt-check: top-level item kinds differ after round-trip"
	}
	if second := format.Program(again, format.Options{}); !bytes.Equal(first, second) {
		return false, "fmt-check: printing is not a fixed point"
	}
	return true, "fmt-check: OK"
}

func sameTopItemKinds(a, b *ast.Program) bool {
	if len(a.Items) != len(b.Items) {
		return false
	}
	for i := range a.Items {
		if a.Decls.Get(a.Items[i]).Kind != b.Decls.Get(b.Items[i]).Kind {
			return false
		}
	}
	return true
}
