package fuzztests

import (
	"context"
	"testing"
	"time"

	"glfuzz/internal/ast"
	"glfuzz/internal/config"
	"glfuzz/internal/controlflow"
	"glfuzz/internal/diag"
	"glfuzz/internal/format"
	"glfuzz/internal/parser"
	"glfuzz/internal/rng"
	"glfuzz/internal/safety"
	"glfuzz/internal/source"
	"glfuzz/internal/transform"
)

// parseTimeout is the maximum time allowed for parsing a single input.
// If parsing takes longer, it indicates a potential infinite loop.
const parseTimeout = 5 * time.Second

func parseBytes(input []byte) (*ast.Program, *diag.Bag) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("fuzz.frag", input)
	bag := diag.NewBag(128)
	prog := parser.ParseFile(fs, fileID, parser.Options{
		Kind:      ast.ShaderFragment,
		Reporter:  &diag.BagReporter{Bag: bag},
		MaxErrors: 128,
	})
	return prog, bag
}

// FuzzParserNoHang tests that the parser doesn't hang on any input.
func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)

	// Add specific edge cases for error recovery
	f.Add([]byte("void main() { int x = 1\nint y = 2; }")) // missing semicolon
	f.Add([]byte("void main() { { { { } } } }"))           // deeply nested blocks
	f.Add([]byte("void main() { switch (x) { } }"))        // empty switch
	f.Add([]byte("void main() { for (int i = 0 i < 10 i++) {} }"))
	f.Add([]byte("struct { float x; }"))
	f.Add([]byte("float f(float"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = parseBytes(input)
		}()

		select {
		case <-done:
		case <-time.After(parseTimeout):
			t.Fatalf("parser hang detected: parsing took longer than %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

// FuzzPassesKeepOutputParsable runs the guarded control-flow passes and
// the safety net over every input that parses cleanly; the printed result
// must parse again.
func FuzzPassesKeepOutputParsable(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		prog, bag := parseBytes(clampInput(input))
		if bag.HasErrors() {
			return
		}
		safety.MakeArrayAccessesInBounds(prog)
		safety.TruncateLoops(prog, 4, "fuzz", true)

		env := &transform.Env{
			Prog:   prog,
			Rand:   rng.New(int64(len(input))),
			Params: config.DefaultParams(ast.ShaderFragment),
			Probs:  config.AggressiveControlFlow(),
		}
		pipeline := transform.Pipeline{Steps: []transform.Transformation{
			controlflow.AddJumps, controlflow.AddDeadOutputWrites, controlflow.AddLiveOutputWrites,
			controlflow.WrapStatements, controlflow.AddSwitches,
		}}
		if _, err := pipeline.Run(context.Background(), env); err != nil {
			t.Fatalf("passes: %v", err)
		}
		out := format.Program(prog, format.Options{})
		if _, err := parser.ParseString("out.frag", string(out), ast.ShaderFragment); err != nil {
			t.Fatalf("output does not parse: %v\n%s", err, out)
		}
	})
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
