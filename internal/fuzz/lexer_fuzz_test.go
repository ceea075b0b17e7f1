package fuzztests

import (
	"testing"

	"glfuzz/internal/diag"
	"glfuzz/internal/lexer"
	"glfuzz/internal/source"
	"glfuzz/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.frag", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(64)
		lx := lexer.New(file, lexer.Options{Reporter: &diag.BagReporter{Bag: bag}})
		// каждый токен продвигает курсор, так что токенов не больше, чем байт
		for n := 0; ; n++ {
			tok := lx.Next()
			if tok.Kind == token.EOF {
				break
			}
			if n > len(input) {
				t.Fatalf("lexer produced more tokens than input bytes")
			}
		}
	})
}
