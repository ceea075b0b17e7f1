package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxFuzzInput = 1 << 16  // 64 KiB
	maxSeedBytes = 64 << 10 // 64 KiB: ограничение для тестового корпуса
)

// inlineSeeds cover constructs the testdata shaders do not.
var inlineSeeds = []string{
	"void main() { }",
	"int f(int x) { return x; } void main() { int a = f(1); }",
	"void main() { int i = 0; do { i++; } while (i < 3); }",
	"void main() { switch (1) { case 0: break; default: discard; } }",
	"struct S { float x; } s; void main() { s.x = 1.0; }",
	"void main() { float a[4]; a[int(gl_FragCoord.x)] = 1.0; }",
	"void main() { for (int i = 0; i < 2; i++) if (i > 0) continue; else break; }",
	"#version 300 es\nout vec4 c;\nvoid main() { c = vec4(1.0); }",
}

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все шейдеры
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".frag", ".vert", ".comp":
		default:
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
