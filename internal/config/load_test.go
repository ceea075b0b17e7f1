package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"glfuzz/internal/ast"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadKeepsDefaultsForAbsentKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[generation]
avoid_long_loops = false
loop_limit_max = 9

[probabilities]
wrap_stmt = 55
`)
	cfg, err := Load(path, ast.ShaderVertex)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default(ast.ShaderVertex)
	want.Params.AvoidLongLoops = false
	want.Params.LoopLimitMax = 9
	want.Probabilities.WrapStmt = 55
	if cfg != want {
		t.Fatalf("cfg = %+v\nwant %+v", cfg, want)
	}
}

func TestLoadPresetThenOverride(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[generation]
shader_kind = "compute"

[probabilities]
preset = "aggressive"
switchify = 0
`)
	cfg, err := Load(path, ast.ShaderFragment)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Params.ShaderKind != ast.ShaderCompute {
		t.Fatalf("shader kind = %v", cfg.Params.ShaderKind)
	}
	if cfg.Probabilities.InjectJump != 70 || cfg.Probabilities.Switchify != 0 {
		t.Fatalf("probabilities = %+v", cfg.Probabilities)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"probability", "[probabilities]\ninject_jump = 101\n", ErrInvalidProbability},
		{"loop limits", "[generation]\nloop_limit_min = 8\nloop_limit_max = 2\n", ErrInvalidLoopLimits},
		{"preset", "[probabilities]\npreset = \"wild\"\n", ErrUnknownPreset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			if _, err := Load(path, ast.ShaderFragment); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[generation]\nturbo = true\n")
	if _, err := Load(path, ast.ShaderFragment); err == nil {
		t.Fatalf("expected an error for an unknown key")
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok, err := FindConfig(nested)
	if err != nil || !ok {
		t.Fatalf("FindConfig: %v, %v", ok, err)
	}
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
