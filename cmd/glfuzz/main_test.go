package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"glfuzz/internal/ast"
	"glfuzz/internal/config"
)

const testShader = `precision mediump float;
uniform float data[4];
void main() {
  float acc = 0.0;
  for (int i = 0; i < 4; i++) {
    acc += data[i];
  }
  gl_FragColor = vec4(acc);
}
`

func writeShader(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--color", "off", "--quiet"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestIdentPrefix(t *testing.T) {
	cases := map[string]string{
		"shaders/ref.frag":    "ref",
		"a-b.c.frag":          "a_b_c",
		"9lives.vert":         "s9lives",
		"x__y.frag":           "x_y",
		"/tmp/--weird--.comp": "weird",
		"ünïcode.frag":        "n_code",
	}
	for in, want := range cases {
		if got := identPrefix(in); got != want {
			t.Errorf("identPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}

func TestLoadConfigPresetAndKind(t *testing.T) {
	dir := t.TempDir()
	ref := writeShader(t, dir, "ref.frag", testShader)
	cfgPath := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(cfgPath, []byte("[generation]\nmax_donors_per_pass = 7\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, note, err := loadConfig(ref, ast.ShaderFragment, generateFlags{preset: "aggressive"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Params.MaxDonorsPerPass != 7 {
		t.Errorf("max donors = %d, want 7 from %s", cfg.Params.MaxDonorsPerPass, note)
	}
	if cfg.Probabilities != config.AggressiveControlFlow() {
		t.Error("preset did not replace the probabilities")
	}

	if _, _, err := loadConfig(ref, ast.ShaderVertex, generateFlags{}); err == nil {
		t.Error("expected a kind mismatch for a fragment config and a vertex reference")
	}
}

func TestTruncateCommand(t *testing.T) {
	ref := writeShader(t, t.TempDir(), "loop.frag", testShader)
	out, err := execute(t, "truncate", ref, "--limit", "2", "--prefix", "p", "--skip-short=false")
	if err != nil {
		t.Fatalf("truncate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "p_looplimiter0") {
		t.Errorf("no limiter in output:\n%s", out)
	}
}

func TestBoundsCommand(t *testing.T) {
	ref := writeShader(t, t.TempDir(), "idx.frag", testShader)
	out, err := execute(t, "bounds", ref)
	if err != nil {
		t.Fatalf("bounds: %v\n%s", err, out)
	}
	if !strings.Contains(out, "? (i) : 0") {
		t.Errorf("index not clamped:\n%s", out)
	}
}

func TestFmtCommand(t *testing.T) {
	path := writeShader(t, t.TempDir(), "f.frag", "void main(){int x=1;x++;}\n")

	// флаги rootCmd живут между вызовами, поэтому каждый задаётся явно
	out, err := execute(t, "fmt", "--check", "--stdout=false", "--verify=false", "--format", "json", path)
	if !errors.Is(err, errNotFormatted) {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"changed": true`) {
		t.Errorf("json report:\n%s", out)
	}

	out, err = execute(t, "fmt", "--check=false", "--stdout", "--verify", "--format", "text", path)
	if err != nil {
		t.Fatalf("stdout: %v\n%s", err, out)
	}
	if !strings.Contains(out, "    int x = 1;") {
		t.Errorf("canonical text missing:\n%s", out)
	}
	if data, _ := os.ReadFile(path); string(data) != "void main(){int x=1;x++;}\n" {
		t.Fatalf("--stdout rewrote the file:\n%s", data)
	}

	if out, err = execute(t, "fmt", "--check=false", "--stdout=false", "--verify", "--format", "text", path); err != nil {
		t.Fatalf("rewrite: %v\n%s", err, out)
	}
	if out, err = execute(t, "fmt", "--check", "--stdout=false", "--verify=false", "--format", "text", path); err != nil {
		t.Fatalf("check after rewrite: %v\n%s", err, out)
	}
}

func TestPointsCommand(t *testing.T) {
	ref := writeShader(t, t.TempDir(), "p.frag", testShader)
	out, err := execute(t, "points", ref)
	if err != nil {
		t.Fatalf("points: %v\n%s", err, out)
	}
	for _, want := range []string{"FUNCTION", "main", "block", "POINTS"} {
		if !strings.Contains(out, want) {
			t.Errorf("points output lacks %q:\n%s", want, out)
		}
	}
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	ref := writeShader(t, dir, "ref.frag", testShader)
	outDir := filepath.Join(dir, "out")
	out, err := execute(t, "generate", ref, "--out", outDir, "--count", "2", "--seed", "3", "--ui", "off", "--preset", "aggressive")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	for _, name := range []string{"ref_000.frag", "ref_000.json", "ref_001.frag", "ref_001.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}
