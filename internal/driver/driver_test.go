package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"glfuzz/internal/ast"
	"glfuzz/internal/config"
	"glfuzz/internal/controlflow"
	"glfuzz/internal/donate"
	"glfuzz/internal/driver"
	"glfuzz/internal/parser"
)

const reference = `#version 100
precision mediump float;
uniform vec2 resolution;
float shade(float x) {
  return x * 0.5;
}
void main() {
  float v = shade(gl_FragCoord.x / resolution.x);
  for (int i = 0; i < 3; i++) {
    v = v + 0.1;
  }
  gl_FragColor = vec4(v, 0.0, 0.0, 1.0);
}
`

const donorSrc = `precision mediump float;
float helper(float a) {
  return a + 1.0;
}
void main() {
  float acc = 0.0;
  for (int k = 0; k < 4; k++) {
    acc = helper(acc);
  }
  gl_FragColor = vec4(acc);
}
`

func parseRef(t *testing.T) *ast.Program {
	t.Helper()
	prog, err := parser.ParseString("ref.frag", reference, ast.ShaderFragment)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog
}

func aggressive() config.Config {
	cfg := config.Default(ast.ShaderFragment)
	cfg.Probabilities = config.AggressiveControlFlow()
	return cfg
}

func texts(vs []driver.Variant) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Text
	}
	return out
}

func TestVariantKey(t *testing.T) {
	cfg := config.Default(ast.ShaderFragment)
	var ref, donors driver.Digest
	ref[0] = 1
	a := driver.VariantKey(ref, donors, cfg, []string{"x"}, 7)
	if a != driver.VariantKey(ref, donors, cfg, []string{"x"}, 7) {
		t.Fatal("key is not deterministic")
	}
	if a == driver.VariantKey(ref, donors, cfg, []string{"x"}, 8) {
		t.Fatal("key ignores the seed")
	}
	if a == driver.VariantKey(ref, donors, cfg, []string{"y"}, 7) {
		t.Fatal("key ignores the passes")
	}
	cfg.Probabilities.WrapStmt++
	if a == driver.VariantKey(ref, donors, cfg, []string{"x"}, 7) {
		t.Fatal("key ignores the probabilities")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	ref := parseRef(t)
	opts := driver.Options{Reference: ref, Config: aggressive(), Count: 6, Seed: 42, Jobs: 1}
	first, err := driver.Generate(context.Background(), opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	opts.Jobs = 4
	second, err := driver.Generate(context.Background(), opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	a, b := texts(first), texts(second)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("variant %d differs between runs", i)
		}
		if first[i].Seed != 42+int64(i) {
			t.Errorf("variant %d seed = %d", i, first[i].Seed)
		}
	}
}

func TestGeneratedVariantsReparse(t *testing.T) {
	ref := parseRef(t)
	vs, err := driver.Generate(context.Background(), driver.Options{Reference: ref, Config: aggressive(), Count: 4, Seed: 1})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, v := range vs {
		if !strings.Contains(v.Text, "#define _GLF_DEAD(X)") {
			t.Errorf("variant %d lacks the marker prelude", v.Index)
		}
		if !strings.Contains(v.Text, "uniform vec2 injectionSwitch;") {
			t.Errorf("variant %d lacks injectionSwitch", v.Index)
		}
		// без прелюдии: макросы парсер не понимает, вызовы маркеров: понимает
		body := v.Text[strings.Index(v.Text, "precision"):]
		if _, err := parser.ParseString("variant.frag", body, ast.ShaderFragment); err != nil {
			t.Errorf("variant %d does not reparse: %v", v.Index, err)
		}
	}
}

func TestGenerateRejectsUnknownPass(t *testing.T) {
	_, err := driver.Generate(context.Background(), driver.Options{
		Reference: parseRef(t),
		Config:    config.Default(ast.ShaderFragment),
		Passes:    []string{"no_such_pass"},
		Count:     1,
	})
	if err == nil {
		t.Fatal("expected an error for an unknown pass")
	}
}

func TestGenerateEvents(t *testing.T) {
	var mu sync.Mutex
	counts := make(map[driver.VariantStatus]int)
	_, err := driver.Generate(context.Background(), driver.Options{
		Reference: parseRef(t),
		Config:    aggressive(),
		Passes:    []string{controlflow.NameWrap},
		Count:     3,
		Observer: func(ev driver.VariantEvent) {
			mu.Lock()
			counts[ev.Status]++
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, s := range []driver.VariantStatus{driver.VariantQueued, driver.VariantWorking, driver.VariantDone} {
		if counts[s] != 3 {
			t.Errorf("%s events = %d, want 3", s, counts[s])
		}
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := driver.NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	opts := driver.Options{Reference: parseRef(t), Config: aggressive(), Count: 2, Seed: 9, Cache: cache}
	opts.RefHash[0] = 0xAB
	first, err := driver.Generate(context.Background(), opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := driver.Generate(context.Background(), opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i := range first {
		if first[i].Cached {
			t.Errorf("variant %d cached on the first run", i)
		}
		if !second[i].Cached {
			t.Errorf("variant %d not cached on the second run", i)
		}
		if first[i].Text != second[i].Text || len(first[i].Applied) != len(second[i].Applied) {
			t.Errorf("variant %d changed through the cache", i)
		}
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	var rec driver.VariantRecord
	if ok, _ := cache.Get(driver.Digest{}, &rec); ok {
		t.Fatal("hit after DropAll")
	}
}

func TestPrepareReference(t *testing.T) {
	prog := parseRef(t)
	params := config.DefaultParams(ast.ShaderFragment)
	driver.PrepareReference(prog, params)
	driver.PrepareReference(prog, params)
	if n := strings.Count(driver.Render(prog), "uniform vec2 injectionSwitch;"); n != 1 {
		t.Fatalf("injectionSwitch declared %d times", n)
	}
	params.InjectionSwitchAvailable = false
	other := parseRef(t)
	driver.PrepareReference(other, params)
	if strings.Contains(driver.Render(other), "injectionSwitch") {
		t.Fatal("injectionSwitch declared although unavailable")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDonors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.frag"), donorSrc)
	writeFile(t, filepath.Join(dir, "sub", "a.frag"), donorSrc)
	writeFile(t, filepath.Join(dir, "broken.frag"), "void main() { int x = ; }\n")
	writeFile(t, filepath.Join(dir, "skip.vert"), "void main() { }\n")

	files, err := driver.LoadDonors(context.Background(), dir, ast.ShaderFragment, 16, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("loaded %d files, want 3", len(files))
	}
	broken := 0
	for i := range files {
		if files[i].Broken() {
			broken++
		}
	}
	if broken != 1 {
		t.Errorf("broken donors = %d, want 1", broken)
	}
	srcs := driver.Sources(files)
	if len(srcs) != 2 || srcs[0].Name != "b.frag" || srcs[1].Name != "sub/a.frag" {
		t.Errorf("sources = %v", names(srcs))
	}
}

func names(srcs []donate.Source) []string {
	out := make([]string, len(srcs))
	for i, s := range srcs {
		out[i] = s.Name
	}
	return out
}

func TestGenerateWithDonors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "d.frag"), donorSrc)
	files, err := driver.LoadDonors(context.Background(), dir, ast.ShaderFragment, 16, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := config.Default(ast.ShaderFragment)
	cfg.Probabilities.DonateDeadCode = 100
	cfg.Probabilities.DonateLiveCode = 100
	vs, err := driver.Generate(context.Background(), driver.Options{
		Reference: parseRef(t),
		Donors:    driver.Sources(files),
		Config:    cfg,
		Passes:    []string{donate.DeadStrategy{}.Name(), donate.LiveStrategy{}.Name()},
		Count:     2,
		Seed:      5,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, v := range vs {
		if len(v.Applied) == 0 {
			t.Errorf("variant %d: nothing donated", v.Index)
		}
	}
}

func TestWriteVariants(t *testing.T) {
	dir := t.TempDir()
	vs := []driver.Variant{{Index: 0, Seed: 3, Text: "void main() { }\n"}, {Index: 1, Seed: 4, Text: "void main() { }\n"}}
	paths, err := driver.WriteVariants(dir, "ref", ".frag", "ref.frag", vs)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[1]) != "ref_001.frag" {
		t.Fatalf("paths = %v", paths)
	}
	info, err := os.ReadFile(filepath.Join(dir, "ref_001.json"))
	if err != nil {
		t.Fatalf("read info: %v", err)
	}
	if !strings.Contains(string(info), `"seed": 4`) {
		t.Errorf("info = %s", info)
	}
}

func TestRunFmtCheck(t *testing.T) {
	if ok, msg := driver.RunFmtCheck(parseRef(t)); !ok {
		t.Fatal(msg)
	}
}

func TestKindFromPath(t *testing.T) {
	cases := map[string]ast.ShaderKind{
		"a.frag": ast.ShaderFragment,
		"b.VERT": ast.ShaderVertex,
		"c.comp": ast.ShaderCompute,
	}
	for path, want := range cases {
		got, err := driver.KindFromPath(path)
		if err != nil || got != want {
			t.Errorf("%s: got %v, %v", path, got, err)
		}
	}
	if _, err := driver.KindFromPath("x.glsl"); err == nil {
		t.Error("expected an error for .glsl")
	}
}
