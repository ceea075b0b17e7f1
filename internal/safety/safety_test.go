package safety

import (
	"strings"
	"testing"

	"glfuzz/internal/ast"
	"glfuzz/internal/format"
	"glfuzz/internal/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseString("test.frag", src, ast.ShaderFragment)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog
}

func render(prog *ast.Program) string {
	return string(format.Program(prog, format.Options{}))
}

// assertSame compares got with the canonical printing of want.
func assertSame(t *testing.T, got *ast.Program, want string) {
	t.Helper()
	if g, w := render(got), render(parse(t, want)); g != w {
		t.Fatalf("mismatch\n--- got\n%s\n--- want\n%s", g, w)
	}
}

const nested = `void main() {
  int x = 0;
  for (int i = 0; i < 100; i++)
    while (x < i)
      do {
        x++;
        for (int j = 0; j < 200; j++) {
          ;
        }
      } while (x > 0);
}
`

func TestTruncateNestedLoops(t *testing.T) {
	prog := parse(t, nested)
	if n := TruncateLoops(prog, 3, "pre", false); n != 4 {
		t.Fatalf("truncated %d loops, want 4", n)
	}
	assertSame(t, prog, `void main() {
  int x = 0;
  {
    int pre_looplimiter3 = 0;
    for (int i = 0; i < 100; i++) {
      if (pre_looplimiter3 >= 3) {
        break;
      }
      pre_looplimiter3++;
      int pre_looplimiter2 = 0;
      while (x < i) {
        if (pre_looplimiter2 >= 3) {
          break;
        }
        pre_looplimiter2++;
        int pre_looplimiter1 = 0;
        do {
          if (pre_looplimiter1 >= 3) {
            break;
          }
          pre_looplimiter1++;
          x++;
          {
            int pre_looplimiter0 = 0;
            for (int j = 0; j < 200; j++) {
              if (pre_looplimiter0 >= 3) {
                break;
              }
              pre_looplimiter0++;
              ;
            }
          }
        } while (x > 0);
      }
    }
  }
}
`)
}

func TestTruncateSkipsShortLoops(t *testing.T) {
	prog := parse(t, strings.ReplaceAll(strings.ReplaceAll(nested, "< 100", "< 2"), "< 200", "< 2"))
	if n := TruncateLoops(prog, 3, "pre", true); n != 2 {
		t.Fatalf("truncated %d loops, want 2", n)
	}
	assertSame(t, prog, `void main() {
  int x = 0;
  for (int i = 0; i < 2; i++) {
    int pre_looplimiter1 = 0;
    while (x < i) {
      if (pre_looplimiter1 >= 3) {
        break;
      }
      pre_looplimiter1++;
      int pre_looplimiter0 = 0;
      do {
        if (pre_looplimiter0 >= 3) {
          break;
        }
        pre_looplimiter0++;
        x++;
        for (int j = 0; j < 2; j++) {
          ;
        }
      } while (x > 0);
    }
  }
}
`)
}

func TestShortLoopRecognition(t *testing.T) {
	conds := []string{"x < -(-20)", "20 > x", "x <= 20", "20 >= x", "x > -2", "-2 < x", "x >= -2", "-2 <= x"}
	steps := []string{"x++", "++x", "x += 1", "x += -(-1)", "x += 5", "x--", "--x", "x -= 1", "x -= 5"}
	inits := []string{"x = -1", "x = 0", "int x = 0", "x = -(+(-10))", "int x = 10"}
	for ci, cond := range conds {
		for si, step := range steps {
			for _, init := range inits {
				src := "void main() { int u = 10; int x; for (" + init + "; " + cond + "; " + step + ") { u = u * 2; } }"
				sane := (ci < 4 && si < 5) || (ci >= 4 && si >= 5)
				prog := parse(t, src)
				n := TruncateLoops(prog, 30, "webGL", true)
				if sane && n != 0 {
					t.Errorf("%s: short loop truncated", src)
				}
				if !sane && n != 1 {
					t.Errorf("%s: unbounded loop left alone", src)
				}
				if n := TruncateLoops(parse(t, src), 0, "webGL", true); n != 1 {
					t.Errorf("%s: limit 0 must truncate", src)
				}
			}
		}
	}
}

func TestShortLoopBodyWritesCounter(t *testing.T) {
	prog := parse(t, "void main() { for (int i = 0; i < 2; i++) { i = 0; } }")
	if n := TruncateLoops(prog, 30, "p", true); n != 1 {
		t.Fatalf("loop writing its counter must be truncated")
	}
}

func TestTruncateLimitZero(t *testing.T) {
	prog := parse(t, "void main() { int x; for (int i = 0; i < 10; i++) { x++; } }")
	TruncateLoops(prog, 0, "GLF", false)
	assertSame(t, prog, `void main() {
  int x;
  {
    int GLF_looplimiter0 = 0;
    for (int i = 0; i < 10; i++) {
      if (GLF_looplimiter0 >= 0) {
        break;
      }
      GLF_looplimiter0++;
      x++;
    }
  }
}
`)
}

// TestTruncationBounded checks the shape that bounds every loop: the
// limiter starts at zero right before the loop, the body opens with the
// guarded break and the increment, and nothing else touches the limiter.
func TestTruncationBounded(t *testing.T) {
	prog := parse(t, nested)
	TruncateLoops(prog, 5, "b", false)
	b := prog.Builder
	checked := 0
	for _, d := range prog.Functions() {
		fn, _ := prog.Decls.Func(d)
		b.WalkStmts(fn.Body, func(s ast.StmtID) bool {
			if !b.Stmts.Kind(s).IsLoop() {
				return true
			}
			checked++
			body, _ := b.Stmts.LoopBody(s)
			blk, ok := b.Stmts.Block(body)
			if !ok || len(blk.Stmts) < 2 {
				t.Fatalf("loop body not promoted")
			}
			guard := format.Stmt(b, blk.Stmts[0]) + format.Stmt(b, blk.Stmts[1])
			name := strings.TrimSuffix(strings.TrimSpace(format.Stmt(b, blk.Stmts[1])), "++;")
			if !strings.HasPrefix(name, "b_looplimiter") {
				t.Fatalf("unexpected increment %q", guard)
			}
			if !strings.Contains(guard, "if ("+name+" >= 5) {") || !strings.Contains(guard, "break;") {
				t.Fatalf("missing guard:\n%s", guard)
			}
			uses := strings.Count(format.Stmt(b, body), name)
			if uses != 2 {
				t.Fatalf("%s used %d times in its loop", name, uses)
			}
			return true
		})
	}
	if checked != 4 {
		t.Fatalf("checked %d loops", checked)
	}
}

func TestBoundsClampsNonConstantIndex(t *testing.T) {
	prog := parse(t, `void main() {
  int a[5];
  int idx = 2;
  a[idx] = 1;
  a[3] = a[idx + 1];
  a[7] = 0;
}
`)
	if n := MakeArrayAccessesInBounds(prog); n != 3 {
		t.Fatalf("clamped %d accesses, want 3", n)
	}
	out := render(prog)
	for _, want := range []string{
		"a[((idx) >= 0 && (idx) < 5) ? (idx) : 0] = 1;",
		"a[3] = a[((idx + 1) >= 0 && (idx + 1) < 5) ? (idx + 1) : 0];",
		"a[((7) >= 0 && (7) < 5) ? (7) : 0] = 0;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestBoundsVectorsMatricesAndUnsigned(t *testing.T) {
	prog := parse(t, `void main() {
  vec3 v;
  mat2 m;
  uint k = 1u;
  for (int i = 0; i < 4; i++) {
    v[i] = m[i][k];
  }
}
`)
	MakeArrayAccessesInBounds(prog)
	out := render(prog)
	for _, want := range []string{
		"v[((i) >= 0 && (i) < 3) ? (i) : 0]",
		"m[((i) >= 0 && (i) < 2) ? (i) : 0][((k) < 2u) ? (k) : 0u]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestBoundsEvaluatesSideEffectsOnce(t *testing.T) {
	prog := parse(t, `int next() {
  return 1;
}
void main() {
  int a[5];
  uint u[3];
  int i = 0;
  uint k = 0u;
  a[i++] = 1;
  a[next()] = 2;
  u[k++] = 3u;
  a[i] = 4;
}
`)
	if n := MakeArrayAccessesInBounds(prog); n != 4 {
		t.Fatalf("clamped %d accesses, want 4", n)
	}
	out := render(prog)
	for _, want := range []string{
		"a[clamp(i++, 0, 4)] = 1;",
		"a[clamp(next(), 0, 4)] = 2;",
		"u[clamp(k++, 0u, 2u)] = 3u;",
		"a[((i) >= 0 && (i) < 5) ? (i) : 0] = 4;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
	if n := strings.Count(out, "i++"); n != 1 {
		t.Errorf("i++ printed %d times", n)
	}
}

func TestBoundsLeavesConstantIndices(t *testing.T) {
	src := `void main() {
  float a[4];
  a[0] = a[3];
  a[1 + 2] = a[2u];
}
`
	prog := parse(t, src)
	if n := MakeArrayAccessesInBounds(prog); n != 0 {
		t.Fatalf("clamped %d constant accesses", n)
	}
	assertSame(t, prog, src)
}
