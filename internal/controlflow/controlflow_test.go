package controlflow

import (
	"context"
	"strings"
	"testing"

	"glfuzz/internal/ast"
	"glfuzz/internal/config"
	"glfuzz/internal/format"
	"glfuzz/internal/inject"
	"glfuzz/internal/opaque"
	"glfuzz/internal/parser"
	"glfuzz/internal/rng"
	"glfuzz/internal/transform"
)

func parse(t *testing.T, src string, kind ast.ShaderKind) *ast.Program {
	t.Helper()
	prog, err := parser.ParseString("test.glsl", src, kind)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog
}

func render(prog *ast.Program) string {
	return string(format.Program(prog, format.Options{}))
}

// newEnv fires nothing unless the test raises a probability.
func newEnv(prog *ast.Program, rnd rng.Source) *transform.Env {
	return &transform.Env{
		Prog:   prog,
		Rand:   rnd,
		Params: config.DefaultParams(prog.Kind),
	}
}

// mainBody returns the statements of main.
func mainBody(t *testing.T, prog *ast.Program) []ast.StmtID {
	t.Helper()
	_, fn, ok := prog.LookupFunction("main")
	if !ok {
		t.Fatalf("no main")
	}
	body, _ := prog.Stmts.Block(fn.Body)
	return body.Stmts
}

// first returns the first statement of kind under fn's body.
func first(t *testing.T, prog *ast.Program, fn string, kind ast.StmtKind) ast.StmtID {
	t.Helper()
	_, decl, ok := prog.LookupFunction(fn)
	if !ok {
		t.Fatalf("no function %s", fn)
	}
	found := ast.NoStmtID
	prog.WalkStmts(decl.Body, func(s ast.StmtID) bool {
		if !found.IsValid() && prog.Stmts.Kind(s) == kind {
			found = s
		}
		return !found.IsValid()
	})
	if !found.IsValid() {
		t.Fatalf("no %s in %s", kind, fn)
	}
	return found
}

func TestDeadOutputWritesKeepOriginalOrder(t *testing.T) {
	prog := parse(t, "void main() {\n  int a;\n  a = 2;\n}\n", ast.ShaderFragment)
	env := newEnv(prog, rng.New(7))
	env.Probs.AddDeadOutputWrites = 100

	res, err := AddDeadOutputWrites.Apply(context.Background(), env)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(res.Applied) != 3 {
		t.Fatalf("applied %d writes, want 3: %v", len(res.Applied), res.Applied)
	}
	stmts := mainBody(t, prog)
	kinds := make([]ast.StmtKind, 0, len(stmts))
	for _, s := range stmts {
		kinds = append(kinds, prog.Stmts.Kind(s))
	}
	want := []ast.StmtKind{ast.StmtIf, ast.StmtDecl, ast.StmtIf, ast.StmtExpr, ast.StmtIf}
	if len(kinds) != len(want) {
		t.Fatalf("main has %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("main has %v, want %v", kinds, want)
		}
	}
	out := render(prog)
	if n := strings.Count(out, "gl_FragColor = "); n != 3 {
		t.Errorf("gl_FragColor written %d times, want 3:\n%s", n, out)
	}
	if n := strings.Count(out, "if (_GLF_DEAD("); n != 3 {
		t.Errorf("%d dead guards, want 3:\n%s", n, out)
	}
}

func TestOutputVariables(t *testing.T) {
	legacy := parse(t, "void main() { }\n", ast.ShaderFragment)
	modern := parse(t, "#version 300 es\nprecision mediump float;\nout vec4 color;\nout float arr[2];\nvoid main() { }\n", ast.ShaderFragment)
	vertex := parse(t, "void main() { }\n", ast.ShaderVertex)

	names := func(prog *ast.Program) []string {
		pt := inject.Find(prog, nil).All()[0]
		var out []string
		for _, v := range outputVariables(prog, pt.Scope()) {
			out = append(out, v.name)
		}
		return out
	}
	if got := names(legacy); len(got) != 1 || got[0] != "gl_FragColor" {
		t.Errorf("legacy outputs = %v", got)
	}
	if got := names(modern); len(got) != 1 || got[0] != "color" {
		t.Errorf("es 300 outputs = %v", got)
	}
	if got := names(vertex); len(got) != 2 || got[0] != "gl_PointSize" || got[1] != "gl_Position" {
		t.Errorf("vertex outputs = %v", got)
	}
}

func TestLiveOutputWriteRestores(t *testing.T) {
	prog := parse(t, "void main() {\n}\n", ast.ShaderFragment)
	env := newEnv(prog, rng.New(3))
	env.Probs.AddLiveOutputWrites = 100

	if _, err := AddLiveOutputWrites.Apply(context.Background(), env); err != nil {
		t.Fatalf("apply: %v", err)
	}
	out := render(prog)
	backup := OutVarBackupPrefix + "gl_FragColor"
	order := []string{
		"vec4 " + backup + ";",
		backup + " = gl_FragColor;",
		"gl_FragColor = ",
		"if (_GLF_WRAPPED_IF_TRUE(",
		"gl_FragColor = " + backup + ";",
	}
	at := 0
	for _, s := range order {
		i := strings.Index(out[at:], s)
		if i < 0 {
			t.Fatalf("missing %q after offset %d:\n%s", s, at, out)
		}
		at += i + len(s)
	}
}

func TestReturnStmt(t *testing.T) {
	prog := parse(t, `struct S { float x; };
float f() { return 2.0; }
vec3 v() { return vec3(0.0); }
S s() { S r; return r; }
void main() { }
`, ast.ShaderFragment)
	cases := []struct {
		fn, want string
	}{
		{"f", "return 1.0;"},
		{"v", "return vec3(1.0);"},
		{"s", "{"},
		{"main", "return;"},
	}
	for _, tc := range cases {
		d, _, ok := prog.LookupFunction(tc.fn)
		if !ok {
			t.Fatalf("no function %s", tc.fn)
		}
		got := strings.TrimSpace(format.Stmt(prog.Builder, returnStmt(prog, d)))
		if !strings.HasPrefix(got, tc.want) {
			t.Errorf("%s: got %q, want prefix %q", tc.fn, got, tc.want)
		}
	}
}

func TestJumpsRespectContext(t *testing.T) {
	prog := parse(t, "void main() {\n  int a = 1;\n}\n", ast.ShaderVertex)
	env := newEnv(prog, rng.New(11))
	env.Probs.InjectJump = 100

	res, err := AddJumps.Apply(context.Background(), env)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(res.Applied) == 0 {
		t.Fatalf("no jumps injected")
	}
	// вне цикла вершинного шейдера остаётся только return
	for _, m := range res.Applied {
		if m.Detail != "return" {
			t.Errorf("unexpected jump %q outside a loop", m.Detail)
		}
	}
	if out := render(prog); strings.Contains(out, "break;") || strings.Contains(out, "discard;") {
		t.Errorf("invalid jump in output:\n%s", out)
	}
}

func TestJumpKindsInLoop(t *testing.T) {
	prog := parse(t, "void main() {\n  for (int i = 0; i < 4; i++) {\n    i = i;\n  }\n}\n", ast.ShaderFragment)
	var inLoop inject.Point
	for _, p := range inject.Find(prog, nil).All() {
		if p.InLoop() {
			inLoop = p
			break
		}
	}
	if inLoop == nil {
		t.Fatalf("no point inside the loop")
	}
	seen := make(map[string]bool)
	for i := range 4 {
		env := newEnv(prog, &rng.Fixed{Values: []int{i}})
		_, what := jumpStmt(env, inLoop)
		seen[what] = true
	}
	for _, k := range []string{"return", "break", "continue", "discard"} {
		if !seen[k] {
			t.Errorf("jump %s never chosen in a fragment loop", k)
		}
	}
}

func TestEscapes(t *testing.T) {
	prog := parse(t, `void main() {
  for (int i = 0; i < 2; i++) {
    if (i > 0) {
      break;
    }
    switch (i) {
      case 0:
        break;
      default:
        continue;
    }
  }
}
`, ast.ShaderFragment)
	b := prog.Builder
	loop := first(t, prog, "main", ast.StmtFor)
	ifs := first(t, prog, "main", ast.StmtIf)
	sw := first(t, prog, "main", ast.StmtSwitch)

	if escapes(b, loop, ast.StmtBreak) || escapes(b, loop, ast.StmtContinue) {
		t.Errorf("jumps inside a loop escape it")
	}
	if !escapes(b, ifs, ast.StmtBreak) {
		t.Errorf("break inside if does not escape")
	}
	if escapes(b, sw, ast.StmtBreak) {
		t.Errorf("case break escapes the switch")
	}
	if !escapes(b, sw, ast.StmtContinue) {
		t.Errorf("continue inside switch does not escape")
	}
}

func TestWrapShells(t *testing.T) {
	cases := []struct {
		shell Shell
		want  []string
	}{
		{ShellIfTrue, []string{"if (_GLF_WRAPPED_IF_TRUE(", "a = 3;", "else {"}},
		{ShellIfFalse, []string{"if (_GLF_WRAPPED_IF_FALSE(", "else {", "a = 3;"}},
		{ShellFor, []string{"for (int " + LoopCounterPrefix + "0 = ", "_GLF_WRAPPED_LOOP(", "a = 3;"}},
		{ShellDo, []string{"do {", "a = 3;", "while (_GLF_WRAPPED_LOOP("}},
	}
	for _, tc := range cases {
		t.Run(tc.shell.String(), func(t *testing.T) {
			prog := parse(t, "void main() {\n  int a = 1;\n  a = 3;\n}\n", ast.ShaderFragment)
			env := newEnv(prog, rng.New(5))
			w := &wrapper{env: env}
			got := format.Stmt(prog.Builder, w.wrap(first(t, prog, "main", ast.StmtExpr), tc.shell))
			at := 0
			for _, s := range tc.want {
				i := strings.Index(got[at:], s)
				if i < 0 {
					t.Fatalf("missing %q in order:\n%s", s, got)
				}
				at += i + len(s)
			}
		})
	}
}

func TestWrapStatementsSkipsDeclarations(t *testing.T) {
	prog := parse(t, "void main() {\n  int a = 1;\n  a = a + 1;\n}\n", ast.ShaderFragment)
	env := newEnv(prog, rng.New(9))
	env.Probs.WrapStmt = 100

	res, err := WrapStatements.Apply(context.Background(), env)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(res.Applied) != 1 {
		t.Fatalf("wrapped %d statements, want 1", len(res.Applied))
	}
	if k := prog.Stmts.Kind(mainBody(t, prog)[0]); k != ast.StmtDecl {
		t.Errorf("declaration moved: first statement is %s", k)
	}
	if !strings.Contains(render(prog), "a = a + 1;") {
		t.Errorf("wrapped statement lost")
	}
}

func TestNextCounter(t *testing.T) {
	prog := parse(t, "void main() {\n  for (int _injected_loop_counter_3 = 0; _injected_loop_counter_3 < 1; _injected_loop_counter_3++) { }\n  int _injected_loop_counter_x = 0;\n}\n", ast.ShaderFragment)
	if got := nextCounter(prog, LoopCounterPrefix); got != 4 {
		t.Errorf("nextCounter = %d, want 4", got)
	}
}

func TestSwitchifyKeepsOrder(t *testing.T) {
	prog := parse(t, "void main() {\n  int a = 1;\n  {\n    a = a + 2;\n    a = a * 3;\n  }\n}\n", ast.ShaderFragment)
	block := mainBody(t, prog)[1]

	env := newEnv(prog, rng.New(21))
	env.Probs.Switchify = 100
	res, err := AddSwitches.Apply(context.Background(), env)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(res.Applied) != 1 {
		t.Fatalf("switchified %d points, want 1", len(res.Applied))
	}
	blk, _ := prog.Stmts.Block(block)
	if len(blk.Stmts) != 1 || prog.Stmts.Kind(blk.Stmts[0]) != ast.StmtSwitch {
		t.Fatalf("block not replaced by a switch")
	}
	out := render(prog)
	at := 0
	for _, s := range []string{"switch (_GLF_SWITCH(", "case 0:", "a = a + 2;", "a = a * 3;", "break;", "default:"} {
		i := strings.Index(out[at:], s)
		if i < 0 {
			t.Fatalf("missing %q in order:\n%s", s, out)
		}
		at += i + len(s)
	}
}

func TestSwitchTargets(t *testing.T) {
	prog := parse(t, `void main() {
  int a = 0;
  for (int i = 0; i < 2; i++) {
    if (i > 0) {
      break;
    }
  }
  if (a > 0) {
    a = 1;
  } else {
    a = 2;
  }
  while (a < 3) {
    a++;
  }
}
`, ast.ShaderFragment)
	b := prog.Builder
	if got := switchTargets(b, first(t, prog, "main", ast.StmtFor)); len(got) != 0 {
		t.Errorf("loop body with break is switchable")
	}
	if got := switchTargets(b, mainBody(t, prog)[2]); len(got) != 2 {
		t.Errorf("if/else targets = %d, want 2", len(got))
	}
	if got := switchTargets(b, first(t, prog, "main", ast.StmtWhile)); len(got) != 1 {
		t.Errorf("while targets = %d, want 1", len(got))
	}
}

// stripDead removes every "if (_GLF_DEAD(...))" statement from the blocks
// of prog.
func stripDead(prog *ast.Program) {
	var blocks []ast.StmtID
	for _, d := range prog.Functions() {
		fn, _ := prog.Decls.Func(d)
		prog.WalkStmts(fn.Body, func(s ast.StmtID) bool {
			if prog.Stmts.Kind(s) == ast.StmtBlock {
				blocks = append(blocks, s)
			}
			return true
		})
	}
	for _, id := range blocks {
		blk, _ := prog.Stmts.Block(id)
		kept := blk.Stmts[:0]
		for _, s := range blk.Stmts {
			if !isDeadIf(prog, s) {
				kept = append(kept, s)
			}
		}
		blk.Stmts = kept
	}
}

func isDeadIf(prog *ast.Program, s ast.StmtID) bool {
	ifs, ok := prog.Stmts.If(s)
	if !ok {
		return false
	}
	call, ok := prog.Exprs.Call(ifs.Cond)
	return ok && call.Callee == opaque.MarkerDead
}

func TestDeadInjectionsAreSeparable(t *testing.T) {
	const src = `float f(float x) {
  for (int i = 0; i < 4; i++) {
    x = x * 2.0;
  }
  return x;
}
void main() {
  float v = f(1.0);
  if (v > 2.0) {
    v = 0.0;
  }
  gl_FragColor = vec4(v);
}
`
	passes := []transform.Transformation{AddJumps, AddDeadOutputWrites}
	for _, pass := range passes {
		t.Run(pass.Name(), func(t *testing.T) {
			want := render(parse(t, src, ast.ShaderFragment))
			prog := parse(t, src, ast.ShaderFragment)
			env := newEnv(prog, rng.New(21))
			env.Probs.InjectJump = 100
			env.Probs.AddDeadOutputWrites = 100
			res, err := pass.Apply(context.Background(), env)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if len(res.Applied) == 0 {
				t.Fatal("nothing injected")
			}
			stripDead(prog)
			if got := render(prog); got != want {
				t.Fatalf("program changed outside the dead branches:\n%s\nwant:\n%s", got, want)
			}
		})
	}
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	for _, shell := range []Shell{ShellIfTrue, ShellIfFalse, ShellFor, ShellDo} {
		t.Run(shell.String(), func(t *testing.T) {
			prog := parse(t, "void main() {\n  int a = 1;\n  {\n    a = 3;\n  }\n}\n", ast.ShaderFragment)
			inner := mainBody(t, prog)[1]
			before := format.Stmt(prog.Builder, inner)

			w := &wrapper{env: newEnv(prog, rng.New(3))}
			shellID := w.wrap(inner, shell)

			var unwrapped ast.StmtID
			switch shell {
			case ShellIfTrue:
				d, _ := prog.Stmts.If(shellID)
				unwrapped = d.Then
			case ShellIfFalse:
				d, _ := prog.Stmts.If(shellID)
				unwrapped = d.Else
			default:
				unwrapped, _ = prog.Stmts.LoopBody(shellID)
			}
			if unwrapped != inner {
				t.Fatalf("shell holds %v, want the original statement %v", unwrapped, inner)
			}
			if after := format.Stmt(prog.Builder, unwrapped); after != before {
				t.Fatalf("statement changed by wrapping:\n%s\nwant:\n%s", after, before)
			}
		})
	}
}
