package inject

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"glfuzz/internal/ast"
	"glfuzz/internal/format"
	"glfuzz/internal/parser"
	"glfuzz/internal/rng"
	"glfuzz/internal/source"
	"glfuzz/internal/symbols"
)

const shader = `#version 310 es
precision highp float;
uniform vec2 injectionSwitch;
layout(location = 0) out vec4 _GLF_color;
float g;
int f(int a) {
  int b = a;
  for (int i = 0; i < 3; i++)
    b += i;
  if (b > 2)
    b = 1;
  else
    b = 2;
  switch (b) {
    case 1:
      b = 3;
      break;
    default:
      b = 4;
  }
  return b;
}
void main() {
  int x = f(1);
  _GLF_color = vec4(x);
}
`

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseString("test.frag", src, ast.ShaderFragment)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog
}

func countKinds(points []Point) map[SiteKind]int {
	out := make(map[SiteKind]int)
	for _, p := range points {
		out[p.Kind()]++
	}
	return out
}

func TestFindCounts(t *testing.T) {
	prog := parse(t, shader)
	got := countKinds(Find(prog, nil).All())
	want := map[SiteKind]int{SiteBlock: 14, SiteIfBranch: 2, SiteLoopBody: 1}
	for k, n := range want {
		if got[k] != n {
			t.Errorf("%s points = %d, want %d", k, got[k], n)
		}
	}
}

func TestFindSkipsLeadingCaseLabel(t *testing.T) {
	prog := parse(t, shader)
	for _, p := range Find(prog, nil).All() {
		if !p.InSwitch() {
			continue
		}
		if p.InLoop() {
			t.Errorf("switch point reported in a loop")
		}
		bs, ok := p.(*BlockSite)
		if !ok {
			continue
		}
		blk, _ := prog.Stmts.Block(bs.Block)
		if next, err := p.Next(); err == nil && next == blk.Stmts[0] {
			t.Errorf("point recorded before the leading case label")
		}
	}
}

func TestScopeMatchesScopeAt(t *testing.T) {
	prog := parse(t, shader)
	for i, p := range Find(prog, nil).All() {
		next, err := p.Next()
		if err != nil {
			continue
		}
		want, fn, ok := symbols.ScopeAt(prog, next)
		if !ok {
			t.Fatalf("point %d: next statement not found by ScopeAt", i)
		}
		if fn != p.EnclosingFunction() {
			t.Errorf("point %d: function mismatch", i)
		}
		if !slices.Equal(p.Scope().Names(), want.Names()) {
			t.Errorf("point %d (%s): scope %v, want %v", i, p.Kind(), p.Scope().Names(), want.Names())
		}
	}
}

func TestScopeContents(t *testing.T) {
	prog := parse(t, shader)
	var loopBody, beforeReturn Point
	for _, p := range Find(prog, nil).All() {
		if p.Kind() == SiteLoopBody {
			loopBody = p
		}
		if next, err := p.Next(); err == nil && prog.Stmts.Kind(next) == ast.StmtReturn {
			beforeReturn = p
		}
	}
	if loopBody == nil || beforeReturn == nil {
		t.Fatalf("missing points")
	}
	if !loopBody.InLoop() {
		t.Errorf("loop body site not in loop")
	}
	if _, ok := loopBody.Scope().Lookup("i"); !ok {
		t.Errorf("loop counter not visible in loop body")
	}
	for _, name := range []string{"a", "b", "g", "injectionSwitch", "_GLF_color", "gl_FragCoord"} {
		if _, ok := beforeReturn.Scope().Lookup(name); !ok {
			t.Errorf("%s not visible before return", name)
		}
	}
	for _, name := range []string{"i", "x"} {
		if _, ok := beforeReturn.Scope().Lookup(name); ok {
			t.Errorf("%s visible before return", name)
		}
	}
}

func TestSuitableFilters(t *testing.T) {
	prog := parse(t, shader)
	inLoop := Find(prog, func(p Point) bool { return p.InLoop() }).All()
	if len(inLoop) != 1 || inLoop[0].Kind() != SiteLoopBody {
		t.Fatalf("got %d in-loop points, want the single loop body", len(inLoop))
	}
}

func TestSelectDeterministic(t *testing.T) {
	pick := func() []string {
		prog := parse(t, shader)
		var out []string
		for _, p := range Find(prog, nil).Select(rng.New(42), 50) {
			next, _ := p.Next()
			out = append(out, p.Kind().String()+":"+format.Stmt(prog.Builder, next))
		}
		return out
	}
	a, b := pick(), pick()
	if !slices.Equal(a, b) {
		t.Fatalf("selection differs between equal runs:\n%v\n%v", a, b)
	}
}

func TestInjectPromotesBranch(t *testing.T) {
	prog := parse(t, shader)
	var branch Point
	for _, p := range Find(prog, nil).All() {
		if ib, ok := p.(*IfBranchSite); ok && !ib.Else {
			branch = p
		}
	}
	first := prog.Stmts.NewDiscard(source.Span{})
	second := prog.Stmts.NewNull(source.Span{})
	if err := branch.Inject(first); err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if err := branch.Inject(second); err != nil {
		t.Fatalf("second Inject: %v", err)
	}
	ifs, _ := prog.Stmts.If(branch.(*IfBranchSite).If)
	blk, ok := prog.Stmts.Block(ifs.Then)
	if !ok {
		t.Fatalf("then branch not promoted to a block")
	}
	if len(blk.Stmts) != 3 || blk.Stmts[0] != first || blk.Stmts[1] != second {
		t.Fatalf("unexpected promoted block:\n%s", format.Stmt(prog.Builder, ifs.Then))
	}
	if next, _ := branch.Next(); next != blk.Stmts[2] {
		t.Errorf("Next changed after injection")
	}
}

func TestBlockSiteErrors(t *testing.T) {
	prog := parse(t, shader)
	var trailing, beforeReturn *BlockSite
	for _, p := range Find(prog, nil).All() {
		bs, ok := p.(*BlockSite)
		if !ok || bs.InSwitch() {
			continue
		}
		if !bs.HasNext() && trailing == nil {
			trailing = bs
		}
		if next, err := bs.Next(); err == nil && prog.Stmts.Kind(next) == ast.StmtReturn {
			beforeReturn = bs
		}
	}
	if _, err := trailing.Next(); !errors.Is(err, ErrNoNextStatement) {
		t.Errorf("Next on trailing site: %v", err)
	}
	if err := trailing.ReplaceNext(prog.Stmts.NewNull(source.Span{})); !errors.Is(err, ErrNoNextStatement) {
		t.Errorf("ReplaceNext on trailing site: %v", err)
	}

	ret, _ := beforeReturn.Next()
	blk, _ := prog.Stmts.Block(beforeReturn.Block)
	blk.Stmts = slices.DeleteFunc(blk.Stmts, func(s ast.StmtID) bool { return s == ret })
	if err := beforeReturn.Inject(prog.Stmts.NewNull(source.Span{})); !errors.Is(err, ErrDetached) {
		t.Errorf("Inject after removal: %v, want ErrDetached", err)
	}
}

func TestInjectKeepsOrderAcrossSites(t *testing.T) {
	prog := parse(t, "void main() {\n  int a = 1;\n  a = 2;\n}\n")
	points := Find(prog, nil).All()
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	for i, p := range points {
		marker := prog.Exprs.Invoke("mark", prog.Exprs.Int(string(rune('0'+i))))
		if err := p.Inject(prog.Stmts.NewExpr(source.Span{}, marker)); err != nil {
			t.Fatalf("Inject %d: %v", i, err)
		}
	}
	out := string(format.Program(prog, format.Options{}))
	order := []string{"mark(0)", "int a = 1;", "mark(1)", "a = 2;", "mark(2)"}
	pos := 0
	for _, s := range order {
		i := strings.Index(out[pos:], s)
		if i < 0 {
			t.Fatalf("%q missing or out of order in\n%s", s, out)
		}
		pos += i + len(s)
	}
}
