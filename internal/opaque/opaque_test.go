package opaque

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"glfuzz/internal/ast"
	"glfuzz/internal/config"
	"glfuzz/internal/format"
	"glfuzz/internal/rng"
	"glfuzz/internal/types"
)

// evaluator computes the run-time value of opaque expressions with
// injectionSwitch = (0, 1) and gl_FragCoord = (0.5, 0.5, 0, 1). Values are
// component lists; booleans are 0 or 1.
type evaluator struct {
	t *testing.T
	b *ast.Builder
}

func (ev evaluator) eval(id ast.ExprID) []float64 {
	exprs := ev.b.Exprs
	switch exprs.Get(id).Kind {
	case ast.ExprGroup:
		g, _ := exprs.Group(id)
		return ev.eval(g.Inner)
	case ast.ExprLit:
		lit, _ := exprs.Literal(id)
		switch lit.Text {
		case "true":
			return []float64{1}
		case "false":
			return []float64{0}
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(lit.Text, "u"), 64)
		if err != nil {
			ev.t.Fatalf("literal %q: %v", lit.Text, err)
		}
		return []float64{v}
	case ast.ExprIdent:
		v, _ := exprs.Ident(id)
		switch v.Name {
		case InjectionSwitch:
			return []float64{0, 1}
		case "gl_FragCoord":
			return []float64{0.5, 0.5, 0, 1}
		}
	case ast.ExprMember:
		m, _ := exprs.Member(id)
		vec := ev.eval(m.Target)
		return []float64{vec[strings.IndexByte("xyzw", m.Field[0])]}
	case ast.ExprCall:
		c, _ := exprs.Call(id)
		if IsMarker(c.Callee) {
			return ev.eval(c.Args[len(c.Args)-1])
		}
		arg := ev.eval(c.Args[0])
		if t, ok := types.LookupBasic(c.Callee); ok && t.Components() > 0 {
			out := make([]float64, t.Components())
			for i := range out {
				out[i] = arg[0]
			}
			return out
		}
	case ast.ExprBinary:
		bin, _ := exprs.Binary(id)
		l, r := ev.eval(bin.Left)[0], ev.eval(bin.Right)[0]
		switch bin.Op {
		case ast.ExprBinaryAdd:
			return []float64{l + r}
		case ast.ExprBinarySub:
			return []float64{l - r}
		case ast.ExprBinaryMul:
			return []float64{l * r}
		case ast.ExprBinaryLess:
			return truth(l < r)
		case ast.ExprBinaryGreater:
			return truth(l > r)
		case ast.ExprBinaryGreaterEq:
			return truth(l >= r)
		case ast.ExprBinaryLogicalAnd:
			return truth(l != 0 && r != 0)
		case ast.ExprBinaryLogicalOr:
			return truth(l != 0 || r != 0)
		}
	}
	ev.t.Fatalf("cannot evaluate %s", format.Expr(ev.b, id))
	return nil
}

func truth(v bool) []float64 {
	if v {
		return []float64{1}
	}
	return []float64{0}
}

func TestOpaqueBoolValues(t *testing.T) {
	for _, kind := range []ast.ShaderKind{ast.ShaderFragment, ast.ShaderVertex} {
		params := config.DefaultParams(kind)
		for seed := int64(1); seed <= 50; seed++ {
			prog := ast.NewProgram(kind)
			g := New(prog.Builder, rng.New(seed), params)
			ev := evaluator{t: t, b: prog.Builder}
			if got := ev.eval(g.True()); got[0] != 1 {
				t.Fatalf("%s seed %d: True() = %s evaluates to false", kind, seed, format.Expr(prog.Builder, g.True()))
			}
			f := g.False()
			if got := ev.eval(f); got[0] != 0 {
				t.Fatalf("%s seed %d: False() = %s evaluates to true", kind, seed, format.Expr(prog.Builder, f))
			}
		}
	}
}

func TestOpaqueZeroOne(t *testing.T) {
	params := config.DefaultParams(ast.ShaderFragment)
	ts := []types.Type{types.Float, types.Int, types.Uint, types.Vector(types.KindFloat, 3)}
	for seed := int64(1); seed <= 30; seed++ {
		prog := ast.NewProgram(ast.ShaderFragment)
		g := New(prog.Builder, rng.New(seed), params)
		ev := evaluator{t: t, b: prog.Builder}
		for _, typ := range ts {
			zero, err := g.Zero(typ, 0)
			if err != nil {
				t.Fatalf("Zero(%s): %v", typ, err)
			}
			for _, c := range ev.eval(zero) {
				if c != 0 {
					t.Fatalf("seed %d: Zero(%s) = %s is not zero", seed, typ, format.Expr(prog.Builder, zero))
				}
			}
			one, err := g.One(typ, 0)
			if err != nil {
				t.Fatalf("One(%s): %v", typ, err)
			}
			for _, c := range ev.eval(one) {
				if c != 1 {
					t.Fatalf("seed %d: One(%s) = %s is not one", seed, typ, format.Expr(prog.Builder, one))
				}
			}
		}
	}
}

func TestNoOpaqueBoolZero(t *testing.T) {
	prog := ast.NewProgram(ast.ShaderFragment)
	g := New(prog.Builder, rng.New(1), config.DefaultParams(ast.ShaderFragment))
	if _, err := g.Zero(types.Bool, 0); !errors.Is(err, ErrNoOpaqueValue) {
		t.Fatalf("err = %v, want ErrNoOpaqueValue", err)
	}
}

func TestWithoutInjectionSwitch(t *testing.T) {
	params := config.DefaultParams(ast.ShaderVertex)
	params.InjectionSwitchAvailable = false
	for seed := int64(1); seed <= 20; seed++ {
		prog := ast.NewProgram(ast.ShaderVertex)
		g := New(prog.Builder, rng.New(seed), params)
		text := format.Expr(prog.Builder, g.Dead())
		if strings.Contains(text, InjectionSwitch) || strings.Contains(text, "gl_FragCoord") {
			t.Fatalf("seed %d: %s uses an unavailable input", seed, text)
		}
	}
}

func TestMarkers(t *testing.T) {
	for _, name := range []string{MarkerDead, MarkerFuzzed, MarkerIdentity, MarkerSwitch, MarkerWrappedLoop} {
		if !IsMarker(name) {
			t.Errorf("IsMarker(%q) = false", name)
		}
	}
	if IsMarker("_GLF_NOPE") || IsMarker("main") {
		t.Errorf("IsMarker accepted a non-marker")
	}
	prog := ast.NewProgram(ast.ShaderFragment)
	g := New(prog.Builder, rng.New(3), config.DefaultParams(ast.ShaderFragment))
	if got := format.Expr(prog.Builder, g.Dead()); !strings.HasPrefix(got, MarkerDead+"(") {
		t.Errorf("Dead() = %s", got)
	}
	if got := format.Expr(prog.Builder, g.SwitchValue()); !strings.HasPrefix(got, MarkerSwitch+"(") {
		t.Errorf("SwitchValue() = %s", got)
	}
}
