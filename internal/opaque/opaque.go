// Package opaque builds expressions whose value is fixed at run time but
// that a compiler cannot fold: opaque true, false, zero and one, built
// from the injectionSwitch uniform and gl_FragCoord.
package opaque

import (
	"errors"
	"fmt"

	"glfuzz/internal/ast"
	"glfuzz/internal/config"
	"glfuzz/internal/fuzzer"
	"glfuzz/internal/rng"
	"glfuzz/internal/source"
	"glfuzz/internal/types"
)

// ErrNoOpaqueValue is returned for types without a zero or one, such as
// bool, structs and arrays.
var ErrNoOpaqueValue = errors.New("type has no opaque zero or one")

// Generator allocates opaque expressions into B.
type Generator struct {
	B      *ast.Builder
	Rand   rng.Source
	Params config.GenerationParams
}

// New returns a generator for the shader kind named in params.
func New(b *ast.Builder, rnd rng.Source, params config.GenerationParams) *Generator {
	return &Generator{B: b, Rand: rnd, Params: params}
}

func (g *Generator) tooDeep(depth int) bool {
	return fuzzer.TooDeep(g.Rand, depth, g.Params.MaxExprDepth)
}

// True returns an expression that always evaluates to true.
func (g *Generator) True() ast.ExprID { return g.Bool(true, 0) }

// False returns an expression that always evaluates to false.
func (g *Generator) False() ast.ExprID { return g.Bool(false, 0) }

// Bool returns an opaque expression evaluating to value.
func (g *Generator) Bool(value bool, depth int) ast.ExprID {
	exprs := g.B.Exprs
	if g.tooDeep(depth) {
		return exprs.Bool(value)
	}
	type maker func() ast.ExprID
	makers := []maker{func() ast.ExprID { return g.identity(g.Bool(value, depth+1), types.Bool, depth+1) }}
	if g.Params.InjectionSwitchAvailable {
		makers = append(makers, func() ast.ExprID { return g.fromInjectionSwitch(value) })
	}
	if g.Params.ShaderKind == ast.ShaderFragment {
		makers = append(makers, func() ast.ExprID { return g.fromFragCoord(value, depth+1) })
	}
	return makers[g.Rand.NextInt(len(makers))]()
}

// fromInjectionSwitch relies on injectionSwitch being (0.0, 1.0).
func (g *Generator) fromInjectionSwitch(value bool) ast.ExprID {
	exprs := g.B.Exprs
	x := exprs.NewMember(source.Span{}, exprs.Var(InjectionSwitch), "x")
	y := exprs.NewMember(source.Span{}, exprs.Var(InjectionSwitch), "y")
	if value {
		cmp := exprs.Paren(exprs.Bin(ast.ExprBinaryLess, x, y))
		return exprs.Invoke(MarkerTrue, exprs.Bool(true), cmp)
	}
	cmp := exprs.Paren(exprs.Bin(ast.ExprBinaryGreater, x, y))
	return exprs.Invoke(MarkerFalse, exprs.Bool(false), cmp)
}

// fromFragCoord uses that pixel centres have non-negative coordinates.
func (g *Generator) fromFragCoord(value bool, depth int) ast.ExprID {
	exprs := g.B.Exprs
	field := "x"
	if g.Rand.NextBool() {
		field = "y"
	}
	coord := exprs.NewMember(source.Span{}, exprs.Var("gl_FragCoord"), field)
	zero := g.floatZero(depth)
	op := ast.ExprBinaryLess
	if value {
		op = ast.ExprBinaryGreaterEq
	}
	return exprs.Paren(exprs.Bin(op, coord, zero))
}

// Zero returns an opaque zero of a numeric scalar, vector or matrix type.
func (g *Generator) Zero(t types.Type, depth int) (ast.ExprID, error) {
	return g.constant(t, false, depth)
}

// One returns an opaque one. For matrices this is the identity matrix.
func (g *Generator) One(t types.Type, depth int) (ast.ExprID, error) {
	return g.constant(t, true, depth)
}

func (g *Generator) constant(t types.Type, one bool, depth int) (ast.ExprID, error) {
	t = t.Unqualified()
	if !(t.IsScalar() || t.IsVector() || t.IsMatrix()) || t.ScalarKind() == types.KindBool {
		return ast.NoExprID, fmt.Errorf("%s: %w", t, ErrNoOpaqueValue)
	}
	base := g.floatZero(depth)
	if one {
		base = g.floatOne(depth)
	}
	if t == types.Float {
		return base, nil
	}
	return g.B.Exprs.Invoke(t.String(), base), nil
}

func (g *Generator) floatZero(depth int) ast.ExprID {
	exprs := g.B.Exprs
	lit := func() ast.ExprID { return exprs.NewLiteral(source.Span{}, ast.ExprLitFloat, "0.0") }
	if !g.Params.InjectionSwitchAvailable || g.tooDeep(depth) {
		return lit()
	}
	if g.Rand.NextInt(3) == 0 {
		return g.identity(g.floatZero(depth+1), types.Float, depth+1)
	}
	x := exprs.NewMember(source.Span{}, exprs.Var(InjectionSwitch), "x")
	return exprs.Invoke(MarkerZero, lit(), x)
}

func (g *Generator) floatOne(depth int) ast.ExprID {
	exprs := g.B.Exprs
	lit := func() ast.ExprID { return exprs.NewLiteral(source.Span{}, ast.ExprLitFloat, "1.0") }
	if !g.Params.InjectionSwitchAvailable || g.tooDeep(depth) {
		return lit()
	}
	if g.Rand.NextInt(3) == 0 {
		return g.identity(g.floatOne(depth+1), types.Float, depth+1)
	}
	y := exprs.NewMember(source.Span{}, exprs.Var(InjectionSwitch), "y")
	return exprs.Invoke(MarkerOne, lit(), y)
}

// identity wraps e as _GLF_IDENTITY(e, e') where e' is e combined with a
// neutral element.
func (g *Generator) identity(e ast.ExprID, t types.Type, depth int) ast.ExprID {
	b := g.B
	orig := b.CloneExpr(b, e)
	var rewritten ast.ExprID
	if t == types.Bool {
		if g.Rand.NextBool() {
			rewritten = b.Exprs.Bin(ast.ExprBinaryLogicalAnd, b.Exprs.Paren(e), g.Bool(true, depth+1))
		} else {
			rewritten = b.Exprs.Bin(ast.ExprBinaryLogicalOr, b.Exprs.Paren(e), g.Bool(false, depth+1))
		}
	} else {
		switch g.Rand.NextInt(3) {
		case 0:
			rewritten = b.Exprs.Bin(ast.ExprBinaryAdd, b.Exprs.Paren(e), g.floatZero(depth+1))
		case 1:
			rewritten = b.Exprs.Bin(ast.ExprBinarySub, b.Exprs.Paren(e), g.floatZero(depth+1))
		default:
			rewritten = b.Exprs.Bin(ast.ExprBinaryMul, b.Exprs.Paren(e), g.floatOne(depth+1))
		}
	}
	return b.Exprs.Invoke(MarkerIdentity, orig, b.Exprs.Paren(rewritten))
}

// Dead returns _GLF_DEAD(<opaque false>), the guard of unreachable code.
func (g *Generator) Dead() ast.ExprID {
	return g.B.Exprs.Invoke(MarkerDead, g.False())
}

// WrappedIfTrue returns the condition of an if whose then-branch holds
// the original code.
func (g *Generator) WrappedIfTrue() ast.ExprID {
	return g.B.Exprs.Invoke(MarkerWrappedIfTrue, g.True())
}

// WrappedIfFalse returns the condition of an if whose else-branch holds
// the original code.
func (g *Generator) WrappedIfFalse() ast.ExprID {
	return g.B.Exprs.Invoke(MarkerWrappedIfFalse, g.False())
}

// SwitchValue returns _GLF_SWITCH(<opaque int zero>).
func (g *Generator) SwitchValue() ast.ExprID {
	zero, _ := g.Zero(types.Int, 0)
	return g.B.Exprs.Invoke(MarkerSwitch, zero)
}

// Mark wraps e in the marker macro name.
func Mark(b *ast.Builder, name string, e ast.ExprID) ast.ExprID {
	return b.Exprs.Invoke(name, e)
}
