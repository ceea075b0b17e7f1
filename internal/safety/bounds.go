package safety

import (
	"strconv"

	"glfuzz/internal/ast"
	"glfuzz/internal/sema"
	"glfuzz/internal/source"
	"glfuzz/internal/symbols"
	"glfuzz/internal/types"
)

// MakeArrayAccessesInBounds clamps every array, vector and matrix index of
// prog that is not a constant known to lie in [0, size):
//
//	a[i]  ->  a[((i) >= 0 && (i) < 5) ? (i) : 0]
//	a[u]  ->  a[((u) < 5u) ? (u) : 0u]
//
// An index with side effects must run exactly once, so it goes through
// clamp instead:
//
//	a[i++]  ->  a[clamp(i++, 0, 4)]
//
// Indices whose type cannot be inferred are left alone. It returns the
// number of accesses rewritten.
func MakeArrayAccessesInBounds(prog *ast.Program) int {
	c := &clamper{prog: prog}
	symbols.Walk(prog, func(stmt ast.StmtID, _ ast.DeclID, scope *symbols.Scope) bool {
		c.scope = scope
		if fs, ok := prog.Stmts.For(stmt); ok {
			// условие и шаг видят переменную из инициализатора
			inner := scope.Push(symbols.ScopeLoop)
			if fs.Init.IsValid() {
				symbols.DeclareLocal(inner, prog.Builder, fs.Init)
			}
			c.scope = inner
		}
		for _, e := range prog.StmtExprs(stmt) {
			c.expr(e)
		}
		return true
	})
	return c.count
}

type clamper struct {
	prog  *ast.Program
	scope *symbols.Scope
	count int
}

func (c *clamper) expr(id ast.ExprID) {
	for _, ch := range c.prog.ExprChildren(id) {
		c.expr(ch)
	}
	d, ok := c.prog.Exprs.Index(id)
	if !ok {
		return
	}
	target, index := d.Target, d.Index
	bound, ok := sema.TypeOf(c.prog, c.scope, target).IndexBound()
	if !ok || staticallyInBounds(c.prog.Builder, index, bound) {
		return
	}
	var clamped ast.ExprID
	once := hasSideEffects(c.prog.Builder, index)
	switch t := sema.TypeOf(c.prog, c.scope, index); {
	case (t == types.Int || t == types.Uint) && once:
		clamped = c.clampOnce(index, bound, t == types.Uint)
	case t == types.Int:
		clamped = c.clampInt(index, bound)
	case t == types.Uint:
		clamped = c.clampUint(index, bound)
	default:
		return
	}
	// аллокации выше могли переместить арену
	d, _ = c.prog.Exprs.Index(id)
	d.Index = clamped
	c.count++
}

func (c *clamper) clampInt(index ast.ExprID, bound uint32) ast.ExprID {
	exprs := c.prog.Exprs
	n := strconv.FormatUint(uint64(bound), 10)
	inRange := exprs.Bin(ast.ExprBinaryLogicalAnd,
		exprs.Bin(ast.ExprBinaryGreaterEq, exprs.Paren(c.copy(index)), exprs.Int("0")),
		exprs.Bin(ast.ExprBinaryLess, exprs.Paren(c.copy(index)), exprs.Int(n)))
	return exprs.NewTernary(source.Span{}, exprs.Paren(inRange), exprs.Paren(index), exprs.Int("0"))
}

func (c *clamper) clampUint(index ast.ExprID, bound uint32) ast.ExprID {
	exprs := c.prog.Exprs
	n := strconv.FormatUint(uint64(bound), 10) + "u"
	inRange := exprs.Bin(ast.ExprBinaryLess, exprs.Paren(c.copy(index)), uintLit(exprs, n))
	return exprs.NewTernary(source.Span{}, exprs.Paren(inRange), exprs.Paren(index), uintLit(exprs, "0u"))
}

func (c *clamper) clampOnce(index ast.ExprID, bound uint32, unsigned bool) ast.ExprID {
	exprs := c.prog.Exprs
	last := strconv.FormatUint(uint64(bound)-1, 10)
	if unsigned {
		return exprs.Invoke("clamp", index, uintLit(exprs, "0u"), uintLit(exprs, last+"u"))
	}
	return exprs.Invoke("clamp", index, exprs.Int("0"), exprs.Int(last))
}

// hasSideEffects reports whether evaluating id can change state:
// assignments, increments, decrements and calls to user functions.
func hasSideEffects(b *ast.Builder, id ast.ExprID) bool {
	found := false
	b.WalkExpr(id, func(e ast.ExprID) bool {
		if bin, ok := b.Exprs.Binary(e); ok && bin.Op.IsAssign() {
			found = true
		} else if un, ok := b.Exprs.Unary(e); ok && un.Op.HasSideEffect() {
			found = true
		} else if call, ok := b.Exprs.Call(e); ok && !pureCallee(call.Callee) {
			found = true
		}
		return !found
	})
	return found
}

func (c *clamper) copy(id ast.ExprID) ast.ExprID {
	return c.prog.CloneExpr(c.prog.Builder, id)
}

func uintLit(exprs *ast.Exprs, text string) ast.ExprID {
	return exprs.NewLiteral(source.Span{}, ast.ExprLitUint, text)
}

// staticallyInBounds accepts constant indices, not just literals.
func staticallyInBounds(b *ast.Builder, index ast.ExprID, bound uint32) bool {
	v, ok := sema.FoldConst(b, index)
	if !ok || v.Kind == types.KindBool {
		return false
	}
	return v.Int >= 0 && v.Int < int64(bound)
}
