package sema

import (
	"strconv"
	"strings"

	"fortio.org/safecast"

	"glfuzz/internal/ast"
	"glfuzz/internal/types"
)

// Const is the value of a folded integer or boolean expression.
type Const struct {
	Kind types.Kind // KindInt, KindUint or KindBool
	Int  int64
	Bool bool
}

// FoldConst evaluates id when it is built only from int, uint and bool
// literals, parentheses and the operators + - * / << >> & | ^ && || ^^
// together with unary - + ! ~. Results that leave the 32-bit range and
// division by zero are not folded.
func FoldConst(b *ast.Builder, id ast.ExprID) (Const, bool) {
	ex := b.Exprs.Get(id)
	if ex == nil {
		return Const{}, false
	}
	switch ex.Kind {
	case ast.ExprLit:
		d, _ := b.Exprs.Literal(id)
		return literalConst(d)
	case ast.ExprGroup:
		d, _ := b.Exprs.Group(id)
		return FoldConst(b, d.Inner)
	case ast.ExprUnary:
		d, _ := b.Exprs.Unary(id)
		v, ok := FoldConst(b, d.Operand)
		if !ok {
			return Const{}, false
		}
		return foldUnary(d.Op, v)
	case ast.ExprBinary:
		d, _ := b.Exprs.Binary(id)
		l, ok := FoldConst(b, d.Left)
		if !ok {
			return Const{}, false
		}
		r, ok := FoldConst(b, d.Right)
		if !ok {
			return Const{}, false
		}
		return foldBinary(d.Op, l, r)
	}
	return Const{}, false
}

func literalConst(d *ast.ExprLiteralData) (Const, bool) {
	switch d.Kind {
	case ast.ExprLitBool:
		return Const{Kind: types.KindBool, Bool: d.Text == "true"}, true
	case ast.ExprLitInt:
		v, err := strconv.ParseInt(d.Text, 0, 64)
		if err != nil {
			return Const{}, false
		}
		return narrow(types.KindInt, v)
	case ast.ExprLitUint:
		text := strings.TrimRight(d.Text, "uU")
		v, err := strconv.ParseUint(text, 0, 32)
		if err != nil {
			return Const{}, false
		}
		return Const{Kind: types.KindUint, Int: int64(v)}, true
	}
	return Const{}, false
}

// narrow keeps v only when it fits the 32-bit representation of kind.
func narrow(kind types.Kind, v int64) (Const, bool) {
	switch kind {
	case types.KindInt:
		if _, err := safecast.Conv[int32](v); err != nil {
			return Const{}, false
		}
	case types.KindUint:
		if _, err := safecast.Conv[uint32](v); err != nil {
			return Const{}, false
		}
	default:
		return Const{}, false
	}
	return Const{Kind: kind, Int: v}, true
}

func foldUnary(op ast.ExprUnaryOp, v Const) (Const, bool) {
	switch op {
	case ast.ExprUnaryPlus:
		if v.Kind == types.KindBool {
			return Const{}, false
		}
		return v, true
	case ast.ExprUnaryMinus:
		if v.Kind != types.KindInt {
			return Const{}, false
		}
		return narrow(types.KindInt, -v.Int)
	case ast.ExprUnaryNot:
		if v.Kind != types.KindBool {
			return Const{}, false
		}
		return Const{Kind: types.KindBool, Bool: !v.Bool}, true
	case ast.ExprUnaryBitNot:
		switch v.Kind {
		case types.KindInt:
			return narrow(types.KindInt, ^v.Int)
		case types.KindUint:
			return Const{Kind: types.KindUint, Int: int64(^uint32(v.Int))}, true
		}
	}
	return Const{}, false
}

func foldBinary(op ast.ExprBinaryOp, l, r Const) (Const, bool) {
	if l.Kind == types.KindBool || r.Kind == types.KindBool {
		if l.Kind != r.Kind {
			return Const{}, false
		}
		switch op {
		case ast.ExprBinaryLogicalAnd:
			return Const{Kind: types.KindBool, Bool: l.Bool && r.Bool}, true
		case ast.ExprBinaryLogicalOr:
			return Const{Kind: types.KindBool, Bool: l.Bool || r.Bool}, true
		case ast.ExprBinaryLogicalXor:
			return Const{Kind: types.KindBool, Bool: l.Bool != r.Bool}, true
		}
		return Const{}, false
	}
	kind := l.Kind
	switch op {
	case ast.ExprBinaryShl:
		if r.Int < 0 || r.Int >= 32 {
			return Const{}, false
		}
		return narrow(kind, l.Int<<uint(r.Int))
	case ast.ExprBinaryShr:
		if r.Int < 0 || r.Int >= 32 {
			return Const{}, false
		}
		return narrow(kind, l.Int>>uint(r.Int))
	}
	if l.Kind != r.Kind {
		return Const{}, false
	}
	switch op {
	case ast.ExprBinaryAdd:
		return narrow(kind, l.Int+r.Int)
	case ast.ExprBinarySub:
		return narrow(kind, l.Int-r.Int)
	case ast.ExprBinaryMul:
		return narrow(kind, l.Int*r.Int)
	case ast.ExprBinaryDiv:
		if r.Int == 0 {
			return Const{}, false
		}
		return narrow(kind, l.Int/r.Int)
	case ast.ExprBinaryBitAnd:
		return narrow(kind, l.Int&r.Int)
	case ast.ExprBinaryBitOr:
		return narrow(kind, l.Int|r.Int)
	case ast.ExprBinaryBitXor:
		return narrow(kind, l.Int^r.Int)
	}
	return Const{}, false
}
