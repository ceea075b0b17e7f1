package format

import (
	"fmt"
	"strings"

	"glfuzz/internal/ast"
)

const (
	precTernary = 1 // на уровне присваивания, разбирается правоассоциативно
	precUnary   = 13
	precPostfix = 14
)

func (pr *printer) expr(id ast.ExprID) string {
	return pr.exprPrec(id, 0)
}

// exprPrec renders id, parenthesizing it when it binds looser than min.
func (pr *printer) exprPrec(id ast.ExprID, min int) string {
	s, prec := pr.render(id)
	if prec < min {
		return "(" + s + ")"
	}
	return s
}

func (pr *printer) render(id ast.ExprID) (string, int) {
	b := pr.b
	ex := b.Exprs.Get(id)
	if ex == nil {
		return "", precPostfix
	}
	switch ex.Kind {
	case ast.ExprIdent:
		d, _ := b.Exprs.Ident(id)
		return d.Name, precPostfix
	case ast.ExprLit:
		d, _ := b.Exprs.Literal(id)
		return d.Text, precPostfix
	case ast.ExprGroup:
		d, _ := b.Exprs.Group(id)
		return "(" + pr.expr(d.Inner) + ")", precPostfix
	case ast.ExprCall:
		d, _ := b.Exprs.Call(id)
		args := make([]string, len(d.Args))
		for i, a := range d.Args {
			args[i] = pr.exprPrec(a, 1)
		}
		callee := d.Callee
		if d.ArrayLen != 0 {
			callee += fmt.Sprintf("[%d]", d.ArrayLen)
		}
		return callee + "(" + strings.Join(args, ", ") + ")", precPostfix
	case ast.ExprIndex:
		d, _ := b.Exprs.Index(id)
		return pr.exprPrec(d.Target, precPostfix) + "[" + pr.expr(d.Index) + "]", precPostfix
	case ast.ExprMember:
		d, _ := b.Exprs.Member(id)
		return pr.exprPrec(d.Target, precPostfix) + "." + d.Field, precPostfix
	case ast.ExprUnary:
		d, _ := b.Exprs.Unary(id)
		if d.Op.IsPostfix() {
			return pr.exprPrec(d.Operand, precPostfix) + d.Op.String(), precPostfix
		}
		operand := pr.exprPrec(d.Operand, precUnary)
		// "- -x" и "+ +x" не должны слипаться в "--x"
		if (d.Op == ast.ExprUnaryMinus || d.Op == ast.ExprUnaryPlus) && strings.HasPrefix(operand, d.Op.String()) {
			operand = " " + operand
		}
		return d.Op.String() + operand, precUnary
	case ast.ExprBinary:
		d, _ := b.Exprs.Binary(id)
		prec := d.Op.Precedence()
		if d.Op.IsAssign() {
			return pr.exprPrec(d.Left, precUnary) + " " + d.Op.String() + " " + pr.exprPrec(d.Right, prec), prec
		}
		if d.Op == ast.ExprBinaryComma {
			return pr.exprPrec(d.Left, prec) + ", " + pr.exprPrec(d.Right, prec+1), prec
		}
		return pr.exprPrec(d.Left, prec) + " " + d.Op.String() + " " + pr.exprPrec(d.Right, prec+1), prec
	case ast.ExprTernary:
		d, _ := b.Exprs.Ternary(id)
		return pr.exprPrec(d.Cond, 2) + " ? " + pr.expr(d.Then) + " : " + pr.exprPrec(d.Else, precTernary), precTernary
	}
	return "", precPostfix
}
