package parser

import (
	"glfuzz/internal/ast"
	"glfuzz/internal/diag"
	"glfuzz/internal/token"
)

var binaryOps = map[token.Kind]ast.ExprBinaryOp{
	token.Star:    ast.ExprBinaryMul,
	token.Slash:   ast.ExprBinaryDiv,
	token.Percent: ast.ExprBinaryMod,
	token.Plus:    ast.ExprBinaryAdd,
	token.Minus:   ast.ExprBinarySub,
	token.Shl:     ast.ExprBinaryShl,
	token.Shr:     ast.ExprBinaryShr,
	token.Lt:      ast.ExprBinaryLess,
	token.LtEq:    ast.ExprBinaryLessEq,
	token.Gt:      ast.ExprBinaryGreater,
	token.GtEq:    ast.ExprBinaryGreaterEq,
	token.EqEq:    ast.ExprBinaryEq,
	token.BangEq:  ast.ExprBinaryNotEq,
	token.Amp:     ast.ExprBinaryBitAnd,
	token.Caret:   ast.ExprBinaryBitXor,
	token.Pipe:    ast.ExprBinaryBitOr,
	token.AndAnd:  ast.ExprBinaryLogicalAnd,
	token.XorXor:  ast.ExprBinaryLogicalXor,
	token.OrOr:    ast.ExprBinaryLogicalOr,
}

var assignOps = map[token.Kind]ast.ExprBinaryOp{
	token.Assign:        ast.ExprBinaryAssign,
	token.PlusAssign:    ast.ExprBinaryAddAssign,
	token.MinusAssign:   ast.ExprBinarySubAssign,
	token.StarAssign:    ast.ExprBinaryMulAssign,
	token.SlashAssign:   ast.ExprBinaryDivAssign,
	token.PercentAssign: ast.ExprBinaryModAssign,
	token.AmpAssign:     ast.ExprBinaryBitAndAssign,
	token.PipeAssign:    ast.ExprBinaryBitOrAssign,
	token.CaretAssign:   ast.ExprBinaryBitXorAssign,
	token.ShlAssign:     ast.ExprBinaryShlAssign,
	token.ShrAssign:     ast.ExprBinaryShrAssign,
}

// parseExpr разбирает выражение с оператором запятая.
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	start := p.peek().Span
	left, ok := p.parseAssignment()
	if !ok {
		return ast.NoExprID, false
	}
	for p.eat(token.Comma) {
		right, ok := p.parseAssignment()
		if !ok {
			return ast.NoExprID, false
		}
		left = p.prog.Exprs.NewBinary(start.Cover(p.lastSpan), ast.ExprBinaryComma, left, right)
	}
	return left, true
}

// parseAssignment: присваивание правоассоциативно.
func (p *Parser) parseAssignment() (ast.ExprID, bool) {
	start := p.peek().Span
	left, ok := p.parseTernary()
	if !ok {
		return ast.NoExprID, false
	}
	if op, isAssign := assignOps[p.peek().Kind]; isAssign {
		p.advance()
		right, ok := p.parseAssignment()
		if !ok {
			return ast.NoExprID, false
		}
		return p.prog.Exprs.NewBinary(start.Cover(p.lastSpan), op, left, right), true
	}
	return left, true
}

func (p *Parser) parseTernary() (ast.ExprID, bool) {
	start := p.peek().Span
	cond, ok := p.parseBinary(2)
	if !ok {
		return ast.NoExprID, false
	}
	if !p.eat(token.Question) {
		return cond, true
	}
	then, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' in conditional expression"); !ok {
		return ast.NoExprID, false
	}
	els, ok := p.parseAssignment()
	if !ok {
		return ast.NoExprID, false
	}
	return p.prog.Exprs.NewTernary(start.Cover(p.lastSpan), cond, then, els), true
}

// parseBinary: precedence climbing над таблицей ast.ExprBinaryOp.Precedence.
func (p *Parser) parseBinary(minPrec int) (ast.ExprID, bool) {
	start := p.peek().Span
	left, ok := p.parseUnary()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		op, isBinary := binaryOps[p.peek().Kind]
		if !isBinary || op.Precedence() < minPrec {
			return left, true
		}
		p.advance()
		right, ok := p.parseBinary(op.Precedence() + 1)
		if !ok {
			return ast.NoExprID, false
		}
		left = p.prog.Exprs.NewBinary(start.Cover(p.lastSpan), op, left, right)
	}
}

func (p *Parser) parseUnary() (ast.ExprID, bool) {
	tok := p.peek()
	var op ast.ExprUnaryOp
	switch tok.Kind {
	case token.Minus:
		op = ast.ExprUnaryMinus
	case token.Plus:
		op = ast.ExprUnaryPlus
	case token.Bang:
		op = ast.ExprUnaryNot
	case token.Tilde:
		op = ast.ExprUnaryBitNot
	case token.PlusPlus:
		op = ast.ExprUnaryPreInc
	case token.MinusMinus:
		op = ast.ExprUnaryPreDec
	default:
		return p.parsePostfix()
	}
	p.advance()
	operand, ok := p.parseUnary()
	if !ok {
		return ast.NoExprID, false
	}
	return p.prog.Exprs.NewUnary(tok.Span.Cover(p.lastSpan), op, operand), true
}

func (p *Parser) parsePostfix() (ast.ExprID, bool) {
	start := p.peek().Span
	expr, ok := p.parsePrimary()
	if !ok {
		return ast.NoExprID, false
	}
	exprs := p.prog.Exprs
	for {
		switch p.peek().Kind {
		case token.LBracket:
			p.advance()
			index, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			if _, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'"); !ok {
				return ast.NoExprID, false
			}
			expr = exprs.NewIndex(start.Cover(p.lastSpan), expr, index)
		case token.Dot:
			p.advance()
			field, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected field name")
			if !ok {
				return ast.NoExprID, false
			}
			expr = exprs.NewMember(start.Cover(p.lastSpan), expr, field.Text)
		case token.PlusPlus:
			p.advance()
			expr = exprs.NewUnary(start.Cover(p.lastSpan), ast.ExprUnaryPostInc, expr)
		case token.MinusMinus:
			p.advance()
			expr = exprs.NewUnary(start.Cover(p.lastSpan), ast.ExprUnaryPostDec, expr)
		default:
			return expr, true
		}
	}
}

func (p *Parser) parsePrimary() (ast.ExprID, bool) {
	tok := p.peek()
	exprs := p.prog.Exprs
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		return exprs.NewLiteral(tok.Span, ast.ExprLitInt, tok.Text), true
	case token.UintLit:
		p.advance()
		return exprs.NewLiteral(tok.Span, ast.ExprLitUint, tok.Text), true
	case token.FloatLit:
		p.advance()
		return exprs.NewLiteral(tok.Span, ast.ExprLitFloat, tok.Text), true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return exprs.NewLiteral(tok.Span, ast.ExprLitBool, tok.Text), true
	case token.LParen:
		p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
			return ast.NoExprID, false
		}
		return exprs.NewGroup(tok.Span.Cover(p.lastSpan), inner), true
	case token.Ident:
		p.advance()
		if p.at(token.LParen) {
			args, ok := p.parseArgs()
			if !ok {
				return ast.NoExprID, false
			}
			return exprs.NewCall(tok.Span.Cover(p.lastSpan), tok.Text, args), true
		}
		// T[N](...): конструктор массива
		if p.isTypeName(tok) && p.at(token.LBracket) && p.peekAt(2).Kind == token.RBracket && p.peekAt(3).Kind == token.LParen {
			n, ok := p.parseArraySize()
			if !ok {
				return ast.NoExprID, false
			}
			args, ok := p.parseArgs()
			if !ok {
				return ast.NoExprID, false
			}
			return exprs.NewArrayCtor(tok.Span.Cover(p.lastSpan), tok.Text, n, args), true
		}
		return exprs.NewIdent(tok.Span, tok.Text), true
	}
	return ast.NoExprID, p.err(diag.SynUnexpectedToken, "expected expression, got \""+tok.Text+"\"")
}

func (p *Parser) parseArgs() ([]ast.ExprID, bool) {
	p.advance() // (
	var args []ast.ExprID
	if p.at(token.Ident) && p.peek().Text == "void" && p.peekAt(1).Kind == token.RParen {
		p.advance()
	}
	for !p.atOr(token.RParen, token.EOF) {
		a, ok := p.parseAssignment()
		if !ok {
			return nil, false
		}
		args = append(args, a)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after arguments"); !ok {
		return nil, false
	}
	return args, true
}
