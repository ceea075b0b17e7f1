package parser

import (
	"glfuzz/internal/ast"
	"glfuzz/internal/diag"
	"glfuzz/internal/token"
)

// parseBlock разбирает "{ stmt* }". newScope=false только для тела функции.
func (p *Parser) parseBlock(newScope bool) (ast.StmtID, bool) {
	start := p.advance().Span // {
	var stmts []ast.StmtID
	for !p.atOr(token.RBrace, token.EOF) {
		st, ok := p.parseStmt()
		if !ok {
			if p.opts.Enough() {
				return ast.NoStmtID, false
			}
			p.resyncStmt()
			continue
		}
		stmts = append(stmts, st)
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}'"); !ok {
		return ast.NoStmtID, false
	}
	return p.prog.Stmts.NewBlock(start.Cover(p.lastSpan), stmts, newScope), true
}

// resyncStmt пропускает токены до ';' (включительно) или до '}' текущего блока.
func (p *Parser) resyncStmt() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.Semicolon:
			p.advance()
			if depth == 0 {
				return
			}
		case token.LBrace:
			depth++
			p.advance()
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
			p.advance()
		default:
			p.advance()
		}
	}
}

func (p *Parser) parseStmt() (ast.StmtID, bool) {
	tok := p.peek()
	stmts := p.prog.Stmts
	switch tok.Kind {
	case token.LBrace:
		return p.parseBlock(true)
	case token.Semicolon:
		p.advance()
		return stmts.NewNull(tok.Span), true
	case token.KwIf:
		return p.parseIf()
	case token.KwFor:
		return p.parseFor()
	case token.KwWhile:
		p.advance()
		cond, ok := p.parseParenExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		body, ok := p.parseStmt()
		if !ok {
			return ast.NoStmtID, false
		}
		return stmts.NewWhile(tok.Span.Cover(p.lastSpan), cond, body), true
	case token.KwDo:
		p.advance()
		body, ok := p.parseStmt()
		if !ok {
			return ast.NoStmtID, false
		}
		if _, ok := p.expect(token.KwWhile, diag.SynUnexpectedToken, "expected 'while' after do body"); !ok {
			return ast.NoStmtID, false
		}
		cond, ok := p.parseParenExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		if !p.semicolon() {
			return ast.NoStmtID, false
		}
		return stmts.NewDo(tok.Span.Cover(p.lastSpan), body, cond), true
	case token.KwSwitch:
		p.advance()
		cond, ok := p.parseParenExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		if !p.at(token.LBrace) {
			return ast.NoStmtID, p.err(diag.SynUnexpectedToken, "expected '{' after switch")
		}
		body, ok := p.parseBlock(true)
		if !ok {
			return ast.NoStmtID, false
		}
		return stmts.NewSwitch(tok.Span.Cover(p.lastSpan), cond, body), true
	case token.KwCase:
		p.advance()
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after case"); !ok {
			return ast.NoStmtID, false
		}
		return stmts.NewCase(tok.Span.Cover(p.lastSpan), value), true
	case token.KwDefault:
		p.advance()
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after default"); !ok {
			return ast.NoStmtID, false
		}
		return stmts.NewDefault(tok.Span.Cover(p.lastSpan)), true
	case token.KwBreak:
		p.advance()
		return stmts.NewBreak(tok.Span), p.semicolon()
	case token.KwContinue:
		p.advance()
		return stmts.NewContinue(tok.Span), p.semicolon()
	case token.KwDiscard:
		p.advance()
		return stmts.NewDiscard(tok.Span), p.semicolon()
	case token.KwReturn:
		p.advance()
		value := ast.NoExprID
		if !p.at(token.Semicolon) {
			v, ok := p.parseExpr()
			if !ok {
				return ast.NoStmtID, false
			}
			value = v
		}
		if !p.semicolon() {
			return ast.NoStmtID, false
		}
		return stmts.NewReturn(tok.Span.Cover(p.lastSpan), value), true
	case token.KwStruct:
		def, vd, ok := p.parseStructDecl()
		if !ok {
			return ast.NoStmtID, false
		}
		return stmts.NewStruct(tok.Span.Cover(p.lastSpan), ast.StmtStructData{Def: def, Vars: vd.Vars}), true
	}
	if p.startsDecl() {
		return p.parseDeclStmt()
	}
	expr, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	if !p.semicolon() {
		return ast.NoStmtID, false
	}
	return stmts.NewExpr(tok.Span.Cover(p.lastSpan), expr), true
}

func (p *Parser) semicolon() bool {
	_, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';'")
	return ok
}

// startsDecl: квалификатор, либо "T name", либо "T[N] name".
func (p *Parser) startsDecl() bool {
	tok := p.peek()
	if tok.Kind.IsQualifier() {
		return true
	}
	if !p.isTypeName(tok) {
		return false
	}
	next := p.peekAt(1)
	if next.Kind == token.Ident {
		return true
	}
	return next.Kind == token.LBracket && p.peekAt(3).Kind == token.RBracket && p.peekAt(4).Kind == token.Ident
}

func (p *Parser) parseDeclStmt() (ast.StmtID, bool) {
	start := p.peek().Span
	q, ok := p.parseQualifiers()
	if !ok {
		return ast.NoStmtID, false
	}
	t, ok := p.parseTypeName()
	if !ok {
		return ast.NoStmtID, false
	}
	t.Quals = q
	vd, ok := p.parseDeclarators(t)
	if !ok {
		return ast.NoStmtID, false
	}
	return p.prog.Stmts.NewDecl(start.Cover(p.lastSpan), vd), true
}

func (p *Parser) parseParenExpr() (ast.ExprID, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return ast.NoExprID, false
	}
	e, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return ast.NoExprID, false
	}
	return e, true
}

func (p *Parser) parseIf() (ast.StmtID, bool) {
	start := p.advance().Span
	cond, ok := p.parseParenExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	then, ok := p.parseStmt()
	if !ok {
		return ast.NoStmtID, false
	}
	els := ast.NoStmtID
	if p.eat(token.KwElse) {
		els, ok = p.parseStmt()
		if !ok {
			return ast.NoStmtID, false
		}
	}
	return p.prog.Stmts.NewIf(start.Cover(p.lastSpan), cond, then, els), true
}

func (p *Parser) parseFor() (ast.StmtID, bool) {
	start := p.advance().Span
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after for"); !ok {
		return ast.NoStmtID, false
	}
	var data ast.StmtForData
	switch {
	case p.at(token.Semicolon):
		data.Init = p.prog.Stmts.NewNull(p.advance().Span)
	case p.startsDecl():
		init, ok := p.parseDeclStmt()
		if !ok {
			return ast.NoStmtID, false
		}
		data.Init = init
	default:
		initStart := p.peek().Span
		e, ok := p.parseExpr()
		if !ok || !p.semicolon() {
			return ast.NoStmtID, false
		}
		data.Init = p.prog.Stmts.NewExpr(initStart.Cover(p.lastSpan), e)
	}
	if !p.at(token.Semicolon) {
		cond, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		data.Cond = cond
	}
	if !p.semicolon() {
		return ast.NoStmtID, false
	}
	if !p.at(token.RParen) {
		post, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		data.Post = post
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return ast.NoStmtID, false
	}
	body, ok := p.parseStmt()
	if !ok {
		return ast.NoStmtID, false
	}
	data.Body = body
	return p.prog.Stmts.NewFor(start.Cover(p.lastSpan), data), true
}
