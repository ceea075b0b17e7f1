package parser

import (
	"strings"

	"glfuzz/internal/ast"
	"glfuzz/internal/diag"
	"glfuzz/internal/token"
	"glfuzz/internal/types"
)

// parseItem разбирает одну конструкцию верхнего уровня.
func (p *Parser) parseItem() bool {
	start := p.peek().Span
	switch p.peek().Kind {
	case token.Directive:
		return p.parseDirective()
	case token.Semicolon:
		p.advance()
		return true
	case token.KwPrecision:
		return p.parsePrecision()
	case token.KwStruct:
		def, vars, ok := p.parseStructDecl()
		if !ok {
			return false
		}
		p.prog.Items = append(p.prog.Items, p.prog.Decls.NewStruct(start.Cover(p.lastSpan), def))
		if len(vars.Vars) > 0 {
			p.prog.Items = append(p.prog.Items, p.prog.Decls.NewVars(start.Cover(p.lastSpan), vars))
		}
		return true
	}

	q, ok := p.parseQualifiers()
	if !ok {
		return false
	}
	if p.at(token.KwStruct) {
		def, vars, ok := p.parseStructDecl()
		if !ok {
			return false
		}
		vars.Type.Quals = q
		p.prog.Items = append(p.prog.Items, p.prog.Decls.NewStruct(start.Cover(p.lastSpan), def))
		if len(vars.Vars) > 0 {
			p.prog.Items = append(p.prog.Items, p.prog.Decls.NewVars(start.Cover(p.lastSpan), vars))
		}
		return true
	}
	t, ok := p.parseTypeName()
	if !ok {
		return false
	}
	t.Quals = q
	if p.at(token.Ident) && p.peekAt(1).Kind == token.LParen {
		return p.parseFunction(t)
	}
	vd, ok := p.parseDeclarators(t)
	if !ok {
		return false
	}
	p.prog.Items = append(p.prog.Items, p.prog.Decls.NewVars(start.Cover(p.lastSpan), vd))
	return true
}

func (p *Parser) parseDirective() bool {
	tok := p.advance()
	if strings.HasPrefix(tok.Text, "#version") {
		if p.prog.Version != "" || len(p.prog.Items) > 0 {
			p.report(diag.SynBadVersionDirective, tok.Span, "#version must be the first directive")
			return true
		}
		p.prog.Version = tok.Text
		return true
	}
	p.report(diag.SynUnsupportedFeature, tok.Span, "unsupported preprocessor directive")
	return true
}

func (p *Parser) parsePrecision() bool {
	start := p.advance().Span
	var prec types.Precision
	switch p.advance().Kind {
	case token.KwHighp:
		prec = types.PrecisionHigh
	case token.KwMediump:
		prec = types.PrecisionMedium
	case token.KwLowp:
		prec = types.PrecisionLow
	default:
		return p.err(diag.SynUnexpectedToken, "expected precision qualifier")
	}
	t, ok := p.parseTypeName()
	if !ok {
		return false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';'"); !ok {
		return false
	}
	p.prog.Items = append(p.prog.Items, p.prog.Decls.NewPrecision(start.Cover(p.lastSpan), ast.PrecisionDecl{Precision: prec, Type: t}))
	return true
}

// parseStructDecl разбирает "struct S { ... } [declarators] ;".
func (p *Parser) parseStructDecl() (types.StructDef, ast.VarDecl, bool) {
	p.advance() // struct
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected struct name")
	if !ok {
		return types.StructDef{}, ast.VarDecl{}, false
	}
	def, ok := p.parseStructBody(nameTok.Text)
	if !ok {
		return def, ast.VarDecl{}, false
	}
	vd := ast.VarDecl{Type: types.Struct(def.Name)}
	if p.eat(token.Semicolon) {
		return def, vd, true
	}
	vd, ok = p.parseDeclarators(vd.Type)
	return def, vd, ok
}

// parseDeclarators разбирает "a[N] = init, b ;" включая завершающую ';'.
func (p *Parser) parseDeclarators(t types.Type) (ast.VarDecl, bool) {
	vd := ast.VarDecl{Type: t}
	for {
		nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected variable name")
		if !ok {
			return vd, false
		}
		d := ast.Declarator{Name: nameTok.Text}
		if p.at(token.LBracket) {
			n, ok := p.parseArraySize()
			if !ok {
				return vd, false
			}
			d.ArrayLen = n
		}
		if p.eat(token.Assign) {
			init, ok := p.parseAssignment()
			if !ok {
				return vd, false
			}
			d.Init = init
		}
		vd.Vars = append(vd.Vars, d)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after declaration"); !ok {
		return vd, false
	}
	return vd, true
}

// parseFunction разбирает определение или прототип функции после типа результата.
func (p *Parser) parseFunction(result types.Type) bool {
	start := p.peek().Span
	name := p.advance().Text
	p.advance() // (
	var params []ast.Param
	if p.at(token.Ident) && p.peek().Text == "void" && p.peekAt(1).Kind == token.RParen {
		p.advance()
	}
	for !p.atOr(token.RParen, token.EOF) {
		q, ok := p.parseQualifiers()
		if !ok {
			return false
		}
		t, ok := p.parseTypeName()
		if !ok {
			return false
		}
		t.Quals = q
		param := ast.Param{Type: t}
		if p.at(token.Ident) {
			param.Name = p.advance().Text
			if p.at(token.LBracket) {
				n, ok := p.parseArraySize()
				if !ok {
					return false
				}
				param.Type.ArrayLen = n
			}
		}
		params = append(params, param)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after parameters"); !ok {
		return false
	}
	fn := ast.FuncDecl{Name: name, Result: result, Params: params}
	if p.eat(token.Semicolon) {
		p.prog.Items = append(p.prog.Items, p.prog.Decls.NewFunc(start.Cover(p.lastSpan), fn))
		return true
	}
	if !p.at(token.LBrace) {
		return p.err(diag.SynUnexpectedToken, "expected function body")
	}
	body, ok := p.parseBlock(false)
	if !ok {
		return false
	}
	fn.Body = body
	p.prog.Items = append(p.prog.Items, p.prog.Decls.NewFunc(start.Cover(p.lastSpan), fn))
	return true
}
