package parser

import (
	"strconv"
	"strings"

	"fortio.org/safecast"

	"glfuzz/internal/diag"
	"glfuzz/internal/token"
	"glfuzz/internal/types"
)

// parseQualifiers разбирает последовательность квалификаторов в любом порядке.
func (p *Parser) parseQualifiers() (types.Qualifiers, bool) {
	var q types.Qualifiers
	for p.peek().Kind.IsQualifier() {
		tok := p.advance()
		switch tok.Kind {
		case token.KwConst:
			q.Storage = types.StorageConst
		case token.KwUniform:
			q.Storage = types.StorageUniform
		case token.KwIn:
			q.Storage = types.StorageIn
		case token.KwOut:
			q.Storage = types.StorageOut
		case token.KwInout:
			q.Storage = types.StorageInOut
		case token.KwHighp:
			q.Precision = types.PrecisionHigh
		case token.KwMediump:
			q.Precision = types.PrecisionMedium
		case token.KwLowp:
			q.Precision = types.PrecisionLow
		case token.KwFlat:
			q.Flat = true
		case token.KwLayout:
			layout, ok := p.parseLayout()
			if !ok {
				return q, false
			}
			q.Layout = layout
		}
	}
	return q, true
}

// parseLayout keeps the layout arguments verbatim, tokens joined by spaces.
func (p *Parser) parseLayout() (string, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after layout"); !ok {
		return "", false
	}
	var parts []string
	for !p.atOr(token.RParen, token.EOF) {
		parts = append(parts, p.advance().Text)
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return "", false
	}
	return strings.ReplaceAll(strings.Join(parts, " "), " ,", ","), true
}

// isTypeName reports whether tok names a built-in or a known struct type.
func (p *Parser) isTypeName(tok token.Token) bool {
	if tok.Kind != token.Ident {
		return false
	}
	if _, ok := types.LookupBasic(tok.Text); ok {
		return true
	}
	return p.structs[tok.Text]
}

// parseTypeName разбирает имя типа и необязательный суффикс "[N]".
func (p *Parser) parseTypeName() (types.Type, bool) {
	tok := p.peek()
	if !p.isTypeName(tok) {
		return types.Invalid, p.err(diag.SynExpectType, "expected type, got \""+tok.Text+"\"")
	}
	p.advance()
	t, ok := types.LookupBasic(tok.Text)
	if !ok {
		t = types.Struct(tok.Text)
	}
	if p.at(token.LBracket) {
		n, ok := p.parseArraySize()
		if !ok {
			return types.Invalid, false
		}
		t.ArrayLen = n
	}
	return t, true
}

// parseArraySize разбирает "[N]" с целочисленным литералом N > 0.
func (p *Parser) parseArraySize() (uint32, bool) {
	p.advance() // [
	tok := p.peek()
	if tok.Kind != token.IntLit && tok.Kind != token.UintLit {
		return 0, p.err(diag.SynBadArraySize, "array size must be an integer literal")
	}
	p.advance()
	v, err := strconv.ParseInt(strings.TrimRight(tok.Text, "uU"), 0, 64)
	if err != nil {
		p.report(diag.SynBadArraySize, tok.Span, "bad array size")
		return 0, false
	}
	n, err := safecast.Conv[uint32](v)
	if err != nil || n == 0 {
		p.report(diag.SynBadArraySize, tok.Span, "array size out of range")
		return 0, false
	}
	if _, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'"); !ok {
		return 0, false
	}
	return n, true
}

// parseStructBody разбирает "{ T a; U b[2]; }" после имени структуры.
func (p *Parser) parseStructBody(name string) (types.StructDef, bool) {
	def := types.StructDef{Name: name}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'"); !ok {
		return def, false
	}
	for !p.atOr(token.RBrace, token.EOF) {
		q, ok := p.parseQualifiers()
		if !ok {
			return def, false
		}
		t, ok := p.parseTypeName()
		if !ok {
			return def, false
		}
		t.Quals = q
		for {
			nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected field name")
			if !ok {
				return def, false
			}
			ft := t
			if p.at(token.LBracket) {
				n, ok := p.parseArraySize()
				if !ok {
					return def, false
				}
				ft.ArrayLen = n
			}
			def.Fields = append(def.Fields, types.Field{Name: nameTok.Text, Type: ft})
			if !p.eat(token.Comma) {
				break
			}
		}
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after field"); !ok {
			return def, false
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}'"); !ok {
		return def, false
	}
	p.structs[name] = true
	return def, true
}
