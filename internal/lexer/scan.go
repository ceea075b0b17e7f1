package lexer

import (
	"glfuzz/internal/diag"
	"glfuzz/internal/token"
)

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDec(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (lx *Lexer) scanDirective() token.Token {
	mark := lx.cursor.Mark()
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(mark)
	text := lx.text(sp)
	for len(text) > 0 && (text[len(text)-1] == ' ' || text[len(text)-1] == '\t' || text[len(text)-1] == '\r') {
		text = text[:len(text)-1]
	}
	return token.Token{Kind: token.Directive, Span: sp, Text: text}
}

func (lx *Lexer) scanIdentOrKeyword() token.Token {
	mark := lx.cursor.Mark()
	for !lx.cursor.EOF() && isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(mark)
	text := lx.text(sp)
	kind := token.Ident
	if kw, ok := token.LookupKeyword(text); ok {
		kind = kw
	}
	return token.Token{Kind: kind, Span: sp, Text: text}
}

// scanNumber распознаёт десятичные, восьмеричные и шестнадцатеричные целые,
// суффикс u/U и числа с плавающей точкой с экспонентой и суффиксом f/F.
func (lx *Lexer) scanNumber() token.Token {
	mark := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' && (lx.cursor.PeekAt(1) == 'x' || lx.cursor.PeekAt(1) == 'X') {
		lx.cursor.Bump()
		lx.cursor.Bump()
		digits := 0
		for isHex(lx.cursor.Peek()) {
			lx.cursor.Bump()
			digits++
		}
		if digits == 0 {
			lx.report(diag.LexBadNumber, lx.cursor.SpanFrom(mark), "hex literal has no digits")
		}
	} else {
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		if lx.cursor.Peek() == '.' {
			kind = token.FloatLit
			lx.cursor.Bump()
			for isDec(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
		}
		if c := lx.cursor.Peek(); c == 'e' || c == 'E' {
			next := lx.cursor.PeekAt(1)
			if isDec(next) || ((next == '+' || next == '-') && isDec(lx.cursor.PeekAt(2))) {
				kind = token.FloatLit
				lx.cursor.Bump()
				if next == '+' || next == '-' {
					lx.cursor.Bump()
				}
				for isDec(lx.cursor.Peek()) {
					lx.cursor.Bump()
				}
			}
		}
	}

	switch c := lx.cursor.Peek(); {
	case (c == 'u' || c == 'U') && kind == token.IntLit:
		lx.cursor.Bump()
		kind = token.UintLit
	case c == 'f' || c == 'F':
		lx.cursor.Bump()
		kind = token.FloatLit
	}
	if isIdentStartByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		lx.report(diag.LexBadNumber, lx.cursor.SpanFrom(mark), "malformed numeric literal")
		kind = token.Invalid
	}
	sp := lx.cursor.SpanFrom(mark)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

type opEntry struct {
	text string
	kind token.Kind
}

// операторы по убыванию длины: жадный выбор самого длинного
var operators = []opEntry{
	{"<<=", token.ShlAssign}, {">>=", token.ShrAssign},
	{"+=", token.PlusAssign}, {"-=", token.MinusAssign}, {"*=", token.StarAssign},
	{"/=", token.SlashAssign}, {"%=", token.PercentAssign}, {"&=", token.AmpAssign},
	{"|=", token.PipeAssign}, {"^=", token.CaretAssign}, {"++", token.PlusPlus},
	{"--", token.MinusMinus}, {"==", token.EqEq}, {"!=", token.BangEq},
	{"<=", token.LtEq}, {">=", token.GtEq}, {"<<", token.Shl}, {">>", token.Shr},
	{"&&", token.AndAnd}, {"||", token.OrOr}, {"^^", token.XorXor},
	{"+", token.Plus}, {"-", token.Minus}, {"*", token.Star}, {"/", token.Slash},
	{"%", token.Percent}, {"=", token.Assign}, {"<", token.Lt}, {">", token.Gt},
	{"&", token.Amp}, {"|", token.Pipe}, {"^", token.Caret}, {"!", token.Bang},
	{"~", token.Tilde}, {"?", token.Question}, {":", token.Colon},
	{";", token.Semicolon}, {",", token.Comma}, {".", token.Dot},
	{"(", token.LParen}, {")", token.RParen}, {"{", token.LBrace},
	{"}", token.RBrace}, {"[", token.LBracket}, {"]", token.RBracket},
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	mark := lx.cursor.Mark()
	rest := lx.file.Content[lx.cursor.Off:]
	for _, op := range operators {
		if len(rest) >= len(op.text) && string(rest[:len(op.text)]) == op.text {
			for range len(op.text) {
				lx.cursor.Bump()
			}
			sp := lx.cursor.SpanFrom(mark)
			return token.Token{Kind: op.kind, Span: sp, Text: op.text}
		}
	}
	lx.cursor.Bump()
	sp := lx.cursor.SpanFrom(mark)
	lx.report(diag.LexUnknownChar, sp, "unknown character")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}
