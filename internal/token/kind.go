package token

import "fmt"

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Directive is a whole preprocessor line such as "#version 310 es".
	Directive

	Ident
	IntLit
	UintLit
	FloatLit

	KwTrue
	KwFalse
	KwIf
	KwElse
	KwFor
	KwWhile
	KwDo
	KwSwitch
	KwCase
	KwDefault
	KwBreak
	KwContinue
	KwReturn
	KwDiscard
	KwStruct
	KwConst
	KwUniform
	KwIn
	KwOut
	KwInout
	KwHighp
	KwMediump
	KwLowp
	KwPrecision
	KwLayout
	KwFlat

	Plus
	Minus
	Star
	Slash
	Percent
	Assign
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	PercentAssign
	AmpAssign
	PipeAssign
	CaretAssign
	ShlAssign
	ShrAssign
	PlusPlus
	MinusMinus
	EqEq
	BangEq
	Lt
	LtEq
	Gt
	GtEq
	Shl
	Shr
	Amp
	Pipe
	Caret
	AndAnd
	OrOr
	XorXor
	Bang
	Tilde
	Question
	Colon
	Semicolon
	Comma
	Dot
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
)

var kindNames = [...]string{
	Invalid:       "invalid",
	EOF:           "EOF",
	Directive:     "directive",
	Ident:         "identifier",
	IntLit:        "int literal",
	UintLit:       "uint literal",
	FloatLit:      "float literal",
	KwTrue:        "true",
	KwFalse:       "false",
	KwIf:          "if",
	KwElse:        "else",
	KwFor:         "for",
	KwWhile:       "while",
	KwDo:          "do",
	KwSwitch:      "switch",
	KwCase:        "case",
	KwDefault:     "default",
	KwBreak:       "break",
	KwContinue:    "continue",
	KwReturn:      "return",
	KwDiscard:     "discard",
	KwStruct:      "struct",
	KwConst:       "const",
	KwUniform:     "uniform",
	KwIn:          "in",
	KwOut:         "out",
	KwInout:       "inout",
	KwHighp:       "highp",
	KwMediump:     "mediump",
	KwLowp:        "lowp",
	KwPrecision:   "precision",
	KwLayout:      "layout",
	KwFlat:        "flat",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Percent:       "%",
	Assign:        "=",
	PlusAssign:    "+=",
	MinusAssign:   "-=",
	StarAssign:    "*=",
	SlashAssign:   "/=",
	PercentAssign: "%=",
	AmpAssign:     "&=",
	PipeAssign:    "|=",
	CaretAssign:   "^=",
	ShlAssign:     "<<=",
	ShrAssign:     ">>=",
	PlusPlus:      "++",
	MinusMinus:    "--",
	EqEq:          "==",
	BangEq:        "!=",
	Lt:            "<",
	LtEq:          "<=",
	Gt:            ">",
	GtEq:          ">=",
	Shl:           "<<",
	Shr:           ">>",
	Amp:           "&",
	Pipe:          "|",
	Caret:         "^",
	AndAnd:        "&&",
	OrOr:          "||",
	XorXor:        "^^",
	Bang:          "!",
	Tilde:         "~",
	Question:      "?",
	Colon:         ":",
	Semicolon:     ";",
	Comma:         ",",
	Dot:           ".",
	LParen:        "(",
	RParen:        ")",
	LBrace:        "{",
	RBrace:        "}",
	LBracket:      "[",
	RBracket:      "]",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsAssign reports whether k is '=' or a compound assignment.
func (k Kind) IsAssign() bool {
	return k >= Assign && k <= ShrAssign
}

// IsQualifier reports whether k starts a storage, precision or layout qualifier.
func (k Kind) IsQualifier() bool {
	switch k {
	case KwConst, KwUniform, KwIn, KwOut, KwInout, KwHighp, KwMediump, KwLowp, KwLayout, KwFlat:
		return true
	}
	return false
}
