package token

var keywords = map[string]Kind{
	"true":      KwTrue,
	"false":     KwFalse,
	"if":        KwIf,
	"else":      KwElse,
	"for":       KwFor,
	"while":     KwWhile,
	"do":        KwDo,
	"switch":    KwSwitch,
	"case":      KwCase,
	"default":   KwDefault,
	"break":     KwBreak,
	"continue":  KwContinue,
	"return":    KwReturn,
	"discard":   KwDiscard,
	"struct":    KwStruct,
	"const":     KwConst,
	"uniform":   KwUniform,
	"in":        KwIn,
	"out":       KwOut,
	"inout":     KwInout,
	"highp":     KwHighp,
	"mediump":   KwMediump,
	"lowp":      KwLowp,
	"precision": KwPrecision,
	"layout":    KwLayout,
	"flat":      KwFlat,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
