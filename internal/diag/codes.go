package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0
	// Лексические
	LexUnknownChar              Code = 1001
	LexUnterminatedBlockComment Code = 1002
	LexBadNumber                Code = 1003
	LexTokenTooLong             Code = 1004

	// Парсерные
	SynUnexpectedToken     Code = 2001
	SynExpectSemicolon     Code = 2002
	SynExpectIdentifier    Code = 2003
	SynExpectType          Code = 2004
	SynUnclosedParen       Code = 2005
	SynUnclosedBrace       Code = 2006
	SynUnclosedBracket     Code = 2007
	SynBadArraySize        Code = 2008
	SynUnexpectedTopLevel  Code = 2009
	SynUnsupportedFeature  Code = 2010
	SynBadVersionDirective Code = 2011
	SynTooManyErrors       Code = 2099

	// Ввод-вывод
	IOLoadFileError Code = 3001
)

var codeNames = map[Code]string{
	UnknownCode:                 "E0000",
	LexUnknownChar:              "LEX1001",
	LexUnterminatedBlockComment: "LEX1002",
	LexBadNumber:                "LEX1003",
	LexTokenTooLong:             "LEX1004",
	SynUnexpectedToken:          "SYN2001",
	SynExpectSemicolon:          "SYN2002",
	SynExpectIdentifier:         "SYN2003",
	SynExpectType:               "SYN2004",
	SynUnclosedParen:            "SYN2005",
	SynUnclosedBrace:            "SYN2006",
	SynUnclosedBracket:          "SYN2007",
	SynBadArraySize:             "SYN2008",
	SynUnexpectedTopLevel:       "SYN2009",
	SynUnsupportedFeature:       "SYN2010",
	SynBadVersionDirective:      "SYN2011",
	SynTooManyErrors:            "SYN2099",
	IOLoadFileError:             "IO3001",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("E%04d", uint16(c))
}
