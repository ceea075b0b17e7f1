package ast

type ExprBinaryOp uint8

const (
	ExprBinaryAdd ExprBinaryOp = iota
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryMod
	ExprBinaryShl
	ExprBinaryShr
	ExprBinaryBitAnd
	ExprBinaryBitOr
	ExprBinaryBitXor
	ExprBinaryLogicalAnd
	ExprBinaryLogicalOr
	ExprBinaryLogicalXor
	ExprBinaryEq
	ExprBinaryNotEq
	ExprBinaryLess
	ExprBinaryLessEq
	ExprBinaryGreater
	ExprBinaryGreaterEq
	ExprBinaryAssign
	ExprBinaryAddAssign
	ExprBinarySubAssign
	ExprBinaryMulAssign
	ExprBinaryDivAssign
	ExprBinaryModAssign
	ExprBinaryBitAndAssign
	ExprBinaryBitOrAssign
	ExprBinaryBitXorAssign
	ExprBinaryShlAssign
	ExprBinaryShrAssign
	ExprBinaryComma
)

var binaryText = [...]string{
	ExprBinaryAdd:          "+",
	ExprBinarySub:          "-",
	ExprBinaryMul:          "*",
	ExprBinaryDiv:          "/",
	ExprBinaryMod:          "%",
	ExprBinaryShl:          "<<",
	ExprBinaryShr:          ">>",
	ExprBinaryBitAnd:       "&",
	ExprBinaryBitOr:        "|",
	ExprBinaryBitXor:       "^",
	ExprBinaryLogicalAnd:   "&&",
	ExprBinaryLogicalOr:    "||",
	ExprBinaryLogicalXor:   "^^",
	ExprBinaryEq:           "==",
	ExprBinaryNotEq:        "!=",
	ExprBinaryLess:         "<",
	ExprBinaryLessEq:       "<=",
	ExprBinaryGreater:      ">",
	ExprBinaryGreaterEq:    ">=",
	ExprBinaryAssign:       "=",
	ExprBinaryAddAssign:    "+=",
	ExprBinarySubAssign:    "-=",
	ExprBinaryMulAssign:    "*=",
	ExprBinaryDivAssign:    "/=",
	ExprBinaryModAssign:    "%=",
	ExprBinaryBitAndAssign: "&=",
	ExprBinaryBitOrAssign:  "|=",
	ExprBinaryBitXorAssign: "^=",
	ExprBinaryShlAssign:    "<<=",
	ExprBinaryShrAssign:    ">>=",
	ExprBinaryComma:        ",",
}

func (op ExprBinaryOp) String() string {
	if int(op) < len(binaryText) {
		return binaryText[op]
	}
	return "?"
}

// IsAssign reports whether op writes its left operand.
func (op ExprBinaryOp) IsAssign() bool {
	return op >= ExprBinaryAssign && op <= ExprBinaryShrAssign
}

// IsComparison reports whether op yields bool from two operands of the same type.
func (op ExprBinaryOp) IsComparison() bool {
	return op >= ExprBinaryEq && op <= ExprBinaryGreaterEq
}

// IsLogical reports whether op is &&, || or ^^.
func (op ExprBinaryOp) IsLogical() bool {
	return op >= ExprBinaryLogicalAnd && op <= ExprBinaryLogicalXor
}

// Precedence follows the GLSL ES operator table; larger binds tighter.
func (op ExprBinaryOp) Precedence() int {
	switch op {
	case ExprBinaryMul, ExprBinaryDiv, ExprBinaryMod:
		return 12
	case ExprBinaryAdd, ExprBinarySub:
		return 11
	case ExprBinaryShl, ExprBinaryShr:
		return 10
	case ExprBinaryLess, ExprBinaryLessEq, ExprBinaryGreater, ExprBinaryGreaterEq:
		return 9
	case ExprBinaryEq, ExprBinaryNotEq:
		return 8
	case ExprBinaryBitAnd:
		return 7
	case ExprBinaryBitXor:
		return 6
	case ExprBinaryBitOr:
		return 5
	case ExprBinaryLogicalAnd:
		return 4
	case ExprBinaryLogicalXor:
		return 3
	case ExprBinaryLogicalOr:
		return 2
	case ExprBinaryComma:
		return 0
	}
	return 1 // присваивания
}

type ExprUnaryOp uint8

const (
	ExprUnaryMinus ExprUnaryOp = iota
	ExprUnaryPlus
	ExprUnaryNot
	ExprUnaryBitNot
	ExprUnaryPreInc
	ExprUnaryPreDec
	ExprUnaryPostInc
	ExprUnaryPostDec
)

func (op ExprUnaryOp) String() string {
	switch op {
	case ExprUnaryMinus:
		return "-"
	case ExprUnaryPlus:
		return "+"
	case ExprUnaryNot:
		return "!"
	case ExprUnaryBitNot:
		return "~"
	case ExprUnaryPreInc, ExprUnaryPostInc:
		return "++"
	case ExprUnaryPreDec, ExprUnaryPostDec:
		return "--"
	}
	return "?"
}

// IsPostfix reports whether op is written after its operand.
func (op ExprUnaryOp) IsPostfix() bool {
	return op == ExprUnaryPostInc || op == ExprUnaryPostDec
}

// HasSideEffect reports whether op writes its operand.
func (op ExprUnaryOp) HasSideEffect() bool {
	return op >= ExprUnaryPreInc
}
