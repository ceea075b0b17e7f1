package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Kind enumerates the shapes of GLSL types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt
	KindUint
	KindFloat
	KindVector
	KindMatrix
	KindSampler
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindVector:
		return "vector"
	case KindMatrix:
		return "matrix"
	case KindSampler:
		return "sampler"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a comparable value describing a GLSL type together with its
// qualifiers. Two types compare equal with == iff they are the same type
// with the same qualifiers; trees cloned between programs keep equal types.
type Type struct {
	Kind Kind
	// Elem is the component kind of a vector (bool/int/uint/float) or
	// KindFloat for matrices.
	Elem Kind
	// Size is the component count of a vector or the column count of a
	// square matrix.
	Size uint8
	// Name holds the struct or sampler name.
	Name string
	// ArrayLen is the element count of an array type, zero otherwise.
	ArrayLen uint32
	Quals    Qualifiers
}

var (
	Invalid = Type{}
	Void    = Type{Kind: KindVoid}
	Bool    = Type{Kind: KindBool}
	Int     = Type{Kind: KindInt}
	Uint    = Type{Kind: KindUint}
	Float   = Type{Kind: KindFloat}
)

// Vector describes a vector of n components of the scalar kind elem.
func Vector(elem Kind, n int) Type {
	size, err := safecast.Conv[uint8](n)
	if err != nil || n < 2 || n > 4 {
		return Invalid
	}
	return Type{Kind: KindVector, Elem: elem, Size: size}
}

// Matrix describes the square float matrix matN.
func Matrix(n int) Type {
	size, err := safecast.Conv[uint8](n)
	if err != nil || n < 2 || n > 4 {
		return Invalid
	}
	return Type{Kind: KindMatrix, Elem: KindFloat, Size: size}
}

// Struct describes a named struct type; the definition lives in StructDef.
func Struct(name string) Type {
	return Type{Kind: KindStruct, Name: name}
}

// ArrayOf returns t as an array with n elements.
func ArrayOf(t Type, n int) (Type, error) {
	size, err := safecast.Conv[uint32](n)
	if err != nil || size == 0 {
		return Invalid, fmt.Errorf("array size %d out of range", n)
	}
	t.ArrayLen = size
	return t, nil
}

func (t Type) IsValid() bool  { return t.Kind != KindInvalid }
func (t Type) IsVoid() bool   { return t.Kind == KindVoid && t.ArrayLen == 0 }
func (t Type) IsArray() bool  { return t.ArrayLen != 0 }
func (t Type) IsStruct() bool { return t.Kind == KindStruct && t.ArrayLen == 0 }

// IsScalar reports whether t is bool, int, uint or float (not an array).
func (t Type) IsScalar() bool {
	if t.ArrayLen != 0 {
		return false
	}
	switch t.Kind {
	case KindBool, KindInt, KindUint, KindFloat:
		return true
	}
	return false
}

// IsVector reports whether t is a vector (not an array of vectors).
func (t Type) IsVector() bool { return t.Kind == KindVector && t.ArrayLen == 0 }

// IsMatrix reports whether t is a matrix (not an array of matrices).
func (t Type) IsMatrix() bool { return t.Kind == KindMatrix && t.ArrayLen == 0 }

// ScalarKind returns the kind of a single component: the kind itself for
// scalars, the element kind for vectors and matrices.
func (t Type) ScalarKind() Kind {
	switch t.Kind {
	case KindVector, KindMatrix:
		return t.Elem
	}
	return t.Kind
}

// Components returns the number of scalar components of a non-array value
// (1 for scalars, n for vectors, n*n for matrices, 0 otherwise).
func (t Type) Components() int {
	if t.ArrayLen != 0 {
		return 0
	}
	switch t.Kind {
	case KindBool, KindInt, KindUint, KindFloat:
		return 1
	case KindVector:
		return int(t.Size)
	case KindMatrix:
		return int(t.Size) * int(t.Size)
	}
	return 0
}

// Unqualified returns t without qualifiers.
func (t Type) Unqualified() Type {
	t.Quals = Qualifiers{}
	return t
}

// WithQualifiers returns t carrying q.
func (t Type) WithQualifiers(q Qualifiers) Type {
	t.Quals = q
	return t
}

// ElementType strips one array level.
func (t Type) ElementType() Type {
	t.ArrayLen = 0
	return t
}

// IndexedType returns the type obtained by indexing t: the element of an
// array, the component of a vector, or the column of a matrix.
func (t Type) IndexedType() (Type, bool) {
	q := t.Quals
	switch {
	case t.ArrayLen != 0:
		return t.ElementType(), true
	case t.Kind == KindVector:
		return Type{Kind: t.Elem, Quals: q}, true
	case t.Kind == KindMatrix:
		col := Vector(KindFloat, int(t.Size))
		col.Quals = q
		return col, true
	}
	return Invalid, false
}

// IndexBound returns the static number of elements indexing t can reach.
func (t Type) IndexBound() (uint32, bool) {
	switch {
	case t.ArrayLen != 0:
		return t.ArrayLen, true
	case t.Kind == KindVector || t.Kind == KindMatrix:
		return uint32(t.Size), true
	}
	return 0, false
}

// String renders the GLSL spelling of the base type, without qualifiers
// or array suffix.
func (t Type) String() string {
	switch t.Kind {
	case KindVoid, KindBool, KindInt, KindUint, KindFloat:
		return t.Kind.String()
	case KindVector:
		return vectorPrefix(t.Elem) + "vec" + fmt.Sprint(t.Size)
	case KindMatrix:
		return "mat" + fmt.Sprint(t.Size)
	case KindSampler, KindStruct:
		return t.Name
	}
	return "<invalid>"
}

func vectorPrefix(elem Kind) string {
	switch elem {
	case KindBool:
		return "b"
	case KindInt:
		return "i"
	case KindUint:
		return "u"
	}
	return ""
}

var basicNames = map[string]Type{
	"void":        Void,
	"bool":        Bool,
	"int":         Int,
	"uint":        Uint,
	"float":       Float,
	"sampler2D":   {Kind: KindSampler, Name: "sampler2D"},
	"sampler3D":   {Kind: KindSampler, Name: "sampler3D"},
	"samplerCube": {Kind: KindSampler, Name: "samplerCube"},
}

func init() {
	for n := 2; n <= 4; n++ {
		for _, elem := range []Kind{KindFloat, KindInt, KindUint, KindBool} {
			v := Vector(elem, n)
			basicNames[v.String()] = v
		}
		m := Matrix(n)
		basicNames[m.String()] = m
	}
}

// LookupBasic resolves a built-in type name such as "vec3" or "sampler2D".
func LookupBasic(name string) (Type, bool) {
	t, ok := basicNames[name]
	return t, ok
}

// CanonicalConstant returns a literal of t usable as a harmless value,
// e.g. "1", "1u", "1.0", "true", "vec3(1.0)". Arrays, structs, samplers and
// void have none.
func (t Type) CanonicalConstant() (string, bool) {
	if t.ArrayLen != 0 {
		return "", false
	}
	switch t.Kind {
	case KindBool:
		return "true", true
	case KindInt:
		return "1", true
	case KindUint:
		return "1u", true
	case KindFloat:
		return "1.0", true
	case KindVector, KindMatrix:
		inner, _ := Type{Kind: t.Elem}.CanonicalConstant()
		return t.String() + "(" + inner + ")", true
	}
	return "", false
}
