package types

import "strings"

// Storage is the storage qualifier of a variable.
type Storage uint8

const (
	StorageNone Storage = iota
	StorageConst
	StorageUniform
	StorageIn
	StorageOut
	StorageInOut
)

func (s Storage) String() string {
	switch s {
	case StorageConst:
		return "const"
	case StorageUniform:
		return "uniform"
	case StorageIn:
		return "in"
	case StorageOut:
		return "out"
	case StorageInOut:
		return "inout"
	}
	return ""
}

// Precision is a GLSL ES precision qualifier.
type Precision uint8

const (
	PrecisionNone Precision = iota
	PrecisionLow
	PrecisionMedium
	PrecisionHigh
)

func (p Precision) String() string {
	switch p {
	case PrecisionLow:
		return "lowp"
	case PrecisionMedium:
		return "mediump"
	case PrecisionHigh:
		return "highp"
	}
	return ""
}

// Qualifiers groups everything that may precede a type in a declaration.
type Qualifiers struct {
	// Layout is the raw text inside layout( ... ), kept verbatim.
	Layout    string
	Flat      bool
	Storage   Storage
	Precision Precision
}

func (q Qualifiers) IsZero() bool { return q == Qualifiers{} }

// IsConst reports whether the variable is a compile-time constant.
func (q Qualifiers) IsConst() bool { return q.Storage == StorageConst }

// IsUniform reports whether the variable is bound by the host.
func (q Qualifiers) IsUniform() bool { return q.Storage == StorageUniform }

// String renders the qualifiers in declaration order followed by a space,
// or "" when there are none.
func (q Qualifiers) String() string {
	var parts []string
	if q.Layout != "" {
		parts = append(parts, "layout("+q.Layout+")")
	}
	if q.Flat {
		parts = append(parts, "flat")
	}
	if s := q.Storage.String(); s != "" {
		parts = append(parts, s)
	}
	if p := q.Precision.String(); p != "" {
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + " "
}

// WithoutInterface drops qualifiers that only make sense at global scope
// (layout, flat, in/out/inout and uniform), keeping const and precision.
func (q Qualifiers) WithoutInterface() Qualifiers {
	out := Qualifiers{Precision: q.Precision}
	if q.Storage == StorageConst {
		out.Storage = StorageConst
	}
	return out
}
