package types

// Field is one member of a struct definition.
type Field struct {
	Name string
	Type Type
}

// StructDef is a named struct definition.
type StructDef struct {
	Name   string
	Fields []Field
}

// Field returns the type of the member called name.
func (d *StructDef) Field(name string) (Type, bool) {
	if d == nil {
		return Invalid, false
	}
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return Invalid, false
}

// Clone returns a deep copy of d.
func (d StructDef) Clone() StructDef {
	d.Fields = append([]Field(nil), d.Fields...)
	return d
}
