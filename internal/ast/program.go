package ast

import "fmt"

// ShaderKind is the pipeline stage a program is written for.
type ShaderKind uint8

const (
	ShaderFragment ShaderKind = iota
	ShaderVertex
	ShaderCompute
)

func (k ShaderKind) String() string {
	switch k {
	case ShaderFragment:
		return "fragment"
	case ShaderVertex:
		return "vertex"
	case ShaderCompute:
		return "compute"
	}
	return fmt.Sprintf("ShaderKind(%d)", k)
}

// ParseShaderKind accepts "fragment"/"frag", "vertex"/"vert" and "compute"/"comp".
func ParseShaderKind(s string) (ShaderKind, error) {
	switch s {
	case "fragment", "frag":
		return ShaderFragment, nil
	case "vertex", "vert":
		return ShaderVertex, nil
	case "compute", "comp":
		return ShaderCompute, nil
	}
	return ShaderFragment, fmt.Errorf("unknown shader kind %q", s)
}

// Program is one translation unit: the arenas plus the ordered top-level
// declarations.
type Program struct {
	*Builder
	// Version is the verbatim "#version ..." line, empty when absent.
	Version string
	Kind    ShaderKind
	Items   []DeclID
}

// NewProgram returns an empty program with fresh arenas.
func NewProgram(kind ShaderKind) *Program {
	return &Program{Builder: NewBuilder(Hints{}), Kind: kind}
}

// Functions returns the function definitions (not prototypes) in order.
func (p *Program) Functions() []DeclID {
	var out []DeclID
	for _, d := range p.Items {
		if fn, ok := p.Decls.Func(d); ok && fn.Body.IsValid() {
			out = append(out, d)
		}
	}
	return out
}

// LookupFunction finds the first definition of name.
func (p *Program) LookupFunction(name string) (DeclID, *FuncDecl, bool) {
	for _, d := range p.Items {
		if fn, ok := p.Decls.Func(d); ok && fn.Name == name && fn.Body.IsValid() {
			return d, fn, true
		}
	}
	return NoDeclID, nil, false
}

// InsertDecls inserts decls before the declaration at index i.
func (p *Program) InsertDecls(i int, decls ...DeclID) {
	if i < 0 || i > len(p.Items) {
		i = len(p.Items)
	}
	p.Items = append(p.Items[:i], append(append([]DeclID(nil), decls...), p.Items[i:]...)...)
}

// FirstFunctionIndex returns the index of the first function definition or
// prototype, or len(Items) when there is none.
func (p *Program) FirstFunctionIndex() int {
	for i, d := range p.Items {
		if p.Decls.Get(d).Kind == DeclFunc {
			return i
		}
	}
	return len(p.Items)
}

// Clone deep-copies p into fresh arenas.
func (p *Program) Clone() *Program {
	out := &Program{
		Builder: NewBuilder(Hints{
			Decls: uint(p.Decls.Arena.Len()),
			Stmts: uint(p.Stmts.Arena.Len()),
			Exprs: uint(p.Exprs.Arena.Len()),
		}),
		Version: p.Version,
		Kind:    p.Kind,
		Items:   make([]DeclID, 0, len(p.Items)),
	}
	for _, d := range p.Items {
		out.Items = append(out.Items, out.CloneDecl(p.Builder, d))
	}
	return out
}
