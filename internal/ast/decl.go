package ast

import (
	"glfuzz/internal/source"
	"glfuzz/internal/types"
)

type DeclKind uint8

const (
	// DeclVars is a global variable declaration, possibly with several declarators.
	DeclVars DeclKind = iota
	// DeclFunc is a function definition, or a prototype when Body is NoStmtID.
	DeclFunc
	// DeclStruct is "struct S { ... };".
	DeclStruct
	// DeclPrecision is "precision highp float;".
	DeclPrecision
)

type Decl struct {
	Kind    DeclKind
	Span    source.Span
	Payload PayloadID
}

// Declarator is one "name[N] = init" entry of a variable declaration.
type Declarator struct {
	Name string
	// ArrayLen is the array size, zero for non-arrays.
	ArrayLen uint32
	Init     ExprID
}

// VarDecl is shared by global declarations and declaration statements.
type VarDecl struct {
	Type types.Type
	Vars []Declarator
}

// TypeOf returns the type of the i-th declarator, array suffix applied.
func (v *VarDecl) TypeOf(i int) types.Type {
	t := v.Type
	if n := v.Vars[i].ArrayLen; n != 0 {
		t.ArrayLen = n
	}
	return t
}

type Param struct {
	Name string // может быть пустым в прототипе
	Type types.Type
}

type FuncDecl struct {
	Name   string
	Result types.Type
	Params []Param
	Body   StmtID
}

// IsPrototype reports whether fn is a declaration without a body.
func (fn *FuncDecl) IsPrototype() bool { return !fn.Body.IsValid() }

type PrecisionDecl struct {
	Precision types.Precision
	Type      types.Type
}

// Decls manages allocation of top-level declarations.
type Decls struct {
	Arena      *Arena[Decl]
	Vars       *Arena[VarDecl]
	Funcs      *Arena[FuncDecl]
	Structs    *Arena[types.StructDef]
	Precisions *Arena[PrecisionDecl]
}

func NewDecls(capHint uint) *Decls {
	return &Decls{
		Arena:      NewArena[Decl](capHint),
		Vars:       NewArena[VarDecl](capHint),
		Funcs:      NewArena[FuncDecl](capHint),
		Structs:    NewArena[types.StructDef](capHint / 4),
		Precisions: NewArena[PrecisionDecl](4),
	}
}

func (d *Decls) new(kind DeclKind, span source.Span, payload uint32) DeclID {
	return DeclID(d.Arena.Allocate(Decl{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

func (d *Decls) Get(id DeclID) *Decl {
	return d.Arena.Get(uint32(id))
}

func (d *Decls) NewVars(span source.Span, v VarDecl) DeclID {
	return d.new(DeclVars, span, d.Vars.Allocate(v))
}

func (d *Decls) VarsOf(id DeclID) (*VarDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclVars {
		return nil, false
	}
	return d.Vars.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewFunc(span source.Span, fn FuncDecl) DeclID {
	return d.new(DeclFunc, span, d.Funcs.Allocate(fn))
}

func (d *Decls) Func(id DeclID) (*FuncDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclFunc {
		return nil, false
	}
	return d.Funcs.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewStruct(span source.Span, def types.StructDef) DeclID {
	return d.new(DeclStruct, span, d.Structs.Allocate(def))
}

func (d *Decls) Struct(id DeclID) (*types.StructDef, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclStruct {
		return nil, false
	}
	return d.Structs.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewPrecision(span source.Span, p PrecisionDecl) DeclID {
	return d.new(DeclPrecision, span, d.Precisions.Allocate(p))
}

func (d *Decls) Precision(id DeclID) (*PrecisionDecl, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclPrecision {
		return nil, false
	}
	return d.Precisions.Get(uint32(decl.Payload)), true
}
