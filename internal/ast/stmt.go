package ast

import (
	"glfuzz/internal/source"
	"glfuzz/internal/types"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtDecl
	StmtStruct
	StmtExpr
	StmtIf
	StmtFor
	StmtWhile
	StmtDo
	StmtSwitch
	StmtCase
	StmtDefault
	StmtBreak
	StmtContinue
	StmtReturn
	StmtDiscard
	StmtNull
)

func (k StmtKind) String() string {
	switch k {
	case StmtBlock:
		return "block"
	case StmtDecl:
		return "decl"
	case StmtStruct:
		return "struct"
	case StmtExpr:
		return "expr"
	case StmtIf:
		return "if"
	case StmtFor:
		return "for"
	case StmtWhile:
		return "while"
	case StmtDo:
		return "do"
	case StmtSwitch:
		return "switch"
	case StmtCase:
		return "case"
	case StmtDefault:
		return "default"
	case StmtBreak:
		return "break"
	case StmtContinue:
		return "continue"
	case StmtReturn:
		return "return"
	case StmtDiscard:
		return "discard"
	case StmtNull:
		return "null"
	}
	return "?"
}

// IsLoop reports whether k is for, while or do.
func (k StmtKind) IsLoop() bool {
	return k == StmtFor || k == StmtWhile || k == StmtDo
}

// IsLabel reports whether k is a case or default label.
func (k StmtKind) IsLabel() bool {
	return k == StmtCase || k == StmtDefault
}

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type StmtBlockData struct {
	Stmts []StmtID
	// NewScope is false only for function bodies, whose scope is the
	// parameter scope.
	NewScope bool
}

type StmtStructData struct {
	Def  types.StructDef
	Vars []Declarator
}

type StmtExprData struct {
	Expr ExprID
}

type StmtIfData struct {
	Cond ExprID
	Then StmtID
	Else StmtID // NoStmtID when absent
}

type StmtForData struct {
	Init StmtID // decl, expr or null statement
	Cond ExprID // может отсутствовать
	Post ExprID // может отсутствовать
	Body StmtID
}

// StmtLoopData serves both while and do-while.
type StmtLoopData struct {
	Cond ExprID
	Body StmtID
}

type StmtSwitchData struct {
	Expr ExprID
	Body StmtID // always a block
}

type StmtCaseData struct {
	Value ExprID
}

type StmtReturnData struct {
	Value ExprID // NoExprID for "return;"
}

// Stmts manages allocation of statements.
type Stmts struct {
	Arena    *Arena[Stmt]
	Blocks   *Arena[StmtBlockData]
	Decls    *Arena[VarDecl]
	Structs  *Arena[StmtStructData]
	Exprs    *Arena[StmtExprData]
	Ifs      *Arena[StmtIfData]
	Fors     *Arena[StmtForData]
	Loops    *Arena[StmtLoopData]
	Switches *Arena[StmtSwitchData]
	Cases    *Arena[StmtCaseData]
	Returns  *Arena[StmtReturnData]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:    NewArena[Stmt](capHint),
		Blocks:   NewArena[StmtBlockData](capHint / 4),
		Decls:    NewArena[VarDecl](capHint / 4),
		Structs:  NewArena[StmtStructData](0),
		Exprs:    NewArena[StmtExprData](capHint / 2),
		Ifs:      NewArena[StmtIfData](capHint / 8),
		Fors:     NewArena[StmtForData](capHint / 16),
		Loops:    NewArena[StmtLoopData](capHint / 16),
		Switches: NewArena[StmtSwitchData](0),
		Cases:    NewArena[StmtCaseData](0),
		Returns:  NewArena[StmtReturnData](capHint / 16),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

// Get returns the statement with the given ID.
func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

// Kind returns the kind of id; invalid IDs report StmtNull.
func (s *Stmts) Kind(id StmtID) StmtKind {
	if st := s.Get(id); st != nil {
		return st.Kind
	}
	return StmtNull
}

func (s *Stmts) payload(id StmtID, kind StmtKind) (uint32, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != kind {
		return 0, false
	}
	return uint32(st.Payload), true
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID, newScope bool) StmtID {
	return s.new(StmtBlock, span, s.Blocks.Allocate(StmtBlockData{Stmts: stmts, NewScope: newScope}))
}

func (s *Stmts) Block(id StmtID) (*StmtBlockData, bool) {
	p, ok := s.payload(id, StmtBlock)
	if !ok {
		return nil, false
	}
	return s.Blocks.Get(p), true
}

func (s *Stmts) NewDecl(span source.Span, v VarDecl) StmtID {
	return s.new(StmtDecl, span, s.Decls.Allocate(v))
}

func (s *Stmts) Decl(id StmtID) (*VarDecl, bool) {
	p, ok := s.payload(id, StmtDecl)
	if !ok {
		return nil, false
	}
	return s.Decls.Get(p), true
}

func (s *Stmts) NewStruct(span source.Span, data StmtStructData) StmtID {
	return s.new(StmtStruct, span, s.Structs.Allocate(data))
}

func (s *Stmts) Struct(id StmtID) (*StmtStructData, bool) {
	p, ok := s.payload(id, StmtStruct)
	if !ok {
		return nil, false
	}
	return s.Structs.Get(p), true
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	return s.new(StmtExpr, span, s.Exprs.Allocate(StmtExprData{Expr: expr}))
}

func (s *Stmts) Expr(id StmtID) (*StmtExprData, bool) {
	p, ok := s.payload(id, StmtExpr)
	if !ok {
		return nil, false
	}
	return s.Exprs.Get(p), true
}

func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	return s.new(StmtIf, span, s.Ifs.Allocate(StmtIfData{Cond: cond, Then: then, Else: els}))
}

func (s *Stmts) If(id StmtID) (*StmtIfData, bool) {
	p, ok := s.payload(id, StmtIf)
	if !ok {
		return nil, false
	}
	return s.Ifs.Get(p), true
}

func (s *Stmts) NewFor(span source.Span, data StmtForData) StmtID {
	return s.new(StmtFor, span, s.Fors.Allocate(data))
}

func (s *Stmts) For(id StmtID) (*StmtForData, bool) {
	p, ok := s.payload(id, StmtFor)
	if !ok {
		return nil, false
	}
	return s.Fors.Get(p), true
}

func (s *Stmts) NewWhile(span source.Span, cond ExprID, body StmtID) StmtID {
	return s.new(StmtWhile, span, s.Loops.Allocate(StmtLoopData{Cond: cond, Body: body}))
}

func (s *Stmts) NewDo(span source.Span, body StmtID, cond ExprID) StmtID {
	return s.new(StmtDo, span, s.Loops.Allocate(StmtLoopData{Cond: cond, Body: body}))
}

// Loop returns the payload of a while or do statement.
func (s *Stmts) Loop(id StmtID) (*StmtLoopData, bool) {
	st := s.Get(id)
	if st == nil || (st.Kind != StmtWhile && st.Kind != StmtDo) {
		return nil, false
	}
	return s.Loops.Get(uint32(st.Payload)), true
}

// LoopBody returns the body of any loop statement.
func (s *Stmts) LoopBody(id StmtID) (StmtID, bool) {
	if f, ok := s.For(id); ok {
		return f.Body, true
	}
	if l, ok := s.Loop(id); ok {
		return l.Body, true
	}
	return NoStmtID, false
}

// SetLoopBody replaces the body of any loop statement.
func (s *Stmts) SetLoopBody(id, body StmtID) bool {
	if f, ok := s.For(id); ok {
		f.Body = body
		return true
	}
	if l, ok := s.Loop(id); ok {
		l.Body = body
		return true
	}
	return false
}

func (s *Stmts) NewSwitch(span source.Span, expr ExprID, body StmtID) StmtID {
	return s.new(StmtSwitch, span, s.Switches.Allocate(StmtSwitchData{Expr: expr, Body: body}))
}

func (s *Stmts) Switch(id StmtID) (*StmtSwitchData, bool) {
	p, ok := s.payload(id, StmtSwitch)
	if !ok {
		return nil, false
	}
	return s.Switches.Get(p), true
}

func (s *Stmts) NewCase(span source.Span, value ExprID) StmtID {
	return s.new(StmtCase, span, s.Cases.Allocate(StmtCaseData{Value: value}))
}

func (s *Stmts) Case(id StmtID) (*StmtCaseData, bool) {
	p, ok := s.payload(id, StmtCase)
	if !ok {
		return nil, false
	}
	return s.Cases.Get(p), true
}

func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	return s.new(StmtReturn, span, s.Returns.Allocate(StmtReturnData{Value: value}))
}

func (s *Stmts) Return(id StmtID) (*StmtReturnData, bool) {
	p, ok := s.payload(id, StmtReturn)
	if !ok {
		return nil, false
	}
	return s.Returns.Get(p), true
}

// Stateless constructors: every call yields a fresh node.

func (s *Stmts) NewDefault(span source.Span) StmtID  { return s.new(StmtDefault, span, 0) }
func (s *Stmts) NewBreak(span source.Span) StmtID    { return s.new(StmtBreak, span, 0) }
func (s *Stmts) NewContinue(span source.Span) StmtID { return s.new(StmtContinue, span, 0) }
func (s *Stmts) NewDiscard(span source.Span) StmtID  { return s.new(StmtDiscard, span, 0) }
func (s *Stmts) NewNull(span source.Span) StmtID     { return s.new(StmtNull, span, 0) }
