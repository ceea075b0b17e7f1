// Package inject models the places inside function bodies where new
// statements can be inserted, and finds them.
package inject

import (
	"errors"

	"glfuzz/internal/ast"
	"glfuzz/internal/source"
	"glfuzz/internal/symbols"
)

var (
	// ErrNoNextStatement is returned by Next and ReplaceNext on a site
	// with no following statement.
	ErrNoNextStatement = errors.New("injection point has no next statement")
	// ErrDetached is returned when the owner of a site no longer holds
	// the statement the site was recorded against.
	ErrDetached = errors.New("injection point is detached from its owner")
)

// SiteKind distinguishes the three kinds of injection point.
type SiteKind uint8

const (
	SiteBlock SiteKind = iota
	SiteIfBranch
	SiteLoopBody
)

func (k SiteKind) String() string {
	switch k {
	case SiteBlock:
		return "block"
	case SiteIfBranch:
		return "if-branch"
	case SiteLoopBody:
		return "loop-body"
	}
	return "?"
}

// Point is a location where a statement can be injected.
type Point interface {
	Kind() SiteKind
	// Inject inserts stmt so that it executes immediately before the
	// next statement, or last when there is none.
	Inject(stmt ast.StmtID) error
	HasNext() bool
	Next() (ast.StmtID, error)
	ReplaceNext(stmt ast.StmtID) error
	InLoop() bool
	InSwitch() bool
	EnclosingFunction() ast.DeclID
	// Scope is a snapshot of the variables and structs visible at the
	// point.
	Scope() *symbols.Scope
	Program() *ast.Program
}

type site struct {
	prog     *ast.Program
	fn       ast.DeclID
	inLoop   bool
	inSwitch bool
	scope    *symbols.Scope
}

func (s *site) InLoop() bool                  { return s.inLoop }
func (s *site) InSwitch() bool                { return s.inSwitch }
func (s *site) EnclosingFunction() ast.DeclID { return s.fn }
func (s *site) Scope() *symbols.Scope         { return s.scope }
func (s *site) Program() *ast.Program         { return s.prog }

// BlockSite sits in front of a statement of a block, or at its end.
type BlockSite struct {
	site
	Block ast.StmtID
	next  ast.StmtID
}

func (p *BlockSite) Kind() SiteKind { return SiteBlock }

func (p *BlockSite) HasNext() bool { return p.next.IsValid() }

func (p *BlockSite) Next() (ast.StmtID, error) {
	if !p.next.IsValid() {
		return ast.NoStmtID, ErrNoNextStatement
	}
	return p.next, nil
}

// position locates the next statement; the block may have grown since the
// site was recorded.
func (p *BlockSite) position() (*ast.StmtBlockData, int, error) {
	blk, ok := p.prog.Stmts.Block(p.Block)
	if !ok {
		return nil, 0, ErrDetached
	}
	if !p.next.IsValid() {
		return blk, len(blk.Stmts), nil
	}
	for i, s := range blk.Stmts {
		if s == p.next {
			return blk, i, nil
		}
	}
	return nil, 0, ErrDetached
}

func (p *BlockSite) Inject(stmt ast.StmtID) error {
	blk, i, err := p.position()
	if err != nil {
		return err
	}
	blk.Stmts = append(blk.Stmts[:i], append([]ast.StmtID{stmt}, blk.Stmts[i:]...)...)
	return nil
}

func (p *BlockSite) ReplaceNext(stmt ast.StmtID) error {
	if !p.next.IsValid() {
		return ErrNoNextStatement
	}
	blk, i, err := p.position()
	if err != nil {
		return err
	}
	blk.Stmts[i] = stmt
	p.next = stmt
	return nil
}

// slotSite is an if branch or loop body holding a single statement. The
// first injection promotes the slot to a block.
type slotSite struct {
	site
	stmt     ast.StmtID
	promoted ast.StmtID
	get      func() (ast.StmtID, bool)
	set      func(ast.StmtID) bool
}

func (p *slotSite) HasNext() bool { return true }

func (p *slotSite) Next() (ast.StmtID, error) { return p.stmt, nil }

func (p *slotSite) check() error {
	cur, ok := p.get()
	if !ok {
		return ErrDetached
	}
	want := p.stmt
	if p.promoted.IsValid() {
		want = p.promoted
	}
	if cur != want {
		return ErrDetached
	}
	return nil
}

func (p *slotSite) Inject(stmt ast.StmtID) error {
	if err := p.check(); err != nil {
		return err
	}
	stmts := p.prog.Stmts
	if !p.promoted.IsValid() {
		p.promoted = stmts.NewBlock(source.Span{}, []ast.StmtID{stmt, p.stmt}, true)
		p.set(p.promoted)
		return nil
	}
	blk, _ := stmts.Block(p.promoted)
	for i, s := range blk.Stmts {
		if s == p.stmt {
			blk.Stmts = append(blk.Stmts[:i], append([]ast.StmtID{stmt}, blk.Stmts[i:]...)...)
			return nil
		}
	}
	return ErrDetached
}

func (p *slotSite) ReplaceNext(stmt ast.StmtID) error {
	if err := p.check(); err != nil {
		return err
	}
	if !p.promoted.IsValid() {
		p.set(stmt)
		p.stmt = stmt
		return nil
	}
	if !p.prog.ReplaceChild(p.promoted, p.stmt, stmt) {
		return ErrDetached
	}
	p.stmt = stmt
	return nil
}

// IfBranchSite is the then or else branch of an if whose branch is a
// single non-block statement.
type IfBranchSite struct {
	slotSite
	If   ast.StmtID
	Else bool
}

func (p *IfBranchSite) Kind() SiteKind { return SiteIfBranch }

func newIfBranchSite(base site, ifID ast.StmtID, els bool) *IfBranchSite {
	p := &IfBranchSite{If: ifID, Else: els}
	p.site = base
	stmts := base.prog.Stmts
	p.get = func() (ast.StmtID, bool) {
		ifs, ok := stmts.If(p.If)
		if !ok {
			return ast.NoStmtID, false
		}
		if p.Else {
			return ifs.Else, true
		}
		return ifs.Then, true
	}
	p.set = func(id ast.StmtID) bool {
		ifs, ok := stmts.If(p.If)
		if !ok {
			return false
		}
		if p.Else {
			ifs.Else = id
		} else {
			ifs.Then = id
		}
		return true
	}
	p.stmt, _ = p.get()
	return p
}

// LoopBodySite is the body of a loop that is a single non-block
// statement.
type LoopBodySite struct {
	slotSite
	Loop ast.StmtID
}

func (p *LoopBodySite) Kind() SiteKind { return SiteLoopBody }

func newLoopBodySite(base site, loop ast.StmtID) *LoopBodySite {
	p := &LoopBodySite{Loop: loop}
	p.site = base
	stmts := base.prog.Stmts
	p.get = func() (ast.StmtID, bool) { return stmts.LoopBody(p.Loop) }
	p.set = func(id ast.StmtID) bool { return stmts.SetLoopBody(p.Loop, id) }
	p.stmt, _ = p.get()
	return p
}
