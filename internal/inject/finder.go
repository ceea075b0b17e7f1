package inject

import (
	"glfuzz/internal/ast"
	"glfuzz/internal/rng"
	"glfuzz/internal/symbols"
)

// Suitable filters candidate points. A nil Suitable accepts everything.
type Suitable func(Point) bool

// Finder holds the injection points of one program in traversal order.
type Finder struct {
	points []Point
}

// Find walks every function body of prog once and records the points
// accepted by suitable.
func Find(prog *ast.Program, suitable Suitable) *Finder {
	w := &walker{prog: prog, suitable: suitable}
	global := symbols.NewGlobalScope(prog.Kind)
	for _, d := range prog.Items {
		if prog.Decls.Get(d).Kind != ast.DeclFunc {
			symbols.DeclareGlobal(global, prog, d)
			continue
		}
		fn, _ := prog.Decls.Func(d)
		if fn.IsPrototype() {
			continue
		}
		w.fn = d
		w.stmt(fn.Body, symbols.EnterFunction(global, fn), false)
	}
	return &Finder{points: w.points}
}

// All returns every recorded point.
func (f *Finder) All() []Point { return f.points }

func (f *Finder) Len() int { return len(f.points) }

// Select keeps each point with probability percent/100, preserving order.
func (f *Finder) Select(rnd rng.Source, percent int) []Point {
	var out []Point
	for _, p := range f.points {
		if rnd.Percent(percent) {
			out = append(out, p)
		}
	}
	return out
}

type walker struct {
	prog        *ast.Program
	suitable    Suitable
	fn          ast.DeclID
	loopDepth   int
	switchDepth int
	points      []Point
}

func (w *walker) base(s *symbols.Scope) site {
	return site{
		prog:     w.prog,
		fn:       w.fn,
		inLoop:   w.loopDepth > 0,
		inSwitch: w.switchDepth > 0,
		scope:    s.Snapshot(),
	}
}

func (w *walker) add(p Point) {
	if w.suitable == nil || w.suitable(p) {
		w.points = append(w.points, p)
	}
}

func (w *walker) isBlock(id ast.StmtID) bool {
	return w.prog.Stmts.Kind(id) == ast.StmtBlock
}

// stmt records the points inside id. switchBody is set for the block
// directly under a switch.
func (w *walker) stmt(id ast.StmtID, s *symbols.Scope, switchBody bool) {
	if !id.IsValid() {
		return
	}
	b := w.prog.Builder
	switch b.Stmts.Kind(id) {
	case ast.StmtBlock:
		blk, _ := b.Stmts.Block(id)
		inner := symbols.EnterBlock(s, blk)
		children := append([]ast.StmtID(nil), blk.Stmts...)
		for i, c := range children {
			// ничего нельзя вставить перед первой меткой switch
			if !(i == 0 && b.Stmts.Kind(c).IsLabel()) {
				w.add(&BlockSite{site: w.base(inner), Block: id, next: c})
			}
			w.stmt(c, inner, false)
			symbols.DeclareLocal(inner, b, c)
		}
		if !switchBody || len(children) > 0 {
			w.add(&BlockSite{site: w.base(inner), Block: id})
		}
	case ast.StmtIf:
		ifs, _ := b.Stmts.If(id)
		then, els := ifs.Then, ifs.Else
		if !w.isBlock(then) {
			w.add(newIfBranchSite(w.base(s), id, false))
		}
		w.stmt(then, s, false)
		if els.IsValid() {
			if !w.isBlock(els) {
				w.add(newIfBranchSite(w.base(s), id, true))
			}
			w.stmt(els, s, false)
		}
	case ast.StmtFor:
		fs, _ := b.Stmts.For(id)
		init, body := fs.Init, fs.Body
		inner := s.Push(symbols.ScopeLoop)
		if init.IsValid() {
			symbols.DeclareLocal(inner, b, init)
		}
		w.loop(id, body, inner)
	case ast.StmtWhile, ast.StmtDo:
		body, _ := b.Stmts.LoopBody(id)
		w.loop(id, body, s)
	case ast.StmtSwitch:
		sw, _ := b.Stmts.Switch(id)
		w.switchDepth++
		w.stmt(sw.Body, s, true)
		w.switchDepth--
	}
}

func (w *walker) loop(id, body ast.StmtID, s *symbols.Scope) {
	w.loopDepth++
	defer func() { w.loopDepth-- }()
	if !w.isBlock(body) {
		w.add(newLoopBodySite(w.base(s), id))
	}
	w.stmt(body, s, false)
}
