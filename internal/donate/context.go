package donate

import (
	"fmt"
	"slices"

	"glfuzz/internal/ast"
	"glfuzz/internal/rng"
	"glfuzz/internal/symbols"
	"glfuzz/internal/types"
)

// Context is a fragment cut from a donor together with what it needs from
// its new surroundings. It is used for a single donation.
type Context struct {
	Donor *ast.Program
	// Fragment is a clone owned by Donor's builder; a block fragment
	// always opens a new scope.
	Fragment ast.StmtID
	// FreeVariables maps every name the fragment reads without declaring
	// it to its type in the donor. Uniforms and built-ins are not listed.
	FreeVariables map[string]types.Type
	// Structs are the struct definitions visible where the fragment was cut.
	Structs           []types.StructDef
	EnclosingFunction ast.DeclID
}

type candidate struct {
	stmt ast.StmtID
	fn   ast.DeclID
}

// FindContext draws one block, if, while, do or for statement of donor
// uniformly at random. Functions that declare local structs are not
// considered. With maxSize > 0, fragments of more statements are skipped.
func FindContext(donor *ast.Program, rnd rng.Source, maxSize int) (*Context, error) {
	var cands []candidate
	for _, d := range donor.Functions() {
		fn, _ := donor.Decls.Func(d)
		if declaresLocalStruct(donor.Builder, fn.Body) {
			continue
		}
		donor.WalkStmts(fn.Body, func(s ast.StmtID) bool {
			switch donor.Stmts.Kind(s) {
			case ast.StmtBlock, ast.StmtIf, ast.StmtWhile, ast.StmtDo, ast.StmtFor:
				if maxSize <= 0 || donor.CountStmts(s) <= maxSize {
					cands = append(cands, candidate{stmt: s, fn: d})
				}
			}
			return true
		})
	}
	if len(cands) == 0 {
		return nil, fmt.Errorf("%w: donor has no usable fragment", ErrDonationImpossible)
	}
	pick := cands[rnd.NextInt(len(cands))]

	scope, _, ok := symbols.ScopeAt(donor, pick.stmt)
	if !ok {
		return nil, fmt.Errorf("%w: fragment is unreachable", ErrDonationImpossible)
	}
	free := freeVariables(donor.Builder, pick.stmt, scope)

	frag := donor.CloneStmt(donor.Builder, pick.stmt)
	if blk, ok := donor.Stmts.Block(frag); ok {
		blk.NewScope = true
	}
	return &Context{
		Donor:             donor,
		Fragment:          frag,
		FreeVariables:     free,
		Structs:           scope.Structs(),
		EnclosingFunction: pick.fn,
	}, nil
}

func declaresLocalStruct(b *ast.Builder, body ast.StmtID) bool {
	found := false
	b.WalkStmts(body, func(s ast.StmtID) bool {
		if b.Stmts.Kind(s) == ast.StmtStruct {
			found = true
		}
		return !found
	})
	return found
}

// freeVariables types the unbound identifiers of the fragment at root
// against scope, the donor scope right before it.
// Built-ins and uniforms are not free: uniforms travel with the donor's
// globals, so neither strategy ever declares them.
func freeVariables(b *ast.Builder, root ast.StmtID, scope *symbols.Scope) map[string]types.Type {
	free := make(map[string]types.Type)
	scanFragment(b, root, func(_ ast.ExprID, name string, bound, _ bool) {
		if bound {
			return
		}
		sym, ok := scope.Lookup(name)
		if !ok || sym.Kind == symbols.SymbolBuiltin || sym.Type.Quals.IsUniform() {
			return
		}
		free[name] = sym.Type
	})
	return free
}

// FreeNames returns the free variables in name order.
func (c *Context) FreeNames() []string {
	names := make([]string, 0, len(c.FreeVariables))
	for n := range c.FreeVariables {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// DeclaredNames returns every variable name the fragment declares, at any
// depth.
func (c *Context) DeclaredNames() map[string]bool {
	b := c.Donor.Builder
	names := make(map[string]bool)
	b.WalkStmts(c.Fragment, func(s ast.StmtID) bool {
		var vars []ast.Declarator
		if vd, ok := b.Stmts.Decl(s); ok {
			vars = vd.Vars
		} else if sd, ok := b.Stmts.Struct(s); ok {
			vars = sd.Vars
		}
		for _, d := range vars {
			names[d.Name] = true
		}
		return true
	})
	return names
}

// IndexesArrayUsingFreeVariable reports whether a name not bound by the
// fragment appears inside an index expression. WebGL only accepts
// constant index expressions there.
func (c *Context) IndexesArrayUsingFreeVariable() bool {
	found := false
	scanFragment(c.Donor.Builder, c.Fragment, func(_ ast.ExprID, _ string, bound, inIndex bool) {
		if inIndex && !bound {
			found = true
		}
	})
	return found
}

// CalledFunctions returns the names of donor functions the fragment calls.
func (c *Context) CalledFunctions() map[string]bool {
	b := c.Donor.Builder
	declared := make(map[string]bool)
	for _, d := range c.Donor.Items {
		if fn, ok := b.Decls.Func(d); ok {
			declared[fn.Name] = true
		}
	}
	called := make(map[string]bool)
	b.WalkExprs(c.Fragment, func(e ast.ExprID) bool {
		if call, ok := b.Exprs.Call(e); ok && declared[call.Callee] {
			called[call.Callee] = true
		}
		return true
	})
	return called
}
