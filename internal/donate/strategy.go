package donate

import (
	"errors"
	"fmt"
	"strings"

	"glfuzz/internal/ast"
	"glfuzz/internal/config"
	"glfuzz/internal/fuzzer"
	"glfuzz/internal/inject"
	"glfuzz/internal/opaque"
	"glfuzz/internal/safety"
	"glfuzz/internal/source"
	"glfuzz/internal/symbols"
	"glfuzz/internal/transform"
	"glfuzz/internal/types"
)

// ErrDonationImpossible marks a soft failure: the point is skipped and the
// pass goes on.
var ErrDonationImpossible = errors.New("donation impossible")

// ReplacementPrefix starts the names of variables a dead donation declares
// for free variables it could not substitute.
const ReplacementPrefix = "donor_replacement"

// Strategy turns a donation context into one statement for a point.
type Strategy interface {
	Name() string
	// Prefix is prepended to every identifier of a donor, followed by the
	// donor's sequence number.
	Prefix() string
	Probability(p config.Probabilities) int
	// Adapt runs once on a freshly loaded donor, after prefixing.
	Adapt(donor *ast.Program, prefix string, env *transform.Env)
	// Prepare builds the statement to inject at p. The statement is
	// allocated in p's program.
	Prepare(p inject.Point, c *Context, env *transform.Env) (ast.StmtID, error)
}

// localType drops the qualifiers a local declaration cannot carry.
func localType(t types.Type) types.Type {
	return t.WithQualifiers(t.Quals.WithoutInterface())
}

// declare builds "T name[N] = init;" for a variable of type t.
func declare(b *ast.Builder, name string, t types.Type, init ast.ExprID) ast.StmtID {
	elem := t
	elem.ArrayLen = 0
	return b.Stmts.NewDecl(source.Span{}, ast.VarDecl{
		Type: elem,
		Vars: []ast.Declarator{{Name: name, ArrayLen: t.ArrayLen, Init: init}},
	})
}

// initializer fuzzes a value for a variable of type t. Const variables
// need one; the others are left uninitialized when fuzzing fails.
func initializer(f *fuzzer.Fuzzer, name string, t types.Type, constOnly bool) (ast.ExprID, error) {
	e, err := f.Expr(t, constOnly)
	if err == nil {
		return opaque.Mark(f.B, opaque.MarkerFuzzed, e), nil
	}
	if t.Quals.IsConst() {
		return ast.NoExprID, fmt.Errorf("%w: const %s: %w", ErrDonationImpossible, name, err)
	}
	return ast.NoExprID, nil
}

// DeadStrategy donates code under a guard that is never taken.
type DeadStrategy struct{}

func (DeadStrategy) Name() string   { return "donate_dead_code" }
func (DeadStrategy) Prefix() string { return "GLF_dead" }

func (DeadStrategy) Probability(p config.Probabilities) int { return p.DonateDeadCode }

func (DeadStrategy) Adapt(*ast.Program, string, *transform.Env) {}

// Prepare builds
//
//	if (_GLF_DEAD(<opaque false>)) {
//	    <replacement declarations>
//	    <fragment>
//	}
//
// Free variables already visible at p with the same type are left alone.
// The others are, with probability SubstituteFreeVariable, renamed to a
// compatible variable of the site, or else declared afresh.
func (DeadStrategy) Prepare(p inject.Point, c *Context, env *transform.Env) (ast.StmtID, error) {
	prog := p.Program()
	b := prog.Builder
	scope := p.Scope()
	declared := c.DeclaredNames()

	fz := fuzzer.New(b, scope, env.Rand, env.Params)
	fz.Structs = c.Structs

	renames := make(map[string]string)
	var decls []ast.StmtID
	for _, name := range c.FreeNames() {
		t := c.FreeVariables[name]
		if sym, ok := scope.Lookup(name); ok && compatible(sym, t) {
			continue
		}
		if env.Rand.Percent(env.Probs.SubstituteFreeVariable) {
			if cands := substitutes(scope, t, declared); len(cands) > 0 {
				renames[name] = cands[env.Rand.NextInt(len(cands))]
				continue
			}
		}
		lt := localType(t)
		init, err := initializer(fz, name, lt, lt.Quals.IsConst())
		if err != nil {
			return ast.NoStmtID, err
		}
		fresh := ReplacementPrefix + name
		renames[name] = fresh
		decls = append(decls, declare(b, fresh, lt, init))
	}

	frag := b.CloneStmt(c.Donor.Builder, c.Fragment)
	renameFree(b, frag, renames)
	frag = sanitize(b, frag, jumpRules{
		keepBreak:    p.InLoop() || p.InSwitch(),
		keepContinue: p.InLoop(),
		keepReturn:   sameResult(c.Donor, c.EnclosingFunction, prog, p.EnclosingFunction()),
		keepDiscard:  prog.Kind == ast.ShaderFragment,
	})

	body := b.Stmts.NewBlock(source.Span{}, append(decls, frag), true)
	guard := opaque.New(b, env.Rand, env.Params).Dead()
	return b.Stmts.NewIf(source.Span{}, guard, body, ast.NoStmtID), nil
}

// compatible reports whether a variable visible at the site can stand
// for a free variable of type t under its own name. The fragment may
// write a non-const free variable, so the site variable must be writable.
func compatible(sym symbols.Symbol, t types.Type) bool {
	if sym.Kind == symbols.SymbolBuiltin || sym.Type.Unqualified() != t.Unqualified() {
		return false
	}
	if t.Quals.IsConst() {
		return sym.Type.Quals.IsConst()
	}
	return writable(sym.Type.Quals.Storage)
}

// substitutes lists the site variables that can replace a free variable of
// type t: same type, not a built-in, not captured by a declaration of the
// fragment, const when t is const and writable otherwise.
func substitutes(scope *symbols.Scope, t types.Type, declared map[string]bool) []string {
	var out []string
	for _, sym := range scope.Symbols() {
		if sym.Kind == symbols.SymbolBuiltin || declared[sym.Name] {
			continue
		}
		if sym.Type.Unqualified() != t.Unqualified() {
			continue
		}
		if t.Quals.IsConst() {
			if !sym.Type.Quals.IsConst() {
				continue
			}
		} else if !writable(sym.Type.Quals.Storage) {
			continue
		}
		out = append(out, sym.Name)
	}
	return out
}

func writable(s types.Storage) bool {
	return s == types.StorageNone || s == types.StorageOut || s == types.StorageInOut
}

func sameResult(donor *ast.Program, donorFn ast.DeclID, prog *ast.Program, fn ast.DeclID) bool {
	a, ok := donor.Decls.Func(donorFn)
	if !ok {
		return false
	}
	b, ok := prog.Decls.Func(fn)
	if !ok {
		return false
	}
	return a.Result.Unqualified() == b.Result.Unqualified()
}

// LiveStrategy donates code that runs. Its free variables are declared
// locally with constant values, so it only touches its own state.
type LiveStrategy struct{}

func (LiveStrategy) Name() string   { return "donate_live_code" }
func (LiveStrategy) Prefix() string { return "GLF_live" }

func (LiveStrategy) Probability(p config.Probabilities) int { return p.DonateLiveCode }

// Adapt bounds the loops of the donor when long loops are to be avoided
// and drops its discards, which would end the invocation.
func (LiveStrategy) Adapt(donor *ast.Program, prefix string, env *transform.Env) {
	if env.Params.AvoidLongLoops {
		limit := env.Rand.Range(env.Params.LoopLimitMin, env.Params.LoopLimitMax)
		safety.TruncateLoops(donor, limit, prefix, false)
	}
	removeDiscards(donor)
}

// Prepare builds the new-scope block
//
//	{
//	    <declaration of each free variable>
//	    <fragment>
//	}
func (LiveStrategy) Prepare(p inject.Point, c *Context, env *transform.Env) (ast.StmtID, error) {
	b := p.Program().Builder
	fz := fuzzer.New(b, p.Scope(), env.Rand, env.Params)
	fz.Structs = c.Structs

	var stmts []ast.StmtID
	for _, name := range c.FreeNames() {
		lt := localType(c.FreeVariables[name])
		var init ast.ExprID
		if isLoopLimiter(name, lt) {
			init = b.Exprs.Int("0")
		} else {
			var err error
			if init, err = initializer(fz, name, lt, true); err != nil {
				return ast.NoStmtID, err
			}
		}
		stmts = append(stmts, declare(b, name, lt, init))
	}

	frag := b.CloneStmt(c.Donor.Builder, c.Fragment)
	frag = sanitize(b, frag, jumpRules{})
	return b.Stmts.NewBlock(source.Span{}, append(stmts, frag), true), nil
}

func isLoopLimiter(name string, t types.Type) bool {
	return strings.Contains(name, safety.LoopLimiter) && t.Unqualified() == types.Int
}
