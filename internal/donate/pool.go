package donate

import (
	"errors"
	"slices"
	"strconv"

	"glfuzz/internal/ast"
	"glfuzz/internal/safety"
	"glfuzz/internal/source"
	"glfuzz/internal/symbols"
	"glfuzz/internal/transform"
	"glfuzz/internal/types"
)

// ErrNoDonors is returned by Pool.Choose when every donor has turned out
// to be incompatible with the recipient.
var ErrNoDonors = errors.New("no compatible donor")

// Source is one parsed donor shader. Its program is never modified; the
// pool works on clones, so a Source may be shared between goroutines.
type Source struct {
	Name string
	Prog *ast.Program
}

// Donor is a prepared clone of a Source: prefixed, bounds-checked and
// adapted to the strategy.
type Donor struct {
	Name   string
	Prefix string
	Prog   *ast.Program
}

type signature struct {
	name   string
	params []types.Type
	result types.Type
}

func (s signature) sameParams(o signature) bool {
	return s.name == o.name && slices.Equal(s.params, o.params)
}

// Pool hands out donors for one strategy over the passes of one variant.
// Donors used in a pass are rotated to the back so that each one is tried
// before any is used again.
type Pool struct {
	strategy Strategy
	unused   []Source
	used     []Source
	loaded   map[string]*Donor
	count    int

	funcs   []signature
	globals map[string]types.Type
	structs map[string]bool
}

// NewPool returns a pool over sources, which it keeps sorted by name.
func NewPool(strategy Strategy, sources []Source) *Pool {
	unused := slices.Clone(sources)
	slices.SortFunc(unused, func(a, b Source) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return &Pool{strategy: strategy, unused: unused, loaded: make(map[string]*Donor)}
}

func (p *Pool) Strategy() Strategy { return p.strategy }

// Empty reports whether no donor is left to try.
func (p *Pool) Empty() bool { return len(p.unused) == 0 && len(p.loaded) == 0 }

// begin resets the names in use to those of the recipient.
func (p *Pool) begin(recipient *ast.Program) {
	p.funcs = nil
	p.globals = make(map[string]types.Type)
	p.structs = make(map[string]bool)
	p.note(recipient)
}

func (p *Pool) note(prog *ast.Program) {
	p.funcs = append(p.funcs, signatures(prog)...)
	for name, t := range globals(prog) {
		p.globals[name] = t
	}
	for _, name := range structNames(prog) {
		p.structs[name] = true
	}
}

// Choose returns a donor for the next point. Once MaxDonorsPerPass donors
// are loaded, only those are drawn from.
func (p *Pool) Choose(env *transform.Env) (*Donor, error) {
	if len(p.loaded) > 0 && len(p.loaded) >= env.Params.MaxDonorsPerPass {
		names := make([]string, 0, len(p.loaded))
		for n := range p.loaded {
			names = append(names, n)
		}
		slices.Sort(names)
		return p.loaded[names[env.Rand.NextInt(len(names))]], nil
	}
	for len(p.unused) > 0 {
		i := env.Rand.NextInt(len(p.unused))
		src := p.unused[i]
		if d, ok := p.loaded[src.Name]; ok {
			return d, nil
		}
		if d, ok := p.load(src, env); ok {
			return d, nil
		}
		p.unused = slices.Delete(p.unused, i, i+1)
	}
	return nil, ErrNoDonors
}

// load prepares src and checks it against the names in use.
func (p *Pool) load(src Source, env *transform.Env) (*Donor, bool) {
	if src.Prog.Kind != env.Prog.Kind {
		return nil, false
	}
	prefix := p.strategy.Prefix() + strconv.Itoa(p.count)
	prog := src.Prog.Clone()
	addPrefixes(prog, prefix)
	declareBuiltinStandIns(prog, prefix)
	stripInterface(prog)
	safety.MakeArrayAccessesInBounds(prog)
	p.strategy.Adapt(prog, prefix, env)
	p.count++

	if !p.compatible(prog) {
		return nil, false
	}
	p.note(prog)
	d := &Donor{Name: src.Name, Prefix: prefix, Prog: prog}
	p.loaded[src.Name] = d
	return d, true
}

// compatible reports whether donor can live next to the recipient and the
// donors loaded so far.
func (p *Pool) compatible(donor *ast.Program) bool {
	usedFuncs := make(map[string]bool, len(p.funcs))
	for _, f := range p.funcs {
		usedFuncs[f.name] = true
	}
	for _, sig := range signatures(donor) {
		if _, ok := p.globals[sig.name]; ok || p.structs[sig.name] {
			return false
		}
		for _, f := range p.funcs {
			if f.sameParams(sig) && f.result != sig.result {
				return false
			}
		}
	}
	for name, t := range globals(donor) {
		if usedFuncs[name] || p.structs[name] {
			return false
		}
		if old, ok := p.globals[name]; ok && old != t {
			return false
		}
	}
	for _, name := range structNames(donor) {
		if _, ok := p.globals[name]; ok || usedFuncs[name] || p.structs[name] {
			return false
		}
	}
	return true
}

// finish moves the recipient-facing declarations of every loaded donor
// into recipient and rotates the donors.
func (p *Pool) finish(recipient *ast.Program) int {
	names := make([]string, 0, len(p.loaded))
	for n := range p.loaded {
		names = append(names, n)
	}
	slices.Sort(names)

	var added []ast.DeclID
	for _, n := range names {
		added = append(added, donateDeclarations(recipient, p.loaded[n].Prog)...)
	}
	recipient.InsertDecls(firstDefinition(recipient), added...)

	for _, n := range names {
		i := slices.IndexFunc(p.unused, func(s Source) bool { return s.Name == n })
		if i < 0 {
			continue
		}
		p.used = append(p.used, p.unused[i])
		p.unused = slices.Delete(p.unused, i, i+1)
	}
	if len(p.unused) == 0 {
		p.unused, p.used = p.used, nil
	}
	clear(p.loaded)
	return len(added)
}

// donateDeclarations clones into recipient the functions, globals and
// structs of donor that recipient lacks. main is never donated.
func donateDeclarations(recipient, donor *ast.Program) []ast.DeclID {
	have := signatures(recipient)
	haveGlobals := globals(recipient)
	var out []ast.DeclID
	for _, d := range donor.Items {
		switch donor.Decls.Get(d).Kind {
		case ast.DeclFunc:
			sig := signatureOf(donor, d)
			if sig.name == "main" || slices.ContainsFunc(have, func(s signature) bool {
				return s.sameParams(sig) && s.result == sig.result
			}) {
				continue
			}
			out = append(out, recipient.CloneDecl(donor.Builder, d))
		case ast.DeclStruct:
			out = append(out, recipient.CloneDecl(donor.Builder, d))
		case ast.DeclVars:
			vd, _ := donor.Decls.VarsOf(d)
			keep := slices.ContainsFunc(vd.Vars, func(v ast.Declarator) bool {
				_, ok := haveGlobals[v.Name]
				return !ok
			})
			if !keep {
				continue
			}
			id := recipient.CloneDecl(donor.Builder, d)
			cvd, _ := recipient.Decls.VarsOf(id)
			cvd.Vars = slices.DeleteFunc(cvd.Vars, func(v ast.Declarator) bool {
				_, ok := haveGlobals[v.Name]
				return ok
			})
			out = append(out, id)
		}
	}
	return out
}

func firstDefinition(prog *ast.Program) int {
	for i, d := range prog.Items {
		if fn, ok := prog.Decls.Func(d); ok && !fn.IsPrototype() {
			return i
		}
	}
	return len(prog.Items)
}

func signatureOf(prog *ast.Program, d ast.DeclID) signature {
	fn, _ := prog.Decls.Func(d)
	sig := signature{name: fn.Name, result: fn.Result.Unqualified()}
	for _, prm := range fn.Params {
		sig.params = append(sig.params, prm.Type.Unqualified())
	}
	return sig
}

func signatures(prog *ast.Program) []signature {
	var out []signature
	for _, d := range prog.Items {
		if prog.Decls.Get(d).Kind == ast.DeclFunc {
			out = append(out, signatureOf(prog, d))
		}
	}
	return out
}

func globals(prog *ast.Program) map[string]types.Type {
	out := make(map[string]types.Type)
	for _, d := range prog.Items {
		vd, ok := prog.Decls.VarsOf(d)
		if !ok {
			continue
		}
		for i, v := range vd.Vars {
			out[v.Name] = vd.TypeOf(i)
		}
	}
	return out
}

func structNames(prog *ast.Program) []string {
	var out []string
	for _, d := range prog.Items {
		if def, ok := prog.Decls.Struct(d); ok && def.Name != "" {
			out = append(out, def.Name)
		}
	}
	return out
}

// addPrefixes renames every variable, parameter and function of prog,
// main excepted. Calls are renamed only when they target a function of
// prog; struct names and fields keep theirs.
func addPrefixes(prog *ast.Program, prefix string) {
	declared := make(map[string]bool)
	for _, d := range prog.Items {
		if fn, ok := prog.Decls.Func(d); ok {
			declared[fn.Name] = true
		}
	}
	b := prog.Builder
	renameExpr := func(e ast.ExprID) bool {
		if id, ok := b.Exprs.Ident(e); ok {
			id.Name = prefix + id.Name
		} else if call, ok := b.Exprs.Call(e); ok && declared[call.Callee] {
			call.Callee = prefix + call.Callee
		}
		return true
	}
	renameVars := func(vars []ast.Declarator) {
		for i := range vars {
			vars[i].Name = prefix + vars[i].Name
		}
	}

	for _, d := range prog.Items {
		switch prog.Decls.Get(d).Kind {
		case ast.DeclVars:
			vd, _ := prog.Decls.VarsOf(d)
			for _, v := range vd.Vars {
				b.WalkExpr(v.Init, renameExpr)
			}
			renameVars(vd.Vars)
		case ast.DeclFunc:
			fn, _ := prog.Decls.Func(d)
			if fn.Name != "main" {
				fn.Name = prefix + fn.Name
			}
			for i := range fn.Params {
				if fn.Params[i].Name != "" {
					fn.Params[i].Name = prefix + fn.Params[i].Name
				}
			}
			if fn.IsPrototype() {
				continue
			}
			b.WalkExprs(fn.Body, renameExpr)
			b.WalkStmts(fn.Body, func(s ast.StmtID) bool {
				if vd, ok := b.Stmts.Decl(s); ok {
					renameVars(vd.Vars)
				} else if sd, ok := b.Stmts.Struct(s); ok {
					renameVars(sd.Vars)
				}
				return true
			})
		}
	}
}

// declareBuiltinStandIns declares a prefixed global for every built-in
// variable of the stage: after prefixing, donor code refers to those.
func declareBuiltinStandIns(prog *ast.Program, prefix string) {
	var decls []ast.DeclID
	for _, sym := range symbols.Builtins(prog.Kind) {
		t := sym.Type.Unqualified()
		if t.ScalarKind() != types.KindBool {
			t = t.WithQualifiers(types.Qualifiers{Precision: types.PrecisionMedium})
		}
		decls = append(decls, prog.Decls.NewVars(source.Span{}, ast.VarDecl{
			Type: t,
			Vars: []ast.Declarator{{Name: prefix + sym.Name}},
		}))
	}
	prog.InsertDecls(0, decls...)
}

// stripInterface turns the in/out globals of prog into plain globals.
// Uniforms stay uniforms: donated code may read them but never writes.
func stripInterface(prog *ast.Program) {
	for _, d := range prog.Items {
		vd, ok := prog.Decls.VarsOf(d)
		if !ok {
			continue
		}
		q := vd.Type.Quals
		q.Layout = ""
		q.Flat = false
		switch q.Storage {
		case types.StorageIn, types.StorageOut, types.StorageInOut:
			q.Storage = types.StorageNone
		}
		vd.Type = vd.Type.WithQualifiers(q)
	}
}
