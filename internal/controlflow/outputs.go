package controlflow

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"glfuzz/internal/ast"
	"glfuzz/internal/fuzzer"
	"glfuzz/internal/inject"
	"glfuzz/internal/opaque"
	"glfuzz/internal/source"
	"glfuzz/internal/symbols"
	"glfuzz/internal/transform"
	"glfuzz/internal/types"
)

// OutVarBackupPrefix starts the name of the local that saves an output
// variable around a live write.
const OutVarBackupPrefix = "_GLF_outVarBackup"

const fragColor = "gl_FragColor"

type outVar struct {
	name string
	t    types.Type
}

// outputVariables lists the shader outputs visible in scope, by name.
// Arrays are left out: there is nothing to fuzz them from.
func outputVariables(prog *ast.Program, scope *symbols.Scope) []outVar {
	var out []outVar
	if prog.Kind == ast.ShaderFragment && hasFragColor(prog.Version) {
		if _, shadowed := scope.Lookup(fragColor); !shadowed {
			out = append(out, outVar{name: fragColor, t: types.Vector(types.KindFloat, 4)})
		}
	}
	for _, sym := range scope.Symbols() {
		if sym.Kind != symbols.SymbolGlobal && sym.Kind != symbols.SymbolBuiltin {
			continue
		}
		if sym.Type.Quals.Storage != types.StorageOut || sym.Type.IsArray() {
			continue
		}
		out = append(out, outVar{name: sym.Name, t: sym.Type.Unqualified()})
	}
	slices.SortFunc(out, func(a, b outVar) int { return strings.Compare(a.name, b.name) })
	return out
}

// hasFragColor reports whether gl_FragColor exists for the "#version"
// line v: it was removed in GLSL ES 3.00.
func hasFragColor(v string) bool {
	fields := strings.Fields(v)
	if len(fields) < 2 {
		return true
	}
	n, err := strconv.Atoi(fields[1])
	return err != nil || n < 300
}

// chooseOutput draws one output variable visible at pt.
func chooseOutput(env *transform.Env, pt inject.Point) (outVar, bool) {
	vars := outputVariables(env.Prog, pt.Scope())
	if len(vars) == 0 {
		return outVar{}, false
	}
	return vars[env.Rand.NextInt(len(vars))], true
}

// fuzzedValue builds a constant-ish value for v that reads no variable.
func fuzzedValue(env *transform.Env, v outVar) (ast.ExprID, error) {
	return fuzzer.New(env.Prog.Builder, nil, env.Rand, env.Params).Expr(v.t, false)
}

func assign(b *ast.Builder, name string, value ast.ExprID) ast.StmtID {
	return b.Stmts.NewExpr(source.Span{}, b.Exprs.Bin(ast.ExprBinaryAssign, b.Exprs.Var(name), value))
}

// addDeadOutputWrites injects
//
//	if (_GLF_DEAD(<opaque false>)) {
//	    out = <fuzzed>;
//	}
func addDeadOutputWrites(ctx context.Context, env *transform.Env) (transform.Result, error) {
	var res transform.Result
	b := env.Prog.Builder
	for _, pt := range inject.Find(env.Prog, nil).Select(env.Rand, env.Probs.AddDeadOutputWrites) {
		v, ok := chooseOutput(env, pt)
		if !ok {
			continue
		}
		value, err := fuzzedValue(env, v)
		if err != nil {
			skipped(ctx, NameDeadOutputWrites, err)
			continue
		}
		body := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{assign(b, v.name, value)}, true)
		if err := pt.Inject(deadIf(env, body)); err != nil {
			skipped(ctx, NameDeadOutputWrites, err)
			continue
		}
		res.Record(env, NameDeadOutputWrites, pt, v.name)
	}
	return res, nil
}

// addLiveOutputWrites injects a write that is always undone:
//
//	{
//	    T _GLF_outVarBackupout;
//	    _GLF_outVarBackupout = out;
//	    out = <fuzzed>;
//	    if (_GLF_WRAPPED_IF_TRUE(<opaque true>)) {
//	        out = _GLF_outVarBackupout;
//	    }
//	}
func addLiveOutputWrites(ctx context.Context, env *transform.Env) (transform.Result, error) {
	var res transform.Result
	b := env.Prog.Builder
	for _, pt := range inject.Find(env.Prog, nil).Select(env.Rand, env.Probs.AddLiveOutputWrites) {
		v, ok := chooseOutput(env, pt)
		if !ok {
			continue
		}
		value, err := fuzzedValue(env, v)
		if err != nil {
			skipped(ctx, NameLiveOutputWrites, err)
			continue
		}
		backup := OutVarBackupPrefix + v.name
		decl := b.Stmts.NewDecl(source.Span{}, ast.VarDecl{Type: v.t, Vars: []ast.Declarator{{Name: backup}}})
		save := assign(b, backup, b.Exprs.Var(v.name))
		clobber := assign(b, v.name, value)
		restore := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{assign(b, v.name, b.Exprs.Var(backup))}, true)
		guard := b.Stmts.NewIf(source.Span{}, opaque.New(b, env.Rand, env.Params).WrappedIfTrue(), restore, ast.NoStmtID)
		block := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{decl, save, clobber, guard}, true)
		if err := pt.Inject(block); err != nil {
			skipped(ctx, NameLiveOutputWrites, err)
			continue
		}
		res.Record(env, NameLiveOutputWrites, pt, v.name)
	}
	return res, nil
}
