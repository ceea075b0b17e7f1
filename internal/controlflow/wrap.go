package controlflow

import (
	"context"
	"strconv"
	"strings"

	"glfuzz/internal/ast"
	"glfuzz/internal/inject"
	"glfuzz/internal/opaque"
	"glfuzz/internal/source"
	"glfuzz/internal/transform"
	"glfuzz/internal/types"
)

// LoopCounterPrefix names the counters of single-iteration for shells.
const LoopCounterPrefix = "_injected_loop_counter_"

// Shell is one of the four inert constructs a statement can be wrapped in.
type Shell uint8

const (
	ShellIfTrue  Shell = iota // if (true) { S } else { }
	ShellIfFalse              // if (false) { } else { S }
	ShellFor                  // for (int c = 0; c < 1; c++) { S }
	ShellDo                   // do { S } while (false);
	numShells
)

func (s Shell) String() string {
	switch s {
	case ShellIfTrue:
		return "if-true"
	case ShellIfFalse:
		return "if-false"
	case ShellFor:
		return "for"
	case ShellDo:
		return "do-while"
	}
	return "shell(" + strconv.Itoa(int(s)) + ")"
}

// wrappable accepts points followed by a statement that can move into a
// nested scope and keep its control flow: not a declaration, not a case
// label, and without a break or continue leaving it.
func wrappable(pt inject.Point) bool {
	if !pt.HasNext() {
		return false
	}
	next, err := pt.Next()
	if err != nil {
		return false
	}
	b := pt.Program().Builder
	switch k := b.Stmts.Kind(next); {
	case k == ast.StmtDecl, k == ast.StmtStruct, k.IsLabel():
		return false
	}
	return !escapes(b, next, ast.StmtBreak) && !escapes(b, next, ast.StmtContinue)
}

func wrapStatements(ctx context.Context, env *transform.Env) (transform.Result, error) {
	var res transform.Result
	w := &wrapper{env: env, counter: nextCounter(env.Prog, LoopCounterPrefix)}
	for _, pt := range inject.Find(env.Prog, wrappable).Select(env.Rand, env.Probs.WrapStmt) {
		next, err := pt.Next()
		if err != nil {
			skipped(ctx, NameWrap, err)
			continue
		}
		shell := Shell(env.Rand.NextInt(int(numShells)))
		wrapped := w.wrap(next, shell)
		if pt.Kind() == inject.SiteIfBranch {
			// if без фигурных скобок внутри ветки if: висячий else
			wrapped = env.Prog.Stmts.NewBlock(source.Span{}, []ast.StmtID{wrapped}, false)
		}
		if err := pt.ReplaceNext(wrapped); err != nil {
			skipped(ctx, NameWrap, err)
			continue
		}
		res.Record(env, NameWrap, pt, shell.String())
	}
	return res, nil
}

type wrapper struct {
	env     *transform.Env
	counter int
}

// wrap returns stmt inside shell. A non-block stmt is first put in a
// scoped block.
func (w *wrapper) wrap(stmt ast.StmtID, shell Shell) ast.StmtID {
	b := w.env.Prog.Builder
	g := opaque.New(b, w.env.Rand, w.env.Params)
	body := stmt
	if b.Stmts.Kind(stmt) != ast.StmtBlock {
		body = b.Stmts.NewBlock(source.Span{}, []ast.StmtID{stmt}, true)
	}
	empty := func() ast.StmtID { return b.Stmts.NewBlock(source.Span{}, nil, true) }

	switch shell {
	case ShellIfTrue:
		return b.Stmts.NewIf(source.Span{}, g.WrappedIfTrue(), body, empty())
	case ShellIfFalse:
		return b.Stmts.NewIf(source.Span{}, g.WrappedIfFalse(), empty(), body)
	case ShellDo:
		return b.Stmts.NewDo(source.Span{}, body, b.Exprs.Invoke(opaque.MarkerWrappedLoop, g.False()))
	}
	return w.singleIteration(g, body)
}

// singleIteration builds a for loop counting from opaque zero to opaque
// one, or down from one to zero.
func (w *wrapper) singleIteration(g *opaque.Generator, body ast.StmtID) ast.StmtID {
	b := w.env.Prog.Builder
	rnd := w.env.Rand
	name := LoopCounterPrefix + strconv.Itoa(w.counter)
	w.counter++

	up := rnd.NextBool()
	zero, _ := g.Zero(types.Int, 0)
	one, _ := g.One(types.Int, 0)
	start, end := zero, one
	op, post := ast.ExprBinaryLess, ast.ExprUnaryPostInc
	if !up {
		start, end = one, zero
		op, post = ast.ExprBinaryGreater, ast.ExprUnaryPostDec
	}
	if rnd.NextBool() {
		op = ast.ExprBinaryNotEq
	}
	init := b.Stmts.NewDecl(source.Span{}, ast.VarDecl{
		Type: types.Int,
		Vars: []ast.Declarator{{Name: name, Init: start}},
	})
	cond := b.Exprs.Invoke(opaque.MarkerWrappedLoop, b.Exprs.Bin(op, b.Exprs.Var(name), end))
	return b.Stmts.NewFor(source.Span{}, ast.StmtForData{
		Init: init,
		Cond: cond,
		Post: b.Exprs.NewUnary(source.Span{}, post, b.Exprs.Var(name)),
		Body: body,
	})
}

// nextCounter returns one more than the largest n such that prefix+n is
// declared somewhere in prog.
func nextCounter(prog *ast.Program, prefix string) int {
	next := 0
	for _, d := range prog.Functions() {
		fn, _ := prog.Decls.Func(d)
		prog.WalkStmts(fn.Body, func(s ast.StmtID) bool {
			vd, ok := prog.Stmts.Decl(s)
			if !ok {
				return true
			}
			for _, v := range vd.Vars {
				rest, found := strings.CutPrefix(v.Name, prefix)
				if !found {
					continue
				}
				if n, err := strconv.Atoi(rest); err == nil && n >= next {
					next = n + 1
				}
			}
			return true
		})
	}
	return next
}
