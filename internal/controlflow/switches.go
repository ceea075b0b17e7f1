package controlflow

import (
	"context"
	"slices"
	"strconv"

	"glfuzz/internal/ast"
	"glfuzz/internal/fuzzer"
	"glfuzz/internal/inject"
	"glfuzz/internal/opaque"
	"glfuzz/internal/source"
	"glfuzz/internal/symbols"
	"glfuzz/internal/transform"
)

// maxCaseLabel bounds the random labels; 0 is reserved for the label the
// switch value selects.
const maxCaseLabel = 100

// switchable reports whether id is a block whose statements can move
// under a switch: a break among them would then leave the switch instead.
func switchable(b *ast.Builder, id ast.StmtID) bool {
	return id.IsValid() && b.Stmts.Kind(id) == ast.StmtBlock && !escapes(b, id, ast.StmtBreak)
}

// switchTargets returns the blocks of stmt that can be switchified: stmt
// itself, the branches of an if, or the body of a loop.
func switchTargets(b *ast.Builder, stmt ast.StmtID) []ast.StmtID {
	if switchable(b, stmt) {
		return []ast.StmtID{stmt}
	}
	if is, ok := b.Stmts.If(stmt); ok {
		var out []ast.StmtID
		for _, br := range []ast.StmtID{is.Then, is.Else} {
			if switchable(b, br) {
				out = append(out, br)
			}
		}
		return out
	}
	if body, ok := b.Stmts.LoopBody(stmt); ok && switchable(b, body) {
		return []ast.StmtID{body}
	}
	return nil
}

func switchifiable(pt inject.Point) bool {
	if !pt.HasNext() {
		return false
	}
	next, err := pt.Next()
	return err == nil && len(switchTargets(pt.Program().Builder, next)) > 0
}

func addSwitches(ctx context.Context, env *transform.Env) (transform.Result, error) {
	var res transform.Result
	b := env.Prog.Builder
	for _, pt := range inject.Find(env.Prog, switchifiable).Select(env.Rand, env.Probs.Switchify) {
		next, err := pt.Next()
		if err != nil {
			skipped(ctx, NameSwitches, err)
			continue
		}
		targets := switchTargets(b, next)
		if len(targets) == 2 {
			// обе ветки if: хотя бы одну
			var pick []ast.StmtID
			for len(pick) == 0 {
				for _, t := range targets {
					if env.Rand.NextBool() {
						pick = append(pick, t)
					}
				}
			}
			targets = pick
		}
		n := 0
		for _, t := range targets {
			ok, err := switchify(env, pt, t)
			if err != nil {
				skipped(ctx, NameSwitches, err)
				continue
			}
			if ok {
				n++
			}
		}
		if n > 0 {
			res.Record(env, NameSwitches, pt, strconv.Itoa(n)+" block(s)")
		}
	}
	return res, nil
}

// switchify replaces the statements S1..Sn of block with
//
//	switch (_GLF_SWITCH(<opaque 0>)) {
//	    <unreachable cases>
//	    case 0: [case k:] S1 ... [case k:] Sn break;
//	    <unreachable cases>
//	    default: 1;
//	}
//
// Extra labels among S1..Sn only add entry points that control never
// takes; falling through keeps S1..Sn running in order.
func switchify(env *transform.Env, pt inject.Point, block ast.StmtID) (bool, error) {
	b := env.Prog.Builder
	rnd := env.Rand
	blk, _ := b.Stmts.Block(block)
	orig := slices.Clone(blk.Stmts)
	if len(orig) == 0 {
		return false, nil
	}
	before, during, after := rnd.NextInt(3), rnd.NextInt(3), rnd.NextInt(3)

	used := make(map[int]bool)
	label := func() int {
		for {
			if v := rnd.NextPositiveInt(maxCaseLabel); !used[v] {
				used[v] = true
				return v
			}
		}
	}
	caseOf := func(v int) ast.StmtID {
		return b.Stmts.NewCase(source.Span{}, b.Exprs.Int(strconv.Itoa(v)))
	}

	fz := fuzzer.New(b, fuzzScope(b, pt.Scope(), orig), rnd, env.Params)
	unreachable := func(n int) ([]ast.StmtID, error) {
		var out []ast.StmtID
		for range n {
			s, err := fz.Stmt()
			if err != nil {
				return nil, err
			}
			out = append(out, caseOf(label()), s)
		}
		return out, nil
	}

	body, err := unreachable(before)
	if err != nil {
		return false, err
	}
	labels := make([][]int, len(orig))
	labels[0] = []int{0}
	for range during {
		i := rnd.NextInt(len(orig))
		labels[i] = append(labels[i], label())
	}
	for i, s := range orig {
		for _, l := range labels[i] {
			body = append(body, caseOf(l))
		}
		body = append(body, s)
	}
	body = append(body, b.Stmts.NewBreak(source.Span{}))
	tail, err := unreachable(after)
	if err != nil {
		return false, err
	}
	body = append(body, tail...)
	body = append(body, b.Stmts.NewDefault(source.Span{}), b.Stmts.NewExpr(source.Span{}, b.Exprs.Int("1")))

	value := opaque.New(b, rnd, env.Params).SwitchValue()
	sw := b.Stmts.NewSwitch(source.Span{}, value, b.Stmts.NewBlock(source.Span{}, body, true))
	blk, _ = b.Stmts.Block(block)
	blk.Stmts = []ast.StmtID{sw}
	return true, nil
}

// fuzzScope is the scope unreachable cases may read from. The moved
// statements share the switch body with those cases, so when one of them
// redeclares a visible name the cases read nothing at all.
func fuzzScope(b *ast.Builder, scope *symbols.Scope, moved []ast.StmtID) *symbols.Scope {
	for _, s := range moved {
		vd, ok := b.Stmts.Decl(s)
		if !ok {
			continue
		}
		for _, v := range vd.Vars {
			if _, clash := scope.Lookup(v.Name); clash {
				return nil
			}
		}
	}
	return scope
}
