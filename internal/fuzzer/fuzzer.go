// Package fuzzer builds random, side-effect-free expressions and
// statements of a requested type.
package fuzzer

import (
	"errors"
	"fmt"
	"strconv"

	"glfuzz/internal/ast"
	"glfuzz/internal/config"
	"glfuzz/internal/rng"
	"glfuzz/internal/source"
	"glfuzz/internal/symbols"
	"glfuzz/internal/types"
)

// ErrFuzzedIntoCorner is returned when no expression of the requested
// type could be built, for instance a struct whose definition is unknown.
var ErrFuzzedIntoCorner = errors.New("fuzzed into a corner")

const maxTries = 50

// Fuzzer allocates into B. With a nil Scope only literals and
// constructors are produced.
type Fuzzer struct {
	B      *ast.Builder
	Scope  *symbols.Scope
	Rand   rng.Source
	Params config.GenerationParams
	// Structs supplements Scope with definitions that are about to be
	// added to the program, such as those of a donor.
	Structs []types.StructDef
}

// New returns a fuzzer over scope.
func New(b *ast.Builder, scope *symbols.Scope, rnd rng.Source, params config.GenerationParams) *Fuzzer {
	return &Fuzzer{B: b, Scope: scope, Rand: rnd, Params: params}
}

// Expr returns an expression of type t. With constOnly set the result is a
// constant expression usable as a const initializer.
func (f *Fuzzer) Expr(t types.Type, constOnly bool) (ast.ExprID, error) {
	var lastErr error
	for range maxTries {
		id, err := f.makeExpr(t.Unqualified(), constOnly, 0)
		if err == nil {
			return id, nil
		}
		lastErr = err
	}
	return ast.NoExprID, fmt.Errorf("%s: %w", t, lastErr)
}

// TooDeep makes deeper levels exponentially less likely and stops at
// maxDepth.
func TooDeep(rnd rng.Source, depth, maxDepth int) bool {
	if depth >= maxDepth {
		return true
	}
	for i := 0; i <= depth; i++ {
		if rnd.NextInt(2) == 0 {
			return true
		}
	}
	return false
}

func (f *Fuzzer) tooDeep(depth int) bool {
	return TooDeep(f.Rand, depth, f.Params.MaxExprDepth)
}

func (f *Fuzzer) lookupStruct(name string) (types.StructDef, bool) {
	for i := len(f.Structs) - 1; i >= 0; i-- {
		if f.Structs[i].Name == name {
			return f.Structs[i], true
		}
	}
	if f.Scope != nil {
		return f.Scope.LookupStruct(name)
	}
	return types.StructDef{}, false
}

func (f *Fuzzer) makeExpr(t types.Type, constOnly bool, depth int) (ast.ExprID, error) {
	exprs := f.B.Exprs
	switch {
	case t.IsArray():
		elem := t.ElementType()
		args := make([]ast.ExprID, 0, t.ArrayLen)
		for i := uint32(0); i < t.ArrayLen; i++ {
			a, err := f.makeExpr(elem, constOnly, depth+1)
			if err != nil {
				return ast.NoExprID, err
			}
			args = append(args, a)
		}
		return exprs.NewArrayCtor(source.Span{}, elem.String(), t.ArrayLen, args), nil
	case t.Kind == types.KindStruct:
		def, ok := f.lookupStruct(t.Name)
		if !ok {
			return ast.NoExprID, fmt.Errorf("struct %s not in scope: %w", t.Name, ErrFuzzedIntoCorner)
		}
		args := make([]ast.ExprID, 0, len(def.Fields))
		for _, fld := range def.Fields {
			a, err := f.makeExpr(fld.Type.Unqualified(), constOnly, depth+1)
			if err != nil {
				return ast.NoExprID, err
			}
			args = append(args, a)
		}
		return exprs.Invoke(def.Name, args...), nil
	case t.IsScalar(), t.IsVector(), t.IsMatrix():
		return f.makeBasic(t, constOnly, depth)
	}
	return ast.NoExprID, fmt.Errorf("type %s: %w", t, ErrFuzzedIntoCorner)
}

type exprMaker func() (ast.ExprID, error)

func (f *Fuzzer) makeBasic(t types.Type, constOnly bool, depth int) (ast.ExprID, error) {
	exprs := f.B.Exprs
	leaves := []exprMaker{func() (ast.ExprID, error) { return f.Literal(t), nil }}
	for _, name := range f.variablesOf(t, constOnly) {
		leaves = append(leaves, func() (ast.ExprID, error) { return exprs.Var(name), nil })
	}
	if f.tooDeep(depth) {
		return leaves[f.Rand.NextInt(len(leaves))]()
	}
	next := depth + 1
	sub := func(st types.Type) (ast.ExprID, error) { return f.makeBasic(st, constOnly, next) }
	makers := append([]exprMaker(nil), leaves...)

	scalar := t.ScalarKind()
	numeric := scalar == types.KindInt || scalar == types.KindFloat || scalar == types.KindUint
	if numeric {
		for _, op := range []ast.ExprBinaryOp{ast.ExprBinaryAdd, ast.ExprBinarySub, ast.ExprBinaryMul} {
			makers = append(makers, func() (ast.ExprID, error) {
				l, err := sub(t)
				if err != nil {
					return ast.NoExprID, err
				}
				r, err := sub(t)
				if err != nil {
					return ast.NoExprID, err
				}
				return exprs.Bin(op, l, r), nil
			})
		}
	}
	if scalar == types.KindInt || scalar == types.KindFloat {
		makers = append(makers, func() (ast.ExprID, error) {
			e, err := sub(t)
			if err != nil {
				return ast.NoExprID, err
			}
			return exprs.NewUnary(source.Span{}, ast.ExprUnaryMinus, e), nil
		})
	}
	if t.IsVector() {
		makers = append(makers, func() (ast.ExprID, error) {
			args := make([]ast.ExprID, 0, t.Size)
			for i := 0; i < int(t.Size); i++ {
				a, err := sub(types.Type{Kind: t.Elem})
				if err != nil {
					return ast.NoExprID, err
				}
				args = append(args, a)
			}
			return exprs.Invoke(t.String(), args...), nil
		})
	}
	if t.IsMatrix() {
		makers = append(makers, func() (ast.ExprID, error) {
			a, err := sub(types.Float)
			if err != nil {
				return ast.NoExprID, err
			}
			return exprs.Invoke(t.String(), a), nil
		})
	}
	if t == types.Bool {
		makers = append(makers,
			func() (ast.ExprID, error) {
				e, err := sub(types.Bool)
				if err != nil {
					return ast.NoExprID, err
				}
				return exprs.NewUnary(source.Span{}, ast.ExprUnaryNot, e), nil
			},
			func() (ast.ExprID, error) {
				op := ast.ExprBinaryLogicalAnd
				if f.Rand.NextBool() {
					op = ast.ExprBinaryLogicalOr
				}
				l, err := sub(types.Bool)
				if err != nil {
					return ast.NoExprID, err
				}
				r, err := sub(types.Bool)
				if err != nil {
					return ast.NoExprID, err
				}
				return exprs.Bin(op, l, r), nil
			},
			func() (ast.ExprID, error) {
				operand := types.Float
				if f.Rand.NextBool() {
					operand = types.Int
				}
				l, err := sub(operand)
				if err != nil {
					return ast.NoExprID, err
				}
				r, err := sub(operand)
				if err != nil {
					return ast.NoExprID, err
				}
				return exprs.Bin(ast.ExprBinaryLess, l, r), nil
			})
	}
	if !constOnly && scalar == types.KindFloat && !t.IsMatrix() {
		for _, fn := range []string{"abs", "min", "max"} {
			makers = append(makers, func() (ast.ExprID, error) {
				n := 1
				if fn != "abs" {
					n = 2
				}
				args := make([]ast.ExprID, 0, n)
				for range n {
					a, err := sub(t)
					if err != nil {
						return ast.NoExprID, err
					}
					args = append(args, a)
				}
				return exprs.Invoke(fn, args...), nil
			})
		}
	}
	return makers[f.Rand.NextInt(len(makers))]()
}

// variablesOf lists visible variables of exactly type t. In a constant
// context only const variables qualify.
func (f *Fuzzer) variablesOf(t types.Type, constOnly bool) []string {
	if f.Scope == nil {
		return nil
	}
	var out []string
	for _, sym := range f.Scope.Symbols() {
		if sym.Type.Unqualified() != t {
			continue
		}
		if constOnly && !sym.Type.Quals.IsConst() {
			continue
		}
		out = append(out, sym.Name)
	}
	return out
}

// Literal returns a random literal or literal constructor of the
// scalar, vector or matrix type t.
func (f *Fuzzer) Literal(t types.Type) ast.ExprID {
	exprs := f.B.Exprs
	switch {
	case t.IsVector():
		args := make([]ast.ExprID, 0, t.Size)
		for i := 0; i < int(t.Size); i++ {
			args = append(args, f.Literal(types.Type{Kind: t.Elem}))
		}
		return exprs.Invoke(t.String(), args...)
	case t.IsMatrix():
		n := int(t.Size) * int(t.Size)
		args := make([]ast.ExprID, 0, n)
		for range n {
			args = append(args, f.Literal(types.Float))
		}
		return exprs.Invoke(t.String(), args...)
	}
	switch t.Kind {
	case types.KindBool:
		return exprs.Bool(f.Rand.NextBool())
	case types.KindInt:
		return exprs.Int(strconv.Itoa(f.Rand.NextInt(100)))
	case types.KindUint:
		return exprs.NewLiteral(source.Span{}, ast.ExprLitUint, strconv.Itoa(f.Rand.NextInt(100))+"u")
	}
	text := strconv.Itoa(f.Rand.NextInt(100)) + "." + strconv.Itoa(f.Rand.NextInt(10))
	return exprs.NewLiteral(source.Span{}, ast.ExprLitFloat, text)
}
