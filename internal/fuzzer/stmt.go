package fuzzer

import (
	"glfuzz/internal/ast"
	"glfuzz/internal/source"
	"glfuzz/internal/types"
)

// Stmt returns a random statement that declares nothing: a null
// statement, an expression statement, a block or an if.
func (f *Fuzzer) Stmt() (ast.StmtID, error) {
	return f.stmt(0)
}

func (f *Fuzzer) stmt(depth int) (ast.StmtID, error) {
	stmts := f.B.Stmts
	choice := 0
	if !f.tooDeep(depth) {
		choice = f.Rand.NextInt(4)
	}
	switch choice {
	case 1:
		e, err := f.Expr(f.randomBasicType(), false)
		if err != nil {
			return ast.NoStmtID, err
		}
		return stmts.NewExpr(source.Span{}, e), nil
	case 2:
		n := f.Rand.NextInt(3)
		body := make([]ast.StmtID, 0, n)
		for range n {
			s, err := f.stmt(depth + 1)
			if err != nil {
				return ast.NoStmtID, err
			}
			body = append(body, s)
		}
		return stmts.NewBlock(source.Span{}, body, true), nil
	case 3:
		cond, err := f.Expr(types.Bool, false)
		if err != nil {
			return ast.NoStmtID, err
		}
		then, err := f.stmt(depth + 1)
		if err != nil {
			return ast.NoStmtID, err
		}
		els := ast.NoStmtID
		if f.Rand.NextBool() {
			if els, err = f.stmt(depth + 1); err != nil {
				return ast.NoStmtID, err
			}
		}
		return stmts.NewIf(source.Span{}, cond, f.asBlock(then), f.asBlock(els)), nil
	}
	return stmts.NewNull(source.Span{}), nil
}

// asBlock keeps nested ifs braced so an else never dangles.
func (f *Fuzzer) asBlock(id ast.StmtID) ast.StmtID {
	if !id.IsValid() || f.B.Stmts.Kind(id) == ast.StmtBlock {
		return id
	}
	return f.B.Stmts.NewBlock(source.Span{}, []ast.StmtID{id}, true)
}

var basicTypes = []types.Type{
	types.Bool, types.Int, types.Float,
	types.Vector(types.KindFloat, 2), types.Vector(types.KindFloat, 3), types.Vector(types.KindFloat, 4),
	types.Vector(types.KindInt, 2), types.Vector(types.KindBool, 3),
	types.Matrix(2),
}

func (f *Fuzzer) randomBasicType() types.Type {
	return basicTypes[f.Rand.NextInt(len(basicTypes))]
}
