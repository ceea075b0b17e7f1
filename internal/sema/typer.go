package sema

import (
	"glfuzz/internal/ast"
	"glfuzz/internal/symbols"
	"glfuzz/internal/types"
)

// Typer infers expression types against a scope. It knows the user
// functions and struct definitions of Prog; expressions must be allocated
// in Prog's builder.
type Typer struct {
	Prog  *ast.Program
	Scope *symbols.Scope
}

// TypeOf is a shorthand for Typer{prog, scope}.Expr(id).
func TypeOf(prog *ast.Program, scope *symbols.Scope, id ast.ExprID) types.Type {
	return Typer{Prog: prog, Scope: scope}.Expr(id)
}

// Expr returns the unqualified type of id, or types.Invalid when it
// cannot be inferred.
func (tc Typer) Expr(id ast.ExprID) types.Type {
	ex := tc.Prog.Exprs.Get(id)
	if ex == nil {
		return types.Invalid
	}
	exprs := tc.Prog.Exprs
	switch ex.Kind {
	case ast.ExprIdent:
		d, _ := exprs.Ident(id)
		if tc.Scope == nil {
			return types.Invalid
		}
		sym, ok := tc.Scope.Lookup(d.Name)
		if !ok {
			return types.Invalid
		}
		return sym.Type.Unqualified()
	case ast.ExprLit:
		d, _ := exprs.Literal(id)
		switch d.Kind {
		case ast.ExprLitInt:
			return types.Int
		case ast.ExprLitUint:
			return types.Uint
		case ast.ExprLitFloat:
			return types.Float
		case ast.ExprLitBool:
			return types.Bool
		}
	case ast.ExprGroup:
		d, _ := exprs.Group(id)
		return tc.Expr(d.Inner)
	case ast.ExprUnary:
		d, _ := exprs.Unary(id)
		if d.Op == ast.ExprUnaryNot {
			return types.Bool
		}
		return tc.Expr(d.Operand)
	case ast.ExprBinary:
		d, _ := exprs.Binary(id)
		return tc.binary(d.Op, d.Left, d.Right)
	case ast.ExprTernary:
		d, _ := exprs.Ternary(id)
		if t := tc.Expr(d.Then); t.IsValid() {
			return t
		}
		return tc.Expr(d.Else)
	case ast.ExprIndex:
		d, _ := exprs.Index(id)
		t, ok := tc.Expr(d.Target).IndexedType()
		if !ok {
			return types.Invalid
		}
		return t.Unqualified()
	case ast.ExprMember:
		d, _ := exprs.Member(id)
		return tc.member(tc.Expr(d.Target), d.Field)
	case ast.ExprCall:
		d, _ := exprs.Call(id)
		return tc.call(d)
	}
	return types.Invalid
}

func (tc Typer) binary(op ast.ExprBinaryOp, left, right ast.ExprID) types.Type {
	switch {
	case op == ast.ExprBinaryComma:
		return tc.Expr(right)
	case op.IsAssign():
		return tc.Expr(left)
	case op.IsComparison(), op.IsLogical():
		return types.Bool
	}
	lt, rt := tc.Expr(left), tc.Expr(right)
	switch op {
	case ast.ExprBinaryShl, ast.ExprBinaryShr:
		return lt
	case ast.ExprBinaryMul:
		// линейная алгебра: mat*vec и vec*mat дают вектор
		if lt.IsMatrix() && rt.IsVector() {
			return rt
		}
		if lt.IsVector() && rt.IsMatrix() {
			return lt
		}
	}
	if !lt.IsValid() {
		return rt
	}
	if lt.IsScalar() && (rt.IsVector() || rt.IsMatrix()) {
		return rt
	}
	return lt
}

func (tc Typer) member(target types.Type, field string) types.Type {
	switch {
	case target.IsVector():
		t, _ := types.Swizzle(target, field)
		return t
	case target.IsStruct():
		def, ok := tc.lookupStruct(target.Name)
		if !ok {
			return types.Invalid
		}
		t, _ := def.Field(field)
		return t.Unqualified()
	}
	return types.Invalid
}

func (tc Typer) lookupStruct(name string) (types.StructDef, bool) {
	if tc.Scope != nil {
		if def, ok := tc.Scope.LookupStruct(name); ok {
			return def, true
		}
	}
	for _, d := range tc.Prog.Items {
		if def, ok := tc.Prog.Decls.Struct(d); ok && def.Name == name {
			return *def, true
		}
	}
	return types.StructDef{}, false
}

func (tc Typer) call(d *ast.ExprCallData) types.Type {
	var ctor types.Type
	if t, ok := types.LookupBasic(d.Callee); ok {
		ctor = t
	} else if _, ok := tc.lookupStruct(d.Callee); ok {
		ctor = types.Struct(d.Callee)
	}
	if ctor.IsValid() {
		if d.ArrayLen != 0 {
			ctor.ArrayLen = d.ArrayLen
		}
		return ctor
	}
	if _, fn, ok := tc.Prog.LookupFunction(d.Callee); ok {
		return fn.Result.Unqualified()
	}
	for _, item := range tc.Prog.Items {
		if fn, ok := tc.Prog.Decls.Func(item); ok && fn.Name == d.Callee {
			return fn.Result.Unqualified()
		}
	}
	args := make([]types.Type, len(d.Args))
	for i, a := range d.Args {
		args[i] = tc.Expr(a)
	}
	return builtinResult(d.Callee, args)
}
