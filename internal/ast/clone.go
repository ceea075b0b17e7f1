package ast

// Cloning copies a subtree of src into b's arenas; src may be b itself.
// Payloads are copied by value before allocating, since allocation can move
// the arena storage under any pointer obtained from Get.

// CloneStmt deep-copies statement id of src into b.
func (b *Builder) CloneStmt(src *Builder, id StmtID) StmtID {
	st := src.Stmts.Get(id)
	if st == nil {
		return NoStmtID
	}
	span := st.Span
	switch st.Kind {
	case StmtBlock:
		blk, _ := src.Stmts.Block(id)
		data := *blk
		stmts := make([]StmtID, 0, len(data.Stmts))
		for _, s := range data.Stmts {
			stmts = append(stmts, b.CloneStmt(src, s))
		}
		return b.Stmts.NewBlock(span, stmts, data.NewScope)
	case StmtDecl:
		vd, _ := src.Stmts.Decl(id)
		return b.Stmts.NewDecl(span, b.cloneVarDecl(src, *vd))
	case StmtStruct:
		sd, _ := src.Stmts.Struct(id)
		data := *sd
		vd := b.cloneVarDecl(src, VarDecl{Vars: data.Vars})
		return b.Stmts.NewStruct(span, StmtStructData{Def: data.Def.Clone(), Vars: vd.Vars})
	case StmtExpr:
		es, _ := src.Stmts.Expr(id)
		return b.Stmts.NewExpr(span, b.CloneExpr(src, es.Expr))
	case StmtIf:
		ifs, _ := src.Stmts.If(id)
		data := *ifs
		return b.Stmts.NewIf(span, b.CloneExpr(src, data.Cond), b.CloneStmt(src, data.Then), b.CloneStmt(src, data.Else))
	case StmtFor:
		fs, _ := src.Stmts.For(id)
		data := *fs
		return b.Stmts.NewFor(span, StmtForData{
			Init: b.CloneStmt(src, data.Init),
			Cond: b.CloneExpr(src, data.Cond),
			Post: b.CloneExpr(src, data.Post),
			Body: b.CloneStmt(src, data.Body),
		})
	case StmtWhile:
		ls, _ := src.Stmts.Loop(id)
		data := *ls
		return b.Stmts.NewWhile(span, b.CloneExpr(src, data.Cond), b.CloneStmt(src, data.Body))
	case StmtDo:
		ls, _ := src.Stmts.Loop(id)
		data := *ls
		body := b.CloneStmt(src, data.Body)
		return b.Stmts.NewDo(span, body, b.CloneExpr(src, data.Cond))
	case StmtSwitch:
		sw, _ := src.Stmts.Switch(id)
		data := *sw
		return b.Stmts.NewSwitch(span, b.CloneExpr(src, data.Expr), b.CloneStmt(src, data.Body))
	case StmtCase:
		cs, _ := src.Stmts.Case(id)
		return b.Stmts.NewCase(span, b.CloneExpr(src, cs.Value))
	case StmtReturn:
		rs, _ := src.Stmts.Return(id)
		return b.Stmts.NewReturn(span, b.CloneExpr(src, rs.Value))
	case StmtDefault:
		return b.Stmts.NewDefault(span)
	case StmtBreak:
		return b.Stmts.NewBreak(span)
	case StmtContinue:
		return b.Stmts.NewContinue(span)
	case StmtDiscard:
		return b.Stmts.NewDiscard(span)
	default:
		return b.Stmts.NewNull(span)
	}
}

func (b *Builder) cloneVarDecl(src *Builder, vd VarDecl) VarDecl {
	out := VarDecl{Type: vd.Type, Vars: make([]Declarator, len(vd.Vars))}
	for i, d := range vd.Vars {
		d.Init = b.CloneExpr(src, d.Init)
		out.Vars[i] = d
	}
	return out
}

// CloneExpr deep-copies expression id of src into b.
func (b *Builder) CloneExpr(src *Builder, id ExprID) ExprID {
	ex := src.Exprs.Get(id)
	if ex == nil {
		return NoExprID
	}
	span := ex.Span
	switch ex.Kind {
	case ExprIdent:
		d, _ := src.Exprs.Ident(id)
		return b.Exprs.NewIdent(span, d.Name)
	case ExprLit:
		d, _ := src.Exprs.Literal(id)
		return b.Exprs.NewLiteral(span, d.Kind, d.Text)
	case ExprCall:
		d, _ := src.Exprs.Call(id)
		data := *d
		args := make([]ExprID, len(data.Args))
		for i, a := range data.Args {
			args[i] = b.CloneExpr(src, a)
		}
		return b.Exprs.NewArrayCtor(span, data.Callee, data.ArrayLen, args)
	case ExprBinary:
		d, _ := src.Exprs.Binary(id)
		data := *d
		return b.Exprs.NewBinary(span, data.Op, b.CloneExpr(src, data.Left), b.CloneExpr(src, data.Right))
	case ExprUnary:
		d, _ := src.Exprs.Unary(id)
		data := *d
		return b.Exprs.NewUnary(span, data.Op, b.CloneExpr(src, data.Operand))
	case ExprGroup:
		d, _ := src.Exprs.Group(id)
		return b.Exprs.NewGroup(span, b.CloneExpr(src, d.Inner))
	case ExprIndex:
		d, _ := src.Exprs.Index(id)
		data := *d
		return b.Exprs.NewIndex(span, b.CloneExpr(src, data.Target), b.CloneExpr(src, data.Index))
	case ExprMember:
		d, _ := src.Exprs.Member(id)
		data := *d
		return b.Exprs.NewMember(span, b.CloneExpr(src, data.Target), data.Field)
	case ExprTernary:
		d, _ := src.Exprs.Ternary(id)
		data := *d
		return b.Exprs.NewTernary(span, b.CloneExpr(src, data.Cond), b.CloneExpr(src, data.Then), b.CloneExpr(src, data.Else))
	}
	return NoExprID
}

// CloneDecl deep-copies a top-level declaration of src into b.
func (b *Builder) CloneDecl(src *Builder, id DeclID) DeclID {
	decl := src.Decls.Get(id)
	if decl == nil {
		return NoDeclID
	}
	span := decl.Span
	switch decl.Kind {
	case DeclVars:
		vd, _ := src.Decls.VarsOf(id)
		return b.Decls.NewVars(span, b.cloneVarDecl(src, *vd))
	case DeclFunc:
		fn, _ := src.Decls.Func(id)
		data := *fn
		data.Params = append([]Param(nil), data.Params...)
		data.Body = b.CloneStmt(src, data.Body)
		return b.Decls.NewFunc(span, data)
	case DeclStruct:
		sd, _ := src.Decls.Struct(id)
		return b.Decls.NewStruct(span, sd.Clone())
	case DeclPrecision:
		pd, _ := src.Decls.Precision(id)
		return b.Decls.NewPrecision(span, *pd)
	}
	return NoDeclID
}
