package ast

// StmtChildren returns the direct child statements of id in source order.
func (b *Builder) StmtChildren(id StmtID) []StmtID {
	st := b.Stmts.Get(id)
	if st == nil {
		return nil
	}
	switch st.Kind {
	case StmtBlock:
		blk, _ := b.Stmts.Block(id)
		return append([]StmtID(nil), blk.Stmts...)
	case StmtIf:
		ifs, _ := b.Stmts.If(id)
		if ifs.Else.IsValid() {
			return []StmtID{ifs.Then, ifs.Else}
		}
		return []StmtID{ifs.Then}
	case StmtFor:
		fs, _ := b.Stmts.For(id)
		if fs.Init.IsValid() {
			return []StmtID{fs.Init, fs.Body}
		}
		return []StmtID{fs.Body}
	case StmtWhile, StmtDo:
		ls, _ := b.Stmts.Loop(id)
		return []StmtID{ls.Body}
	case StmtSwitch:
		sw, _ := b.Stmts.Switch(id)
		return []StmtID{sw.Body}
	}
	return nil
}

// StmtExprs returns the expressions owned directly by id, excluding those
// of child statements.
func (b *Builder) StmtExprs(id StmtID) []ExprID {
	st := b.Stmts.Get(id)
	if st == nil {
		return nil
	}
	var out []ExprID
	add := func(ids ...ExprID) {
		for _, e := range ids {
			if e.IsValid() {
				out = append(out, e)
			}
		}
	}
	switch st.Kind {
	case StmtDecl:
		vd, _ := b.Stmts.Decl(id)
		for _, d := range vd.Vars {
			add(d.Init)
		}
	case StmtStruct:
		sd, _ := b.Stmts.Struct(id)
		for _, d := range sd.Vars {
			add(d.Init)
		}
	case StmtExpr:
		es, _ := b.Stmts.Expr(id)
		add(es.Expr)
	case StmtIf:
		ifs, _ := b.Stmts.If(id)
		add(ifs.Cond)
	case StmtFor:
		fs, _ := b.Stmts.For(id)
		add(fs.Cond, fs.Post)
	case StmtWhile, StmtDo:
		ls, _ := b.Stmts.Loop(id)
		add(ls.Cond)
	case StmtSwitch:
		sw, _ := b.Stmts.Switch(id)
		add(sw.Expr)
	case StmtCase:
		cs, _ := b.Stmts.Case(id)
		add(cs.Value)
	case StmtReturn:
		rs, _ := b.Stmts.Return(id)
		add(rs.Value)
	}
	return out
}

// ExprChildren returns the direct operands of id in evaluation order.
func (b *Builder) ExprChildren(id ExprID) []ExprID {
	ex := b.Exprs.Get(id)
	if ex == nil {
		return nil
	}
	switch ex.Kind {
	case ExprCall:
		c, _ := b.Exprs.Call(id)
		return append([]ExprID(nil), c.Args...)
	case ExprBinary:
		d, _ := b.Exprs.Binary(id)
		return []ExprID{d.Left, d.Right}
	case ExprUnary:
		d, _ := b.Exprs.Unary(id)
		return []ExprID{d.Operand}
	case ExprGroup:
		d, _ := b.Exprs.Group(id)
		return []ExprID{d.Inner}
	case ExprIndex:
		d, _ := b.Exprs.Index(id)
		return []ExprID{d.Target, d.Index}
	case ExprMember:
		d, _ := b.Exprs.Member(id)
		return []ExprID{d.Target}
	case ExprTernary:
		d, _ := b.Exprs.Ternary(id)
		return []ExprID{d.Cond, d.Then, d.Else}
	}
	return nil
}

// WalkStmts visits root and its descendants in pre-order. Returning false
// from fn skips the children of that statement.
func (b *Builder) WalkStmts(root StmtID, fn func(StmtID) bool) {
	if !root.IsValid() || !fn(root) {
		return
	}
	for _, c := range b.StmtChildren(root) {
		b.WalkStmts(c, fn)
	}
}

// WalkExpr visits root and its sub-expressions in pre-order.
func (b *Builder) WalkExpr(root ExprID, fn func(ExprID) bool) {
	if !root.IsValid() || !fn(root) {
		return
	}
	for _, c := range b.ExprChildren(root) {
		b.WalkExpr(c, fn)
	}
}

// WalkExprs visits every expression below the statement root.
func (b *Builder) WalkExprs(root StmtID, fn func(ExprID) bool) {
	b.WalkStmts(root, func(s StmtID) bool {
		for _, e := range b.StmtExprs(s) {
			b.WalkExpr(e, fn)
		}
		return true
	})
}

// CountStmts returns the number of statements in the subtree at root.
func (b *Builder) CountStmts(root StmtID) int {
	n := 0
	b.WalkStmts(root, func(StmtID) bool {
		n++
		return true
	})
	return n
}

// Contains reports whether target lies in the subtree at root.
func (b *Builder) Contains(root, target StmtID) bool {
	found := false
	b.WalkStmts(root, func(s StmtID) bool {
		if s == target {
			found = true
		}
		return !found
	})
	return found
}

// ReplaceChild swaps the direct child old of parent for repl in place.
func (b *Builder) ReplaceChild(parent, old, repl StmtID) bool {
	st := b.Stmts.Get(parent)
	if st == nil {
		return false
	}
	switch st.Kind {
	case StmtBlock:
		blk, _ := b.Stmts.Block(parent)
		for i, s := range blk.Stmts {
			if s == old {
				blk.Stmts[i] = repl
				return true
			}
		}
	case StmtIf:
		ifs, _ := b.Stmts.If(parent)
		switch old {
		case ifs.Then:
			ifs.Then = repl
			return true
		case ifs.Else:
			ifs.Else = repl
			return true
		}
	case StmtFor:
		fs, _ := b.Stmts.For(parent)
		switch old {
		case fs.Init:
			fs.Init = repl
			return true
		case fs.Body:
			fs.Body = repl
			return true
		}
	case StmtWhile, StmtDo:
		ls, _ := b.Stmts.Loop(parent)
		if ls.Body == old {
			ls.Body = repl
			return true
		}
	case StmtSwitch:
		sw, _ := b.Stmts.Switch(parent)
		if sw.Body == old {
			sw.Body = repl
			return true
		}
	}
	return false
}
