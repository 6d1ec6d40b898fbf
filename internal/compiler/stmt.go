package compiler

import (
	"vellum/internal/bytecode"
	"vellum/internal/parser"
)

func (c *Compiler) stmtList(stmts []parser.Stmt) {
	for _, s := range stmts {
		c.stmt(s)
	}
}

func (c *Compiler) stmt(s parser.Stmt) {
	switch n := s.(type) {
	case *parser.ExprStmt:
		c.expr(n.X)
		c.emit(bytecode.POPU, n.Pos)
	case *parser.LetStmt:
		c.expr(n.Value)
		c.emitNameOp(bytecode.STORE, n.Pos, n.Name)
		c.emit(bytecode.POPU, n.Pos)
	case *parser.AssignStmt:
		c.assignStmt(n)
	case *parser.BlockStmt:
		c.stmtList(n.Stmts)
	case *parser.IfStmt:
		c.ifStmt(n)
	case *parser.WhileStmt:
		c.whileStmt(n)
	case *parser.ForStmt:
		c.forStmt(n)
	case *parser.TryStmt:
		c.tryStmt(n)
	case *parser.ThrowStmt:
		c.emitNameOp(bytecode.LOAD, n.Pos, "raise")
		c.expr(n.X)
		c.emit(bytecode.CALL, n.Pos)
		c.chunk.EmitU32(2)
		c.emit(bytecode.POPU, n.Pos)
	case *parser.ReturnStmt:
		if n.X != nil {
			c.expr(n.X)
			c.emit(bytecode.RET, n.Pos)
		} else {
			c.emit(bytecode.RET_NONE, n.Pos)
		}
	case *parser.BreakStmt:
		c.breakStmt(n.Pos)
	case *parser.ContinueStmt:
		c.continueStmt(n.Pos)
	case *parser.FuncDeclStmt:
		c.funcLiteral(n.Name, n.Params, n.Body, n.Pos)
		c.emitNameOp(bytecode.STORE, n.Pos, n.Name)
		c.emit(bytecode.POPU, n.Pos)
	case *parser.ImportStmt:
		c.importStmt(n)
	}
}

// assignStmt lowers `target = value` / augmented forms for the three
// assignable target shapes: a bare name, an attribute, or an index.
// Augmented ops (`+=` etc.) re-read the target before combining, same as
// the teacher's desugaring of compound assignment into read-modify-write.
func (c *Compiler) assignStmt(n *parser.AssignStmt) {
	op := n.Op
	combine := func() {
		if op == "=" {
			c.expr(n.Value)
			return
		}
		c.expr(n.Target)
		c.expr(n.Value)
		bop, ok := binOps[op]
		if !ok {
			bop = bytecode.ADD
		}
		c.emit(bop, n.Pos)
	}

	switch t := n.Target.(type) {
	case *parser.Ident:
		combine()
		c.emitNameOp(bytecode.STORE, n.Pos, t.Name)
		c.emit(bytecode.POPU, n.Pos)
	case *parser.Attr:
		c.expr(t.Target)
		combine()
		c.emitNameOp(bytecode.STORE_A, n.Pos, t.Name)
		c.emit(bytecode.POPU, n.Pos)
	case *parser.Index:
		c.expr(t.Target)
		c.expr(t.Key)
		combine()
		c.emit(bytecode.SETITEM, n.Pos)
		c.chunk.EmitU32(3)
		c.emit(bytecode.POPU, n.Pos)
	}
}

func (c *Compiler) ifStmt(n *parser.IfStmt) {
	var ends []int

	compileBranch := func(cond parser.Expr, body []parser.Stmt) int {
		c.expr(cond)
		jf := c.emitJump(bytecode.JMPF, n.Pos)
		c.emit(bytecode.POPU, n.Pos)
		c.stmtList(body)
		jend := c.emitJump(bytecode.JMP, n.Pos)
		c.patchJump(jf)
		c.emit(bytecode.POPU, n.Pos)
		return jend
	}

	ends = append(ends, compileBranch(n.Cond, n.Then))
	for _, ei := range n.Elifs {
		ends = append(ends, compileBranch(ei.Cond, ei.Body))
	}
	c.stmtList(n.Else)
	for _, e := range ends {
		c.patchJump(e)
	}
}

func (c *Compiler) whileStmt(n *parser.WhileStmt) {
	start := len(c.chunk.Code)
	c.pushLoop(start)
	c.expr(n.Cond)
	jf := c.emitJump(bytecode.JMPF, n.Pos)
	c.emit(bytecode.POPU, n.Pos)
	c.stmtList(n.Body)
	c.emitJumpBack(bytecode.JMP, n.Pos, start)
	c.patchJump(jf)
	c.emit(bytecode.POPU, n.Pos)
	c.popLoop()
}

// forStmt lowers `for x in expr { body }` into a call to the global
// iter() builtin followed by a next()/OutOfIterError loop, the only
// mechanism the fixed opcode set offers for iteration (§4.7): next()'s
// failure is caught with EXC_ADD/EXC_REM rather than a dedicated op.
func (c *Compiler) forStmt(n *parser.ForStmt) {
	iterVar := c.freshTemp()
	c.emitNameOp(bytecode.LOAD, n.Pos, "iter")
	c.expr(n.Iter)
	c.emit(bytecode.CALL, n.Pos)
	c.chunk.EmitU32(2)
	c.emitNameOp(bytecode.STORE, n.Pos, iterVar)
	c.emit(bytecode.POPU, n.Pos)

	start := len(c.chunk.Code)
	c.pushLoop(start)

	handler := c.emitExcAdd(n.Pos)
	c.emitNameOp(bytecode.LOAD, n.Pos, "next")
	c.emitNameOp(bytecode.LOAD, n.Pos, iterVar)
	c.emit(bytecode.CALL, n.Pos)
	c.chunk.EmitU32(2)
	c.emitNameOp(bytecode.STORE, n.Pos, n.Var)
	c.emit(bytecode.POPU, n.Pos)
	c.emit(bytecode.EXC_REM, n.Pos)

	c.stmtList(n.Body)
	c.emitJumpBack(bytecode.JMP, n.Pos, start)

	c.patchExcAddHere(handler)
	// handler entry: VM has pushed the caught exception value. An
	// OutOfIterError ends the loop; any other error is raised again.
	exc := c.freshTemp()
	c.emitNameOp(bytecode.STORE, n.Pos, exc)
	c.emit(bytecode.POPU, n.Pos)
	c.emitNameOp(bytecode.LOAD, n.Pos, "type")
	c.emitNameOp(bytecode.LOAD, n.Pos, exc)
	c.emit(bytecode.CALL, n.Pos)
	c.chunk.EmitU32(2)
	c.emitNameOp(bytecode.LOAD, n.Pos, "OutOfIterError")
	c.emit(bytecode.EQ, n.Pos)
	isEnd := c.emitJump(bytecode.JMPT, n.Pos)
	c.emitNameOp(bytecode.LOAD, n.Pos, "raise")
	c.emitNameOp(bytecode.LOAD, n.Pos, exc)
	c.emit(bytecode.CALL, n.Pos)
	c.chunk.EmitU32(2)
	c.patchJump(isEnd)
	c.emit(bytecode.POPU, n.Pos)
	c.popLoop()
}

// tryStmt lowers try/catch directly onto EXC_ADD/EXC_REM: the VM pushes
// the caught value at the handler PC on unwind, bound here to CatchAs.
func (c *Compiler) tryStmt(n *parser.TryStmt) {
	handler := c.emitExcAdd(n.Pos)
	c.stmtList(n.Try)
	c.emit(bytecode.EXC_REM, n.Pos)
	jend := c.emitJump(bytecode.JMP, n.Pos)

	c.patchExcAddHere(handler)
	if n.CatchAs != "" {
		c.emitNameOp(bytecode.STORE, n.Pos, n.CatchAs)
		c.emit(bytecode.POPU, n.Pos)
	} else {
		c.emit(bytecode.POPU, n.Pos)
	}
	c.stmtList(n.Catch)

	c.patchJump(jend)
}

func (c *Compiler) breakStmt(p parser.Pos) {
	if c.curLoop() == nil {
		return
	}
	off := c.emitJump(bytecode.JMP, p)
	lc := c.curLoop()
	lc.breaks = append(lc.breaks, off)
}

func (c *Compiler) continueStmt(p parser.Pos) {
	lc := c.curLoop()
	if lc == nil {
		return
	}
	c.emitJumpBack(bytecode.JMP, p, lc.continueAt)
}

// importStmt loads the named module (via the global import() builtin,
// backed by internal/module's loader) and binds it to the alias or the
// module's own name.
func (c *Compiler) importStmt(n *parser.ImportStmt) {
	name := n.Alias
	if name == "" {
		name = n.Path
	}
	c.emitNameOp(bytecode.LOAD, n.Pos, "import")
	c.emitConst(n.Pos, n.Path)
	c.emit(bytecode.CALL, n.Pos)
	c.chunk.EmitU32(2)
	c.emitNameOp(bytecode.STORE, n.Pos, name)
	c.emit(bytecode.POPU, n.Pos)
}
