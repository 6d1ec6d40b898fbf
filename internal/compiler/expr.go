package compiler

import (
	"vellum/internal/bytecode"
	"vellum/internal/parser"
)

var binOps = map[string]bytecode.OpCode{
	"+": bytecode.ADD, "-": bytecode.SUB, "*": bytecode.MUL, "/": bytecode.DIV,
	"%": bytecode.MOD, "^^": bytecode.POW,
	"==": bytecode.EQ, "!=": bytecode.NE,
	"<": bytecode.LT, "<=": bytecode.LE, ">": bytecode.GT, ">=": bytecode.GE,
}

// expr compiles e, leaving exactly one value on the stack.
func (c *Compiler) expr(e parser.Expr) {
	switch n := e.(type) {
	case *parser.Literal:
		c.literal(n)
	case *parser.Ident:
		c.emitNameOp(bytecode.LOAD, n.Pos, n.Name)
	case *parser.Attr:
		c.expr(n.Target)
		c.emitNameOp(bytecode.LOAD_A, n.Pos, n.Name)
	case *parser.Index:
		c.indexExpr(n)
	case *parser.Call:
		c.callExpr(n)
	case *parser.Unary:
		c.unaryExpr(n)
	case *parser.Binary:
		c.binaryExpr(n)
	case *parser.TupleExpr:
		for _, el := range n.Elems {
			c.expr(el)
		}
		c.emit(bytecode.TUPLE, n.Pos)
		c.chunk.EmitU32(uint32(len(n.Elems)))
	case *parser.ListExpr:
		for _, el := range n.Elems {
			c.expr(el)
		}
		c.emit(bytecode.LIST, n.Pos)
		c.chunk.EmitU32(uint32(len(n.Elems)))
	case *parser.DictExpr:
		c.dictExpr(n)
	case *parser.FuncExpr:
		c.funcLiteral(n.Name, n.Params, n.Body, n.Pos)
	default:
		c.emit(bytecode.CONST_NONE, parser.Pos{})
	}
}

func (c *Compiler) literal(n *parser.Literal) {
	switch v := n.Value.(type) {
	case nil:
		c.emit(bytecode.CONST_NONE, n.Pos)
	case bool:
		if v {
			c.emit(bytecode.CONST_TRUE, n.Pos)
		} else {
			c.emit(bytecode.CONST_FALSE, n.Pos)
		}
	default:
		c.emitConst(n.Pos, v)
	}
}

// indexExpr compiles target[key]. A SliceExpr key is lowered to a call on
// the global `slice` constructor so GETITEM only ever sees a plain value
// as its second operand.
func (c *Compiler) indexExpr(n *parser.Index) {
	c.expr(n.Target)
	if sl, ok := n.Key.(*parser.SliceExpr); ok {
		c.sliceExpr(sl)
	} else {
		c.expr(n.Key)
	}
	c.emit(bytecode.GETITEM, n.Pos)
	c.chunk.EmitU32(2)
}

func (c *Compiler) sliceExpr(n *parser.SliceExpr) {
	c.emitNameOp(bytecode.LOAD, n.Pos, "slice")
	for _, part := range []parser.Expr{n.Start, n.Stop, n.Step} {
		if part == nil {
			c.emit(bytecode.CONST_NONE, n.Pos)
		} else {
			c.expr(part)
		}
	}
	c.emit(bytecode.CALL, n.Pos)
	c.chunk.EmitU32(4)
}

// callExpr pushes the callee, then arguments left to right, so the
// interpreter's CALL n reads a contiguous [callee, args...] window
// without needing to reverse anything (§4.7).
func (c *Compiler) callExpr(n *parser.Call) {
	c.expr(n.Callee)
	for _, a := range n.Args {
		c.expr(a)
	}
	c.emit(bytecode.CALL, n.Pos)
	c.chunk.EmitU32(uint32(len(n.Args) + 1))
}

// unaryExpr lowers `!` and `-` without dedicated opcodes, since the
// opcode set is fixed (§4.7): `!` branches on JMPF (with a JMP over the
// false arm), and `-x` becomes `0 - x`.
func (c *Compiler) unaryExpr(n *parser.Unary) {
	switch n.Op {
	case "-":
		c.emitConst(n.Pos, int64(0))
		c.expr(n.X)
		c.emit(bytecode.SUB, n.Pos)
	case "!":
		c.expr(n.X)
		jf := c.emitJump(bytecode.JMPF, n.Pos)
		c.emit(bytecode.POPU, n.Pos)
		c.emit(bytecode.CONST_FALSE, n.Pos)
		jend := c.emitJump(bytecode.JMP, n.Pos)
		c.patchJump(jf)
		c.emit(bytecode.POPU, n.Pos)
		c.emit(bytecode.CONST_TRUE, n.Pos)
		c.patchJump(jend)
	default:
		c.expr(n.X)
	}
}

func (c *Compiler) binaryExpr(n *parser.Binary) {
	if n.Op == "&&" {
		c.expr(n.Left)
		jf := c.emitJump(bytecode.JMPF, n.Pos)
		c.emit(bytecode.POPU, n.Pos)
		c.expr(n.Right)
		c.patchJump(jf)
		return
	}
	if n.Op == "||" {
		c.expr(n.Left)
		jt := c.emitJump(bytecode.JMPT, n.Pos)
		c.emit(bytecode.POPU, n.Pos)
		c.expr(n.Right)
		c.patchJump(jt)
		return
	}
	c.expr(n.Left)
	c.expr(n.Right)
	op, ok := binOps[n.Op]
	if !ok {
		op = bytecode.ADD
	}
	c.emit(op, n.Pos)
}

// dictExpr builds the literal via repeated SETITEM rather than a
// dedicated opcode, keeping the dict itself alive in a temp local across
// the chain (SETITEM leaves its assigned value, not the target, on the
// stack — see stmt.go's assignment lowering for the same convention).
func (c *Compiler) dictExpr(n *parser.DictExpr) {
	c.emitNameOp(bytecode.LOAD, n.Pos, "dict")
	c.emit(bytecode.CALL, n.Pos)
	c.chunk.EmitU32(1)
	tmp := c.freshTemp()
	c.emitNameOp(bytecode.STORE, n.Pos, tmp)
	for i := range n.Keys {
		c.emitNameOp(bytecode.LOAD, n.Pos, tmp)
		c.expr(n.Keys[i])
		c.expr(n.Vals[i])
		c.emit(bytecode.SETITEM, n.Pos)
		c.chunk.EmitU32(3)
		c.emit(bytecode.POPU, n.Pos)
	}
}
