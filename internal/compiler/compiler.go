// Package compiler lowers the parser's AST into bytecode objects,
// interning constants into a per-code-object pool and fixing up jump
// labels (§4.6, §4.7).
package compiler

import (
	"math/big"

	"vellum/internal/bytecode"
	"vellum/internal/parser"
)

// loopCtx tracks the patch sites for break/continue within one enclosing
// loop, and the absolute offset continue should jump back to.
type loopCtx struct {
	breaks     []int // offsets of JMP placeholders to patch to loop end
	continueAt int
}

// Compiler walks an AST and emits into a single bytecode.Chunk. Nested
// function literals get their own Compiler sharing the Chunk's file name
// but writing to a fresh Chunk.
type Compiler struct {
	chunk   *bytecode.Chunk
	loops   []*loopCtx
	tempSeq int
}

func New(name, file string) *Compiler {
	return &Compiler{chunk: bytecode.NewChunk(name, file)}
}

// Compile lowers a top-level program (statement list) into a Chunk ending
// in RET_NONE.
func Compile(stmts []parser.Stmt, name, file string) *bytecode.Chunk {
	c := New(name, file)
	for _, s := range stmts {
		c.stmt(s)
	}
	c.chunk.Emit(bytecode.RET_NONE, bytecode.Token{})
	return c.chunk
}

func (c *Compiler) tok(p parser.Pos) bytecode.Token {
	return bytecode.Token{Line: p.Line, Col: p.Col, Len: p.Len, Text: p.Text}
}

func (c *Compiler) emit(op bytecode.OpCode, p parser.Pos) int {
	return c.chunk.Emit(op, c.tok(p))
}

func (c *Compiler) emitNameOp(op bytecode.OpCode, p parser.Pos, name string) {
	c.emit(op, p)
	idx := c.chunk.AddConstant(name)
	c.chunk.EmitU32(uint32(idx))
}

func (c *Compiler) emitConst(p parser.Pos, v interface{}) {
	c.emit(bytecode.CONST, p)
	idx := c.chunk.AddConstant(v)
	c.chunk.EmitU32(uint32(idx))
}

func (c *Compiler) emitJump(op bytecode.OpCode, p parser.Pos) int {
	off := c.emit(op, p)
	c.chunk.EmitI32(0) // placeholder
	return off
}

// patchJump back-patches the jump at offset jmpOff so it lands at the
// current end of the chunk. Offsets are relative to the byte immediately
// after the 4-byte payload (§6).
func (c *Compiler) patchJump(jmpOff int) {
	payloadEnd := jmpOff + 1 + 4
	rel := int32(len(c.chunk.Code) - payloadEnd)
	c.chunk.PatchI32(jmpOff+1, rel)
}

func (c *Compiler) patchJumpTo(jmpOff, target int) {
	payloadEnd := jmpOff + 1 + 4
	rel := int32(target - payloadEnd)
	c.chunk.PatchI32(jmpOff+1, rel)
}

func (c *Compiler) emitJumpBack(op bytecode.OpCode, p parser.Pos, target int) {
	off := c.emit(op, p)
	payloadEnd := off + 1 + 4
	c.chunk.EmitI32(int32(target - payloadEnd))
}

func (c *Compiler) freshTemp() string {
	c.tempSeq++
	return "$tmp" + itoa(c.tempSeq)
}

func itoa(n int) string {
	return big.NewInt(int64(n)).String()
}

// emitExcAdd pushes a placeholder absolute handler PC (EXC_ADD takes an
// absolute offset, unlike the relative JMP family) and returns the offset
// to patch once the handler's code is emitted.
func (c *Compiler) emitExcAdd(p parser.Pos) int {
	off := c.emit(bytecode.EXC_ADD, p)
	c.chunk.EmitI32(0)
	return off
}

func (c *Compiler) patchExcAddHere(off int) {
	c.chunk.PatchI32(off+1, int32(len(c.chunk.Code)))
}

func (c *Compiler) pushLoop(continueAt int) {
	c.loops = append(c.loops, &loopCtx{continueAt: continueAt})
}

// popLoop pops the innermost loop context, patching every break's JMP
// placeholder to land just past the loop (the current chunk end).
func (c *Compiler) popLoop() {
	lc := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	for _, b := range lc.breaks {
		c.patchJump(b)
	}
}

func (c *Compiler) curLoop() *loopCtx {
	if len(c.loops) == 0 {
		return nil
	}
	return c.loops[len(c.loops)-1]
}
