package compiler

import (
	"vellum/internal/bytecode"
	"vellum/internal/object"
	"vellum/internal/parser"
)

// funcLiteral compiles a nested function body into its own Chunk and
// leaves the resulting CompiledFunction constant on the stack. Locals are
// a per-frame name dictionary (§3), so a nested function's free
// variables resolve dynamically against its defining frame's globals
// rather than through captured slots — there is no enclosing-local
// capture here, only module-global closure, which is the one
// simplification this port makes over a full lexical-scoping compiler.
func (c *Compiler) funcLiteral(name string, params []string, body []parser.Stmt, pos parser.Pos) {
	nested := New(name, c.chunk.File)
	nested.stmtList(body)
	nested.chunk.Emit(bytecode.RET_NONE, bytecode.Token{})

	fn := object.NewCompiledFunction(name, params, nested.chunk, nil)
	c.emitConst(pos, fn)
}
