package bytecode

import "encoding/binary"

// Token is the per-instruction source token used for error rendering: the
// parallel array mapping each instruction offset to a source position
// described in §3 (bytecode object).
type Token struct {
	Line, Col, Len int
	Text           string // the source line text, for caret diagnostics
}

// Chunk is the bytecode object: a flat instruction byte array, a constant
// pool, and a parallel per-instruction source-token array (§3).
type Chunk struct {
	Name      string
	File      string
	Code      []byte
	Constants []interface{}
	Tokens    []Token // Tokens[ip] is the token for the instruction at ip
}

func NewChunk(name, file string) *Chunk {
	return &Chunk{Name: name, File: file}
}

// Emit appends the opcode byte only; a payload, if op carries one, is
// appended by the caller via EmitU32/EmitI32 (jump operands are later
// back-patched with PatchI32). Returns the offset of the opcode byte.
func (c *Chunk) Emit(op OpCode, tok Token) int {
	off := len(c.Code)
	c.Code = append(c.Code, byte(op))
	c.padTokens(off + 1)
	c.Tokens[off] = tok
	return off
}

func (c *Chunk) padTokens(n int) {
	for len(c.Tokens) < n {
		c.Tokens = append(c.Tokens, Token{})
	}
}

// EmitU32 appends a 4-byte big-endian operand immediately after an opcode
// emitted via Emit.
func (c *Chunk) EmitU32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	c.Code = append(c.Code, buf[:]...)
	c.padTokens(len(c.Code))
}

// EmitI32 is the signed counterpart, used for JMP/JMPT/JMPF relative
// offsets.
func (c *Chunk) EmitI32(v int32) {
	c.EmitU32(uint32(v))
}

// PatchI32 overwrites the 4-byte operand starting at byte offset pos
// (the offset immediately after the opcode byte), used to back-patch
// forward jumps once the target offset is known.
func (c *Chunk) PatchI32(pos int, v int32) {
	binary.BigEndian.PutUint32(c.Code[pos:pos+4], uint32(v))
}

func (c *Chunk) ReadU32(pos int) uint32 {
	return binary.BigEndian.Uint32(c.Code[pos : pos+4])
}

func (c *Chunk) ReadI32(pos int) int32 {
	return int32(c.ReadU32(pos))
}

// AddConstant interns val into the constant pool. Dedupe is optional per
// §4.6; this port does not dedupe, matching the simplest faithful
// behavior.
func (c *Chunk) AddConstant(val interface{}) int {
	c.Constants = append(c.Constants, val)
	return len(c.Constants) - 1
}

func (c *Chunk) TokenAt(ip int) Token {
	if ip >= 0 && ip < len(c.Tokens) {
		return c.Tokens[ip]
	}
	return Token{}
}
