package object

import (
	"vellum/internal/bytecode"
	"vellum/internal/memory"
)

// NativeFunction wraps a host callable with a signature string (used for
// arity/type diagnostics in ArgError messages).
type NativeFunction struct {
	memory.Refcounted
	Name      string
	Signature string
	Fn        NativeFn
}

func (f *NativeFunction) header() *memory.Refcounted { return &f.Refcounted }
func (f *NativeFunction) TypeOf() *Type              { return NativeFunctionType }

func NewNativeFunction(name, signature string, fn NativeFn) *NativeFunction {
	return &NativeFunction{Refcounted: memory.NewRefcounted(40), Name: name, Signature: signature, Fn: fn}
}

// Closure is one captured free variable slot: a cell shared between the
// defining frame and every closure created over it.
type Closure struct {
	Value Value
}

// CompiledFunction wraps a bytecode object plus a closure of free
// variables.
type CompiledFunction struct {
	memory.Refcounted
	Name    string
	Params  []string
	Chunk   *bytecode.Chunk
	Free    map[string]*Closure
}

func (f *CompiledFunction) header() *memory.Refcounted { return &f.Refcounted }
func (f *CompiledFunction) TypeOf() *Type              { return CompiledFunctionType }

func NewCompiledFunction(name string, params []string, chunk *bytecode.Chunk, free map[string]*Closure) *CompiledFunction {
	return &CompiledFunction{Refcounted: memory.NewRefcounted(64), Name: name, Params: params, Chunk: chunk, Free: free}
}

// PartialFunction wraps any callable with a sparse array of pre-filled
// positional arguments; used to bind methods to instances (§3) without
// special call syntax: obj.method() becomes (type.method, obj).call().
type PartialFunction struct {
	memory.Refcounted
	Target Value // the underlying callable
	Bound  []Value
}

func (f *PartialFunction) header() *memory.Refcounted { return &f.Refcounted }
func (f *PartialFunction) TypeOf() *Type              { return PartialFunctionType }

func NewPartial(target Value, bound ...Value) *PartialFunction {
	return &PartialFunction{Refcounted: memory.NewRefcounted(40), Target: target, Bound: bound}
}

// Splice combines the partial's pre-filled arguments with a fresh call's
// arguments, pre-filled ones first.
func (f *PartialFunction) Splice(args []Value) []Value {
	out := make([]Value, 0, len(f.Bound)+len(args))
	out = append(out, f.Bound...)
	out = append(out, args...)
	return out
}
