// Package vm implements the stack interpreter: a fetch/decode/execute
// loop over a bytecode.Chunk, a call-frame stack whose locals are a
// name-keyed dictionary rather than slot arrays (§3), and exception
// unwinding driven by the EXC_ADD/EXC_REM opcode pair (§4.7).
package vm

import (
	"vellum/internal/bytecode"
	"vellum/internal/concurrency"
	"vellum/internal/errors"
	"vellum/internal/object"
)

// handler is one entry of a frame's exception-handler stack: the absolute
// bytecode offset EXC_ADD recorded.
type handler struct {
	pc int
}

// Frame is one call's activation record: its code, instruction pointer,
// local-name dictionary, operand stack, and active exception handlers.
type Frame struct {
	chunk   *bytecode.Chunk
	ip      int
	locals  *object.Dict
	stack   []object.Value
	handlers []handler
	fn      *object.CompiledFunction
}

func newFrame(chunk *bytecode.Chunk, fn *object.CompiledFunction, globals *object.Dict) *Frame {
	return &Frame{chunk: chunk, locals: globals, fn: fn}
}

func (f *Frame) push(v object.Value) { f.stack = append(f.stack, v) }

func (f *Frame) pop() object.Value {
	n := len(f.stack)
	v := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return v
}

func (f *Frame) popN(n int) []object.Value {
	l := len(f.stack)
	out := f.stack[l-n : l]
	f.stack = f.stack[:l-n]
	return out
}

func (f *Frame) top() object.Value { return f.stack[len(f.stack)-1] }

// VM executes compiled chunks. One VM instance corresponds to one script
// program: it owns the module-global dictionary and the registry of
// builtins installed at construction time (§4.11, §6).
type VM struct {
	Globals  *object.Dict
	importer Importer
	maxDepth int

	// pool is the GIL-serialized thread pool backing the script-visible
	// spawn/join surface (§2, §4.8, §5): one process-wide lock, acquired
	// for the duration of every top-level Run and released by any native
	// call that blocks (currently just Thread.join).
	pool *concurrency.Pool
}

// Importer resolves an import path to a loaded module; wired by
// internal/module so this package never imports it directly (module.Loader
// depends on vm.VM to execute the loaded script, so the dependency must run
// the other way).
type Importer func(path string) (*object.Module, *errors.LangError)

func New() *VM {
	v := &VM{Globals: object.NewDict(), maxDepth: 2000, pool: concurrency.NewPool()}
	installBuiltins(v)
	return v
}

func (v *VM) SetImporter(imp Importer) { v.importer = imp }

// Invoke implements object.Caller, letting container/string helpers (a
// sort comparator, a user __iter__) call back into user code without
// internal/object importing this package.
func (v *VM) Invoke(fn object.Value, args []object.Value) (object.Value, *errors.LangError) {
	return v.call(fn, args, 0)
}

// Run executes a top-level chunk to completion, returning the final
// RET value (or None for a bare RET_NONE). It holds the GIL for its full
// duration, the one process-wide lock every spawned script thread
// (internal/concurrency) also serializes against; RunModule does not
// re-acquire it since it only ever runs nested inside an active Run (an
// import statement executed mid-script).
func (v *VM) Run(chunk *bytecode.Chunk) (object.Value, *errors.LangError) {
	v.pool.GIL().Acquire()
	defer v.pool.GIL().Release()
	f := newFrame(chunk, nil, v.Globals)
	return v.runFrame(f, 0)
}

// RunModule executes chunk over a fresh locals dictionary (rather than
// the shared program globals), then packages whatever names it bound into
// an object.Module — used by internal/module to run an imported script
// file in its own namespace while still falling back to the builtin
// globals for name resolution (§4.8).
func (v *VM) RunModule(chunk *bytecode.Chunk, name string) (*object.Module, *errors.LangError) {
	dict := object.NewDict()
	f := newFrame(chunk, nil, dict)
	if _, err := v.runFrame(f, 0); err != nil {
		return nil, err
	}
	m := object.NewModule(name)
	dict.Iterate(func(k, val object.Value) {
		if ks, ok := k.(*object.String); ok {
			m.Set(ks.String(), val)
		}
	})
	return m, nil
}

// call dispatches CALL semantics for every callable kind: native
// functions, compiled functions (fresh frame over their own locals dict,
// chained to globals for fallback), bound partials (splice pre-filled
// args), and type objects (construct via new/init, §3).
func (v *VM) call(callee object.Value, args []object.Value, depth int) (object.Value, *errors.LangError) {
	if depth > v.maxDepth {
		return nil, errors.New(errors.KindInternalError, "call stack depth exceeded")
	}
	switch fn := callee.(type) {
	case *object.NativeFunction:
		return fn.Fn(v, nil, args)
	case *object.CompiledFunction:
		return v.callCompiled(fn, args, depth)
	case *object.PartialFunction:
		return v.call(fn.Target, fn.Splice(args), depth+1)
	case *object.Type:
		return v.construct(fn, args, depth)
	default:
		if t := callee.TypeOf(); t != nil && t.Slots.Call != nil {
			return t.Slots.Call(v, callee, args)
		}
		return nil, errors.New(errors.KindTypeError, "%s is not callable", callee.TypeOf().Name)
	}
}

func (v *VM) callCompiled(fn *object.CompiledFunction, args []object.Value, depth int) (object.Value, *errors.LangError) {
	locals := object.NewDict()
	for i, p := range fn.Params {
		if i < len(args) {
			locals.SetStr(p, args[i])
		} else {
			locals.SetStr(p, object.None)
		}
	}
	f := &Frame{chunk: fn.Chunk, locals: locals, fn: fn}
	ret, err := v.runFrame(f, depth+1)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (v *VM) construct(t *object.Type, args []object.Value, depth int) (object.Value, *errors.LangError) {
	var inst object.Value
	if t.Slots.New != nil {
		r, err := t.Slots.New(v, nil, append([]object.Value{t}, args...))
		if err != nil {
			return nil, err
		}
		inst = r
	} else {
		inst = object.NewInstance(t)
	}
	if t.Slots.Init != nil {
		if _, err := t.Slots.Init(v, inst, args); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// lookup resolves a name against the frame's own locals first, then the
// VM's module globals (so a nested CompiledFunction's body still sees
// top-level bindings without a captured-closure slot, per the
// module-global-closure simplification documented in internal/compiler).
func (v *VM) lookup(f *Frame, name string) (object.Value, bool) {
	if val, ok := f.locals.GetStr(name); ok {
		return val, true
	}
	if f.locals != v.Globals {
		if val, ok := v.Globals.GetStr(name); ok {
			return val, true
		}
	}
	return nil, false
}

// runFrame is the fetch/decode/execute loop for one frame.
func (v *VM) runFrame(f *Frame, depth int) (object.Value, *errors.LangError) {
	code := f.chunk.Code
	for f.ip < len(code) {
		op := bytecode.OpCode(code[f.ip])
		pos := f.ip
		f.ip++
		switch op {
		case bytecode.NOOP:

		case bytecode.CONST:
			idx := f.chunk.ReadU32(f.ip)
			f.ip += 4
			f.push(toValue(f.chunk.Constants[idx]))

		case bytecode.CONST_TRUE:
			f.push(object.True)
		case bytecode.CONST_FALSE:
			f.push(object.False)
		case bytecode.CONST_NONE:
			f.push(object.None)

		case bytecode.POPU:
			f.pop()

		case bytecode.LOAD:
			name := f.nameAt()
			val, ok := v.lookup(f, name)
			if !ok {
				if err := v.raiseInto(f, errors.New(errors.KindKeyError, "undefined name %q", name).AtLoc(f.loc(pos))); err {
					continue
				}
				return nil, errors.New(errors.KindKeyError, "undefined name %q", name)
			}
			f.push(val)

		case bytecode.LOAD_A:
			name := f.nameAt()
			target := f.pop()
			val, lerr := object.GetAttr(target, name)
			if lerr != nil {
				if handled := v.raiseInto(f, lerr.AtLoc(f.loc(pos))); handled {
					continue
				}
				return nil, lerr
			}
			f.push(val)

		case bytecode.STORE:
			name := f.nameAt()
			f.locals.SetStr(name, f.top())

		case bytecode.STORE_A:
			name := f.nameAt()
			val := f.pop()
			target := f.pop()
			if lerr := object.SetAttr(target, name, val); lerr != nil {
				if handled := v.raiseInto(f, lerr.AtLoc(f.loc(pos))); handled {
					continue
				}
				return nil, lerr
			}
			f.push(val)

		case bytecode.CALL:
			n := int(f.chunk.ReadU32(f.ip))
			f.ip += 4
			window := f.popN(n)
			res, lerr := v.call(window[0], window[1:], depth+1)
			if lerr != nil {
				if handled := v.raiseInto(f, lerr.AtLoc(f.loc(pos))); handled {
					continue
				}
				return nil, lerr
			}
			f.push(res)

		case bytecode.GETITEM:
			n := int(f.chunk.ReadU32(f.ip))
			f.ip += 4
			window := f.popN(n)
			res, lerr := getItem(v, window[0], window[1])
			if lerr != nil {
				if handled := v.raiseInto(f, lerr.AtLoc(f.loc(pos))); handled {
					continue
				}
				return nil, lerr
			}
			f.push(res)

		case bytecode.SETITEM:
			n := int(f.chunk.ReadU32(f.ip))
			f.ip += 4
			window := f.popN(n)
			lerr := setItem(v, window[0], window[1], window[2])
			if lerr != nil {
				if handled := v.raiseInto(f, lerr.AtLoc(f.loc(pos))); handled {
					continue
				}
				return nil, lerr
			}
			f.push(window[2])

		case bytecode.TUPLE:
			n := int(f.chunk.ReadU32(f.ip))
			f.ip += 4
			f.push(object.NewTuple(append([]object.Value(nil), f.popN(n)...)))

		case bytecode.LIST:
			n := int(f.chunk.ReadU32(f.ip))
			f.ip += 4
			f.push(object.NewList(append([]object.Value(nil), f.popN(n)...)))

		case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIV, bytecode.MOD, bytecode.POW,
			bytecode.LT, bytecode.LE, bytecode.GT, bytecode.GE, bytecode.EQ, bytecode.NE:
			b := f.pop()
			a := f.pop()
			res, lerr := binOp(op, a, b)
			if lerr != nil {
				if handled := v.raiseInto(f, lerr.AtLoc(f.loc(pos))); handled {
					continue
				}
				return nil, lerr
			}
			f.push(res)

		case bytecode.JMP:
			rel := f.chunk.ReadI32(f.ip)
			f.ip = f.ip + 4 + int(rel)

		case bytecode.JMPT:
			rel := f.chunk.ReadI32(f.ip)
			target := f.ip + 4 + int(rel)
			f.ip += 4
			if object.Truthy(f.top()) {
				f.ip = target
			}

		case bytecode.JMPF:
			rel := f.chunk.ReadI32(f.ip)
			target := f.ip + 4 + int(rel)
			f.ip += 4
			if !object.Truthy(f.top()) {
				f.ip = target
			}

		case bytecode.RET:
			return f.pop(), nil

		case bytecode.RET_NONE:
			return object.None, nil

		case bytecode.EXC_ADD:
			abs := f.chunk.ReadU32(f.ip)
			f.ip += 4
			f.handlers = append(f.handlers, handler{pc: int(abs)})

		case bytecode.EXC_REM:
			if len(f.handlers) > 0 {
				f.handlers = f.handlers[:len(f.handlers)-1]
			}
		}
	}
	return object.None, nil
}

// nameAt reads the constant-pool name index immediately following the
// current opcode and advances ip past it.
func (f *Frame) nameAt() string {
	idx := f.chunk.ReadU32(f.ip)
	f.ip += 4
	if s, ok := f.chunk.Constants[idx].(string); ok {
		return s
	}
	return ""
}

func (f *Frame) loc(ip int) errors.Location {
	tok := f.chunk.TokenAt(ip)
	return errors.Location{File: f.chunk.File, Line: tok.Line, Col: tok.Col, Len: tok.Len, Source: tok.Text}
}

// raiseInto unwinds to the nearest active handler in f, pushing the
// caught value (as an ErrorValue) at the handler PC, per the §4.7
// EXC_ADD/EXC_REM contract. Returns false (propagate further) if f has no
// active handler.
func (v *VM) raiseInto(f *Frame, lerr *errors.LangError) bool {
	if len(f.handlers) == 0 {
		return false
	}
	h := f.handlers[len(f.handlers)-1]
	f.handlers = f.handlers[:len(f.handlers)-1]
	f.stack = f.stack[:0]
	f.push(object.FromLangError(lerr))
	f.ip = h.pc
	return true
}

// toValue adapts a constant-pool entry (stored as a plain Go scalar by
// the compiler, or already an object.Value for nested function literals)
// into a heap Value.
func toValue(c interface{}) object.Value {
	switch x := c.(type) {
	case object.Value:
		return x
	case int64:
		return object.NewInt(x)
	case int:
		return object.NewInt(int64(x))
	case float64:
		return object.NewFloat(x)
	case string:
		return object.NewString(x)
	case bool:
		return object.BoolOf(x)
	case nil:
		return object.None
	default:
		return object.None
	}
}
