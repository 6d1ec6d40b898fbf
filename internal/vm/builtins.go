package vm

import (
	"fmt"

	"vellum/internal/concurrency"
	"vellum/internal/errors"
	"vellum/internal/memory"
	"vellum/internal/object"
	"vellum/internal/strbuilder"
)

// genericIterator materializes any built-in container's elements once
// into a slice and walks it by cursor; used for containers (Dict, Set,
// Bytes) whose native layout doesn't already expose an iterator type like
// List/Range do.
type genericIterator struct {
	memory.Refcounted
	items  []object.Value
	cursor int
}

var iteratorType = object.NewType("iterator", nil, nil)

func (it *genericIterator) header() *memory.Refcounted { return &it.Refcounted }
func (it *genericIterator) TypeOf() *object.Type        { return iteratorType }

func newGenericIterator(items []object.Value) *genericIterator {
	return &genericIterator{Refcounted: memory.NewRefcounted(24), items: items}
}

func (it *genericIterator) next() (object.Value, bool) {
	if it.cursor >= len(it.items) {
		return nil, false
	}
	v := it.items[it.cursor]
	it.cursor++
	return v, true
}

func native(name, sig string, fn object.NativeFn) *object.NativeFunction {
	return object.NewNativeFunction(name, sig, fn)
}

// threadValue is the script-visible handle spawn() returns: one goroutine
// running under the process GIL, its own gil reference so join() can
// release it around the blocking wait rather than holding it across the
// block (§2, §4.8, §5).
type threadValue struct {
	memory.Refcounted
	t   *concurrency.Thread
	gil *concurrency.GIL
}

var threadType = object.NewType("thread", nil, nil)

func (tv *threadValue) header() *memory.Refcounted { return &tv.Refcounted }
func (tv *threadValue) TypeOf() *object.Type        { return threadType }

func init() {
	threadType.Attrs.SetStr("join", object.NewNativeFunction("join", "join()", threadJoin))
}

// threadJoin reads its receiver off args[0], matching the bound-partial
// calling convention every other built-in method uses (object/methods.go).
func threadJoin(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "join() takes no arguments")
	}
	tv, ok := args[0].(*threadValue)
	if !ok {
		return nil, errors.New(errors.KindTypeError, "join() called on a non-thread receiver")
	}
	tv.gil.Release()
	tv.t.Join()
	tv.gil.Acquire()
	if err := tv.t.Err(); err != nil {
		return nil, errors.Wrap(errors.KindError, err, "spawned thread failed")
	}
	return object.None, nil
}

// builtinSpawn runs fn(args...) on a new goroutine holding the process
// GIL for its duration (internal/concurrency.Pool.Spawn), returning a
// thread handle the script joins explicitly.
func builtinSpawn(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) == 0 {
		return nil, errors.New(errors.KindArgError, "spawn() takes at least one argument (a callable)")
	}
	v, ok := c.(*VM)
	if !ok {
		return nil, errors.New(errors.KindInternalError, "spawn() called outside a VM context")
	}
	fn := args[0]
	callArgs := append([]object.Value(nil), args[1:]...)
	t := v.pool.Spawn(func(g *concurrency.GIL) error {
		_, lerr := v.Invoke(fn, callArgs)
		if lerr != nil {
			return lerr
		}
		return nil
	})
	return &threadValue{Refcounted: memory.NewRefcounted(40), t: t, gil: v.pool.GIL()}, nil
}

func installBuiltins(v *VM) {
	reg := func(name, sig string, fn object.NativeFn) {
		v.Globals.SetStr(name, native(name, sig, fn))
	}

	reg("iter", "iter(x)", builtinIter)
	reg("next", "next(it)", builtinNext)
	reg("slice", "slice(start, stop, step)", builtinSlice)
	reg("range", "range(start, stop, step)", builtinRange)
	reg("dict", "dict()", func(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
		return object.NewDict(), nil
	})
	reg("list", "list(iterable?)", builtinList)
	reg("tuple", "tuple(iterable?)", builtinTuple)
	reg("set", "set(iterable?)", builtinSet)
	reg("complex", "complex(re, imag?)", builtinComplex)
	reg("len", "len(x)", builtinLen)
	reg("type", "type(x)", func(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
		if len(args) != 1 {
			return nil, errors.New(errors.KindArgError, "type() takes exactly one argument")
		}
		return args[0].TypeOf(), nil
	})
	reg("str", "str(x)", func(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
		if len(args) != 1 {
			return nil, errors.New(errors.KindArgError, "str() takes exactly one argument")
		}
		return object.NewString(object.Str(args[0])), nil
	})
	reg("repr", "repr(x)", func(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
		if len(args) != 1 {
			return nil, errors.New(errors.KindArgError, "repr() takes exactly one argument")
		}
		return object.NewString(object.Repr(args[0])), nil
	})
	reg("bool", "bool(x)", func(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
		if len(args) != 1 {
			return nil, errors.New(errors.KindArgError, "bool() takes exactly one argument")
		}
		return object.BoolOf(object.Truthy(args[0])), nil
	})
	reg("print", "print(...args)", builtinPrint)
	reg("format", "format(fmt, ...args)", builtinFormat)
	reg("raise", "raise(err)", builtinRaise)
	reg("assert", "assert(cond, msg?)", builtinAssert)
	reg("assert_eq", "assert_eq(a, b, msg?)", builtinAssertEq)
	reg("import", "import(path)", builtinImport)
	reg("spawn", "spawn(fn, ...args)", builtinSpawn)

	// Each taxonomy kind (§3, §7) is exposed under its own name as a
	// callable type: Error("boom") constructs an *object.ErrorValue with
	// "what" set, via the new/init slots object.wireErrorConstructor wired
	// onto the type at init time.
	for kind, t := range object.ErrorTypes() {
		v.Globals.SetStr(string(kind), t)
	}
}

func builtinIter(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "iter() takes exactly one argument")
	}
	switch x := args[0].(type) {
	case *object.List:
		return object.NewListIterator(x), nil
	case *object.Range:
		return object.NewRangeIterator(x), nil
	case *object.Tuple:
		return newGenericIterator(append([]object.Value(nil), x.Elems()...)), nil
	case *object.Dict:
		var keys []object.Value
		x.Iterate(func(k, _ object.Value) { keys = append(keys, k) })
		return newGenericIterator(keys), nil
	case *object.Set:
		var items []object.Value
		x.Iterate(func(k object.Value) { items = append(items, k) })
		return newGenericIterator(items), nil
	case *object.String:
		var chars []object.Value
		for i := 0; i < x.Len(); i++ {
			if s, ok := x.Index(i); ok {
				chars = append(chars, s)
			}
		}
		return newGenericIterator(chars), nil
	case *object.Bytes:
		var bs []object.Value
		for _, b := range x.Data() {
			bs = append(bs, object.NewInt(int64(b)))
		}
		return newGenericIterator(bs), nil
	case *object.EnumType:
		var ms []object.Value
		for _, m := range x.Members() {
			ms = append(ms, m)
		}
		return newGenericIterator(ms), nil
	}
	if t := args[0].TypeOf(); t != nil && t.Slots.Iter != nil {
		return t.Slots.Iter(c, args[0], nil)
	}
	return nil, errors.New(errors.KindTypeError, "%s is not iterable", args[0].TypeOf().Name)
}

func builtinNext(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "next() takes exactly one argument")
	}
	switch it := args[0].(type) {
	case *object.ListIterator:
		if v, ok := it.Next(); ok {
			return v, nil
		}
	case *object.RangeIterator:
		if v, ok := it.Next(); ok {
			return v, nil
		}
	case *genericIterator:
		if v, ok := it.next(); ok {
			return v, nil
		}
	default:
		if t := args[0].TypeOf(); t != nil && t.Slots.Next != nil {
			return t.Slots.Next(c, args[0], nil)
		}
		return nil, errors.New(errors.KindTypeError, "%s is not an iterator", args[0].TypeOf().Name)
	}
	return nil, errors.New(errors.KindOutOfIter, "iterator exhausted")
}

func builtinSlice(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 3 {
		return nil, errors.New(errors.KindArgError, "slice() takes exactly 3 arguments")
	}
	return object.NewSlice(args[0], args[1], args[2]), nil
}

func builtinRange(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	toI := func(v object.Value) int64 {
		if i, ok := v.(*object.Integer); ok {
			return i.AsBig().Int64()
		}
		return 0
	}
	switch len(args) {
	case 1:
		return object.NewRange(0, toI(args[0]), 1)
	case 2:
		return object.NewRange(toI(args[0]), toI(args[1]), 1)
	case 3:
		return object.NewRange(toI(args[0]), toI(args[1]), toI(args[2]))
	}
	return nil, errors.New(errors.KindArgError, "range() takes 1 to 3 arguments")
}

func materialize(c object.Caller, v object.Value) ([]object.Value, *errors.LangError) {
	it, lerr := builtinIter(c, nil, []object.Value{v})
	if lerr != nil {
		return nil, lerr
	}
	var out []object.Value
	for {
		val, lerr := builtinNext(c, nil, []object.Value{it})
		if lerr != nil {
			if errors.IsOutOfIter(lerr) {
				break
			}
			return nil, lerr
		}
		out = append(out, val)
	}
	return out, nil
}

func builtinList(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) == 0 {
		return object.NewList(nil), nil
	}
	items, lerr := materialize(c, args[0])
	if lerr != nil {
		return nil, lerr
	}
	return object.NewList(items), nil
}

func builtinTuple(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) == 0 {
		return object.NewTuple(nil), nil
	}
	items, lerr := materialize(c, args[0])
	if lerr != nil {
		return nil, lerr
	}
	return object.NewTuple(items), nil
}

func builtinSet(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	s := object.NewSet()
	if len(args) == 0 {
		return s, nil
	}
	items, lerr := materialize(c, args[0])
	if lerr != nil {
		return nil, lerr
	}
	for _, it := range items {
		s.Add(it, object.Hash(it), object.Eq)
	}
	return s, nil
}

// builtinComplex constructs a complex value from its real and (optional,
// default zero) imaginary parts, accepting either numeric kind for each
// (§4.3's promotion ladder tops out at complex, so this is how a script
// reaches the top of the tower without dedicated literal syntax).
func builtinComplex(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) < 1 || len(args) > 2 {
		return nil, errors.New(errors.KindArgError, "complex() takes one or two arguments")
	}
	re, ok := object.ToFloat64(args[0])
	if !ok {
		return nil, errors.New(errors.KindTypeError, "complex() real part must be numeric, got %s", args[0].TypeOf().Name)
	}
	im := 0.0
	if len(args) == 2 {
		im, ok = object.ToFloat64(args[1])
		if !ok {
			return nil, errors.New(errors.KindTypeError, "complex() imaginary part must be numeric, got %s", args[1].TypeOf().Name)
		}
	}
	return object.NewComplex(re, im), nil
}

func builtinLen(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "len() takes exactly one argument")
	}
	switch x := args[0].(type) {
	case *object.String:
		return object.NewInt(int64(x.Len())), nil
	case *object.Bytes:
		return object.NewInt(int64(x.Len())), nil
	case *object.List:
		return object.NewInt(int64(x.Len())), nil
	case *object.Tuple:
		return object.NewInt(int64(x.Len())), nil
	case *object.Dict:
		return object.NewInt(int64(x.Len())), nil
	case *object.Set:
		return object.NewInt(int64(x.Len())), nil
	}
	if t := args[0].TypeOf(); t != nil && t.Slots.Len != nil {
		return t.Slots.Len(c, args[0], nil)
	}
	return nil, errors.New(errors.KindTypeError, "object of type %s has no len()", args[0].TypeOf().Name)
}

func builtinPrint(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	for i, a := range args {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(object.Str(a))
	}
	fmt.Println()
	return object.None, nil
}

func builtinFormat(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) == 0 {
		return object.NewString(""), nil
	}
	fs, ok := args[0].(*object.String)
	if !ok {
		return nil, errors.New(errors.KindTypeError, "format() first argument must be a string")
	}
	rest := make([]interface{}, len(args)-1)
	for i, a := range args[1:] {
		rest[i] = a
	}
	return object.NewString(strbuilder.Format(fs.String(), rest...)), nil
}

func builtinRaise(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "raise() takes exactly one argument")
	}
	if ev, ok := args[0].(*object.ErrorValue); ok {
		return nil, ev.ToLangError()
	}
	return nil, errors.New(errors.KindError, "%s", object.Str(args[0]))
}

func builtinAssert(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) == 0 {
		return nil, errors.New(errors.KindArgError, "assert() takes at least one argument")
	}
	if object.Truthy(args[0]) {
		return object.None, nil
	}
	msg := "assertion failed"
	if len(args) > 1 {
		msg = object.Str(args[1])
	}
	return nil, errors.New(errors.KindError, "%s", msg)
}

func builtinAssertEq(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) < 2 {
		return nil, errors.New(errors.KindArgError, "assert_eq() takes at least two arguments")
	}
	if object.Eq(args[0], args[1]) {
		return object.None, nil
	}
	msg := fmt.Sprintf("assert_eq failed: %s != %s", object.Repr(args[0]), object.Repr(args[1]))
	if len(args) > 2 {
		msg = object.Str(args[2])
	}
	return nil, errors.New(errors.KindError, "%s", msg)
}

func builtinImport(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	vmc, ok := c.(*VM)
	if !ok || vmc.importer == nil {
		return nil, errors.New(errors.KindImportError, "module loading is not configured")
	}
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "import() takes exactly one argument")
	}
	path, ok := args[0].(*object.String)
	if !ok {
		return nil, errors.New(errors.KindArgError, "import() path must be a string")
	}
	return vmc.importer(path.String())
}
