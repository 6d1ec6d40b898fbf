// Package object implements the language's uniform object model: the
// header/type-descriptor pair described in the data model, dunder-slot
// dispatch, single inheritance with depth-first MRO, and the built-in type
// catalog (numeric tower, strings, bytes, containers, slices, ranges,
// enumerations, errors, functions, modules).
package object

import (
	"vellum/internal/errors"
	"vellum/internal/memory"
)

// Value is implemented by every heap object in the language. TypeOf never
// returns nil: every value, including a Type itself, carries a descriptor.
type Value interface {
	TypeOf() *Type
}

// Caller lets container/string helpers that need to invoke a user-supplied
// callable (a sort comparator, an iterator's next) call back into the
// interpreter without this package importing the vm package.
type Caller interface {
	Invoke(fn Value, args []Value) (Value, *errors.LangError)
}

// NativeFn is the signature every dunder slot and every native function
// shares: it receives the receiver (or nil for free functions) and the
// argument list (owned references; on a normal return ownership of the
// result transfers to the caller per the refcount API contract), and a
// Caller for slots that must invoke back into user code.
type NativeFn func(c Caller, self Value, args []Value) (Value, *errors.LangError)

// Slots is the fixed table of protocol operations from the data model,
// copied from the primary parent at type-construction time so dispatch
// never needs to walk the MRO at a call site.
type Slots struct {
	New, Init, Free NativeFn

	Str, Repr, Bool, Int, Bytes, Hash NativeFn

	Len, GetItem, SetItem, Iter, Next, GetAttr, SetAttr NativeFn

	Add, Sub, Mul, Div, Mod, Pow NativeFn

	BinOr, BinAnd, BinXor, LShift, RShift NativeFn

	Cmp, Lt, Le, Gt, Ge, Eq, Ne NativeFn

	Pos, Neg, Abs, Sqig NativeFn

	Call NativeFn
}

// Type is the type descriptor: name, parents (single inheritance is
// primary; multiple parents are permitted for mixin-style slot
// inheritance), an attribute dictionary, and the Slots fast-path table.
type Type struct {
	memory.Refcounted
	Name    string
	Parents []*Type
	Attrs   *Dict
	Slots   Slots
}

func (t *Type) TypeOf() *Type { return TypeType }

// NewType builds a type descriptor, copying the primary parent's slot
// table (if any) before applying overrides, and seeding the attribute
// dictionary from attrs. Setting a slot afterward via SetAttr both updates
// the fast-path pointer and records the attribute in the dictionary, so
// later lookups via getattr remain consistent with the fast path.
func NewType(name string, parents []*Type, attrs map[string]Value) *Type {
	t := &Type{
		Refcounted: memory.NewRefcounted(int64(unsafeSizeofType)),
		Name:       name,
		Parents:    parents,
		Attrs:      NewDict(),
	}
	if len(parents) > 0 {
		t.Slots = parents[0].Slots
	}
	for k, v := range attrs {
		t.SetAttr(k, v)
	}
	return t
}

const unsafeSizeofType = 128 // approximate header cost charged to the allocator

// SetAttr records name->value in the attribute dictionary and, if name
// matches a recognized slot, updates the fast-path pointer too.
func (t *Type) SetAttr(name string, v Value) {
	t.Attrs.SetStr(name, v)
	if fn, ok := v.(*NativeFunction); ok {
		assignSlot(&t.Slots, name, fn.Fn)
	}
}

func assignSlot(s *Slots, name string, fn NativeFn) {
	switch name {
	case "new":
		s.New = fn
	case "init":
		s.Init = fn
	case "free":
		s.Free = fn
	case "str":
		s.Str = fn
	case "repr":
		s.Repr = fn
	case "bool":
		s.Bool = fn
	case "int":
		s.Int = fn
	case "bytes":
		s.Bytes = fn
	case "hash":
		s.Hash = fn
	case "len":
		s.Len = fn
	case "getitem":
		s.GetItem = fn
	case "setitem":
		s.SetItem = fn
	case "iter":
		s.Iter = fn
	case "next":
		s.Next = fn
	case "getattr":
		s.GetAttr = fn
	case "setattr":
		s.SetAttr = fn
	case "add":
		s.Add = fn
	case "sub":
		s.Sub = fn
	case "mul":
		s.Mul = fn
	case "div":
		s.Div = fn
	case "mod":
		s.Mod = fn
	case "pow":
		s.Pow = fn
	case "binor":
		s.BinOr = fn
	case "binand":
		s.BinAnd = fn
	case "binxor":
		s.BinXor = fn
	case "lshift":
		s.LShift = fn
	case "rshift":
		s.RShift = fn
	case "cmp":
		s.Cmp = fn
	case "lt":
		s.Lt = fn
	case "le":
		s.Le = fn
	case "gt":
		s.Gt = fn
	case "ge":
		s.Ge = fn
	case "eq":
		s.Eq = fn
	case "ne":
		s.Ne = fn
	case "pos":
		s.Pos = fn
	case "neg":
		s.Neg = fn
	case "abs":
		s.Abs = fn
	case "sqig":
		s.Sqig = fn
	case "call":
		s.Call = fn
	}
}

// MRO returns the depth-first parents traversal used to resolve attribute
// lookups that miss on t itself. It is computed on demand (cheap: the
// class hierarchies in embedded scripts are shallow) rather than cached,
// since only type construction needs the O(1) Slots fast path.
func (t *Type) MRO() []*Type {
	seen := map[*Type]bool{}
	var order []*Type
	var walk func(*Type)
	walk = func(cur *Type) {
		if cur == nil || seen[cur] {
			return
		}
		seen[cur] = true
		order = append(order, cur)
		for _, p := range cur.Parents {
			walk(p)
		}
	}
	for _, p := range t.Parents {
		walk(p)
	}
	return order
}

// Lookup resolves name on t's own attribute dictionary, then its MRO.
func (t *Type) Lookup(name string) (Value, bool) {
	if v, ok := t.Attrs.GetStr(name); ok {
		return v, true
	}
	for _, anc := range t.MRO() {
		if v, ok := anc.Attrs.GetStr(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Incref/Decref dispatch generically over any Value, invoking the type's
// free slot when a refcount reaches zero. Singletons embed a pinned
// memory.Refcounted so this is a no-op for them regardless of kind.
func Incref(v Value) {
	if r, ok := v.(refHolder); ok {
		r.header().Incref()
	}
}

func Decref(c Caller, v Value) *errors.LangError {
	r, ok := v.(refHolder)
	if !ok {
		return nil
	}
	if r.header().Decref() {
		t := v.TypeOf()
		if t != nil && t.Slots.Free != nil {
			if _, err := t.Slots.Free(c, v, nil); err != nil {
				return err
			}
		}
		r.header().Free()
	}
	return nil
}

// refHolder is implemented by every concrete value type via an embedded
// memory.Refcounted accessor, letting Incref/Decref work without a type
// switch over every built-in kind.
type refHolder interface {
	header() *memory.Refcounted
}
