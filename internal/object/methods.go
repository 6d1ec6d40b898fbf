package object

import "vellum/internal/errors"

// This file wires the §4.5 container method surface (List.push/pop,
// Dict.get/set/del, Set.add/has/remove) onto each type's attribute
// dictionary, so `a.push(4)` resolves through the ordinary GetAttr/LOAD_A
// path rather than needing special-cased bytecode. Indexing (`a[i]`,
// `d[k]`) and `len`/`iter` stay wired directly in vm/ops.go and
// vm/builtins.go; this file only covers the named methods the square-
// bracket and builtin-function forms don't already reach.
//
// These go straight into each type's Attrs dict rather than through
// Type.SetAttr: SetAttr also mirrors a handful of reserved names (add,
// sub, get/setitem, ...) onto the arithmetic/dunder Slots table, and
// Set.add would otherwise hijack Set's "+" operator slot.
//
// GetAttr wraps a callable attribute lookup as NewPartial(val, v) (§4.2),
// and CALL's partial-function case splices the bound receiver in as
// args[0] rather than passing it through the self parameter (that's
// reserved for direct Slots.* dispatch) — so every method below reads its
// receiver off args[0] and treats args[1:] as the call's own arguments.
func init() {
	ListType.Attrs.SetStr("push", NewNativeFunction("push", "push(x)", listPush))
	ListType.Attrs.SetStr("pop", NewNativeFunction("pop", "pop()", listPop))
	ListType.Attrs.SetStr("get", NewNativeFunction("get", "get(i, default?)", listGet))

	DictType.Attrs.SetStr("get", NewNativeFunction("get", "get(key, default?)", dictGet))
	DictType.Attrs.SetStr("set", NewNativeFunction("set", "set(key, val)", dictSet))
	DictType.Attrs.SetStr("del", NewNativeFunction("del", "del(key)", dictDel))
	DictType.Attrs.SetStr("keys", NewNativeFunction("keys", "keys()", dictKeys))
	DictType.Attrs.SetStr("values", NewNativeFunction("values", "values()", dictValues))

	SetType.Attrs.SetStr("add", NewNativeFunction("add", "add(x)", setAdd))
	SetType.Attrs.SetStr("has", NewNativeFunction("has", "has(x)", setHas))
	SetType.Attrs.SetStr("remove", NewNativeFunction("remove", "remove(x)", setRemove))
}

func asList(v Value, method string) (*List, *errors.LangError) {
	l, ok := v.(*List)
	if !ok {
		return nil, errors.New(errors.KindTypeError, "%s() called on non-list receiver", method)
	}
	return l, nil
}

func listPush(c Caller, self Value, args []Value) (Value, *errors.LangError) {
	if len(args) != 2 {
		return nil, errors.New(errors.KindArgError, "push() takes exactly one argument")
	}
	l, lerr := asList(args[0], "push")
	if lerr != nil {
		return nil, lerr
	}
	l.Push(args[1])
	return None, nil
}

func listPop(c Caller, self Value, args []Value) (Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "pop() takes no arguments")
	}
	l, lerr := asList(args[0], "pop")
	if lerr != nil {
		return nil, lerr
	}
	v, ok := l.Pop()
	if !ok {
		return nil, errors.New(errors.KindOutOfIter, "pop from empty list")
	}
	return v, nil
}

func listGet(c Caller, self Value, args []Value) (Value, *errors.LangError) {
	if len(args) < 2 || len(args) > 3 {
		return nil, errors.New(errors.KindArgError, "get() takes one or two arguments")
	}
	l, lerr := asList(args[0], "get")
	if lerr != nil {
		return nil, lerr
	}
	i, ok := args[1].(*Integer)
	if !ok {
		return nil, errors.New(errors.KindTypeError, "get() index must be an int, got %s", args[1].TypeOf().Name)
	}
	idx := int(i.AsBig().Int64())
	if idx < 0 {
		idx += l.Len()
	}
	if v, ok := l.Get(idx); ok {
		return v, nil
	}
	if len(args) == 3 {
		return args[2], nil
	}
	return None, nil
}

func asDict(v Value, method string) (*Dict, *errors.LangError) {
	d, ok := v.(*Dict)
	if !ok {
		return nil, errors.New(errors.KindTypeError, "%s() called on non-dict receiver", method)
	}
	return d, nil
}

func dictGet(c Caller, self Value, args []Value) (Value, *errors.LangError) {
	if len(args) < 2 || len(args) > 3 {
		return nil, errors.New(errors.KindArgError, "get() takes one or two arguments")
	}
	d, lerr := asDict(args[0], "get")
	if lerr != nil {
		return nil, lerr
	}
	key := args[1]
	if v, ok := d.Get(key, Hash(key), Eq); ok {
		return v, nil
	}
	if len(args) == 3 {
		return args[2], nil
	}
	return None, nil
}

func dictSet(c Caller, self Value, args []Value) (Value, *errors.LangError) {
	if len(args) != 3 {
		return nil, errors.New(errors.KindArgError, "set() takes exactly two arguments")
	}
	d, lerr := asDict(args[0], "set")
	if lerr != nil {
		return nil, lerr
	}
	key := args[1]
	d.Set(key, args[2], Hash(key), Eq)
	return None, nil
}

func dictDel(c Caller, self Value, args []Value) (Value, *errors.LangError) {
	if len(args) != 2 {
		return nil, errors.New(errors.KindArgError, "del() takes exactly one argument")
	}
	d, lerr := asDict(args[0], "del")
	if lerr != nil {
		return nil, lerr
	}
	key := args[1]
	if !d.Del(key, Hash(key), Eq) {
		return nil, errors.New(errors.KindKeyError, "key %s not found", Repr(key))
	}
	return None, nil
}

func dictKeys(c Caller, self Value, args []Value) (Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "keys() takes no arguments")
	}
	d, lerr := asDict(args[0], "keys")
	if lerr != nil {
		return nil, lerr
	}
	var keys []Value
	d.Iterate(func(k, _ Value) { keys = append(keys, k) })
	return NewList(keys), nil
}

func dictValues(c Caller, self Value, args []Value) (Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "values() takes no arguments")
	}
	d, lerr := asDict(args[0], "values")
	if lerr != nil {
		return nil, lerr
	}
	var vals []Value
	d.Iterate(func(_, v Value) { vals = append(vals, v) })
	return NewList(vals), nil
}

func asSet(v Value, method string) (*Set, *errors.LangError) {
	s, ok := v.(*Set)
	if !ok {
		return nil, errors.New(errors.KindTypeError, "%s() called on non-set receiver", method)
	}
	return s, nil
}

func setAdd(c Caller, self Value, args []Value) (Value, *errors.LangError) {
	if len(args) != 2 {
		return nil, errors.New(errors.KindArgError, "add() takes exactly one argument")
	}
	s, lerr := asSet(args[0], "add")
	if lerr != nil {
		return nil, lerr
	}
	v := args[1]
	s.Add(v, Hash(v), Eq)
	return None, nil
}

func setHas(c Caller, self Value, args []Value) (Value, *errors.LangError) {
	if len(args) != 2 {
		return nil, errors.New(errors.KindArgError, "has() takes exactly one argument")
	}
	s, lerr := asSet(args[0], "has")
	if lerr != nil {
		return nil, lerr
	}
	v := args[1]
	return BoolOf(s.Has(v, Hash(v), Eq)), nil
}

func setRemove(c Caller, self Value, args []Value) (Value, *errors.LangError) {
	if len(args) != 2 {
		return nil, errors.New(errors.KindArgError, "remove() takes exactly one argument")
	}
	s, lerr := asSet(args[0], "remove")
	if lerr != nil {
		return nil, lerr
	}
	v := args[1]
	if !s.Remove(v, Hash(v), Eq) {
		return nil, errors.New(errors.KindKeyError, "value %s not found", Repr(v))
	}
	return None, nil
}
