package object

import "vellum/internal/memory"

// Tuple is an immutable, fixed-length sequence of owned references,
// allocated as one contiguous block including the element array (§3).
type Tuple struct {
	memory.Refcounted
	elems []Value
}

func (t *Tuple) header() *memory.Refcounted { return &t.Refcounted }
func (t *Tuple) TypeOf() *Type              { return TupleType }
func (t *Tuple) Len() int                   { return len(t.elems) }
func (t *Tuple) Elems() []Value             { return t.elems }

// NewTuple takes ownership of elems (a new reference per element, per the
// container-adopts-a-new-reference rule in §4.1).
func NewTuple(elems []Value) *Tuple {
	return &Tuple{Refcounted: memory.NewRefcounted(int64(24 + 8*len(elems))), elems: elems}
}

// Get returns the element at i, a borrowed reference. |i| > len(T) raises
// KeyError per the testable property in §8; a negative i is not an
// automatic wraparound here (that is Slice's job) — direct tuple indexing
// is the raw, unwrapped form used by GETITEM with an already-resolved
// index.
func (t *Tuple) Get(i int) (Value, bool) {
	if i < 0 || i >= len(t.elems) {
		return nil, false
	}
	return t.elems[i], true
}

// TupleBuilder assembles a tuple from successive Push calls, for native
// functions that return fixed-shape results; it does not parse a format
// string.
type TupleBuilder struct {
	elems []Value
}

func NewTupleBuilder() *TupleBuilder { return &TupleBuilder{} }

func (b *TupleBuilder) Push(v Value) *TupleBuilder {
	b.elems = append(b.elems, v)
	return b
}

func (b *TupleBuilder) Build() *Tuple { return NewTuple(b.elems) }
