package object

import "vellum/internal/memory"

// List is a mutable, amortized-O(1)-append sequence of owned references.
// Growth factor yields capacity = 1.25*n + 8 (§3).
type List struct {
	memory.Refcounted
	elems []Value
}

func (l *List) header() *memory.Refcounted { return &l.Refcounted }
func (l *List) TypeOf() *Type              { return ListType }

func NewList(elems []Value) *List {
	return &List{Refcounted: memory.NewRefcounted(int64(24 + 8*len(elems))), elems: elems}
}

func (l *List) Len() int       { return len(l.elems) }
func (l *List) Elems() []Value { return l.elems }

func growCap(n int) int {
	return int(1.25*float64(n)) + 8
}

// Push appends x, growing the backing array per the §3 growth factor when
// capacity is exhausted.
func (l *List) Push(x Value) {
	if len(l.elems) == cap(l.elems) {
		nc := growCap(len(l.elems))
		grown := make([]Value, len(l.elems), nc)
		copy(grown, l.elems)
		l.elems = grown
	}
	l.elems = append(l.elems, x)
}

// Pop removes and returns the last element, transferring its owned
// reference back to the caller.
func (l *List) Pop() (Value, bool) {
	n := len(l.elems)
	if n == 0 {
		return nil, false
	}
	v := l.elems[n-1]
	l.elems = l.elems[:n-1]
	return v, true
}

func (l *List) Get(i int) (Value, bool) {
	if i < 0 || i >= len(l.elems) {
		return nil, false
	}
	return l.elems[i], true
}

func (l *List) Set(i int, v Value) bool {
	if i < 0 || i >= len(l.elems) {
		return false
	}
	l.elems[i] = v
	return true
}

// Iterator holds a borrowed reference to the list and a cursor. Mutation
// during iteration is permitted; an index beyond the current length raises
// OutOfIterError rather than silently stopping on some other condition
// (§4.5).
type ListIterator struct {
	memory.Refcounted
	list   *List
	cursor int
}

func (it *ListIterator) header() *memory.Refcounted { return &it.Refcounted }
func (it *ListIterator) TypeOf() *Type              { return ListIteratorType }

func NewListIterator(l *List) *ListIterator {
	return &ListIterator{Refcounted: memory.NewRefcounted(24), list: l}
}

func (it *ListIterator) Next() (Value, bool) {
	if it.cursor >= len(it.list.elems) {
		return nil, false
	}
	v := it.list.elems[it.cursor]
	it.cursor++
	return v, true
}
