package object

import "vellum/internal/memory"

// Set shares the Dict's open-addressing layout and load factors, minus
// values (§4.5); it is implemented as a thin wrapper around a Dict whose
// values are unused placeholders, avoiding a second probing algorithm to
// keep in lockstep with.
type Set struct {
	memory.Refcounted
	d *Dict
}

func (s *Set) header() *memory.Refcounted { return &s.Refcounted }
func (s *Set) TypeOf() *Type              { return SetType }

func NewSet() *Set {
	return &Set{Refcounted: memory.NewRefcounted(64), d: NewDict()}
}

func (s *Set) Len() int { return s.d.Len() }

func (s *Set) Add(v Value, hash uint64, eq func(Value, Value) bool) {
	s.d.Set(v, None, hash, eq)
}

func (s *Set) Has(v Value, hash uint64, eq func(Value, Value) bool) bool {
	_, ok := s.d.Get(v, hash, eq)
	return ok
}

func (s *Set) Remove(v Value, hash uint64, eq func(Value, Value) bool) bool {
	return s.d.Del(v, hash, eq)
}

func (s *Set) Iterate(fn func(v Value)) {
	s.d.Iterate(func(k, _ Value) { fn(k) })
}
