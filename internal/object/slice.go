package object

import (
	"vellum/internal/errors"
	"vellum/internal/memory"
)

// Slice is the triple (start, stop, step); any component may be none,
// resolved against a target length at use (§3).
type Slice struct {
	memory.Refcounted
	Start, Stop, Step Value // each either *Integer or None
}

func (s *Slice) header() *memory.Refcounted { return &s.Refcounted }
func (s *Slice) TypeOf() *Type              { return SliceType }

func NewSlice(start, stop, step Value) *Slice {
	return &Slice{Refcounted: memory.NewRefcounted(40), Start: start, Stop: stop, Step: step}
}

// Resolved is a slice normalized against a concrete target length.
type Resolved struct {
	Start, Stop, Step int
}

func intOrDefault(v Value, def int) int {
	if i, ok := v.(*Integer); ok {
		return int(i.AsBig().Int64())
	}
	return def
}

func wrapIndex(i, length int) int {
	if i < 0 && length > 0 {
		i = (i%length + length) % length
	}
	return i
}

// Resolve implements the §3 resolution algorithm: normalize step; default
// start to 0 (positive step) or len-1 (negative); default stop to len or
// -1; wrap negatives modulo len; reject step == 0.
func (s *Slice) Resolve(length int) (Resolved, *errors.LangError) {
	step := intOrDefault(s.Step, 1)
	if step == 0 {
		return Resolved{}, errors.New(errors.KindArgError, "slice step cannot be zero")
	}

	var start, stop int
	if step > 0 {
		start = intOrDefault(s.Start, 0)
		stop = intOrDefault(s.Stop, length)
	} else {
		start = intOrDefault(s.Start, length-1)
		stop = intOrDefault(s.Stop, -1)
	}

	if _, isNone := s.Start.(*NoneType); !isNone {
		start = wrapIndex(start, length)
	}
	if _, isNone := s.Stop.(*NoneType); !isNone {
		stop = wrapIndex(stop, length)
	}

	return Resolved{Start: start, Stop: stop, Step: step}, nil
}
