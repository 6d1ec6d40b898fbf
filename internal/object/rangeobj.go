package object

import (
	"vellum/internal/errors"
	"vellum/internal/memory"
)

// Range is a triple of integers (start, stop, step) producing a lazy
// integer iterator; step must be non-zero; iteration stops when the sign
// of (cur - stop) matches the sign of step (§3).
type Range struct {
	memory.Refcounted
	Start, Stop, Step int64
}

func (r *Range) header() *memory.Refcounted { return &r.Refcounted }
func (r *Range) TypeOf() *Type              { return RangeType }

func NewRange(start, stop, step int64) (*Range, *errors.LangError) {
	if step == 0 {
		return nil, errors.New(errors.KindArgError, "range step cannot be zero")
	}
	return &Range{Refcounted: memory.NewRefcounted(32), Start: start, Stop: stop, Step: step}, nil
}

func sign(n int64) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// RangeIterator walks a Range lazily, never materializing the sequence.
type RangeIterator struct {
	memory.Refcounted
	r   *Range
	cur int64
}

func (it *RangeIterator) header() *memory.Refcounted { return &it.Refcounted }
func (it *RangeIterator) TypeOf() *Type              { return RangeIteratorType }

func NewRangeIterator(r *Range) *RangeIterator {
	return &RangeIterator{Refcounted: memory.NewRefcounted(24), r: r, cur: r.Start}
}

func (it *RangeIterator) Next() (*Integer, bool) {
	// Stop once cur has reached or passed stop in the step's direction: the
	// sign of (cur-stop) is zero or matches the step's sign. Spot-checked
	// against the range(3) -> 0,1,2 end-to-end scenario (§8).
	diff := sign(it.cur - it.r.Stop)
	if diff == 0 || diff == sign(it.r.Step) {
		return nil, false
	}
	v := it.cur
	it.cur += it.r.Step
	return NewInt(v), true
}
