// Package memory implements the allocation tracking and reference-counting
// discipline shared by every heap object in the object model. There is a
// single process-wide Allocator; individual Refcounted values call back
// into it on alloc/free so current and peak byte usage stay accurate
// without a size argument at free time.
package memory

import (
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// pinnedSentinel is the refcount value stamped onto singletons. incref/decref
// on a singleton are no-ops once its count reaches this value.
const pinnedSentinel = ^int64(0) >> 1 // max int64, unreachable via normal incref traffic

// Allocator tracks current and peak bytes allocated across the object
// graph. Every allocation size is recorded at Track time (the equivalent of
// stamping a header word ahead of the user pointer in the source runtime)
// so Release needs no size argument.
type Allocator struct {
	current int64
	peak    int64
	count   int64
}

var Global = &Allocator{}

// Track records a new allocation of n bytes, growing the running total and
// peak watermark.
func (a *Allocator) Track(n int64) {
	cur := atomic.AddInt64(&a.current, n)
	atomic.AddInt64(&a.count, 1)
	for {
		p := atomic.LoadInt64(&a.peak)
		if cur <= p || atomic.CompareAndSwapInt64(&a.peak, p, cur) {
			break
		}
	}
}

// Release records that n bytes were freed.
func (a *Allocator) Release(n int64) {
	atomic.AddInt64(&a.current, -n)
	atomic.AddInt64(&a.count, -1)
}

// Stats is a point-in-time snapshot for diagnostics (the `-vvv` memory
// report).
type Stats struct {
	CurrentBytes int64
	PeakBytes    int64
	LiveObjects  int64
}

func (a *Allocator) Stats() Stats {
	return Stats{
		CurrentBytes: atomic.LoadInt64(&a.current),
		PeakBytes:    atomic.LoadInt64(&a.peak),
		LiveObjects:  atomic.LoadInt64(&a.count),
	}
}

// Report renders Stats using humanize so log lines read "12.3 MB" instead of
// a raw byte count.
func (s Stats) Report() string {
	return "heap: " + humanize.Bytes(uint64(s.CurrentBytes)) +
		" (peak " + humanize.Bytes(uint64(s.PeakBytes)) +
		", " + humanize.Comma(s.LiveObjects) + " live objects)"
}

// Refcounted is embedded by every heap object. It is the object header's
// reference-count field plus the hooks needed to make incref/decref no-ops
// on interned singletons.
type Refcounted struct {
	rc        int64
	singleton bool
	size      int64
}

// NewRefcounted initializes a fresh, non-singleton header and charges size
// bytes to the global allocator.
func NewRefcounted(size int64) Refcounted {
	Global.Track(size)
	return Refcounted{rc: 1, size: size}
}

// Pin marks r as an interned singleton: its count is set to the pinned
// sentinel so future incref/decref calls are no-ops. No allocator charge is
// reversed, since singletons live for the process lifetime.
func (r *Refcounted) Pin() {
	r.singleton = true
	r.rc = pinnedSentinel
}

func (r *Refcounted) IsSingleton() bool { return r.singleton }

// Incref increments the reference count. No-op on a pinned singleton.
func (r *Refcounted) Incref() {
	if r.singleton {
		return
	}
	r.rc++
}

// Decref decrements the reference count and reports whether it reached
// zero (the caller is then responsible for invoking the type's free slot
// and, afterward, calling Free on this header).
func (r *Refcounted) Decref() (zero bool) {
	if r.singleton {
		return false
	}
	r.rc--
	return r.rc == 0
}

// Free releases this header's allocator charge. Must be called exactly
// once, after the owning type's free slot has released all inner
// references.
func (r *Refcounted) Free() {
	if r.singleton {
		return
	}
	Global.Release(r.size)
}

func (r *Refcounted) RefCount() int64 {
	if r.singleton {
		return -1
	}
	return r.rc
}
