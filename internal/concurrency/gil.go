// Package concurrency implements the GIL threading model: one
// process-wide lock serializes script execution across goroutines, and
// native calls that block on I/O release it for the duration of the call
// (§4.9, §4.11).
package concurrency

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

var noCtx = context.Background()

// GIL is the single global interpreter lock. Acquire/Release bracket every
// span of bytecode execution; a thread doing a blocking native call wraps
// it in Release/Acquire instead so other threads can run meanwhile.
type GIL struct {
	sem *semaphore.Weighted
}

func NewGIL() *GIL {
	return &GIL{sem: semaphore.NewWeighted(1)}
}

func (g *GIL) Acquire() { _ = g.sem.Acquire(noCtx, 1) }
func (g *GIL) Release() { g.sem.Release(1) }

// TryAcquire reports whether the lock was free, taking it if so, without
// blocking. Nothing in the tree calls it at present.
func (g *GIL) TryAcquire() bool { return g.sem.TryAcquire(1) }

// Thread is one script-visible thread of execution: its own VM frame
// stack, synchronized against the process GIL. Join waits on the thread's
// own done channel; the pool's WaitGroup serves JoinAll.
type Thread struct {
	ID   int
	gil  *GIL
	wg   *sync.WaitGroup
	done chan struct{}
	err  error
}

type Pool struct {
	gil    *GIL
	wg     sync.WaitGroup
	nextID int
	mu     sync.Mutex
}

func NewPool() *Pool {
	return &Pool{gil: NewGIL()}
}

// GIL returns the pool's single process-wide lock, so a blocking native
// call made by the spawning thread (e.g. join) can release it around the
// wait instead of holding it across the block.
func (p *Pool) GIL() *GIL { return p.gil }

// Spawn runs fn on a new goroutine holding the GIL for its duration,
// releasing it around nothing automatically — fn itself must call
// Release/Acquire around any blocking native operation it performs. fn's
// returned error (if any) is recorded and surfaced to Join's caller.
func (p *Pool) Spawn(fn func(g *GIL) error) *Thread {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.mu.Unlock()

	t := &Thread{ID: id, gil: p.gil, wg: &p.wg, done: make(chan struct{})}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(t.done)
		t.gil.Acquire()
		defer t.gil.Release()
		t.err = fn(t.gil)
	}()
	return t
}

func (t *Thread) Join() { <-t.done }

// Err returns the error fn returned, once Join has observed completion.
func (t *Thread) Err() error { return t.err }

func (p *Pool) JoinAll() { p.wg.Wait() }
