package alock

import (
	"context"
)

// LockFuture is one in-flight acquisition of an AtomicLock.
//
// It is a small state machine driven by Poll:
//
//	fresh            — created by Lock, nothing attempted yet
//	pending (waker)  — lost an attempt; its waker sits in the registry
//	completed        — yielded a Guard; further Polls panic
//
// The waker is created once, on the first contended poll, and reused across
// every later suspension of the same future. A pending future holds at most
// one registry entry at any time: Poll re-inserts only after a release's
// drain has removed the entry (the queued flag, maintained under the
// registry guard, decides).
//
// A LockFuture is not safe for concurrent use; it belongs to the one logical
// task performing the acquisition.
type LockFuture[T any] struct {
	lock *AtomicLock[T]
	w    *waker
	done bool
}

// Poll runs one acquisition step and reports whether it completed.
//
// The attempt and, on failure, the registration happen atomically under the
// registry's spin guard. That closes the classic missed-wakeup window: a
// release's drain can no longer slip between a failed attempt and the
// waker's installation, because the drain itself needs the guard.
//
// Poll is cheap to call spuriously: a still-registered future is not
// re-inserted, and a wake that arrives for an already-completed future is
// absorbed by the waker's buffer.
func (f *LockFuture[T]) Poll() (*Guard[T], bool) {
	if f.done {
		panic("alock: Poll of completed LockFuture")
	}
	l := f.lock
	wl := &l.waiters

	wl.mu.lock()
	if l.cell.tryAcquire() {
		wl.mu.unlock()
		// A waker registered by an earlier pending poll may still sit in
		// the registry; it is inert now. The next drain removes it and the
		// buffered signal, if any, goes nowhere.
		f.done = true
		return &Guard[T]{lock: l}, true
	}
	if f.w == nil {
		f.w = newWaker()
	}
	if !f.w.queued {
		f.w.queued = true
		wl.q.PushBack(f.w)
	}
	wl.mu.unlock()
	return nil, false
}

// Done returns the future's wake channel. It is valid once Poll has returned
// pending and stays valid for the future's lifetime.
//
// A receive means a holder released and this waiter was drained — it is a
// hint, not a grant. The caller must Poll again; whichever contender
// re-attempts first wins, and losing simply re-registers.
func (f *LockFuture[T]) Done() <-chan struct{} {
	if f.w == nil {
		panic("alock: Done before a pending Poll")
	}
	return f.w.ch
}

// Await drives the future to completion: poll, suspend on the wake channel,
// re-poll, until the lock is acquired or ctx is cancelled.
//
// Cancellation abandons the acquisition. The registered waker stays behind
// in the registry; waking it later is a guaranteed no-op, and the entry
// itself is swept out by the next release's drain.
func (f *LockFuture[T]) Await(ctx context.Context) (*Guard[T], error) {
	for {
		if g, ok := f.Poll(); ok {
			return g, nil
		}
		select {
		case <-f.w.ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
