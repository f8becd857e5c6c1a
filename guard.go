package alock

import (
	"fmt"
)

// Guard is the proof of exclusive access to an AtomicLock's value. At most
// one Guard per lock is live at any instant.
//
// A Guard is owned by the task that acquired it and is not safe for
// concurrent use. Dropping a Guard without calling Unlock leaks the lock.
type Guard[T any] struct {
	lock     *AtomicLock[T]
	released bool
}

// Value returns a pointer to the protected value. The pointer must not be
// retained past Unlock.
func (g *Guard[T]) Value() *T {
	if g.released {
		panic("alock: Value of released Guard")
	}
	return &g.lock.cell.value
}

// Owner returns the AtomicLock this Guard was acquired from.
func (g *Guard[T]) Owner() *AtomicLock[T] {
	return g.lock
}

// Unlock releases the lock. The teardown is two-phase and the order is
// load-bearing: phase 1 frees the cell, phase 2 drains the waiter registry
// and fires every waker. Releasing first guarantees that a waiter woken by
// this drain observes the cell as available on its retry (unless another
// contender raced it there, which is a fair loss, not a lost wakeup).
//
// Unlock of an already-released Guard panics.
func (g *Guard[T]) Unlock() {
	if g.released {
		panic("alock: Unlock of released Guard")
	}
	g.released = true
	g.lock.cell.release()
	g.lock.waiters.drainWake()
}

// String formats the protected value. On a released Guard it reports the
// state instead of touching the value.
func (g *Guard[T]) String() string {
	if g.released {
		return "alock.Guard(released)"
	}
	return fmt.Sprintf("%v", g.lock.cell.value)
}
