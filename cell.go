package alock

import (
	"sync/atomic"
)

// cell is the exclusive cell at the bottom of AtomicLock: a value guarded by
// a single CAS word. tryAcquire is O(1), never blocks and never allocates;
// release is a single atomic store, so from the point of view of other
// threads the hand-off is instantaneous.
//
// The cell makes no fairness promises among contenders. Everything above it
// (registration, wakeups) lives in AtomicLock and wakeList.
type cell[T any] struct {
	state atomic.Uint32
	value T
}

const cellHeld = 1

// tryAcquire claims the cell if it is free. The CAS acquire pairs with the
// release store in release, so the winner observes all writes made under the
// previous holder.
func (c *cell[T]) tryAcquire() bool {
	return c.state.CompareAndSwap(0, cellHeld)
}

// release frees the cell. Must only be called by the current holder.
func (c *cell[T]) release() {
	c.state.Store(0)
}

func (c *cell[T]) held() bool {
	return c.state.Load() != 0
}
