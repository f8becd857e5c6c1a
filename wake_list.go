package alock

import (
	"github.com/gammazero/deque"
)

// waker is the resumption token for one suspended acquisition. It is created
// at most once per LockFuture, on the first contended poll, and reused across
// repeated suspensions of that future.
//
// The channel has capacity 1 and is signalled with a non-blocking send, so
// wake is idempotent: waking a waker whose future already completed, or whose
// owner abandoned the wait, is a no-op. It never blocks the releaser.
type waker struct {
	ch chan struct{}

	// queued reports whether this waker currently sits in a wakeList.
	// Guarded by the owning wakeList's spin lock.
	queued bool
}

func newWaker() *waker {
	return &waker{ch: make(chan struct{}, 1)}
}

// wake signals the owning future to re-poll. Every signal is a hint: the
// woken future must re-attempt acquisition, it must not assume availability.
func (w *waker) wake() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// wakeList is the waiter registry: the set of wakers for currently-suspended
// acquisitions, in arrival order.
//
// The spin lock is held only for O(len) non-suspending work — a push, or the
// drain in drainWake. It is never held across a suspension point. The one
// exception to "never touch the cell under the guard" is LockFuture.Poll,
// which runs the cell's single-CAS tryAcquire inside the critical section to
// make attempt+register atomic with respect to a concurrent drain (otherwise
// a release draining between a failed attempt and registration could strand
// the waiter forever).
type wakeList struct {
	mu spinLock
	q  deque.Deque[*waker]
}

// drainWake removes every registered waker and fires it. Called by Guard
// teardown strictly after the cell has been released, so a woken waiter's
// retry can succeed.
func (wl *wakeList) drainWake() {
	wl.mu.lock()
	for wl.q.Len() > 0 {
		w := wl.q.PopFront()
		w.queued = false
		w.wake()
	}
	wl.mu.unlock()
}

func (wl *wakeList) len() int {
	wl.mu.lock()
	n := wl.q.Len()
	wl.mu.unlock()
	return n
}
