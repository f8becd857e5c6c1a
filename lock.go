package alock

import (
	"github.com/llxisdsh/alock/internal/opt"
)

// AtomicLock is an asynchronous mutual-exclusion lock around a value of
// type T.
//
// Where sync.Mutex would block the calling goroutine, AtomicLock hands back
// a LockFuture: a resumable acquisition that suspends cooperatively (a
// channel wait) and is re-driven when the holder releases. No OS thread is
// ever parked inside this package; the only waiting primitives are a short
// spin guard around the waiter registry and the future's wake channel.
//
// The zero value is an unlocked AtomicLock around the zero value of T.
// Use New to start from a non-zero value.
//
// An AtomicLock must not be copied after first use.
type AtomicLock[T any] struct {
	_    noCopy
	cell cell[T]

	// Keep the registry guard off the cell's cache line: registrars hammer
	// waiters.mu while the holder owns cell.state.
	_ [opt.CacheLineSize_]byte

	waiters wakeList
}

// New creates an AtomicLock protecting value.
func New[T any](value T) *AtomicLock[T] {
	l := &AtomicLock[T]{}
	l.cell.value = value
	return l
}

// TryLock acquires the lock if it is immediately available.
// It never suspends: on contention it returns (nil, false) at once.
func (l *AtomicLock[T]) TryLock() (*Guard[T], bool) {
	if l.cell.tryAcquire() {
		return &Guard[T]{lock: l}, true
	}
	return nil, false
}

// Lock returns a fresh acquisition future. Construction has no side effects:
// nothing is attempted and nothing is registered until the first Poll (or
// Await), so an unused future costs one allocation and nothing else.
func (l *AtomicLock[T]) Lock() *LockFuture[T] {
	return &LockFuture[T]{lock: l}
}

// LockWarn is Lock bracketed by a perfwarn interval. Use it at call sites
// where having to wait at all is suspicious; the interval is purely
// observational and never changes acquisition order or outcome.
func (l *AtomicLock[T]) LockWarn() *LockWarnFuture[T] {
	return &LockWarnFuture[T]{inner: LockFuture[T]{lock: l}}
}

// IntoInner tears the lock down and returns the protected value.
//
// Precondition: no Guard is outstanding and no LockFuture is pending. The
// lock must not be used after IntoInner returns. Calling it while the lock
// is held is a contract violation and panics.
func (l *AtomicLock[T]) IntoInner() T {
	if !l.cell.tryAcquire() {
		panic("alock: IntoInner of a held AtomicLock")
	}
	// The cell stays claimed so that any use-after-teardown surfaces as a
	// failed TryLock or a never-completing future instead of a torn read.
	return l.cell.value
}

// Waiters reports how many acquisitions are currently registered as
// suspended. Diagnostic only; the value is stale the moment it returns.
func (l *AtomicLock[T]) Waiters() int {
	return l.waiters.len()
}
