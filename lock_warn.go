package alock

import (
	"context"
)

// lockWarnOp tags every perfwarn event emitted by LockWarn futures.
const lockWarnOp = "AtomicLock.Lock"

// LockWarnFuture decorates a LockFuture with a perfwarn bracket: the
// interval opens on the first poll and closes exactly once when the
// acquisition completes or is abandoned. The inner future's control flow is
// untouched — polling, registration and wakeups behave exactly as they
// would behind a plain Lock.
type LockWarnFuture[T any] struct {
	inner    LockFuture[T]
	interval *perfInterval
}

// Poll advances the underlying acquisition by one step.
func (f *LockWarnFuture[T]) Poll() (*Guard[T], bool) {
	if f.interval == nil {
		f.interval = beginPerfWarn(lockWarnOp)
	}
	g, ok := f.inner.Poll()
	if ok {
		f.interval.end("acquired")
	}
	return g, ok
}

// Done exposes the underlying future's wake channel.
func (f *LockWarnFuture[T]) Done() <-chan struct{} {
	return f.inner.Done()
}

// Await drives the acquisition to completion like LockFuture.Await. On
// cancellation the interval is closed with the "canceled" outcome.
func (f *LockWarnFuture[T]) Await(ctx context.Context) (*Guard[T], error) {
	for {
		if g, ok := f.Poll(); ok {
			return g, nil
		}
		select {
		case <-f.inner.w.ch:
		case <-ctx.Done():
			f.interval.end("canceled")
			return nil, ctx.Err()
		}
	}
}
