package alock

import (
	"context"
	"testing"
	"time"
)

func TestLockFuture_Lazy(t *testing.T) {
	l := New(0)

	// Constructing a future does nothing: no attempt, no registration.
	f := l.Lock()
	if n := l.Waiters(); n != 0 {
		t.Fatalf("Waiters = %d after constructing a future", n)
	}
	g, ok := l.TryLock()
	if !ok {
		t.Fatal("an unpolled future claimed the lock")
	}
	g.Unlock()

	// First poll of the idle lock completes immediately.
	g2, ok := f.Poll()
	if !ok {
		t.Fatal("Poll pending on an idle lock")
	}
	g2.Unlock()
}

func TestLockFuture_SingleRegistration(t *testing.T) {
	l := New(0)
	g, _ := l.TryLock()

	// However often a still-contended future is polled, it owns exactly
	// one registry entry.
	f := l.Lock()
	for range 5 {
		if _, ok := f.Poll(); ok {
			t.Fatal("Poll succeeded while the lock is held")
		}
	}
	if n := l.Waiters(); n != 1 {
		t.Errorf("Waiters = %d after repeated polls, want 1", n)
	}

	g.Unlock()
	g2, ok := f.Poll()
	if !ok {
		t.Fatal("Poll pending after release")
	}
	g2.Unlock()
}

func TestLockFuture_WakerReuse(t *testing.T) {
	l := New(0)
	g, _ := l.TryLock()

	f := l.Lock()
	f.Poll()
	w := f.w

	// Simulate losing the race: drain wakes the future, another contender
	// snatches the lock, the future re-polls and re-suspends.
	g.Unlock()
	g2, _ := l.TryLock() // the thief
	if _, ok := f.Poll(); ok {
		t.Fatal("Poll succeeded although the thief holds the lock")
	}

	if f.w != w {
		t.Error("re-suspension created a second waker")
	}
	if n := l.Waiters(); n != 1 {
		t.Errorf("Waiters = %d after re-suspension, want 1", n)
	}

	g2.Unlock()
	g3, ok := f.Poll()
	if !ok {
		t.Fatal("Poll pending after the thief released")
	}
	g3.Unlock()
}

func TestLockFuture_ReleaseBeforeWake(t *testing.T) {
	// Exactly one releaser, exactly one waiter: the woken waiter must
	// observe the cell as available on its retry.
	l := New(0)
	g, _ := l.TryLock()

	f := l.Lock()
	if _, ok := f.Poll(); ok {
		t.Fatal("Poll succeeded while held")
	}

	g.Unlock()

	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("release did not wake the registered waiter")
	}

	g2, ok := f.Poll()
	if !ok {
		t.Fatal("woken waiter lost an uncontended retry")
	}
	g2.Unlock()
}

func TestLockFuture_SpuriousWake(t *testing.T) {
	l := New(0)
	g, _ := l.TryLock()

	f := l.Lock()
	f.Poll()

	// Fire the waker by hand, twice. Every wake is a hint; the retry must
	// simply fail and stay registered.
	f.w.wake()
	f.w.wake()
	<-f.Done()
	if _, ok := f.Poll(); ok {
		t.Fatal("spuriously woken future acquired a held lock")
	}
	if n := l.Waiters(); n != 1 {
		t.Errorf("Waiters = %d after spurious wake, want 1", n)
	}

	g.Unlock()
	g2, err := f.Await(context.Background())
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	g2.Unlock()
}

func TestLockFuture_WakeAfterCompletion(t *testing.T) {
	// White box: complete a future while its waker is still queued (a
	// spurious poll winning the race against the releaser's drain). The
	// stale entry must be inert when the drain finally fires it.
	l := New(0)
	g, _ := l.TryLock()

	f := l.Lock()
	f.Poll()

	l.cell.release() // the releaser's phase 1...
	g2, ok := f.Poll()
	if !ok {
		t.Fatal("Poll pending on a free cell")
	}
	if n := l.Waiters(); n != 1 {
		t.Fatalf("Waiters = %d, completed future should still be queued", n)
	}
	l.waiters.drainWake() // ...and its phase 2, after the spurious win

	if n := l.Waiters(); n != 0 {
		t.Errorf("Waiters = %d, stale entry not drained", n)
	}
	g2.Unlock()
	_ = g
}

func TestLockFuture_AwaitCancel(t *testing.T) {
	l := New(0)
	g, _ := l.TryLock()

	ctx, cancel := context.WithCancel(context.Background())
	f := l.Lock()

	errc := make(chan error, 1)
	go func() {
		_, err := f.Await(ctx)
		errc <- err
	}()

	deadline := time.Now().Add(time.Second)
	for l.Waiters() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("awaiting future never registered")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	if err := <-errc; err != context.Canceled {
		t.Fatalf("Await after cancel = %v, want context.Canceled", err)
	}

	// The abandoned waker is still registered; waking it must be a no-op
	// and the drain must sweep it out.
	g.Unlock()
	if n := l.Waiters(); n != 0 {
		t.Errorf("Waiters = %d after sweeping drain, want 0", n)
	}

	g2, ok := l.TryLock()
	if !ok {
		t.Fatal("lock unusable after an abandoned acquisition")
	}
	g2.Unlock()
}

func TestLockFuture_PollAfterCompletion(t *testing.T) {
	l := New(0)
	f := l.Lock()
	g, _ := f.Poll()
	g.Unlock()

	defer func() {
		if recover() == nil {
			t.Error("Poll of completed future did not panic")
		}
	}()
	f.Poll()
}

func TestLockFuture_DoneBeforePoll(t *testing.T) {
	l := New(0)
	f := l.Lock()

	defer func() {
		if recover() == nil {
			t.Error("Done before a pending Poll did not panic")
		}
	}()
	f.Done()
}
