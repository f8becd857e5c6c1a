package alock

import (
	"sync/atomic"
	"time"
	_ "unsafe" // for linkname
)

// noCopy may be added to structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
//
// Note that it must not be embedded, due to the Lock and Unlock methods.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// spinLock is a single-word test-and-set lock with adaptive backoff.
// It guards only short, non-suspending critical sections (a few pointer
// moves), so spinning is cheaper than parking.
type spinLock struct {
	state atomic.Uint32
}

func (l *spinLock) lock() {
	if l.state.CompareAndSwap(0, 1) {
		return
	}
	l.slowLock()
}

func (l *spinLock) slowLock() {
	var spins int
	for {
		if l.state.Load() == 0 && l.state.CompareAndSwap(0, 1) {
			return
		}
		delay(&spins)
	}
}

func (l *spinLock) unlock() {
	l.state.Store(0)
}

func trySpin(spins *int) bool {
	if runtime_canSpin(*spins) {
		*spins++
		runtime_doSpin()
		return true
	}
	return false
}

func delay(spins *int) {
	if trySpin(spins) {
		return
	}
	*spins = 0
	// time.Sleep with non-zero duration (≈Millisecond level) works
	// effectively as backoff under high concurrency.
	// The 500µs duration is derived from Facebook/folly's implementation:
	// https://github.com/facebook/folly/blob/main/folly/synchronization/detail/Sleeper.h
	time.Sleep(500 * time.Microsecond)
}

// nolint:all
//
//go:linkname runtime_canSpin sync.runtime_canSpin
//goland:noinspection ALL
func runtime_canSpin(i int) bool

// nolint:all
//
//go:linkname runtime_doSpin sync.runtime_doSpin
//goland:noinspection ALL
func runtime_doSpin()
