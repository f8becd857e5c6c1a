package alock

import (
	"context"

	"github.com/llxisdsh/pb"
)

// LockGroup provides asynchronous value-carrying locks on arbitrary keys
// (string, int, struct, etc.). It dynamically manages a set of AtomicLocks,
// one per live key.
//
// Features:
//   - Infinite Keys: no need to pre-allocate locks.
//   - Auto-Cleanup: a key's lock is removed from memory once it is unlocked
//     and nobody else holds or awaits it.
//   - Keys start at the zero value of V and keep their value across
//     acquisitions for as long as the key stays referenced.
//
// Usage:
//
//	var group LockGroup[string, int]
//
//	g, err := group.Lock(ctx, "user-123")
//	if err != nil { ... }
//	*g.Value()++
//	g.Unlock()
//
// Implementation Note:
// It uses reference counting to safely delete entries; the count is
// maintained inside the map's per-entry critical sections.
type LockGroup[K comparable, V any] struct {
	_ noCopy
	m pb.MapOf[K, *groupEntry[V]]
}

type groupEntry[V any] struct {
	lock AtomicLock[V]
	ref  int32
}

// Lock acquires the lock for key k, suspending until it is available or ctx
// is cancelled.
func (g *LockGroup[K, V]) Lock(ctx context.Context, k K) (*GroupGuard[K, V], error) {
	e := g.acquireRef(k)
	guard, err := e.lock.Lock().Await(ctx)
	if err != nil {
		g.releaseRef(k)
		return nil, err
	}
	return &GroupGuard[K, V]{group: g, key: k, guard: guard}, nil
}

// TryLock acquires the lock for key k only if it is immediately available.
func (g *LockGroup[K, V]) TryLock(k K) (*GroupGuard[K, V], bool) {
	e := g.acquireRef(k)
	guard, ok := e.lock.TryLock()
	if !ok {
		g.releaseRef(k)
		return nil, false
	}
	return &GroupGuard[K, V]{group: g, key: k, guard: guard}, true
}

func (g *LockGroup[K, V]) acquireRef(k K) *groupEntry[V] {
	var e *groupEntry[V]
	g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *groupEntry[V]]) (*pb.EntryOf[K, *groupEntry[V]], *groupEntry[V], bool) {
			if l != nil {
				e = l.Value
				e.ref++
				return l, e, true
			}
			e = &groupEntry[V]{ref: 1}
			return &pb.EntryOf[K, *groupEntry[V]]{Value: e}, e, false
		},
	)
	return e
}

func (g *LockGroup[K, V]) releaseRef(k K) {
	g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *groupEntry[V]]) (*pb.EntryOf[K, *groupEntry[V]], *groupEntry[V], bool) {
			if l == nil {
				return nil, nil, false
			}
			l.Value.ref--
			if l.Value.ref <= 0 {
				return nil, nil, true
			}
			return l, nil, false
		},
	)
}

// GroupGuard is the proof of exclusive access to one key's value. Unlocking
// it releases the key's lock and drops this holder's reference, which may
// delete the key entirely.
type GroupGuard[K comparable, V any] struct {
	group *LockGroup[K, V]
	key   K
	guard *Guard[V]
}

// Key returns the key this guard holds.
func (g *GroupGuard[K, V]) Key() K {
	return g.key
}

// Value returns a pointer to the key's protected value. The pointer must not
// be retained past Unlock: once the key's last reference drops, the value is
// discarded with the entry.
func (g *GroupGuard[K, V]) Value() *V {
	return g.guard.Value()
}

// Unlock releases the key's lock, wakes its waiters, and drops this holder's
// reference. Unlock of an already-released GroupGuard panics.
func (g *GroupGuard[K, V]) Unlock() {
	g.guard.Unlock()
	g.group.releaseRef(g.key)
}
