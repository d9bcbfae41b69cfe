package engine

import (
	"fmt"
	"sync"
)

// EntityKey identifies the unit of serialization: one entity in one store.
// Two reconciliations with the same key must never interleave their fetch
// and apply phases.
type EntityKey struct {
	EntityType string
	EntityID   int64
	StoreID    int64
}

// IsZero reports whether the key is unset.
func (k EntityKey) IsZero() bool {
	return k == EntityKey{}
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s:%d@%d", k.EntityType, k.EntityID, k.StoreID)
}

// KeyedLocker hands out one mutex per EntityKey. Entries are reference
// counted and dropped when the last holder unlocks, so the map only holds
// keys that are in use.
//
// Thread-safety: safe for concurrent use.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[EntityKey]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedLocker creates an empty locker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[EntityKey]*keyedLock)}
}

// Lock blocks until key is free and returns the matching unlock function.
func (l *KeyedLocker) Lock(key EntityKey) (unlock func()) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// Held returns the number of keys currently locked or waited on.
func (l *KeyedLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
