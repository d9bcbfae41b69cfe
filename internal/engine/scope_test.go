package engine

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntityKey(t *testing.T) {
	k := EntityKey{EntityType: "product", EntityID: 61413, StoreID: 1}

	assert.Equal(t, "product:61413@1", k.String())
	assert.False(t, k.IsZero())
	assert.True(t, EntityKey{}.IsZero())
	assert.Equal(t, k, Row{EntityType: "product", EntityID: 61413, URLKey: "x", StoreID: 1}.Key())
}

func TestKeyedLocker_SameKeySerializes(t *testing.T) {
	l := NewKeyedLocker()
	key := EntityKey{EntityType: "product", EntityID: 1, StoreID: 1}

	var active, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(key)
			defer unlock()

			n := active.Add(1)
			if n > peak.Load() {
				peak.Store(n)
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
	assert.Zero(t, l.Held(), "released keys are dropped")
}

func TestKeyedLocker_DifferentKeysDoNotBlock(t *testing.T) {
	l := NewKeyedLocker()
	a := EntityKey{EntityType: "product", EntityID: 1, StoreID: 1}
	b := EntityKey{EntityType: "product", EntityID: 1, StoreID: 2}

	unlockA := l.Lock(a)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock(b)
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different store blocked")
	}
	assert.Equal(t, 1, l.Held())
}
