package lock

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestKeyed_SerializesSameKey(t *testing.T) {
	k := NewKeyed()
	key := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = k.Do(key, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("expected 100 serialized increments, got %d", counter)
	}
}

func TestKeyed_IndependentKeys(t *testing.T) {
	k := NewKeyed()
	a, b := uuid.New(), uuid.New()

	k.Lock(a)
	// b must not be blocked by a
	done := make(chan struct{})
	go func() {
		k.Lock(b)
		k.Unlock(b)
		close(done)
	}()
	<-done
	k.Unlock(a)
}

func TestKeyed_CleansUpIdleEntries(t *testing.T) {
	k := NewKeyed()
	key := uuid.New()

	k.Lock(key)
	k.Unlock(key)

	k.mu.Lock()
	n := len(k.entries)
	k.mu.Unlock()
	if n != 0 {
		t.Errorf("expected idle entries to be removed, found %d", n)
	}
}

func TestKeyed_UnlockUnheldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on unlock of unheld key")
		}
	}()
	NewKeyed().Unlock(uuid.New())
}

func TestKeyed_DoPropagatesError(t *testing.T) {
	k := NewKeyed()
	want := errSentinel
	if got := k.Do(uuid.New(), func() error { return want }); got != want {
		t.Errorf("expected sentinel error, got %v", got)
	}
}

var errSentinel = &sentinelError{}

type sentinelError struct{}

func (*sentinelError) Error() string { return "sentinel" }
