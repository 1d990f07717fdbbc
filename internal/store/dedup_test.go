package store

import (
	"fmt"
	"testing"
)

func TestNewDedupStore_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("NewDedupStore(%d, 0.001) did not panic", size)
				}
			}()
			NewDedupStore(size, 0.001)
		})
	}
}

func TestDedupStore_Basic(t *testing.T) {
	store := NewDedupStore(100, 0.001)

	if store.Has("artist|song1") {
		t.Error("Empty store should not have any keys")
	}

	if store.Size() != 0 {
		t.Errorf("Empty store size should be 0, got %d", store.Size())
	}

	store.Add("artist|song1")
	if !store.Has("artist|song1") {
		t.Error("Store should have the key after adding")
	}

	if store.Size() != 1 {
		t.Errorf("Store size should be 1 after adding one key, got %d", store.Size())
	}

	// Duplicate addition is a no-op.
	store.Add("artist|song1")
	if store.Size() != 1 {
		t.Errorf("Store size should still be 1 after adding duplicate, got %d", store.Size())
	}

	store.Add("artist|song2")
	store.Add("artist|song3")

	if store.Size() != 3 {
		t.Errorf("Store size should be 3 after adding three keys, got %d", store.Size())
	}

	if !store.Has("artist|song2") || !store.Has("artist|song3") {
		t.Error("Store should have all added keys")
	}
}

func TestDedupStore_Remove(t *testing.T) {
	store := NewDedupStore(100, 0.001)

	store.Add("artist|song1")
	store.Remove("artist|song1")

	if store.Has("artist|song1") {
		t.Error("Store should not have a removed key")
	}
	if store.Size() != 0 {
		t.Errorf("Store size should be 0 after removal, got %d", store.Size())
	}

	// Removing an absent key is a no-op.
	store.Remove("artist|missing")
}

func TestDedupStore_Load(t *testing.T) {
	store := NewDedupStore(100, 0.001)

	store.Add("stale|key")

	keys := []string{"a|1", "b|2", "c|3", ""}
	store.Load(keys)

	if store.Size() != 3 {
		t.Errorf("Store size should be 3 after loading (empty keys skipped), got %d", store.Size())
	}

	if store.Has("stale|key") {
		t.Error("Load should clear previously added keys")
	}

	for _, key := range keys[:3] {
		if !store.Has(key) {
			t.Errorf("Store should have loaded key %q", key)
		}
	}
}

func TestDedupStore_Eviction(t *testing.T) {
	store := NewDedupStore(10, 0.001)

	for i := 0; i < 20; i++ {
		store.Add(fmt.Sprintf("artist|song%d", i))
	}

	if store.Size() > 10 {
		t.Errorf("Store size should be capped at 10, got %d", store.Size())
	}

	if !store.Has("artist|song19") {
		t.Error("Most recently added key should survive eviction")
	}
}

func TestDedupStore_Clear(t *testing.T) {
	store := NewDedupStore(100, 0.001)

	store.Add("a|1")
	store.Add("b|2")
	store.Clear()

	if store.Size() != 0 {
		t.Errorf("Store size should be 0 after Clear, got %d", store.Size())
	}
	if store.Has("a|1") {
		t.Error("Cleared store should not have any keys")
	}
}
