package drafts

import (
	"testing"
	"time"
)

func TestStoreReturnsSameSessionForID(t *testing.T) {
	store := NewStore()
	a := store.Get("session-1")
	b := store.Get("session-1")
	if a != b {
		t.Fatal("same id must resolve the same session")
	}
	if store.Get("session-2") == a {
		t.Fatal("different ids must not share a session")
	}
}

func TestStoreEmptyIDIsEphemeral(t *testing.T) {
	store := NewStore()
	if store.Get("") == store.Get("") {
		t.Fatal("empty ids must get fresh sessions")
	}
}

func TestStoreEvictsIdleSessions(t *testing.T) {
	store := NewStore()
	current := time.Now()
	store.now = func() time.Time { return current }

	stale := store.Get("stale")
	current = current.Add(store.idleTTL + time.Minute)

	if store.Get("stale") == stale {
		t.Fatal("idle session should have been evicted")
	}
}

func TestStoreDrop(t *testing.T) {
	store := NewStore()
	first := store.Get("id")
	store.Drop("id")
	if store.Get("id") == first {
		t.Fatal("dropped session must not be resurrected")
	}
}
