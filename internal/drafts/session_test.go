package drafts

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
)

func TestEnsureCreatedRunsCreateOnce(t *testing.T) {
	session := NewSession()
	var calls atomic.Int32
	draftID := uuid.New()

	id, err := session.EnsureCreated(context.Background(), func(context.Context) (uuid.UUID, error) {
		calls.Add(1)
		return draftID, nil
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != draftID {
		t.Fatalf("unexpected id %s", id)
	}

	// Second save reuses the row without calling create again.
	again, err := session.EnsureCreated(context.Background(), func(context.Context) (uuid.UUID, error) {
		calls.Add(1)
		return uuid.New(), nil
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if again != draftID || calls.Load() != 1 {
		t.Fatalf("expected one creation and a stable id, got %d calls and id %s", calls.Load(), again)
	}
	if session.State() != StateDrafted {
		t.Fatalf("expected drafted state, got %s", session.State())
	}
}

func TestEnsureCreatedSharesInFlightCreation(t *testing.T) {
	session := NewSession()
	var calls atomic.Int32
	draftID := uuid.New()
	started := make(chan struct{})
	release := make(chan struct{})

	create := func(context.Context) (uuid.UUID, error) {
		calls.Add(1)
		close(started)
		<-release
		return draftID, nil
	}

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		ids[0], errs[0] = session.EnsureCreated(context.Background(), create)
	}()

	<-started
	// Second submit arrives while the first creation is still in flight.
	wg.Add(1)
	go func() {
		defer wg.Done()
		ids[1], errs[1] = session.EnsureCreated(context.Background(), func(context.Context) (uuid.UUID, error) {
			calls.Add(1)
			return uuid.New(), nil
		})
	}()

	close(release)
	wg.Wait()

	for i := range ids {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if ids[i] != draftID {
			t.Fatalf("caller %d got id %s, want shared %s", i, ids[i], draftID)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("double submit must create once, got %d calls", calls.Load())
	}
}

func TestEnsureCreatedFailureAllowsRetry(t *testing.T) {
	session := NewSession()
	boom := errors.New("db down")

	if _, err := session.EnsureCreated(context.Background(), func(context.Context) (uuid.UUID, error) {
		return uuid.Nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected creation error, got %v", err)
	}
	if session.State() != StateEmpty {
		t.Fatalf("failed creation must stay empty, got %s", session.State())
	}

	draftID := uuid.New()
	id, err := session.EnsureCreated(context.Background(), func(context.Context) (uuid.UUID, error) {
		return draftID, nil
	})
	if err != nil || id != draftID {
		t.Fatalf("retry should succeed, got %s / %v", id, err)
	}
}

func TestFinalizeLifecycle(t *testing.T) {
	session := NewSession()

	if err := session.Finalize(); err == nil {
		t.Fatal("finalizing an empty session must fail")
	}

	if _, err := session.EnsureCreated(context.Background(), func(context.Context) (uuid.UUID, error) {
		return uuid.New(), nil
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := session.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if session.State() != StateFinalized {
		t.Fatalf("expected finalized, got %s", session.State())
	}

	// Finalize is idempotent, but further saves are rejected.
	if err := session.Finalize(); err != nil {
		t.Fatalf("repeat finalize: %v", err)
	}
	if _, err := session.EnsureCreated(context.Background(), func(context.Context) (uuid.UUID, error) {
		return uuid.New(), nil
	}); err == nil {
		t.Fatal("a finalized session must reject new saves")
	}
}

func TestDuplicateResetsIdentity(t *testing.T) {
	session := ResumeSession(uuid.New(), "SHKAF-0800-AB2D")
	if session.Nonce("SHKAF-0800-AB2D") != "AB2D" {
		t.Fatal("resumed session should reuse the persisted nonce")
	}
	if err := session.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	session.Duplicate()

	if session.State() != StateEmpty {
		t.Fatalf("duplicate must re-enter empty, got %s", session.State())
	}
	if session.ProductID() != uuid.Nil {
		t.Fatal("duplicate must drop the source product id")
	}
	if nonce := session.Nonce(""); nonce == "AB2D" {
		t.Fatal("duplicate must mint a fresh nonce")
	}
}

func TestApplyDropsStaleEpoch(t *testing.T) {
	session := NewSession()
	stale := session.Epoch()

	session.Duplicate()

	applied := session.Apply(stale, func() {
		t.Fatal("stale result must not apply")
	})
	if applied {
		t.Fatal("expected stale epoch to be rejected")
	}

	var ran bool
	if !session.Apply(session.Epoch(), func() { ran = true }) || !ran {
		t.Fatal("current epoch must apply")
	}
}
