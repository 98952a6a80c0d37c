package drafts

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/habitatline/habitat-backend/internal/composition"
	"github.com/habitatline/habitat-backend/internal/sku"
	pkgerrors "github.com/habitatline/habitat-backend/pkg/errors"
)

// State is the lifecycle phase of an authoring session.
type State string

const (
	// StateEmpty means no product row exists yet for this session.
	StateEmpty State = "empty"
	// StateDrafted means the draft row has been created and carries a
	// stable id media can attach against.
	StateDrafted State = "drafted"
	// StateFinalized means the draft has been published; the session only
	// leaves this state through duplication.
	StateFinalized State = "finalized"
)

func (s State) String() string {
	return string(s)
}

// CreateFunc persists the draft row and returns its id. It runs at most once
// per Empty phase regardless of how many callers race into EnsureCreated.
type CreateFunc func(ctx context.Context) (uuid.UUID, error)

// Session serializes the lifecycle of one authoring flow: Empty until the
// first save creates the draft row, Drafted while the author edits, Finalized
// after publish. Duplication re-enters Empty with fresh identity state so the
// copy mints its own nonce and placement uids.
//
// The session also carries the staleness epoch: async lookups snapshot the
// epoch when they start, and their results are dropped when the epoch moved
// on (the author duplicated or reset mid-flight).
type Session struct {
	mu        sync.Mutex
	state     State
	productID uuid.UUID
	epoch     uint64

	// inflight is non-nil while a creation attempt runs; it closes when the
	// attempt finishes so concurrent savers share one outcome.
	inflight  chan struct{}
	createErr error

	nonce sku.NonceCache
	uids  *composition.UIDSource
}

// NewSession starts an Empty authoring session.
func NewSession() *Session {
	return &Session{state: StateEmpty, uids: composition.NewUIDSource()}
}

// ResumeSession opens a session over an existing draft row, seeding the nonce
// cache from the persisted SKU so edits keep the product's identity tail.
func ResumeSession(productID uuid.UUID, persistedSKU string) *Session {
	s := NewSession()
	s.state = StateDrafted
	s.productID = productID
	s.nonce.Ensure(persistedSKU)
	return s
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ProductID returns the draft row id, or uuid.Nil while Empty.
func (s *Session) ProductID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productID
}

// UIDs exposes the session's placement uid source.
func (s *Session) UIDs() *composition.UIDSource {
	return s.uids
}

// Nonce returns the session's SKU nonce, minting it on first use and reusing
// the persisted tail when one exists.
func (s *Session) Nonce(persistedSKU string) string {
	return s.nonce.Ensure(persistedSKU)
}

// PinNonce adopts a nonce agreed outside this process, e.g. when another
// replica of the same authoring session minted first.
func (s *Session) PinNonce(value string) {
	s.nonce.Pin(value)
}

// EnsureCreated returns the draft row id, invoking create at most once. A
// caller arriving while another caller's create is in flight waits for that
// outcome instead of creating a second row; this is what makes double-clicked
// save buttons harmless. A failed attempt returns the session to Empty so the
// author can retry.
func (s *Session) EnsureCreated(ctx context.Context, create CreateFunc) (uuid.UUID, error) {
	if create == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInternal, "create function is required")
	}

	for {
		s.mu.Lock()
		switch {
		case s.state == StateFinalized:
			s.mu.Unlock()
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeStateConflict, "session is finalized; duplicate to edit again")

		case s.state == StateDrafted:
			id := s.productID
			s.mu.Unlock()
			return id, nil

		case s.inflight != nil:
			done := s.inflight
			s.mu.Unlock()
			select {
			case <-ctx.Done():
				return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, ctx.Err(), "waiting for draft creation")
			case <-done:
			}
			s.mu.Lock()
			if s.state == StateDrafted {
				id := s.productID
				s.mu.Unlock()
				return id, nil
			}
			err := s.createErr
			s.mu.Unlock()
			if err != nil {
				return uuid.Nil, err
			}
			// The attempt was cancelled without an error; retry.

		default:
			done := make(chan struct{})
			s.inflight = done
			s.mu.Unlock()

			id, err := create(ctx)

			s.mu.Lock()
			s.inflight = nil
			s.createErr = err
			if err == nil {
				s.state = StateDrafted
				s.productID = id
			}
			close(done)
			s.mu.Unlock()
			return id, err
		}
	}
}

// Finalize moves the session to Finalized. Only a Drafted session can
// finalize; publishing nothing is a state conflict.
func (s *Session) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateDrafted:
		s.state = StateFinalized
		return nil
	case StateFinalized:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "nothing drafted to finalize")
	}
}

// Duplicate re-enters Empty for the copy flow: the product id, nonce, and
// placement uid source all reset so the duplicate builds fresh identity, and
// the epoch advances so in-flight lookups for the old draft are dropped.
func (s *Session) Duplicate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateEmpty
	s.productID = uuid.Nil
	s.createErr = nil
	s.epoch++
	s.nonce.Reset()
	s.uids = composition.NewUIDSource()
}

// Epoch snapshots the staleness token for an async lookup.
func (s *Session) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Apply runs apply only if the session is still in the given epoch. It
// reports whether the result was applied; stale results are discarded.
func (s *Session) Apply(epoch uint64, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return false
	}
	apply()
	return true
}
