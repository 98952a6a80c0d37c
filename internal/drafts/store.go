package drafts

import (
	"sync"
	"time"
)

const defaultSessionIdleTTL = 2 * time.Hour

// Store tracks the live authoring sessions of this process, keyed by the
// client-supplied session id. Sessions are cheap; abandoned ones age out.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	idleTTL  time.Duration
	now      func() time.Time
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// NewStore builds an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*entry),
		idleTTL:  defaultSessionIdleTTL,
		now:      time.Now,
	}
}

// Get returns the session for the id, creating it when absent. An empty id
// returns a fresh unshared session: callers without a session header still
// get lifecycle semantics, just not across requests.
func (s *Store) Get(id string) *Session {
	if id == "" {
		return NewSession()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictIdleLocked()

	if e, ok := s.sessions[id]; ok {
		e.lastSeen = s.now()
		return e.session
	}
	session := NewSession()
	s.sessions[id] = &entry{session: session, lastSeen: s.now()}
	return session
}

// Put registers an existing session under the id, replacing any previous one.
// Used when resuming editing over a persisted draft.
func (s *Store) Put(id string, session *Session) {
	if id == "" || session == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{session: session, lastSeen: s.now()}
}

// Drop forgets the session.
func (s *Store) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) evictIdleLocked() {
	cutoff := s.now().Add(-s.idleTTL)
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
