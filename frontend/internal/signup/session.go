package signup

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Factory builds the orchestrator of a new session. ctx is cancelled when the session
// expires.
type Factory func(ctx context.Context) *Orchestrator

type session struct {
	id     string
	o      *Orchestrator
	cancel context.CancelFunc
	timer  *time.Timer
	parent *SessionStore
}

// resetTimer pushes the expiry back by the store's ttl
func (s *session) resetTimer() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.parent.ttl, func() {
		s.parent.Delete(s.id)
	})
}

// SessionStore keeps one orchestrator per browser session. Sessions expire ttl after
// their last use.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	factory  Factory
}

func NewSessionStore(ttl time.Duration, factory Factory) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		factory:  factory,
	}
}

// Get returns the orchestrator of id, creating a session under a fresh id when id is
// empty or unknown. The returned id is the one to hand back to the client.
func (st *SessionStore) Get(id string) (*Orchestrator, string) {
	if id != "" {
		st.mu.RLock()
		s, ok := st.sessions[id]
		st.mu.RUnlock()
		if ok {
			st.mu.Lock()
			s.resetTimer()
			st.mu.Unlock()
			return s.o, id
		}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		s.resetTimer()
		return s.o, id
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:     uuid.NewString(),
		o:      st.factory(ctx),
		cancel: cancel,
		parent: st,
	}
	st.sessions[s.id] = s
	s.resetTimer()
	liveSessions.Inc()
	return s.o, s.id
}

// Lookup returns the orchestrator of an existing session without creating one.
func (st *SessionStore) Lookup(id string) (*Orchestrator, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	return s.o, true
}

// Delete ends a session and stops its pending lookups.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
		if s.timer != nil {
			s.timer.Stop()
		}
	}
	st.mu.Unlock()

	if ok {
		s.o.Stop()
		s.cancel()
		liveSessions.Dec()
	}
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Close ends every session.
func (st *SessionStore) Close() {
	st.mu.RLock()
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	st.mu.RUnlock()

	for _, id := range ids {
		st.Delete(id)
	}
}
