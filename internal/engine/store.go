package engine

import (
	"sync"
	"time"

	"github.com/daveenci-ai/leadchat-backend/internal/models"
)

// session pairs a context with its lock. The lock serializes turns for
// one session; different sessions never contend.
type session struct {
	mu     sync.Mutex
	ctx    *models.LLMContext
	closed bool
}

// ContextStore owns the lifecycle of one LLMContext per active session.
type ContextStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewContextStore creates an empty store.
func NewContextStore() *ContextStore {
	return &ContextStore{
		sessions: make(map[string]*session),
	}
}

// Create registers a fresh context for a session id.
func (s *ContextStore) Create(sessionID string) (*models.LLMContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sessionID]; exists {
		return nil, ErrDuplicateSession
	}

	ctx := models.NewLLMContext(sessionID)
	s.sessions[sessionID] = &session{ctx: ctx}
	return ctx, nil
}

// Has reports whether a session is active.
func (s *ContextStore) Has(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[sessionID]
	return ok
}

// Len returns the number of active sessions.
func (s *ContextStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Snapshot returns a deep copy of a session's context for read-only use.
func (s *ContextStore) Snapshot(sessionID string) (*models.LLMContext, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.closed {
		return nil, ErrSessionNotFound
	}
	return entry.ctx.Clone(), nil
}

// Update runs fn against the session's context while holding that
// session's lock. A second inbound turn for the same session blocks here
// until the first one finishes mutating the context.
func (s *ContextStore) Update(sessionID string, fn func(*models.LLMContext) error) error {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.closed {
		return ErrSessionNotFound
	}
	return fn(entry.ctx)
}

// Append atomically folds messages into the history and refreshes the
// last-updated timestamp.
func (s *ContextStore) Append(sessionID string, msgs ...models.Message) error {
	return s.Update(sessionID, func(c *models.LLMContext) error {
		c.Append(msgs...)
		return nil
	})
}

// Close releases the context. The session id becomes available again.
func (s *ContextStore) Close(sessionID string) error {
	s.mu.Lock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	// Wait for any in-flight turn before marking the entry dead so a
	// concurrent Update never observes a half-released session.
	entry.mu.Lock()
	entry.closed = true
	entry.mu.Unlock()
	return nil
}

// IdleSince returns ids of sessions whose last update is older than the
// cutoff. Used by the abandonment sweep.
func (s *ContextStore) IdleSince(cutoff time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, entry := range s.sessions {
		// A session with a turn in flight is not idle; skip instead of
		// blocking the whole map on its lock.
		if !entry.mu.TryLock() {
			continue
		}
		idle := !entry.closed && entry.ctx.UpdatedAt.Before(cutoff)
		entry.mu.Unlock()
		if idle {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *ContextStore) lookup(sessionID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry, nil
}
