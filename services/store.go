package services

import (
	"context"
	"sync"

	"partyquiz/models"
)

// SessionStore holds the canonical session snapshot, overwritten wholesale on
// every mutation. Only the lifecycle controller writes through it.
type SessionStore interface {
	Load(ctx context.Context, pin string) (*models.SessionState, error)
	Save(ctx context.Context, state *models.SessionState) error
	Delete(ctx context.Context, pin string) error
}

// MemorySessionStore keeps snapshots in process memory. It backs deployments
// without Redis and all of the tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.SessionState
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.SessionState)}
}

func (s *MemorySessionStore) Load(_ context.Context, pin string) (*models.SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[pin]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	copied := cloneState(&state)
	return copied, nil
}

func (s *MemorySessionStore) Save(_ context.Context, state *models.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.Pin] = *cloneState(state)
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, pin)
	return nil
}

// cloneState deep-copies a snapshot so callers never alias stored slices.
func cloneState(state *models.SessionState) *models.SessionState {
	copied := *state
	copied.Questions = append([]models.Question(nil), state.Questions...)
	copied.Players = append([]models.Player(nil), state.Players...)
	copied.Answers = append([]models.Answer(nil), state.Answers...)
	return &copied
}
