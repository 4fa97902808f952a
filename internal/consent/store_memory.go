package consent

import (
	"context"
	"sync"

	id "medivault/pkg/domain"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	decisions map[id.SessionID]Decision
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{decisions: make(map[id.SessionID]Decision)}
}

func (s *InMemoryStore) Get(_ context.Context, sessionID id.SessionID) (Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decisions[sessionID]
	if !ok {
		return Decision{State: StateNotDecided}, nil
	}
	return d, nil
}

func (s *InMemoryStore) Put(_ context.Context, sessionID id.SessionID, decision Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[sessionID] = decision
	return nil
}
