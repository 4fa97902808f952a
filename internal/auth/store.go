package auth

import (
	"context"
	"sync"

	"medivault/pkg/platform/sentinel"
)

// UserStore is interface-driven so the login service can be tested without
// external persistence.
type UserStore interface {
	Save(ctx context.Context, user User) error
	FindByUsername(ctx context.Context, username string) (User, error)
}

type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[string]User)}
}

func (s *InMemoryUserStore) Save(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = user
	return nil
}

func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return User{}, sentinel.ErrNotFound
	}
	return user, nil
}
