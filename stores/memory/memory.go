// Package memory provides an in-memory UserStore for tests and the demo
// server.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	auth "github.com/notekeep/auth"
)

// UserStore is a mutex-guarded in-memory implementation of auth.UserStore.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*auth.User
	byEmail map[string]*auth.User

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*auth.User),
		byEmail: make(map[string]*auth.User),
	}
}

func (s *UserStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byEmail[email]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return copyUser(user), nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return copyUser(user), nil
}

func (s *UserStore) Insert(_ context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return nil, auth.ErrEmailTaken
	}

	now := s.now()
	stored := &auth.User{
		ID:           uuid.NewString(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[stored.ID] = stored
	s.byEmail[stored.Email] = stored
	return copyUser(stored), nil
}

func (s *UserStore) UpdatePasswordHash(_ context.Context, id, hash string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now()
	return copyUser(user), nil
}

func copyUser(u *auth.User) *auth.User {
	c := *u
	return &c
}
