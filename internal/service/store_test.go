package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eventlens/api/internal/domain"
)

// memStore is an in-memory UserStore that enforces the same unique indexes
// as the real schema: email, username, and each provider subject.
type memStore struct {
	mu    sync.Mutex
	users map[string]*domain.User

	failWith error
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*domain.User)}
}

func (s *memStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	if u, ok := s.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, u := range s.users {
		if u.Email != nil && *u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, u := range s.users {
		if u.Username != nil && *u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) FindByProviderSubject(_ context.Context, provider domain.Provider, subject string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, u := range s.users {
		if sub := u.ProviderSubject(provider); sub != nil && *sub == subject {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) FindByResetToken(_ context.Context, token string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, u := range s.users {
		if u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(time.Now()) {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if err := s.checkUnique(user); err != nil {
		return err
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *memStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := s.checkUnique(user); err != nil {
		return err
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *memStore) checkUnique(user *domain.User) error {
	for id, other := range s.users {
		if id == user.ID {
			continue
		}
		if user.Email != nil && other.Email != nil && *user.Email == *other.Email {
			return fmt.Errorf("duplicate email: %w", domain.ErrConflict)
		}
		if user.Username != nil && other.Username != nil && *user.Username == *other.Username {
			return fmt.Errorf("duplicate username: %w", domain.ErrConflict)
		}
		for _, p := range []domain.Provider{domain.ProviderGoogle, domain.ProviderGitHub, domain.ProviderLinkedIn} {
			a, b := user.ProviderSubject(p), other.ProviderSubject(p)
			if a != nil && b != nil && *a == *b {
				return fmt.Errorf("duplicate %s subject: %w", p, domain.ErrConflict)
			}
		}
	}
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func copyUser(u *domain.User) *domain.User {
	cp := *u
	return &cp
}
