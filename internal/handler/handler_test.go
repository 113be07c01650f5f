package handler

import (
	"context"
	"time"

	"github.com/eventlens/api/internal/domain"
	"github.com/eventlens/api/internal/service"
)

// stubUserStore is a minimal in-memory service.UserStore for handler tests.
type stubUserStore struct {
	users map[string]*domain.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]*domain.User)}
}

func (s *stubUserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubUserStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Username != nil && *u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubUserStore) FindByProviderSubject(_ context.Context, provider domain.Provider, subject string) (*domain.User, error) {
	for _, u := range s.users {
		if sub := u.ProviderSubject(provider); sub != nil && *sub == subject {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubUserStore) FindByResetToken(_ context.Context, token string) (*domain.User, error) {
	for _, u := range s.users {
		if u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(time.Now()) {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubUserStore) Create(_ context.Context, user *domain.User) error {
	if user.Email != nil {
		if _, err := s.FindByEmail(context.Background(), *user.Email); err == nil {
			return domain.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *stubUserStore) Update(_ context.Context, user *domain.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

type noopMailer struct{}

func (noopMailer) SendPasswordResetEmail(context.Context, string, string) error { return nil }

func newTestIssuer() *service.TokenIssuer {
	return service.NewTokenIssuer("test-secret", time.Hour)
}
