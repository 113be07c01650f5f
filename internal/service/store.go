package service

import (
	"context"

	"github.com/eventlens/api/internal/domain"
)

// UserStore defines the user data access interface consumed by the auth
// services.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByProviderSubject(ctx context.Context, provider domain.Provider, subject string) (*domain.User, error)
	FindByResetToken(ctx context.Context, token string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
}

// EventStore defines the event data access interface consumed by EventService.
type EventStore interface {
	List(ctx context.Context) ([]domain.Event, error)
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id string) error
}
