package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eventlens/api/internal/domain"
)

// AccountResolver reconciles an authentication attempt from an identity
// provider against the user store: it links the provider subject to an
// existing email-matched account, creates an account for auto-creating
// providers, or defers creation until the user supplies a username.
type AccountResolver struct {
	users  UserStore
	tokens *TokenIssuer
}

// NewAccountResolver creates a new AccountResolver.
func NewAccountResolver(users UserStore, tokens *TokenIssuer) *AccountResolver {
	return &AccountResolver{users: users, tokens: tokens}
}

// PendingSignup carries the verified profile data the client must re-submit
// together with a chosen username to finalize signup.
type PendingSignup struct {
	Email   string
	Name    string
	Subject string
}

// Resolution is the outcome of a provider sign-in: either a ready account
// with a token, or a pending-completion signal.
type Resolution struct {
	User    *domain.User
	Token   string
	Pending *PendingSignup
}

// Resolve applies the shared account-resolution algorithm, branching only on
// the provider's creation policy.
func (r *AccountResolver) Resolve(ctx context.Context, provider domain.Provider, profile *Profile) (*Resolution, error) {
	if !provider.Valid() {
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	if profile.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject identifier", domain.ErrProfileIncomplete)
	}

	policy := provider.Policy()

	// Repeat sign-in: the subject is already linked to an account.
	user, err := r.users.FindByProviderSubject(ctx, provider, profile.Subject)
	if err == nil {
		return r.resolved(user)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if profile.Email == "" {
		// Without an email there is no account to link against. Providers
		// that need one to disambiguate fail here; auto-creating providers
		// provision a fresh account with no email.
		if policy.RequireEmail || !policy.AutoCreate {
			return nil, fmt.Errorf("%w: provider %s omitted email", domain.ErrProfileIncomplete, provider)
		}
		user := domain.NewProviderUser(profile.Name, "", profile.AvatarURL, provider, profile.Subject)
		if err := r.users.Create(ctx, user); err != nil {
			return nil, err
		}
		return r.resolved(user)
	}

	user, err = r.users.FindByEmail(ctx, profile.Email)
	if err == nil {
		// Account linking: attach the provider subject to the email-matched
		// account. Attaching an already-present subject is a no-op, so
		// concurrent callbacks for the same profile are safe.
		if user.ProviderSubject(provider) == nil {
			user.SetProviderSubject(provider, profile.Subject)
			if err := r.users.Update(ctx, user); err != nil {
				return nil, err
			}
		}
		return r.resolved(user)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if policy.AutoCreate {
		user := domain.NewProviderUser(profile.Name, profile.Email, profile.AvatarURL, provider, profile.Subject)
		if err := r.users.Create(ctx, user); err != nil {
			return nil, err
		}
		return r.resolved(user)
	}

	return &Resolution{
		Pending: &PendingSignup{
			Email:   profile.Email,
			Name:    profile.Name,
			Subject: profile.Subject,
		},
	}, nil
}

// CompleteSignup finalizes a deferred provider signup with the username the
// user chose.
func (r *AccountResolver) CompleteSignup(ctx context.Context, email, name, username, subject string) (*domain.User, string, error) {
	if email == "" || subject == "" {
		return nil, "", fmt.Errorf("%w: email and provider subject are required", domain.ErrInvalidInput)
	}
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, "", fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	// Another flow may have registered the email between the callback and
	// this call; the store's unique index backstops both checks below.
	if _, err := r.users.FindByEmail(ctx, email); err == nil {
		return nil, "", fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	if _, err := r.users.FindByUsername(ctx, username); err == nil {
		return nil, "", fmt.Errorf("username already taken: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	user := domain.NewProviderUser(name, email, "", domain.ProviderGoogle, subject)
	user.Username = &username
	if err := r.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := r.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (r *AccountResolver) resolved(user *domain.User) (*Resolution, error) {
	token, err := r.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Resolution{User: user, Token: token}, nil
}
