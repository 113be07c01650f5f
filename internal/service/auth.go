package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/eventlens/api/internal/domain"
	"github.com/eventlens/api/internal/mail"
)

const resetTokenTTL = 15 * time.Minute

// AuthService handles local (email + password) authentication and the
// password reset flow.
type AuthService struct {
	users       UserStore
	tokens      *TokenIssuer
	mailer      mail.Mailer
	frontendURL string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *TokenIssuer, mailer mail.Mailer, frontendURL string) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		mailer:      mailer,
		frontendURL: frontendURL,
	}
}

// Register creates a local account and returns it with a signed token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, "", err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := domain.NewLocalUser(name, email, hash)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the account with a signed token.
// The error is the same whether the email is unknown, the account has no
// password, or the password is wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
		}
		return nil, "", err
	}

	if user.PasswordHash == nil || !CheckPassword(*user.PasswordHash, password) {
		return nil, "", fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// ForgotPassword stores a short-lived reset token on the account and mails
// a reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(buf)
	expires := time.Now().UTC().Add(resetTokenTTL)

	user.ResetToken = &token
	user.ResetTokenExpires = &expires
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)
	if err := s.mailer.SendPasswordResetEmail(ctx, email, resetLink); err != nil {
		return fmt.Errorf("deliver reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token and replaces the password hash. The
// token must match and still be within its validity window; it is cleared on
// use so it cannot be replayed.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidToken
		}
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = &hash
	user.ResetToken = nil
	user.ResetTokenExpires = nil
	return s.users.Update(ctx, user)
}
