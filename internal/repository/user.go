package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/eventlens/api/internal/domain"
)

const userColumns = `id, name, email, username, password_hash, avatar_url, google_id, github_id, linkedin_id, reset_token, reset_token_expires, created_at, updated_at`

// providerColumns maps a provider to its subject column. Lookups go through
// this whitelist; provider names never reach SQL directly.
var providerColumns = map[domain.Provider]string{
	domain.ProviderGoogle:   "google_id",
	domain.ProviderGitHub:   "github_id",
	domain.ProviderLinkedIn: "linkedin_id",
}

// UserRepository handles user data access operations.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a user by their ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id %s: %w", id, err)
	}
	return &user, nil
}

// FindByEmail retrieves a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByUsername retrieves a user by their normalized username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// FindByProviderSubject retrieves a user by an OAuth provider subject identifier.
func (r *UserRepository) FindByProviderSubject(ctx context.Context, provider domain.Provider, subject string) (*domain.User, error) {
	col, ok := providerColumns[provider]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}

	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE `+col+` = $1`, subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by %s subject: %w", provider, err)
	}
	return &user, nil
}

// FindByResetToken retrieves a user whose reset token matches and has not
// expired. Expired tokens behave exactly like unknown ones.
func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users
		 WHERE reset_token = $1 AND reset_token_expires > NOW()`, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by reset token: %w", err)
	}
	return &user, nil
}

// Create inserts a new user. A unique-index violation on email, username or a
// provider subject is converted to domain.ErrConflict; the index is the
// backstop for concurrent check-then-create races.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO users (id, name, email, username, password_hash, avatar_url,
		                    google_id, github_id, linkedin_id, created_at, updated_at)
		 VALUES (:id, :name, :email, :username, :password_hash, :avatar_url,
		         :google_id, :github_id, :linkedin_id, :created_at, :updated_at)`,
		user)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user: %w", domain.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update persists all mutable fields of the user.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	res, err := r.db.NamedExecContext(ctx,
		`UPDATE users
		 SET name = :name,
		     email = :email,
		     username = :username,
		     password_hash = :password_hash,
		     avatar_url = :avatar_url,
		     google_id = :google_id,
		     github_id = :github_id,
		     linkedin_id = :linkedin_id,
		     reset_token = :reset_token,
		     reset_token_expires = :reset_token_expires,
		     updated_at = NOW()
		 WHERE id = :id`,
		user)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user: %w", domain.ErrConflict)
		}
		return fmt.Errorf("update user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-index violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
