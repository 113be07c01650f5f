package domain

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies an OAuth identity provider.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderGitHub   Provider = "github"
	ProviderLinkedIn Provider = "linkedin"
)

// ProviderPolicy controls how an unseen provider identity becomes a local
// account. Google defers creation until the user picks a username; GitHub and
// LinkedIn create the account on first sight.
type ProviderPolicy struct {
	AutoCreate   bool
	RequireEmail bool
}

var providerPolicies = map[Provider]ProviderPolicy{
	ProviderGoogle:   {AutoCreate: false, RequireEmail: true},
	ProviderGitHub:   {AutoCreate: true, RequireEmail: false},
	ProviderLinkedIn: {AutoCreate: true, RequireEmail: false},
}

// Policy returns the account-creation policy for the provider.
func (p Provider) Policy() ProviderPolicy {
	return providerPolicies[p]
}

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	_, ok := providerPolicies[p]
	return ok
}

// User represents an account. An account always has at least one
// authentication method: a password hash or a linked provider subject.
type User struct {
	ID           string  `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	Email        *string `json:"email,omitempty" db:"email"`
	Username     *string `json:"username,omitempty" db:"username"`
	PasswordHash *string `json:"-" db:"password_hash"`
	AvatarURL    *string `json:"avatar_url,omitempty" db:"avatar_url"`

	GoogleID   *string `json:"-" db:"google_id"`
	GitHubID   *string `json:"-" db:"github_id"`
	LinkedInID *string `json:"-" db:"linkedin_id"`

	ResetToken        *string    `json:"-" db:"reset_token"`
	ResetTokenExpires *time.Time `json:"-" db:"reset_token_expires"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewLocalUser creates a password-backed account.
func NewLocalUser(name, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        &email,
		PasswordHash: &passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewProviderUser creates an account backed only by a provider identity.
// email and avatarURL may be empty when the provider did not supply them.
func NewProviderUser(name, email, avatarURL string, provider Provider, subject string) *User {
	now := time.Now().UTC()
	u := &User{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if email != "" {
		u.Email = &email
	}
	if avatarURL != "" {
		u.AvatarURL = &avatarURL
	}
	u.SetProviderSubject(provider, subject)
	return u
}

// ProviderSubject returns the stored subject identifier for the provider,
// or nil when the provider is not linked.
func (u *User) ProviderSubject(p Provider) *string {
	switch p {
	case ProviderGoogle:
		return u.GoogleID
	case ProviderGitHub:
		return u.GitHubID
	case ProviderLinkedIn:
		return u.LinkedInID
	}
	return nil
}

// SetProviderSubject links the provider subject identifier to the account.
func (u *User) SetProviderSubject(p Provider, subject string) {
	switch p {
	case ProviderGoogle:
		u.GoogleID = &subject
	case ProviderGitHub:
		u.GitHubID = &subject
	case ProviderLinkedIn:
		u.LinkedInID = &subject
	}
}

// HasAuthMethod reports whether the account can authenticate at all.
func (u *User) HasAuthMethod() bool {
	return u.PasswordHash != nil || u.GoogleID != nil || u.GitHubID != nil || u.LinkedInID != nil
}
