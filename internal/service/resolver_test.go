package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventlens/api/internal/domain"
)

func newResolver(store *memStore) *AccountResolver {
	return NewAccountResolver(store, NewTokenIssuer("test-secret", time.Hour))
}

func TestResolveAutoCreatingProviderCreatesOnce(t *testing.T) {
	store := newMemStore()
	resolver := newResolver(store)
	ctx := context.Background()

	profile := &Profile{Subject: "p1", Email: "bo@x.com", Name: "Bo"}

	res, err := resolver.Resolve(ctx, domain.ProviderGitHub, profile)
	require.NoError(t, err)
	require.Nil(t, res.Pending)
	require.NotNil(t, res.User)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, 1, store.count())

	// Second sign-in with the same profile finds the linked account.
	again, err := resolver.Resolve(ctx, domain.ProviderGitHub, profile)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, again.User.ID)
	assert.Equal(t, 1, store.count())
}

func TestResolveLinksProviderToEmailMatchedAccount(t *testing.T) {
	store := newMemStore()
	resolver := newResolver(store)
	ctx := context.Background()

	local := domain.NewLocalUser("Ada", "ada@x.com", "hash")
	require.NoError(t, store.Create(ctx, local))

	profile := &Profile{Subject: "g-42", Email: "ada@x.com", Name: "Ada"}

	res, err := resolver.Resolve(ctx, domain.ProviderGoogle, profile)
	require.NoError(t, err)
	require.Nil(t, res.Pending)
	assert.Equal(t, local.ID, res.User.ID)
	assert.Equal(t, 1, store.count())

	stored, err := store.FindByID(ctx, local.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.GoogleID)
	assert.Equal(t, "g-42", *stored.GoogleID)
	// The original password hash survives linking.
	require.NotNil(t, stored.PasswordHash)
}

func TestResolveLinkingIsIdempotent(t *testing.T) {
	store := newMemStore()
	resolver := newResolver(store)
	ctx := context.Background()

	local := domain.NewLocalUser("Ada", "ada@x.com", "hash")
	require.NoError(t, store.Create(ctx, local))

	profile := &Profile{Subject: "g-42", Email: "ada@x.com", Name: "Ada"}

	first, err := resolver.Resolve(ctx, domain.ProviderGoogle, profile)
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, domain.ProviderGoogle, profile)
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, 1, store.count())
}

func TestResolveGoogleUnseenReturnsPending(t *testing.T) {
	store := newMemStore()
	resolver := newResolver(store)
	ctx := context.Background()

	profile := &Profile{Subject: "p2", Email: "cy@x.com", Name: "Cy"}

	res, err := resolver.Resolve(ctx, domain.ProviderGoogle, profile)
	require.NoError(t, err)
	require.NotNil(t, res.Pending)
	assert.Empty(t, res.Token)
	assert.Equal(t, "cy@x.com", res.Pending.Email)
	assert.Equal(t, "Cy", res.Pending.Name)
	assert.Equal(t, "p2", res.Pending.Subject)
	// No record is created before the username arrives.
	assert.Equal(t, 0, store.count())
}

func TestResolveGoogleWithoutEmailFails(t *testing.T) {
	store := newMemStore()
	resolver := newResolver(store)

	_, err := resolver.Resolve(context.Background(), domain.ProviderGoogle, &Profile{Subject: "p3", Name: "Anon"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProfileIncomplete))
	assert.Equal(t, 0, store.count())
}

func TestResolveGitHubWithoutEmailAutoCreates(t *testing.T) {
	store := newMemStore()
	resolver := newResolver(store)

	res, err := resolver.Resolve(context.Background(), domain.ProviderGitHub, &Profile{Subject: "gh-9", Name: "Octo"})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Nil(t, res.User.Email)
	assert.Equal(t, 1, store.count())
}

func TestResolveMissingSubjectFails(t *testing.T) {
	resolver := newResolver(newMemStore())

	_, err := resolver.Resolve(context.Background(), domain.ProviderGitHub, &Profile{Email: "x@x.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProfileIncomplete))
}

func TestResolveUnknownProviderFails(t *testing.T) {
	resolver := newResolver(newMemStore())

	_, err := resolver.Resolve(context.Background(), domain.Provider("myspace"), &Profile{Subject: "s"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCompleteSignupHappyPath(t *testing.T) {
	store := newMemStore()
	resolver := newResolver(store)
	ctx := context.Background()

	user, token, err := resolver.CompleteSignup(ctx, "cy@x.com", "Cy", "  Cy99 ", "p2")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotNil(t, user.Username)
	assert.Equal(t, "cy99", *user.Username)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "p2", *user.GoogleID)
	assert.Nil(t, user.PasswordHash)

	// A later Google sign-in resolves straight to the account.
	res, err := resolver.Resolve(ctx, domain.ProviderGoogle, &Profile{Subject: "p2", Email: "cy@x.com", Name: "Cy"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
}

func TestCompleteSignupConflictsOnRepeat(t *testing.T) {
	store := newMemStore()
	resolver := newResolver(store)
	ctx := context.Background()

	_, _, err := resolver.CompleteSignup(ctx, "cy@x.com", "Cy", "cy99", "p2")
	require.NoError(t, err)

	_, _, err = resolver.CompleteSignup(ctx, "cy@x.com", "Cy", "other", "p2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, 1, store.count())
}

func TestCompleteSignupConflictsOnUsername(t *testing.T) {
	store := newMemStore()
	resolver := newResolver(store)
	ctx := context.Background()

	_, _, err := resolver.CompleteSignup(ctx, "a@x.com", "A", "taken", "p1")
	require.NoError(t, err)

	_, _, err = resolver.CompleteSignup(ctx, "b@x.com", "B", "TAKEN", "p2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCompleteSignupValidatesInput(t *testing.T) {
	resolver := newResolver(newMemStore())
	ctx := context.Background()

	for _, tt := range []struct {
		name                     string
		email, username, subject string
	}{
		{"missing email", "", "cy99", "p2"},
		{"missing subject", "cy@x.com", "cy99", ""},
		{"missing username", "cy@x.com", "", "p2"},
		{"blank username", "cy@x.com", "   ", "p2"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := resolver.CompleteSignup(ctx, tt.email, "Cy", tt.username, tt.subject)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
}

func TestResolvePropagatesStoreFailures(t *testing.T) {
	store := newMemStore()
	store.failWith = errors.New("connection reset")
	resolver := newResolver(store)

	_, err := resolver.Resolve(context.Background(), domain.ProviderGitHub, &Profile{Subject: "p1", Email: "bo@x.com"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrConflict))
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}
