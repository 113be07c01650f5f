package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderPolicies(t *testing.T) {
	assert.False(t, ProviderGoogle.Policy().AutoCreate)
	assert.True(t, ProviderGoogle.Policy().RequireEmail)
	assert.True(t, ProviderGitHub.Policy().AutoCreate)
	assert.True(t, ProviderLinkedIn.Policy().AutoCreate)

	assert.True(t, ProviderGoogle.Valid())
	assert.False(t, Provider("myspace").Valid())
}

func TestProviderSubjectAccessors(t *testing.T) {
	u := NewLocalUser("Ada", "ada@x.com", "hash")
	require.Nil(t, u.ProviderSubject(ProviderGoogle))

	u.SetProviderSubject(ProviderGoogle, "g-1")
	require.NotNil(t, u.ProviderSubject(ProviderGoogle))
	assert.Equal(t, "g-1", *u.ProviderSubject(ProviderGoogle))
	assert.Nil(t, u.ProviderSubject(ProviderGitHub))
}

func TestHasAuthMethod(t *testing.T) {
	local := NewLocalUser("Ada", "ada@x.com", "hash")
	assert.True(t, local.HasAuthMethod())

	oauth := NewProviderUser("Bo", "bo@x.com", "", ProviderGitHub, "gh-1")
	assert.True(t, oauth.HasAuthMethod())
	assert.Nil(t, oauth.PasswordHash)

	assert.False(t, (&User{}).HasAuthMethod())
}

func TestNewProviderUserOmitsEmptyFields(t *testing.T) {
	u := NewProviderUser("Bo", "", "", ProviderGitHub, "gh-1")
	assert.Nil(t, u.Email)
	assert.Nil(t, u.AvatarURL)
	assert.NotEmpty(t, u.ID)
}
