package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/notekeep/auth"
	"github.com/notekeep/auth/stores/memory"
)

func googleProfile(email string) auth.ProviderCredential {
	return auth.ProviderCredential{Profile: auth.ProviderProfile{
		Provider: "google",
		Subject:  "sub-123",
		Name:     "Test User",
		Emails:   []auth.ProfileEmail{{Value: email, Verified: true}},
	}}
}

func TestGoogleCreatesPasswordlessUser(t *testing.T) {
	users := memory.NewUserStore()
	strategy := &auth.GoogleStrategy{Users: users}

	user, err := strategy.Authenticate(context.Background(), googleProfile("fresh@example.com"), &auth.Session{})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "fresh@example.com", user.Email)

	stored, err := users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.PasswordHash, "federated accounts carry no password")
}

func TestGoogleLinksExistingAccount(t *testing.T) {
	users := memory.NewUserStore()
	ctx := context.Background()

	existing, err := users.Insert(ctx, &auth.User{Email: "both@example.com", PasswordHash: "salt.key"})
	require.NoError(t, err)

	strategy := &auth.GoogleStrategy{Users: users}
	user, err := strategy.Authenticate(ctx, googleProfile("both@example.com"), &auth.Session{})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID, "linking by email, no second account")

	stored, err := users.FindByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "salt.key", stored.PasswordHash, "password login stays intact after linking")
}

func TestGoogleRequiresEmail(t *testing.T) {
	strategy := &auth.GoogleStrategy{Users: memory.NewUserStore()}

	user, err := strategy.Authenticate(context.Background(), auth.ProviderCredential{
		Profile: auth.ProviderProfile{Provider: "google", Subject: "sub-123"},
	}, &auth.Session{})
	assert.Nil(t, user)

	var ae *auth.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, auth.ErrCodeProviderLogin, ae.Code)
}

func TestProviderProfilePrimaryEmail(t *testing.T) {
	tests := []struct {
		name   string
		emails []auth.ProfileEmail
		want   string
	}{
		{"verified wins", []auth.ProfileEmail{
			{Value: "unverified@example.com", Verified: false},
			{Value: "verified@example.com", Verified: true},
		}, "verified@example.com"},
		{"fallback to first", []auth.ProfileEmail{
			{Value: "only@example.com", Verified: false},
		}, "only@example.com"},
		{"no emails", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := auth.ProviderProfile{Emails: tt.emails}
			assert.Equal(t, tt.want, p.PrimaryEmail())
		})
	}
}
