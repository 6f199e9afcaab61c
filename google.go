package auth

import (
	"context"
	"errors"
	"log/slog"
)

// GoogleStrategy completes a federated login from a provider profile.
// Linking is implicit by email: an existing account with the profile's email
// is returned unchanged, password hash and all. New accounts are created
// without a password.
type GoogleStrategy struct {
	Users  UserStore
	Logger *slog.Logger
}

func (s *GoogleStrategy) Name() string { return StrategyGoogle }

func (s *GoogleStrategy) Authenticate(ctx context.Context, cred Credential, _ *Session) (*AuthUser, error) {
	pc, ok := cred.(ProviderCredential)
	if !ok {
		return nil, NewAuthError(ErrCodeProviderLogin, "provider profile is required", "")
	}

	email := pc.Profile.PrimaryEmail()
	if email == "" {
		return nil, NewAuthError(ErrCodeProviderLogin, "provider did not return an email address", "")
	}

	existing, err := s.Users.FindByEmail(ctx, email)
	if err == nil {
		return existing.authUser(), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, wrapAuthError(ErrCodeProviderLogin, "provider login failed", err)
	}

	user, err := s.Users.Insert(ctx, &User{Email: email})
	if err != nil {
		// A duplicate-email race here is store-enforced and not
		// recoverable by this attempt.
		return nil, wrapAuthError(ErrCodeProviderLogin, "provider login failed", err)
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("created user from federated login", "provider", pc.Profile.Provider, "user_id", user.ID)
	return user.authUser(), nil
}
