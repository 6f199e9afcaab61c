package auth

import (
	"context"
	"errors"
	"log/slog"
)

// invalidCredentials is the uniform login failure: unknown email, a
// passwordless (federated-only) account and a wrong password are all
// indistinguishable to the caller, so errors cannot be used to enumerate
// registered addresses.
func invalidCredentials() *AuthError {
	return NewAuthError(ErrCodeInvalidCreds, "Invalid credentials", "password")
}

// PasswordStrategy verifies email/password claims. The Intent on the
// credential selects between login and signup.
type PasswordStrategy struct {
	Users  UserStore
	Hasher PasswordHasher
	Logger *slog.Logger
}

func (s *PasswordStrategy) Name() string { return StrategyPassword }

func (s *PasswordStrategy) Authenticate(ctx context.Context, cred Credential, _ *Session) (*AuthUser, error) {
	pc, ok := cred.(PasswordCredential)
	if !ok {
		return nil, NewAuthError(ErrCodeValidation, "Email and password are required", "")
	}

	switch pc.Intent {
	case IntentLogin:
		return s.login(ctx, pc.Email, pc.Password)
	case IntentSignup:
		return s.signup(ctx, pc.Email, pc.Password)
	default:
		return nil, NewAuthError(ErrCodeValidation, "Unknown intent", "intent")
	}
}

// signup validates before touching the store, then relies on the store's
// unique index to close the race two concurrent signups could open.
func (s *PasswordStrategy) signup(ctx context.Context, email, password string) (*AuthUser, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateNewPassword(password); err != nil {
		return nil, err
	}

	// Pre-check for a friendlier field-level error; the insert below is
	// what actually guarantees uniqueness.
	_, err := s.Users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, NewAuthError(ErrCodeDuplicateEmail, "This email is not available.", "email")
	case errors.Is(err, ErrNotFound):
		// free to proceed
	default:
		return nil, asAuthError(err)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.Insert(ctx, &User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, NewAuthError(ErrCodeDuplicateEmail, "This email is not available.", "email")
		}
		return nil, asAuthError(err)
	}
	return user.authUser(), nil
}

func (s *PasswordStrategy) login(ctx context.Context, email, password string) (*AuthUser, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, NewAuthError(ErrCodeValidation, "Password is required", "password")
	}

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, asAuthError(err)
	}

	// Accounts created via federated login have no hash and cannot log in
	// with a password. Same error as a wrong password.
	if user.PasswordHash == "" {
		return nil, invalidCredentials()
	}

	match, err := s.Hasher.Compare(password, user.PasswordHash)
	if err != nil {
		// Malformed stored hash is data corruption, not a bad password.
		return nil, err
	}
	if !match {
		return nil, invalidCredentials()
	}
	return user.authUser(), nil
}
