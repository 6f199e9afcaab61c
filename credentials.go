package auth

import (
	"regexp"
	"strings"
)

// Strategy names. They double as the wire identifiers route handlers use when
// dispatching an authentication attempt.
const (
	StrategyPassword    = "user-pass"
	StrategyOneTimeCode = "TOTP"
	StrategyGoogle      = "google"
)

// Intent discriminates the two operations of the password strategy.
type Intent string

const (
	IntentLogin  Intent = "login"
	IntentSignup Intent = "signup"
)

// Credential is an ephemeral, per-request identity claim. Credentials are
// never persisted; they exist only for the duration of one authentication
// attempt.
type Credential interface {
	// Strategy names the strategy this credential belongs to.
	Strategy() string
}

// PasswordCredential claims an identity via email and password.
type PasswordCredential struct {
	Email    string
	Password string
	Intent   Intent
}

func (PasswordCredential) Strategy() string { return StrategyPassword }

// CodeCredential drives the one-time-code flow. With only Email set it
// requests a code to be sent; with Code set it attempts verification.
type CodeCredential struct {
	Email string
	Code  string
}

func (CodeCredential) Strategy() string { return StrategyOneTimeCode }

// ProfileEmail is one email address reported by a federated provider.
type ProfileEmail struct {
	Value    string
	Verified bool
}

// ProviderProfile is the identity document returned by a federated login
// provider after a completed OAuth flow.
type ProviderProfile struct {
	Provider string
	Subject  string
	Name     string
	Emails   []ProfileEmail
}

// PrimaryEmail returns the first verified email, falling back to the first
// address listed.
func (p ProviderProfile) PrimaryEmail() string {
	for _, e := range p.Emails {
		if e.Verified && e.Value != "" {
			return e.Value
		}
	}
	if len(p.Emails) > 0 {
		return p.Emails[0].Value
	}
	return ""
}

// ProviderCredential claims an identity via a completed federated login.
type ProviderCredential struct {
	Profile ProviderProfile
}

func (ProviderCredential) Strategy() string { return StrategyGoogle }

// MinPasswordLength applies to signup and password reset.
const MinPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// validateEmail checks the address shape before any store round trip.
func validateEmail(email string) *AuthError {
	if strings.TrimSpace(email) == "" {
		return NewAuthError(ErrCodeValidation, "Email is required", "email")
	}
	if !emailRegex.MatchString(email) {
		return NewAuthError(ErrCodeValidation, "Invalid email format", "email")
	}
	return nil
}

func validateNewPassword(password string) *AuthError {
	if len(password) < MinPasswordLength {
		return NewAuthError(ErrCodeValidation, "Password must be at least 8 characters", "password")
	}
	return nil
}
