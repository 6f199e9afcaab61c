package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"time"
)

// One-time code parameters: 6 numeric digits, valid for 5 minutes, single
// use.
const (
	codeDigits = 6
	codeTTL    = 5 * time.Minute
)

var codeMax = big.NewInt(1_000_000)

// OneTimeCodeStrategy implements the password-reset / step-up verification
// flow. The code lives inside the caller's signed session (see PendingCode);
// there is no server-side code storage.
//
// State machine per email:
//
//	Requested -> (email sent) -> Pending(expiresAt) -> Verified | Expired | Exhausted
type OneTimeCodeStrategy struct {
	Users  UserStore
	Sender EmailSender

	// BaseURL is the public origin used to build the magic link.
	BaseURL string

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

func (s *OneTimeCodeStrategy) Name() string { return StrategyOneTimeCode }

func (s *OneTimeCodeStrategy) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *OneTimeCodeStrategy) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Authenticate handles both phases of the flow. A credential carrying only
// an email requests a code; one carrying a code attempts verification. The
// request phase yields no user - the caller commits the session and sends
// the user to the verification step.
func (s *OneTimeCodeStrategy) Authenticate(ctx context.Context, cred Credential, sess *Session) (*AuthUser, error) {
	cc, ok := cred.(CodeCredential)
	if !ok {
		return nil, NewAuthError(ErrCodeValidation, "Email or code is required", "")
	}
	if cc.Code == "" {
		return nil, s.Request(ctx, cc.Email, sess)
	}
	return s.Verify(ctx, cc.Code, sess)
}

// Request generates a fresh code for email, records it in the session and
// dispatches it. A send failure is reported to the caller but does not
// invalidate the pending code: whatever arrived is still honored.
func (s *OneTimeCodeStrategy) Request(ctx context.Context, email string, sess *Session) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	if _, err := s.Users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrNotFound) {
			return NewAuthError(ErrCodeUserNotFound, "User not found", "email")
		}
		return asAuthError(err)
	}

	code, err := generateCode()
	if err != nil {
		return wrapAuthError(ErrCodeHashing, "failed to generate code", err)
	}

	sess.Pending = &PendingCode{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(codeTTL),
	}

	magicLink := fmt.Sprintf("%s/magic-link?code=%s", s.BaseURL, url.QueryEscape(code))
	msg := Email{
		To:      email,
		Subject: "Your password reset code",
		HTMLBody: fmt.Sprintf(
			"<p>Your verification code is <strong>%s</strong>. It expires in 5 minutes.</p><p><a href=%q>Or click here to continue</a></p>",
			code, magicLink),
		TextBody: fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.\n\nOr open this link: %s", code, magicLink),
	}
	if err := s.Sender.Send(ctx, msg); err != nil {
		s.logger().Warn("failed to send one-time code", "err", err)
		return wrapAuthError(ErrCodeUpstreamTimeout, "could not send verification email", err)
	}
	return nil
}

// Verify consumes the pending code. Expiry and success both clear the
// pending state, so a code can never be accepted twice.
func (s *OneTimeCodeStrategy) Verify(ctx context.Context, submitted string, sess *Session) (*AuthUser, error) {
	pending := sess.Pending
	if pending == nil {
		return nil, NewAuthError(ErrCodeNoPendingCode, "No verification in progress", "code")
	}

	if pending.Expired(s.now()) {
		sess.Pending = nil
		return nil, NewAuthError(ErrCodeExpiredCode, "Code has expired, please request a new one", "code")
	}

	// Exact match only. The code is low-entropy and short-lived so timing
	// leakage is a non-issue, but there is no reason not to compare in
	// constant time.
	if subtle.ConstantTimeCompare([]byte(pending.Code), []byte(submitted)) != 1 {
		return nil, NewAuthError(ErrCodeInvalidCode, "Invalid code", "code")
	}

	sess.Pending = nil

	user, err := s.Users.FindByEmail(ctx, pending.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewAuthError(ErrCodeUserNotFound, "User not found", "email")
		}
		return nil, asAuthError(err)
	}
	return user.authUser(), nil
}

// generateCode returns a zero-padded 6-digit numeric code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeMax)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
