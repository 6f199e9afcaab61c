package auth

import (
	"context"
	"errors"
	"fmt"
)

// Error codes carried by AuthError. Codes classify failures for callers;
// messages are for display.
const (
	ErrCodeValidation      = "validation"
	ErrCodeDuplicateEmail  = "duplicate_email"
	ErrCodeInvalidCreds    = "invalid_credentials"
	ErrCodeUserNotFound    = "user_not_found"
	ErrCodeExpiredCode     = "expired_code"
	ErrCodeInvalidCode     = "invalid_code"
	ErrCodeNoPendingCode   = "no_pending_code"
	ErrCodeMalformedHash   = "malformed_hash"
	ErrCodeHashing         = "hashing_failed"
	ErrCodeUnknownStrategy = "unknown_strategy"
	ErrCodeUpstreamTimeout = "upstream_timeout"
	ErrCodeProviderLogin   = "provider_login"
)

// Store sentinels. Stores translate their backend's errors into these so the
// strategies stay backend-agnostic.
var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already taken")
)

// AuthError is the typed failure every authentication operation returns.
// Field, when set, names the input field the error belongs to so forms can
// render it inline.
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`

	cause error
}

func NewAuthError(code, message, field string) *AuthError {
	return &AuthError{Code: code, Message: message, Field: field}
}

// wrapAuthError attaches an underlying cause for logs and errors.Is checks.
func wrapAuthError(code, message string, cause error) *AuthError {
	return &AuthError{Code: code, Message: message, cause: cause}
}

func (e *AuthError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuthError) Unwrap() error { return e.cause }

// Fatal reports whether the failure indicates a broken deployment or
// corrupted data rather than a bad user input. Fatal errors skip the flash
// and surface to a top-level handler.
func (e *AuthError) Fatal() bool {
	switch e.Code {
	case ErrCodeMalformedHash, ErrCodeHashing, ErrCodeUnknownStrategy:
		return true
	}
	return false
}

// Retryable reports whether trying the same operation again later could
// succeed without the user changing anything.
func (e *AuthError) Retryable() bool {
	switch e.Code {
	case ErrCodeUpstreamTimeout, ErrCodeProviderLogin:
		return true
	}
	return false
}

// Recoverable reports whether the user can fix the failure themselves by
// correcting their input or requesting a new code.
func (e *AuthError) Recoverable() bool {
	return !e.Fatal() && !e.Retryable()
}

// UserMessage is the display text. Non-recoverable errors collapse to a
// generic message so internals never leak to the user.
func (e *AuthError) UserMessage() string {
	if !e.Recoverable() {
		return "Sorry, something went wrong, please try again later."
	}
	return e.Message
}

// asAuthError normalizes any error into an AuthError. Deadline expiry on an
// upstream call becomes a retryable timeout; everything else unclassified is
// treated as a timeout-class upstream failure.
func asAuthError(err error) *AuthError {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return wrapAuthError(ErrCodeUpstreamTimeout, "operation timed out", err)
	}
	return wrapAuthError(ErrCodeUpstreamTimeout, "unexpected error", err)
}
