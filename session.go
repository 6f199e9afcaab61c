package auth

import (
	"context"
	"time"
)

// Session cookie settings. The cookie holds the whole session state; there
// is no server-side record unless the scs-backed store is used.
const (
	SessionCookieName = "notes"
	SessionMaxAge     = 365 * 24 * time.Hour
)

// PendingCode is a one-time code awaiting verification, kept inside the
// signed session rather than server-side: its lifetime is bounded by cookie
// possession plus the expiry check, and completing the flow requires the
// same browser.
type PendingCode struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (p *PendingCode) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Session is the per-cookie state blob. It carries at most one
// authenticated user at a time.
type Session struct {
	User    *AuthUser
	Pending *PendingCode
	Flash   string

	// backend handles; unused by the cookie store
	token  string
	scsCtx context.Context
}

// PopFlash returns the one-shot error message and clears it.
func (s *Session) PopFlash() string {
	msg := s.Flash
	s.Flash = ""
	return msg
}

// SessionStore loads and persists sessions from/to Set-Cookie material.
//
// Load never surfaces tampering: a session whose signature does not verify
// is indistinguishable from no session at all (fail closed). Errors are
// reserved for backend failures such as an unreachable server-side store.
type SessionStore interface {
	Load(cookieHeader string) (*Session, error)

	// Commit serializes and signs the session, returning the Set-Cookie
	// header value that persists it.
	Commit(s *Session) (string, error)

	// Destroy clears every slot and returns the Set-Cookie header value
	// that removes the cookie. Safe to call on an already-empty session.
	Destroy(s *Session) (string, error)
}
