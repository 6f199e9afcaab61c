package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionClaims is the JWT payload of the session cookie.
type sessionClaims struct {
	User    *AuthUser    `json:"user,omitempty"`
	Pending *PendingCode `json:"pending,omitempty"`
	Flash   string       `json:"flash,omitempty"`
	jwt.RegisteredClaims
}

// CookieSessionStore keeps the entire session client-side as an HS256-signed
// JWT in the cookie value. Tampering breaks the signature and the session
// loads as empty.
type CookieSessionStore struct {
	Secret []byte

	// Secure marks the cookie Secure; set in production.
	Secure bool

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

func NewCookieSessionStore(secret []byte, secure bool) *CookieSessionStore {
	return &CookieSessionStore{Secret: secret, Secure: secure}
}

func (c *CookieSessionStore) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *CookieSessionStore) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Load parses the session cookie out of a Cookie header. Absent, expired or
// tampered cookies yield an empty session, never an error.
func (c *CookieSessionStore) Load(cookieHeader string) (*Session, error) {
	value := cookieValue(cookieHeader, SessionCookieName)
	if value == "" {
		return &Session{}, nil
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(value, claims,
		func(*jwt.Token) (any, error) { return c.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		// Fail closed: a bad signature means no session.
		c.logger().Debug("session cookie rejected", "err", err)
		return &Session{}, nil
	}

	return &Session{User: claims.User, Pending: claims.Pending, Flash: claims.Flash}, nil
}

// Commit signs the session into a Set-Cookie header value.
func (c *CookieSessionStore) Commit(s *Session) (string, error) {
	now := c.now()
	claims := &sessionClaims{
		User:    s.User,
		Pending: s.Pending,
		Flash:   s.Flash,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionMaxAge)),
		},
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
	if err != nil {
		return "", err
	}

	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(SessionMaxAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.Secure,
	}
	return cookie.String(), nil
}

// Destroy clears the session and returns the removal Set-Cookie value.
func (c *CookieSessionStore) Destroy(s *Session) (string, error) {
	s.User = nil
	s.Pending = nil
	s.Flash = ""

	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.Secure,
	}
	return cookie.String(), nil
}

// cookieValue extracts a named cookie from a raw Cookie header.
func cookieValue(cookieHeader, name string) string {
	if cookieHeader == "" {
		return ""
	}
	r := &http.Request{Header: http.Header{"Cookie": {cookieHeader}}}
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
