package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/notekeep/auth"
)

// cookieHeaderOf turns a Set-Cookie header value into the Cookie header a
// browser would send back.
func cookieHeaderOf(setCookie string) string {
	return strings.SplitN(setCookie, ";", 2)[0]
}

func TestCookieSessionRoundtrip(t *testing.T) {
	store := auth.NewCookieSessionStore([]byte("test-secret"), false)

	sess := &auth.Session{
		User:  &auth.AuthUser{ID: "u1", Email: "a@example.com"},
		Flash: "hello",
		Pending: &auth.PendingCode{
			Email:     "a@example.com",
			Code:      "123456",
			ExpiresAt: time.Now().Add(5 * time.Minute).Truncate(time.Second),
		},
	}
	setCookie, err := store.Commit(sess)
	require.NoError(t, err)
	assert.Contains(t, setCookie, auth.SessionCookieName+"=")
	assert.Contains(t, setCookie, "HttpOnly")
	assert.Contains(t, setCookie, "SameSite=Lax")
	assert.NotContains(t, setCookie, "Secure", "secure flag off outside production")

	loaded, err := store.Load(cookieHeaderOf(setCookie))
	require.NoError(t, err)
	require.NotNil(t, loaded.User)
	assert.Equal(t, "u1", loaded.User.ID)
	assert.Equal(t, "a@example.com", loaded.User.Email)
	require.NotNil(t, loaded.Pending)
	assert.Equal(t, "123456", loaded.Pending.Code)
	assert.Equal(t, "hello", loaded.Flash)
}

func TestCookieSessionFailsClosed(t *testing.T) {
	store := auth.NewCookieSessionStore([]byte("test-secret"), false)

	setCookie, err := store.Commit(&auth.Session{User: &auth.AuthUser{ID: "u1", Email: "a@example.com"}})
	require.NoError(t, err)
	good := cookieHeaderOf(setCookie)

	tests := []struct {
		name   string
		header string
	}{
		{"no cookie", ""},
		{"other cookie only", "theme=dark"},
		{"garbage value", auth.SessionCookieName + "=not-a-jwt"},
		{"tampered payload", tamper(good)},
		{"wrong secret", resign(t, "other-secret")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := store.Load(tt.header)
			require.NoError(t, err, "tampering is not an error, just no session")
			assert.Nil(t, sess.User)
			assert.Nil(t, sess.Pending)
			assert.Empty(t, sess.Flash)
		})
	}
}

// tamper flips a character in the middle of the JWT payload.
func tamper(cookieHeader string) string {
	mid := len(cookieHeader) / 2
	c := byte('A')
	if cookieHeader[mid] == 'A' {
		c = 'B'
	}
	return cookieHeader[:mid] + string(c) + cookieHeader[mid+1:]
}

// resign produces a structurally valid session signed with the wrong key.
func resign(t *testing.T, secret string) string {
	t.Helper()
	other := auth.NewCookieSessionStore([]byte(secret), false)
	setCookie, err := other.Commit(&auth.Session{User: &auth.AuthUser{ID: "evil", Email: "evil@example.com"}})
	if err != nil {
		t.Fatalf("resign: %v", err)
	}
	return cookieHeaderOf(setCookie)
}

func TestCookieSessionExpiry(t *testing.T) {
	now := time.Now()
	store := auth.NewCookieSessionStore([]byte("test-secret"), false)
	store.Now = func() time.Time { return now }

	setCookie, err := store.Commit(&auth.Session{User: &auth.AuthUser{ID: "u1", Email: "a@example.com"}})
	require.NoError(t, err)

	store.Now = func() time.Time { return now.Add(auth.SessionMaxAge + time.Hour) }
	sess, err := store.Load(cookieHeaderOf(setCookie))
	require.NoError(t, err)
	assert.Nil(t, sess.User, "expired token loads as empty session")
}

func TestCookieSessionDestroy(t *testing.T) {
	store := auth.NewCookieSessionStore([]byte("test-secret"), false)
	sess := &auth.Session{
		User:    &auth.AuthUser{ID: "u1", Email: "a@example.com"},
		Pending: &auth.PendingCode{Code: "123456"},
		Flash:   "msg",
	}

	setCookie, err := store.Destroy(sess)
	require.NoError(t, err)
	assert.Nil(t, sess.User)
	assert.Nil(t, sess.Pending)
	assert.Empty(t, sess.Flash)
	assert.Contains(t, setCookie, "Max-Age=0", "removal cookie expires immediately")
}

func TestCookieSessionSecureFlag(t *testing.T) {
	store := auth.NewCookieSessionStore([]byte("test-secret"), true)
	setCookie, err := store.Commit(&auth.Session{})
	require.NoError(t, err)
	assert.Contains(t, setCookie, "Secure")
}

func TestSCSSessionRoundtrip(t *testing.T) {
	store := auth.NewSCSSessionStore(false)

	sess := &auth.Session{
		User:    &auth.AuthUser{ID: "u1", Email: "a@example.com"},
		Pending: &auth.PendingCode{Email: "a@example.com", Code: "654321", ExpiresAt: time.Now().Add(time.Minute)},
		Flash:   "note",
	}
	setCookie, err := store.Commit(sess)
	require.NoError(t, err)
	assert.Contains(t, setCookie, auth.SessionCookieName+"=")

	loaded, err := store.Load(cookieHeaderOf(setCookie))
	require.NoError(t, err)
	require.NotNil(t, loaded.User)
	assert.Equal(t, "u1", loaded.User.ID)
	require.NotNil(t, loaded.Pending)
	assert.Equal(t, "654321", loaded.Pending.Code)
	assert.Equal(t, "note", loaded.Flash)

	// Clearing slots and recommitting removes them server-side.
	loaded.Pending = nil
	loaded.Flash = ""
	setCookie, err = store.Commit(loaded)
	require.NoError(t, err)

	again, err := store.Load(cookieHeaderOf(setCookie))
	require.NoError(t, err)
	require.NotNil(t, again.User)
	assert.Nil(t, again.Pending)
	assert.Empty(t, again.Flash)
}

func TestSCSSessionDestroy(t *testing.T) {
	store := auth.NewSCSSessionStore(false)

	sess := &auth.Session{User: &auth.AuthUser{ID: "u1", Email: "a@example.com"}}
	setCookie, err := store.Commit(sess)
	require.NoError(t, err)

	loaded, err := store.Load(cookieHeaderOf(setCookie))
	require.NoError(t, err)
	_, err = store.Destroy(loaded)
	require.NoError(t, err)

	gone, err := store.Load(cookieHeaderOf(setCookie))
	require.NoError(t, err)
	assert.Nil(t, gone.User, "destroyed token resolves to a fresh session")
}

func TestSessionPopFlash(t *testing.T) {
	sess := &auth.Session{Flash: "Invalid credentials"}
	assert.Equal(t, "Invalid credentials", sess.PopFlash())
	assert.Empty(t, sess.PopFlash(), "flash is one-shot")
}
