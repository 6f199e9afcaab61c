package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
)

// scs session keys.
const (
	scsKeyUser    = "authUser"
	scsKeyPending = "pendingCode"
	scsKeyFlash   = "flash"
)

// SCSSessionStore is the server-side alternative to CookieSessionStore: the
// cookie carries only an opaque token and the session data lives in the
// scs.SessionManager's store. Same contract, swappable behind SessionStore.
type SCSSessionStore struct {
	Manager *scs.SessionManager
}

// NewSCSSessionStore builds a manager with the same cookie policy as the
// cookie-backed store (name, path, lifetime, SameSite, HttpOnly, Secure).
func NewSCSSessionStore(secure bool) *SCSSessionStore {
	manager := scs.New()
	manager.Lifetime = SessionMaxAge
	manager.Cookie.Name = SessionCookieName
	manager.Cookie.Path = "/"
	manager.Cookie.HttpOnly = true
	manager.Cookie.SameSite = http.SameSiteLaxMode
	manager.Cookie.Secure = secure
	return &SCSSessionStore{Manager: manager}
}

func (s *SCSSessionStore) Load(cookieHeader string) (*Session, error) {
	token := cookieValue(cookieHeader, s.Manager.Cookie.Name)
	ctx, err := s.Manager.Load(context.Background(), token)
	if err != nil {
		// An unknown or expired token loads as a fresh session; only a
		// backend failure reaches here.
		return nil, err
	}

	sess := &Session{token: token, scsCtx: ctx}
	if data := s.Manager.GetBytes(ctx, scsKeyUser); len(data) > 0 {
		var user AuthUser
		if err := json.Unmarshal(data, &user); err == nil {
			sess.User = &user
		}
	}
	if data := s.Manager.GetBytes(ctx, scsKeyPending); len(data) > 0 {
		var pending PendingCode
		if err := json.Unmarshal(data, &pending); err == nil {
			sess.Pending = &pending
		}
	}
	sess.Flash = s.Manager.GetString(ctx, scsKeyFlash)
	return sess, nil
}

func (s *SCSSessionStore) Commit(sess *Session) (string, error) {
	ctx, err := s.sessionCtx(sess)
	if err != nil {
		return "", err
	}

	if sess.User != nil {
		data, err := json.Marshal(sess.User)
		if err != nil {
			return "", err
		}
		s.Manager.Put(ctx, scsKeyUser, data)
	} else {
		s.Manager.Remove(ctx, scsKeyUser)
	}
	if sess.Pending != nil {
		data, err := json.Marshal(sess.Pending)
		if err != nil {
			return "", err
		}
		s.Manager.Put(ctx, scsKeyPending, data)
	} else {
		s.Manager.Remove(ctx, scsKeyPending)
	}
	if sess.Flash != "" {
		s.Manager.Put(ctx, scsKeyFlash, sess.Flash)
	} else {
		s.Manager.Remove(ctx, scsKeyFlash)
	}

	token, expiry, err := s.Manager.Commit(ctx)
	if err != nil {
		return "", err
	}
	sess.token = token

	cookie := &http.Cookie{
		Name:     s.Manager.Cookie.Name,
		Value:    token,
		Path:     s.Manager.Cookie.Path,
		Expires:  expiry,
		MaxAge:   int(time.Until(expiry) / time.Second),
		HttpOnly: s.Manager.Cookie.HttpOnly,
		SameSite: s.Manager.Cookie.SameSite,
		Secure:   s.Manager.Cookie.Secure,
	}
	return cookie.String(), nil
}

func (s *SCSSessionStore) Destroy(sess *Session) (string, error) {
	ctx, err := s.sessionCtx(sess)
	if err != nil {
		return "", err
	}
	if err := s.Manager.Destroy(ctx); err != nil {
		return "", err
	}
	sess.User = nil
	sess.Pending = nil
	sess.Flash = ""
	sess.token = ""
	sess.scsCtx = nil

	cookie := &http.Cookie{
		Name:     s.Manager.Cookie.Name,
		Value:    "",
		Path:     s.Manager.Cookie.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: s.Manager.Cookie.HttpOnly,
		SameSite: s.Manager.Cookie.SameSite,
		Secure:   s.Manager.Cookie.Secure,
	}
	return cookie.String(), nil
}

// sessionCtx returns the scs context a session was loaded with, creating a
// fresh one for sessions built outside Load.
func (s *SCSSessionStore) sessionCtx(sess *Session) (context.Context, error) {
	if sess.scsCtx != nil {
		return sess.scsCtx, nil
	}
	ctx, err := s.Manager.Load(context.Background(), sess.token)
	if err != nil {
		return nil, err
	}
	sess.scsCtx = ctx
	return ctx, nil
}
