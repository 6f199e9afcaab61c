package web

import (
	"context"
	"net/http"
	"net/url"

	auth "github.com/notekeep/auth"
)

type contextKey string

const userContextKey contextKey = "authUser"

// UserFromContext returns the authenticated user a middleware attached, or
// nil.
func UserFromContext(ctx context.Context) *auth.AuthUser {
	user, _ := ctx.Value(userContextKey).(*auth.AuthUser)
	return user
}

// ExtractUser resolves the session user, if any, and makes it available to
// downstream handlers. It performs no redirects.
func (s *Server) ExtractUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := s.Auth.IsAuthenticated(r.Header.Get("Cookie")); user != nil {
			r = r.WithContext(context.WithValue(r.Context(), userContextKey, user))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser enforces a logged-in session, redirecting browsers to the
// login page with the original path as the callback.
func (s *Server) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := s.Auth.IsAuthenticated(r.Header.Get("Cookie"))
		if user == nil {
			target := "/login?callbackURL=" + url.QueryEscape(r.URL.Path)
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), userContextKey, user))
		next.ServeHTTP(w, r)
	})
}
