// Package web translates authentication Results into HTTP responses. It is
// the only place where the core's exit signals (success, redirect, typed
// failure) meet status codes and headers.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	auth "github.com/notekeep/auth"
	oauthweb "github.com/notekeep/auth/oauth2"
)

// Server mounts the authentication routes.
type Server struct {
	Auth   *auth.Authenticator
	Google *oauthweb.GoogleOAuth // optional; google routes 404 without it
	Logger *slog.Logger
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Routes builds the router. Paths mirror the app's auth pages.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/signup", s.handlePassword(auth.IntentSignup)).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handlePassword(auth.IntentLogin)).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/forgot-password", s.handleForgotPassword).Methods(http.MethodPost)
	r.HandleFunc("/verify", s.handleVerify).Methods(http.MethodPost)
	r.HandleFunc("/magic-link", s.handleMagicLink).Methods(http.MethodGet)
	r.HandleFunc("/reset-password", s.handleResetPassword).Methods(http.MethodPost)

	if s.Google != nil {
		s.Google.HandleProfile = s.completeGoogleLogin
		r.HandleFunc("/auth/google", s.Google.HandleRedirect).Methods(http.MethodGet)
		r.HandleFunc("/auth/google/callback", s.Google.HandleCallback).Methods(http.MethodGet)
	}

	r.Handle("/notes", s.RequireUser(http.HandlerFunc(notImplemented))).Methods(http.MethodGet, http.MethodPost)
	return r
}

func (s *Server) handlePassword(intent auth.Intent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := parseBody(r)
		if err != nil {
			writeError(w, auth.NewAuthError(auth.ErrCodeValidation, "Invalid request body", ""))
			return
		}
		cred := auth.PasswordCredential{
			Email:    body["email"],
			Password: body["password"],
			Intent:   intent,
		}
		res := s.Auth.Authenticate(r.Context(), auth.StrategyPassword, cred, r.Header.Get("Cookie"), auth.Options{
			SuccessRedirect: "/notes",
		})
		s.writeResult(w, r, res)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	setCookie, err := s.Auth.Logout(r.Header.Get("Cookie"))
	if err != nil {
		s.logger().Error("logout failed", "err", err)
		http.Error(w, "Sorry, something went wrong, please try again later.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Set-Cookie", setCookie)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleForgotPassword dispatches a one-time code. The success redirect
// lands on the verification page; the code itself travels in the committed
// session.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	body, err := parseBody(r)
	if err != nil {
		writeError(w, auth.NewAuthError(auth.ErrCodeValidation, "Invalid request body", ""))
		return
	}
	res := s.Auth.Authenticate(r.Context(), auth.StrategyOneTimeCode,
		auth.CodeCredential{Email: body["email"]}, r.Header.Get("Cookie"), auth.Options{
			SuccessRedirect: "/verify",
			FailureRedirect: "/forgot-password",
		})
	s.writeResult(w, r, res)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	body, err := parseBody(r)
	if err != nil {
		writeError(w, auth.NewAuthError(auth.ErrCodeValidation, "Invalid request body", ""))
		return
	}
	s.verifyCode(w, r, body["code"])
}

// handleMagicLink is the emailed shortcut: same verification, code in the
// query string. It only works in the browser that requested the code, since
// that is where the session cookie lives.
func (s *Server) handleMagicLink(w http.ResponseWriter, r *http.Request) {
	s.verifyCode(w, r, r.URL.Query().Get("code"))
}

func (s *Server) verifyCode(w http.ResponseWriter, r *http.Request, code string) {
	res := s.Auth.Authenticate(r.Context(), auth.StrategyOneTimeCode,
		auth.CodeCredential{Code: code}, r.Header.Get("Cookie"), auth.Options{
			SuccessRedirect: "/reset-password",
			FailureRedirect: "/verify",
		})
	s.writeResult(w, r, res)
}

// handleResetPassword requires an authenticated session, which the one-time
// code verification just established.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	user := s.Auth.IsAuthenticated(r.Header.Get("Cookie"))
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	body, err := parseBody(r)
	if err != nil {
		writeError(w, auth.NewAuthError(auth.ErrCodeValidation, "Invalid request body", ""))
		return
	}
	password, confirm := body["password"], body["confirmPassword"]
	if confirm != "" && confirm != password {
		writeError(w, auth.NewAuthError(auth.ErrCodeValidation,
			"Password and Confirm password must match", "confirmPassword"))
		return
	}

	if _, err := s.Auth.ResetPassword(r.Context(), user.Email, password); err != nil {
		ae := authErr(err)
		if !ae.Recoverable() {
			s.logger().Error("password reset failed", "err", err)
		}
		writeError(w, ae)
		return
	}
	http.Redirect(w, r, "/notes", http.StatusFound)
}

func (s *Server) completeGoogleLogin(profile auth.ProviderProfile, w http.ResponseWriter, r *http.Request) {
	res := s.Auth.Authenticate(r.Context(), auth.StrategyGoogle,
		auth.ProviderCredential{Profile: profile}, r.Header.Get("Cookie"), auth.Options{
			SuccessRedirect: "/notes",
			FailureRedirect: "/login",
		})
	s.writeResult(w, r, res)
}

// writeResult maps the core's exit signals onto HTTP.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res auth.Result) {
	if res.SetCookie != "" {
		w.Header().Set("Set-Cookie", res.SetCookie)
	}
	switch res.Kind {
	case auth.KindRedirect:
		http.Redirect(w, r, res.RedirectTo, http.StatusFound)
	case auth.KindSuccess:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"success": true, "user": res.User})
	case auth.KindFailure:
		if res.Err != nil && !res.Err.Recoverable() {
			s.logger().Error("authentication failed", "code", res.Err.Code, "err", res.Err)
		}
		writeError(w, res.Err)
	}
}

// writeError renders a typed error as JSON. Recoverable errors keep their
// message and field for inline display; everything else collapses to a
// generic message.
func writeError(w http.ResponseWriter, ae *auth.AuthError) {
	status := http.StatusBadRequest
	switch {
	case ae == nil:
		ae = auth.NewAuthError(auth.ErrCodeValidation, "Authentication failed", "")
	case ae.Code == auth.ErrCodeInvalidCreds:
		status = http.StatusUnauthorized
	case !ae.Recoverable():
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": ae.UserMessage(),
		"code":  ae.Code,
		"field": ae.Field,
	})
}

func authErr(err error) *auth.AuthError {
	if ae, ok := err.(*auth.AuthError); ok {
		return ae
	}
	return auth.NewAuthError(auth.ErrCodeUpstreamTimeout, "Authentication failed", "")
}

// parseBody accepts both form posts and JSON bodies.
func parseBody(r *http.Request) (map[string]string, error) {
	out := make(map[string]string)
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var data map[string]any
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			return nil, err
		}
		for k, v := range data {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
		return out, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	for k := range r.PostForm {
		out[k] = r.PostForm.Get(k)
	}
	return out, nil
}

func notImplemented(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "notes are not implemented here", http.StatusNotImplemented)
}
