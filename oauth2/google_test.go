package oauth2

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	auth "github.com/notekeep/auth"
)

func TestHandleRedirect(t *testing.T) {
	g := NewGoogleOAuth("client-id", "client-secret", "http://localhost:8080/auth/google/callback", nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	g.HandleRedirect(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}

	var state string
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookieName {
			state = c.Value
		}
	}
	if state == "" {
		t.Fatal("state cookie not set")
	}

	location := rec.Header().Get("Location")
	if !strings.Contains(location, "accounts.google.com") {
		t.Errorf("redirect should go to google, got %q", location)
	}
	if !strings.Contains(location, "state="+state) {
		t.Errorf("authorization URL should carry the state cookie value, got %q", location)
	}
	if !strings.Contains(location, "client_id=client-id") {
		t.Errorf("authorization URL should carry the client id, got %q", location)
	}
}

func TestHandleCallbackStateMismatch(t *testing.T) {
	g := NewGoogleOAuth("client-id", "client-secret", "http://localhost:8080/auth/google/callback", nil)

	tests := []struct {
		name   string
		cookie string
		state  string
	}{
		{"no cookie", "", "some-state"},
		{"mismatched state", "expected-state", "attacker-state"},
		{"empty state param", "expected-state", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state="+tt.state, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: stateCookieName, Value: tt.cookie})
			}
			g.HandleCallback(rec, req)

			if rec.Code != http.StatusFound {
				t.Fatalf("expected 302, got %d", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != "/login" {
				t.Errorf("expected redirect to /login, got %q", loc)
			}
		})
	}
}

func TestHandleCallbackSuccess(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-123",
			"token_type":   "Bearer",
		})
	}))
	defer tokenServer.Close()

	var got auth.ProviderProfile
	g := NewGoogleOAuth("client-id", "client-secret", "http://localhost:8080/auth/google/callback",
		func(profile auth.ProviderProfile, w http.ResponseWriter, r *http.Request) {
			got = profile
			w.WriteHeader(http.StatusOK)
		})
	g.Config.Endpoint = oauth2.Endpoint{TokenURL: tokenServer.URL}
	g.userinfo = func(context.Context, *oauth2.Token) ([]byte, error) {
		return []byte(`{"id":"sub-1","email":"g@example.com","verified_email":true,"name":"G User"}`), nil
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=expected", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "expected"})
	g.HandleCallback(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Provider != "google" || got.Subject != "sub-1" || got.Name != "G User" {
		t.Errorf("unexpected profile: %+v", got)
	}
	if got.PrimaryEmail() != "g@example.com" {
		t.Errorf("expected primary email g@example.com, got %q", got.PrimaryEmail())
	}

	// The single-use state cookie must be cleared either way.
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("state cookie was not cleared after the callback")
	}
}
