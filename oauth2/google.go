// Package oauth2 implements the browser-facing half of federated login: the
// provider redirect and the callback that turns an authorization code into a
// ProviderProfile for the auth core.
package oauth2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	auth "github.com/notekeep/auth"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// HandleProfileFunc receives the verified provider profile after a
// successful callback and finishes the login (typically via the
// Authenticator's google strategy).
type HandleProfileFunc func(profile auth.ProviderProfile, w http.ResponseWriter, r *http.Request)

// GoogleOAuth holds the OAuth2 configuration for Google federated login.
type GoogleOAuth struct {
	Config        oauth2.Config
	HandleProfile HandleProfileFunc
	Logger        *slog.Logger

	// FailureRedirect is where state or exchange failures land. Defaults
	// to /login.
	FailureRedirect string

	// userinfo fetches the profile document; overridable in tests.
	userinfo func(ctx context.Context, token *oauth2.Token) ([]byte, error)
}

func NewGoogleOAuth(clientID, clientSecret, callbackURL string, handle HandleProfileFunc) *GoogleOAuth {
	g := &GoogleOAuth{
		Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		HandleProfile:   handle,
		FailureRedirect: "/login",
	}
	g.userinfo = g.fetchUserinfo
	return g
}

func (g *GoogleOAuth) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// HandleRedirect starts the flow: set the state cookie and send the browser
// to Google's consent screen.
func (g *GoogleOAuth) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	state := generateStateCookie(w)
	http.Redirect(w, r, g.Config.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback completes the flow: check state, exchange the code, fetch
// the userinfo document and hand the profile to HandleProfile.
func (g *GoogleOAuth) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.FormValue("state") != stateCookie.Value {
		g.logger().Warn("oauth state mismatch")
		clearStateCookie(w)
		http.Redirect(w, r, g.FailureRedirect, http.StatusFound)
		return
	}
	clearStateCookie(w)

	token, err := g.Config.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		g.logger().Warn("oauth code exchange failed", "err", err)
		http.Redirect(w, r, g.FailureRedirect, http.StatusFound)
		return
	}

	data, err := g.userinfo(r.Context(), token)
	if err != nil {
		g.logger().Warn("oauth userinfo fetch failed", "err", err)
		http.Redirect(w, r, g.FailureRedirect, http.StatusFound)
		return
	}

	var info struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		g.logger().Warn("oauth userinfo decode failed", "err", err)
		http.Redirect(w, r, g.FailureRedirect, http.StatusFound)
		return
	}

	profile := auth.ProviderProfile{
		Provider: "google",
		Subject:  info.ID,
		Name:     info.Name,
		Emails:   []auth.ProfileEmail{{Value: info.Email, Verified: info.VerifiedEmail}},
	}
	g.HandleProfile(profile, w, r)
}

func (g *GoogleOAuth) fetchUserinfo(ctx context.Context, token *oauth2.Token) ([]byte, error) {
	client := g.Config.Client(ctx, token)
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
