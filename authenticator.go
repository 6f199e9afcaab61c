package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Strategy is a pluggable verification method producing a canonical user on
// success. A strategy may mutate the session (the one-time-code flow does)
// but never the authenticated-user slot; that is the Authenticator's job.
type Strategy interface {
	Name() string

	// Authenticate verifies the credential. Returning (nil, nil) means the
	// attempt made progress without producing a user yet (a code was
	// dispatched) and the session should be committed.
	Authenticate(ctx context.Context, cred Credential, sess *Session) (*AuthUser, error)
}

// ResultKind discriminates the three exit signals of the core.
type ResultKind int

const (
	KindSuccess ResultKind = iota
	KindRedirect
	KindFailure
)

func (k ResultKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRedirect:
		return "redirect"
	case KindFailure:
		return "failure"
	}
	return "unknown"
}

// Result is what an authentication attempt yields. Callers translate it into
// an HTTP response; the core never writes one itself. SetCookie, when
// non-empty, must be emitted for the session change to take effect.
type Result struct {
	Kind       ResultKind
	User       *AuthUser
	RedirectTo string
	Err        *AuthError
	SetCookie  string
}

// Options steer where an attempt lands. Empty redirects leave the result as
// a plain Success/Failure for the caller to render in place.
type Options struct {
	SuccessRedirect string
	FailureRedirect string
}

// DefaultUpstreamTimeout bounds every store and email call made during one
// authentication attempt.
const DefaultUpstreamTimeout = 5 * time.Second

// Authenticator orchestrates strategy selection, session binding and
// redirect/error signaling. Construct one per request or share one; it holds
// no per-request state.
type Authenticator struct {
	Users    UserStore
	Sessions SessionStore
	Sender   EmailSender
	Hasher   PasswordHasher

	// BaseURL is the public origin, used for magic links.
	BaseURL string

	// Timeout bounds upstream calls; zero means DefaultUpstreamTimeout.
	Timeout time.Duration

	Logger *slog.Logger

	strategies map[string]Strategy
}

// NewAuthenticator wires the three standard strategies over the given
// dependencies. Additional strategies can be added with Register.
func NewAuthenticator(users UserStore, sessions SessionStore, sender EmailSender, baseURL string) *Authenticator {
	a := &Authenticator{
		Users:    users,
		Sessions: sessions,
		Sender:   sender,
		Hasher:   NewScryptHasher(),
		BaseURL:  baseURL,
	}
	a.Register(&PasswordStrategy{Users: users, Hasher: a.Hasher})
	a.Register(&OneTimeCodeStrategy{Users: users, Sender: sender, BaseURL: baseURL})
	a.Register(&GoogleStrategy{Users: users})
	return a
}

// Register adds or replaces a strategy under its own name.
func (a *Authenticator) Register(s Strategy) {
	if a.strategies == nil {
		a.strategies = make(map[string]Strategy)
	}
	a.strategies[s.Name()] = s
}

func (a *Authenticator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func (a *Authenticator) timeout() time.Duration {
	if a.Timeout > 0 {
		return a.Timeout
	}
	return DefaultUpstreamTimeout
}

// Authenticate runs one attempt against the named strategy.
//
// On success the resulting identity is bound into the session and the
// session committed. On failure the authenticated-user slot is left
// untouched; recoverable errors are additionally recorded as a one-shot
// flash message for the next page render. Strategy errors never propagate
// past this boundary - they come back inside the Result.
func (a *Authenticator) Authenticate(ctx context.Context, strategyName string, cred Credential, cookieHeader string, opts Options) Result {
	strategy, ok := a.strategies[strategyName]
	if !ok {
		// Programmer error: the route named a strategy that was never
		// registered.
		return Result{Kind: KindFailure, Err: NewAuthError(ErrCodeUnknownStrategy,
			fmt.Sprintf("unknown strategy %q", strategyName), "")}
	}

	sess, err := a.Sessions.Load(cookieHeader)
	if err != nil {
		return Result{Kind: KindFailure, Err: asAuthError(err)}
	}

	cctx, cancel := context.WithTimeout(ctx, a.timeout())
	defer cancel()

	user, err := strategy.Authenticate(cctx, cred, sess)
	if err != nil {
		return a.fail(sess, asAuthError(err), opts)
	}

	if user == nil {
		// Progress without an identity yet: persist what the strategy
		// put in the session and move the user along.
		return a.proceed(sess, opts.SuccessRedirect)
	}

	sess.User = user
	sess.Flash = ""
	setCookie, err := a.Sessions.Commit(sess)
	if err != nil {
		return Result{Kind: KindFailure, Err: asAuthError(err)}
	}

	res := Result{Kind: KindSuccess, User: user, SetCookie: setCookie}
	if opts.SuccessRedirect != "" {
		res.Kind = KindRedirect
		res.RedirectTo = opts.SuccessRedirect
	}
	return res
}

func (a *Authenticator) fail(sess *Session, ae *AuthError, opts Options) Result {
	res := Result{Kind: KindFailure, Err: ae}
	if ae.Fatal() {
		// Fatal errors skip session mutation entirely and are meant for a
		// top-level handler.
		a.logger().Error("authentication failed", "code", ae.Code, "err", ae)
		return res
	}

	sess.Flash = ae.UserMessage()
	if setCookie, err := a.Sessions.Commit(sess); err == nil {
		res.SetCookie = setCookie
	} else {
		a.logger().Warn("failed to commit session after auth failure", "err", err)
	}
	if opts.FailureRedirect != "" {
		res.Kind = KindRedirect
		res.RedirectTo = opts.FailureRedirect
	}
	return res
}

func (a *Authenticator) proceed(sess *Session, redirect string) Result {
	setCookie, err := a.Sessions.Commit(sess)
	if err != nil {
		return Result{Kind: KindFailure, Err: asAuthError(err)}
	}
	res := Result{Kind: KindSuccess, SetCookie: setCookie}
	if redirect != "" {
		res.Kind = KindRedirect
		res.RedirectTo = redirect
	}
	return res
}

// IsAuthenticated returns the session's authenticated user, or nil. It never
// mutates state and fails closed: a tampered or unreadable session is simply
// not authenticated.
func (a *Authenticator) IsAuthenticated(cookieHeader string) *AuthUser {
	sess, err := a.Sessions.Load(cookieHeader)
	if err != nil {
		a.logger().Warn("session load failed", "err", err)
		return nil
	}
	return sess.User
}

// Logout destroys the whole session - every slot, not just the user - and
// returns the clearing Set-Cookie value. Idempotent on an already-empty
// session.
func (a *Authenticator) Logout(cookieHeader string) (string, error) {
	sess, err := a.Sessions.Load(cookieHeader)
	if err != nil {
		sess = &Session{}
	}
	return a.Sessions.Destroy(sess)
}

// ResetPassword sets a new password for the account with the given email.
// Used after a one-time-code verification has authenticated the user.
func (a *Authenticator) ResetPassword(ctx context.Context, email, newPassword string) (*AuthUser, error) {
	if err := validateNewPassword(newPassword); err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, a.timeout())
	defer cancel()

	user, err := a.Users.FindByEmail(cctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewAuthError(ErrCodeUserNotFound, "User not found", "email")
		}
		return nil, asAuthError(err)
	}

	hash, err := a.Hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	updated, err := a.Users.UpdatePasswordHash(cctx, user.ID, hash)
	if err != nil {
		return nil, asAuthError(err)
	}
	return updated.authUser(), nil
}
