// Package auth is the authentication core of the NoteKeep notes
// application: a multi-strategy login system over a signed, cookie-backed
// session store.
//
// Three strategies are built in. The password strategy ("user-pass") covers
// signup and login with scrypt-hashed credentials. The one-time-code
// strategy ("TOTP") drives password reset: a 6-digit, 5-minute, single-use
// code is emailed to the account holder and kept inside the signed session
// until verified. The Google strategy ("google") completes a federated
// login, linking to an existing account by email or creating a passwordless
// one.
//
// The Authenticator ties them together: it dispatches a Credential to the
// named strategy, binds the resulting identity into the session, and reports
// the outcome as an explicit Result (success, redirect or typed failure)
// rather than panicking or writing HTTP itself. Route handlers in the web
// package translate Results into responses.
//
// Persistence and delivery are interfaces (UserStore, EmailSender,
// SessionStore) with implementations under stores/ and in this package.
package auth
