package auth

import (
	"context"
	"time"
)

// User is the account record owned by the UserStore. PasswordHash is empty
// for accounts created through federated login.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthUser is the canonical identity a strategy yields on success and the
// only shape stored in sessions. It never carries the password hash.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u *User) authUser() *AuthUser {
	return &AuthUser{ID: u.ID, Email: u.Email}
}

// UserStore is the persistence boundary for accounts. Email uniqueness is
// enforced here (unique index); the store is the safety net against
// concurrent duplicate signups, so Insert must map a uniqueness violation to
// ErrEmailTaken rather than an opaque failure. Missing records are reported
// as ErrNotFound.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)

	// Insert creates the user, assigning ID and timestamps.
	Insert(ctx context.Context, user *User) (*User, error)

	// UpdatePasswordHash replaces the stored hash and returns the updated
	// record.
	UpdatePasswordHash(ctx context.Context, id, hash string) (*User, error)
}
