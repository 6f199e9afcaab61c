// Package notes specifies the note-taking collaborator at its interface.
// The auth core does not implement it; handlers mounted over it respond 501
// until a real implementation is wired in.
package notes

import (
	"context"
	"errors"
	"time"
)

var ErrNotImplemented = errors.New("notes: not implemented")

// Note is one note owned by a user.
type Note struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Tags      []string
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the persistence boundary for notes.
type Store interface {
	List(ctx context.Context, userID string) ([]*Note, error)
	Get(ctx context.Context, userID, id string) (*Note, error)
	Create(ctx context.Context, note *Note) (*Note, error)
	Update(ctx context.Context, note *Note) (*Note, error)
	Archive(ctx context.Context, userID, id string) error
}
