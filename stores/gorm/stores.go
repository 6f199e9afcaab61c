// Package gorm provides a GORM-backed UserStore for the auth core.
package gorm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	auth "github.com/notekeep/auth"
)

// AutoMigrate runs database migrations for all notekeep tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&NoteModel{},
	)
}

// UserStore implements auth.UserStore using GORM.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	var model UserModel
	err := s.db.WithContext(ctx).First(&model, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return model.toUser(), nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	var model UserModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return model.toUser(), nil
}

func (s *UserStore) Insert(ctx context.Context, user *auth.User) (*auth.User, error) {
	model := &UserModel{
		ID:           uuid.NewString(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, auth.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return model.toUser(), nil
}

func (s *UserStore) UpdatePasswordHash(ctx context.Context, id, hash string) (*auth.User, error) {
	var model UserModel
	tx := s.db.WithContext(ctx)
	if err := tx.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("update password: %w", err)
	}
	if err := tx.Model(&model).Update("password_hash", hash).Error; err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}
	model.PasswordHash = hash
	return model.toUser(), nil
}

// isDuplicateErr matches unique-constraint violations across drivers; GORM
// only translates them for dialects that opt in.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "duplicate key")
}

func (m *UserModel) toUser() *auth.User {
	return &auth.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
