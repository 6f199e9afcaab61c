package gorm

import (
	"time"
)

// UserModel is the GORM model for users. Email carries the unique index the
// auth core relies on for duplicate-signup safety.
type UserModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

// NoteModel is registered for migrations only; note CRUD lives outside the
// auth core.
type NoteModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"size:36;index"`
	Title     string `gorm:"size:255;not null;index"`
	Content   string `gorm:"not null"`
	Archived  bool   `gorm:"default:false;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NoteModel) TableName() string { return "notes" }
