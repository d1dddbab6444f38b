// Package store persists users, tokens and notes. Two backends exist: gorm
// (sqlite or postgres) and MongoDB. Both satisfy Store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/mohitgusain8671/VoiceNote/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Users interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id string) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	MarkUserVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	DeleteUser(ctx context.Context, id string) error
}

type Tokens interface {
	CreateToken(ctx context.Context, t *model.Token) error
	TokenByID(ctx context.Context, id string) (*model.Token, error)
	// UsableToken finds an unexpired token of kind with the given value. An
	// empty userID matches any owner.
	UsableToken(ctx context.Context, kind model.TokenKind, userID, value string, now time.Time) (*model.Token, error)
	ExtendToken(ctx context.Context, id string, expiresAt time.Time) error
	DeleteToken(ctx context.Context, id string) error
	DeleteUserTokens(ctx context.Context, userID string) error
	DeleteUserTokensOfKind(ctx context.Context, userID string, kind model.TokenKind) error
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type Notes interface {
	CreateNote(ctx context.Context, n *model.Note) error
	// NotesByUser returns the user's notes, most recently updated first
	NotesByUser(ctx context.Context, userID string) ([]model.Note, error)
	NoteByID(ctx context.Context, userID, id string) (*model.Note, error)
	// EditNote changes the title and/or transcription. A new transcription
	// clears the summary.
	EditNote(ctx context.Context, userID, id string, e NoteEdit) error
	// SetSummary stores summary only while the note still carries the
	// transcription it was generated from. Otherwise ErrNotFound.
	SetSummary(ctx context.Context, userID, id, transcription, summary string) error
	SetAudio(ctx context.Context, userID, id string, a model.Attachment) error
	// AudioInUse reports whether any note references the recording
	AudioInUse(ctx context.Context, path string) (bool, error)
	DeleteNote(ctx context.Context, userID, id string) error
	NoteStats(ctx context.Context, userID string) (*model.NoteStats, error)
	// AudioPaths lists every attachment path referenced by any note
	AudioPaths(ctx context.Context) ([]string, error)
}

// NoteEdit holds the note fields to change. Nil means unchanged.
type NoteEdit struct {
	Title         *string
	Transcription *string
}

// Store is the full persistence surface. Tx runs fn as one unit of work: the
// Store handed to fn commits together with everything else fn does, or not
// at all if fn returns an error. fn must use the ctx it is given.
type Store interface {
	Users
	Tokens
	Notes

	Tx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
	Close(ctx context.Context) error
}
