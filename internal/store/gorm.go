package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohitgusain8671/VoiceNote/internal/model"

	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the tables used by the store
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.Token{}, &model.Note{})
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}

	return err
}

func affected(r *gorm.DB) error {
	if r.Error != nil {
		return translate(r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *GormStore) Tx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &GormStore{db: tx})
	})
}

func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

//
// Users
//

func (s *GormStore) CreateUser(ctx context.Context, u *model.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) UserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := s.db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (s *GormStore) MarkUserVerified(ctx context.Context, id string) error {
	return affected(s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("verified", true))
}

func (s *GormStore) UpdatePassword(ctx context.Context, id, hash string) error {
	return affected(s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", hash))
}

func (s *GormStore) DeleteUser(ctx context.Context, id string) error {
	return affected(s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.User{}))
}

//
// Tokens
//

func (s *GormStore) CreateToken(ctx context.Context, t *model.Token) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *GormStore) TokenByID(ctx context.Context, id string) (*model.Token, error) {
	var t model.Token

	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&t).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &t, nil
}

func (s *GormStore) UsableToken(ctx context.Context, kind model.TokenKind, userID, value string, now time.Time) (*model.Token, error) {
	var t model.Token

	q := s.db.WithContext(ctx).
		Where("kind = ? AND value = ? AND expires_at > ?", kind, value, now)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	if err := q.First(&t).Error; err != nil {
		return nil, translate(err)
	}

	return &t, nil
}

func (s *GormStore) ExtendToken(ctx context.Context, id string, expiresAt time.Time) error {
	return affected(s.db.WithContext(ctx).
		Model(&model.Token{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt))
}

func (s *GormStore) DeleteToken(ctx context.Context, id string) error {
	return affected(s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Token{}))
}

func (s *GormStore) DeleteUserTokens(ctx context.Context, userID string) error {
	return translate(s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Token{}).
		Error)
}

func (s *GormStore) DeleteUserTokensOfKind(ctx context.Context, userID string, kind model.TokenKind) error {
	return translate(s.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		Delete(&model.Token{}).
		Error)
}

func (s *GormStore) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	r := s.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.Token{})

	return r.RowsAffected, translate(r.Error)
}

//
// Notes
//

func (s *GormStore) CreateNote(ctx context.Context, n *model.Note) error {
	return translate(s.db.WithContext(ctx).Create(n).Error)
}

func (s *GormStore) NotesByUser(ctx context.Context, userID string) ([]model.Note, error) {
	notes := []model.Note{}

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&notes).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return notes, nil
}

func (s *GormStore) NoteByID(ctx context.Context, userID, id string) (*model.Note, error) {
	var n model.Note

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&n).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &n, nil
}

func (s *GormStore) EditNote(ctx context.Context, userID, id string, e NoteEdit) error {
	fields := map[string]any{}
	if e.Title != nil {
		fields["title"] = *e.Title
	}
	if e.Transcription != nil {
		fields["transcription"] = *e.Transcription
		fields["summary"] = nil
	}

	if len(fields) == 0 {
		return nil
	}

	return affected(s.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(fields))
}

func (s *GormStore) SetSummary(ctx context.Context, userID, id, transcription, summary string) error {
	return affected(s.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("user_id = ? AND id = ? AND transcription = ?", userID, id, transcription).
		Update("summary", summary))
}

func (s *GormStore) SetAudio(ctx context.Context, userID, id string, a model.Attachment) error {
	return affected(s.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]any{
			"audio_file_path":     a.FilePath,
			"audio_original_name": a.OriginalName,
			"audio_mime_type":     a.MimeType,
			"audio_size":          a.Size,
			"audio_duration":      a.Duration,
		}))
}

func (s *GormStore) AudioInUse(ctx context.Context, path string) (bool, error) {
	var n int64

	err := s.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("audio_file_path = ?", path).
		Count(&n).
		Error
	if err != nil {
		return false, translate(err)
	}

	return n > 0, nil
}

func (s *GormStore) DeleteNote(ctx context.Context, userID, id string) error {
	return affected(s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.Note{}))
}

func (s *GormStore) NoteStats(ctx context.Context, userID string) (*model.NoteStats, error) {
	var stats model.NoteStats

	err := s.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("user_id = ?", userID).
		Select("count(*) AS total_notes, count(summary) AS notes_with_summary").
		Scan(&stats).
		Error
	if err != nil {
		return nil, translate(err)
	}

	stats.NotesWithoutSummary = stats.TotalNotes - stats.NotesWithSummary
	return &stats, nil
}

func (s *GormStore) AudioPaths(ctx context.Context) ([]string, error) {
	var paths []string

	err := s.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("audio_file_path IS NOT NULL AND audio_file_path <> ''").
		Pluck("audio_file_path", &paths).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return paths, nil
}
