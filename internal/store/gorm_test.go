package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mohitgusain8671/VoiceNote/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	s := NewGorm(db)
	t.Cleanup(func() { s.Close(context.Background()) })

	return s
}

func user(id, email string) *model.User {
	return &model.User{ID: id, Email: email, PasswordHash: "hash", FirstName: "Ada"}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateUser(ctx, user("userAAAAAAAAAAAA", "ada@example.com")))

	err := s.CreateUser(ctx, user("userBBBBBBBBBBBB", "ada@example.com"))
	assert.ErrorIs(t, err, ErrDuplicate)

	u, err := s.UserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.False(t, u.Verified)

	require.NoError(t, s.MarkUserVerified(ctx, u.ID))
	require.NoError(t, s.UpdatePassword(ctx, u.ID, "newhash"))

	u, err = s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, u.Verified)
	assert.Equal(t, "newhash", u.PasswordHash)

	require.NoError(t, s.DeleteUser(ctx, u.ID))

	_, err = s.UserByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.MarkUserVerified(ctx, u.ID), ErrNotFound)
}

func TestTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.CreateUser(ctx, user("userAAAAAAAAAAAA", "ada@example.com")))

	require.NoError(t, s.CreateToken(ctx, &model.Token{
		ID: "tokAAAAAAAAAAAAA", UserID: "userAAAAAAAAAAAA", Value: "123456",
		Kind: model.ForgotPassword, ExpiresAt: now.Add(10 * time.Minute),
	}))
	require.NoError(t, s.CreateToken(ctx, &model.Token{
		ID: "tokBBBBBBBBBBBBB", UserID: "userAAAAAAAAAAAA", Value: "654321",
		Kind: model.ForgotPassword, ExpiresAt: now.Add(-time.Minute),
	}))
	require.NoError(t, s.CreateToken(ctx, &model.Token{
		ID: "tokCCCCCCCCCCCCC", UserID: "userAAAAAAAAAAAA", Value: "jwt",
		Kind: model.EmailVerification, ExpiresAt: now.Add(time.Hour),
	}))

	tok, err := s.UsableToken(ctx, model.ForgotPassword, "userAAAAAAAAAAAA", "123456", now)
	require.NoError(t, err)
	assert.Equal(t, "tokAAAAAAAAAAAAA", tok.ID)
	assert.Equal(t, model.ForgotPassword, tok.Kind)

	_, err = s.UsableToken(ctx, model.ForgotPassword, "userAAAAAAAAAAAA", "654321", now)
	assert.ErrorIs(t, err, ErrNotFound, "expired")

	_, err = s.UsableToken(ctx, model.EmailVerification, "", "123456", now)
	assert.ErrorIs(t, err, ErrNotFound, "wrong kind")

	_, err = s.UsableToken(ctx, model.EmailVerification, "", "jwt", now)
	assert.NoError(t, err, "any owner")

	require.NoError(t, s.ExtendToken(ctx, "tokBBBBBBBBBBBBB", now.Add(time.Hour)))
	_, err = s.UsableToken(ctx, model.ForgotPassword, "userAAAAAAAAAAAA", "654321", now)
	assert.NoError(t, err, "extended")

	require.NoError(t, s.DeleteUserTokensOfKind(ctx, "userAAAAAAAAAAAA", model.ForgotPassword))
	_, err = s.TokenByID(ctx, "tokAAAAAAAAAAAAA")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.TokenByID(ctx, "tokCCCCCCCCCCCCC")
	assert.NoError(t, err)

	require.NoError(t, s.DeleteUserTokens(ctx, "userAAAAAAAAAAAA"))
	_, err = s.TokenByID(ctx, "tokCCCCCCCCCCCCC")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteExpiredTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.CreateUser(ctx, user("userAAAAAAAAAAAA", "ada@example.com")))
	require.NoError(t, s.CreateToken(ctx, &model.Token{ID: "old", UserID: "userAAAAAAAAAAAA", Value: "1", Kind: model.ForgotPassword, ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, s.CreateToken(ctx, &model.Token{ID: "new", UserID: "userAAAAAAAAAAAA", Value: "2", Kind: model.ForgotPassword, ExpiresAt: now.Add(time.Hour)}))

	n, err := s.DeleteExpiredTokens(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.TokenByID(ctx, "new")
	assert.NoError(t, err)
}

func TestTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	boom := errors.New("boom")

	err := s.Tx(ctx, func(ctx context.Context, tx Store) error {
		require.NoError(t, tx.CreateUser(ctx, user("userAAAAAAAAAAAA", "ada@example.com")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.UserByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateUser(ctx, user("userAAAAAAAAAAAA", "ada@example.com")))
	require.NoError(t, s.CreateUser(ctx, user("userBBBBBBBBBBBB", "bob@example.com")))

	summary := "short"
	first := &model.Note{ID: "noteAAAAAAAAAAAA", UserID: "userAAAAAAAAAAAA", Title: "one", Transcription: "1", Summary: &summary}
	second := &model.Note{
		ID: "noteBBBBBBBBBBBB", UserID: "userAAAAAAAAAAAA", Title: "two", Transcription: "2",
		AudioFile: model.Attachment{FilePath: "userAAAAAAAAAAAA_1.webm", OriginalName: "recording.webm", MimeType: "audio/webm"},
	}

	require.NoError(t, s.CreateNote(ctx, first))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.CreateNote(ctx, second))

	notes, err := s.NotesByUser(ctx, "userAAAAAAAAAAAA")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "noteBBBBBBBBBBBB", notes[0].ID, "most recently updated first")
	assert.Equal(t, "userAAAAAAAAAAAA_1.webm", notes[0].AudioFile.FilePath)

	// Touching the older note moves it to the front
	time.Sleep(5 * time.Millisecond)
	title := "one edited"
	require.NoError(t, s.EditNote(ctx, "userAAAAAAAAAAAA", first.ID, NoteEdit{Title: &title}))

	notes, err = s.NotesByUser(ctx, "userAAAAAAAAAAAA")
	require.NoError(t, err)
	assert.Equal(t, "noteAAAAAAAAAAAA", notes[0].ID)
	assert.Equal(t, "one edited", notes[0].Title)
	require.NotNil(t, notes[0].Summary, "a title edit keeps the summary")

	text := "1 edited"
	require.NoError(t, s.EditNote(ctx, "userAAAAAAAAAAAA", first.ID, NoteEdit{Transcription: &text}))

	got, err := s.NoteByID(ctx, "userAAAAAAAAAAAA", first.ID)
	require.NoError(t, err)
	assert.Equal(t, "1 edited", got.Transcription)
	assert.Nil(t, got.Summary)

	_, err = s.NoteByID(ctx, "userBBBBBBBBBBBB", "noteAAAAAAAAAAAA")
	assert.ErrorIs(t, err, ErrNotFound, "not owned")

	assert.ErrorIs(t, s.EditNote(ctx, "userBBBBBBBBBBBB", second.ID, NoteEdit{Title: &title}), ErrNotFound)
	assert.ErrorIs(t, s.SetAudio(ctx, "userBBBBBBBBBBBB", second.ID, model.Attachment{FilePath: "x"}), ErrNotFound)
	assert.ErrorIs(t, s.DeleteNote(ctx, "userBBBBBBBBBBBB", second.ID), ErrNotFound)

	paths, err := s.AudioPaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"userAAAAAAAAAAAA_1.webm"}, paths)

	inUse, err := s.AudioInUse(ctx, "userAAAAAAAAAAAA_1.webm")
	require.NoError(t, err)
	assert.True(t, inUse)

	inUse, err = s.AudioInUse(ctx, "userAAAAAAAAAAAA_2.webm")
	require.NoError(t, err)
	assert.False(t, inUse)

	require.NoError(t, s.DeleteNote(ctx, "userAAAAAAAAAAAA", second.ID))
	_, err = s.NoteByID(ctx, "userAAAAAAAAAAAA", second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetSummary(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateUser(ctx, user("userAAAAAAAAAAAA", "ada@example.com")))
	require.NoError(t, s.CreateNote(ctx, &model.Note{ID: "noteAAAAAAAAAAAA", UserID: "userAAAAAAAAAAAA", Title: "a", Transcription: "current"}))

	err := s.SetSummary(ctx, "userAAAAAAAAAAAA", "noteAAAAAAAAAAAA", "stale", "summary of stale")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.NoteByID(ctx, "userAAAAAAAAAAAA", "noteAAAAAAAAAAAA")
	require.NoError(t, err)
	assert.Nil(t, n.Summary)

	require.NoError(t, s.SetSummary(ctx, "userAAAAAAAAAAAA", "noteAAAAAAAAAAAA", "current", "summary of current"))

	n, err = s.NoteByID(ctx, "userAAAAAAAAAAAA", "noteAAAAAAAAAAAA")
	require.NoError(t, err)
	require.NotNil(t, n.Summary)
	assert.Equal(t, "summary of current", *n.Summary)
	assert.Equal(t, "current", n.Transcription)
}

func TestSetAudio(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	summary := "kept"
	require.NoError(t, s.CreateUser(ctx, user("userAAAAAAAAAAAA", "ada@example.com")))
	require.NoError(t, s.CreateNote(ctx, &model.Note{
		ID: "noteAAAAAAAAAAAA", UserID: "userAAAAAAAAAAAA", Title: "a", Transcription: "text", Summary: &summary,
		AudioFile: model.Attachment{FilePath: "userAAAAAAAAAAAA_1.webm", OriginalName: "recording.webm", MimeType: "audio/webm"},
	}))

	duration := 2.5
	audio := model.Attachment{FilePath: "userAAAAAAAAAAAA_2.mp3", OriginalName: "b.mp3", MimeType: "audio/mpeg", Size: 7, Duration: &duration}
	require.NoError(t, s.SetAudio(ctx, "userAAAAAAAAAAAA", "noteAAAAAAAAAAAA", audio))

	n, err := s.NoteByID(ctx, "userAAAAAAAAAAAA", "noteAAAAAAAAAAAA")
	require.NoError(t, err)
	assert.Equal(t, audio, n.AudioFile)
	assert.Equal(t, "text", n.Transcription)
	require.NotNil(t, n.Summary)
	assert.Equal(t, "kept", *n.Summary)
}

func TestNoteStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateUser(ctx, user("userAAAAAAAAAAAA", "ada@example.com")))

	stats, err := s.NoteStats(ctx, "userAAAAAAAAAAAA")
	require.NoError(t, err)
	assert.Equal(t, model.NoteStats{}, *stats)

	summary := "s"
	require.NoError(t, s.CreateNote(ctx, &model.Note{ID: "noteAAAAAAAAAAAA", UserID: "userAAAAAAAAAAAA", Title: "a", Transcription: "a", Summary: &summary}))
	require.NoError(t, s.CreateNote(ctx, &model.Note{ID: "noteBBBBBBBBBBBB", UserID: "userAAAAAAAAAAAA", Title: "b", Transcription: "b"}))
	require.NoError(t, s.CreateNote(ctx, &model.Note{ID: "noteCCCCCCCCCCCC", UserID: "userAAAAAAAAAAAA", Title: "c", Transcription: "c"}))

	stats, err = s.NoteStats(ctx, "userAAAAAAAAAAAA")
	require.NoError(t, err)
	assert.Equal(t, model.NoteStats{TotalNotes: 3, NotesWithSummary: 1, NotesWithoutSummary: 2}, *stats)
}
