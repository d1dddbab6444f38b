package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/mohitgusain8671/VoiceNote/internal/apperr"
	"github.com/mohitgusain8671/VoiceNote/internal/model"
	"github.com/mohitgusain8671/VoiceNote/internal/storage"
	"github.com/mohitgusain8671/VoiceNote/internal/store"
	"github.com/mohitgusain8671/VoiceNote/pkg/security"
	"github.com/mohitgusain8671/VoiceNote/pkg/validators"

	"go.uber.org/zap"
)

const (
	defaultAudioExt  = ".webm"
	defaultAudioName = "recording.webm"
	defaultAudioMime = "audio/webm"
	maxExtLength     = 10
)

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// DurationProber measures recordings. It is optional.
type DurationProber interface {
	Duration(ctx context.Context, r io.Reader) (float64, error)
}

// Upload is an audio file received from a client, already validated
type Upload struct {
	Filename string
	MimeType string
	Size     int64
	Body     io.Reader
}

type CreateNoteInput struct {
	Title         string
	Transcription string
	AudioFilePath string
}

// UpdateNoteInput holds the fields to change. Nil means unchanged.
type UpdateNoteInput struct {
	Title         *string
	Transcription *string
}

type Transcription struct {
	Text          string   `json:"transcription"`
	AudioFilePath string   `json:"audioFilePath"`
	AudioURL      string   `json:"audioUrl"`
	Confidence    float64  `json:"confidence"`
	Duration      *float64 `json:"duration"`
}

type SummaryResult struct {
	Summary string
	Note    *model.Note
	Created bool
}

type NoteService struct {
	store       store.Store
	files       storage.Storage
	transcriber Transcriber
	summarizer  Summarizer
	prober      DurationProber
	log         *zap.Logger
	now         func() time.Time
}

// NewNoteService wires the note operations. prober may be nil.
func NewNoteService(s store.Store, files storage.Storage, t Transcriber, sum Summarizer, prober DurationProber, log *zap.Logger) *NoteService {
	return &NoteService{
		store:       s,
		files:       files,
		transcriber: t,
		summarizer:  sum,
		prober:      prober,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AudioKey names a stored recording. Keys are prefixed with the owner's ID
// which is how Create tells a user's uploads apart from everyone else's.
func AudioKey(userID string, at time.Time, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !validExt(ext) {
		ext = defaultAudioExt
	}

	return fmt.Sprintf("%s_%d%s", userID, at.UnixMilli(), ext)
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > maxExtLength || ext[0] != '.' {
		return false
	}

	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}

	return true
}

func ownsKey(userID, key string) bool {
	return storage.ValidKey(key) && strings.HasPrefix(key, userID+"_")
}

// checkAudioPath accepts a recording the user uploaded that exists and that
// no note is attached to yet
func (n *NoteService) checkAudioPath(ctx context.Context, userID, key string) error {
	if !ownsKey(userID, key) {
		return apperr.Validation("Invalid audio file path")
	}

	inUse, err := n.store.AudioInUse(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to look up audio file: %w", err)
	}

	if inUse {
		return apperr.Conflict("Audio file is already attached to a note")
	}

	ok, err := n.files.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to look up audio file: %w", err)
	}

	if !ok {
		return apperr.Validation("Audio file not found")
	}

	return nil
}

func (n *NoteService) withURL(note *model.Note) *model.Note {
	if !note.AudioFile.Empty() {
		note.AudioFile.URL = n.files.URL(note.AudioFile.FilePath)
	}

	return note
}

func (n *NoteService) findNote(ctx context.Context, userID, noteID string) (*model.Note, error) {
	if !security.ValidID(noteID) {
		return nil, apperr.Validation("Invalid note ID")
	}

	note, err := n.store.NoteByID(ctx, userID, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Note not found")
		}

		return nil, fmt.Errorf("failed to fetch note: %w", err)
	}

	return note, nil
}

// removeFiles deletes stored recordings and only logs failures
func (n *NoteService) removeFiles(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	// The request may already be cancelled, the cleanup should still run
	ctx = context.WithoutCancel(ctx)

	if err := n.files.Delete(ctx, keys...); err != nil {
		n.log.Warn("Failed to delete audio file", zap.Strings("keys", keys), zap.Error(err))
	}
}

// storeUpload saves the upload under a fresh key and returns the key and the
// file contents
func (n *NoteService) storeUpload(ctx context.Context, userID string, up Upload) (string, []byte, error) {
	if up.Body == nil {
		return "", nil, apperr.Validation("Audio recording is required")
	}

	data, err := io.ReadAll(up.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}

	if len(data) == 0 {
		return "", nil, apperr.Validation("Audio recording is empty")
	}

	key := AudioKey(userID, n.now(), up.Filename)

	mime := up.MimeType
	if mime == "" {
		mime = defaultAudioMime
	}

	if err := n.files.Save(ctx, key, bytes.NewReader(data), int64(len(data)), mime); err != nil {
		return "", nil, fmt.Errorf("failed to store audio file: %w", err)
	}

	return key, data, nil
}

func (n *NoteService) probe(ctx context.Context, data []byte) *float64 {
	if n.prober == nil {
		return nil
	}

	d, err := n.prober.Duration(ctx, bytes.NewReader(data))
	if err != nil {
		n.log.Debug("Could not determine audio duration", zap.Error(err))
		return nil
	}

	return &d
}

// List returns the user's notes, most recently updated first
func (n *NoteService) List(ctx context.Context, userID string) ([]model.Note, error) {
	notes, err := n.store.NotesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	for i := range notes {
		n.withURL(&notes[i])
	}

	return notes, nil
}

func (n *NoteService) Get(ctx context.Context, userID, noteID string) (*model.Note, error) {
	note, err := n.findNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	return n.withURL(note), nil
}

func (n *NoteService) Create(ctx context.Context, userID string, in CreateNoteInput) (*model.Note, error) {
	if strings.TrimSpace(in.Title) == "" && strings.TrimSpace(in.Transcription) == "" {
		return nil, apperr.Validation("Title and transcription are required")
	}

	title, err := validators.TitleValidator(in.Title, model.MaxTitleLength)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	transcription, err := validators.TranscriptionValidator(in.Transcription)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	id, err := security.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate note ID: %w", err)
	}

	note := &model.Note{
		ID:            id,
		UserID:        userID,
		Title:         title,
		Transcription: transcription,
	}

	if in.AudioFilePath != "" {
		if err := n.checkAudioPath(ctx, userID, in.AudioFilePath); err != nil {
			return nil, err
		}

		note.AudioFile = model.Attachment{
			FilePath:     in.AudioFilePath,
			OriginalName: defaultAudioName,
			MimeType:     defaultAudioMime,
		}
	}

	if err := n.store.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return n.withURL(note), nil
}

// Update changes the title and/or transcription. A new transcription
// invalidates the summary.
func (n *NoteService) Update(ctx context.Context, userID, noteID string, in UpdateNoteInput) (*model.Note, error) {
	note, err := n.findNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	if in.Title == nil && in.Transcription == nil {
		return nil, apperr.Validation("No valid fields to update")
	}

	var edit store.NoteEdit

	if in.Title != nil {
		title, err := validators.TitleValidator(*in.Title, model.MaxTitleLength)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}

		edit.Title = &title
	}

	if in.Transcription != nil {
		transcription, err := validators.TranscriptionValidator(*in.Transcription)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}

		edit.Transcription = &transcription
	}

	if err := n.store.EditNote(ctx, userID, note.ID, edit); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Note not found")
		}

		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	return n.Get(ctx, userID, note.ID)
}

// GenerateSummary summarizes the transcription once. Later calls return the
// stored summary without calling the summarizer.
func (n *NoteService) GenerateSummary(ctx context.Context, userID, noteID string) (*SummaryResult, error) {
	note, err := n.findNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	if note.Summary != nil && *note.Summary != "" {
		return &SummaryResult{Summary: *note.Summary, Note: n.withURL(note)}, nil
	}

	summary, err := n.summarizer.Summarize(ctx, note.Transcription)
	if err != nil {
		return nil, apperr.Summarization("Failed to generate summary", err)
	}

	if err := n.store.SetSummary(ctx, userID, note.ID, note.Transcription, summary); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to save summary: %w", err)
		}

		// Either the note is gone or its transcription was edited meanwhile
		if _, err := n.findNote(ctx, userID, note.ID); err != nil {
			return nil, err
		}

		return nil, apperr.Conflict("Note was edited while the summary was being generated")
	}

	note, err = n.Get(ctx, userID, note.ID)
	if err != nil {
		return nil, err
	}

	return &SummaryResult{Summary: summary, Note: note, Created: true}, nil
}

// Delete removes the note and then its recording
func (n *NoteService) Delete(ctx context.Context, userID, noteID string) error {
	note, err := n.findNote(ctx, userID, noteID)
	if err != nil {
		return err
	}

	if err := n.store.DeleteNote(ctx, userID, noteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Note not found")
		}

		return fmt.Errorf("failed to delete note: %w", err)
	}

	if !note.AudioFile.Empty() {
		n.removeFiles(ctx, note.AudioFile.FilePath)
	}

	return nil
}

// ReplaceAudio attaches a new recording to the note. The previous recording
// is deleted once the note points at the new one.
func (n *NoteService) ReplaceAudio(ctx context.Context, userID, noteID string, up Upload) (*model.Note, error) {
	if !security.ValidID(noteID) {
		return nil, apperr.Validation("Invalid note ID")
	}

	key, data, err := n.storeUpload(ctx, userID, up)
	if err != nil {
		return nil, err
	}

	note, err := n.findNote(ctx, userID, noteID)
	if err != nil {
		n.removeFiles(ctx, key)
		return nil, err
	}

	previous := note.AudioFile.FilePath

	name := filepath.Base(up.Filename)
	if up.Filename == "" {
		name = defaultAudioName
	}

	audio := model.Attachment{
		FilePath:     key,
		OriginalName: name,
		MimeType:     up.MimeType,
		Size:         int64(len(data)),
		Duration:     n.probe(ctx, data),
	}

	if err := n.store.SetAudio(ctx, userID, note.ID, audio); err != nil {
		n.removeFiles(ctx, key)

		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Note not found")
		}

		return nil, fmt.Errorf("failed to update note audio: %w", err)
	}

	if previous != "" && previous != key {
		n.removeFiles(ctx, previous)
	}

	return n.Get(ctx, userID, note.ID)
}

// TranscribeAudio stores the recording and returns its transcription. The
// recording is removed again if transcription fails.
func (n *NoteService) TranscribeAudio(ctx context.Context, userID string, up Upload) (*Transcription, error) {
	key, data, err := n.storeUpload(ctx, userID, up)
	if err != nil {
		return nil, err
	}

	text, err := n.transcriber.Transcribe(ctx, data, up.MimeType)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty transcription")
	}
	if err != nil {
		n.removeFiles(ctx, key)
		return nil, apperr.Transcription("Failed to transcribe audio", err)
	}

	return &Transcription{
		Text:          text,
		AudioFilePath: key,
		AudioURL:      n.files.URL(key),
		Confidence:    1.0,
		Duration:      n.probe(ctx, data),
	}, nil
}

func (n *NoteService) Stats(ctx context.Context, userID string) (*model.NoteStats, error) {
	stats, err := n.store.NoteStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute note stats: %w", err)
	}

	return stats, nil
}
