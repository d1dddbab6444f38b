package model

import "time"

const MaxTitleLength = 200

// Attachment describes the audio recording backing a note. FilePath is the
// key under which the storage layer keeps the file. URL is filled in at read
// time and never persisted.
type Attachment struct {
	FilePath     string   `gorm:"column:audio_file_path;index" bson:"file_path,omitempty" json:"filePath"`
	OriginalName string   `gorm:"column:audio_original_name" bson:"original_name,omitempty" json:"originalName"`
	MimeType     string   `gorm:"column:audio_mime_type" bson:"mime_type,omitempty" json:"mimeType"`
	Size         int64    `gorm:"column:audio_size" bson:"size,omitempty" json:"size"`
	Duration     *float64 `gorm:"column:audio_duration" bson:"duration,omitempty" json:"duration"`
	URL          string   `gorm:"-" bson:"-" json:"url,omitempty"`
}

func (a Attachment) Empty() bool {
	return a.FilePath == ""
}

type Note struct {
	ID            string     `gorm:"primaryKey;size:16" bson:"_id" json:"id"`
	UserID        string     `gorm:"index:idx_notes_user_updated,priority:1;not null" bson:"user_id" json:"userId"`
	Title         string     `gorm:"size:200;not null" bson:"title" json:"title"`
	Transcription string     `gorm:"type:text;not null" bson:"transcription" json:"transcription"`
	Summary       *string    `gorm:"type:text" bson:"summary" json:"summary"`
	AudioFile     Attachment `gorm:"embedded" bson:"audio_file" json:"audioFile,omitzero"`
	CreatedAt     time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"index:idx_notes_user_updated,priority:2" bson:"updated_at" json:"updatedAt"`
}

type NoteStats struct {
	TotalNotes          int64 `json:"totalNotes"`
	NotesWithSummary    int64 `json:"notesWithSummary"`
	NotesWithoutSummary int64 `json:"notesWithoutSummary"`
}
