package validators

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrFirstNameEmpty     = errors.New("first name is required")
	ErrFirstNameLength    = errors.New("first name must be between 2 and 50 characters long")
	ErrLastNameTooLong    = errors.New("last name must be at most 50 characters long")
	ErrTitleEmpty         = errors.New("title cannot be empty")
	ErrTitleTooLong       = errors.New("title must be at most 200 characters long")
	ErrTranscriptionEmpty = errors.New("transcription cannot be empty")
)

// FirstNameValidator trims n and checks its length
func FirstNameValidator(n string) (string, error) {
	n = strings.TrimSpace(n)
	if n == "" {
		return "", ErrFirstNameEmpty
	}

	if l := utf8.RuneCountInString(n); l < 2 || l > 50 {
		return "", ErrFirstNameLength
	}

	return n, nil
}

func LastNameValidator(n string) (string, error) {
	n = strings.TrimSpace(n)
	if utf8.RuneCountInString(n) > 50 {
		return "", ErrLastNameTooLong
	}

	return n, nil
}

func TitleValidator(t string, maxLen int) (string, error) {
	t = strings.TrimSpace(t)
	if t == "" {
		return "", ErrTitleEmpty
	}

	if utf8.RuneCountInString(t) > maxLen {
		return "", ErrTitleTooLong
	}

	return t, nil
}

func TranscriptionValidator(t string) (string, error) {
	t = strings.TrimSpace(t)
	if t == "" {
		return "", ErrTranscriptionEmpty
	}

	return t, nil
}
