// Package apperr holds the error kinds the services report and the single
// table that turns them into HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindInvalidToken
	KindInvalidCredentials
	KindTranscription
	KindSummarization
	KindTooLarge
)

var statusByKind = map[Kind]int{
	KindInternal:           http.StatusInternalServerError,
	KindValidation:         http.StatusBadRequest,
	KindConflict:           http.StatusConflict,
	KindNotFound:           http.StatusNotFound,
	KindUnauthorized:       http.StatusUnauthorized,
	KindInvalidToken:       http.StatusBadRequest,
	KindInvalidCredentials: http.StatusUnauthorized,
	KindTranscription:      http.StatusInternalServerError,
	KindSummarization:      http.StatusInternalServerError,
	KindTooLarge:           http.StatusRequestEntityTooLarge,
}

const internalMessage = "Internal server error"

// Error is a failure with a kind and a message that is safe to show to the
// client. Err, if set, is the underlying cause and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so callers can use errors.Is(err, apperr.ErrNotFound)
// style checks against the kind sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && t.Message == ""
}

var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrTranscription      = &Error{Kind: KindTranscription}
	ErrSummarization      = &Error{Kind: KindSummarization}
)

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func InvalidToken(msg string) error {
	return &Error{Kind: KindInvalidToken, Message: msg}
}

func InvalidCredentials() error {
	return &Error{Kind: KindInvalidCredentials, Message: "Invalid credentials"}
}

func TooLarge(msg string) error {
	return &Error{Kind: KindTooLarge, Message: msg}
}

func Transcription(msg string, cause error) error {
	return &Error{Kind: KindTranscription, Message: msg, Err: cause}
}

func Summarization(msg string, cause error) error {
	return &Error{Kind: KindSummarization, Message: msg, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// Status maps err to the HTTP status code of its kind
func Status(err error) int {
	if s, ok := statusByKind[KindOf(err)]; ok {
		return s
	}

	return http.StatusInternalServerError
}

// Message returns the client facing message of err. Internal errors never
// leak their details.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal || e.Message == "" {
		return internalMessage
	}

	return e.Message
}
