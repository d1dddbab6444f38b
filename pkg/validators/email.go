// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrEmailEmpty   = errors.New("email is required")
	ErrEmailInvalid = errors.New("please fill a valid email address")
	ErrEmailTooLong = errors.New("email is too long")
)

const maxEmailLength = 255

// NormalizeEmail trims and lower-cases e. Emails are compared in this form
// everywhere.
func NormalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// EmailValidator expects an already normalized address
func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	if len(e) > maxEmailLength {
		return ErrEmailTooLong
	}

	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e || !strings.Contains(e[strings.LastIndex(e, "@")+1:], ".") {
		return ErrEmailInvalid
	}

	return nil
}
