package validators

import "errors"

const MinPasswordLength = 6

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordEmpty    = errors.New("password is required")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	// argon2 doesn't care but nobody needs more than this
	if len(p) > 255 {
		return ErrPasswordTooLong
	}

	return nil
}
