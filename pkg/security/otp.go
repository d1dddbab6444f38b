package security

import (
	"crypto/rand"
	"fmt"
	"math/big"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	OTPLength = 6

	idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	IDLength  = 16
)

var otpMax = big.NewInt(1_000_000)

// GenerateOTP returns a zero padded 6 digit code
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpMax)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

// NewID generates a record identifier
func NewID() (string, error) {
	return gonanoid.Generate(idCharset, IDLength)
}

// ValidID reports whether s has the shape of an identifier made by NewID
func ValidID(s string) bool {
	if len(s) != IDLength {
		return false
	}

	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}

	return true
}
