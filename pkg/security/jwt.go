package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "voicenote"

var ErrInvalidToken = errors.New("invalid or expired token")

// Purpose separates session credentials from email verification links so one
// can never be replayed as the other.
type Purpose string

const (
	PurposeSession     Purpose = "session"
	PurposeVerifyEmail Purpose = "verify_email"
)

type Claims struct {
	jwt.RegisteredClaims
	UserID  string  `json:"user_id"`
	Email   string  `json:"email,omitempty"`
	Purpose Purpose `json:"purpose"`
}

// Signer issues and checks HS256 tokens with a single secret
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue signs a token for userID valid for ttl
func (s *Signer) Issue(p Purpose, userID, email string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("no user ID provided")
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:  userID,
		Email:   email,
		Purpose: p,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Parse verifies the signature, expiry and purpose of tokenStr. Every failure
// is reported as ErrInvalidToken.
func (s *Signer) Parse(p Purpose, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Purpose != p || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
