package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// TokenKind tells the two token flows apart. The zero value is not a valid
// kind, so a token built without one fails to persist.
type TokenKind uint8

const (
	EmailVerification TokenKind = iota + 1
	ForgotPassword
)

var tokenKindNames = map[TokenKind]string{
	EmailVerification: "email_verification",
	ForgotPassword:    "forgot_password",
}

func (k TokenKind) String() string {
	if n, ok := tokenKindNames[k]; ok {
		return n
	}

	return fmt.Sprintf("TokenKind(%d)", uint8(k))
}

func (k TokenKind) Valid() bool {
	_, ok := tokenKindNames[k]
	return ok
}

// ParseTokenKind is the inverse of String
func ParseTokenKind(s string) (TokenKind, error) {
	for k, n := range tokenKindNames {
		if n == s {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown token kind %q", s)
}

// Value implements the driver.Valuer interface.
func (k TokenKind) Value() (driver.Value, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid token kind %d", uint8(k))
	}

	return k.String(), nil
}

// Scan implements the sql.Scanner interface.
func (k *TokenKind) Scan(value any) error {
	var s string

	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("failed to scan TokenKind, %v", value)
	}

	parsed, err := ParseTokenKind(s)
	if err != nil {
		return err
	}

	*k = parsed
	return nil
}

func (k TokenKind) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !k.Valid() {
		return 0, nil, fmt.Errorf("invalid token kind %d", uint8(k))
	}

	return bson.MarshalValue(k.String())
}

func (k *TokenKind) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	s, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("failed to decode TokenKind from bson type %s", t)
	}

	parsed, err := ParseTokenKind(s)
	if err != nil {
		return err
	}

	*k = parsed
	return nil
}

type Token struct {
	ID        string    `gorm:"primaryKey;size:16" bson:"_id"`
	UserID    string    `gorm:"index;not null" bson:"user_id"`
	Value     string    `gorm:"index;not null" bson:"value"`
	Kind      TokenKind `gorm:"type:varchar(32);index;not null" bson:"kind"`
	ExpiresAt time.Time `gorm:"index;not null" bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Usable reports whether the token has not expired at t
func (t *Token) Usable(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}
