package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestTokenKindSQL(t *testing.T) {
	v, err := ForgotPassword.Value()
	require.NoError(t, err)
	assert.Equal(t, "forgot_password", v)

	var k TokenKind
	require.NoError(t, k.Scan([]byte("email_verification")))
	assert.Equal(t, EmailVerification, k)

	assert.Error(t, k.Scan("password_reset"))
	assert.Error(t, k.Scan(42))

	_, err = TokenKind(0).Value()
	assert.Error(t, err)
}

func TestTokenKindBSON(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"kind": ForgotPassword})
	require.NoError(t, err)

	var doc struct {
		Kind TokenKind `bson:"kind"`
	}
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, ForgotPassword, doc.Kind)

	var asString struct {
		Kind string `bson:"kind"`
	}
	require.NoError(t, bson.Unmarshal(raw, &asString))
	assert.Equal(t, "forgot_password", asString.Kind)
}

func TestTokenUsable(t *testing.T) {
	now := time.Now()
	tok := Token{ExpiresAt: now.Add(time.Minute)}

	assert.True(t, tok.Usable(now))
	assert.False(t, tok.Usable(now.Add(time.Minute)))
}

func TestProfileOmitsHash(t *testing.T) {
	u := User{ID: "id", Email: "a@b.co", PasswordHash: "secret", FirstName: "Ada", Verified: true}

	p := u.Profile()
	assert.Equal(t, Profile{ID: "id", Email: "a@b.co", FirstName: "Ada", Verified: true}, p)
}
