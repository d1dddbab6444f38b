package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTable(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("x"), http.StatusBadRequest},
		{Conflict("x"), http.StatusConflict},
		{NotFound("x"), http.StatusNotFound},
		{Unauthorized("x"), http.StatusUnauthorized},
		{InvalidToken("x"), http.StatusBadRequest},
		{InvalidCredentials(), http.StatusUnauthorized},
		{Transcription("x", nil), http.StatusInternalServerError},
		{Summarization("x", nil), http.StatusInternalServerError},
		{TooLarge("x"), http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("x")), http.StatusNotFound},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Status(c.err), c.err.Error())
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("ctx: %w", NotFound("Note not found"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "Internal server error", Message(errors.New("db password is hunter2")))
	assert.Equal(t, "Note not found", Message(NotFound("Note not found")))
	assert.Equal(t, "Failed to transcribe audio", Message(Transcription("Failed to transcribe audio", errors.New("quota"))))
}

func TestFromBinding(t *testing.T) {
	type body struct {
		Email string `validate:"required,email"`
		OTP   string `validate:"len=6"`
	}

	err := validator.New().Struct(body{OTP: "1"})
	require.Error(t, err)

	got := FromBinding(err)
	assert.Equal(t, KindValidation, KindOf(got))
	assert.Contains(t, Message(got), "Email is required")
	assert.Contains(t, Message(got), "OTP must be exactly 6 characters long")

	got = FromBinding(errors.New("unexpected EOF"))
	assert.Equal(t, "Malformed or invalid request body", Message(got))
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("requestID", "req-1")

	Abort(c, Conflict("User already exists and is verified"))

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "User already exists and is verified", resp["message"])
	assert.Equal(t, "req-1", resp["requestID"])
}
