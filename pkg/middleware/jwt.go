package middleware

import (
	"context"
	"strings"

	"github.com/mohitgusain8671/VoiceNote/internal/apperr"

	"github.com/gin-gonic/gin"
)

const AuthCookie = "auth_token"

// Authorizer resolves a session credential to a user ID
type Authorizer interface {
	Authorize(ctx context.Context, credential string) (string, error)
}

func credential(c *gin.Context) string {
	if token, err := c.Cookie(AuthCookie); err == nil && token != "" {
		return token
	}

	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	return ""
}

// NewJWTMiddleware rejects requests without a valid session and sets userID
// for the ones that have one
func NewJWTMiddleware(a Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := a.Authorize(c.Request.Context(), credential(c))
		if err != nil {
			apperr.Abort(c, err)
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
