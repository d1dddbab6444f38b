package auth

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"

	"github.com/gin-gonic/gin"
)

// UserInfo returns the profile of the logged in user
func UserInfo(c *gin.Context, d *internal.Deps) {
	user, err := d.Accounts.Profile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"user":      user,
		"requestID": c.MustGet("requestID").(string),
	})
}
