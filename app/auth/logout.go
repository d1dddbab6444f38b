package auth

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"

	"github.com/gin-gonic/gin"
)

func Logout(c *gin.Context, d *internal.Deps) {
	setSessionCookie(c, d, "", -1)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Logged out successfully",
		"requestID": c.MustGet("requestID").(string),
	})
}
