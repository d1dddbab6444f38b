package auth

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"

	"github.com/gin-gonic/gin"
)

type resetPasswordBody struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword sets a new password. It does not log the user in.
func ResetPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data resetPasswordBody
	if err := c.ShouldBindJSON(&data); err != nil {
		apperr.Abort(c, apperr.FromBinding(err))
		return
	}

	if err := d.Accounts.ResetPassword(c.Request.Context(), data.ResetToken, data.NewPassword); err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Password reset successfully",
		"requestID": requestID,
	})
}
