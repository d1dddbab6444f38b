package auth

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"

	"github.com/gin-gonic/gin"
)

type forgotPasswordBody struct {
	Email string `json:"email"`
}

func ForgotPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data forgotPasswordBody
	if err := c.ShouldBindJSON(&data); err != nil {
		apperr.Abort(c, apperr.FromBinding(err))
		return
	}

	if err := d.Accounts.ForgotPassword(c.Request.Context(), data.Email); err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "OTP sent to your email",
		"requestID": requestID,
	})
}
