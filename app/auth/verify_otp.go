package auth

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"

	"github.com/gin-gonic/gin"
)

type verifyOTPBody struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

func VerifyOTP(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data verifyOTPBody
	if err := c.ShouldBindJSON(&data); err != nil {
		apperr.Abort(c, apperr.FromBinding(err))
		return
	}

	handle, err := d.Accounts.VerifyOTP(c.Request.Context(), data.Email, data.OTP)
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "OTP verified successfully",
		"resetToken": handle,
		"requestID":  requestID,
	})
}
