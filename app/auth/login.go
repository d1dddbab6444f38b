package auth

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"
	"github.com/mohitgusain8671/VoiceNote/internal/service"
	"github.com/mohitgusain8671/VoiceNote/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func setSessionCookie(c *gin.Context, d *internal.Deps, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookie, value, maxAge, "/", "", d.Config.App.Production(), true)
}

func Login(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.FromBinding(err))
		return
	}

	res, err := d.Accounts.Login(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	setSessionCookie(c, d, res.Token, int(service.SessionTTL.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Login successful",
		"user":      res.User,
		"requestID": requestID,
	})
}
