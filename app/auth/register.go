// Package auth contains the account endpoints
package auth

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"
	"github.com/mohitgusain8671/VoiceNote/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerBody struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func Register(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBindJSON(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.FromBinding(err))
		return
	}

	user, err := d.Accounts.Register(c.Request.Context(), service.RegisterInput{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Password:  data.Password,
	})
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "User registered successfully. Please check your email for verification.",
		"user":      user,
		"requestID": requestID,
	})
}
