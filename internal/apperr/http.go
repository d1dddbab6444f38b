package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Abort writes the error response for err and stops the handler chain.
// Anything that isn't a known client error gets logged.
func Abort(c *gin.Context, err error) {
	requestID := c.GetString("requestID")
	status := Status(err)

	if status >= 500 {
		zap.L().Error("Request failed",
			zap.String("requestID", requestID),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	} else {
		zap.L().Debug("Request rejected",
			zap.String("requestID", requestID),
			zap.Int("status", status),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(status, gin.H{
		"success":   false,
		"message":   Message(err),
		"requestID": requestID,
	})
}

// FromBinding turns a gin binding failure into a validation error with a
// readable message
func FromBinding(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Kind: KindValidation, Message: "Malformed or invalid request body", Err: err}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param()))
		case "len":
			msgs = append(msgs, fmt.Sprintf("%s must be exactly %s characters long", fe.Field(), fe.Param()))
		case "numeric":
			msgs = append(msgs, fmt.Sprintf("%s must contain only digits", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}

	return &Error{Kind: KindValidation, Message: strings.Join(msgs, ", "), Err: err}
}
