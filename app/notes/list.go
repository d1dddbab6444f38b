// Package notes contains the note endpoints. Every handler expects the
// session middleware to have set userID.
package notes

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"

	"github.com/gin-gonic/gin"
)

func List(c *gin.Context, d *internal.Deps) {
	notes, err := d.Notes.List(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      gin.H{"notes": notes},
		"requestID": c.MustGet("requestID").(string),
	})
}
