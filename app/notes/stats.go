package notes

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"

	"github.com/gin-gonic/gin"
)

func Stats(c *gin.Context, d *internal.Deps) {
	stats, err := d.Notes.Stats(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      stats,
		"requestID": c.MustGet("requestID").(string),
	})
}
