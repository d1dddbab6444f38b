package notes

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"

	"github.com/gin-gonic/gin"
)

func Delete(c *gin.Context, d *internal.Deps) {
	noteID := c.Param("id")

	if err := d.Notes.Delete(c.Request.Context(), c.GetString("userID"), noteID); err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Note deleted successfully",
		"data":      gin.H{"deletedNoteId": noteID},
		"requestID": c.MustGet("requestID").(string),
	})
}
