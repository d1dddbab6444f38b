package notes

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Transcribe stores a recording and returns its text. The client creates
// the note afterwards with the returned audioFilePath.
func Transcribe(c *gin.Context, d *internal.Deps) {
	up, f, err := readUpload(c, d)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	defer f.Close()

	res, err := d.Notes.TranscribeAudio(c.Request.Context(), c.GetString("userID"), up)
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Audio transcribed successfully",
		"data":      res,
		"requestID": c.MustGet("requestID").(string),
	})
}
