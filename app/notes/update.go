package notes

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"
	"github.com/mohitgusain8671/VoiceNote/internal/service"

	"github.com/gin-gonic/gin"
)

// Only the fields present in the body are changed
type updateBody struct {
	Title         *string `json:"title"`
	Transcription *string `json:"transcription"`
}

func Update(c *gin.Context, d *internal.Deps) {
	var data updateBody
	if err := c.ShouldBindJSON(&data); err != nil {
		apperr.Abort(c, apperr.FromBinding(err))
		return
	}

	note, err := d.Notes.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), service.UpdateNoteInput{
		Title:         data.Title,
		Transcription: data.Transcription,
	})
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Note updated successfully",
		"data":      note,
		"requestID": c.MustGet("requestID").(string),
	})
}
