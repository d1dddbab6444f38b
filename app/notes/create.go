package notes

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"
	"github.com/mohitgusain8671/VoiceNote/internal/service"

	"github.com/gin-gonic/gin"
)

type createBody struct {
	Title         string `json:"title"`
	Transcription string `json:"transcription"`
	AudioFilePath string `json:"audioFilePath"`
}

func Create(c *gin.Context, d *internal.Deps) {
	var data createBody
	if err := c.ShouldBindJSON(&data); err != nil {
		apperr.Abort(c, apperr.FromBinding(err))
		return
	}

	note, err := d.Notes.Create(c.Request.Context(), c.GetString("userID"), service.CreateNoteInput{
		Title:         data.Title,
		Transcription: data.Transcription,
		AudioFilePath: data.AudioFilePath,
	})
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "Note created successfully",
		"data":      note,
		"requestID": c.MustGet("requestID").(string),
	})
}
