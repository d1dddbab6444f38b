package notes

import (
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"
	"github.com/mohitgusain8671/VoiceNote/internal/service"
	"github.com/mohitgusain8671/VoiceNote/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const uploadField = "audioRecording"

// readUpload validates the recording in the multipart form. The returned
// file must be closed by the caller.
func readUpload(c *gin.Context, d *internal.Deps) (service.Upload, multipart.File, error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		zap.L().Debug("No audio in form", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
		return service.Upload{}, nil, apperr.Validation("Audio recording is required")
	}

	code, f, mime, err := validators.AudioValidator(fh, d.Config.Upload.MaxBytes())
	if err != nil {
		switch code {
		case http.StatusRequestEntityTooLarge:
			return service.Upload{}, nil, apperr.TooLarge(err.Error())
		case http.StatusBadRequest:
			return service.Upload{}, nil, apperr.Validation(err.Error())
		default:
			return service.Upload{}, nil, err
		}
	}

	return service.Upload{
		Filename: filepath.Base(fh.Filename),
		MimeType: mime,
		Size:     fh.Size,
		Body:     f,
	}, f, nil
}

// ReplaceAudio swaps the recording attached to a note
func ReplaceAudio(c *gin.Context, d *internal.Deps) {
	up, f, err := readUpload(c, d)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	defer f.Close()

	note, err := d.Notes.ReplaceAudio(c.Request.Context(), c.GetString("userID"), c.Param("id"), up)
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Audio file updated successfully",
		"data":      note,
		"requestID": c.MustGet("requestID").(string),
	})
}
