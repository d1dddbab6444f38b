package notes

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"

	"github.com/gin-gonic/gin"
)

func Summary(c *gin.Context, d *internal.Deps) {
	res, err := d.Notes.GenerateSummary(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	msg := "Summary already exists"
	if res.Created {
		msg = "Summary generated successfully"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": msg,
		"data": gin.H{
			"summary": res.Summary,
			"isNew":   res.Created,
			"note":    res.Note,
		},
		"requestID": c.MustGet("requestID").(string),
	})
}
