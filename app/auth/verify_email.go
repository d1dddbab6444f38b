package auth

import (
	"net/http"

	"github.com/mohitgusain8671/VoiceNote/internal"
	"github.com/mohitgusain8671/VoiceNote/internal/apperr"

	"github.com/gin-gonic/gin"
)

// VerifyEmail is the target of the link in the verification mail. On
// success the browser lands on the frontend's login page.
func VerifyEmail(c *gin.Context, d *internal.Deps) {
	if err := d.Accounts.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		apperr.Abort(c, err)
		return
	}

	c.Redirect(http.StatusFound, d.Config.App.Origin()+"/login?verified=true")
}
