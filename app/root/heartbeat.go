// Package root holds the endpoints that aren't tied to any resource
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat is used by load balancers and the frontend to check if the
// server is alive
func Heartbeat(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
}

func Index(c *gin.Context) {
	c.String(http.StatusOK, "VoiceNote API is running!")
}
