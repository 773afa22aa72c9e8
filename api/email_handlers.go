package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SendScheduledHandler triggers one sweep of the due email queue. The
// same sweep also runs on a background ticker; the endpoint lets an
// external scheduler drive it instead.
func (s *Server) SendScheduledHandler(c *gin.Context) {
	if s.sweeper == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Email is not configured"})
		return
	}
	result, err := s.sweeper.Sweep()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sweep failed", "details": err.Error()})
		return
	}
	if result.Processed == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No emails to send", "processed": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Email processing complete",
		"processed": result.Processed,
		"success":   result.Success,
		"failed":    result.Failed,
	})
}
