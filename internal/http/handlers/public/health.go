package public

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck 健康探针，无副作用
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "Momo Webhook Server Running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
