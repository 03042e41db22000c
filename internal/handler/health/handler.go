package health

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	dataDir string
}

func NewHandler(dataDir string) *Handler {
	return &Handler{dataDir: dataDir}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// ReadinessCheck verifies the data directory is reachable, since every
// table lives in it.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if info, err := os.Stat(h.dataDir); err != nil || !info.IsDir() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "DOWN",
			"reason": "data directory unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
