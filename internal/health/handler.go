package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Probe is a single dependency health check.
type Probe interface {
	Health(ctx context.Context) error
}

// Handler reports the health of the service and its dependencies.
type Handler struct {
	probes map[string]Probe
}

// NewHandler creates a health handler over named dependency probes.
func NewHandler(probes map[string]Probe) *Handler {
	return &Handler{probes: probes}
}

// Check runs every probe with a short deadline
// GET /health
func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	healthy := true
	checks := gin.H{}
	for name, probe := range h.probes {
		if err := probe.Health(ctx); err != nil {
			healthy = false
			checks[name] = gin.H{"status": "unhealthy", "error": err.Error()}
		} else {
			checks[name] = gin.H{"status": "healthy"}
		}
	}

	status := http.StatusOK
	overall := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status": overall,
		"checks": checks,
	})
}
