package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/gridrisk/pkg/logger"
)

// checkTimeout bounds each dependency probe.
const checkTimeout = 2 * time.Second

// Probe checks one dependency.
type Probe func(ctx context.Context) error

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	probes map[string]Probe
	log    logger.Logger
}

// NewHealthHandler creates a new HealthHandler. Only configured dependencies
// are passed in; an empty map makes readiness equal to liveness.
func NewHealthHandler(probes map[string]Probe, log logger.Logger) *HealthHandler {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &HealthHandler{probes: probes, log: log}
}

// LivenessCheck godoc
// @Summary      Liveness Check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck godoc
// @Summary      Readiness Check
// @Description  Checks the health of the service and its dependencies.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	checks, healthy := h.Check(c.Request.Context())

	status, httpStatus := "healthy", http.StatusOK
	if !healthy {
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

// Check runs every probe concurrently.
func (h *HealthHandler) Check(ctx context.Context) (map[string]string, bool) {
	var wg sync.WaitGroup
	mu := &sync.Mutex{}
	checks := make(map[string]string, len(h.probes))
	healthy := true

	wg.Add(len(h.probes))
	for name, probe := range h.probes {
		go func(name string, probe Probe) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			status := "ok"
			if err := probe(pctx); err != nil {
				status = "error: " + err.Error()
				h.log.Warn(ctx, "dependency check failed", logger.Fields{"dependency": name, "error": err.Error()})
			}
			mu.Lock()
			checks[name] = status
			if status != "ok" {
				healthy = false
			}
			mu.Unlock()
		}(name, probe)
	}
	wg.Wait()
	return checks, healthy
}

//Personal.AI order the ending
