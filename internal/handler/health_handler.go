package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"towerdeck/internal/events"
	"towerdeck/internal/transport/httpdto"
	"towerdeck/pkg/database"
)

type HealthHandler struct {
	db  *gorm.DB
	bus events.Bus
}

func NewHealthHandler(db *gorm.DB, bus events.Bus) *HealthHandler {
	return &HealthHandler{db: db, bus: bus}
}

// Check reports aggregated health of the persistence layer and the event
// bus. 200 only when everything answers; any failed dependency degrades the
// whole service to 503.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()
	checks := map[string]string{
		"database":  "healthy",
		"event_bus": "healthy",
	}
	failed := 0

	if err := database.HealthCheck(ctx, h.db); err != nil {
		checks["database"] = "unhealthy"
		failed++
	}
	if err := h.bus.Ping(ctx); err != nil {
		checks["event_bus"] = "unhealthy"
		failed++
	}

	status := "healthy"
	code := http.StatusOK
	switch failed {
	case 0:
	case len(checks):
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	default:
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	resp := httpdto.HealthResponse{Status: status, Checks: checks}
	if code == http.StatusOK {
		c.JSON(code, httpdto.NewSuccessResponse(resp))
		return
	}
	c.JSON(code, httpdto.Response[httpdto.HealthResponse]{Success: false, Data: resp, Code: "UNHEALTHY"})
}
