package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"towerdeck/internal/transport/httpdto"
	towerdeck_errors "towerdeck/pkg/errors"
	"towerdeck/pkg/logger"
)

// parseLimitQuery reads the optional limit query parameter. Absent means 0,
// so the service applies its default; malformed or negative input is a
// client error, the same contract the stream endpoints enforce.
func parseLimitQuery(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, towerdeck_errors.ErrInvalidInput
	}
	return limit, nil
}

// respondError maps service errors onto the HTTP taxonomy. Upstream relay is
// the one case where a foreign body passes through verbatim; everything else
// gets a classification-appropriate message only.
func respondError(c *gin.Context, l *logger.Logger, err error) {
	if upstream, ok := towerdeck_errors.AsUpstream(err); ok {
		c.Data(upstream.Status, "application/json", upstream.Body)
		return
	}

	switch {
	case errors.Is(err, towerdeck_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("resource not found", "NOT_FOUND"))
	case errors.Is(err, towerdeck_errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
	case errors.Is(err, towerdeck_errors.ErrServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("service unavailable", "SERVICE_UNAVAILABLE"))
	default:
		if l != nil {
			l.Errorf("unhandled error: %v", err)
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL_ERROR"))
	}
}
