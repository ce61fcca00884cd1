package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"towerdeck/internal/proxy"
	"towerdeck/internal/transport/httpdto"
	"towerdeck/pkg/logger"
)

type BrainHandler struct {
	client *proxy.BrainClient
	log    *logger.Logger
}

func NewBrainHandler(client *proxy.BrainClient, log *logger.Logger) *BrainHandler {
	return &BrainHandler{client: client, log: log}
}

// Start relays POST /brain/start to the decision service. On success or
// upstream failure alike, the upstream status and body pass through as-is.
func (h *BrainHandler) Start(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request body", "INVALID_REQUEST"))
		return
	}

	status, respBody, err := h.client.Start(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Data(status, "application/json", respBody)
}
