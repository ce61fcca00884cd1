package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"towerdeck/internal/domain/aircraft"
	"towerdeck/internal/services"
	"towerdeck/internal/transport/httpdto"
	"towerdeck/pkg/logger"
)

type AircraftHandler struct {
	service *services.AircraftService
	log     *logger.Logger
}

func NewAircraftHandler(service *services.AircraftService, log *logger.Logger) *AircraftHandler {
	return &AircraftHandler{service: service, log: log}
}

func (h *AircraftHandler) List(c *gin.Context) {
	limit, err := parseLimitQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid limit", "INVALID_REQUEST"))
		return
	}
	status := aircraft.Status(c.Query("status"))

	items, err := h.service.List(c.Request.Context(), status, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListAircraftResponse{
		Aircraft: items,
		Count:    len(items),
	}))
}

func (h *AircraftHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid aircraft id", "INVALID_REQUEST"))
		return
	}

	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(item))
}

func (h *AircraftHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid aircraft id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.UpdateAircraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	result, err := h.service.Update(c.Request.Context(), id, req.ToServiceRequest())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.UpdateAircraftResponse{
		Aircraft: result.Aircraft,
		Events:   result.Events,
		Changes:  result.Changes,
	}))
}

func (h *AircraftHandler) ClearAll(c *gin.Context) {
	result, err := h.service.ClearAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ClearAircraftResponse{
		AircraftDeleted: result.AircraftDeleted,
		EventsDeleted:   result.EventsDeleted,
	}))
}
