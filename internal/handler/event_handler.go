package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"towerdeck/internal/domain/event"
	"towerdeck/internal/events"
	"towerdeck/internal/services"
	"towerdeck/internal/transport/httpdto"
	"towerdeck/pkg/logger"
)

type EventHandler struct {
	service *services.EventService
	log     *logger.Logger
}

func NewEventHandler(service *services.EventService, log *logger.Logger) *EventHandler {
	return &EventHandler{service: service, log: log}
}

func (h *EventHandler) List(c *gin.Context) {
	limit, err := parseLimitQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid limit", "INVALID_REQUEST"))
		return
	}

	filter := events.Filter{
		Level:  event.Level(c.Query("level")),
		Type:   c.Query("type"),
		Sector: c.Query("sector"),
	}
	if raw := c.Query("aircraft_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid aircraft_id", "INVALID_REQUEST"))
			return
		}
		filter.AircraftID = &id
	}

	items, err := h.service.Recent(c.Request.Context(), limit, filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListEventsResponse{
		Events: items,
		Count:  len(items),
	}))
}

func (h *EventHandler) Create(c *gin.Context) {
	var req httpdto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	created, err := h.service.Log(c.Request.Context(), req.ToServiceRequest())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(created))
}
