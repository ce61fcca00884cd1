package httpdto

import (
	"encoding/json"

	"towerdeck/internal/domain/event"
	"towerdeck/internal/services"
)

type CreateEventRequest struct {
	Level      string          `json:"level" binding:"omitempty,oneof=INFO WARN ERROR"`
	Type       string          `json:"type"`
	Message    string          `json:"message" binding:"required"`
	Details    json.RawMessage `json:"details"`
	AircraftID *int64          `json:"aircraft_id"`
	Sector     string          `json:"sector"`
	Direction  string          `json:"direction"`
}

func (r CreateEventRequest) ToServiceRequest() services.CreateEventRequest {
	return services.CreateEventRequest{
		Level:      event.Level(r.Level),
		Type:       r.Type,
		Message:    r.Message,
		Details:    r.Details,
		AircraftID: r.AircraftID,
		Sector:     r.Sector,
		Direction:  r.Direction,
	}
}

type ListEventsResponse struct {
	Events []event.Event `json:"events"`
	Count  int           `json:"count"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
