package httpdto

import (
	"encoding/json"

	"towerdeck/internal/domain/aircraft"
	"towerdeck/internal/domain/event"
	"towerdeck/internal/services"
)

// UpdateAircraftRequest is a partial update: absent fields stay untouched,
// which is why every mutable field is a pointer or nil-able blob.
type UpdateAircraftRequest struct {
	Position   *aircraft.Position `json:"position"`
	Status     *string            `json:"status" binding:"omitempty,oneof=active inactive landed"`
	SquawkCode *string            `json:"squawk_code"`
	FlightPlan json.RawMessage    `json:"flight_plan"`
	Sector     string             `json:"sector"`
	Direction  string             `json:"direction"`
}

func (r UpdateAircraftRequest) ToServiceRequest() services.UpdateRequest {
	req := services.UpdateRequest{
		Position:   r.Position,
		SquawkCode: r.SquawkCode,
		FlightPlan: r.FlightPlan,
		Sector:     r.Sector,
		Direction:  r.Direction,
	}
	if r.Status != nil {
		status := aircraft.Status(*r.Status)
		req.Status = &status
	}
	return req
}

type ListAircraftResponse struct {
	Aircraft []aircraft.Aircraft `json:"aircraft"`
	Count    int                 `json:"count"`
}

type UpdateAircraftResponse struct {
	Aircraft aircraft.Aircraft             `json:"aircraft"`
	Events   []event.Event                 `json:"events"`
	Changes  map[string]services.FieldDiff `json:"changes"`
}

type ClearAircraftResponse struct {
	AircraftDeleted int64 `json:"aircraft_deleted"`
	EventsDeleted   int64 `json:"events_deleted"`
}
