package events

import (
	"time"

	"towerdeck/internal/domain/aircraft"
	"towerdeck/internal/domain/event"
)

// Event type tags follow the format: domain.action
const (
	TypeAircraftStatusChanged   = "aircraft.status_changed"
	TypeAircraftPositionUpdated = "aircraft.position_updated"
	TypeAircraftUpdated         = "aircraft.updated"
	TypeOperationalLog          = "operations.log"
)

// Bus topics. The brain service publishes and subscribes on the same broker,
// so these names are part of the cross-process contract.
const (
	TopicEventCreated            = "event-created"
	TopicAircraftPositionUpdated = "aircraft-position-updated"
	TopicAircraftStatusChanged   = "aircraft-status-changed"
)

// TopicForType maps an event type tag to its category topic, if it has one.
// Every event additionally goes out on TopicEventCreated.
func TopicForType(eventType string) (string, bool) {
	switch eventType {
	case TypeAircraftStatusChanged:
		return TopicAircraftStatusChanged, true
	case TypeAircraftPositionUpdated:
		return TopicAircraftPositionUpdated, true
	}
	return "", false
}

// StatusChange is the details payload for aircraft.status_changed.
type StatusChange struct {
	From aircraft.Status `json:"from"`
	To   aircraft.Status `json:"to"`
}

// PositionChange is the details payload for aircraft.position_updated.
type PositionChange struct {
	From aircraft.Position `json:"from"`
	To   aircraft.Position `json:"to"`
}

// FieldChange is the details payload for aircraft.updated (squawk code,
// flight plan and other scalar fields).
type FieldChange struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Envelope is the wire format carried on the bus. The persisted event row is
// embedded whole so subscribers never need a second read to act on it.
type Envelope struct {
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Event      event.Event `json:"event"`
}

func NewEnvelope(e event.Event) Envelope {
	return Envelope{
		EventType:  e.Type,
		OccurredAt: e.CreatedAt,
		Event:      e,
	}
}
