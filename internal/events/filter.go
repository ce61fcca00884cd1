package events

import "towerdeck/internal/domain/event"

// Filter selects events by level, type, aircraft and sector. Set dimensions
// are ANDed; an unset dimension matches any value. The same predicate is used
// for stored-event queries and for live bus messages so replay and live
// delivery can never disagree on what a connection should see.
type Filter struct {
	Level      event.Level
	Type       string
	AircraftID *int64
	Sector     string
}

func (f Filter) IsZero() bool {
	return f.Level == "" && f.Type == "" && f.AircraftID == nil && f.Sector == ""
}

func (f Filter) Matches(e event.Event) bool {
	if f.Level != "" && e.Level != f.Level {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.AircraftID != nil {
		if e.AircraftID == nil || *e.AircraftID != *f.AircraftID {
			return false
		}
	}
	if f.Sector != "" && e.Sector != f.Sector {
		return false
	}
	return true
}
