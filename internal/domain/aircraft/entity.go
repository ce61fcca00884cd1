package aircraft

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusLanded   Status = "landed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusLanded:
		return true
	}
	return false
}

// Position is the aircraft's last known location on or around the field.
type Position struct {
	Lat      float64 `gorm:"column:lat" json:"lat"`
	Lon      float64 `gorm:"column:lon" json:"lon"`
	Altitude float64 `gorm:"column:altitude" json:"altitude"`
	Heading  float64 `gorm:"column:heading" json:"heading"`
}

// Aircraft represents aircraft_instances
type Aircraft struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Callsign   string          `gorm:"not null;index" json:"callsign"`
	Status     Status          `gorm:"type:varchar(16);not null;index" json:"status"`
	Position   Position        `gorm:"embedded" json:"position"`
	SquawkCode string          `gorm:"column:squawk_code" json:"squawk_code"`
	FlightPlan json.RawMessage `gorm:"type:jsonb" json:"flight_plan,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Aircraft) TableName() string {
	return "aircraft_instances"
}
