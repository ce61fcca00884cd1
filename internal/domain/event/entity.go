package event

import (
	"encoding/json"
	"time"
)

type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelWarn, LevelError:
		return true
	}
	return false
}

// Event represents events. AircraftID is a weak reference: events outlive
// nothing and own nothing, they only point at the aircraft they describe.
type Event struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Level      Level           `gorm:"type:varchar(8);not null;index" json:"level"`
	Type       string          `gorm:"not null;index" json:"type"`
	Message    string          `gorm:"not null" json:"message"`
	Details    json.RawMessage `gorm:"type:jsonb" json:"details,omitempty"`
	AircraftID *int64          `gorm:"index" json:"aircraft_id,omitempty"`
	Sector     string          `gorm:"index" json:"sector,omitempty"`
	Direction  string          `json:"direction,omitempty"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
}

func (Event) TableName() string {
	return "events"
}
