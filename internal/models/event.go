package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventScheduled EventStatus = "scheduled"
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// RulesConfig holds the organizer's free-text rule choices. The booking
// logic never interprets it; it is stored and returned verbatim.
type RulesConfig map[string]string

func (r RulesConfig) Value() (driver.Value, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r)
}

func (r *RulesConfig) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	case nil:
		*r = nil
		return nil
	default:
		return fmt.Errorf("unsupported rules column type %T", src)
	}
}

type Event struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	Title            string      `gorm:"not null" json:"title"`
	OrganizerID      string      `gorm:"not null;index" json:"organizer_id"`
	Capacity         int         `gorm:"not null" json:"capacity"`
	ReserveSpots     int         `gorm:"not null;default:0" json:"reserve_spots"`
	PeoplePerBooking int         `gorm:"not null;default:1" json:"people_per_booking"`
	Status           EventStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	Rules            RulesConfig `gorm:"type:jsonb" json:"rules"`
	ReleaseAt        *time.Time  `json:"release_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// IsBookable reports whether the event currently accepts bookings.
func (e *Event) IsBookable() bool {
	return e.Status == EventActive
}
