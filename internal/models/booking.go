package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type BookingStatus string

const (
	StatusAttending BookingStatus = "attending"
	StatusWaiting   BookingStatus = "waiting"
	StatusCancelled BookingStatus = "cancelled"
)

// ParticipantNames is the ordered list of people covered by one booking,
// stored as a jsonb column. The list never changes after creation.
type ParticipantNames []string

func (n ParticipantNames) Value() (driver.Value, error) {
	return json.Marshal(n)
}

func (n *ParticipantNames) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, n)
	case string:
		return json.Unmarshal([]byte(v), n)
	case nil:
		*n = nil
		return nil
	default:
		return fmt.Errorf("unsupported participant_names column type %T", src)
	}
}

type Booking struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	EventID          uint             `gorm:"not null;index" json:"event_id"`
	UserID           string           `gorm:"not null" json:"user_id"`
	ParticipantNames ParticipantNames `gorm:"type:jsonb;not null" json:"participant_names"`
	PartySize        int              `gorm:"not null" json:"party_size"`
	Status           BookingStatus    `gorm:"type:varchar(20);not null" json:"status"`
	IdempotencyKey   *string          `gorm:"type:varchar(64)" json:"idempotency_key,omitempty"`
	BookedAt         time.Time        `gorm:"not null;index" json:"booked_at"`
	CancelledAt      *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}
