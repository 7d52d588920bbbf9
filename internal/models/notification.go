package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	NotifBookingConfirmed = "booking_confirmed"
	NotifWaitingList      = "waiting_list"
	NotifSpotAvailable    = "spot_available"
)

// NotificationData links an in-app notification back to the booking and
// event it refers to.
type NotificationData struct {
	EventID   uint `json:"event_id"`
	BookingID uint `json:"booking_id"`
}

func (d NotificationData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *NotificationData) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		*d = NotificationData{}
		return nil
	default:
		return fmt.Errorf("unsupported data column type %T", src)
	}
}

type Notification struct {
	ID        string           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string           `gorm:"not null;index" json:"user_id"`
	Type      string           `gorm:"type:varchar(30);not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"not null" json:"message"`
	Data      NotificationData `gorm:"type:jsonb" json:"data"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
