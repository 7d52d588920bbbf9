package dto

import (
	"time"

	"github.com/courtmix/mixing-service/internal/models"
)

type EventResponse struct {
	ID               uint               `json:"id"`
	Title            string             `json:"title"`
	OrganizerID      string             `json:"organizer_id"`
	Capacity         int                `json:"capacity"`
	ReserveSpots     int                `json:"reserve_spots"`
	PeoplePerBooking int                `json:"people_per_booking"`
	Status           models.EventStatus `json:"status"`
	Rules            map[string]string  `json:"rules,omitempty"`
	ReleaseAt        *time.Time         `json:"release_at,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

type BookingResponse struct {
	ID               uint                 `json:"id"`
	EventID          uint                 `json:"event_id"`
	UserID           string               `json:"user_id"`
	ParticipantNames []string             `json:"participant_names"`
	PartySize        int                  `json:"party_size"`
	Status           models.BookingStatus `json:"status"`
	BookedAt         time.Time            `json:"booked_at"`
	CancelledAt      *time.Time           `json:"cancelled_at,omitempty"`
}

// CancelBookingResponse carries the cancelled booking plus any waiting
// bookings promoted by the freed capacity.
type CancelBookingResponse struct {
	Booking  BookingResponse   `json:"booking"`
	Promoted []BookingResponse `json:"promoted,omitempty"`
}

type EventStatusResponse struct {
	ID               uint               `json:"id"`
	Title            string             `json:"title"`
	Status           models.EventStatus `json:"status"`
	Capacity         int                `json:"capacity"`
	ReserveSpots     int                `json:"reserve_spots"`
	PeoplePerBooking int                `json:"people_per_booking"`
	Attending        int                `json:"attending_count"`
	Waiting          int64              `json:"waiting_count"`
	AvailableSpots   int                `json:"available_spots"`
}

type NotificationResponse struct {
	ID        string                  `json:"id"`
	Type      string                  `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Data      models.NotificationData `json:"data"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToEventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID:               e.ID,
		Title:            e.Title,
		OrganizerID:      e.OrganizerID,
		Capacity:         e.Capacity,
		ReserveSpots:     e.ReserveSpots,
		PeoplePerBooking: e.PeoplePerBooking,
		Status:           e.Status,
		Rules:            e.Rules,
		ReleaseAt:        e.ReleaseAt,
		CreatedAt:        e.CreatedAt,
	}
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		EventID:          b.EventID,
		UserID:           b.UserID,
		ParticipantNames: b.ParticipantNames,
		PartySize:        b.PartySize,
		Status:           b.Status,
		BookedAt:         b.BookedAt,
		CancelledAt:      b.CancelledAt,
	}
}

func ToNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
