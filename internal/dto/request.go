package dto

import "time"

type CreateEventRequest struct {
	Title            string            `json:"title"`
	Capacity         int               `json:"capacity"`
	ReserveSpots     int               `json:"reserve_spots"`
	PeoplePerBooking int               `json:"people_per_booking"`
	Rules            map[string]string `json:"rules,omitempty"`
	ReleaseAt        *time.Time        `json:"release_at,omitempty"`
}

type UpdateEventStatusRequest struct {
	Status string `json:"status"`
}

type CreateBookingRequest struct {
	ParticipantNames []string `json:"participant_names"`
	IdempotencyKey   string   `json:"idempotency_key,omitempty"`
}
