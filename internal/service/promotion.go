package service

import "github.com/courtmix/mixing-service/internal/models"

// promotable selects the waiting bookings to move to attending once free
// slots open up. The scan is first-fit by arrival order: waiting must be
// sorted by booked_at ascending, and a party too large for the remaining
// free slots is skipped rather than blocking later, smaller parties. A
// booking is never split across attending and waiting.
func promotable(waiting []models.Booking, free int) []models.Booking {
	var fit []models.Booking
	for _, b := range waiting {
		if free <= 0 {
			break
		}
		if b.PartySize <= free {
			fit = append(fit, b)
			free -= b.PartySize
		}
	}
	return fit
}
