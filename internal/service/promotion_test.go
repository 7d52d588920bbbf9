package service

import (
	"testing"
	"time"

	"github.com/courtmix/mixing-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func waitingBooking(id uint, partySize int, bookedAt time.Time) models.Booking {
	return models.Booking{
		ID:        id,
		PartySize: partySize,
		Status:    models.StatusWaiting,
		BookedAt:  bookedAt,
	}
}

func TestPromotable_EmptyQueue(t *testing.T) {
	assert.Empty(t, promotable(nil, 4))
}

func TestPromotable_NoFreeSlots(t *testing.T) {
	waiting := []models.Booking{waitingBooking(1, 1, time.Now())}
	assert.Empty(t, promotable(waiting, 0))
}

func TestPromotable_ExactFit(t *testing.T) {
	base := time.Now()
	waiting := []models.Booking{
		waitingBooking(1, 2, base),
		waitingBooking(2, 2, base.Add(time.Minute)),
	}

	fit := promotable(waiting, 4)

	assert.Len(t, fit, 2)
	assert.Equal(t, uint(1), fit[0].ID)
	assert.Equal(t, uint(2), fit[1].ID)
}

func TestPromotable_EarlierArrivalWinsOnTie(t *testing.T) {
	base := time.Now()
	waiting := []models.Booking{
		waitingBooking(1, 2, base),
		waitingBooking(2, 2, base.Add(time.Minute)),
	}

	fit := promotable(waiting, 2)

	assert.Len(t, fit, 1)
	assert.Equal(t, uint(1), fit[0].ID)
}

// A party too large for the freed slots is skipped; a later, smaller party
// is promoted ahead of it.
func TestPromotable_SkipsOversizedParty(t *testing.T) {
	base := time.Now()
	waiting := []models.Booking{
		waitingBooking(1, 3, base),
		waitingBooking(2, 1, base.Add(time.Minute)),
	}

	fit := promotable(waiting, 2)

	assert.Len(t, fit, 1)
	assert.Equal(t, uint(2), fit[0].ID)
}

// Capacity 4, A books 2, B books 2, C books 1 and waits. Cancelling A frees
// 2 slots and C is promoted.
func TestPromotable_SingleWaiterFitsFreedSlots(t *testing.T) {
	waiting := []models.Booking{waitingBooking(3, 1, time.Now())}

	fit := promotable(waiting, 2)

	assert.Len(t, fit, 1)
	assert.Equal(t, uint(3), fit[0].ID)
}

// Capacity 5, A attends with 2, B waits with 4, C attends with 1. Cancelling
// A brings free slots to 4, so B's party of 4 now fits.
func TestPromotable_LargePartyFitsAfterCancellation(t *testing.T) {
	waiting := []models.Booking{waitingBooking(2, 4, time.Now())}

	fit := promotable(waiting, 4)

	assert.Len(t, fit, 1)
	assert.Equal(t, uint(2), fit[0].ID)
}

func TestPromotable_StopsWhenSlotsExhausted(t *testing.T) {
	base := time.Now()
	waiting := []models.Booking{
		waitingBooking(1, 2, base),
		waitingBooking(2, 3, base.Add(time.Minute)),
		waitingBooking(3, 1, base.Add(2 * time.Minute)),
	}

	fit := promotable(waiting, 3)

	// 2 fits (free drops to 1), 3 is skipped, 1 fits (free drops to 0).
	assert.Len(t, fit, 2)
	assert.Equal(t, uint(1), fit[0].ID)
	assert.Equal(t, uint(3), fit[1].ID)
}
