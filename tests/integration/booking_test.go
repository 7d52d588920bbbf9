//go:build integration

package integration

import (
	"fmt"
	"sync"
	"testing"

	"github.com/courtmix/mixing-service/internal/models"
	"github.com/courtmix/mixing-service/internal/repository"
	"github.com/courtmix/mixing-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestEvent(t *testing.T, capacity, peoplePerBooking int) *models.Event {
	t.Helper()
	event := &models.Event{
		Title:            "Thursday Night Mixing",
		OrganizerID:      "organizer-1",
		Capacity:         capacity,
		ReserveSpots:     2,
		PeoplePerBooking: peoplePerBooking,
		Status:           models.EventActive,
	}
	require.NoError(t, testDB.Create(event).Error)
	return event
}

func newBookingService() service.BookingService {
	eventRepo := repository.NewEventRepository(testDB)
	bookingRepo := repository.NewBookingRepository(testDB)
	return service.NewBookingService(bookingRepo, eventRepo, nil, nil)
}

func party(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Player %d", i+1)
	}
	return names
}

func attendingSum(t *testing.T, eventID uint) int {
	t.Helper()
	var sum int
	require.NoError(t, testDB.Model(&models.Booking{}).
		Select("COALESCE(SUM(party_size), 0)").
		Where("event_id = ? AND status = ?", eventID, models.StatusAttending).
		Scan(&sum).Error)
	return sum
}

// 30 users book 1 spot each into an event with capacity 20 concurrently:
// exactly 20 attend, 10 wait, and the capacity sum never overshoots.
func TestConcurrentPlacement(t *testing.T) {
	cleanTables()
	event := createTestEvent(t, 20, 2)
	svc := newBookingService()

	totalUsers := 30
	var wg sync.WaitGroup
	results := make(chan *models.Booking, totalUsers)

	wg.Add(totalUsers)
	for i := 0; i < totalUsers; i++ {
		go func(userIdx int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%03d", userIdx)
			booking, err := svc.PlaceBooking(t.Context(), event.ID, userID, party(1), "")
			if err == nil {
				results <- booking
			}
		}(i)
	}
	wg.Wait()
	close(results)

	var attending, waiting int
	for b := range results {
		switch b.Status {
		case models.StatusAttending:
			attending++
		case models.StatusWaiting:
			waiting++
		}
	}

	assert.Equal(t, 20, attending, "should fill capacity exactly")
	assert.Equal(t, 10, waiting, "overflow should wait")
	assert.Equal(t, 20, attendingSum(t, event.ID))
}

// Two concurrent two-person bookings with one slot of headroom each must
// not both attend.
func TestConcurrentPlacementGroupsNeverOvershoot(t *testing.T) {
	cleanTables()
	event := createTestEvent(t, 3, 2)
	svc := newBookingService()

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(userIdx int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", userIdx)
			_, err := svc.PlaceBooking(t.Context(), event.ID, userID, party(2), "")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.LessOrEqual(t, attendingSum(t, event.ID), event.Capacity)

	var waiting int64
	testDB.Model(&models.Booking{}).
		Where("event_id = ? AND status = ?", event.ID, models.StatusWaiting).
		Count(&waiting)
	assert.Equal(t, int64(1), waiting, "the loser must fall back to waiting")
}

func TestDuplicateBookingPrevention(t *testing.T) {
	cleanTables()
	event := createTestEvent(t, 10, 2)
	svc := newBookingService()

	first, err := svc.PlaceBooking(t.Context(), event.ID, "user-dup", party(1), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAttending, first.Status)

	_, err = svc.PlaceBooking(t.Context(), event.ID, "user-dup", party(1), "")
	assert.ErrorIs(t, err, service.ErrAlreadyBooked)

	// Cancelling first allows re-booking
	_, _, err = svc.CancelBooking(t.Context(), first.ID, "user-dup")
	require.NoError(t, err)

	again, err := svc.PlaceBooking(t.Context(), event.ID, "user-dup", party(1), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAttending, again.Status)
}

func TestIdempotentRetry(t *testing.T) {
	cleanTables()
	event := createTestEvent(t, 10, 2)
	svc := newBookingService()

	first, err := svc.PlaceBooking(t.Context(), event.ID, "user-retry", party(2), "key-abc")
	require.NoError(t, err)

	second, err := svc.PlaceBooking(t.Context(), event.ID, "user-retry", party(2), "key-abc")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "retry with the same key must replay the booking")

	var count int64
	testDB.Model(&models.Booking{}).Where("event_id = ?", event.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

// Idempotency keys are retry tokens scoped to one caller: two users who
// happen to pick the same key on the same event each get their own booking,
// and neither is handed the other's.
func TestIdempotencyKeyScopedPerUser(t *testing.T) {
	cleanTables()
	event := createTestEvent(t, 10, 2)
	svc := newBookingService()

	a, err := svc.PlaceBooking(t.Context(), event.ID, "user-a", party(2), "key-shared")
	require.NoError(t, err)
	assert.Equal(t, "user-a", a.UserID)

	b, err := svc.PlaceBooking(t.Context(), event.ID, "user-b", party(1), "key-shared")
	require.NoError(t, err)
	assert.Equal(t, "user-b", b.UserID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 1, b.PartySize)

	// Each user's retry still replays their own booking
	aRetry, err := svc.PlaceBooking(t.Context(), event.ID, "user-a", party(2), "key-shared")
	require.NoError(t, err)
	assert.Equal(t, a.ID, aRetry.ID)

	var count int64
	testDB.Model(&models.Booking{}).Where("event_id = ?", event.ID).Count(&count)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 3, attendingSum(t, event.ID))
}

// Capacity 4, people per booking 2. A books 2 (attending), a party of 3 is
// rejected by validation, B books 2 (attending), C books 1 (waiting).
// The organizer cancels A and C is promoted.
func TestScenario_PromotionAfterOrganizerCancel(t *testing.T) {
	cleanTables()
	event := createTestEvent(t, 4, 2)
	svc := newBookingService()

	a, err := svc.PlaceBooking(t.Context(), event.ID, "user-a", party(2), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAttending, a.Status)

	_, err = svc.PlaceBooking(t.Context(), event.ID, "user-b", party(3), "")
	assert.ErrorIs(t, err, service.ErrValidation)

	b, err := svc.PlaceBooking(t.Context(), event.ID, "user-b", party(2), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAttending, b.Status)

	c, err := svc.PlaceBooking(t.Context(), event.ID, "user-c", party(1), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, c.Status)

	cancelled, promoted, err := svc.CancelBooking(t.Context(), a.ID, "organizer-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	if assert.Len(t, promoted, 1) {
		assert.Equal(t, c.ID, promoted[0].ID)
	}
	assert.Equal(t, 3, attendingSum(t, event.ID))
}

// Capacity 5. A books 2 (attending), B books 4 (waiting, 4 > 3 free),
// C books 1 (attending). Cancelling A frees 2, bringing free slots to 4,
// so B's party of 4 is promoted.
func TestScenario_LargePartyPromotedOnceItFits(t *testing.T) {
	cleanTables()
	event := createTestEvent(t, 5, 4)
	svc := newBookingService()

	a, err := svc.PlaceBooking(t.Context(), event.ID, "user-a", party(2), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAttending, a.Status)

	b, err := svc.PlaceBooking(t.Context(), event.ID, "user-b", party(4), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, b.Status)

	c, err := svc.PlaceBooking(t.Context(), event.ID, "user-c", party(1), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAttending, c.Status)

	_, promoted, err := svc.CancelBooking(t.Context(), a.ID, "user-a")
	require.NoError(t, err)

	if assert.Len(t, promoted, 1) {
		assert.Equal(t, b.ID, promoted[0].ID)
	}
	assert.Equal(t, 5, attendingSum(t, event.ID))
}

func TestCancelWaitingBookingChangesNothingElse(t *testing.T) {
	cleanTables()
	event := createTestEvent(t, 2, 2)
	svc := newBookingService()

	a, err := svc.PlaceBooking(t.Context(), event.ID, "user-a", party(2), "")
	require.NoError(t, err)
	b, err := svc.PlaceBooking(t.Context(), event.ID, "user-b", party(1), "")
	require.NoError(t, err)
	require.Equal(t, models.StatusWaiting, b.Status)

	_, promoted, err := svc.CancelBooking(t.Context(), b.ID, "user-b")
	require.NoError(t, err)
	assert.Empty(t, promoted)

	var aAfter models.Booking
	require.NoError(t, testDB.First(&aAfter, a.ID).Error)
	assert.Equal(t, models.StatusAttending, aAfter.Status)
}

func TestCancelForbiddenForThirdParty(t *testing.T) {
	cleanTables()
	event := createTestEvent(t, 4, 2)
	svc := newBookingService()

	a, err := svc.PlaceBooking(t.Context(), event.ID, "user-a", party(1), "")
	require.NoError(t, err)

	_, _, err = svc.CancelBooking(t.Context(), a.ID, "user-b")
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestCancelTwice(t *testing.T) {
	cleanTables()
	event := createTestEvent(t, 4, 2)
	svc := newBookingService()

	a, err := svc.PlaceBooking(t.Context(), event.ID, "user-a", party(1), "")
	require.NoError(t, err)

	_, _, err = svc.CancelBooking(t.Context(), a.ID, "user-a")
	require.NoError(t, err)

	_, _, err = svc.CancelBooking(t.Context(), a.ID, "user-a")
	assert.ErrorIs(t, err, service.ErrAlreadyCancelled)
}

func TestPlaceBookingOnInactiveEvent(t *testing.T) {
	cleanTables()
	svc := newBookingService()

	event := &models.Event{
		Title:            "Not Yet Released",
		OrganizerID:      "organizer-1",
		Capacity:         4,
		PeoplePerBooking: 2,
		Status:           models.EventScheduled,
	}
	require.NoError(t, testDB.Create(event).Error)

	_, err := svc.PlaceBooking(t.Context(), event.ID, "user-early", party(1), "")
	assert.ErrorIs(t, err, service.ErrEventNotActive)
}

func TestPlaceBookingEventNotFound(t *testing.T) {
	cleanTables()
	svc := newBookingService()

	_, err := svc.PlaceBooking(t.Context(), 99999, "user-1", party(1), "")
	assert.ErrorIs(t, err, service.ErrEventNotFound)
}

// Concurrent cancellations must not promote the same waiting booking twice.
func TestConcurrentCancellationsSinglePromotion(t *testing.T) {
	cleanTables()
	event := createTestEvent(t, 2, 1)
	svc := newBookingService()

	a, err := svc.PlaceBooking(t.Context(), event.ID, "user-a", party(1), "")
	require.NoError(t, err)
	b, err := svc.PlaceBooking(t.Context(), event.ID, "user-b", party(1), "")
	require.NoError(t, err)
	w, err := svc.PlaceBooking(t.Context(), event.ID, "user-w", party(1), "")
	require.NoError(t, err)
	require.Equal(t, models.StatusWaiting, w.Status)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	for _, booking := range []*models.Booking{a, b} {
		go func(id uint, owner string) {
			defer wg.Done()
			_, _, err := svc.CancelBooking(t.Context(), id, owner)
			errs <- err
		}(booking.ID, booking.UserID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var wAfter models.Booking
	require.NoError(t, testDB.First(&wAfter, w.ID).Error)
	assert.Equal(t, models.StatusAttending, wAfter.Status)
	assert.Equal(t, 1, attendingSum(t, event.ID))
}
