package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/courtmix/mixing-service/internal/models"
	"github.com/courtmix/mixing-service/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrEventNotActive   = errors.New("event is not open for booking")
	ErrAlreadyBooked    = errors.New("user already has an active booking for this event")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrForbidden        = errors.New("only the booking requester or the event organizer may cancel")
	ErrValidation       = errors.New("invalid booking request")
)

// Notifier delivers status-change notifications. Delivery is best-effort:
// implementations log failures and never return them.
type Notifier interface {
	BookingConfirmed(ctx context.Context, booking *models.Booking, event *models.Event)
	AddedToWaitingList(ctx context.Context, booking *models.Booking, event *models.Event)
	SpotAvailable(ctx context.Context, booking *models.Booking, event *models.Event)
}

// Feed announces booking-set changes per event so clients can re-fetch.
type Feed interface {
	BookingsChanged(ctx context.Context, eventID uint)
}

type BookingService interface {
	PlaceBooking(ctx context.Context, eventID uint, userID string, participantNames []string, idempotencyKey string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID uint, actingUserID string) (*models.Booking, []models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	ListBookings(ctx context.Context, eventID uint, status *models.BookingStatus) ([]models.Booking, error)
	AttendingCount(ctx context.Context, eventID uint) (int, error)
	WaitingCount(ctx context.Context, eventID uint) (int64, error)
	AvailableSpots(ctx context.Context, eventID uint) (int, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	eventRepo   repository.EventRepository
	notifier    Notifier
	feed        Feed
}

func NewBookingService(bookingRepo repository.BookingRepository, eventRepo repository.EventRepository, notifier Notifier, feed Feed) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		notifier:    notifier,
		feed:        feed,
	}
}

// normalizeParticipants trims each name and validates the request size.
func normalizeParticipants(names []string, peoplePerBooking int) ([]string, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one participant name is required", ErrValidation)
	}
	if len(names) > peoplePerBooking {
		return nil, fmt.Errorf("%w: at most %d participants per booking", ErrValidation, peoplePerBooking)
	}
	trimmed := make([]string, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: participant names must not be blank", ErrValidation)
		}
		trimmed[i] = name
	}
	return trimmed, nil
}

func (s *bookingService) PlaceBooking(ctx context.Context, eventID uint, userID string, participantNames []string, idempotencyKey string) (*models.Booking, error) {
	var (
		result   *models.Booking
		event    *models.Event
		replayed bool
	)

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the event row — serializes all booking mutations per event
		ev, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		event = ev

		if !ev.IsBookable() {
			return ErrEventNotActive
		}

		names, err := normalizeParticipants(participantNames, ev.PeoplePerBooking)
		if err != nil {
			return err
		}

		// Retry with the same idempotency key replays the existing booking
		if idempotencyKey != "" {
			existing, err := s.bookingRepo.FindByIdempotencyKey(ctx, tx, eventID, userID, idempotencyKey)
			if err == nil {
				result = existing
				replayed = true
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		_, err = s.bookingRepo.FindActiveByUserAndEvent(ctx, tx, userID, eventID)
		if err == nil {
			return ErrAlreadyBooked
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		attending, err := s.bookingRepo.SumAttendingParticipants(ctx, tx, eventID)
		if err != nil {
			return err
		}

		// All-or-nothing placement: the whole party attends or the whole
		// party waits.
		status := models.StatusWaiting
		if len(names) <= ev.Capacity-attending {
			status = models.StatusAttending
		}

		booking := &models.Booking{
			EventID:          eventID,
			UserID:           userID,
			ParticipantNames: names,
			PartySize:        len(names),
			Status:           status,
			BookedAt:         time.Now(),
		}
		if idempotencyKey != "" {
			booking.IdempotencyKey = &idempotencyKey
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			return err
		}

		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !replayed {
		if s.notifier != nil {
			if result.Status == models.StatusAttending {
				s.notifier.BookingConfirmed(ctx, result, event)
			} else {
				s.notifier.AddedToWaitingList(ctx, result, event)
			}
		}
		if s.feed != nil {
			s.feed.BookingsChanged(ctx, eventID)
		}
	}

	return result, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID uint, actingUserID string) (*models.Booking, []models.Booking, error) {
	var (
		cancelled *models.Booking
		promoted  []models.Booking
		event     *models.Event
	)

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByID(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		ev, err := s.eventRepo.FindByIDForUpdate(ctx, tx, booking.EventID)
		if err != nil {
			return err
		}
		event = ev

		// Re-read under the event lock so a concurrent cancel can't slip in
		// between the first read and the lock acquisition.
		booking, err = s.bookingRepo.FindByID(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status == models.StatusCancelled {
			return ErrAlreadyCancelled
		}
		if actingUserID != booking.UserID && actingUserID != ev.OrganizerID {
			return ErrForbidden
		}

		wasAttending := booking.Status == models.StatusAttending

		now := time.Now()
		if err := s.bookingRepo.Cancel(ctx, tx, booking.ID, now); err != nil {
			return err
		}
		booking.Status = models.StatusCancelled
		booking.CancelledAt = &now
		cancelled = booking

		// Cancelling a waiting booking frees nothing; no other booking moves.
		if !wasAttending {
			return nil
		}

		attending, err := s.bookingRepo.SumAttendingParticipants(ctx, tx, ev.ID)
		if err != nil {
			return err
		}
		free := ev.Capacity - attending
		if free <= 0 {
			return nil
		}

		waiting, err := s.bookingRepo.FindWaiting(ctx, tx, ev.ID)
		if err != nil {
			return err
		}
		for _, b := range promotable(waiting, free) {
			if err := s.bookingRepo.UpdateStatus(ctx, tx, b.ID, models.StatusAttending); err != nil {
				return err
			}
			b.Status = models.StatusAttending
			promoted = append(promoted, b)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if s.notifier != nil {
		for i := range promoted {
			s.notifier.SpotAvailable(ctx, &promoted[i], event)
		}
	}
	if s.feed != nil {
		s.feed.BookingsChanged(ctx, cancelled.EventID)
	}

	return cancelled, promoted, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, s.bookingRepo.GetDB(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, eventID uint, status *models.BookingStatus) ([]models.Booking, error) {
	return s.bookingRepo.FindByEventID(ctx, eventID, status)
}

func (s *bookingService) AttendingCount(ctx context.Context, eventID uint) (int, error) {
	return s.bookingRepo.SumAttendingParticipants(ctx, s.bookingRepo.GetDB(), eventID)
}

func (s *bookingService) WaitingCount(ctx context.Context, eventID uint) (int64, error) {
	return s.bookingRepo.CountByStatus(ctx, s.bookingRepo.GetDB(), eventID, models.StatusWaiting)
}

func (s *bookingService) AvailableSpots(ctx context.Context, eventID uint) (int, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrEventNotFound
		}
		return 0, err
	}
	attending, err := s.AttendingCount(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return event.Capacity - attending, nil
}
