package repository

import (
	"context"
	"time"

	"github.com/courtmix/mixing-service/internal/models"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	FindByEventID(ctx context.Context, eventID uint, status *models.BookingStatus) ([]models.Booking, error)
	FindActiveByUserAndEvent(ctx context.Context, tx *gorm.DB, userID string, eventID uint) (*models.Booking, error)
	FindByIdempotencyKey(ctx context.Context, tx *gorm.DB, eventID uint, userID, key string) (*models.Booking, error)
	FindWaiting(ctx context.Context, tx *gorm.DB, eventID uint) ([]models.Booking, error)
	SumAttendingParticipants(ctx context.Context, tx *gorm.DB, eventID uint) (int, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, eventID uint, status models.BookingStatus) (int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.BookingStatus) error
	Cancel(ctx context.Context, tx *gorm.DB, bookingID uint, at time.Time) error
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByEventID(ctx context.Context, eventID uint, status *models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).Where("event_id = ?", eventID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("booked_at ASC, id ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindActiveByUserAndEvent(ctx context.Context, tx *gorm.DB, userID string, eventID uint) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND status <> ?", userID, eventID, models.StatusCancelled).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIdempotencyKey resolves a retry token. Keys are caller-supplied, so
// the lookup is scoped to the requesting user; the same key from another
// user is a different booking.
func (r *bookingRepository) FindByIdempotencyKey(ctx context.Context, tx *gorm.DB, eventID uint, userID, key string) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Where("event_id = ? AND user_id = ? AND idempotency_key = ?", eventID, userID, key).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindWaiting returns the waiting bookings in promotion order: booked_at
// ascending, id as tie-break.
func (r *bookingRepository) FindWaiting(ctx context.Context, tx *gorm.DB, eventID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := tx.WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, models.StatusWaiting).
		Order("booked_at ASC, id ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// SumAttendingParticipants returns the number of committed capacity slots:
// the sum of party sizes over all attending bookings for the event.
func (r *bookingRepository) SumAttendingParticipants(ctx context.Context, tx *gorm.DB, eventID uint) (int, error) {
	var sum int
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Select("COALESCE(SUM(party_size), 0)").
		Where("event_id = ? AND status = ?", eventID, models.StatusAttending).
		Scan(&sum).Error
	return sum, err
}

func (r *bookingRepository) CountByStatus(ctx context.Context, tx *gorm.DB, eventID uint, status models.BookingStatus) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("event_id = ? AND status = ?", eventID, status).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.BookingStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status).Error
}

func (r *bookingRepository) Cancel(ctx context.Context, tx *gorm.DB, bookingID uint, at time.Time) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]any{
			"status":       models.StatusCancelled,
			"cancelled_at": at,
		}).Error
}
