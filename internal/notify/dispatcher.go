// Package notify dispatches booking status-change notifications: a message
// on the notifications exchange for external delivery (email, push) and an
// in-app notification row. Dispatch is fire-and-forget; failures are logged
// and never surfaced to the booking operation that triggered them.
package notify

import (
	"context"
	"fmt"

	"github.com/courtmix/mixing-service/internal/models"
	"github.com/courtmix/mixing-service/internal/repository"
	"github.com/courtmix/mixing-service/pkg/rabbitmq"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is the payload published for external delivery.
type Message struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	EventID   uint   `json:"event_id"`
	BookingID uint   `json:"booking_id"`
}

type Dispatcher struct {
	publisher *rabbitmq.Publisher
	repo      repository.NotificationRepository
	logger    *zap.Logger
}

func NewDispatcher(publisher *rabbitmq.Publisher, repo repository.NotificationRepository, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{publisher: publisher, repo: repo, logger: logger}
}

func (d *Dispatcher) BookingConfirmed(ctx context.Context, booking *models.Booking, event *models.Event) {
	d.dispatch(ctx, "booking.confirmed", booking, event,
		models.NotifBookingConfirmed,
		"Booking Confirmed",
		fmt.Sprintf("Your booking for %q has been confirmed.", event.Title),
	)
}

func (d *Dispatcher) AddedToWaitingList(ctx context.Context, booking *models.Booking, event *models.Event) {
	d.dispatch(ctx, "booking.waiting", booking, event,
		models.NotifWaitingList,
		"Added to Waiting List",
		fmt.Sprintf("You've been added to the waiting list for %q.", event.Title),
	)
}

func (d *Dispatcher) SpotAvailable(ctx context.Context, booking *models.Booking, event *models.Event) {
	d.dispatch(ctx, "booking.promoted", booking, event,
		models.NotifSpotAvailable,
		"Spot Available",
		fmt.Sprintf("A spot is now available for %q.", event.Title),
	)
}

func (d *Dispatcher) dispatch(ctx context.Context, routingKey string, booking *models.Booking, event *models.Event, notifType, title, message string) {
	if d.publisher != nil {
		msg := Message{
			Type:      notifType,
			UserID:    booking.UserID,
			EventID:   event.ID,
			BookingID: booking.ID,
		}
		if err := d.publisher.Publish(routingKey, msg); err != nil {
			d.logger.Error("notification publish failed",
				zap.String("routing_key", routingKey),
				zap.Uint("booking_id", booking.ID),
				zap.Error(err),
			)
		}
	}

	if d.repo != nil {
		n := &models.Notification{
			ID:      uuid.NewString(),
			UserID:  booking.UserID,
			Type:    notifType,
			Title:   title,
			Message: message,
			Data: models.NotificationData{
				EventID:   event.ID,
				BookingID: booking.ID,
			},
		}
		if err := d.repo.Create(ctx, n); err != nil {
			d.logger.Error("in-app notification write failed",
				zap.String("type", notifType),
				zap.Uint("booking_id", booking.ID),
				zap.Error(err),
			)
		}
	}
}
