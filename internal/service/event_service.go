package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtmix/mixing-service/internal/models"
	"github.com/courtmix/mixing-service/internal/repository"
	"gorm.io/gorm"
)

var ErrInvalidTransition = errors.New("illegal event status transition")

// eventTransitions lists the legal status changes. Completed and cancelled
// are terminal.
var eventTransitions = map[models.EventStatus][]models.EventStatus{
	models.EventDraft:     {models.EventScheduled, models.EventActive, models.EventCancelled},
	models.EventScheduled: {models.EventActive, models.EventCancelled},
	models.EventActive:    {models.EventCompleted, models.EventCancelled},
}

func canTransition(from, to models.EventStatus) bool {
	for _, s := range eventTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type EventService interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpdateStatus(ctx context.Context, id uint, actingUserID string, next models.EventStatus) (*models.Event, error)
}

type eventService struct {
	repo repository.EventRepository
}

func NewEventService(repo repository.EventRepository) EventService {
	return &eventService{repo: repo}
}

func (s *eventService) CreateEvent(ctx context.Context, event *models.Event) error {
	// Immediate release opens the event right away; a release time parks it
	// as scheduled until the organizer (or their cron) activates it.
	if event.Status == "" {
		if event.ReleaseAt != nil {
			event.Status = models.EventScheduled
		} else {
			event.Status = models.EventActive
		}
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.repo.FindAll(ctx)
}

func (s *eventService) UpdateStatus(ctx context.Context, id uint, actingUserID string, next models.EventStatus) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if event.OrganizerID != actingUserID {
		return nil, ErrForbidden
	}
	if !canTransition(event.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, event.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	event.Status = next
	return event, nil
}
