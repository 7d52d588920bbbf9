package repository

import (
	"context"

	"github.com/courtmix/mixing-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindAll(ctx context.Context) ([]models.Event, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)
	UpdateStatus(ctx context.Context, id uint, status models.EventStatus) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindAll(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// FindByIDForUpdate acquires a row-level lock on the event within the given
// transaction. Every booking mutation for an event goes through this lock.
func (r *eventRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id uint, status models.EventStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Update("status", status).Error
}
