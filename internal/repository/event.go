package repository

import (
	"context"

	"onchat/internal/models"

	"gorm.io/gorm"
)

// EventRepository defines persistence operations for the append-only event
// log.
type EventRepository interface {
	Append(ctx context.Context, event *models.Event) error
	ListAfter(ctx context.Context, afterID uint64, limit int, slugHash string) ([]*models.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Append(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListAfter pages forward through the log by event ID. slugHash narrows the
// feed to one channel when non-empty.
func (r *eventRepository) ListAfter(ctx context.Context, afterID uint64, limit int, slugHash string) ([]*models.Event, error) {
	query := readDB(r.db).WithContext(ctx).Where("id > ?", afterID)
	if slugHash != "" {
		query = query.Where("slug_hash = ?", slugHash)
	}

	var events []*models.Event
	err := query.Order("id ASC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}
