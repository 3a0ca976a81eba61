package service

import (
	"context"

	"onchat/internal/models"
	"onchat/internal/repository"

	"gorm.io/gorm"
)

// EventService pages the durable event log. The log is written by the
// other services inside their transactions; this is the read side.
type EventService struct {
	db *gorm.DB
}

// NewEventService returns a new EventService.
func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

// ListEvents returns events with ID greater than afterID in append order,
// optionally narrowed to one channel.
func (s *EventService) ListEvents(ctx context.Context, afterID uint64, limit int, slugHash string) ([]*models.Event, error) {
	return repository.NewEventRepository(s.db).ListAfter(ctx, afterID, limit, slugHash)
}
