package repository

import (
	"context"
	"errors"

	"onchat/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for channel messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByIndex(ctx context.Context, channelID uint, index uint64) (*models.Message, error)
	Update(ctx context.Context, msg *models.Message) error
	ListNewestFirst(ctx context.Context, channelID uint, limit, offset int) ([]*models.Message, error)
	ListRange(ctx context.Context, channelID uint, start, end uint64) ([]*models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetByIndex(ctx context.Context, channelID uint, index uint64) (*models.Message, error) {
	var msg models.Message
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND message_index = ?", channelID, index).
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}

func (r *messageRepository) Update(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Save(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListNewestFirst pages over a channel's log from the latest message
// backwards.
func (r *messageRepository) ListNewestFirst(ctx context.Context, channelID uint, limit, offset int) ([]*models.Message, error) {
	var messages []*models.Message
	err := readDB(r.db).WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("message_index DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// ListRange returns messages with start <= index < end in chronological
// order. Callers clamp the bounds; the query just reads.
func (r *messageRepository) ListRange(ctx context.Context, channelID uint, start, end uint64) ([]*models.Message, error) {
	var messages []*models.Message
	err := readDB(r.db).WithContext(ctx).
		Where("channel_id = ? AND message_index >= ? AND message_index < ?", channelID, start, end).
		Order("message_index ASC").
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}
