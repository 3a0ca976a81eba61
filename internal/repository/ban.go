package repository

import (
	"context"

	"onchat/internal/models"

	"gorm.io/gorm"
)

// BanRepository defines persistence operations for channel bans.
type BanRepository interface {
	Add(ctx context.Context, ban *models.ChannelBan) error
	Remove(ctx context.Context, channelID uint, address string) error
	IsBanned(ctx context.Context, channelID uint, address string) (bool, error)
	List(ctx context.Context, channelID uint, limit, offset int) ([]*models.ChannelBan, error)
}

type banRepository struct {
	db *gorm.DB
}

// NewBanRepository returns a new BanRepository implementation.
func NewBanRepository(db *gorm.DB) BanRepository {
	return &banRepository{db: db}
}

func (r *banRepository) Add(ctx context.Context, ban *models.ChannelBan) error {
	if err := r.db.WithContext(ctx).Create(ban).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewUserBannedError()
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *banRepository) Remove(ctx context.Context, channelID uint, address string) error {
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND address = ?", channelID, address).
		Delete(&models.ChannelBan{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *banRepository) IsBanned(ctx context.Context, channelID uint, address string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChannelBan{}).
		Where("channel_id = ? AND address = ?", channelID, address).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// List returns bans in the order they were issued.
func (r *banRepository) List(ctx context.Context, channelID uint, limit, offset int) ([]*models.ChannelBan, error) {
	var bans []*models.ChannelBan
	err := readDB(r.db).WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&bans).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return bans, nil
}
