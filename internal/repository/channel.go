package repository

import (
	"context"
	"errors"

	"onchat/internal/cache"
	"onchat/internal/models"

	"gorm.io/gorm"
)

// ChannelRepository defines persistence operations for channels.
type ChannelRepository interface {
	Create(ctx context.Context, channel *models.Channel) error
	GetBySlugHash(ctx context.Context, slugHash string) (*models.Channel, error)
	GetBySlugHashForUpdate(ctx context.Context, slugHash string) (*models.Channel, error)
	GetBySlugHashCached(ctx context.Context, slugHash string) (*models.Channel, error)
	Update(ctx context.Context, channel *models.Channel) error
	List(ctx context.Context, limit, offset int) ([]*models.Channel, error)
	Count(ctx context.Context) (int64, error)
	ListJoinedBy(ctx context.Context, address string, limit, offset int) ([]*models.Channel, error)
	CountJoinedBy(ctx context.Context, address string) (int64, error)
}

type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository returns a new ChannelRepository implementation.
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

func (r *channelRepository) Create(ctx context.Context, channel *models.Channel) error {
	if err := r.db.WithContext(ctx).Create(channel).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewChannelExistsError(channel.Slug)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *channelRepository) GetBySlugHash(ctx context.Context, slugHash string) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.WithContext(ctx).Where("slug_hash = ?", slugHash).First(&channel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &channel, nil
}

// GetBySlugHashForUpdate loads the channel under a row lock. Message
// numbering and the member counters depend on this lock: the channel row
// acts as the serialization point for all writes that touch one channel.
func (r *channelRepository) GetBySlugHashForUpdate(ctx context.Context, slugHash string) (*models.Channel, error) {
	var channel models.Channel
	err := lockForUpdate(r.db.WithContext(ctx)).Where("slug_hash = ?", slugHash).First(&channel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &channel, nil
}

// GetBySlugHashCached serves channel metadata through the cache-aside path.
// Only the public read surface uses it; transactional code always reads the
// database directly.
func (r *channelRepository) GetBySlugHashCached(ctx context.Context, slugHash string) (*models.Channel, error) {
	var channel models.Channel
	err := cache.Aside(ctx, cache.ChannelKey(slugHash), &channel, cache.ChannelTTL, func() error {
		loaded, err := r.GetBySlugHash(ctx, slugHash)
		if err != nil {
			return err
		}
		if loaded == nil {
			return gorm.ErrRecordNotFound
		}
		channel = *loaded
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if channel.ID == 0 {
		return nil, nil
	}
	return &channel, nil
}

func (r *channelRepository) Update(ctx context.Context, channel *models.Channel) error {
	if err := r.db.WithContext(ctx).Save(channel).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// List returns channels newest first.
func (r *channelRepository) List(ctx context.Context, limit, offset int) ([]*models.Channel, error) {
	var channels []*models.Channel
	err := readDB(r.db).WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&channels).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return channels, nil
}

func (r *channelRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Channel{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// ListJoinedBy returns the channels an address is a member of, in join order.
func (r *channelRepository) ListJoinedBy(ctx context.Context, address string, limit, offset int) ([]*models.Channel, error) {
	var channels []*models.Channel
	err := readDB(r.db).WithContext(ctx).
		Joins("JOIN channel_members cm ON channels.id = cm.channel_id").
		Where("cm.address = ?", address).
		Order("cm.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&channels).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return channels, nil
}

func (r *channelRepository) CountJoinedBy(ctx context.Context, address string) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.ChannelMember{}).
		Where("address = ?", address).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
