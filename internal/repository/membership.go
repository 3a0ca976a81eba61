package repository

import (
	"context"

	"onchat/internal/models"

	"gorm.io/gorm"
)

// MembershipRepository defines persistence operations for channel members.
type MembershipRepository interface {
	Add(ctx context.Context, member *models.ChannelMember) error
	Remove(ctx context.Context, channelID uint, address string) error
	IsMember(ctx context.Context, channelID uint, address string) (bool, error)
	List(ctx context.Context, channelID uint, limit, offset int) ([]*models.ChannelMember, error)
}

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository returns a new MembershipRepository implementation.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Add(ctx context.Context, member *models.ChannelMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewAlreadyMemberError()
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *membershipRepository) Remove(ctx context.Context, channelID uint, address string) error {
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND address = ?", channelID, address).
		Delete(&models.ChannelMember{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *membershipRepository) IsMember(ctx context.Context, channelID uint, address string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChannelMember{}).
		Where("channel_id = ? AND address = ?", channelID, address).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// List returns members in join order.
func (r *membershipRepository) List(ctx context.Context, channelID uint, limit, offset int) ([]*models.ChannelMember, error) {
	var members []*models.ChannelMember
	err := readDB(r.db).WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&members).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return members, nil
}

// ModeratorRepository defines persistence operations for channel moderators.
type ModeratorRepository interface {
	Add(ctx context.Context, moderator *models.ChannelModerator) error
	Remove(ctx context.Context, channelID uint, address string) error
	IsModerator(ctx context.Context, channelID uint, address string) (bool, error)
	List(ctx context.Context, channelID uint, limit, offset int) ([]*models.ChannelModerator, error)
}

type moderatorRepository struct {
	db *gorm.DB
}

// NewModeratorRepository returns a new ModeratorRepository implementation.
func NewModeratorRepository(db *gorm.DB) ModeratorRepository {
	return &moderatorRepository{db: db}
}

func (r *moderatorRepository) Add(ctx context.Context, moderator *models.ChannelModerator) error {
	if err := r.db.WithContext(ctx).Create(moderator).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewAlreadyModeratorError()
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *moderatorRepository) Remove(ctx context.Context, channelID uint, address string) error {
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND address = ?", channelID, address).
		Delete(&models.ChannelModerator{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *moderatorRepository) IsModerator(ctx context.Context, channelID uint, address string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChannelModerator{}).
		Where("channel_id = ? AND address = ?", channelID, address).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// List returns moderators in promotion order.
func (r *moderatorRepository) List(ctx context.Context, channelID uint, limit, offset int) ([]*models.ChannelModerator, error) {
	var moderators []*models.ChannelModerator
	err := readDB(r.db).WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&moderators).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return moderators, nil
}
