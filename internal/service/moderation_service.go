package service

import (
	"context"

	"onchat/internal/cache"
	"onchat/internal/chain"
	"onchat/internal/models"
	"onchat/internal/observability"
	"onchat/internal/repository"

	"gorm.io/gorm"
)

// ModerationService provides channel-scoped bans and the moderator roster.
type ModerationService struct {
	db        *gorm.DB
	publisher EventPublisher
	metrics   *observability.LedgerMetrics
}

// NewModerationService returns a new ModerationService.
func NewModerationService(db *gorm.DB, publisher EventPublisher) *ModerationService {
	return &ModerationService{
		db:        db,
		publisher: publisher,
		metrics:   observability.NewLedgerMetrics(),
	}
}

// BanUser bans an address from the channel. A banned member loses
// membership and any moderator status in the same transaction as the ban
// insert, so no intermediate state is ever visible.
func (s *ModerationService) BanUser(ctx context.Context, slugHash, target, sender string) error {
	target, err := normalizeTarget(target)
	if err != nil {
		return err
	}

	var event *models.Event
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepos(tx)

		channel, err := getChannelForUpdate(ctx, repos, slugHash)
		if err != nil {
			return err
		}
		if err := requireOwnerOrModerator(ctx, repos, channel, sender); err != nil {
			return err
		}
		if chain.SameAddress(target, channel.Owner) {
			return models.NewInvalidParamsError("the channel owner cannot be banned")
		}

		if err := repos.Bans.Add(ctx, &models.ChannelBan{
			ChannelID: channel.ID,
			Address:   target,
			BannedBy:  sender,
		}); err != nil {
			return err
		}

		member, err := repos.Members.IsMember(ctx, channel.ID, target)
		if err != nil {
			return err
		}
		if member {
			if err := repos.Members.Remove(ctx, channel.ID, target); err != nil {
				return err
			}
			if channel.MemberCount > 0 {
				channel.MemberCount--
			}
			if err := repos.Channels.Update(ctx, channel); err != nil {
				return err
			}
		}
		if err := repos.Moderators.Remove(ctx, channel.ID, target); err != nil {
			return err
		}

		event, err = appendEvent(ctx, repos, models.EventUserBanned, slugHash, sender, map[string]interface{}{
			"address":   target,
			"banned_by": sender,
		})
		return err
	})
	if txErr != nil {
		return txErr
	}

	cache.InvalidateChannel(ctx, slugHash)
	cache.InvalidateUserChannels(ctx, target)
	emit(s.publisher, s.metrics, event)
	return nil
}

// UnbanUser lifts a ban. Membership is not restored; the user re-joins
// explicitly if they want back in.
func (s *ModerationService) UnbanUser(ctx context.Context, slugHash, target, sender string) error {
	target, err := normalizeTarget(target)
	if err != nil {
		return err
	}

	var event *models.Event
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepos(tx)

		channel, err := getChannel(ctx, repos, slugHash)
		if err != nil {
			return err
		}
		if err := requireOwnerOrModerator(ctx, repos, channel, sender); err != nil {
			return err
		}

		banned, err := repos.Bans.IsBanned(ctx, channel.ID, target)
		if err != nil {
			return err
		}
		if !banned {
			return models.NewUserNotBannedError()
		}
		if err := repos.Bans.Remove(ctx, channel.ID, target); err != nil {
			return err
		}

		event, err = appendEvent(ctx, repos, models.EventUserUnbanned, slugHash, sender, map[string]interface{}{
			"address": target,
		})
		return err
	})
	if txErr != nil {
		return txErr
	}

	cache.InvalidateChannel(ctx, slugHash)
	emit(s.publisher, s.metrics, event)
	return nil
}

// AddModerator promotes a member to moderator. Owner only.
func (s *ModerationService) AddModerator(ctx context.Context, slugHash, target, sender string) error {
	target, err := normalizeTarget(target)
	if err != nil {
		return err
	}

	var event *models.Event
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepos(tx)

		channel, err := getChannel(ctx, repos, slugHash)
		if err != nil {
			return err
		}
		if !chain.SameAddress(sender, channel.Owner) {
			return models.NewNotChannelOwnerError()
		}

		member, err := repos.Members.IsMember(ctx, channel.ID, target)
		if err != nil {
			return err
		}
		if !member {
			return models.NewNotMemberError()
		}

		if err := repos.Moderators.Add(ctx, &models.ChannelModerator{
			ChannelID: channel.ID,
			Address:   target,
			AddedBy:   sender,
		}); err != nil {
			return err
		}

		event, err = appendEvent(ctx, repos, models.EventModeratorAdded, slugHash, sender, map[string]interface{}{
			"address":  target,
			"added_by": sender,
		})
		return err
	})
	if txErr != nil {
		return txErr
	}

	cache.InvalidateChannel(ctx, slugHash)
	emit(s.publisher, s.metrics, event)
	return nil
}

// RemoveModerator demotes a moderator. Owner only.
func (s *ModerationService) RemoveModerator(ctx context.Context, slugHash, target, sender string) error {
	target, err := normalizeTarget(target)
	if err != nil {
		return err
	}

	var event *models.Event
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepos(tx)

		channel, err := getChannel(ctx, repos, slugHash)
		if err != nil {
			return err
		}
		if !chain.SameAddress(sender, channel.Owner) {
			return models.NewNotChannelOwnerError()
		}

		moderator, err := repos.Moderators.IsModerator(ctx, channel.ID, target)
		if err != nil {
			return err
		}
		if !moderator {
			return models.NewNotModeratorError()
		}
		if err := repos.Moderators.Remove(ctx, channel.ID, target); err != nil {
			return err
		}

		event, err = appendEvent(ctx, repos, models.EventModeratorRemoved, slugHash, sender, map[string]interface{}{
			"address": target,
		})
		return err
	})
	if txErr != nil {
		return txErr
	}

	cache.InvalidateChannel(ctx, slugHash)
	emit(s.publisher, s.metrics, event)
	return nil
}

// GetChannelModerators returns a promotion-order page of moderators.
func (s *ModerationService) GetChannelModerators(ctx context.Context, slugHash string, limit, offset int) ([]*models.ChannelModerator, error) {
	repos := repository.NewRepos(s.db)
	channel, err := getChannel(ctx, repos, slugHash)
	if err != nil {
		return nil, err
	}
	return repos.Moderators.List(ctx, channel.ID, limit, offset)
}

// GetBannedUsers returns a ban-order page of banned addresses.
func (s *ModerationService) GetBannedUsers(ctx context.Context, slugHash string, limit, offset int) ([]*models.ChannelBan, error) {
	repos := repository.NewRepos(s.db)
	channel, err := getChannel(ctx, repos, slugHash)
	if err != nil {
		return nil, err
	}
	return repos.Bans.List(ctx, channel.ID, limit, offset)
}

// IsModerator reports moderator status. A missing channel yields false.
func (s *ModerationService) IsModerator(ctx context.Context, slugHash, address string) (bool, error) {
	repos := repository.NewRepos(s.db)
	channel, err := repos.Channels.GetBySlugHash(ctx, slugHash)
	if err != nil {
		return false, err
	}
	if channel == nil {
		return false, nil
	}
	return repos.Moderators.IsModerator(ctx, channel.ID, address)
}

// IsBanned reports ban status. A missing channel yields false.
func (s *ModerationService) IsBanned(ctx context.Context, slugHash, address string) (bool, error) {
	repos := repository.NewRepos(s.db)
	channel, err := repos.Channels.GetBySlugHash(ctx, slugHash)
	if err != nil {
		return false, err
	}
	if channel == nil {
		return false, nil
	}
	return repos.Bans.IsBanned(ctx, channel.ID, address)
}

// normalizeTarget canonicalizes a target address and rejects the zero
// address, which is never a meaningful moderation target.
func normalizeTarget(target string) (string, error) {
	normalized, err := chain.NormalizeAddress(target)
	if err != nil {
		return "", models.NewInvalidParamsError(err.Error())
	}
	if chain.IsZeroAddress(normalized) {
		return "", models.NewInvalidParamsError("the zero address is not a valid target")
	}
	return normalized, nil
}
