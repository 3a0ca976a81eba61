package service

import (
	"context"
	"math/big"

	"onchat/internal/cache"
	"onchat/internal/chain"
	"onchat/internal/models"
	"onchat/internal/observability"
	"onchat/internal/payout"
	"onchat/internal/repository"
	"onchat/internal/validation"

	"gorm.io/gorm"
)

// ChannelService provides channel registration and membership logic.
type ChannelService struct {
	db         *gorm.DB
	transferer payout.Transferer
	publisher  EventPublisher
	metrics    *observability.LedgerMetrics
}

// NewChannelService returns a new ChannelService.
func NewChannelService(db *gorm.DB, transferer payout.Transferer, publisher EventPublisher) *ChannelService {
	return &ChannelService{
		db:         db,
		transferer: transferer,
		publisher:  publisher,
		metrics:    observability.NewLedgerMetrics(),
	}
}

// CreateChannelInput is the input for registering a channel.
type CreateChannelInput struct {
	Sender   string
	Slug     string
	Name     string
	ValueWei *big.Int
}

// CreateChannel registers a channel under the slug's hash, collects the
// creation fee, and enrolls the creator as the first member. Overpayment is
// refunded, never rejected.
func (s *ChannelService) CreateChannel(ctx context.Context, in CreateChannelInput) (*models.Channel, error) {
	if err := validation.ValidateChannelSlug(in.Slug); err != nil {
		return nil, models.NewInvalidParamsError(err.Error())
	}
	if err := validation.ValidateChannelName(in.Name); err != nil {
		return nil, models.NewInvalidParamsError(err.Error())
	}
	paid := nonNeg(in.ValueWei)
	slugHash := chain.HashSlug(in.Slug)

	var (
		channel    *models.Channel
		event      *models.Event
		ownerShare *big.Int
		treasury   *big.Int
		refund     *big.Int
	)
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepos(tx)

		state, err := getStateForUpdate(ctx, repos)
		if err != nil {
			return err
		}
		fee := &state.ChannelCreationFee.Int
		if paid.Cmp(fee) < 0 {
			return models.NewInsufficientPaymentError(fee, paid)
		}

		channel = &models.Channel{
			SlugHash:    slugHash,
			Slug:        in.Slug,
			Name:        in.Name,
			Owner:       in.Sender,
			MemberCount: 1,
		}
		if err := repos.Channels.Create(ctx, channel); err != nil {
			return err
		}
		if err := repos.Members.Add(ctx, &models.ChannelMember{
			ChannelID: channel.ID,
			Address:   in.Sender,
		}); err != nil {
			return err
		}

		ownerShare, treasury, err = creditFee(ctx, repos, state, in.Sender, fee)
		if err != nil {
			return err
		}

		event, err = appendEvent(ctx, repos, models.EventChannelCreated, slugHash, in.Sender, map[string]interface{}{
			"slug":    in.Slug,
			"name":    in.Name,
			"owner":   in.Sender,
			"fee_wei": fee.String(),
		})
		if err != nil {
			return err
		}

		refund, err = settleExcess(ctx, repos, s.transferer, in.Sender, paid, fee)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	cache.InvalidateChannel(ctx, slugHash)
	cache.InvalidateUserChannels(ctx, in.Sender)
	cache.InvalidateLedgerState(ctx)
	s.metrics.RecordChannelCreated()
	s.metrics.RecordFeeCollected(weiFloat(ownerShare), weiFloat(treasury))
	if refund.Sign() > 0 {
		s.metrics.RecordPayout(string(models.PayoutKindRefund))
	}
	emit(s.publisher, s.metrics, event)
	return channel, nil
}

// JoinChannel enrolls the sender as a member. Banned addresses must be
// unbanned first; unbanning alone never restores membership.
func (s *ChannelService) JoinChannel(ctx context.Context, slugHash, sender string) (*models.Channel, error) {
	var (
		channel *models.Channel
		event   *models.Event
	)
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepos(tx)

		var err error
		channel, err = getChannelForUpdate(ctx, repos, slugHash)
		if err != nil {
			return err
		}

		member, err := repos.Members.IsMember(ctx, channel.ID, sender)
		if err != nil {
			return err
		}
		if member {
			return models.NewAlreadyMemberError()
		}
		banned, err := repos.Bans.IsBanned(ctx, channel.ID, sender)
		if err != nil {
			return err
		}
		if banned {
			return models.NewUserBannedError()
		}

		if err := repos.Members.Add(ctx, &models.ChannelMember{
			ChannelID: channel.ID,
			Address:   sender,
		}); err != nil {
			return err
		}
		channel.MemberCount++
		if err := repos.Channels.Update(ctx, channel); err != nil {
			return err
		}

		event, err = appendEvent(ctx, repos, models.EventChannelJoined, slugHash, sender, map[string]interface{}{
			"address": sender,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	cache.InvalidateChannel(ctx, slugHash)
	cache.InvalidateUserChannels(ctx, sender)
	emit(s.publisher, s.metrics, event)
	return channel, nil
}

// LeaveChannel removes the sender's membership and any moderator status.
func (s *ChannelService) LeaveChannel(ctx context.Context, slugHash, sender string) error {
	var event *models.Event
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepos(tx)

		channel, err := getChannelForUpdate(ctx, repos, slugHash)
		if err != nil {
			return err
		}

		member, err := repos.Members.IsMember(ctx, channel.ID, sender)
		if err != nil {
			return err
		}
		if !member {
			return models.NewNotMemberError()
		}

		if err := repos.Members.Remove(ctx, channel.ID, sender); err != nil {
			return err
		}
		if err := repos.Moderators.Remove(ctx, channel.ID, sender); err != nil {
			return err
		}
		if channel.MemberCount > 0 {
			channel.MemberCount--
		}
		if err := repos.Channels.Update(ctx, channel); err != nil {
			return err
		}

		event, err = appendEvent(ctx, repos, models.EventChannelLeft, slugHash, sender, map[string]interface{}{
			"address": sender,
		})
		return err
	})
	if txErr != nil {
		return txErr
	}

	cache.InvalidateChannel(ctx, slugHash)
	cache.InvalidateUserChannels(ctx, sender)
	emit(s.publisher, s.metrics, event)
	return nil
}

// GetChannel returns the channel registered under slugHash.
func (s *ChannelService) GetChannel(ctx context.Context, slugHash string) (*models.Channel, error) {
	channel, err := repository.NewChannelRepository(s.db).GetBySlugHashCached(ctx, slugHash)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, models.NewChannelNotFoundError(slugHash)
	}
	return channel, nil
}

// GetLatestChannels returns a newest-first page of channels. The default
// first page is the hot path for directory views, so it is served through
// the cache; every other page goes straight to the database.
func (s *ChannelService) GetLatestChannels(ctx context.Context, limit, offset int) ([]*models.Channel, error) {
	repo := repository.NewChannelRepository(s.db)
	if offset != 0 || limit != 20 {
		return repo.List(ctx, limit, offset)
	}

	var channels []*models.Channel
	err := cache.Aside(ctx, cache.ChannelDirectoryKey, &channels, cache.DirectoryTTL, func() error {
		var fetchErr error
		channels, fetchErr = repo.List(ctx, limit, offset)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return channels, nil
}

// GetChannelCount returns the total number of registered channels.
func (s *ChannelService) GetChannelCount(ctx context.Context) (int64, error) {
	return repository.NewChannelRepository(s.db).Count(ctx)
}

// GetChannelMembers returns a join-order page of channel members.
func (s *ChannelService) GetChannelMembers(ctx context.Context, slugHash string, limit, offset int) ([]*models.ChannelMember, error) {
	repos := repository.NewRepos(s.db)
	channel, err := getChannel(ctx, repos, slugHash)
	if err != nil {
		return nil, err
	}
	return repos.Members.List(ctx, channel.ID, limit, offset)
}

// GetUserChannels returns the channels an address has joined, oldest join
// first. The default first page is cached per address.
func (s *ChannelService) GetUserChannels(ctx context.Context, address string, limit, offset int) ([]*models.Channel, error) {
	repo := repository.NewChannelRepository(s.db)
	if offset != 0 || limit != 20 {
		return repo.ListJoinedBy(ctx, address, limit, offset)
	}

	var channels []*models.Channel
	err := cache.Aside(ctx, cache.UserChannelsKey(address), &channels, cache.UserChannelsTTL, func() error {
		var fetchErr error
		channels, fetchErr = repo.ListJoinedBy(ctx, address, limit, offset)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return channels, nil
}

// GetUserChannelCount returns how many channels an address has joined.
func (s *ChannelService) GetUserChannelCount(ctx context.Context, address string) (int64, error) {
	return repository.NewChannelRepository(s.db).CountJoinedBy(ctx, address)
}

// IsMember reports membership. A missing channel yields false, not an
// error.
func (s *ChannelService) IsMember(ctx context.Context, slugHash, address string) (bool, error) {
	repos := repository.NewRepos(s.db)
	channel, err := repos.Channels.GetBySlugHash(ctx, slugHash)
	if err != nil {
		return false, err
	}
	if channel == nil {
		return false, nil
	}
	return repos.Members.IsMember(ctx, channel.ID, address)
}
