package service

import (
	"context"
	"math/big"

	"onchat/internal/cache"
	"onchat/internal/chain"
	"onchat/internal/fees"
	"onchat/internal/models"
	"onchat/internal/observability"
	"onchat/internal/payout"
	"onchat/internal/repository"
	"onchat/internal/validation"

	"gorm.io/gorm"
)

// MessageService provides the append-only message log and its fee logic.
type MessageService struct {
	db         *gorm.DB
	transferer payout.Transferer
	publisher  EventPublisher
	metrics    *observability.LedgerMetrics
}

// NewMessageService returns a new MessageService.
func NewMessageService(db *gorm.DB, transferer payout.Transferer, publisher EventPublisher) *MessageService {
	return &MessageService{
		db:         db,
		transferer: transferer,
		publisher:  publisher,
		metrics:    observability.NewLedgerMetrics(),
	}
}

// SendMessageInput is the input for appending a message.
type SendMessageInput struct {
	Sender   string
	SlugHash string
	Content  string
	ValueWei *big.Int
}

// SendMessage appends a message to the channel log. The index is assigned
// under the channel row lock from the pre-send message count, so indexes
// are gapless and never reused. The fee scales with content byte length
// and is credited to the channel owner and the treasury.
func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if err := validation.ValidateMessageContent(in.Content); err != nil {
		return nil, models.NewInvalidParamsError(err.Error())
	}
	paid := nonNeg(in.ValueWei)

	var (
		message    *models.Message
		event      *models.Event
		ownerShare *big.Int
		treasury   *big.Int
		refund     *big.Int
	)
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepos(tx)

		channel, err := getChannelForUpdate(ctx, repos, in.SlugHash)
		if err != nil {
			return err
		}

		banned, err := repos.Bans.IsBanned(ctx, channel.ID, in.Sender)
		if err != nil {
			return err
		}
		if banned {
			return models.NewUserBannedError()
		}
		member, err := repos.Members.IsMember(ctx, channel.ID, in.Sender)
		if err != nil {
			return err
		}
		if !member {
			return models.NewNotMemberError()
		}

		state, err := getStateForUpdate(ctx, repos)
		if err != nil {
			return err
		}
		fee := fees.MessageFee(&state.MessageFeeBase.Int, &state.MessageFeePerByte.Int, len(in.Content))
		if paid.Cmp(fee) < 0 {
			return models.NewInsufficientPaymentError(fee, paid)
		}

		message = &models.Message{
			ChannelID:    channel.ID,
			MessageIndex: channel.MessageCount,
			Sender:       in.Sender,
			Content:      in.Content,
		}
		if err := repos.Messages.Create(ctx, message); err != nil {
			return err
		}
		channel.MessageCount++
		if err := repos.Channels.Update(ctx, channel); err != nil {
			return err
		}

		ownerShare, treasury, err = creditFee(ctx, repos, state, channel.Owner, fee)
		if err != nil {
			return err
		}

		event, err = appendEvent(ctx, repos, models.EventMessageSent, in.SlugHash, in.Sender, map[string]interface{}{
			"message_index": message.MessageIndex,
			"content":       in.Content,
			"fee_wei":       fee.String(),
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

	cache.Invalidate(ctx, cache.MessageHistoryKey(in.SlugHash))
	cache.Invalidate(ctx, cache.ChannelKey(in.SlugHash))
	cache.InvalidateLedgerState(ctx)
	s.metrics.RecordMessageSent()
	s.metrics.RecordFeeCollected(weiFloat(ownerShare), weiFloat(treasury))
	if refund.Sign() > 0 {
		s.metrics.RecordPayout(string(models.PayoutKindRefund))
	}
	emit(s.publisher, s.metrics, event)
	return message, nil
}

// HideMessage flips a message hidden. Only the channel owner or a
// moderator may moderate; the message itself stays in the log.
func (s *MessageService) HideMessage(ctx context.Context, slugHash string, index uint64, sender string) (*models.Message, error) {
	return s.setHidden(ctx, slugHash, index, sender, true)
}

// UnhideMessage makes a hidden message visible again.
func (s *MessageService) UnhideMessage(ctx context.Context, slugHash string, index uint64, sender string) (*models.Message, error) {
	return s.setHidden(ctx, slugHash, index, sender, false)
}

func (s *MessageService) setHidden(ctx context.Context, slugHash string, index uint64, sender string, hidden bool) (*models.Message, error) {
	var (
		message *models.Message
		event   *models.Event
	)
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepos(tx)

		channel, err := getChannel(ctx, repos, slugHash)
		if err != nil {
			return err
		}
		if err := requireOwnerOrModerator(ctx, repos, channel, sender); err != nil {
			return err
		}

		message, err = repos.Messages.GetByIndex(ctx, channel.ID, index)
		if err != nil {
			return err
		}
		if message == nil {
			return models.NewMessageNotFoundError(index)
		}

		message.IsHidden = hidden
		if err := repos.Messages.Update(ctx, message); err != nil {
			return err
		}

		eventType := models.EventMessageHidden
		if !hidden {
			eventType = models.EventMessageUnhidden
		}
		event, err = appendEvent(ctx, repos, eventType, slugHash, sender, map[string]interface{}{
			"message_index": index,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	cache.Invalidate(ctx, cache.MessageHistoryKey(slugHash))
	emit(s.publisher, s.metrics, event)
	return message, nil
}

// GetLatestMessages returns a newest-first page of the channel log. The
// default first page is what chat views poll, so it is served through the
// cache; sends and moderation invalidate it.
func (s *MessageService) GetLatestMessages(ctx context.Context, slugHash string, limit, offset int) ([]*models.Message, error) {
	repos := repository.NewRepos(s.db)
	channel, err := getChannel(ctx, repos, slugHash)
	if err != nil {
		return nil, err
	}
	if offset != 0 || limit != 20 {
		return repos.Messages.ListNewestFirst(ctx, channel.ID, limit, offset)
	}

	var messages []*models.Message
	err = cache.Aside(ctx, cache.MessageHistoryKey(slugHash), &messages, cache.MessageHistoryTTL, func() error {
		var fetchErr error
		messages, fetchErr = repos.Messages.ListNewestFirst(ctx, channel.ID, limit, offset)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetMessagesRange returns messages with start <= index < end in
// chronological order. end is capped at the log length; an inverted or
// out-of-range window yields an empty page.
func (s *MessageService) GetMessagesRange(ctx context.Context, slugHash string, start, end uint64) ([]*models.Message, error) {
	repos := repository.NewRepos(s.db)
	channel, err := getChannel(ctx, repos, slugHash)
	if err != nil {
		return nil, err
	}
	if end > channel.MessageCount {
		end = channel.MessageCount
	}
	if start >= end {
		return []*models.Message{}, nil
	}
	return repos.Messages.ListRange(ctx, channel.ID, start, end)
}

// GetMessageCount returns the channel's log length.
func (s *MessageService) GetMessageCount(ctx context.Context, slugHash string) (uint64, error) {
	repos := repository.NewRepos(s.db)
	channel, err := getChannel(ctx, repos, slugHash)
	if err != nil {
		return 0, err
	}
	return channel.MessageCount, nil
}

// QuoteMessageFee prices a message of contentBytes UTF-8 bytes at the
// current fee schedule.
func (s *MessageService) QuoteMessageFee(ctx context.Context, contentBytes int) (*big.Int, error) {
	if contentBytes < 0 {
		return nil, models.NewInvalidParamsError("byte length must not be negative")
	}
	state, err := repository.NewStateRepository(s.db).Get(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, models.NewInternalError(errLedgerStateMissing)
	}
	return fees.MessageFee(&state.MessageFeeBase.Int, &state.MessageFeePerByte.Int, contentBytes), nil
}

// requireOwnerOrModerator authorizes channel moderation actions.
func requireOwnerOrModerator(ctx context.Context, repos *repository.Repos, channel *models.Channel, sender string) error {
	if chain.SameAddress(sender, channel.Owner) {
		return nil
	}
	moderator, err := repos.Moderators.IsModerator(ctx, channel.ID, sender)
	if err != nil {
		return err
	}
	if !moderator {
		return models.NewNotOwnerOrModeratorError()
	}
	return nil
}
