package service

import (
	"context"
	"math/big"

	"onchat/internal/cache"
	"onchat/internal/chain"
	"onchat/internal/config"
	"onchat/internal/fees"
	"onchat/internal/models"
	"onchat/internal/observability"
	"onchat/internal/payout"
	"onchat/internal/repository"

	"gorm.io/gorm"
)

// TreasuryService provides balance claims, the protocol fee schedule, and
// admin configuration.
type TreasuryService struct {
	db         *gorm.DB
	transferer payout.Transferer
	publisher  EventPublisher
	metrics    *observability.LedgerMetrics
}

// NewTreasuryService returns a new TreasuryService.
func NewTreasuryService(db *gorm.DB, transferer payout.Transferer, publisher EventPublisher) *TreasuryService {
	return &TreasuryService{
		db:         db,
		transferer: transferer,
		publisher:  publisher,
		metrics:    observability.NewLedgerMetrics(),
	}
}

// LedgerInfo is the public snapshot of protocol-wide state.
type LedgerInfo struct {
	AdminAddress       string        `json:"admin_address"`
	TreasuryWallet     string        `json:"treasury_wallet"`
	TreasuryBalance    models.BigInt `json:"treasury_balance"`
	ChannelCreationFee models.BigInt `json:"channel_creation_fee"`
	MessageFeeBase     models.BigInt `json:"message_fee_base"`
	MessageFeePerByte  models.BigInt `json:"message_fee_per_byte"`
	ChannelCount       int64         `json:"channel_count"`
}

// ClaimOwnerBalance pays out the sender's accrued channel revenue. The
// balance is read and zeroed before the transfer runs, and a transfer
// failure rolls everything back, so double claims cannot pay twice.
func (s *TreasuryService) ClaimOwnerBalance(ctx context.Context, sender string) (*big.Int, error) {
	var (
		amount *big.Int
		event  *models.Event
	)
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepos(tx)

		balance, err := repos.Balances.GetForUpdate(ctx, sender)
		if err != nil {
			return err
		}
		if balance == nil || balance.Balance.Sign() == 0 {
			return models.NewNothingToClaimError()
		}

		amount = new(big.Int).Set(&balance.Balance.Int)
		balance.Balance.SetInt64(0)
		if err := repos.Balances.Save(ctx, balance); err != nil {
			return err
		}

		event, err = appendEvent(ctx, repos, models.EventOwnerBalanceClaimed, "", sender, map[string]interface{}{
			"address":    sender,
			"amount_wei": amount.String(),
		})
		if err != nil {
			return err
		}

		return s.transferer.Transfer(ctx, repos, models.PayoutKindOwnerClaim, sender, amount)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.metrics.RecordPayout(string(models.PayoutKindOwnerClaim))
	emit(s.publisher, s.metrics, event)
	return amount, nil
}

// ClaimTreasuryBalance pays the accumulated protocol share out to the
// treasury wallet. Only the treasury wallet itself may call this.
func (s *TreasuryService) ClaimTreasuryBalance(ctx context.Context, sender string) (*big.Int, error) {
	var (
		amount *big.Int
		event  *models.Event
	)
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepos(tx)

		state, err := getStateForUpdate(ctx, repos)
		if err != nil {
			return err
		}
		if !chain.SameAddress(sender, state.TreasuryWallet) {
			return models.NewInvalidParamsError("only the treasury wallet may claim the treasury balance")
		}
		if state.TreasuryBalance.Sign() == 0 {
			return models.NewNothingToClaimError()
		}

		amount = new(big.Int).Set(&state.TreasuryBalance.Int)
		state.TreasuryBalance.SetInt64(0)
		if err := repos.State.Save(ctx, state); err != nil {
			return err
		}

		event, err = appendEvent(ctx, repos, models.EventTreasuryBalanceClaimed, "", sender, map[string]interface{}{
			"wallet":     state.TreasuryWallet,
			"amount_wei": amount.String(),
		})
		if err != nil {
			return err
		}

		return s.transferer.Transfer(ctx, repos, models.PayoutKindTreasuryClaim, state.TreasuryWallet, amount)
	})
	if txErr != nil {
		return nil, txErr
	}

	cache.InvalidateLedgerState(ctx)
	s.metrics.RecordPayout(string(models.PayoutKindTreasuryClaim))
	emit(s.publisher, s.metrics, event)
	return amount, nil
}

// SetTreasuryWallet points the protocol share at a new wallet. Admin only.
func (s *TreasuryService) SetTreasuryWallet(ctx context.Context, sender, wallet string) error {
	normalized, err := chain.NormalizeAddress(wallet)
	if err != nil {
		return models.NewInvalidParamsError(err.Error())
	}
	if chain.IsZeroAddress(normalized) {
		return models.NewInvalidParamsError("the treasury wallet cannot be the zero address")
	}
	return s.updateState(ctx, sender, models.EventTreasuryWalletUpdated,
		map[string]interface{}{"address": normalized},
		func(state *models.LedgerState) {
			state.TreasuryWallet = normalized
		})
}

// SetChannelCreationFee updates the flat channel registration fee. Admin
// only.
func (s *TreasuryService) SetChannelCreationFee(ctx context.Context, sender string, wei *big.Int) error {
	if err := validateFeeAmount(wei); err != nil {
		return err
	}
	return s.updateState(ctx, sender, models.EventChannelCreationFeeUpdated,
		map[string]interface{}{"amount_wei": wei.String()},
		func(state *models.LedgerState) {
			state.ChannelCreationFee = models.NewBigInt(wei)
		})
}

// SetMessageFeeBase updates the flat component of the message fee. Admin
// only.
func (s *TreasuryService) SetMessageFeeBase(ctx context.Context, sender string, wei *big.Int) error {
	if err := validateFeeAmount(wei); err != nil {
		return err
	}
	return s.updateState(ctx, sender, models.EventMessageFeeBaseUpdated,
		map[string]interface{}{"amount_wei": wei.String()},
		func(state *models.LedgerState) {
			state.MessageFeeBase = models.NewBigInt(wei)
		})
}

// SetMessageFeePerByte updates the per-byte component of the message fee.
// Admin only.
func (s *TreasuryService) SetMessageFeePerByte(ctx context.Context, sender string, wei *big.Int) error {
	if err := validateFeeAmount(wei); err != nil {
		return err
	}
	return s.updateState(ctx, sender, models.EventMessageFeePerByteUpdated,
		map[string]interface{}{"amount_wei": wei.String()},
		func(state *models.LedgerState) {
			state.MessageFeePerByte = models.NewBigInt(wei)
		})
}

// TransferAdmin hands ledger administration to a new address. Admin only.
func (s *TreasuryService) TransferAdmin(ctx context.Context, sender, newAdmin string) error {
	normalized, err := chain.NormalizeAddress(newAdmin)
	if err != nil {
		return models.NewInvalidParamsError(err.Error())
	}
	if chain.IsZeroAddress(normalized) {
		return models.NewInvalidParamsError("the admin cannot be the zero address")
	}
	return s.updateState(ctx, sender, models.EventAdminTransferred,
		map[string]interface{}{"address": normalized},
		func(state *models.LedgerState) {
			state.AdminAddress = normalized
		})
}

// updateState runs one admin mutation of the state row: authority check,
// mutation, event append.
func (s *TreasuryService) updateState(ctx context.Context, sender string, eventType models.EventType, payload map[string]interface{}, mutate func(*models.LedgerState)) error {
	var event *models.Event
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepos(tx)

		state, err := getStateForUpdate(ctx, repos)
		if err != nil {
			return err
		}
		if !chain.SameAddress(sender, state.AdminAddress) {
			return models.NewNotAdminError()
		}

		mutate(state)
		if err := repos.State.Save(ctx, state); err != nil {
			return err
		}

		event, err = appendEvent(ctx, repos, eventType, "", sender, payload)
		return err
	})
	if txErr != nil {
		return txErr
	}

	cache.InvalidateLedgerState(ctx)
	emit(s.publisher, s.metrics, event)
	return nil
}

// GetLedgerInfo returns the protocol configuration, treasury balance, and
// channel count. The snapshot is served through the cache; every state
// mutation and channel registration invalidates it.
func (s *TreasuryService) GetLedgerInfo(ctx context.Context) (*LedgerInfo, error) {
	var info LedgerInfo
	err := cache.Aside(ctx, cache.LedgerStateKey, &info, cache.LedgerStateTTL, func() error {
		repos := repository.NewRepos(s.db)
		state, err := repos.State.Get(ctx)
		if err != nil {
			return err
		}
		if state == nil {
			return models.NewInternalError(errLedgerStateMissing)
		}
		count, err := repos.Channels.Count(ctx)
		if err != nil {
			return err
		}
		info = LedgerInfo{
			AdminAddress:       state.AdminAddress,
			TreasuryWallet:     state.TreasuryWallet,
			TreasuryBalance:    state.TreasuryBalance,
			ChannelCreationFee: state.ChannelCreationFee,
			MessageFeeBase:     state.MessageFeeBase,
			MessageFeePerByte:  state.MessageFeePerByte,
			ChannelCount:       count,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetOwnerBalance returns an address's claimable balance. Addresses that
// never earned anything read as zero.
func (s *TreasuryService) GetOwnerBalance(ctx context.Context, address string) (*big.Int, error) {
	balance, err := repository.NewBalanceRepository(s.db).Get(ctx, address)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(&balance.Balance.Int), nil
}

// ListPayouts returns the payout audit trail, newest first, optionally
// filtered by recipient.
func (s *TreasuryService) ListPayouts(ctx context.Context, limit, offset int, recipient string) ([]*models.Payout, error) {
	return repository.NewPayoutRepository(s.db).List(ctx, limit, offset, recipient)
}

// SeedLedgerState writes the initial state row from configuration if the
// ledger has never been bootstrapped. An existing row always wins, so
// redeploys never undo admin changes.
func SeedLedgerState(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	admin, err := chain.NormalizeAddress(cfg.AdminAddress)
	if err != nil {
		return models.NewInvalidParamsError("ADMIN_ADDRESS: " + err.Error())
	}
	wallet, err := chain.NormalizeAddress(cfg.TreasuryWallet)
	if err != nil {
		return models.NewInvalidParamsError("TREASURY_WALLET: " + err.Error())
	}
	creationFee, err := fees.EtherToWei(cfg.ChannelCreationFeeEth)
	if err != nil {
		return models.NewInvalidParamsError(err.Error())
	}
	feeBase, err := fees.EtherToWei(cfg.MessageFeeBaseEth)
	if err != nil {
		return models.NewInvalidParamsError(err.Error())
	}
	feePerByte, err := fees.EtherToWei(cfg.MessageFeePerByteEth)
	if err != nil {
		return models.NewInvalidParamsError(err.Error())
	}

	return repository.NewStateRepository(db).Seed(ctx, &models.LedgerState{
		AdminAddress:       admin,
		TreasuryWallet:     wallet,
		TreasuryBalance:    models.NewBigIntFromUint64(0),
		ChannelCreationFee: models.NewBigInt(creationFee),
		MessageFeeBase:     models.NewBigInt(feeBase),
		MessageFeePerByte:  models.NewBigInt(feePerByte),
	})
}

// validateFeeAmount rejects nil and negative fee settings.
func validateFeeAmount(wei *big.Int) error {
	if wei == nil {
		return models.NewInvalidParamsError("amount is required")
	}
	if wei.Sign() < 0 {
		return models.NewInvalidParamsError("amount must not be negative")
	}
	return nil
}
