// Package service implements the ledger's business logic: channel
// registration, membership, moderation, the message log, and the fee
// economics. Every write runs inside one database transaction covering the
// state mutation, the event-log insert, and any outbound payout, so a
// failure at any step leaves no partial state behind.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"

	"onchat/internal/fees"
	"onchat/internal/models"
	"onchat/internal/observability"
	"onchat/internal/payout"
	"onchat/internal/repository"
)

// errLedgerStateMissing reports a ledger whose state row was never seeded.
var errLedgerStateMissing = errors.New("ledger state not initialized")

// EventPublisher receives committed ledger events for live fan-out. The
// services call it after the transaction that produced the event commits,
// never before.
type EventPublisher interface {
	PublishEvent(event *models.Event)
}

// getChannel resolves a channel by slug hash or fails with ChannelNotFound.
func getChannel(ctx context.Context, repos *repository.Repos, slugHash string) (*models.Channel, error) {
	channel, err := repos.Channels.GetBySlugHash(ctx, slugHash)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, models.NewChannelNotFoundError(slugHash)
	}
	return channel, nil
}

// getChannelForUpdate is getChannel under the channel row lock. Writes that
// touch the member or message counters go through this so per-channel
// mutations serialize on the row.
func getChannelForUpdate(ctx context.Context, repos *repository.Repos, slugHash string) (*models.Channel, error) {
	channel, err := repos.Channels.GetBySlugHashForUpdate(ctx, slugHash)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, models.NewChannelNotFoundError(slugHash)
	}
	return channel, nil
}

// getStateForUpdate loads the singleton ledger state row under its lock.
// The row is seeded at startup; its absence is a deployment fault, not a
// caller error.
func getStateForUpdate(ctx context.Context, repos *repository.Repos) (*models.LedgerState, error) {
	state, err := repos.State.GetForUpdate(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, models.NewInternalError(errLedgerStateMissing)
	}
	return state, nil
}

// creditFee splits a collected fee between the channel owner's claimable
// balance and the treasury accumulator, then persists both rows. The caller
// holds the state row lock.
func creditFee(ctx context.Context, repos *repository.Repos, state *models.LedgerState, owner string, total *big.Int) (ownerShare, treasuryShare *big.Int, err error) {
	ownerShare, treasuryShare = fees.Split(total)

	balance, err := repos.Balances.GetForUpdate(ctx, owner)
	if err != nil {
		return nil, nil, err
	}
	if balance == nil {
		balance = &models.OwnerBalance{Address: owner}
	}
	balance.Balance.Add(&balance.Balance.Int, ownerShare)
	if err := repos.Balances.Save(ctx, balance); err != nil {
		return nil, nil, err
	}

	state.TreasuryBalance.Add(&state.TreasuryBalance.Int, treasuryShare)
	if err := repos.State.Save(ctx, state); err != nil {
		return nil, nil, err
	}
	return ownerShare, treasuryShare, nil
}

// settleExcess refunds paid minus fee through the transferer and returns
// the refunded amount. Exact payment refunds nothing; overpayment is never
// an error.
func settleExcess(ctx context.Context, repos *repository.Repos, transferer payout.Transferer, recipient string, paid, fee *big.Int) (*big.Int, error) {
	excess := new(big.Int).Sub(paid, fee)
	if excess.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	if err := transferer.Transfer(ctx, repos, models.PayoutKindRefund, recipient, excess); err != nil {
		return nil, err
	}
	return excess, nil
}

// appendEvent inserts one event-log row inside the caller's transaction.
func appendEvent(ctx context.Context, repos *repository.Repos, typ models.EventType, slugHash, actor string, payload map[string]interface{}) (*models.Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	event := &models.Event{
		Type:     typ,
		SlugHash: slugHash,
		Actor:    actor,
		Payload:  raw,
	}
	if err := repos.Events.Append(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// emit records and broadcasts committed events. Called strictly after the
// producing transaction commits.
func emit(publisher EventPublisher, metrics *observability.LedgerMetrics, events ...*models.Event) {
	for _, event := range events {
		if event == nil {
			continue
		}
		metrics.RecordEvent(string(event.Type))
		if publisher != nil {
			publisher.PublishEvent(event)
		}
	}
}

// weiFloat renders a wei amount for metrics. Precision above 2^53 wei is
// not needed there.
func weiFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}

// nonNeg substitutes zero for a nil payment amount.
func nonNeg(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
