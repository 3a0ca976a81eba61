// Package payout settles outbound value transfers from the ledger.
package payout

import (
	"context"
	"math/big"

	"onchat/internal/models"
	"onchat/internal/repository"

	"github.com/google/uuid"
)

// Transferer sends value out of the ledger to a recipient address. The
// repository bundle is the one bound to the caller's transaction, so a
// failed transfer rolls the whole operation back and a rolled-back
// operation leaves no payout behind.
type Transferer interface {
	Transfer(ctx context.Context, repos *repository.Repos, kind models.PayoutKind, recipient string, amountWei *big.Int) error
}

// Recorder is the ledger-native Transferer: it records the payout in the
// audit table and considers the value settled. Deployments that bridge to
// an actual chain replace it with an implementation that also submits the
// transfer.
type Recorder struct{}

// NewRecorder returns the recording Transferer.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Transfer writes one payout row. Zero and negative amounts are settled as
// no-ops so callers don't special-case exact payments.
func (*Recorder) Transfer(ctx context.Context, repos *repository.Repos, kind models.PayoutKind, recipient string, amountWei *big.Int) error {
	if amountWei == nil || amountWei.Sign() <= 0 {
		return nil
	}
	return repos.Payouts.Create(ctx, &models.Payout{
		ID:        uuid.NewString(),
		Kind:      kind,
		Recipient: recipient,
		AmountWei: models.NewBigInt(amountWei),
	})
}
