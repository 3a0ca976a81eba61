package models

import "time"

// PayoutKind classifies an outbound value transfer.
type PayoutKind string

const (
	// PayoutKindRefund is excess payment returned to a caller.
	PayoutKindRefund PayoutKind = "refund"
	// PayoutKindOwnerClaim is a channel owner withdrawing accrued revenue.
	PayoutKindOwnerClaim PayoutKind = "owner_claim"
	// PayoutKindTreasuryClaim is the treasury wallet withdrawing the
	// protocol share.
	PayoutKindTreasuryClaim PayoutKind = "treasury_claim"
)

// Payout is the audit record of one outbound transfer. Rows are written by
// the recording transferer inside the same transaction as the balance
// mutation they settle, which keeps the audit trail exactly as atomic as
// the ledger itself.
type Payout struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Kind      PayoutKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	Recipient string     `gorm:"size:42;not null;index" json:"recipient"`
	AmountWei BigInt     `gorm:"not null" json:"amount_wei"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Payout) TableName() string {
	return "payouts"
}
