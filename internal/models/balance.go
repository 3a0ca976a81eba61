package models

import "time"

// OwnerBalance accumulates claimable fee revenue per owner address, summed
// across every channel that address owns. There is deliberately no
// per-channel breakdown; the payouts table carries event-level granularity
// for deployments that need to reconcile.
type OwnerBalance struct {
	Address   string    `gorm:"primaryKey;size:42" json:"address"`
	Balance   BigInt    `gorm:"not null" json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (OwnerBalance) TableName() string {
	return "owner_balances"
}
