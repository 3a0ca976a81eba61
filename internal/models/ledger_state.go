package models

import "time"

// LedgerStateID is the fixed primary key of the singleton ledger_state row.
const LedgerStateID = 1

// LedgerState is the single row of protocol-wide configuration and the
// treasury accumulator. Write operations lock this row when they touch
// fees or the treasury balance; admin setters mutate it.
type LedgerState struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	AdminAddress       string    `gorm:"size:42;not null" json:"admin_address"`
	TreasuryWallet     string    `gorm:"size:42;not null" json:"treasury_wallet"`
	TreasuryBalance    BigInt    `gorm:"not null" json:"treasury_balance"`
	ChannelCreationFee BigInt    `gorm:"not null" json:"channel_creation_fee"`
	MessageFeeBase     BigInt    `gorm:"not null" json:"message_fee_base"`
	MessageFeePerByte  BigInt    `gorm:"not null" json:"message_fee_per_byte"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (LedgerState) TableName() string {
	return "ledger_state"
}
