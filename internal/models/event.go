package models

import (
	"encoding/json"
	"time"
)

// EventType identifies one kind of ledger state transition.
type EventType string

const (
	EventChannelCreated   EventType = "channel.created"
	EventChannelJoined    EventType = "channel.joined"
	EventChannelLeft      EventType = "channel.left"
	EventMessageSent      EventType = "message.sent"
	EventMessageHidden    EventType = "message.hidden"
	EventMessageUnhidden  EventType = "message.unhidden"
	EventUserBanned       EventType = "user.banned"
	EventUserUnbanned     EventType = "user.unbanned"
	EventModeratorAdded   EventType = "moderator.added"
	EventModeratorRemoved EventType = "moderator.removed"

	EventOwnerBalanceClaimed    EventType = "balance.owner_claimed"
	EventTreasuryBalanceClaimed EventType = "balance.treasury_claimed"

	EventTreasuryWalletUpdated     EventType = "admin.treasury_wallet_updated"
	EventChannelCreationFeeUpdated EventType = "admin.channel_creation_fee_updated"
	EventMessageFeeBaseUpdated     EventType = "admin.message_fee_base_updated"
	EventMessageFeePerByteUpdated  EventType = "admin.message_fee_per_byte_updated"
	EventAdminTransferred          EventType = "admin.transferred"
)

// Event is one row of the append-only event log. It is inserted in the
// same transaction as the state change it describes, so the log never
// records a transition that rolled back. The ID doubles as the cursor for
// event log pagination.
type Event struct {
	ID        uint64          `gorm:"primaryKey" json:"id"`
	Type      EventType       `gorm:"type:varchar(40);not null;index" json:"type"`
	SlugHash  string          `gorm:"size:66;index" json:"slug_hash,omitempty"`
	Actor     string          `gorm:"size:42;not null" json:"actor"`
	Payload   json.RawMessage `gorm:"type:json" json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Event) TableName() string {
	return "events"
}
