package models

import "time"

// Message is one entry in a channel's append-only log. MessageIndex is the
// permanent 0-based position within the channel; it is assigned once under
// the channel row lock and never reused. Sender and Content are immutable
// after insert; IsHidden is the only field moderation may flip.
type Message struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ChannelID    uint      `gorm:"not null;uniqueIndex:idx_channel_message;index" json:"channel_id"`
	MessageIndex uint64    `gorm:"not null;uniqueIndex:idx_channel_message" json:"message_index"`
	Sender       string    `gorm:"size:42;not null;index" json:"sender"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	IsHidden     bool      `gorm:"not null;default:false" json:"is_hidden"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Channel *Channel `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
}

// TableName specifies the table name for GORM.
func (Message) TableName() string {
	return "messages"
}
