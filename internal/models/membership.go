package models

import "time"

// ChannelMember records one address's membership in a channel. The
// surrogate ID is the join-order cursor: member listings and a user's
// joined-channel listing both page over it ascending, so re-joining after
// an unban appends to the end rather than restoring the old position.
type ChannelMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChannelID uint      `gorm:"not null;uniqueIndex:idx_channel_member;index" json:"channel_id"`
	Address   string    `gorm:"size:42;not null;uniqueIndex:idx_channel_member;index" json:"address"`
	CreatedAt time.Time `json:"created_at"`

	Channel *Channel `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
}

// TableName specifies the table name for GORM.
func (ChannelMember) TableName() string {
	return "channel_members"
}

// ChannelModerator marks a member as holding moderation rights. Rows are
// removed when the member leaves or is banned.
type ChannelModerator struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChannelID uint      `gorm:"not null;uniqueIndex:idx_channel_moderator;index" json:"channel_id"`
	Address   string    `gorm:"size:42;not null;uniqueIndex:idx_channel_moderator" json:"address"`
	AddedBy   string    `gorm:"size:42;not null" json:"added_by"`
	CreatedAt time.Time `json:"created_at"`

	Channel *Channel `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
}

// TableName specifies the table name for GORM.
func (ChannelModerator) TableName() string {
	return "channel_moderators"
}
