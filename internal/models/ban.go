package models

import "time"

// ChannelBan stores channel-scoped bans. A banned address cannot join or
// post; unbanning deletes the row without restoring membership.
type ChannelBan struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChannelID uint      `gorm:"not null;uniqueIndex:idx_channel_ban;index" json:"channel_id"`
	Address   string    `gorm:"size:42;not null;uniqueIndex:idx_channel_ban" json:"address"`
	BannedBy  string    `gorm:"size:42;not null" json:"banned_by"`
	CreatedAt time.Time `json:"created_at"`

	Channel *Channel `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
}

// TableName specifies the table name for GORM.
func (ChannelBan) TableName() string {
	return "channel_bans"
}
