package database

import "onchat/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Channel{},
		&models.ChannelMember{},
		&models.ChannelModerator{},
		&models.ChannelBan{},
		&models.Message{},
		&models.OwnerBalance{},
		&models.LedgerState{},
		&models.Event{},
		&models.Payout{},
	}
}
