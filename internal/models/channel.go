// Package models contains the ledger's persistent data structures.
package models

import "time"

// Channel is a slug-addressed message board registered on the ledger.
// SlugHash is the canonical lookup key; the plain slug is kept alongside it
// so listings stay human-readable without re-deriving anything.
type Channel struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SlugHash     string    `gorm:"size:66;not null;uniqueIndex" json:"slug_hash"`
	Slug         string    `gorm:"size:20;not null" json:"slug"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	Owner        string    `gorm:"size:42;not null;index" json:"owner"`
	MemberCount  uint64    `gorm:"not null;default:0" json:"member_count"`
	MessageCount uint64    `gorm:"not null;default:0" json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Channel) TableName() string {
	return "channels"
}
