package models

import (
	"time"

	"gorm.io/gorm"
)

// ClientSession ties a device fingerprint to a table so orders can be
// attributed to a named customer without a login.
type ClientSession struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ClientName        string    `gorm:"type:varchar(100);not null" json:"client_name"`
	DeviceFingerprint string    `gorm:"type:varchar(255);not null;index:idx_session_lookup" json:"device_fingerprint"`
	TableID           uint      `gorm:"not null;index:idx_session_lookup" json:"table_id"`
	Table             *Table    `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table,omitempty"`
	IsActive          bool      `gorm:"not null;index" json:"is_active"`
	LastActivityAt    time.Time `gorm:"not null" json:"last_activity_at"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}

func (s *ClientSession) AfterCreate(tx *gorm.DB) error {
	return recordChange(tx, ChangeClientSessions, s.ID, ActionInsert)
}

func (s *ClientSession) AfterUpdate(tx *gorm.DB) error {
	return recordChange(tx, ChangeClientSessions, s.ID, ActionUpdate)
}
