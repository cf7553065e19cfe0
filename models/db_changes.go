package models

import (
	"time"

	"gorm.io/gorm"
)

// Change feed entity names, matching the table names subscribers use.
const (
	ChangeTables         = "tables"
	ChangeClientSessions = "client_sessions"
	ChangeOrders         = "orders"
	ChangeInventoryItems = "inventory_items"
	ChangeReservations   = "reservations"
)

const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// DBChange is the outbox row written by model hooks and drained by the
// change monitor.
type DBChange struct {
	ID         uint      `gorm:"primaryKey"`
	Entity     string    `gorm:"type:varchar(50);not null;index:idx_entity_action"`
	RecordID   uint      `gorm:"not null"`
	ActionType string    `gorm:"type:varchar(10);not null;index:idx_entity_action"`
	ChangedAt  time.Time `gorm:"not null"`
	Processed  bool      `gorm:"not null;index:idx_processed"`
}

func (DBChange) TableName() string {
	return "db_changes"
}

func recordChange(tx *gorm.DB, entity string, id uint, action string) error {
	if id == 0 {
		return nil
	}
	return tx.Session(&gorm.Session{NewDB: true}).Create(&DBChange{
		Entity:     entity,
		RecordID:   id,
		ActionType: action,
		ChangedAt:  time.Now(),
	}).Error
}
