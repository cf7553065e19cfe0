package models

import (
	"time"

	"gorm.io/gorm"
)

type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Number    int       `gorm:"not null;index" json:"number"`
	Name      string    `gorm:"type:varchar(100)" json:"name"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (t *Table) AfterCreate(tx *gorm.DB) error {
	return recordChange(tx, ChangeTables, t.ID, ActionInsert)
}

func (t *Table) AfterUpdate(tx *gorm.DB) error {
	return recordChange(tx, ChangeTables, t.ID, ActionUpdate)
}

func (t *Table) AfterDelete(tx *gorm.DB) error {
	return recordChange(tx, ChangeTables, t.ID, ActionDelete)
}
