package models

import "time"

type MenuItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	Category        string    `gorm:"type:varchar(100);not null;index" json:"category"`
	Description     string    `gorm:"type:text" json:"description"`
	Price           float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	InventoryItemID *uint     `gorm:"index" json:"inventory_item_id,omitempty"`
	IsAvailable     bool      `gorm:"not null" json:"is_available"`
	Recipes         []Recipe  `gorm:"foreignKey:ParentMenuItemID" json:"recipes,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}
