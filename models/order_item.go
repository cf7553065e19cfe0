package models

import (
	"time"
)

// OrderItem snapshots name and price at order time; rows are never updated.
type OrderItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrderID         uint      `gorm:"not null;index" json:"order_id"`
	MenuItemID      *uint     `gorm:"index" json:"menu_item_id,omitempty"`
	InventoryItemID *uint     `gorm:"index" json:"inventory_item_id,omitempty"`
	ItemName        string    `gorm:"type:varchar(255);not null" json:"item_name"`
	UnitPrice       float64   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	Category        string    `gorm:"type:varchar(100)" json:"category"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
}

func (i OrderItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}
