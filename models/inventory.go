package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type StockMode string

const (
	StockModeUnit   StockMode = "unit"
	StockModeBottle StockMode = "bottle"
)

var ErrStockRepresentation = errors.New("inventory item must use exactly one stock representation")

// InventoryItem is counted either in units or in bottles plus the volume
// left in the open bottle, never both.
type InventoryItem struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	StockMode      StockMode `gorm:"type:varchar(10);not null" json:"stock_mode"`
	StockQuantity  *int      `json:"stock_quantity,omitempty"`
	BottleCount    *int      `json:"bottle_count,omitempty"`
	OpenBottleML   *float64  `gorm:"type:decimal(10,2)" json:"open_bottle_ml,omitempty"`
	BottleVolumeML *float64  `gorm:"type:decimal(10,2)" json:"bottle_volume_ml,omitempty"`
	MinStock       int       `gorm:"not null" json:"min_stock"`
	CostPrice      float64   `gorm:"type:decimal(10,2);not null" json:"cost_price"`
	ProductCodes   string    `gorm:"type:varchar(255)" json:"product_codes"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

// ValidateStock enforces the unit XOR bottle invariant.
func (i *InventoryItem) ValidateStock() error {
	switch i.StockMode {
	case StockModeUnit:
		if i.StockQuantity == nil || i.BottleCount != nil || i.OpenBottleML != nil || i.BottleVolumeML != nil {
			return ErrStockRepresentation
		}
	case StockModeBottle:
		if i.StockQuantity != nil || i.BottleCount == nil || i.BottleVolumeML == nil || *i.BottleVolumeML <= 0 {
			return ErrStockRepresentation
		}
		if *i.BottleCount < 0 || (i.OpenBottleML != nil && (*i.OpenBottleML < 0 || *i.OpenBottleML > *i.BottleVolumeML)) {
			return ErrStockRepresentation
		}
	default:
		return ErrStockRepresentation
	}
	return nil
}

// StockLevel is the current stock in the item's own unit: units for
// unit-counted items, millilitres for bottle items.
func (i *InventoryItem) StockLevel() float64 {
	if i.StockMode == StockModeBottle {
		var open, volume float64
		var bottles int
		if i.OpenBottleML != nil {
			open = *i.OpenBottleML
		}
		if i.BottleVolumeML != nil {
			volume = *i.BottleVolumeML
		}
		if i.BottleCount != nil {
			bottles = *i.BottleCount
		}
		return float64(bottles)*volume + open
	}
	if i.StockQuantity == nil {
		return 0
	}
	return float64(*i.StockQuantity)
}

// LowStock reports whether the item is at or below its minimum. Bottle items
// count sealed bottles against MinStock; without a minimum they are low once
// no more than one bottle's volume is left.
func (i *InventoryItem) LowStock() bool {
	if i.StockMode == StockModeBottle {
		if i.BottleCount == nil || i.BottleVolumeML == nil {
			return true
		}
		if i.MinStock > 0 {
			return *i.BottleCount <= i.MinStock
		}
		return i.StockLevel() <= *i.BottleVolumeML
	}
	return i.StockQuantity == nil || *i.StockQuantity <= i.MinStock
}

func (i *InventoryItem) AfterCreate(tx *gorm.DB) error {
	return recordChange(tx, ChangeInventoryItems, i.ID, ActionInsert)
}

func (i *InventoryItem) AfterUpdate(tx *gorm.DB) error {
	return recordChange(tx, ChangeInventoryItems, i.ID, ActionUpdate)
}

// Recipe links a composite menu item to one ingredient.
type Recipe struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ParentMenuItemID uint           `gorm:"not null;index" json:"parent_menu_item_id"`
	IngredientID     uint           `gorm:"not null;index" json:"ingredient_id"`
	Ingredient       *InventoryItem `gorm:"foreignKey:IngredientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"ingredient,omitempty"`
	QuantityML       *float64       `gorm:"type:decimal(10,2)" json:"quantity_ml,omitempty"`
	QuantityUnits    *int           `json:"quantity_units,omitempty"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
}

const (
	MovementSale       = "sale"
	MovementAdjustment = "adjustment"

	UnitUnits = "units"
	UnitML    = "ml"
)

// StockMovement records every stock change.
type StockMovement struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	InventoryItemID uint      `gorm:"not null;index" json:"inventory_item_id"`
	OrderID         *uint     `gorm:"index" json:"order_id,omitempty"`
	Kind            string    `gorm:"type:varchar(20);not null;index" json:"kind"`
	Quantity        float64   `gorm:"type:decimal(12,2);not null" json:"quantity"`
	Unit            string    `gorm:"type:varchar(10);not null" json:"unit"`
	StockBefore     float64   `gorm:"type:decimal(12,2);not null" json:"stock_before"`
	StockAfter      float64   `gorm:"type:decimal(12,2);not null" json:"stock_after"`
	Reason          string    `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt       time.Time `gorm:"not null;index" json:"created_at"`
}
