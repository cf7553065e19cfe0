package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/utils"
	"gorm.io/gorm"
)

var ErrRecipeUnitMismatch = errors.New("recipe quantity does not match ingredient stock mode")

type StockService struct {
	db *gorm.DB
}

func NewStockService(db *gorm.DB) *StockService {
	return &StockService{db: db}
}

// draw is an amount to take out of one inventory item, in units or ml.
type draw struct {
	itemID uint
	units  int
	ml     float64
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DrawVolume takes amount ml out of a bottle stock, emptying the open
// bottle first and opening sealed bottles as needed. Shortfall is the
// volume that could not be served.
func DrawVolume(bottles int, openML, volumeML, amount float64) (int, float64, float64) {
	for amount > 0 {
		if openML >= amount {
			openML -= amount
			amount = 0
			break
		}
		amount -= openML
		openML = 0
		if bottles == 0 || volumeML <= 0 {
			break
		}
		bottles--
		openML = volumeML
	}
	return bottles, round2(openML), round2(amount)
}

// DecrementForOrder applies the stock effect of every order line. Failures
// are logged and counted; the order itself is never affected.
func (s *StockService) DecrementForOrder(ctx context.Context, orderID uint, items []models.OrderItem) int {
	failures := 0
	for _, item := range items {
		draws, err := s.drawsFor(ctx, item)
		if err != nil {
			failures++
			s.logFailure(orderID, item, err)
			continue
		}
		for _, d := range draws {
			if err := s.apply(ctx, d, &orderID, models.MovementSale, item.ItemName); err != nil {
				failures++
				s.logFailure(orderID, item, err)
			}
		}
	}
	return failures
}

func (s *StockService) logFailure(orderID uint, item models.OrderItem, err error) {
	utils.ErrorLogger.WithFields(logrus.Fields{
		"order_id":  orderID,
		"item_name": item.ItemName,
		"quantity":  item.Quantity,
	}).Errorf("Stock decrement failed: %v", err)
}

// drawsFor expands a line into per-ingredient draws. Menu items with a
// recipe consume their ingredients; otherwise the linked inventory item is
// consumed directly.
func (s *StockService) drawsFor(ctx context.Context, item models.OrderItem) ([]draw, error) {
	inventoryID := item.InventoryItemID

	if item.MenuItemID != nil {
		var menuItem models.MenuItem
		err := s.db.WithContext(ctx).Preload("Recipes.Ingredient").First(&menuItem, *item.MenuItemID).Error
		switch {
		case err == nil && len(menuItem.Recipes) > 0:
			return recipeDraws(menuItem.Recipes, item.Quantity)
		case err == nil && inventoryID == nil:
			inventoryID = menuItem.InventoryItemID
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	if inventoryID == nil {
		return nil, nil
	}

	var inv models.InventoryItem
	if err := s.db.WithContext(ctx).First(&inv, *inventoryID).Error; err != nil {
		return nil, notFound("inventory item", err)
	}
	if err := inv.ValidateStock(); err != nil {
		return nil, fmt.Errorf("inventory item %d: %w", inv.ID, err)
	}
	if inv.StockMode == models.StockModeBottle {
		return []draw{{itemID: inv.ID, ml: float64(item.Quantity) * *inv.BottleVolumeML}}, nil
	}
	return []draw{{itemID: inv.ID, units: item.Quantity}}, nil
}

func recipeDraws(recipes []models.Recipe, quantity int) ([]draw, error) {
	draws := make([]draw, 0, len(recipes))
	for _, r := range recipes {
		if r.Ingredient == nil {
			return nil, fmt.Errorf("%w: %d", ErrIngredientNotFound, r.IngredientID)
		}
		if err := r.Ingredient.ValidateStock(); err != nil {
			return nil, fmt.Errorf("ingredient %d: %w", r.IngredientID, err)
		}
		switch {
		case r.Ingredient.StockMode == models.StockModeBottle && r.QuantityML != nil:
			draws = append(draws, draw{itemID: r.IngredientID, ml: *r.QuantityML * float64(quantity)})
		case r.Ingredient.StockMode == models.StockModeBottle && r.QuantityUnits != nil:
			draws = append(draws, draw{itemID: r.IngredientID, ml: float64(*r.QuantityUnits*quantity) * *r.Ingredient.BottleVolumeML})
		case r.Ingredient.StockMode == models.StockModeUnit && r.QuantityUnits != nil:
			draws = append(draws, draw{itemID: r.IngredientID, units: *r.QuantityUnits * quantity})
		default:
			return nil, fmt.Errorf("%w: recipe %d", ErrRecipeUnitMismatch, r.ID)
		}
	}
	return draws, nil
}

func (s *StockService) apply(ctx context.Context, d draw, orderID *uint, kind, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.InventoryItem
		if err := tx.First(&inv, d.itemID).Error; err != nil {
			return notFound("inventory item", err)
		}
		if err := inv.ValidateStock(); err != nil {
			return fmt.Errorf("inventory item %d: %w", inv.ID, err)
		}
		before := inv.StockLevel()

		movement := models.StockMovement{
			InventoryItemID: inv.ID,
			OrderID:         orderID,
			Kind:            kind,
			Reason:          reason,
			StockBefore:     before,
		}

		switch inv.StockMode {
		case models.StockModeBottle:
			open := 0.0
			if inv.OpenBottleML != nil {
				open = *inv.OpenBottleML
			}
			bottles, newOpen, shortfall := DrawVolume(*inv.BottleCount, open, *inv.BottleVolumeML, d.ml)
			if shortfall > 0 {
				utils.ErrorLogger.Warnf("Inventory item %d short by %.2f ml", inv.ID, shortfall)
			}
			if err := tx.Model(&inv).Updates(map[string]interface{}{
				"bottle_count":   bottles,
				"open_bottle_ml": newOpen,
			}).Error; err != nil {
				return err
			}
			inv.BottleCount, inv.OpenBottleML = &bottles, &newOpen
			movement.Quantity = round2(d.ml)
			movement.Unit = models.UnitML
		default:
			current := *inv.StockQuantity
			next := current - d.units
			if next < 0 {
				utils.ErrorLogger.Warnf("Inventory item %d short by %d units", inv.ID, -next)
				next = 0
			}
			if err := tx.Model(&inv).Update("stock_quantity", next).Error; err != nil {
				return err
			}
			inv.StockQuantity = &next
			movement.Quantity = float64(d.units)
			movement.Unit = models.UnitUnits
		}

		movement.StockAfter = inv.StockLevel()
		return tx.Create(&movement).Error
	})
}

// AdjustInput sets absolute stock values for a manual count.
type AdjustInput struct {
	StockQuantity *int     `json:"stock_quantity"`
	BottleCount   *int     `json:"bottle_count"`
	OpenBottleML  *float64 `json:"open_bottle_ml"`
	Reason        string   `json:"reason"`
}

func (s *StockService) Adjust(ctx context.Context, itemID uint, in AdjustInput) (*models.InventoryItem, error) {
	var inv models.InventoryItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&inv, itemID).Error; err != nil {
			return notFound("inventory item", err)
		}
		before := inv.StockLevel()

		updates := map[string]interface{}{}
		unit := models.UnitUnits
		switch inv.StockMode {
		case models.StockModeBottle:
			if in.StockQuantity != nil {
				return validationError(models.ErrStockRepresentation)
			}
			if in.BottleCount != nil {
				inv.BottleCount = in.BottleCount
				updates["bottle_count"] = *in.BottleCount
			}
			if in.OpenBottleML != nil {
				inv.OpenBottleML = in.OpenBottleML
				updates["open_bottle_ml"] = *in.OpenBottleML
			}
			unit = models.UnitML
		default:
			if in.StockQuantity == nil || in.BottleCount != nil || in.OpenBottleML != nil {
				return validationError(models.ErrStockRepresentation)
			}
			inv.StockQuantity = in.StockQuantity
			updates["stock_quantity"] = *in.StockQuantity
		}
		if err := inv.ValidateStock(); err != nil {
			return validationError(err)
		}
		if len(updates) == 0 {
			return validationError(errors.New("nothing to adjust"))
		}
		if err := tx.Model(&inv).Updates(updates).Error; err != nil {
			return err
		}

		after := inv.StockLevel()
		return tx.Create(&models.StockMovement{
			InventoryItemID: inv.ID,
			Kind:            models.MovementAdjustment,
			Quantity:        round2(after - before),
			Unit:            unit,
			StockBefore:     before,
			StockAfter:      after,
			Reason:          in.Reason,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *StockService) Movements(ctx context.Context, itemID uint, limit int) ([]models.StockMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var movements []models.StockMovement
	err := s.db.WithContext(ctx).
		Where("inventory_item_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}
