package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/samber/lo"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/utils"
	"gorm.io/gorm"
)

type InventoryService struct {
	db       *gorm.DB
	stock    *StockService
	settings *SettingsService
	now      func() time.Time
}

func NewInventoryService(db *gorm.DB, stock *StockService, settings *SettingsService) *InventoryService {
	return &InventoryService{db: db, stock: stock, settings: settings, now: time.Now}
}

type InventoryInput struct {
	Name           string           `json:"name"`
	StockMode      models.StockMode `json:"stock_mode"`
	StockQuantity  *int             `json:"stock_quantity"`
	BottleCount    *int             `json:"bottle_count"`
	OpenBottleML   *float64         `json:"open_bottle_ml"`
	BottleVolumeML *float64         `json:"bottle_volume_ml"`
	MinStock       int              `json:"min_stock"`
	CostPrice      float64          `json:"cost_price"`
	ProductCodes   string           `json:"product_codes"`
}

func (in InventoryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.StockMode, validation.Required, validation.In(models.StockModeUnit, models.StockModeBottle)),
		validation.Field(&in.MinStock, validation.Min(0)),
		validation.Field(&in.CostPrice, validation.Min(0.0)),
	)
}

func (in InventoryInput) item() models.InventoryItem {
	item := models.InventoryItem{
		Name:           strings.TrimSpace(in.Name),
		StockMode:      in.StockMode,
		StockQuantity:  in.StockQuantity,
		BottleCount:    in.BottleCount,
		OpenBottleML:   in.OpenBottleML,
		BottleVolumeML: in.BottleVolumeML,
		MinStock:       in.MinStock,
		CostPrice:      in.CostPrice,
		ProductCodes:   strings.TrimSpace(in.ProductCodes),
	}
	if item.StockMode == models.StockModeBottle && item.OpenBottleML == nil {
		zero := 0.0
		item.OpenBottleML = &zero
	}
	return item
}

func (s *InventoryService) List(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

func (s *InventoryService) Get(ctx context.Context, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFound("inventory item", err)
	}
	return &item, nil
}

func (s *InventoryService) Create(ctx context.Context, in InventoryInput) (*models.InventoryItem, error) {
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}
	item := in.item()
	if err := item.ValidateStock(); err != nil {
		return nil, validationError(err)
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Inventory item created: %s (%s)", item.Name, item.StockMode)
	return &item, nil
}

// Update changes the descriptive fields. Stock levels go through Adjust so
// every change leaves a movement.
func (s *InventoryService) Update(ctx context.Context, id uint, in InventoryInput) (*models.InventoryItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.StockMode = item.StockMode
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	updates := map[string]interface{}{
		"name":          strings.TrimSpace(in.Name),
		"min_stock":     in.MinStock,
		"cost_price":    in.CostPrice,
		"product_codes": strings.TrimSpace(in.ProductCodes),
	}
	if item.StockMode == models.StockModeBottle && in.BottleVolumeML != nil {
		if *in.BottleVolumeML <= 0 {
			return nil, validationError(models.ErrStockRepresentation)
		}
		updates["bottle_volume_ml"] = *in.BottleVolumeML
	}
	if err := s.db.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *InventoryService) Adjust(ctx context.Context, id uint, in AdjustInput) (*models.InventoryItem, error) {
	return s.stock.Adjust(ctx, id, in)
}

func (s *InventoryService) LowStock(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(items, func(item models.InventoryItem, _ int) bool { return item.LowStock() }), nil
}

type StaleProduct struct {
	Item          models.InventoryItem `json:"item"`
	LastSaleAt    *time.Time           `json:"last_sale_at"`
	DaysSinceSale *int                 `json:"days_since_sale"`
}

// StaleProducts lists items with no sale in the last days days. Zero days
// uses the stale_product_days setting.
func (s *InventoryService) StaleProducts(ctx context.Context, days int) ([]StaleProduct, error) {
	if days <= 0 {
		days = s.settings.StaleProductDays(ctx)
	}
	now := s.now()
	cutoff := now.AddDate(0, 0, -days)

	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var recent []uint
	if err := s.db.WithContext(ctx).Model(&models.StockMovement{}).
		Where("kind = ? AND created_at >= ?", models.MovementSale, cutoff).
		Distinct().Pluck("inventory_item_id", &recent).Error; err != nil {
		return nil, err
	}
	sold := lo.SliceToMap(recent, func(id uint) (uint, bool) { return id, true })

	var stale []StaleProduct
	for _, item := range items {
		if sold[item.ID] {
			continue
		}
		row := StaleProduct{Item: item}
		var last models.StockMovement
		err := s.db.WithContext(ctx).
			Where("inventory_item_id = ? AND kind = ?", item.ID, models.MovementSale).
			Order("created_at DESC").
			First(&last).Error
		switch {
		case err == nil:
			d := int(now.Sub(last.CreatedAt).Hours() / 24)
			row.LastSaleAt = &last.CreatedAt
			row.DaysSinceSale = &d
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
		stale = append(stale, row)
	}
	return stale, nil
}

type RecipeInput struct {
	IngredientID  uint     `json:"ingredient_id"`
	QuantityML    *float64 `json:"quantity_ml"`
	QuantityUnits *int     `json:"quantity_units"`
}

func (in RecipeInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.IngredientID, validation.Required),
	)
	if err != nil {
		return err
	}
	if (in.QuantityML == nil) == (in.QuantityUnits == nil) {
		return errors.New("exactly one of quantity_ml or quantity_units is required")
	}
	if in.QuantityML != nil && *in.QuantityML <= 0 {
		return errors.New("quantity_ml must be positive")
	}
	if in.QuantityUnits != nil && *in.QuantityUnits <= 0 {
		return errors.New("quantity_units must be positive")
	}
	return nil
}

func (s *InventoryService) Recipes(ctx context.Context, menuItemID uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).Preload("Ingredient").
		Where("parent_menu_item_id = ?", menuItemID).
		Order("id ASC").
		Find(&recipes).Error
	return recipes, err
}

func (s *InventoryService) AddRecipe(ctx context.Context, menuItemID uint, in RecipeInput) (*models.Recipe, error) {
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	var menuItem models.MenuItem
	if err := s.db.WithContext(ctx).First(&menuItem, menuItemID).Error; err != nil {
		return nil, notFound("menu item", err)
	}
	var ingredient models.InventoryItem
	if err := s.db.WithContext(ctx).First(&ingredient, in.IngredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrIngredientNotFound, in.IngredientID)
		}
		return nil, err
	}
	if in.QuantityML != nil && ingredient.StockMode != models.StockModeBottle {
		return nil, validationError(fmt.Errorf("%w: %s is counted in units", ErrRecipeUnitMismatch, ingredient.Name))
	}

	recipe := models.Recipe{
		ParentMenuItemID: menuItem.ID,
		IngredientID:     ingredient.ID,
		QuantityML:       in.QuantityML,
		QuantityUnits:    in.QuantityUnits,
	}
	if err := s.db.WithContext(ctx).Create(&recipe).Error; err != nil {
		return nil, err
	}
	recipe.Ingredient = &ingredient
	return &recipe, nil
}

func (s *InventoryService) DeleteRecipe(ctx context.Context, menuItemID, recipeID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND parent_menu_item_id = ?", recipeID, menuItemID).
		Delete(&models.Recipe{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("recipe %w", ErrNotFound)
	}
	return nil
}
