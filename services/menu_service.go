package services

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/yeremiapane/clubday/models"
	"gorm.io/gorm"
)

type MenuService struct {
	db *gorm.DB
}

func NewMenuService(db *gorm.DB) *MenuService {
	return &MenuService{db: db}
}

type MenuItemInput struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	InventoryItemID *uint   `json:"inventory_item_id"`
	IsAvailable     *bool   `json:"is_available"`
}

func (in MenuItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Category, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Price, validation.Required, validation.Min(0.01)),
	)
}

// List returns menu items ordered by category and name. availableOnly hides
// items switched off by staff.
func (s *MenuService) List(ctx context.Context, category string, availableOnly bool) ([]models.MenuItem, error) {
	q := s.db.WithContext(ctx).Order("category ASC, name ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if availableOnly {
		q = q.Where("is_available = ?", true)
	}
	var items []models.MenuItem
	err := q.Find(&items).Error
	return items, err
}

func (s *MenuService) Get(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).Preload("Recipes.Ingredient").First(&item, id).Error; err != nil {
		return nil, notFound("menu item", err)
	}
	return &item, nil
}

func (s *MenuService) checkInventoryLink(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound("inventory item", gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *MenuService) Create(ctx context.Context, in MenuItemInput) (*models.MenuItem, error) {
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}
	if err := s.checkInventoryLink(ctx, in.InventoryItemID); err != nil {
		return nil, err
	}
	item := models.MenuItem{
		Name:            strings.TrimSpace(in.Name),
		Category:        strings.TrimSpace(in.Category),
		Description:     in.Description,
		Price:           in.Price,
		InventoryItemID: in.InventoryItemID,
		IsAvailable:     in.IsAvailable == nil || *in.IsAvailable,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *MenuService) Update(ctx context.Context, id uint, in MenuItemInput) (*models.MenuItem, error) {
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkInventoryLink(ctx, in.InventoryItemID); err != nil {
		return nil, err
	}
	available := item.IsAvailable
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}
	err = s.db.WithContext(ctx).Model(&models.MenuItem{ID: item.ID}).Updates(map[string]interface{}{
		"name":              strings.TrimSpace(in.Name),
		"category":          strings.TrimSpace(in.Category),
		"description":       in.Description,
		"price":             in.Price,
		"inventory_item_id": in.InventoryItemID,
		"is_available":      available,
	}).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *MenuService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MenuItem
		if err := tx.First(&item, id).Error; err != nil {
			return notFound("menu item", err)
		}
		if err := tx.Where("parent_menu_item_id = ?", id).Delete(&models.Recipe{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
}
