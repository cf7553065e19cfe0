package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/utils"
	"gorm.io/gorm"
)

type TableService struct {
	db *gorm.DB
}

func NewTableService(db *gorm.DB) *TableService {
	return &TableService{db: db}
}

type TableInput struct {
	Number   int    `json:"number"`
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

func (in TableInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Number, validation.Required, validation.Min(1)),
		validation.Field(&in.Name, validation.Length(0, 100)),
	)
}

func (s *TableService) List(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := s.db.WithContext(ctx).Order("number ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *TableService) Get(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	if err := s.db.WithContext(ctx).First(&table, id).Error; err != nil {
		return nil, notFound("table", err)
	}
	return &table, nil
}

func (s *TableService) Create(ctx context.Context, in TableInput) (*models.Table, error) {
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}
	table := models.Table{
		Number:   in.Number,
		Name:     strings.TrimSpace(in.Name),
		IsActive: in.IsActive == nil || *in.IsActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if table.IsActive {
			if err := ensureNumberFree(tx, table.Number, 0); err != nil {
				return err
			}
		}
		return tx.Create(&table).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("New table created: %d (active=%t)", table.Number, table.IsActive)
	return &table, nil
}

func (s *TableService) Update(ctx context.Context, id uint, in TableInput) (*models.Table, error) {
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	var table models.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&table, id).Error; err != nil {
			return notFound("table", err)
		}
		active := table.IsActive
		if in.IsActive != nil {
			active = *in.IsActive
		}
		if active {
			if err := ensureNumberFree(tx, in.Number, table.ID); err != nil {
				return err
			}
		}
		return tx.Model(&table).Updates(map[string]interface{}{
			"number":    in.Number,
			"name":      strings.TrimSpace(in.Name),
			"is_active": active,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SetActive toggles a table; reactivation re-checks the number.
func (s *TableService) SetActive(ctx context.Context, id uint, active bool) (*models.Table, error) {
	table, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, id, TableInput{Number: table.Number, Name: table.Name, IsActive: &active})
}

func (s *TableService) Delete(ctx context.Context, id uint) error {
	var table models.Table
	if err := s.db.WithContext(ctx).First(&table, id).Error; err != nil {
		return notFound("table", err)
	}
	var sessions int64
	if err := s.db.WithContext(ctx).Model(&models.ClientSession{}).Where("table_id = ?", id).Count(&sessions).Error; err != nil {
		return err
	}
	if sessions > 0 {
		return validationError(errors.New("table has session history; deactivate it instead"))
	}
	return s.db.WithContext(ctx).Delete(&table).Error
}

func ensureNumberFree(tx *gorm.DB, number int, exceptID uint) error {
	var count int64
	q := tx.Model(&models.Table{}).Where("number = ? AND is_active = ?", number, true)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d", ErrTableNumberTaken, number)
	}
	return nil
}
