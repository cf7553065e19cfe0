package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

func (s *SettingsService) List(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	if err := s.db.WithContext(ctx).Order("setting_key ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// Set upserts a setting. Known numeric settings must be positive integers.
func (s *SettingsService) Set(ctx context.Context, key, value string) (*models.Setting, error) {
	if err := validation.Validate(key, validation.Required, validation.Length(1, 100)); err != nil {
		return nil, validationError(fmt.Errorf("key: %w", err))
	}
	if _, known := models.DefaultSettings[key]; known {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return nil, validationError(fmt.Errorf("%s must be a positive integer", key))
		}
	}

	setting := models.Setting{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Int reads a numeric setting, falling back to its default on any error.
func (s *SettingsService) Int(ctx context.Context, key string) int {
	fallback, _ := strconv.Atoi(models.DefaultSettings[key])

	var setting models.Setting
	if err := s.db.WithContext(ctx).Where("setting_key = ?", key).First(&setting).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorLogger.Printf("Error reading setting %s: %v", key, err)
		}
		return fallback
	}
	n, err := strconv.Atoi(setting.Value)
	if err != nil || n <= 0 {
		utils.ErrorLogger.Printf("Invalid value %q for setting %s, using %d", setting.Value, key, fallback)
		return fallback
	}
	return n
}

func (s *SettingsService) InactivityThreshold(ctx context.Context) int {
	return s.Int(ctx, models.SettingInactivityThreshold)
}

func (s *SettingsService) StaleProductDays(ctx context.Context) int {
	return s.Int(ctx, models.SettingStaleProductDays)
}
