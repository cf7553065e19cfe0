package database

import (
	"fmt"

	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table owned by the service, in dependency order.
var Models = []interface{}{
	&models.User{},
	&models.Table{},
	&models.ClientSession{},
	&models.InventoryItem{},
	&models.MenuItem{},
	&models.Recipe{},
	&models.Order{},
	&models.OrderItem{},
	&models.StockMovement{},
	&models.Reservation{},
	&models.ReservationSlot{},
	&models.Setting{},
	&models.DBChange{},
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// MySQL has no partial indexes; the table service checks uniqueness there.
	if db.Dialector.Name() != "mysql" {
		stmt := "CREATE UNIQUE INDEX IF NOT EXISTS idx_tables_active_number ON tables (number) WHERE is_active"
		if err := db.Exec(stmt).Error; err != nil {
			utils.ErrorLogger.Printf("Error creating active table number index: %v", err)
		}
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

// SeedDefaults inserts the default settings without touching existing values.
func SeedDefaults(db *gorm.DB) error {
	for key, value := range models.DefaultSettings {
		setting := models.Setting{Key: key, Value: value}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&setting).Error; err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
	}
	return nil
}
