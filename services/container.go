package services

import (
	"github.com/yeremiapane/clubday/config"
	"gorm.io/gorm"
)

// Container holds the services shared by the HTTP layer and the CLI.
type Container struct {
	DB           *gorm.DB
	Settings     *SettingsService
	Tables       *TableService
	Sessions     *SessionService
	Stock        *StockService
	Orders       *OrderService
	Carts        *CartService
	Activity     *ActivityService
	Reservations *ReservationService
	Inventory    *InventoryService
	Menu         *MenuService
	Reports      *ReportService
	Auth         *AuthService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	settings := NewSettingsService(db)
	sessions := NewSessionService(db)
	stock := NewStockService(db)
	orders := NewOrderService(db, sessions, stock)

	return &Container{
		DB:           db,
		Settings:     settings,
		Tables:       NewTableService(db),
		Sessions:     sessions,
		Stock:        stock,
		Orders:       orders,
		Carts:        NewCartService(orders),
		Activity:     NewActivityService(db, settings),
		Reservations: NewReservationService(db),
		Inventory:    NewInventoryService(db, stock, settings),
		Menu:         NewMenuService(db),
		Reports:      NewReportService(db),
		Auth:         NewAuthService(db, cfg.JWTTTL),
	}
}
