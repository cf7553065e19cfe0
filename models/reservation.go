package models

import (
	"time"

	"gorm.io/gorm"
)

type ReservationType string

const (
	ReservationEntry     ReservationType = "entrada"
	ReservationPool      ReservationType = "piscina"
	ReservationKiosk     ReservationType = "quiosque"
	ReservationBreakfast ReservationType = "cafe_da_manha"
)

var ReservationTypes = []ReservationType{
	ReservationEntry,
	ReservationPool,
	ReservationKiosk,
	ReservationBreakfast,
}

const (
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

type Reservation struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Date       string          `gorm:"type:varchar(10);not null;index:idx_reservation_slot" json:"date"`
	Type       ReservationType `gorm:"type:varchar(20);not null;index:idx_reservation_slot" json:"type"`
	ClientName string          `gorm:"type:varchar(255);not null" json:"client_name"`
	Contact    string          `gorm:"type:varchar(255);not null" json:"contact"`
	PartySize  int             `gorm:"not null" json:"party_size"`
	Status     string          `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes      string          `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`
}

func (r *Reservation) AfterCreate(tx *gorm.DB) error {
	return recordChange(tx, ChangeReservations, r.ID, ActionInsert)
}

func (r *Reservation) AfterUpdate(tx *gorm.DB) error {
	return recordChange(tx, ChangeReservations, r.ID, ActionUpdate)
}

// ReservationSlot is one row per capped (date, type). Bookings lock it
// before counting so they run one at a time per slot.
type ReservationSlot struct {
	ID   uint            `gorm:"primaryKey" json:"id"`
	Date string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_slot_date_type" json:"date"`
	Type ReservationType `gorm:"type:varchar(20);not null;uniqueIndex:idx_slot_date_type" json:"type"`
}
