package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/samber/lo"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Unlimited is returned by RemainingSlots for types without a cap.
const Unlimited = -1

// reservationCapacity holds the per-day limit of capped types.
var reservationCapacity = map[models.ReservationType]int{
	models.ReservationKiosk:     6,
	models.ReservationBreakfast: 30,
}

// RemainingSlots returns how many reservations of the type can still be
// made given n confirmed ones, or Unlimited.
func RemainingSlots(t models.ReservationType, n int) int {
	limit, capped := reservationCapacity[t]
	if !capped {
		return Unlimited
	}
	if n >= limit {
		return 0
	}
	return limit - n
}

type ReservationService struct {
	db *gorm.DB
}

func NewReservationService(db *gorm.DB) *ReservationService {
	return &ReservationService{db: db}
}

type ReservationInput struct {
	Date       string                 `json:"date"`
	Type       models.ReservationType `json:"type"`
	ClientName string                 `json:"client_name"`
	Contact    string                 `json:"contact"`
	PartySize  int                    `json:"party_size"`
	Notes      string                 `json:"notes"`
}

func validDate(value interface{}) error {
	s, _ := value.(string)
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("must be a date in YYYY-MM-DD format")
	}
	return nil
}

func (in ReservationInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Date, validation.Required, validation.By(validDate)),
		validation.Field(&in.Type, validation.Required, validation.In(lo.ToAnySlice(models.ReservationTypes)...)),
		validation.Field(&in.ClientName, validation.Required, validation.Length(2, 255)),
		validation.Field(&in.Contact, validation.Required, validation.Length(3, 255)),
		validation.Field(&in.PartySize, validation.Required, validation.Min(1)),
	)
}

type Availability struct {
	Date      string                 `json:"date"`
	Type      models.ReservationType `json:"type"`
	Confirmed int                    `json:"confirmed"`
	Remaining int                    `json:"remaining"`
	Unlimited bool                   `json:"unlimited"`
}

func countConfirmed(tx *gorm.DB, date string, t models.ReservationType) (int, error) {
	var n int64
	err := tx.Model(&models.Reservation{}).
		Where("date = ? AND type = ? AND status = ?", date, t, models.ReservationConfirmed).
		Count(&n).Error
	return int(n), err
}

// lockSlot loads the slot row with a row lock held until the transaction
// ends. sqlite has no row locks and serializes writers on its own.
func lockSlot(tx *gorm.DB, slot *models.ReservationSlot) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("date = ? AND type = ?", slot.Date, slot.Type).
		First(slot)
}

// Create books a reservation if the slot still has room. For capped types
// the slot row is locked first, then the count and the insert run in the
// same transaction.
func (s *ReservationService) Create(ctx context.Context, in ReservationInput) (*models.Reservation, error) {
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.Contact = strings.TrimSpace(in.Contact)
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	reservation := models.Reservation{
		Date:       in.Date,
		Type:       in.Type,
		ClientName: in.ClientName,
		Contact:    in.Contact,
		PartySize:  in.PartySize,
		Status:     models.ReservationConfirmed,
		Notes:      in.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, capped := reservationCapacity[in.Type]; capped {
			slot := models.ReservationSlot{Date: in.Date, Type: in.Type}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&slot).Error; err != nil {
				return err
			}
			if err := lockSlot(tx, &slot).Error; err != nil {
				return err
			}
		}
		n, err := countConfirmed(tx, in.Date, in.Type)
		if err != nil {
			return err
		}
		if RemainingSlots(in.Type, n) == 0 {
			return fmt.Errorf("%w: %s on %s", ErrCapacityExceeded, in.Type, in.Date)
		}
		return tx.Create(&reservation).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Reservation %d: %s on %s for %q", reservation.ID, reservation.Type, reservation.Date, reservation.ClientName)
	return &reservation, nil
}

func (s *ReservationService) Availability(ctx context.Context, date string, t models.ReservationType) (*Availability, error) {
	in := ReservationInput{Date: date, Type: t}
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Date, validation.Required, validation.By(validDate)),
		validation.Field(&in.Type, validation.Required, validation.In(lo.ToAnySlice(models.ReservationTypes)...)),
	); err != nil {
		return nil, validationError(err)
	}

	n, err := countConfirmed(s.db.WithContext(ctx), date, t)
	if err != nil {
		return nil, err
	}
	remaining := RemainingSlots(t, n)
	return &Availability{
		Date:      date,
		Type:      t,
		Confirmed: n,
		Remaining: remaining,
		Unlimited: remaining == Unlimited,
	}, nil
}

func (s *ReservationService) List(ctx context.Context, date string, t models.ReservationType) ([]models.Reservation, error) {
	q := s.db.WithContext(ctx).Order("date ASC, created_at ASC")
	if date != "" {
		q = q.Where("date = ?", date)
	}
	if t != "" {
		q = q.Where("type = ?", t)
	}
	var reservations []models.Reservation
	err := q.Find(&reservations).Error
	return reservations, err
}

func (s *ReservationService) Cancel(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.WithContext(ctx).First(&reservation, id).Error; err != nil {
		return nil, notFound("reservation", err)
	}
	if reservation.Status == models.ReservationCancelled {
		return nil, ErrReservationCancelled
	}
	if err := s.db.WithContext(ctx).Model(&reservation).Update("status", models.ReservationCancelled).Error; err != nil {
		return nil, err
	}
	reservation.Status = models.ReservationCancelled
	return &reservation, nil
}
