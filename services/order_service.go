package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/utils"
	"gorm.io/gorm"
)

// transitionRoles lists who may move an order into each status.
var transitionRoles = map[models.OrderStatus][]string{
	models.OrderStatusPreparing: {models.RoleKitchen, models.RoleAdmin},
	models.OrderStatusReady:     {models.RoleKitchen, models.RoleAdmin},
	models.OrderStatusDelivered: {models.RoleWaiter, models.RoleAdmin},
}

// stampColumns holds the timestamp set when an order enters a status.
var stampColumns = map[models.OrderStatus]string{
	models.OrderStatusPreparing: "preparing_at",
	models.OrderStatusReady:     "ready_at",
	models.OrderStatusDelivered: "delivered_at",
}

type OrderService struct {
	db       *gorm.DB
	sessions *SessionService
	stock    *StockService
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, sessions *SessionService, stock *StockService) *OrderService {
	return &OrderService{db: db, sessions: sessions, stock: stock, now: time.Now}
}

type SubmitItem struct {
	Name            string  `json:"name"`
	UnitPrice       float64 `json:"unit_price"`
	Quantity        int     `json:"quantity"`
	Category        string  `json:"category"`
	MenuItemID      *uint   `json:"menu_item_id"`
	InventoryItemID *uint   `json:"inventory_item_id"`
}

func (i SubmitItem) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&i.UnitPrice, validation.Min(0.0)),
		validation.Field(&i.Quantity, validation.Required, validation.Min(1)),
	)
}

type SubmitOrderInput struct {
	TableID      uint                `json:"table_id"`
	SessionID    uint                `json:"session_id"`
	Items        []SubmitItem        `json:"items"`
	Notes        string              `json:"notes"`
	DeliveryType models.DeliveryType `json:"delivery_type"`
}

// Validate checks the input without touching the store.
func (in *SubmitOrderInput) Validate() error {
	if len(in.Items) == 0 {
		return ErrEmptyOrder
	}
	if in.DeliveryType == "" {
		in.DeliveryType = models.DeliveryTable
	}
	if !in.DeliveryType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDeliveryType, in.DeliveryType)
	}
	if in.SessionID == 0 {
		return validationError(fmt.Errorf("session_id is required"))
	}
	for idx, item := range in.Items {
		if err := item.Validate(); err != nil {
			return validationError(fmt.Errorf("item %d: %w", idx, err))
		}
	}
	return nil
}

type SubmitResult struct {
	Order         *models.Order  `json:"order"`
	Orders        []models.Order `json:"orders"`
	StockFailures int            `json:"-"`
}

// Submit runs the order pipeline: header and lines in one transaction,
// then best-effort stock decrement, then a fresh read of the session's
// orders.
func (s *OrderService) Submit(ctx context.Context, in SubmitOrderInput) (*SubmitResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, ErrSessionInactive
	}
	if in.TableID == 0 {
		in.TableID = session.TableID
	}
	if in.TableID != session.TableID {
		return nil, validationError(fmt.Errorf("session %d does not belong to table %d", session.ID, in.TableID))
	}

	order := models.Order{
		TableID:         in.TableID,
		ClientSessionID: session.ID,
		Status:          models.OrderStatusPending,
		Notes:           strings.TrimSpace(in.Notes),
		DeliveryType:    in.DeliveryType,
	}
	items := lo.Map(in.Items, func(item SubmitItem, _ int) models.OrderItem {
		return models.OrderItem{
			MenuItemID:      item.MenuItemID,
			InventoryItemID: item.InventoryItemID,
			ItemName:        strings.TrimSpace(item.Name),
			UnitPrice:       item.UnitPrice,
			Quantity:        item.Quantity,
			Category:        item.Category,
		}
	})

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order header: %w", err)
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
	if err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"session_id": session.ID,
			"table_id":   in.TableID,
		}).Errorf("Order submission failed: %v", err)
		return nil, err
	}
	order.OrderItems = items

	failures := s.stock.DecrementForOrder(ctx, order.ID, items)
	s.sessions.Touch(ctx, session.ID)

	orders, err := s.ListBySession(ctx, session.ID)
	if err != nil {
		utils.ErrorLogger.Printf("Error refreshing orders for session %d: %v", session.ID, err)
	}

	utils.InfoLogger.Printf("Order %d created for session %d at table %d (%d lines)", order.ID, session.ID, order.TableID, len(items))
	return &SubmitResult{Order: &order, Orders: orders, StockFailures: failures}, nil
}

func (s *OrderService) ListBySession(ctx context.Context, sessionID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Where("client_session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Preload("Table").
		Preload("ClientSession").
		First(&order, id).Error
	if err != nil {
		return nil, notFound("order", err)
	}
	return &order, nil
}

// KitchenQueue returns every open order, oldest first.
func (s *OrderService) KitchenQueue(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Preload("Table").
		Preload("ClientSession").
		Where("status IN ?", []models.OrderStatus{
			models.OrderStatusPending,
			models.OrderStatusPreparing,
			models.OrderStatusReady,
		}).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	return orders, err
}

type OrderFilter struct {
	Status  models.OrderStatus
	TableID uint
	From    *time.Time
	To      *time.Time
}

func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Preload("OrderItems").Preload("Table").Order("created_at DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.TableID != 0 {
		q = q.Where("table_id = ?", f.TableID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	var orders []models.Order
	err := q.Find(&orders).Error
	return orders, err
}

// Transition moves an order one step forward. The update only applies if
// the order is still in the status it was read in.
func (s *OrderService) Transition(ctx context.Context, id uint, to models.OrderStatus, role string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, notFound("order", err)
	}
	return s.transition(ctx, &order, to, role)
}

func (s *OrderService) transition(ctx context.Context, order *models.Order, to models.OrderStatus, role string) (*models.Order, error) {
	id := order.ID
	from := order.Status
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if !lo.Contains(transitionRoles[to], role) {
		return nil, fmt.Errorf("%w: %s cannot set %s", ErrForbiddenTransition, role, to)
	}

	result := s.db.WithContext(ctx).Model(&models.Order{ID: id}).
		Where("status = ?", from).
		Updates(map[string]interface{}{
			"status":         to,
			stampColumns[to]: s.now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: order %d is no longer %s", ErrTransitionConflict, id, from)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": id,
		"from":     from,
		"to":       to,
		"role":     role,
	}).Info("Order status changed")
	return s.Get(ctx, id)
}

// Advance applies the next transition for the order's current status.
func (s *OrderService) Advance(ctx context.Context, id uint, role string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, notFound("order", err)
	}
	next, ok := order.Status.Next()
	if !ok {
		return nil, fmt.Errorf("%w: %s is final", ErrInvalidTransition, order.Status)
	}
	return s.transition(ctx, &order, next, role)
}

// Tracking is the read-only view a customer follows.
type Tracking struct {
	OrderID        uint                `json:"order_id"`
	Status         models.OrderStatus  `json:"status"`
	Step           int                 `json:"step"`
	TotalSteps     int                 `json:"total_steps"`
	Message        string              `json:"message"`
	ElapsedMinutes int                 `json:"elapsed_minutes"`
	DeliveryType   models.DeliveryType `json:"delivery_type"`
	Total          float64             `json:"total"`
	TotalFormatted string              `json:"total_formatted"`
	Items          []models.OrderItem  `json:"items"`
}

func NewTracking(order *models.Order, now time.Time) Tracking {
	end := now
	if order.DeliveredAt != nil {
		end = *order.DeliveredAt
	}
	elapsed := int(end.Sub(order.CreatedAt).Minutes())
	if elapsed < 0 {
		elapsed = 0
	}
	total := order.Total()
	return Tracking{
		OrderID:        order.ID,
		Status:         order.Status,
		Step:           order.Status.Step(),
		TotalSteps:     models.OrderSteps,
		Message:        models.StatusMessage(order.Status, order.DeliveryType),
		ElapsedMinutes: elapsed,
		DeliveryType:   order.DeliveryType,
		Total:          total,
		TotalFormatted: utils.FormatCurrencyBRL(total),
		Items:          order.OrderItems,
	}
}

func (s *OrderService) Tracking(ctx context.Context, id uint) (*Tracking, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tracking := NewTracking(order, s.now())
	return &tracking, nil
}
