package models

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
)

// orderFlow is the only path an order may take.
var orderFlow = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
}

// OrderSteps is the number of states in the order flow.
var OrderSteps = len(orderFlow)

// Step returns the position of the status in the flow, or -1.
func (s OrderStatus) Step() int {
	for i, st := range orderFlow {
		if st == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) Valid() bool {
	return s.Step() >= 0
}

// Next returns the status that follows s. Delivered has no successor.
func (s OrderStatus) Next() (OrderStatus, bool) {
	i := s.Step()
	if i < 0 || i == len(orderFlow)-1 {
		return "", false
	}
	return orderFlow[i+1], true
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	next, ok := s.Next()
	return ok && next == to
}

// Open reports whether the order still belongs in the kitchen queue.
func (s OrderStatus) Open() bool {
	return s.Valid() && s != OrderStatusDelivered
}

type DeliveryType string

const (
	DeliveryTable   DeliveryType = "table"
	DeliveryCounter DeliveryType = "counter"
)

func (d DeliveryType) Valid() bool {
	return d == DeliveryTable || d == DeliveryCounter
}

type Order struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	TableID         uint           `gorm:"not null;index" json:"table_id"`
	Table           *Table         `gorm:"foreignKey:TableID" json:"table,omitempty"`
	ClientSessionID uint           `gorm:"not null;index" json:"client_session_id"`
	ClientSession   *ClientSession `gorm:"foreignKey:ClientSessionID" json:"client_session,omitempty"`
	Status          OrderStatus    `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes           string         `gorm:"type:text" json:"notes"`
	DeliveryType    DeliveryType   `gorm:"type:varchar(20);not null" json:"delivery_type"`
	PreparingAt     *time.Time     `json:"preparing_at,omitempty"`
	ReadyAt         *time.Time     `json:"ready_at,omitempty"`
	DeliveredAt     *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	OrderItems      []OrderItem    `gorm:"foreignKey:OrderID" json:"order_items"`
}

// Total sums the snapshotted line prices.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.OrderItems {
		total += item.Subtotal()
	}
	return total
}

func (o *Order) AfterCreate(tx *gorm.DB) error {
	return recordChange(tx, ChangeOrders, o.ID, ActionInsert)
}

func (o *Order) AfterUpdate(tx *gorm.DB) error {
	return recordChange(tx, ChangeOrders, o.ID, ActionUpdate)
}

func (o *Order) AfterDelete(tx *gorm.DB) error {
	return recordChange(tx, ChangeOrders, o.ID, ActionDelete)
}

// StatusMessage is the text the customer sees while following an order.
func StatusMessage(status OrderStatus, delivery DeliveryType) string {
	switch status {
	case OrderStatusPending:
		return "Pedido recebido! Aguardando a cozinha."
	case OrderStatusPreparing:
		return "Seu pedido está sendo preparado."
	case OrderStatusReady:
		if delivery == DeliveryCounter {
			return "Seu pedido está pronto! Retire no balcão."
		}
		return "Seu pedido está pronto e já vai para a sua mesa!"
	case OrderStatusDelivered:
		return "Pedido entregue. Bom apetite!"
	}
	return ""
}
