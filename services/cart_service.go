package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/yeremiapane/clubday/cart"
	"github.com/yeremiapane/clubday/models"
)

// OrderSubmitter is the part of OrderService a cart checkout needs.
type OrderSubmitter interface {
	Submit(ctx context.Context, in SubmitOrderInput) (*SubmitResult, error)
}

// CartService keeps one cart per client session in memory.
type CartService struct {
	mu          sync.Mutex
	carts       map[uint]*cart.Cart
	checkingOut map[uint]bool
	orders      OrderSubmitter
}

func NewCartService(orders OrderSubmitter) *CartService {
	return &CartService{
		carts:       make(map[uint]*cart.Cart),
		checkingOut: make(map[uint]bool),
		orders:      orders,
	}
}

// with runs fn on the session's cart under the service lock.
func (s *CartService) with(sessionID uint, fn func(c *cart.Cart) error) (cart.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[sessionID]
	if !ok {
		c = cart.New()
		s.carts[sessionID] = c
	}
	if err := fn(c); err != nil {
		return c.Snapshot(), err
	}
	return c.Snapshot(), nil
}

func (s *CartService) Get(sessionID uint) cart.Snapshot {
	snap, _ := s.with(sessionID, func(*cart.Cart) error { return nil })
	return snap
}

func (s *CartService) Add(sessionID uint, entry cart.Entry) (cart.Snapshot, error) {
	return s.with(sessionID, func(c *cart.Cart) error {
		_, err := c.Add(entry)
		return err
	})
}

func (s *CartService) UpdateQuantity(sessionID uint, lineID string, quantity int) (cart.Snapshot, error) {
	return s.with(sessionID, func(c *cart.Cart) error {
		return c.UpdateQuantity(lineID, quantity)
	})
}

func (s *CartService) Remove(sessionID uint, lineID string) (cart.Snapshot, error) {
	return s.with(sessionID, func(c *cart.Cart) error {
		return c.Remove(lineID)
	})
}

func (s *CartService) SetDetails(sessionID uint, notes string, delivery models.DeliveryType) (cart.Snapshot, error) {
	return s.with(sessionID, func(c *cart.Cart) error {
		if delivery != "" {
			if !delivery.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidDeliveryType, delivery)
			}
			c.DeliveryType = delivery
		}
		c.Notes = notes
		return nil
	})
}

func (s *CartService) Clear(sessionID uint) cart.Snapshot {
	snap, _ := s.with(sessionID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
	return snap
}

// Forget drops a session's cart entirely.
func (s *CartService) Forget(sessionID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

// Checkout submits the cart as an order. Only one checkout per session runs
// at a time; a concurrent one gets ErrCheckoutInProgress. On success the
// submitted lines are taken out of the cart, so lines added while the order
// was being written stay behind. The cart is left untouched on failure.
func (s *CartService) Checkout(ctx context.Context, sessionID, tableID uint) (*SubmitResult, error) {
	s.mu.Lock()
	if s.checkingOut[sessionID] {
		s.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	c, ok := s.carts[sessionID]
	if !ok || c.Empty() {
		s.mu.Unlock()
		return nil, ErrEmptyOrder
	}
	submitted := c.Lines()
	in := SubmitOrderInput{
		TableID:      tableID,
		SessionID:    sessionID,
		Notes:        c.Notes,
		DeliveryType: c.DeliveryType,
		Items: lo.Map(submitted, func(l cart.Line, _ int) SubmitItem {
			return SubmitItem{
				Name:            l.Name,
				UnitPrice:       l.UnitPrice().InexactFloat64(),
				Quantity:        l.Quantity,
				Category:        l.Category,
				MenuItemID:      l.MenuItemID,
				InventoryItemID: l.InventoryItemID,
			}
		}),
	}
	s.checkingOut[sessionID] = true
	s.mu.Unlock()

	result, err := s.orders.Submit(ctx, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkingOut, sessionID)
	if err != nil {
		return nil, err
	}
	if c, ok := s.carts[sessionID]; ok {
		c.Deduct(submitted)
		if c.Notes == in.Notes && c.DeliveryType == in.DeliveryType {
			c.Notes = ""
			c.DeliveryType = models.DeliveryTable
		}
	}
	return result, nil
}
