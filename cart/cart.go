package cart

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/utils"
)

var (
	ErrLineNotFound = errors.New("cart line not found")
	ErrInvalidEntry = errors.New("cart entry needs a name and a price")
)

// Entry is a menu selection as the customer picked it. Price is the
// formatted display string, e.g. "R$ 12,50".
type Entry struct {
	Name            string `json:"name"`
	Price           string `json:"price"`
	Category        string `json:"category"`
	MenuItemID      *uint  `json:"menu_item_id,omitempty"`
	InventoryItemID *uint  `json:"inventory_item_id,omitempty"`
}

type Line struct {
	ID string `json:"id"`
	Entry
	Quantity int `json:"quantity"`
}

// UnitPrice parses the line's formatted price.
func (l Line) UnitPrice() decimal.Decimal {
	price, err := utils.ParseCurrency(l.Price)
	if err != nil {
		return decimal.Zero
	}
	return price
}

type Cart struct {
	lines        []Line
	Notes        string
	DeliveryType models.DeliveryType
}

func New() *Cart {
	return &Cart{DeliveryType: models.DeliveryTable}
}

// Add merges entry into the line with the same name and category, or
// appends a new line with quantity 1.
func (c *Cart) Add(entry Entry) (Line, error) {
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		return Line{}, ErrInvalidEntry
	}
	price, err := utils.ParseCurrency(entry.Price)
	if err != nil || price.IsNegative() {
		return Line{}, ErrInvalidEntry
	}

	for i := range c.lines {
		if c.lines[i].Name == entry.Name && c.lines[i].Category == entry.Category {
			c.lines[i].Quantity++
			return c.lines[i], nil
		}
	}

	line := Line{ID: uuid.NewString(), Entry: entry, Quantity: 1}
	c.lines = append(c.lines, line)
	return line, nil
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (c *Cart) UpdateQuantity(lineID string, quantity int) error {
	for i := range c.lines {
		if c.lines[i].ID != lineID {
			continue
		}
		if quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity = quantity
		}
		return nil
	}
	return ErrLineNotFound
}

func (c *Cart) Remove(lineID string) error {
	return c.UpdateQuantity(lineID, 0)
}

// Clear empties lines, notes and delivery type together.
func (c *Cart) Clear() {
	c.lines = nil
	c.Notes = ""
	c.DeliveryType = models.DeliveryTable
}

// Deduct takes submitted lines back out of the cart. Quantities added to a
// line after the snapshot was taken stay in the cart.
func (c *Cart) Deduct(submitted []Line) {
	for _, sub := range submitted {
		for i := range c.lines {
			if c.lines[i].ID != sub.ID {
				continue
			}
			if c.lines[i].Quantity <= sub.Quantity {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			} else {
				c.lines[i].Quantity -= sub.Quantity
			}
			break
		}
	}
	if len(c.lines) == 0 {
		c.lines = nil
	}
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

type Snapshot struct {
	Lines          []Line              `json:"lines"`
	Notes          string              `json:"notes"`
	DeliveryType   models.DeliveryType `json:"delivery_type"`
	TotalItems     int                 `json:"total_items"`
	TotalPrice     string              `json:"total_price"`
	TotalFormatted string              `json:"total_formatted"`
}

func (c *Cart) Snapshot() Snapshot {
	total := c.TotalPrice()
	return Snapshot{
		Lines:          c.Lines(),
		Notes:          c.Notes,
		DeliveryType:   c.DeliveryType,
		TotalItems:     c.TotalItems(),
		TotalPrice:     total.StringFixed(2),
		TotalFormatted: utils.FormatDecimalBRL(total),
	}
}
