// Package cart implements the per-user shopping cart ledger.
//
// Line totals and the items price are derived from price and quantity on
// every read, so they cannot drift from the stored lines.
package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/product"
)

var (
	// ErrEmpty is returned when checkout is attempted on an empty cart.
	ErrEmpty = errors.New("cart is empty")
	// ErrUnknownAction is returned for an action outside add, increment,
	// decrement and remove.
	ErrUnknownAction = errors.New("unknown cart action")
)

// Action is a cart mutation.
type Action string

const (
	ActionAdd       Action = "add"
	ActionIncrement Action = "increment"
	ActionDecrement Action = "decrement"
	ActionRemove    Action = "remove"
)

// ParseAction validates s as an Action.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionAdd, ActionIncrement, ActionDecrement, ActionRemove:
		return a, nil
	default:
		return "", errors.Wrapf(ErrUnknownAction, "%q", s)
	}
}

// LineItem is one product's entry in a cart. The catalog fields are a
// snapshot taken at the last add, increment or decrement.
type LineItem struct {
	ProductID   int64
	Name        string
	Description string
	Price       decimal.Decimal
	Img         string
	Qty         int
}

// Total returns price × quantity.
func (l LineItem) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

func (l *LineItem) refresh(p *product.Product) {
	l.Name = p.Name
	l.Description = p.Description
	l.Price = p.Price
	l.Img = p.Img
}

// ShippingInfo is the recipient filled in during the second checkout phase.
type ShippingInfo struct {
	Name    string
	Address string
}

// Complete reports whether the info carries both name and address.
func (i *ShippingInfo) Complete() bool {
	return i != nil && i.Name != "" && i.Address != ""
}

// Shipping is the shipping sub-record attached in the first checkout phase.
// Info is nil until the second phase.
type Shipping struct {
	Price decimal.Decimal
	Info  *ShippingInfo
}

// Cart is a user's cart aggregate. Items are unique by product id and kept in
// insertion order.
type Cart struct {
	UserID   int64
	Items    []LineItem
	Shipping *Shipping
}

// New returns an empty cart for the user.
func New(userID int64) *Cart {
	return &Cart{UserID: userID}
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// ItemsPrice returns the sum of all line totals.
func (c *Cart) ItemsPrice() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Items {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Line returns the line for productID.
func (c *Cart) Line(productID int64) (LineItem, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []LineItem {
	out := make([]LineItem, len(c.Items))
	copy(out, c.Items)
	return out
}

func (c *Cart) index(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add inserts p with quantity 1 or increments its line by one. The quantity
// never exceeds p.Qty: at capacity the quantity is left unchanged, and a
// product with nothing on hand is not inserted. It reports whether the cart
// changed.
func (c *Cart) Add(p *product.Product) bool {
	i := c.index(p.ID)
	if i < 0 {
		if p.Qty < 1 {
			return false
		}
		l := LineItem{ProductID: p.ID, Qty: 1}
		l.refresh(p)
		c.Items = append(c.Items, l)
		return true
	}
	l := &c.Items[i]
	l.refresh(p)
	if l.Qty < p.Qty {
		l.Qty++
	}
	return true
}

// Decrement lowers the line for p by one, flooring at zero. The line stays in
// the cart at zero. Decrementing an absent line is a no-op. It reports whether
// the cart changed.
func (c *Cart) Decrement(p *product.Product) bool {
	i := c.index(p.ID)
	if i < 0 {
		return false
	}
	l := &c.Items[i]
	l.refresh(p)
	if l.Qty > 0 {
		l.Qty--
	}
	return true
}

// Remove deletes the line for productID regardless of its quantity. Removing
// an absent line is a no-op. It reports whether the cart changed.
func (c *Cart) Remove(productID int64) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// Apply runs action against the line for productID. p is the current catalog
// record and may be nil only for ActionRemove. It reports whether the cart
// changed.
func Apply(c *Cart, productID int64, p *product.Product, action Action) (bool, error) {
	switch action {
	case ActionRemove:
		return c.Remove(productID), nil
	case ActionAdd, ActionIncrement, ActionDecrement:
	default:
		return false, errors.Wrapf(ErrUnknownAction, "%q", action)
	}
	if p == nil || p.ID != productID {
		return false, product.ErrNotFound
	}
	if action == ActionDecrement {
		return c.Decrement(p), nil
	}
	return c.Add(p), nil
}

// Repository persists cart aggregates.
type Repository interface {
	// Get returns the user's cart, or an empty cart when none is stored.
	Get(ctx context.Context, userID int64) (*Cart, error)
	// Save replaces the user's stored cart with c as one unit.
	Save(ctx context.Context, c *Cart) error
}
