package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/cart"
)

var (
	// ErrNotFound is returned when an order does not exist or is not visible
	// to the viewer.
	ErrNotFound = errors.New("order not found")
	// ErrShippingNotSelected is returned when a later checkout phase runs
	// before a shipping price was chosen.
	ErrShippingNotSelected = errors.New("shipping not selected")
	// ErrShippingInfoMissing is returned when an order is placed before the
	// recipient name and address were filled in.
	ErrShippingInfoMissing = errors.New("shipping info missing")
	// ErrInvalidShipping is returned for a negative shipping price.
	ErrInvalidShipping = errors.New("invalid shipping price")
	// ErrInvalidAddress is returned when a required address field is empty.
	ErrInvalidAddress = errors.New("invalid address")
)

// Order is an immutable checkout transcript.
type Order struct {
	ID            int64
	UserID        int64
	OrderedAt     time.Time
	Name          string
	Address       string
	Items         []Item
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	Total         decimal.Decimal
}

// Item is a frozen copy of a cart line.
type Item struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Img         string          `json:"img"`
	Qty         int             `json:"qty"`
	Total       decimal.Decimal `json:"total"`
}

// Snapshot copies cart lines into order items.
func Snapshot(lines []cart.LineItem) []Item {
	items := make([]Item, len(lines))
	for i, l := range lines {
		items[i] = Item{
			ProductID:   l.ProductID,
			Name:        l.Name,
			Description: l.Description,
			Price:       l.Price,
			Img:         l.Img,
			Qty:         l.Qty,
			Total:       l.Total(),
		}
	}
	return items
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Place stores o, setting its ID and OrderedAt, and empties the cart of
	// o.UserID in the same transaction.
	Place(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	// List returns all orders, newest first.
	List(ctx context.Context) ([]Order, error)
}
