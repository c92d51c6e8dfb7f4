package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrInvalid is returned when a product edit carries negative amounts.
	ErrInvalid = errors.New("invalid product")
)

// Defaults applied to products created from the admin area.
const (
	DefaultName        = "Name..."
	DefaultDescription = "Description..."
)

// Product represents a catalog item available for purchase.
type Product struct {
	ID          int64
	Name        string
	Description string
	// Qty is the quantity on hand. It caps cart quantities but is never
	// reserved or decremented by checkout.
	Qty      int
	Price    decimal.Decimal
	PriceOff decimal.Decimal
	// Img is the reference returned by the image file store.
	Img string
}

// Validate reports ErrInvalid when the product carries negative amounts.
func (p *Product) Validate() error {
	if p.Qty < 0 {
		return errors.Wrap(ErrInvalid, "qty must not be negative")
	}
	if p.Price.IsNegative() {
		return errors.Wrap(ErrInvalid, "price must not be negative")
	}
	if p.PriceOff.IsNegative() {
		return errors.Wrap(ErrInvalid, "price_off must not be negative")
	}
	return nil
}

// New returns a product with the admin-area defaults applied.
func New() Product {
	return Product{
		Name:        DefaultName,
		Description: DefaultDescription,
		Price:       decimal.Zero,
		PriceOff:    decimal.Zero,
	}
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	// Delete removes the product. Deleting a missing product is not an error.
	Delete(ctx context.Context, id int64) error
}
