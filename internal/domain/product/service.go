package product

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ImageStore persists uploaded product images and returns the reference to
// store in Product.Img.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Patch lists the admin-editable product fields. Nil fields are left as is.
type Patch struct {
	Name        *string
	Description *string
	Qty         *int
	Price       *decimal.Decimal
	PriceOff    *decimal.Decimal
}

// Image is an uploaded image attached to a product edit.
type Image struct {
	Filename string
	Body     io.Reader
}

// Service implements the admin catalog operations.
type Service struct {
	products Repository
	images   ImageStore
}

// NewService creates a product Service.
func NewService(products Repository, images ImageStore) *Service {
	return &Service{products: products, images: images}
}

// Create inserts a new product built from the defaults overlaid with patch.
func (s *Service) Create(ctx context.Context, patch Patch) (*Product, error) {
	p := New()
	patch.apply(&p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return &p, nil
}

// Update applies patch to the product and, when img is set, stores the image
// and points the product at it.
func (s *Service) Update(ctx context.Context, id int64, patch Patch, img *Image) (*Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.apply(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if img != nil {
		ref, err := s.images.Save(ctx, img.Filename, img.Body)
		if err != nil {
			return nil, errors.Wrap(err, "save image")
		}
		p.Img = ref
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, errors.Wrapf(err, "update product %d", id)
	}
	return p, nil
}

// Delete removes the product from the catalog. Carts and orders referencing it
// keep their snapshots.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "delete product %d", id)
	}
	return nil
}

func (pt Patch) apply(p *Product) {
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.Qty != nil {
		p.Qty = *pt.Qty
	}
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.PriceOff != nil {
		p.PriceOff = *pt.PriceOff
	}
}
