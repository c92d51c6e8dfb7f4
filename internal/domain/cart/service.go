package cart

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/storefront/internal/domain/product"
)

// Service applies cart mutations for a user.
type Service struct {
	carts     Repository
	products  product.Repository
	mutations metric.Int64Counter
}

// NewService creates a cart Service. Mutations are counted on the given meter.
func NewService(carts Repository, products product.Repository, meter metric.Meter) (*Service, error) {
	mutations, err := meter.Int64Counter("storefront.cart.mutations",
		metric.WithDescription("Cart mutations by action"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create mutations counter")
	}
	return &Service{
		carts:     carts,
		products:  products,
		mutations: mutations,
	}, nil
}

// Get returns the user's cart.
func (s *Service) Get(ctx context.Context, userID int64) (*Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	return c, nil
}

// Mutate applies action for productID to the user's cart and stores the
// result. Add, increment and decrement look the product up and fail with
// product.ErrNotFound when it no longer exists; remove never does, so stale
// lines can always be dropped.
func (s *Service) Mutate(ctx context.Context, userID, productID int64, action Action) (*Cart, error) {
	if _, err := ParseAction(string(action)); err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}

	var p *product.Product
	if action != ActionRemove {
		if p, err = s.products.GetByID(ctx, productID); err != nil {
			return nil, err
		}
	}

	changed, err := Apply(c, productID, p, action)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.carts.Save(ctx, c); err != nil {
			return nil, errors.Wrap(err, "save cart")
		}
	}
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("action", string(action))))
	return c, nil
}
