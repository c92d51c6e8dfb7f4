package order

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
)

// Address is the recipient form submitted in the second checkout phase.
type Address struct {
	FirstName string
	LastName  string
	Street    string
	City      string
	Country   string
	Zip       string
}

// Info formats the address into the shipping info stored on the cart.
func (a Address) Info() (*cart.ShippingInfo, error) {
	required := []struct{ field, value string }{
		{"name", a.FirstName},
		{"address", a.Street},
		{"city", a.City},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, errors.Wrapf(ErrInvalidAddress, "%s is required", r.field)
		}
	}

	var parts []string
	for _, p := range []string{a.Street, a.City, a.Country, a.Zip} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return &cart.ShippingInfo{
		Name:    strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName)),
		Address: strings.Join(parts, ", "),
	}, nil
}

// Preview is the transcript shown before the order is placed.
type Preview struct {
	Name          string
	Address       string
	Items         []Item
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	Total         decimal.Decimal
}

// Viewer identifies who is reading an order.
type Viewer struct {
	UserID int64
	Admin  bool
}

// Service drives the three checkout phases and order lookups.
type Service struct {
	carts  cart.Repository
	orders Repository
	placed metric.Int64Counter
}

// NewService creates an order Service. Placed orders are counted on the given meter.
func NewService(carts cart.Repository, orders Repository, meter metric.Meter) (*Service, error) {
	placed, err := meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders placed"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create placed counter")
	}
	return &Service{
		carts:  carts,
		orders: orders,
		placed: placed,
	}, nil
}

// SelectShipping attaches a shipping sub-record with the given price and no
// recipient, replacing any earlier selection.
func (s *Service) SelectShipping(ctx context.Context, userID int64, price decimal.Decimal) (*cart.Cart, error) {
	c, err := s.nonEmptyCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, ErrInvalidShipping
	}

	c.Shipping = &cart.Shipping{Price: price}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// SetShippingInfo fills the recipient into the selected shipping and returns
// the order preview. No order is created.
func (s *Service) SetShippingInfo(ctx context.Context, userID int64, addr Address) (*Preview, error) {
	c, err := s.nonEmptyCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.Shipping == nil {
		return nil, ErrShippingNotSelected
	}
	info, err := addr.Info()
	if err != nil {
		return nil, err
	}

	c.Shipping.Info = info
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}

	itemsPrice := c.ItemsPrice()
	return &Preview{
		Name:          info.Name,
		Address:       info.Address,
		Items:         Snapshot(c.Items),
		ItemsPrice:    itemsPrice,
		ShippingPrice: c.Shipping.Price,
		Total:         itemsPrice.Add(c.Shipping.Price),
	}, nil
}

// PlaceOrder freezes the cart into an order and empties the cart.
func (s *Service) PlaceOrder(ctx context.Context, userID int64) (*Order, error) {
	c, err := s.nonEmptyCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.Shipping == nil {
		return nil, ErrShippingNotSelected
	}
	if !c.Shipping.Info.Complete() {
		return nil, ErrShippingInfoMissing
	}

	itemsPrice := c.ItemsPrice()
	o := &Order{
		UserID:        userID,
		Name:          c.Shipping.Info.Name,
		Address:       c.Shipping.Info.Address,
		Items:         Snapshot(c.Items),
		ItemsPrice:    itemsPrice,
		ShippingPrice: c.Shipping.Price,
		Total:         itemsPrice.Add(c.Shipping.Price),
	}
	if err := s.orders.Place(ctx, o); err != nil {
		return nil, errors.Wrap(err, "place order")
	}

	s.placed.Add(ctx, 1)
	zctx.From(ctx).Info("Order placed",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", userID),
		zap.Int("items", len(o.Items)),
		zap.Stringer("total", o.Total),
	)
	return o, nil
}

// Get returns the order when the viewer owns it or is an admin.
func (s *Service) Get(ctx context.Context, v Viewer, id int64) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.Admin && o.UserID != v.UserID {
		return nil, ErrNotFound
	}
	return o, nil
}

// List returns the user's orders.
func (s *Service) List(ctx context.Context, userID int64) ([]Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// ListAll returns every order.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list all orders")
	}
	return orders, nil
}

func (s *Service) nonEmptyCart(ctx context.Context, userID int64) (*cart.Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if c.Empty() {
		return nil, cart.ErrEmpty
	}
	return c, nil
}
