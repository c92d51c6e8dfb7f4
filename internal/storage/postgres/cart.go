package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/cart"
)

const (
	listCartItemsSQL = `SELECT product_id, name, description, price, img, qty
		FROM cart_items WHERE user_id = $1 ORDER BY position, product_id`

	getCartShippingSQL = `SELECT price, name, address FROM cart_shipping WHERE user_id = $1`

	deleteCartItemsSQL = `DELETE FROM cart_items WHERE user_id = $1`

	insertCartItemSQL = `INSERT INTO cart_items (user_id, product_id, position, name, description, price, img, qty)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	upsertCartShippingSQL = `INSERT INTO cart_shipping (user_id, price, name, address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET price = EXCLUDED.price, name = EXCLUDED.name, address = EXCLUDED.address`

	deleteCartShippingSQL = `DELETE FROM cart_shipping WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository stores carts as one cart_items row per line plus an
// optional cart_shipping row.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get loads the user's cart. A user without stored lines gets an empty cart.
func (r *CartRepository) Get(ctx context.Context, userID int64) (*cart.Cart, error) {
	c := cart.New(userID)

	rows, err := r.pool.Query(ctx, listCartItemsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart items of user %d: %w", userID, err)
	}
	items, err := pgx.CollectRows(rows, scanLineItem)
	if err != nil {
		return nil, fmt.Errorf("listing cart items of user %d: %w", userID, err)
	}
	c.Items = items

	var (
		price         decimal.Decimal
		name, address *string
	)
	err = r.pool.QueryRow(ctx, getCartShippingSQL, userID).Scan(&price, &name, &address)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("getting cart shipping of user %d: %w", userID, err)
	default:
		c.Shipping = &cart.Shipping{Price: price}
		if name != nil && address != nil {
			c.Shipping.Info = &cart.ShippingInfo{Name: *name, Address: *address}
		}
	}

	return c, nil
}

// Save replaces the stored cart with c in a single transaction.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return saveCart(ctx, tx, c)
	})
	if err != nil {
		return fmt.Errorf("saving cart of user %d: %w", c.UserID, err)
	}
	return nil
}

func saveCart(ctx context.Context, tx pgx.Tx, c *cart.Cart) error {
	b := &pgx.Batch{}
	b.Queue(deleteCartItemsSQL, c.UserID)
	for i, l := range c.Items {
		b.Queue(insertCartItemSQL,
			c.UserID, l.ProductID, i, l.Name, l.Description, l.Price, l.Img, l.Qty,
		)
	}

	switch s := c.Shipping; {
	case s == nil:
		b.Queue(deleteCartShippingSQL, c.UserID)
	case s.Info == nil:
		b.Queue(upsertCartShippingSQL, c.UserID, s.Price, nil, nil)
	default:
		b.Queue(upsertCartShippingSQL, c.UserID, s.Price, s.Info.Name, s.Info.Address)
	}

	return tx.SendBatch(ctx, b).Close()
}

// clearCart empties the user's cart inside tx.
func clearCart(ctx context.Context, tx pgx.Tx, userID int64) error {
	return saveCart(ctx, tx, cart.New(userID))
}

func scanLineItem(row pgx.CollectableRow) (cart.LineItem, error) {
	var l cart.LineItem
	err := row.Scan(&l.ProductID, &l.Name, &l.Description, &l.Price, &l.Img, &l.Qty)
	return l, err
}
