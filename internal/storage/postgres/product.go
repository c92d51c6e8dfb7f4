package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/product"
)

const (
	productColumns = `id, name, description, qty, price, price_off, img`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	createProductSQL = `INSERT INTO products (name, description, qty, price, price_off, img)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	updateProductSQL = `UPDATE products
		SET name = $2, description = $3, qty = $4, price = $5, price_off = $6, img = $7
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	listProductNamesSQL = `SELECT name FROM products`

	productExistsSQL = `SELECT EXISTS (SELECT 1 FROM products WHERE name = $1)`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// Create inserts p and sets its ID.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, createProductSQL,
		p.Name, p.Description, p.Qty, p.Price, p.PriceOff, p.Img,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("creating product: %w", err)
	}
	return nil
}

// Update overwrites every editable column of p.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Qty, p.Price, p.PriceOff, p.Img,
	)
	if err != nil {
		return fmt.Errorf("updating product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes the product. Missing products are ignored.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, deleteProductSQL, id); err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	return nil
}

// Names returns the names of all catalog products.
func (r *ProductRepository) Names(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listProductNamesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing product names: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// ExistsByName reports whether a product with exactly this name exists.
func (r *ProductRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, productExistsSQL, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking product %q: %w", name, err)
	}
	return exists, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Qty, &p.Price, &p.PriceOff, &p.Img)
	return p, err
}
