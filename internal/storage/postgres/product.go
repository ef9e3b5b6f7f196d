package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecomloop/storefront/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, description, price, image, category, featured
		FROM products ORDER BY name`

	listFeaturedProductsSQL = `SELECT id, name, description, price, image, category, featured
		FROM products WHERE featured ORDER BY name`

	listRecommendedProductsSQL = `SELECT id, name, description, price, image, category, featured
		FROM products ORDER BY random() LIMIT $1`

	listProductsByCategorySQL = `SELECT id, name, description, price, image, category, featured
		FROM products WHERE category = $1 ORDER BY name`

	getProductsByIDsSQL = `SELECT id, name, description, price, image, category, featured
		FROM products WHERE id = ANY($1)`

	upsertProductSQL = `INSERT INTO products (id, name, description, price, image, category, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			image = EXCLUDED.image,
			category = EXCLUDED.category,
			featured = EXCLUDED.featured`
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

// List returns the whole catalog ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	return r.list(ctx, listProductsSQL)
}

// ListFeatured returns the featured subset of the catalog.
func (r *ProductRepository) ListFeatured(ctx context.Context) ([]product.Product, error) {
	return r.list(ctx, listFeaturedProductsSQL)
}

// ListRecommended returns up to limit products in random order.
func (r *ProductRepository) ListRecommended(ctx context.Context, limit int) ([]product.Product, error) {
	return r.list(ctx, listRecommendedProductsSQL, limit)
}

// ListByCategory returns the products in the given category ordered by name.
func (r *ProductRepository) ListByCategory(ctx context.Context, category string) ([]product.Product, error) {
	return r.list(ctx, listProductsByCategorySQL, category)
}

func (r *ProductRepository) list(ctx context.Context, sql string, args ...any) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// GetByIDs returns the products for the given ids, keyed by id.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]product.Product, error) {
	if len(ids) == 0 {
		return map[string]product.Product{}, nil
	}
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("finding products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("finding products: %w", err)
	}
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// Upsert inserts or replaces a catalog entry. Used by the seed tool only.
func (r *ProductRepository) Upsert(ctx context.Context, p product.Product) error {
	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Image, p.Category, p.Featured,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Category, &p.Featured)
	return p, err
}
