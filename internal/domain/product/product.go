package product

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item. Price is in minor currency units.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       int64
	Image       string
	Category    string
	Featured    bool
}

// Repository defines read operations for the product catalog. Catalog writes
// are out of scope for this service.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	ListFeatured(ctx context.Context) ([]Product, error)
	// ListRecommended returns up to limit products picked at random.
	ListRecommended(ctx context.Context, limit int) ([]Product, error)
	ListByCategory(ctx context.Context, category string) ([]Product, error)
	// GetByIDs returns the products for the given ids, keyed by id. Unknown
	// ids are simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) (map[string]Product, error)
}
