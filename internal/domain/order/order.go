package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrDuplicateSession is returned by Repository.Create when an order with the
// same gateway session id already exists. The caller re-reads and returns the
// existing order; this is how a finalize race is resolved, not a user error.
var ErrDuplicateSession = errors.New("order already exists for session")

// ErrNotFound is returned when no order exists for a lookup key.
var ErrNotFound = errors.New("order not found")

// Product is one purchased product line inside an order, priced at the
// moment the checkout session was created.
type Product struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Order is the durable record of a completed purchase. GatewaySessionID is
// unique across all orders and serves as the idempotency key. Orders are
// never mutated or deleted after creation.
type Order struct {
	ID               string
	OwnerID          string
	Products         []Product
	TotalMinorUnits  int64
	GatewaySessionID string
	CreatedAt        time.Time
}

// Repository defines persistence operations for orders. The collection is
// append-only from the orchestrator's perspective.
type Repository interface {
	// Create inserts a new order, returning ErrDuplicateSession when the
	// gateway session id is already taken.
	Create(ctx context.Context, o *Order) error
	// GetBySessionID returns the order created for the given gateway session,
	// or ErrNotFound.
	GetBySessionID(ctx context.Context, sessionID string) (*Order, error)
}
