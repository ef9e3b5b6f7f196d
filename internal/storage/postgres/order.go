package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecomloop/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, owner_id, products, total, gateway_session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	getOrderBySessionSQL = `SELECT id, owner_id, products, total, gateway_session_id, created_at
		FROM orders WHERE gateway_session_id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order, serializing the product lines into the JSONB
// column. The unique constraint on gateway_session_id decides finalize races:
// a duplicate insert surfaces as order.ErrDuplicateSession.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	productsJSON, err := json.Marshal(o.Products)
	if err != nil {
		return fmt.Errorf("marshaling order products: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.OwnerID, productsJSON, o.TotalMinorUnits, o.GatewaySessionID, o.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return order.ErrDuplicateSession
		}
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetBySessionID returns the order created for the gateway session, or
// order.ErrNotFound.
func (r *OrderRepository) GetBySessionID(ctx context.Context, sessionID string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderBySessionSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("finding order for session %q: %w", sessionID, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("finding order for session %q: %w", sessionID, err)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o            order.Order
		productsJSON []byte
	)
	if err := row.Scan(&o.ID, &o.OwnerID, &productsJSON, &o.TotalMinorUnits,
		&o.GatewaySessionID, &o.CreatedAt); err != nil {
		return order.Order{}, err
	}
	if err := json.Unmarshal(productsJSON, &o.Products); err != nil {
		return order.Order{}, fmt.Errorf("unmarshaling order products: %w", err)
	}
	return o, nil
}
