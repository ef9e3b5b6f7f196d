package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecomloop/storefront/internal/domain/coupon"
)

const (
	findActiveCouponSQL = `SELECT code, owner_id, discount_percent, expires_at, active
		FROM coupons WHERE owner_id = $1 AND code = $2 AND active = TRUE`

	// Conditional update instead of save-whole-object: concurrent writers
	// cannot lose each other's changes.
	retireCouponSQL = `UPDATE coupons SET active = FALSE WHERE code = $1 AND owner_id = $2`

	deleteCouponByOwnerSQL = `DELETE FROM coupons WHERE owner_id = $1`

	insertCouponSQL = `INSERT INTO coupons (code, owner_id, discount_percent, expires_at, active)
		VALUES ($1, $2, $3, $4, $5)`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindActive returns the owner's active coupon matching code, or (nil, nil)
// when no such row exists.
func (r *CouponRepository) FindActive(ctx context.Context, ownerID, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, findActiveCouponSQL, ownerID, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding coupon %q: %w", code, err)
	}
	return &c, nil
}

// Retire flips active to false. Zero rows affected means the coupon was
// already retired or never existed; both are fine.
func (r *CouponRepository) Retire(ctx context.Context, code, ownerID string) error {
	if _, err := r.pool.Exec(ctx, retireCouponSQL, code, ownerID); err != nil {
		return fmt.Errorf("retiring coupon %q: %w", code, err)
	}
	return nil
}

// Replace deletes any coupon owned by the owner and inserts the new one in a
// single transaction, preserving the at-most-one-per-owner invariant.
func (r *CouponRepository) Replace(ctx context.Context, c *coupon.Coupon) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning coupon replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, deleteCouponByOwnerSQL, c.OwnerID); err != nil {
		return fmt.Errorf("deleting coupon for owner %q: %w", c.OwnerID, err)
	}
	if _, err := tx.Exec(ctx, insertCouponSQL,
		c.Code, c.OwnerID, c.DiscountPercent, c.ExpiresAt, c.Active,
	); err != nil {
		return fmt.Errorf("inserting coupon %q: %w", c.Code, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing coupon replace: %w", err)
	}
	return nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c       coupon.Coupon
		percent int32
	)
	err := row.Scan(&c.Code, &c.OwnerID, &percent, &c.ExpiresAt, &c.Active)
	c.DiscountPercent = int(percent)
	return c, err
}
