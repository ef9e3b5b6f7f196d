package coupon

import (
	"context"
	"time"
)

// Coupon is a per-customer discount. A customer owns at most one coupon at a
// time; IssueFresh replaces whatever the owner currently holds.
type Coupon struct {
	Code            string
	OwnerID         string
	DiscountPercent int
	ExpiresAt       time.Time
	Active          bool
}

// Expired reports whether the coupon is past its expiry at the given instant.
// The stored Active flag is not flipped on expiry, so callers must check both.
func (c *Coupon) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Repository defines persistence operations for coupons.
type Repository interface {
	// FindActive returns the coupon matching code, owner and active=true,
	// or (nil, nil) when no such coupon exists.
	FindActive(ctx context.Context, ownerID, code string) (*Coupon, error)
	// Retire flips active to false for the matching coupon. Retiring an
	// already-retired or missing coupon is a no-op.
	Retire(ctx context.Context, code, ownerID string) error
	// Replace deletes any coupon owned by the owner and inserts the given one.
	Replace(ctx context.Context, c *Coupon) error
}
