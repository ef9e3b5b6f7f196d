package coupon

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/go-faster/errors"
)

// IssueConfig controls the coupons minted by IssueFresh.
type IssueConfig struct {
	DiscountPercent int
	Validity        time.Duration
}

// DefaultIssueConfig matches the storefront's standing loyalty promotion:
// 10% off, valid for 30 days.
var DefaultIssueConfig = IssueConfig{
	DiscountPercent: 10,
	Validity:        30 * 24 * time.Hour,
}

// Ledger tracks the single active coupon each customer may hold.
type Ledger struct {
	repo Repository
	cfg  IssueConfig
	now  func() time.Time
}

// NewLedger creates a Ledger backed by the given repository.
func NewLedger(repo Repository, cfg IssueConfig) *Ledger {
	return &Ledger{repo: repo, cfg: cfg, now: time.Now}
}

// LookupActive returns the owner's coupon if it matches code, is flagged
// active, and has not expired. Absence (including an expired coupon whose
// stored flag still says active) is reported as (nil, nil), not an error.
func (l *Ledger) LookupActive(ctx context.Context, ownerID, code string) (*Coupon, error) {
	c, err := l.repo.FindActive(ctx, ownerID, code)
	if err != nil {
		return nil, errors.Wrap(err, "find coupon")
	}
	if c == nil || c.Expired(l.now()) {
		return nil, nil
	}
	return c, nil
}

// Retire marks the coupon consumed. Idempotent: retiring twice is a no-op.
func (l *Ledger) Retire(ctx context.Context, code, ownerID string) error {
	if err := l.repo.Retire(ctx, code, ownerID); err != nil {
		return errors.Wrap(err, "retire coupon")
	}
	return nil
}

// IssueFresh mints a new coupon for the owner, replacing any coupon the owner
// currently holds. Safe to call when no prior coupon exists.
func (l *Ledger) IssueFresh(ctx context.Context, ownerID string) (*Coupon, error) {
	c := &Coupon{
		Code:            "FRESH" + randomCode(6),
		OwnerID:         ownerID,
		DiscountPercent: l.cfg.DiscountPercent,
		ExpiresAt:       l.now().Add(l.cfg.Validity),
		Active:          true,
	}
	if err := l.repo.Replace(ctx, c); err != nil {
		return nil, errors.Wrap(err, "replace coupon")
	}
	return c, nil
}

// codeAlphabet avoids look-alike characters in user-facing codes.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomCode(n int) string {
	buf := make([]byte, n)
	rand.Read(buf)
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf)
}
