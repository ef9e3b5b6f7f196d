package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ecomloop/storefront/internal/domain/coupon"
	"github.com/ecomloop/storefront/internal/domain/pricing"
	"github.com/ecomloop/storefront/internal/payment"
)

// ErrPaymentNotCompleted is returned by Finalize when the gateway reports the
// session as anything other than paid. No order is created and no coupon is
// touched.
var ErrPaymentNotCompleted = errors.New("payment not completed")

// Config holds the orchestrator's policy knobs.
type Config struct {
	// SuccessURL and CancelURL are the gateway's post-payment redirect pair.
	SuccessURL string
	CancelURL  string
	// RewardThreshold is the confirmed charged amount, in minor units, at or
	// above which a finalized order earns the owner a fresh coupon.
	RewardThreshold int64
}

// CheckoutSession is the result of opening a checkout: the gateway session id
// the client completes payment against, and the priced total.
type CheckoutSession struct {
	SessionID       string
	TotalMinorUnits int64
}

// Service orchestrates checkout and order fulfillment.
type Service struct {
	orders  Repository
	coupons *coupon.Ledger
	gateway payment.Gateway
	cfg     Config
	group   singleflight.Group
	now     func() time.Time
}

// NewService creates the orchestrator with its collaborators.
func NewService(orders Repository, coupons *coupon.Ledger, gateway payment.Gateway, cfg Config) *Service {
	return &Service{
		orders:  orders,
		coupons: coupons,
		gateway: gateway,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Checkout prices the cart, applies the owner's coupon when the code resolves
// to an active one, and opens a gateway session. The priced line items travel
// in the session metadata and are the authoritative input to Finalize: the
// cart may change between session creation and confirmation.
func (s *Service) Checkout(ctx context.Context, ownerID string, lines []pricing.Line, couponCode string) (*CheckoutSession, error) {
	var applied *coupon.Coupon
	if couponCode != "" {
		c, err := s.coupons.LookupActive(ctx, ownerID, couponCode)
		if err != nil {
			return nil, err
		}
		// An unknown, foreign, retired, or expired code prices the cart
		// without a discount rather than failing the checkout.
		applied = c
	}

	items, total, err := pricing.Price(lines, applied)
	if err != nil {
		return nil, err
	}

	meta := payment.Metadata{
		OwnerID:  ownerID,
		Products: make([]payment.ProductEntry, len(items)),
	}
	if applied != nil {
		meta.CouponCode = applied.Code
	}
	gatewayItems := make([]payment.LineItem, len(items))
	for i, item := range items {
		meta.Products[i] = payment.ProductEntry{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
		gatewayItems[i] = payment.LineItem{
			Name:       item.ProductID,
			UnitAmount: item.UnitPrice,
			Quantity:   item.Quantity,
		}
	}

	// The discount travels with the session so the gateway charges the quoted
	// total, not the undiscounted line item sum.
	discountPercent := 0
	if applied != nil {
		discountPercent = applied.DiscountPercent
	}

	sessionID, err := s.gateway.CreateSession(ctx, payment.CreateSessionParams{
		LineItems:       gatewayItems,
		DiscountPercent: discountPercent,
		SuccessURL:      s.cfg.SuccessURL,
		CancelURL:       s.cfg.CancelURL,
		Metadata:        meta,
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutSession{SessionID: sessionID, TotalMinorUnits: total}, nil
}

// Finalize turns a confirmed checkout session into a durable order, exactly
// once per session id. Safe to call any number of times: repeat calls return
// the already-created order unchanged. Concurrent calls for the same session
// collapse onto a single execution; across processes the unique constraint on
// the gateway session id decides the race and the loser re-reads.
func (s *Service) Finalize(ctx context.Context, sessionID string) (*Order, error) {
	v, err, _ := s.group.Do(sessionID, func() (any, error) {
		return s.finalize(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Order), nil
}

func (s *Service) finalize(ctx context.Context, sessionID string) (*Order, error) {
	existing, err := s.orders.GetBySessionID(ctx, sessionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "lookup order")
	}

	sess, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.PaymentStatus != payment.StatusPaid {
		return nil, ErrPaymentNotCompleted
	}

	// Decode before any side effect so a corrupt metadata bag changes nothing.
	meta, err := payment.DecodeMetadata(sess.Metadata)
	if err != nil {
		return nil, errors.Wrap(err, "decode session metadata")
	}

	if meta.CouponCode != "" {
		if err := s.coupons.Retire(ctx, meta.CouponCode, meta.OwnerID); err != nil {
			return nil, err
		}
	}

	products := make([]Product, len(meta.Products))
	for i, p := range meta.Products {
		products[i] = Product{ProductID: p.ProductID, Quantity: p.Quantity, UnitPrice: p.UnitPrice}
	}
	o := &Order{
		ID:               uuid.New().String(),
		OwnerID:          meta.OwnerID,
		Products:         products,
		TotalMinorUnits:  sess.AmountTotal,
		GatewaySessionID: sessionID,
		CreatedAt:        s.now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		if errors.Is(err, ErrDuplicateSession) {
			// Another finalize won the insert race; its order is the order.
			return s.orders.GetBySessionID(ctx, sessionID)
		}
		return nil, errors.Wrap(err, "create order")
	}

	// Reward eligibility is judged on the confirmed charged amount, after the
	// order is durable. A failed issuance is a lost promotion, not a lost
	// order, so it does not fail the call.
	if o.TotalMinorUnits >= s.cfg.RewardThreshold {
		if _, err := s.coupons.IssueFresh(ctx, meta.OwnerID); err != nil {
			zctx.From(ctx).Warn("reward coupon issuance failed",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	}

	return o, nil
}
