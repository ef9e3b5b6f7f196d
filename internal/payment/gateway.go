// Package payment adapts the external payment gateway: it builds checkout
// session requests from priced line items and reads back confirmed sessions.
package payment

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// ErrUnavailable indicates a network failure or timeout talking to the
// gateway. Safe to retry: no order is created until a session is confirmed.
var ErrUnavailable = errors.New("payment gateway unavailable")

// GatewayError is a non-2xx response from the gateway.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error (status %d): %s", e.StatusCode, e.Message)
}

// StatusPaid is the gateway's payment status for a completed charge.
const StatusPaid = "paid"

// LineItem is a priced cart line as presented to the gateway.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
}

// CreateSessionParams carries everything needed to open a checkout session.
// The metadata bag travels with the session and is the only channel carrying
// pricing intent forward to confirmation. DiscountPercent, when positive, is
// attached to the session as a one-off gateway coupon so the charged amount
// matches the quoted total, not the undiscounted line item sum.
type CreateSessionParams struct {
	LineItems       []LineItem
	DiscountPercent int
	SuccessURL      string
	CancelURL       string
	Metadata        Metadata
}

// Session is the gateway's view of a checkout session at retrieval time.
// AmountTotal is the confirmed charged amount in minor units and is the
// source of truth for what was actually collected. Metadata is the raw bag
// as stored by the gateway; decode it with DecodeMetadata.
type Session struct {
	ID            string
	PaymentStatus string
	AmountTotal   int64
	Metadata      map[string]string
}

// Gateway is the payment collaborator contract consumed by the orchestrator.
type Gateway interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (string, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}
