package handler

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/ecomloop/storefront/internal/domain/order"
	"github.com/ecomloop/storefront/internal/domain/pricing"
	"github.com/ecomloop/storefront/internal/payment"
)

type checkoutItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutSession prices the cart against the catalog and opens a gateway
// session. Prices always come from the catalog, never from the client.
func (h *Handler) CheckoutSession(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Items      []checkoutItem `json:"items"`
		CouponCode string         `json:"couponCode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	lines, badReq, err := h.resolveLines(r, req.Items)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if badReq != "" {
		writeError(w, http.StatusBadRequest, badReq)
		return
	}

	sess, err := h.orders.Checkout(r.Context(), u.ID, lines, req.CouponCode)
	if err != nil {
		h.mapCheckoutError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": sess.SessionID,
		"total":     majorUnits(sess.TotalMinorUnits),
	})
}

// CheckoutSuccess finalizes a paid session into an order.
func (h *Handler) CheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	o, err := h.orders.Finalize(r.Context(), req.SessionID)
	if err != nil {
		h.mapCheckoutError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"orderId": o.ID,
	})
}

// resolveLines turns client cart items into priced lines using catalog
// prices. A non-empty badReq describes a client mistake; err is a server
// failure.
func (h *Handler) resolveLines(r *http.Request, items []checkoutItem) (lines []pricing.Line, badReq string, err error) {
	if len(items) == 0 {
		return nil, "cart is empty", nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	catalog, err := h.products.GetByIDs(r.Context(), ids)
	if err != nil {
		return nil, "", errors.Wrap(err, "load products")
	}

	lines = make([]pricing.Line, len(items))
	for i, item := range items {
		p, ok := catalog[item.ProductID]
		if !ok {
			return nil, fmt.Sprintf("unknown product %q", item.ProductID), nil
		}
		lines[i] = pricing.Line{
			ProductID: p.ID,
			UnitPrice: p.Price,
			Quantity:  item.Quantity,
		}
	}
	return lines, "", nil
}

// mapCheckoutError converts domain errors to HTTP responses. Gateway and
// storage failures answer with generic messages.
func (h *Handler) mapCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var lineErr *pricing.InvalidLineError
	var gwErr *payment.GatewayError
	switch {
	case errors.Is(err, pricing.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty")
	case errors.As(err, &lineErr):
		writeError(w, http.StatusBadRequest, lineErr.Error())
	case errors.Is(err, order.ErrPaymentNotCompleted):
		writeError(w, http.StatusPaymentRequired, "payment not completed")
	case errors.As(err, &gwErr), errors.Is(err, payment.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "payment gateway unavailable")
	default:
		writeInternalError(w, r, err)
	}
}
