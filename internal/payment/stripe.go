package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

const defaultBaseURL = "https://api.stripe.com"

// StripeConfig configures the Stripe-backed gateway client.
type StripeConfig struct {
	// SecretKey is the API secret used as a bearer token.
	SecretKey string
	// Currency is the ISO currency code for all sessions.
	Currency string
	// Timeout bounds every gateway round trip.
	Timeout time.Duration
	// BaseURL overrides the API host, used by tests.
	BaseURL string
}

// StripeClient implements Gateway against the Stripe Checkout Sessions API.
// The gateway is untrusted: transport failures map to ErrUnavailable and
// non-2xx responses to *GatewayError, never silently ignored.
type StripeClient struct {
	cfg  StripeConfig
	http *http.Client
}

var _ Gateway = (*StripeClient)(nil)

// NewStripeClient creates a gateway client with a bounded request timeout.
func NewStripeClient(cfg StripeConfig) *StripeClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &StripeClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// CreateSession opens a checkout session and returns the gateway-issued
// session id unchanged.
func (c *StripeClient) CreateSession(ctx context.Context, params CreateSessionParams) (string, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)

	for i, item := range params.LineItems {
		prefix := "line_items[" + strconv.Itoa(i) + "]"
		form.Set(prefix+"[price_data][currency]", c.cfg.Currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}
	for k, v := range params.Metadata.Encode() {
		form.Set("metadata["+k+"]", v)
	}

	if params.DiscountPercent > 0 {
		couponID, err := c.createCoupon(ctx, params.DiscountPercent)
		if err != nil {
			return "", err
		}
		form.Set("discounts[0][coupon]", couponID)
	}

	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// createCoupon mints a single-use gateway coupon so the discount shows up in
// the session's charged amount.
func (c *StripeClient) createCoupon(ctx context.Context, percentOff int) (string, error) {
	form := url.Values{}
	form.Set("percent_off", strconv.Itoa(percentOff))
	form.Set("duration", "once")

	var resp couponResponse
	if err := c.do(ctx, http.MethodPost, "/v1/coupons", form, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// RetrieveSession fetches the session's payment status, confirmed amount,
// and metadata bag by id.
func (c *StripeClient) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	path := "/v1/checkout/sessions/" + url.PathEscape(sessionID)

	var resp sessionResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &Session{
		ID:            resp.ID,
		PaymentStatus: resp.PaymentStatus,
		AmountTotal:   resp.AmountTotal,
		Metadata:      resp.Metadata,
	}, nil
}

type sessionResponse struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Metadata      map[string]string `json:"metadata"`
}

type couponResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *StripeClient) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build gateway request")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(ErrUnavailable, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrapf(ErrUnavailable, "read gateway response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eresp errorResponse
		msg := "request failed"
		if json.Unmarshal(data, &eresp) == nil && eresp.Error.Message != "" {
			msg = eresp.Error.Message
		}
		return &GatewayError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &GatewayError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}
