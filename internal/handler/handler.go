// Package handler exposes the storefront HTTP API: accounts and session
// cookies, the product catalog, and the checkout flow.
package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ecomloop/storefront/internal/domain/order"
	"github.com/ecomloop/storefront/internal/domain/product"
	"github.com/ecomloop/storefront/internal/domain/token"
	"github.com/ecomloop/storefront/internal/domain/user"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// SecureCookies marks session cookies Secure. On in production, off for
	// local development over plain HTTP.
	SecureCookies bool
	// AccessTTL and RefreshTTL bound the session cookie lifetimes. They match
	// the token service lifetimes.
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Handler wires the HTTP surface to the domain services.
type Handler struct {
	cfg      Config
	users    *user.Service
	tokens   *token.Service
	products product.Repository
	orders   *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	users *user.Service,
	tokens *token.Service,
	products product.Repository,
	orders *order.Service,
) *Handler {
	return &Handler{
		cfg:      cfg,
		users:    users,
		tokens:   tokens,
		products: products,
		orders:   orders,
	}
}

// Routes mounts the API routes on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/signup", h.SignUp)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/refresh-token", h.RefreshToken)
		r.With(h.RequireAuth).Get("/profile", h.Profile)
	})
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/featured", h.ListFeatured)
		r.Get("/recommended", h.ListRecommended)
		r.Get("/category/{category}", h.ListByCategory)
	})
	r.Route("/api/payments", func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Post("/checkout-session", h.CheckoutSession)
		r.Post("/checkout-success", h.CheckoutSuccess)
	})
}

// majorUnits converts an amount in minor currency units to the major unit
// float used in responses.
func majorUnits(minor int64) float64 {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100)).InexactFloat64()
}
