package handler

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ecomloop/storefront/internal/domain/coupon"
	"github.com/ecomloop/storefront/internal/domain/order"
	"github.com/ecomloop/storefront/internal/domain/pricing"
	"github.com/ecomloop/storefront/internal/domain/product"
	"github.com/ecomloop/storefront/internal/domain/token"
	"github.com/ecomloop/storefront/internal/domain/user"
	"github.com/ecomloop/storefront/internal/payment"
)

// --- Mock implementations ---

type mockUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*user.User
	byID    map[string]*user.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byEmail: make(map[string]*user.User),
		byID:    make(map[string]*user.User),
	}
}

func (m *mockUserRepo) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return user.ErrEmailTaken
	}
	u.CreatedAt = time.Now()
	cp := *u
	m.byEmail[u.Email] = &cp
	m.byID[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type mockRevocationStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMockRevocationStore() *mockRevocationStore {
	return &mockRevocationStore{tokens: make(map[string]string)}
}

func (m *mockRevocationStore) Put(_ context.Context, ownerID, refreshToken string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[ownerID] = refreshToken
	return nil
}

func (m *mockRevocationStore) Get(_ context.Context, ownerID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[ownerID]
	if !ok {
		return "", token.ErrNotFound
	}
	return t, nil
}

func (m *mockRevocationStore) Delete(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, ownerID)
	return nil
}

type mockProductRepo struct {
	products []product.Product
	listErr  error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	return m.products, m.listErr
}

func (m *mockProductRepo) ListFeatured(_ context.Context) ([]product.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var featured []product.Product
	for _, p := range m.products {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	return featured, nil
}

func (m *mockProductRepo) ListRecommended(_ context.Context, limit int) ([]product.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if limit > len(m.products) {
		limit = len(m.products)
	}
	return m.products[:limit], nil
}

func (m *mockProductRepo) ListByCategory(_ context.Context, category string) ([]product.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var matched []product.Product
	for _, p := range m.products {
		if p.Category == category {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) (map[string]product.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	byID := make(map[string]product.Product)
	for _, p := range m.products {
		for _, id := range ids {
			if p.ID == id {
				byID[id] = p
			}
		}
	}
	return byID, nil
}

type mockOrderRepo struct {
	mu        sync.Mutex
	bySession map[string]*order.Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{bySession: make(map[string]*order.Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bySession[o.GatewaySessionID]; ok {
		return order.ErrDuplicateSession
	}
	cp := *o
	m.bySession[o.GatewaySessionID] = &cp
	return nil
}

func (m *mockOrderRepo) GetBySessionID(_ context.Context, sessionID string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.bySession[sessionID]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

type mockCouponRepo struct {
	mu      sync.Mutex
	byOwner map[string]*coupon.Coupon
}

func newMockCouponRepo() *mockCouponRepo {
	return &mockCouponRepo{byOwner: make(map[string]*coupon.Coupon)}
}

func (m *mockCouponRepo) FindActive(_ context.Context, ownerID, code string) (*coupon.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byOwner[ownerID]
	if !ok || c.Code != code || !c.Active {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockCouponRepo) Retire(_ context.Context, code, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byOwner[ownerID]; ok && c.Code == code {
		c.Active = false
	}
	return nil
}

func (m *mockCouponRepo) Replace(_ context.Context, c *coupon.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.byOwner[c.OwnerID] = &cp
	return nil
}

type mockGateway struct {
	mu          sync.Mutex
	nextID      int
	sessions    map[string]*payment.Session
	createErr   error
	retrieveErr error
}

func newMockGateway() *mockGateway {
	return &mockGateway{sessions: make(map[string]*payment.Session)}
}

func (g *mockGateway) CreateSession(_ context.Context, params payment.CreateSessionParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return "", g.createErr
	}
	g.nextID++
	id := fmt.Sprintf("cs_test_%d", g.nextID)
	var total int64
	for _, item := range params.LineItems {
		total += item.UnitAmount * int64(item.Quantity)
	}
	total -= pricing.Discount(total, params.DiscountPercent)
	g.sessions[id] = &payment.Session{
		ID:            id,
		PaymentStatus: "unpaid",
		AmountTotal:   total,
		Metadata:      params.Metadata.Encode(),
	}
	return id, nil
}

func (g *mockGateway) RetrieveSession(_ context.Context, sessionID string) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.retrieveErr != nil {
		return nil, g.retrieveErr
	}
	sess, ok := g.sessions[sessionID]
	if !ok {
		return nil, &payment.GatewayError{StatusCode: 404, Message: "no such session"}
	}
	cp := *sess
	return &cp, nil
}

func (g *mockGateway) pay(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[sessionID].PaymentStatus = payment.StatusPaid
}

// --- Test harness ---

type testEnv struct {
	server  *httptest.Server
	gateway *mockGateway
	coupons *mockCouponRepo
	orders  *mockOrderRepo
}

func newTestEnv(products ...product.Product) *testEnv {
	users := user.NewService(newMockUserRepo())
	tokens := token.NewService(token.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     30 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}, newMockRevocationStore())

	coupons := newMockCouponRepo()
	orders := newMockOrderRepo()
	gateway := newMockGateway()
	orderService := order.NewService(
		orders,
		coupon.NewLedger(coupons, coupon.DefaultIssueConfig),
		gateway,
		order.Config{
			SuccessURL:      "http://localhost/success",
			CancelURL:       "http://localhost/cancel",
			RewardThreshold: 20000,
		},
	)

	h := NewHandler(Config{
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}, users, tokens, &mockProductRepo{products: products}, orderService)

	r := chi.NewRouter()
	h.Routes(r)

	return &testEnv{
		server:  httptest.NewServer(r),
		gateway: gateway,
		coupons: coupons,
		orders:  orders,
	}
}

func (e *testEnv) Close() {
	e.server.Close()
}
