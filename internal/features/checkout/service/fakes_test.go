package service

import (
	"context"
	"encoding/json"
	"sync"

	"acp-checkout/internal/features/checkout/domain"
	"acp-checkout/internal/features/checkout/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// fakeCatalog is an in-memory ProductCatalog.
type fakeCatalog struct {
	mu          sync.Mutex
	products    map[string]*ports.Product
	err         error
	lookups     int
	invalidated []string
}

func newFakeCatalog(products ...*ports.Product) *fakeCatalog {
	c := &fakeCatalog{products: make(map[string]*ports.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// Lookup implements ports.ProductCatalog.
func (c *fakeCatalog) Lookup(ctx context.Context, productID string) (*ports.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups++
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[productID]
	if !ok {
		return nil, ports.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

// Invalidate implements ports.CatalogInvalidator.
func (c *fakeCatalog) Invalidate(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, productID)
	return nil
}

func (c *fakeCatalog) setPrice(productID, price string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[productID].Price = decimal.RequireFromString(price)
}

func (c *fakeCatalog) invalidations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}

// MockOrderBackend is a mock implementation of ports.OrderBackend.
type MockOrderBackend struct {
	mock.Mock
}

func (m *MockOrderBackend) CreateOrder(ctx context.Context, draft ports.OrderDraft) (*ports.BackendOrder, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.BackendOrder), args.Error(1)
}

func (m *MockOrderBackend) UpdateOrder(ctx context.Context, orderID string, draft ports.OrderDraft) (*ports.BackendOrder, error) {
	args := m.Called(ctx, orderID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.BackendOrder), args.Error(1)
}

func (m *MockOrderBackend) CapturePayment(ctx context.Context, orderID, transactionID string) (*ports.BackendOrder, error) {
	args := m.Called(ctx, orderID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.BackendOrder), args.Error(1)
}

func (m *MockOrderBackend) CancelOrder(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

// memoryRepository is an in-memory SessionRepository storing JSON snapshots
// so callers never share memory with the store.
type memoryRepository struct {
	mu       sync.Mutex
	sessions map[string][]byte
	meta     map[string]domain.Session
	byKey    map[string]string
	saves    int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		sessions: make(map[string][]byte),
		meta:     make(map[string]domain.Session),
		byKey:    make(map[string]string),
	}
}

func (r *memoryRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.sessions[sessionID]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	hidden := r.meta[sessionID]
	s.Tax = hidden.Tax
	s.Version = hidden.Version
	s.RawPayload = hidden.RawPayload
	for i := range s.LineItems {
		if i < len(hidden.LineItems) {
			s.LineItems[i].RequestPriced = hidden.LineItems[i].RequestPriced
		}
	}
	return &s, nil
}

func (r *memoryRepository) Save(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.sessions[s.ID] = data
	r.meta[s.ID] = domain.Session{
		Tax:        s.Tax,
		Version:    s.Version,
		RawPayload: s.RawPayload,
		LineItems:  append([]domain.LineItem(nil), s.LineItems...),
	}
	if s.IdempotencyKey != "" {
		r.byKey[s.IdempotencyKey] = s.ID
	}
	r.saves++
	return nil
}

func (r *memoryRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Session, error) {
	r.mu.Lock()
	id, ok := r.byKey[key]
	r.mu.Unlock()
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return r.Get(ctx, id)
}

// keyedLocker serializes callers per key inside one process.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *keyedLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock, nil
}

func product(id, title string, price string, stock int) *ports.Product {
	return &ports.Product{
		ID:            id,
		Title:         title,
		SKU:           "SKU-" + id,
		Price:         decimal.RequireFromString(price),
		ManageStock:   true,
		StockQuantity: stock,
		InStock:       stock > 0,
	}
}

func item(productID string, qty, price string) domain.LineItemRequest {
	req := domain.LineItemRequest{ProductID: domain.FlexString(productID)}
	if qty != "" {
		req.Quantity = domain.NewFlexNumber(qty)
	}
	if price != "" {
		req.UnitPrice = domain.NewFlexNumber(price)
	}
	return req
}

var _ ports.CatalogInvalidator = (*fakeCatalog)(nil)
var _ ports.SessionRepository = (*memoryRepository)(nil)
var _ ports.Locker = (*keyedLocker)(nil)
var _ ports.OrderBackend = (*MockOrderBackend)(nil)
