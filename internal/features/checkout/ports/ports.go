package ports

import (
	"context"
	"errors"

	"acp-checkout/internal/features/checkout/domain"

	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned by a ProductCatalog when the id does not resolve.
var ErrProductNotFound = errors.New("product not found")

// ErrOrderNotFound is returned by an OrderBackend when the order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// ErrCaptureRejected is returned by an OrderBackend when the payment capture is refused.
var ErrCaptureRejected = errors.New("payment capture rejected")

// ErrSessionNotFound is returned by a SessionRepository for unknown ids.
var ErrSessionNotFound = errors.New("session not found")

// Product is the catalog view needed by checkout.
type Product struct {
	ID    string
	Title string
	SKU   string
	Price decimal.Decimal
	// ManageStock is true when the catalog tracks on-hand quantity.
	ManageStock bool
	// StockQuantity is the on-hand quantity when ManageStock is true.
	StockQuantity int
	// InStock is the catalog's own stock flag, used when stock is not tracked.
	InStock bool
}

// ProductCatalog resolves products by id.
// This is a Secondary Port (Driven Port).
type ProductCatalog interface {
	// Lookup returns the product or ErrProductNotFound.
	Lookup(ctx context.Context, productID string) (*Product, error)
}

// CatalogInvalidator is implemented by catalogs that cache lookups.
type CatalogInvalidator interface {
	// Invalidate drops any cached copy of the product.
	Invalidate(ctx context.Context, productID string) error
}

// OrderLine is a line item sent to the order backend.
type OrderLine struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// ShippingLine is the chosen fulfillment method charged on the order.
type ShippingLine struct {
	MethodID    string
	MethodTitle string
	Total       decimal.Decimal
}

// OrderDraft is the full desired state of a backing order.
type OrderDraft struct {
	Currency     string
	BillingEmail string
	Buyer        *domain.Buyer
	Shipping     *domain.Address
	ShippingLine *ShippingLine
	Lines        []OrderLine
	Metadata     map[string]string
}

// BackendOrder is the authoritative order state reported by the backend.
type BackendOrder struct {
	ID          string
	Status      string
	Currency    string
	TotalTax    decimal.Decimal
	Total       decimal.Decimal
	CheckoutURL string
}

// OrderBackend persists and settles backing orders.
// This is a Secondary Port (Driven Port).
type OrderBackend interface {
	// CreateOrder creates a pending-payment order and returns its computed state.
	CreateOrder(ctx context.Context, draft OrderDraft) (*BackendOrder, error)
	// UpdateOrder replaces the order's lines, addresses and metadata and recomputes totals.
	UpdateOrder(ctx context.Context, orderID string, draft OrderDraft) (*BackendOrder, error)
	// CapturePayment marks the order as paid. transactionID may be empty.
	CapturePayment(ctx context.Context, orderID, transactionID string) (*BackendOrder, error)
	// CancelOrder voids the order.
	CancelOrder(ctx context.Context, orderID string) error
}

// SessionRepository stores checkout sessions and their idempotency index.
type SessionRepository interface {
	// Get returns the session or ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	// Save persists the session.
	Save(ctx context.Context, session *domain.Session) error
	// FindByIdempotencyKey returns the session created with key, or ErrSessionNotFound.
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Session, error)
}

// Locker provides mutual exclusion keyed by string.
type Locker interface {
	// Acquire blocks until the lock for key is held or ctx ends. The returned
	// function releases it.
	Acquire(ctx context.Context, key string) (func(), error)
}

// CheckoutService defines the primary port for checkout session operations.
type CheckoutService interface {
	// Create returns the new session, or the stored one with replayed=true
	// when the idempotency key was already used.
	Create(ctx context.Context, in domain.CreateInput) (session *domain.Session, replayed bool, err error)
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Update(ctx context.Context, in domain.UpdateInput) (*domain.Session, error)
	Complete(ctx context.Context, sessionID string, req domain.CompleteRequest) (*domain.OperationResult, error)
	Cancel(ctx context.Context, sessionID string) (*domain.OperationResult, error)
}
