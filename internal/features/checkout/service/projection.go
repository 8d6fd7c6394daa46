package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"acp-checkout/internal/features/checkout/domain"
	"acp-checkout/internal/features/checkout/ports"

	"github.com/shopspring/decimal"
)

// Order metadata keys written on the backing order.
const (
	MetaIdempotencyKey    = "_acp_idempotency_key"
	MetaRequestID         = "_acp_request_id"
	MetaRawPayload        = "_acp_request_payload"
	MetaFulfillmentOption = "_acp_fulfillment_option"
	MetaSource            = "_acp_source"
)

// OrderProjection translates sessions into OrderBackend calls and backend
// orders back into session fields. It is the only component that talks to
// the backend.
type OrderProjection struct {
	backend ports.OrderBackend
	timeout time.Duration
}

// NewOrderProjection creates an OrderProjection whose backend calls are bounded by timeout.
func NewOrderProjection(backend ports.OrderBackend, timeout time.Duration) *OrderProjection {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OrderProjection{
		backend: backend,
		timeout: timeout,
	}
}

// Materialize creates the backing order for a new session and copies the
// backend's identifiers and tax onto it.
func (p *OrderProjection) Materialize(ctx context.Context, s *domain.Session, fee decimal.Decimal, meta map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	order, err := p.backend.CreateOrder(ctx, p.draft(s, fee, meta))
	if err != nil {
		return p.mapError("create order", err)
	}

	s.OrderID = order.ID
	s.ID = domain.SessionID(order.ID)
	apply(s, order)
	return nil
}

// Sync pushes the session's current state to its backing order.
func (p *OrderProjection) Sync(ctx context.Context, s *domain.Session, fee decimal.Decimal, meta map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	order, err := p.backend.UpdateOrder(ctx, s.OrderID, p.draft(s, fee, meta))
	if err != nil {
		return p.mapError("update order", err)
	}

	apply(s, order)
	return nil
}

// Capture finalizes payment on the backing order.
func (p *OrderProjection) Capture(ctx context.Context, orderID, transactionID string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.backend.CapturePayment(ctx, orderID, transactionID); err != nil {
		return p.mapError("capture payment", err)
	}
	return nil
}

// Cancel voids the backing order.
func (p *OrderProjection) Cancel(ctx context.Context, orderID string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.backend.CancelOrder(ctx, orderID); err != nil {
		return p.mapError("cancel order", err)
	}
	return nil
}

func (p *OrderProjection) draft(s *domain.Session, fee decimal.Decimal, meta map[string]string) ports.OrderDraft {
	lines := make([]ports.OrderLine, 0, len(s.LineItems))
	for _, item := range s.LineItems {
		lines = append(lines, ports.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.BaseAmount.RoundBank(domain.MinorUnits(s.Currency)),
		})
	}

	draft := ports.OrderDraft{
		Currency: s.Currency,
		Buyer:    s.Buyer,
		Shipping: s.FulfillmentAddress,
		Lines:    lines,
		Metadata: meta,
	}
	if s.Buyer != nil {
		draft.BillingEmail = s.Buyer.Email
	}

	if s.FulfillmentAddress != nil {
		for _, opt := range s.FulfillmentOptions {
			if opt.ID == s.FulfillmentOptionID {
				draft.ShippingLine = &ports.ShippingLine{
					MethodID:    opt.ID,
					MethodTitle: opt.Title,
					Total:       fee,
				}
				break
			}
		}
	}

	return draft
}

func apply(s *domain.Session, order *ports.BackendOrder) {
	s.Tax = order.TotalTax
	if order.CheckoutURL != "" {
		s.CheckoutURL = order.CheckoutURL
	}
}

func (p *OrderProjection) mapError(op string, err error) error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return err
	}
	if errors.Is(err, ports.ErrCaptureRejected) {
		return domain.ErrPaymentCaptureFailed.Wrap(fmt.Errorf("%s: %w", op, err))
	}
	if errors.Is(err, ports.ErrOrderNotFound) {
		return domain.ErrInvalidSessionState.
			WithMessage("the backing order no longer exists").
			Wrap(fmt.Errorf("%s: %w", op, err))
	}
	return domain.ErrBackendUnavailable.Wrap(fmt.Errorf("%s: %w", op, err))
}
