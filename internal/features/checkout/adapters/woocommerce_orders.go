package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"acp-checkout/internal/core/logger"
	"acp-checkout/internal/features/checkout/domain"
	"acp-checkout/internal/features/checkout/ports"

	"go.uber.org/zap"
)

const (
	wcStatusPending   = "pending"
	wcStatusCancelled = "cancelled"
	// wcPaymentMethod identifies orders paid through agent checkout.
	wcPaymentMethod      = "acp"
	wcPaymentMethodTitle = "Agentic Checkout"
)

// WooCommerceOrders implements ports.OrderBackend using the WooCommerce orders endpoint.
type WooCommerceOrders struct {
	api *WooCommerceAPI
}

var _ ports.OrderBackend = (*WooCommerceOrders)(nil)

// NewWooCommerceOrders creates a new instance of WooCommerceOrders.
func NewWooCommerceOrders(api *WooCommerceAPI) *WooCommerceOrders {
	return &WooCommerceOrders{api: api}
}

// CreateOrder creates a pending order and returns the totals WooCommerce computed.
func (o *WooCommerceOrders) CreateOrder(ctx context.Context, draft ports.OrderDraft) (*ports.BackendOrder, error) {
	body := wcOrderInput{
		Status:             wcStatusPending,
		Currency:           draft.Currency,
		PaymentMethod:      wcPaymentMethod,
		PaymentMethodTitle: wcPaymentMethodTitle,
		Billing:            billingFrom(draft),
		Shipping:           shippingFrom(draft.Shipping),
		LineItems:          lineItemsFrom(draft.Lines),
		ShippingLines:      shippingLinesFrom(draft.ShippingLine),
		MetaData:           metaFrom(draft.Metadata),
	}

	var created wcOrder
	if err := o.api.do(ctx, http.MethodPost, "/orders", body, &created); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	logger.Get().Debug("WooCommerce order created", zap.Int64("order_id", created.ID))
	return created.toPort()
}

// UpdateOrder replaces the order's lines and shipping. WooCommerce merges line
// items by id, so every existing line is zeroed before the new ones are added.
func (o *WooCommerceOrders) UpdateOrder(ctx context.Context, orderID string, draft ports.OrderDraft) (*ports.BackendOrder, error) {
	current, err := o.get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines := make([]wcLineItemInput, 0, len(current.LineItems)+len(draft.Lines))
	for _, existing := range current.LineItems {
		lines = append(lines, wcLineItemInput{ID: existing.ID, Quantity: 0})
	}
	lines = append(lines, lineItemsFrom(draft.Lines)...)

	shipping := make([]wcShippingLineInput, 0, len(current.ShippingLines)+1)
	for _, existing := range current.ShippingLines {
		shipping = append(shipping, wcShippingLineInput{ID: existing.ID})
	}
	shipping = append(shipping, shippingLinesFrom(draft.ShippingLine)...)

	body := wcOrderInput{
		Billing:       billingFrom(draft),
		Shipping:      shippingFrom(draft.Shipping),
		LineItems:     lines,
		ShippingLines: shipping,
		MetaData:      metaFrom(draft.Metadata),
	}

	var updated wcOrder
	if err := o.api.do(ctx, http.MethodPut, orderPath(orderID), body, &updated); err != nil {
		return nil, notFoundOr(orderID, fmt.Errorf("failed to update order %s: %w", orderID, err))
	}
	return updated.toPort()
}

// CapturePayment marks the order paid, moving it to processing.
func (o *WooCommerceOrders) CapturePayment(ctx context.Context, orderID, transactionID string) (*ports.BackendOrder, error) {
	body := wcOrderInput{SetPaid: true, TransactionID: transactionID}

	var paid wcOrder
	err := o.api.do(ctx, http.MethodPut, orderPath(orderID), body, &paid)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsClientError() && apiErr.Status != http.StatusNotFound {
			return nil, fmt.Errorf("%w: order %s: %v", ports.ErrCaptureRejected, orderID, apiErr)
		}
		return nil, notFoundOr(orderID, fmt.Errorf("failed to capture payment for order %s: %w", orderID, err))
	}
	return paid.toPort()
}

// CancelOrder sets the order status to cancelled.
func (o *WooCommerceOrders) CancelOrder(ctx context.Context, orderID string) error {
	body := wcOrderInput{Status: wcStatusCancelled}
	if err := o.api.do(ctx, http.MethodPut, orderPath(orderID), body, nil); err != nil {
		return notFoundOr(orderID, fmt.Errorf("failed to cancel order %s: %w", orderID, err))
	}
	return nil
}

func (o *WooCommerceOrders) get(ctx context.Context, orderID string) (*wcOrder, error) {
	var order wcOrder
	if err := o.api.do(ctx, http.MethodGet, orderPath(orderID), nil, &order); err != nil {
		return nil, notFoundOr(orderID, fmt.Errorf("failed to fetch order %s: %w", orderID, err))
	}
	return &order, nil
}

func orderPath(orderID string) string {
	return "/orders/" + url.PathEscape(orderID)
}

func notFoundOr(orderID string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ports.ErrOrderNotFound, orderID)
	}
	return err
}

func billingFrom(draft ports.OrderDraft) *wcAddress {
	addr := &wcAddress{Email: draft.BillingEmail}
	if draft.Buyer != nil {
		addr.FirstName = draft.Buyer.FirstName
		addr.LastName = draft.Buyer.LastName
		addr.Phone = draft.Buyer.Phone
		if addr.Email == "" {
			addr.Email = draft.Buyer.Email
		}
	}
	if *addr == (wcAddress{}) {
		return nil
	}
	return addr
}

func shippingFrom(a *domain.Address) *wcAddress {
	if a == nil {
		return nil
	}
	first, last := splitName(a.Name)
	return &wcAddress{
		FirstName: first,
		LastName:  last,
		Address1:  a.LineOne,
		Address2:  a.LineTwo,
		City:      a.City,
		State:     a.State,
		Postcode:  a.PostalCode,
		Country:   a.Country,
		Phone:     a.Phone,
	}
}

// splitName puts the last word in the last name.
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	i := strings.LastIndex(name, " ")
	if i < 0 {
		return name, ""
	}
	return strings.TrimSpace(name[:i]), name[i+1:]
}

func lineItemsFrom(lines []ports.OrderLine) []wcLineItemInput {
	out := make([]wcLineItemInput, 0, len(lines))
	for _, l := range lines {
		id, err := strconv.ParseInt(l.ProductID, 10, 64)
		if err != nil {
			logger.Get().Warn("Skipping line with non-numeric product id", zap.String("product_id", l.ProductID))
			continue
		}
		total := l.Total.String()
		out = append(out, wcLineItemInput{
			ProductID: id,
			Quantity:  l.Quantity,
			Subtotal:  total,
			Total:     total,
		})
	}
	return out
}

func shippingLinesFrom(line *ports.ShippingLine) []wcShippingLineInput {
	if line == nil {
		return nil
	}
	id := line.MethodID
	return []wcShippingLineInput{{
		MethodID:    &id,
		MethodTitle: line.MethodTitle,
		Total:       line.Total.String(),
	}}
}

func metaFrom(meta map[string]string) []wcMetaData {
	if len(meta) == 0 {
		return nil
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]wcMetaData, 0, len(keys))
	for _, k := range keys {
		out = append(out, wcMetaData{Key: k, Value: meta[k]})
	}
	return out
}

// wcOrderInput is the write model for POST/PUT /orders.
type wcOrderInput struct {
	Status             string                `json:"status,omitempty"`
	Currency           string                `json:"currency,omitempty"`
	PaymentMethod      string                `json:"payment_method,omitempty"`
	PaymentMethodTitle string                `json:"payment_method_title,omitempty"`
	SetPaid            bool                  `json:"set_paid,omitempty"`
	TransactionID      string                `json:"transaction_id,omitempty"`
	Billing            *wcAddress            `json:"billing,omitempty"`
	Shipping           *wcAddress            `json:"shipping,omitempty"`
	LineItems          []wcLineItemInput     `json:"line_items,omitempty"`
	ShippingLines      []wcShippingLineInput `json:"shipping_lines,omitempty"`
	MetaData           []wcMetaData          `json:"meta_data,omitempty"`
}

// wcAddress holds billing or shipping address details.
type wcAddress struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Address1  string `json:"address_1,omitempty"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// wcLineItemInput adds a product line, or removes line ID when Quantity is 0.
type wcLineItemInput struct {
	ID        int64  `json:"id,omitempty"`
	ProductID int64  `json:"product_id,omitempty"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal,omitempty"`
	Total     string `json:"total,omitempty"`
}

// wcShippingLineInput adds a shipping line, or removes line ID when MethodID is null.
type wcShippingLineInput struct {
	ID          int64   `json:"id,omitempty"`
	MethodID    *string `json:"method_id"`
	MethodTitle string  `json:"method_title,omitempty"`
	Total       string  `json:"total,omitempty"`
}

// wcMetaData represents a key-value pair in WooCommerce metadata.
type wcMetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// wcOrder is the read model returned by the orders endpoint.
type wcOrder struct {
	ID            int64       `json:"id"`
	Status        string      `json:"status"`
	Currency      string      `json:"currency"`
	TotalTax      string      `json:"total_tax"`
	Total         string      `json:"total"`
	PaymentURL    string      `json:"payment_url"`
	LineItems     []wcLineRef `json:"line_items"`
	ShippingLines []wcLineRef `json:"shipping_lines"`
}

// wcLineRef identifies an existing order line.
type wcLineRef struct {
	ID int64 `json:"id"`
}

func (o wcOrder) toPort() (*ports.BackendOrder, error) {
	tax, err := parseAmount(o.TotalTax)
	if err != nil {
		return nil, fmt.Errorf("order %d total_tax: %w", o.ID, err)
	}
	total, err := parseAmount(o.Total)
	if err != nil {
		return nil, fmt.Errorf("order %d total: %w", o.ID, err)
	}
	return &ports.BackendOrder{
		ID:          strconv.FormatInt(o.ID, 10),
		Status:      o.Status,
		Currency:    o.Currency,
		TotalTax:    tax,
		Total:       total,
		CheckoutURL: o.PaymentURL,
	}, nil
}
