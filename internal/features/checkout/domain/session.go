package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus represents the lifecycle state of a checkout session.
type SessionStatus string

const (
	// StatusNotReadyForPayment indicates required data is missing or a blocking message exists.
	StatusNotReadyForPayment SessionStatus = "not_ready_for_payment"
	// StatusReadyForPayment indicates the session can be completed.
	StatusReadyForPayment SessionStatus = "ready_for_payment"
	// StatusProcessingForPayment indicates a payment capture is in flight.
	StatusProcessingForPayment SessionStatus = "processing_for_payment"
	// StatusCompleted indicates payment was captured.
	StatusCompleted SessionStatus = "completed"
	// StatusCanceled indicates the session and its backing order were canceled.
	StatusCanceled SessionStatus = "canceled"
)

// IsTerminal returns true if no further transitions are allowed.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// IsMutable returns true if the session accepts updates.
func (s SessionStatus) IsMutable() bool {
	return s == StatusNotReadyForPayment || s == StatusReadyForPayment
}

const sessionIDPrefix = "checkout_session_"

// SessionID derives the stable session identifier from the backing order id.
func SessionID(orderID string) string {
	return sessionIDPrefix + orderID
}

// OrderIDFromSessionID extracts the backing order id from a session id.
func OrderIDFromSessionID(sessionID string) (string, bool) {
	orderID, ok := strings.CutPrefix(sessionID, sessionIDPrefix)
	if !ok || orderID == "" {
		return "", false
	}
	return orderID, true
}

// Address is the fulfillment address supplied by the agent. The core only
// cares whether one is present.
type Address struct {
	Name       string `json:"name,omitempty"`
	LineOne    string `json:"line_one,omitempty"`
	LineTwo    string `json:"line_two,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Buyer holds the customer's contact details.
type Buyer struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// LineItem is a validated cart line with its computed amount.
type LineItem struct {
	// ProductID is the catalog identifier.
	ProductID string `json:"product_id"`
	// Quantity is always at least 1.
	Quantity int `json:"quantity"`
	// UnitPrice is the resolved price per unit, never negative.
	UnitPrice decimal.Decimal `json:"unit_price"`
	// SKU is the catalog stock keeping unit.
	SKU string `json:"sku"`
	// Title is the product display name.
	Title string `json:"title"`
	// InStock is false when the requested quantity exceeds tracked stock.
	InStock bool `json:"in_stock"`
	// BaseAmount is UnitPrice × Quantity.
	BaseAmount decimal.Decimal `json:"base_amount"`

	// RequestPriced is true when UnitPrice came from the request rather than
	// the catalog. Catalog priced lines follow price changes on re-validation.
	RequestPriced bool `json:"-"`
}

// FulfillmentOption is a selectable shipping method.
type FulfillmentOption struct {
	ID    string          `json:"id"`
	Type  string          `json:"type"`
	Title string          `json:"title"`
	Fee   decimal.Decimal `json:"subtotal"`
}

// LinkType categorizes merchant policy links.
type LinkType string

const (
	LinkTypeTermsOfUse    LinkType = "terms_of_use"
	LinkTypePrivacyPolicy LinkType = "privacy_policy"
)

// Link is a merchant policy link shown to the buyer.
type Link struct {
	Type LinkType `json:"type"`
	URL  string   `json:"url"`
}

// Session is the checkout session returned to the agent and persisted between calls.
type Session struct {
	ID                  string              `json:"id"`
	Status              SessionStatus       `json:"status"`
	Currency            string              `json:"currency"`
	LineItems           []LineItem          `json:"line_items"`
	FulfillmentAddress  *Address            `json:"fulfillment_address"`
	FulfillmentOptions  []FulfillmentOption `json:"fulfillment_options,omitempty"`
	FulfillmentOptionID string              `json:"fulfillment_option_id,omitempty"`
	Buyer               *Buyer              `json:"buyer,omitempty"`
	Totals              []Total             `json:"totals"`
	Messages            []Message           `json:"messages"`
	Links               []Link              `json:"links,omitempty"`
	CheckoutURL         string              `json:"checkout_url,omitempty"`
	ReturnURL           string              `json:"return_url,omitempty"`

	// OrderID is the backing order exclusively owned by this session.
	OrderID string `json:"order_id"`
	// IdempotencyKey is the client key the session was created with, if any.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	// RawPayload is the last request body received for this session.
	RawPayload json.RawMessage `json:"-"`
	// Tax is the authoritative tax figure reported by the backing order.
	Tax decimal.Decimal `json:"-"`
	// Version increments on every persisted change.
	Version   int       `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasBlockingMessages reports whether any error-severity message exists.
func (s *Session) HasBlockingMessages() bool {
	for _, m := range s.Messages {
		if m.Type == MessageTypeError {
			return true
		}
	}
	return false
}

// ComputeStatus derives the pre-payment status from the session state.
func (s *Session) ComputeStatus() SessionStatus {
	if s.FulfillmentAddress != nil && !s.HasBlockingMessages() {
		return StatusReadyForPayment
	}
	return StatusNotReadyForPayment
}

// Total returns the amount of the given total type, or zero if absent.
func (s *Session) Total(t TotalType) decimal.Decimal {
	for _, tt := range s.Totals {
		if tt.Type == t {
			return tt.Amount
		}
	}
	return decimal.Zero
}

// ParseProductID returns the numeric product id, or an error if ref is not a positive integer.
func ParseProductID(ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("empty product id")
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("product id %q is not numeric", ref)
	}
	if id <= 0 {
		return 0, fmt.Errorf("product id %q is not positive", ref)
	}
	return id, nil
}
