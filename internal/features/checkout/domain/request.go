package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexString accepts either a JSON string or a JSON number.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(b))
	}
	*f = FlexString(n.String())
	return nil
}

// FlexNumber holds a JSON number or numeric string. Non-numeric values are
// kept so callers can decide whether to fall back to a default.
type FlexNumber struct {
	raw string
}

// NewFlexNumber builds a FlexNumber from its textual form.
func NewFlexNumber(raw string) *FlexNumber {
	return &FlexNumber{raw: raw}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.raw = strings.TrimSpace(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		f.raw = ""
		return nil
	}
	f.raw = string(b)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexNumber) MarshalJSON() ([]byte, error) {
	if d, ok := f.Decimal(); ok {
		return []byte(d.String()), nil
	}
	return json.Marshal(f.raw)
}

// Decimal returns the numeric value and whether the input was numeric.
func (f *FlexNumber) Decimal() (decimal.Decimal, bool) {
	if f == nil || f.raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(f.raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Optional distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key was present; Value is nil for null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a present Optional holding an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// LineItemRequest is a raw cart line as sent by the agent.
type LineItemRequest struct {
	ProductID FlexString  `json:"product_id"`
	Quantity  *FlexNumber `json:"quantity,omitempty"`
	UnitPrice *FlexNumber `json:"unit_price,omitempty"`
}

// Customer is the legacy create-time customer block.
type Customer struct {
	Email string `json:"email,omitempty"`
}

// CreateRequest is the body of a create call.
type CreateRequest struct {
	Items               []LineItemRequest `json:"items"`
	Currency            string            `json:"currency,omitempty"`
	Customer            *Customer         `json:"customer,omitempty"`
	Buyer               *Buyer            `json:"buyer,omitempty"`
	ReturnURL           string            `json:"return_url,omitempty"`
	FulfillmentAddress  *Address          `json:"fulfillment_address,omitempty"`
	FulfillmentOptionID string            `json:"fulfillment_option_id,omitempty"`
}

// UpdateRequest is a partial session document. Fields that are not Set keep
// their previous value.
type UpdateRequest struct {
	Items               Optional[[]LineItemRequest] `json:"items"`
	FulfillmentAddress  Optional[Address]           `json:"fulfillment_address"`
	FulfillmentOptionID Optional[string]            `json:"fulfillment_option_id"`
	Buyer               Optional[Buyer]             `json:"buyer"`
}

// PaymentData is the optional payment reference sent with a complete call.
type PaymentData struct {
	Token    string `json:"token,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// CompleteRequest is the body of a complete call.
type CompleteRequest struct {
	PaymentData *PaymentData `json:"payment_data,omitempty"`
}

// CreateInput carries a create request together with its transport metadata.
type CreateInput struct {
	Request        CreateRequest
	IdempotencyKey string
	RequestID      string
	RawPayload     json.RawMessage
}

// UpdateInput carries an update request together with its transport metadata.
type UpdateInput struct {
	SessionID  string
	Request    UpdateRequest
	RawPayload json.RawMessage
}

// OperationResult is returned by complete and cancel.
type OperationResult struct {
	OK      bool          `json:"ok"`
	OrderID string        `json:"order_id"`
	Status  SessionStatus `json:"status"`
}
