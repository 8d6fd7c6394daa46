package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TotalType categorizes a pricing component.
type TotalType string

const (
	TotalTypeItemsBase   TotalType = "items_base"
	TotalTypeSubtotal    TotalType = "subtotal"
	TotalTypeTax         TotalType = "tax"
	TotalTypeFulfillment TotalType = "fulfillment"
	TotalTypeDiscount    TotalType = "discount"
	TotalTypeTotal       TotalType = "total"
)

// Total is a single labeled amount in the session totals.
type Total struct {
	Type        TotalType       `json:"type"`
	DisplayText string          `json:"display_text"`
	Amount      decimal.Decimal `json:"amount"`
}

// MessageType is the severity of a diagnostic message.
type MessageType string

const (
	// MessageTypeError blocks completion.
	MessageTypeError MessageType = "error"
	// MessageTypeInfo is advisory only.
	MessageTypeInfo MessageType = "info"
)

// Message codes emitted by the checkout core.
const (
	CodeMissingFulfillmentAddress = "missing_fulfillment_address"
	CodeOutOfStock                = "out_of_stock"
	CodeInvalidFulfillmentOption  = "invalid_fulfillment_option"
	CodeIdempotentReplay          = "idempotent_replay"
)

// Message is a machine-readable diagnostic attached to a session.
type Message struct {
	Type    MessageType `json:"type"`
	Code    string      `json:"code"`
	Path    string      `json:"path,omitempty"`
	Content string      `json:"content"`
}

// LineItemPath returns the JSON path of the line item at index.
func LineItemPath(index int) string {
	return fmt.Sprintf("$.line_items[%d]", index)
}

// zeroDecimalCurrencies lists ISO 4217 currencies without a minor unit.
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "ISK": true,
	"JPY": true, "KMF": true, "KRW": true, "PYG": true, "RWF": true,
	"UGX": true, "VND": true, "VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// MinorUnits returns the number of decimal places used by currency.
func MinorUnits(currency string) int32 {
	if zeroDecimalCurrencies[currency] {
		return 0
	}
	return 2
}
