package service

import (
	"acp-checkout/internal/features/checkout/domain"

	"github.com/shopspring/decimal"
)

// PricingInput is everything the pricer needs.
type PricingInput struct {
	Currency string
	Items    []domain.LineItem
	// Tax is the backing order's authoritative tax figure.
	Tax decimal.Decimal
	// HasAddress reports whether a fulfillment address is present.
	HasAddress bool
	// FulfillmentFee is the fee of the selected fulfillment option.
	FulfillmentFee decimal.Decimal
}

// Price computes the session totals in the fixed order
// items_base, subtotal, tax, fulfillment, total.
func Price(in PricingInput) []domain.Total {
	places := domain.MinorUnits(in.Currency)

	itemsBase := decimal.Zero
	for _, item := range in.Items {
		itemsBase = itemsBase.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	itemsBase = itemsBase.RoundBank(places)

	subtotal := itemsBase
	tax := in.Tax.RoundBank(places)

	fulfillment := decimal.Zero
	if in.HasAddress {
		fulfillment = in.FulfillmentFee.RoundBank(places)
	}

	total := itemsBase.Add(tax).Add(fulfillment)

	return []domain.Total{
		{Type: domain.TotalTypeItemsBase, DisplayText: "Item(s) total", Amount: itemsBase},
		{Type: domain.TotalTypeSubtotal, DisplayText: "Subtotal", Amount: subtotal},
		{Type: domain.TotalTypeTax, DisplayText: "Tax", Amount: tax},
		{Type: domain.TotalTypeFulfillment, DisplayText: "Fulfillment", Amount: fulfillment},
		{Type: domain.TotalTypeTotal, DisplayText: "Total", Amount: total},
	}
}
