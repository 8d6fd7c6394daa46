package service

import (
	"fmt"

	"acp-checkout/internal/features/checkout/domain"
)

// BuildMessages derives the blocking diagnostics for a session. A missing
// address comes first, then one entry per out-of-stock line in item order.
func BuildMessages(address *domain.Address, items []domain.LineItem) []domain.Message {
	messages := make([]domain.Message, 0, 1)

	if address == nil {
		messages = append(messages, domain.Message{
			Type:    domain.MessageTypeError,
			Code:    domain.CodeMissingFulfillmentAddress,
			Path:    "$.fulfillment_address",
			Content: "A fulfillment address is required before payment.",
		})
	}

	for idx, item := range items {
		if item.InStock {
			continue
		}
		messages = append(messages, domain.Message{
			Type:    domain.MessageTypeError,
			Code:    domain.CodeOutOfStock,
			Path:    domain.LineItemPath(idx),
			Content: fmt.Sprintf("%s is out of stock for the requested quantity (%d).", item.Title, item.Quantity),
		})
	}

	return messages
}
