package service

import (
	"context"
	"errors"
	"fmt"

	"acp-checkout/internal/core/logger"
	"acp-checkout/internal/features/checkout/domain"
	"acp-checkout/internal/features/checkout/ports"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ItemValidator resolves raw cart lines against the product catalog.
//
// Quantities below 1 are clamped to 1 and stock shortfalls are reported through
// LineItem.InStock instead of failing validation.
type ItemValidator struct {
	catalog       ports.ProductCatalog
	maxConcurrent int
}

// NewItemValidator creates an ItemValidator that performs at most
// maxConcurrent catalog lookups at once.
func NewItemValidator(catalog ports.ProductCatalog, maxConcurrent int) *ItemValidator {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &ItemValidator{
		catalog:       catalog,
		maxConcurrent: maxConcurrent,
	}
}

// Validate returns the validated lines in input order. The reported error is
// the one belonging to the first failing item.
func (v *ItemValidator) Validate(ctx context.Context, items []domain.LineItemRequest) ([]domain.LineItem, error) {
	if len(items) == 0 {
		return nil, domain.ErrMissingItems
	}

	idErrs := make([]error, len(items))
	products := make([]*ports.Product, len(items))
	lookupErrs := make([]error, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.maxConcurrent)

	for idx := range items {
		ref := string(items[idx].ProductID)
		if _, err := domain.ParseProductID(ref); err != nil {
			idErrs[idx] = err
			continue
		}
		g.Go(func() error {
			p, err := v.catalog.Lookup(gctx, ref)
			if err != nil {
				lookupErrs[idx] = err
				return nil
			}
			products[idx] = p
			return nil
		})
	}
	_ = g.Wait()

	lines := make([]domain.LineItem, len(items))
	for idx, item := range items {
		if err := idErrs[idx]; err != nil {
			return nil, domain.ErrInvalidItemID.WithMessage(fmt.Sprintf("items[%d]: %v", idx, err))
		}
		if err := lookupErrs[idx]; err != nil {
			if errors.Is(err, ports.ErrProductNotFound) {
				return nil, domain.ErrProductNotFound.WithMessage(fmt.Sprintf("items[%d]: product %s not found", idx, item.ProductID))
			}
			return nil, domain.ErrBackendUnavailable.Wrap(fmt.Errorf("catalog lookup for product %s: %w", item.ProductID, err))
		}
		lines[idx] = buildLine(item, products[idx])
	}

	// A cached shortfall would hide a restock until the entry expires.
	var short []domain.LineItem
	for _, line := range lines {
		if !line.InStock {
			short = append(short, line)
		}
	}
	v.Forget(ctx, short)

	return lines, nil
}

// Forget drops cached catalog entries for the given lines so the next lookup
// reads live price and stock. It is a no-op for uncached catalogs.
func (v *ItemValidator) Forget(ctx context.Context, lines []domain.LineItem) {
	inv, ok := v.catalog.(ports.CatalogInvalidator)
	if !ok {
		return
	}
	for _, line := range lines {
		if err := inv.Invalidate(ctx, line.ProductID); err != nil {
			logger.Get().Warn("Failed to invalidate cached product",
				zap.String("product_id", line.ProductID),
				zap.Error(err),
			)
		}
	}
}

func buildLine(item domain.LineItemRequest, p *ports.Product) domain.LineItem {
	qty := normalizeQuantity(item.Quantity)

	price := p.Price
	requestPriced := false
	if requested, ok := item.UnitPrice.Decimal(); ok && !requested.IsNegative() {
		price = requested
		requestPriced = true
	}

	inStock := p.InStock
	if p.ManageStock {
		inStock = qty <= p.StockQuantity
	}

	return domain.LineItem{
		ProductID:  p.ID,
		Quantity:   qty,
		UnitPrice:  price,
		SKU:        p.SKU,
		Title:      p.Title,
		InStock:    inStock,
		BaseAmount: price.Mul(decimal.NewFromInt(int64(qty))),

		RequestPriced: requestPriced,
	}
}

// normalizeQuantity defaults to 1, truncates fractions and clamps to [1, maxQuantity].
func normalizeQuantity(q *domain.FlexNumber) int {
	d, ok := q.Decimal()
	if !ok {
		return 1
	}
	// IntPart wraps values outside int64, so bound before converting.
	if d.GreaterThanOrEqual(maxQuantityDecimal) {
		return maxQuantity
	}
	n := d.IntPart()
	if n < 1 {
		return 1
	}
	return int(n)
}

const maxQuantity = 1 << 20

var maxQuantityDecimal = decimal.NewFromInt(maxQuantity)
