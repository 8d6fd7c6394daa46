package service

import (
	"context"
	"errors"
	"testing"

	"acp-checkout/internal/features/checkout/domain"
	"acp-checkout/internal/features/checkout/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemValidator_Validate(t *testing.T) {
	catalog := newFakeCatalog(
		product("13", "Hoodie", "90", 10),
		product("14", "Cap", "25.50", 1),
		&ports.Product{ID: "15", Title: "E-book", Price: decimal.RequireFromString("9.99"), InStock: true},
	)
	v := NewItemValidator(catalog, 2)
	ctx := context.Background()

	t.Run("ResolvesInInputOrder", func(t *testing.T) {
		lines, err := v.Validate(ctx, []domain.LineItemRequest{
			item("15", "", ""),
			item("13", "2", "85"),
			item("14", "1", ""),
		})
		require.NoError(t, err)
		require.Len(t, lines, 3)

		assert.Equal(t, "15", lines[0].ProductID)
		assert.Equal(t, 1, lines[0].Quantity)
		assert.True(t, lines[0].InStock)

		assert.Equal(t, "13", lines[1].ProductID)
		assert.True(t, lines[1].UnitPrice.Equal(decimal.NewFromInt(85)))
		assert.True(t, lines[1].BaseAmount.Equal(decimal.NewFromInt(170)))
		assert.Equal(t, "SKU-13", lines[1].SKU)
		assert.Equal(t, "Hoodie", lines[1].Title)

		assert.True(t, lines[2].UnitPrice.Equal(decimal.RequireFromString("25.50")))
	})

	t.Run("ClampsQuantity", func(t *testing.T) {
		lines, err := v.Validate(ctx, []domain.LineItemRequest{
			item("13", "0", ""),
			item("13", "-3", ""),
			item("13", "2.9", ""),
			item("13", "lots", ""),
			item("15", "18446744073709551621", ""),
			item("15", "1e30", ""),
			item("15", "2000000", ""),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, lines[0].Quantity)
		assert.Equal(t, 1, lines[1].Quantity)
		assert.Equal(t, 2, lines[2].Quantity)
		assert.Equal(t, 1, lines[3].Quantity)
		assert.Equal(t, maxQuantity, lines[4].Quantity)
		assert.Equal(t, maxQuantity, lines[5].Quantity)
		assert.Equal(t, maxQuantity, lines[6].Quantity)
	})

	t.Run("FallsBackToCatalogPrice", func(t *testing.T) {
		lines, err := v.Validate(ctx, []domain.LineItemRequest{
			item("13", "1", "abc"),
			item("13", "1", "-5"),
		})
		require.NoError(t, err)
		assert.True(t, lines[0].UnitPrice.Equal(decimal.NewFromInt(90)))
		assert.True(t, lines[1].UnitPrice.Equal(decimal.NewFromInt(90)))
		assert.False(t, lines[0].RequestPriced)
		assert.False(t, lines[1].RequestPriced)
	})

	t.Run("MarksRequestPrice", func(t *testing.T) {
		lines, err := v.Validate(ctx, []domain.LineItemRequest{item("13", "1", "0")})
		require.NoError(t, err)
		assert.True(t, lines[0].UnitPrice.IsZero())
		assert.True(t, lines[0].RequestPriced)
	})

	t.Run("FlagsStockShortfall", func(t *testing.T) {
		before := len(catalog.invalidations())
		lines, err := v.Validate(ctx, []domain.LineItemRequest{item("13", "1", ""), item("14", "2", "")})
		require.NoError(t, err)
		assert.True(t, lines[0].InStock)
		assert.False(t, lines[1].InStock)
		assert.Equal(t, []string{"14"}, catalog.invalidations()[before:])
	})

	t.Run("MissingItems", func(t *testing.T) {
		_, err := v.Validate(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrMissingItems)
	})

	t.Run("InvalidItemID", func(t *testing.T) {
		_, err := v.Validate(ctx, []domain.LineItemRequest{item("13", "1", ""), item("abc", "1", "")})
		assert.ErrorIs(t, err, domain.ErrInvalidItemID)
		assert.Contains(t, err.Error(), "items[1]")
	})

	t.Run("ProductNotFound", func(t *testing.T) {
		_, err := v.Validate(ctx, []domain.LineItemRequest{item("999", "1", "")})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("FirstFailingItemWins", func(t *testing.T) {
		_, err := v.Validate(ctx, []domain.LineItemRequest{item("999", "1", ""), item("", "1", "")})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestItemValidator_CatalogFailure(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.err = errors.New("connection refused")
	v := NewItemValidator(catalog, 0)

	_, err := v.Validate(context.Background(), []domain.LineItemRequest{item("13", "1", "")})
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestItemValidator_Forget(t *testing.T) {
	catalog := newFakeCatalog(product("13", "Hoodie", "90", 10))
	v := NewItemValidator(catalog, 1)

	v.Forget(context.Background(), []domain.LineItem{{ProductID: "13"}, {ProductID: "14"}})
	assert.Equal(t, []string{"13", "14"}, catalog.invalidations())

	// Catalogs without a cache are left alone.
	plain := NewItemValidator(struct{ ports.ProductCatalog }{catalog}, 1)
	plain.Forget(context.Background(), []domain.LineItem{{ProductID: "15"}})
	assert.Len(t, catalog.invalidations(), 2)
}
