package adapters

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"acp-checkout/internal/core/config"
	"acp-checkout/internal/features/checkout/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *WooCommerceAPI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewWooCommerceAPI(config.WooCommerceConfig{
		URL:            server.URL + "/",
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		TimeoutSeconds: 5,
	})
}

// TestWooCommerceCatalog_Lookup_Success verifies product fetching and mapping.
func TestWooCommerceCatalog_Lookup_Success(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products/42", r.URL.Path)

		expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("ck_test:cs_test"))
		assert.Equal(t, expectedAuth, r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"id": 42,
			"name": "Trail Shoe",
			"sku": "TS-42",
			"status": "publish",
			"price": "89.90",
			"purchasable": true,
			"manage_stock": true,
			"stock_quantity": 3,
			"stock_status": "instock",
			"backorders": "no"
		}`))
	})

	product, err := NewWooCommerceCatalog(api).Lookup(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, "42", product.ID)
	assert.Equal(t, "Trail Shoe", product.Title)
	assert.Equal(t, "TS-42", product.SKU)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("89.9")))
	assert.True(t, product.ManageStock)
	assert.Equal(t, 3, product.StockQuantity)
	assert.True(t, product.InStock)
}

// TestWooCommerceCatalog_Lookup_StockVariants verifies stock flag mapping.
func TestWooCommerceCatalog_Lookup_StockVariants(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		manageStock bool
		inStock     bool
	}{
		{
			name:    "untracked out of stock",
			body:    `{"id": 1, "price": "1", "manage_stock": false, "stock_quantity": null, "stock_status": "outofstock"}`,
			inStock: false,
		},
		{
			name:    "backorders allowed",
			body:    `{"id": 1, "price": "1", "manage_stock": true, "stock_quantity": 0, "stock_status": "onbackorder", "backorders": "notify"}`,
			inStock: true,
		},
		{
			name:        "tracked empty",
			body:        `{"id": 1, "price": "", "manage_stock": true, "stock_quantity": 0, "stock_status": "outofstock", "backorders": "no"}`,
			manageStock: true,
			inStock:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			product, err := NewWooCommerceCatalog(api).Lookup(context.Background(), "1")
			require.NoError(t, err)
			assert.Equal(t, tt.manageStock, product.ManageStock)
			assert.Equal(t, tt.inStock, product.InStock)
		})
	}
}

// TestWooCommerceCatalog_Lookup_NotFound verifies 404 and unpublished products map to ErrProductNotFound.
func TestWooCommerceCatalog_Lookup_NotFound(t *testing.T) {
	t.Run("404", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"code":"woocommerce_rest_product_invalid_id","message":"Invalid ID.","data":{"status":404}}`))
		})

		_, err := NewWooCommerceCatalog(api).Lookup(context.Background(), "999")
		assert.ErrorIs(t, err, ports.ErrProductNotFound)
	})

	t.Run("draft", func(t *testing.T) {
		api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": 5, "status": "draft", "price": "1"}`))
		})

		_, err := NewWooCommerceCatalog(api).Lookup(context.Background(), "5")
		assert.ErrorIs(t, err, ports.ErrProductNotFound)
	})
}

// TestWooCommerceCatalog_Lookup_ServerError verifies upstream failures are not reported as not found.
func TestWooCommerceCatalog_Lookup_ServerError(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := NewWooCommerceCatalog(api).Lookup(context.Background(), "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrProductNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

// TestWooCommerceAPI_HealthCheck verifies the store health check.
func TestWooCommerceAPI_HealthCheck(t *testing.T) {
	ok := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/orders", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		w.Write([]byte(`[]`))
	})
	assert.NoError(t, ok.HealthCheck(context.Background()))

	denied := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"woocommerce_rest_cannot_view","message":"Sorry, you cannot list resources."}`))
	})
	err := denied.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "woocommerce_rest_cannot_view")
}
