package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"acp-checkout/internal/features/checkout/ports"
)

// WooCommerceCatalog implements ports.ProductCatalog using the WooCommerce products endpoint.
type WooCommerceCatalog struct {
	api *WooCommerceAPI
}

var _ ports.ProductCatalog = (*WooCommerceCatalog)(nil)

// NewWooCommerceCatalog creates a new instance of WooCommerceCatalog.
func NewWooCommerceCatalog(api *WooCommerceAPI) *WooCommerceCatalog {
	return &WooCommerceCatalog{api: api}
}

// Lookup fetches a product and maps it to the checkout view.
// Products that are not published or not purchasable are reported as not found.
func (c *WooCommerceCatalog) Lookup(ctx context.Context, productID string) (*ports.Product, error) {
	var p wcProduct
	err := c.api.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), nil, &p)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusGone) {
			return nil, fmt.Errorf("%w: %s", ports.ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("failed to fetch product %s: %w", productID, err)
	}

	if (p.Status != "" && p.Status != "publish") || (p.Purchasable != nil && !*p.Purchasable) {
		return nil, fmt.Errorf("%w: %s is not purchasable", ports.ErrProductNotFound, productID)
	}

	return p.toPort()
}

// wcProduct represents the subset of the WooCommerce product resource used by checkout.
type wcProduct struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	Status        string `json:"status"`
	Price         string `json:"price"`
	Purchasable   *bool  `json:"purchasable"`
	ManageStock   bool   `json:"manage_stock"`
	StockQuantity *int   `json:"stock_quantity"`
	// StockStatus is one of instock, outofstock or onbackorder.
	StockStatus string `json:"stock_status"`
	// Backorders is one of no, notify or yes.
	Backorders string `json:"backorders"`
}

func (p wcProduct) toPort() (*ports.Product, error) {
	price, err := parseAmount(p.Price)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", p.ID, err)
	}

	product := &ports.Product{
		ID:          strconv.FormatInt(p.ID, 10),
		Title:       p.Name,
		SKU:         p.SKU,
		Price:       price,
		ManageStock: p.ManageStock && p.StockQuantity != nil && !p.allowsBackorders(),
		InStock:     p.StockStatus != "outofstock" || p.allowsBackorders(),
	}
	if product.ManageStock {
		product.StockQuantity = *p.StockQuantity
	}
	return product, nil
}

func (p wcProduct) allowsBackorders() bool {
	return p.Backorders == "yes" || p.Backorders == "notify"
}
