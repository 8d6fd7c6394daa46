package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"acp-checkout/internal/core/config"
	"acp-checkout/internal/core/httpclient"

	"github.com/shopspring/decimal"
)

const wcRESTPrefix = "/wp-json/wc/v3"

// APIError is a non-2xx response from the WooCommerce REST API.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Code is WooCommerce's machine readable error code, when present.
	Code string `json:"code"`
	// Message is WooCommerce's human readable message, when present.
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("woocommerce API returned status: %d", e.Status)
	}
	return fmt.Sprintf("woocommerce API returned status %d (%s): %s", e.Status, e.Code, e.Message)
}

// IsClientError reports whether the store rejected the request itself.
func (e *APIError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// WooCommerceAPI is a thin JSON client for the WooCommerce REST API v3.
type WooCommerceAPI struct {
	client  *http.Client
	baseURL string
}

// NewWooCommerceAPI creates a client authenticated with the store's consumer credentials.
func NewWooCommerceAPI(cfg config.WooCommerceConfig) *WooCommerceAPI {
	return &WooCommerceAPI{
		client:  httpclient.NewClient(cfg.Timeout(), httpclient.WithBasicAuth(cfg.ConsumerKey, cfg.ConsumerSecret)),
		baseURL: strings.TrimRight(cfg.URL, "/"),
	}
}

// HealthCheck verifies that the WooCommerce API is reachable and credentials are valid.
func (a *WooCommerceAPI) HealthCheck(ctx context.Context) error {
	if err := a.do(ctx, http.MethodGet, "/orders?per_page=1", nil, nil); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// do sends body as JSON and decodes a successful response into out.
// Non-2xx responses are returned as *APIError.
func (a *WooCommerceAPI) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+wcRESTPrefix+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		// Best effort; WooCommerce error bodies are {code, message, data}.
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(apiErr)
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseAmount reads WooCommerce's string encoded money. Empty means zero.
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d, nil
}
