package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requiredEnv = map[string]string{
	"WC_URL":             "https://default.com",
	"WC_CONSUMER_KEY":    "ck_default",
	"WC_CONSUMER_SECRET": "cs_default",
	"ACP_API_KEY":        "agent-secret",
}

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range requiredEnv {
		t.Setenv(k, v)
	}
}

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("APP_ENV")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SERVER_PORT")
	setRequired(t)

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "USD", cfg.Checkout.DefaultCurrency)
	assert.Equal(t, 10*time.Second, cfg.WooCommerce.Timeout())
	assert.Equal(t, 10*time.Second, cfg.Checkout.LockTimeout())
	assert.Equal(t, time.Minute, cfg.Checkout.CatalogCacheTTL())
	assert.Equal(t, 25*time.Second, cfg.Checkout.OperationTimeout())
	assert.Greater(t, cfg.Checkout.LockTTL(), cfg.Checkout.OperationTimeout())

	standard, express, err := cfg.Checkout.ShippingFees()
	require.NoError(t, err)
	assert.True(t, standard.Equal(decimal.NewFromInt(5)))
	assert.Nil(t, express)
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("WC_URL", "https://example.com")
	t.Setenv("WC_CONSUMER_KEY", "ck_123")
	t.Setenv("ACP_DEFAULT_CURRENCY", "EUR")
	t.Setenv("ACP_STANDARD_SHIPPING_FEE", "4.99")
	t.Setenv("ACP_EXPRESS_SHIPPING_FEE", "12.50")
	t.Setenv("ACP_TERMS_URL", "https://shop.test/terms")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "https://example.com", cfg.WooCommerce.URL)
	assert.Equal(t, "ck_123", cfg.WooCommerce.ConsumerKey)
	assert.Equal(t, "agent-secret", cfg.Checkout.APIKey)
	assert.Equal(t, "EUR", cfg.Checkout.DefaultCurrency)
	assert.Equal(t, "https://shop.test/terms", cfg.Checkout.TermsURL)

	standard, express, err := cfg.Checkout.ShippingFees()
	require.NoError(t, err)
	assert.True(t, standard.Equal(decimal.RequireFromString("4.99")))
	require.NotNil(t, express)
	assert.True(t, express.Equal(decimal.RequireFromString("12.5")))
}

// TestLoad_File verifies that values are loaded from a .env file.
func TestLoad_File(t *testing.T) {
	content := []byte(`
APP_ENV=staging
LOG_LEVEL=warn
SERVER_PORT=7070
WC_URL=https://staging.example.com
WC_CONSUMER_KEY=ck_staging
WC_CONSUMER_SECRET=cs_staging
ACP_API_KEY=staging-key
REDIS_URL=redis://cache:6379/2
`)
	err := os.WriteFile(".env", content, 0644)
	require.NoError(t, err)
	defer os.Remove(".env")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.ServerPort)
	assert.Equal(t, "staging-key", cfg.Checkout.APIKey)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URL)
}

// TestLoad_ValidationFailure verifies that missing required fields return an error.
func TestLoad_ValidationFailure(t *testing.T) {
	os.Unsetenv("WC_URL")
	os.Unsetenv("WC_CONSUMER_KEY")
	os.Unsetenv("WC_CONSUMER_SECRET")
	os.Unsetenv("ACP_API_KEY")

	cfg, err := Load(".")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "missing required configuration")
}

// TestLoad_MissingAPIKey verifies the agent bearer key is mandatory.
func TestLoad_MissingAPIKey(t *testing.T) {
	setRequired(t)
	t.Setenv("ACP_API_KEY", "")

	_, err := Load(".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACP_API_KEY")
}

// TestLoad_InvalidFee verifies that malformed shipping fees are rejected at startup.
func TestLoad_InvalidFee(t *testing.T) {
	setRequired(t)
	t.Setenv("ACP_STANDARD_SHIPPING_FEE", "five")

	_, err := Load(".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACP_STANDARD_SHIPPING_FEE")

	t.Setenv("ACP_STANDARD_SHIPPING_FEE", "-1")
	_, err = Load(".")
	require.Error(t, err)

	t.Setenv("ACP_STANDARD_SHIPPING_FEE", "0")
	_, err = Load(".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "greater than zero")

	t.Setenv("ACP_STANDARD_SHIPPING_FEE", "4.99")
	t.Setenv("ACP_EXPRESS_SHIPPING_FEE", "0.00")
	_, err = Load(".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACP_EXPRESS_SHIPPING_FEE")
}

// TestLoad_OperationTimeout verifies the lock always outlives the operation deadline.
func TestLoad_OperationTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("WC_TIMEOUT_SECONDS", "45")
	t.Setenv("ACP_OPERATION_TIMEOUT_SECONDS", "60")

	cfg, err := Load(".")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Checkout.OperationTimeout())
	assert.Equal(t, 65*time.Second, cfg.Checkout.LockTTL())

	t.Setenv("ACP_OPERATION_TIMEOUT_SECONDS", "0")
	_, err = Load(".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACP_OPERATION_TIMEOUT_SECONDS")
}
