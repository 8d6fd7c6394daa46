package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Redis holds the session store connection.
	Redis RedisConfig `mapstructure:",squash"`

	// WooCommerce holds the WooCommerce API configuration.
	WooCommerce WooCommerceConfig `mapstructure:",squash"`

	// Checkout holds the agentic checkout settings.
	Checkout CheckoutConfig `mapstructure:",squash"`
}

// WooCommerceConfig holds the credentials for the WooCommerce Store.
type WooCommerceConfig struct {
	// URL is the base URL of the WooCommerce store.
	URL string `mapstructure:"WC_URL" required:"true"`
	// ConsumerKey is the public key for API access.
	ConsumerKey string `mapstructure:"WC_CONSUMER_KEY" required:"true"`
	// ConsumerSecret is the secret key for API access.
	ConsumerSecret string `mapstructure:"WC_CONSUMER_SECRET" required:"true"`
	// TimeoutSeconds bounds every call to the store.
	TimeoutSeconds int `mapstructure:"WC_TIMEOUT_SECONDS" default:"10"`
}

// Timeout returns the store call timeout.
func (c WooCommerceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RedisConfig holds the Redis connection string.
type RedisConfig struct {
	// URL is in the format redis://[:password@]host[:port][/database].
	URL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
}

// CheckoutConfig holds the checkout API settings.
type CheckoutConfig struct {
	// APIKey is the bearer token agents must present.
	APIKey string `mapstructure:"ACP_API_KEY" required:"true"`
	// DefaultCurrency is used when a create request omits currency.
	DefaultCurrency string `mapstructure:"ACP_DEFAULT_CURRENCY" default:"USD"`
	// StandardShippingFee is a positive decimal string.
	StandardShippingFee string `mapstructure:"ACP_STANDARD_SHIPPING_FEE" default:"5.00"`
	// ExpressShippingFee is a positive decimal string. Empty disables the express option.
	ExpressShippingFee string `mapstructure:"ACP_EXPRESS_SHIPPING_FEE"`
	// LockTimeoutSeconds bounds how long a request waits for a session lock.
	LockTimeoutSeconds int `mapstructure:"ACP_LOCK_TIMEOUT_SECONDS" default:"10"`
	// OperationTimeoutSeconds bounds the work done while a session lock is held.
	OperationTimeoutSeconds int `mapstructure:"ACP_OPERATION_TIMEOUT_SECONDS" default:"25"`
	// CatalogCacheSeconds is the product lookup cache TTL. 0 disables caching.
	CatalogCacheSeconds int `mapstructure:"ACP_CATALOG_CACHE_SECONDS" default:"60"`
	// TermsURL is returned as the terms_of_use link.
	TermsURL string `mapstructure:"ACP_TERMS_URL"`
	// PrivacyURL is returned as the privacy_policy link.
	PrivacyURL string `mapstructure:"ACP_PRIVACY_URL"`
}

// LockTimeout returns the lock wait bound.
func (c CheckoutConfig) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutSeconds) * time.Second
}

// OperationTimeout returns the deadline applied to each checkout operation.
func (c CheckoutConfig) OperationTimeout() time.Duration {
	return time.Duration(c.OperationTimeoutSeconds) * time.Second
}

// LockTTL returns how long a session lock lives. It always outlasts
// OperationTimeout so a lock cannot expire while its holder is still working.
func (c CheckoutConfig) LockTTL() time.Duration {
	return c.OperationTimeout() + lockTTLMargin
}

const lockTTLMargin = 5 * time.Second

// CatalogCacheTTL returns the product cache TTL.
func (c CheckoutConfig) CatalogCacheTTL() time.Duration {
	return time.Duration(c.CatalogCacheSeconds) * time.Second
}

// ShippingFees parses the configured fees. express is nil when the express
// option is disabled.
func (c CheckoutConfig) ShippingFees() (standard decimal.Decimal, express *decimal.Decimal, err error) {
	standard, err = parseFee("ACP_STANDARD_SHIPPING_FEE", c.StandardShippingFee)
	if err != nil {
		return decimal.Zero, nil, err
	}
	if c.ExpressShippingFee == "" {
		return standard, nil, nil
	}
	fee, err := parseFee("ACP_EXPRESS_SHIPPING_FEE", c.ExpressShippingFee)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return standard, &fee, nil
}

func parseFee(key, raw string) (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	if !fee.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid %s: must be greater than zero", key)
	}
	return fee, nil
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if _, _, err := config.Checkout.ShippingFees(); err != nil {
		return nil, err
	}

	if config.Checkout.OperationTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid ACP_OPERATION_TIMEOUT_SECONDS: must be greater than zero")
	}

	return &config, nil
}

// processTags iterates over the struct fields, binds env keys and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
