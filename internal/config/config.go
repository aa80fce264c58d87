package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort           string        `envconfig:"HTTP_PORT" default:"8080"`
	BackendURL         string        `envconfig:"BACKEND_URL" default:"http://localhost:9090"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	MaxRequestBodySize int64         `envconfig:"MAX_REQUEST_BODY_SIZE" default:"1048576"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`

	ShippingCost string `envconfig:"SHIPPING_COST" default:"370"`

	// PaymentKeyID is the gateway's public key; empty makes every checkout fail to open the widget.
	PaymentKeyID      string        `envconfig:"PAYMENT_KEY_ID" default:""`
	PaymentCurrency   string        `envconfig:"PAYMENT_CURRENCY" default:"INR"`
	MerchantName      string        `envconfig:"MERCHANT_NAME" default:"ShopEdge"`
	ThemeColor        string        `envconfig:"THEME_COLOR" default:"#6366f1"`
	RedirectDelay     time.Duration `envconfig:"REDIRECT_DELAY" default:"2s"`
	RedirectOnSuccess string        `envconfig:"REDIRECT_ON_SUCCESS" default:"/customerhome"`
	CheckoutIdleTTL   time.Duration `envconfig:"CHECKOUT_IDLE_TTL" default:"15m"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	CatalogTTL    time.Duration `envconfig:"CATALOG_TTL" default:"5m"`

	// KafkaBrokers is a comma separated list; empty disables checkout event publishing.
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"storefront-checkout"`
	KafkaGroupID string `envconfig:"KAFKA_GROUP_ID" default:"storefront-catalog"`

	BreakerFailures    uint32        `envconfig:"BREAKER_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"BREAKER_OPEN_TIMEOUT" default:"30s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if _, err := cfg.Shipping(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Shipping() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.ShippingCost)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid SHIPPING_COST %q: %w", c.ShippingCost, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid SHIPPING_COST %q: must not be negative", c.ShippingCost)
	}
	return d, nil
}

func (c *Config) Brokers() []string {
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
