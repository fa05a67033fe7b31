package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	AppPort    string `env:"APP_PORT" envDefault:"8080"`
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	DBHost     string `env:"DB_HOST,notEmpty"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	JWTSecret         string `env:"JWT_SECRET,notEmpty"`
	InternalSecretKey string `env:"INTERNAL_SECRET_KEY"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	StripeAPIURL        string `env:"STRIPE_API_URL"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	ResendAPIURL string `env:"RESEND_API_URL"`
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"Storefront <orders@example.com>"`

	Currency              string          `env:"CURRENCY" envDefault:"usd"`
	FreeShippingThreshold decimal.Decimal `env:"FREE_SHIPPING_THRESHOLD" envDefault:"50"`
	ShippingFee           decimal.Decimal `env:"SHIPPING_FEE" envDefault:"5.99"`
	TaxRate               decimal.Decimal `env:"TAX_RATE" envDefault:"0.10"`

	LoyaltyPointsPerUnit int64 `env:"LOYALTY_POINTS_PER_CURRENCY_UNIT" envDefault:"100"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"5s"`
	OutboxMaxAttempts  int           `env:"OUTBOX_MAX_ATTEMPTS" envDefault:"5"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("environment variables not loaded properly: %w", err)
	}

	if cfg.TaxRate.IsNegative() || cfg.ShippingFee.IsNegative() {
		return nil, fmt.Errorf("tax rate and shipping fee must not be negative")
	}
	if cfg.LoyaltyPointsPerUnit <= 0 {
		return nil, fmt.Errorf("LOYALTY_POINTS_PER_CURRENCY_UNIT must be positive")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
