// Package config loads service and coordinator settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrMissingJWTSecret = errors.New("missing JWT_SECRET")

// Config holds service configuration.
type Config struct {
	ServerAddr string `env:"SERVER_ADDR"`
	Port       string `env:"PORT" envDefault:"8080"`
	GinMode    string `env:"GIN_MODE" envDefault:"release"`

	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER"`

	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" envDefault:"local"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" envDefault:"local"`
	DynamoEndpoint     string `env:"DYNAMODB_ENDPOINT"`
	ContractsTable     string `env:"CONTRACTS_TABLE" envDefault:"contracts"`
	BidsTable          string `env:"BIDS_TABLE" envDefault:"bids"`
	PaymentsTable      string `env:"PAYMENTS_TABLE" envDefault:"payments"`

	MercadoPagoAccessToken string `env:"MERCADOPAGO_ACCESS_TOKEN"`
	MercadoPagoPublicKey   string `env:"MERCADOPAGO_PUBLIC_KEY"`
	PaymentGatewayMock     bool
	PaymentCurrency        string `env:"PAYMENT_CURRENCY" envDefault:"BRL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	EventBufferSize int `env:"EVENT_BUFFER_SIZE" envDefault:"16"`

	APIBaseURL       string        `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
	APIToken         string        `env:"API_TOKEN"`
	ReconcileRetries int           `env:"RECONCILE_MAX_RETRIES" envDefault:"3"`
	ReconcileDelay   time.Duration `env:"RECONCILE_RETRY_DELAY" envDefault:"1s"`
	RequestTimeout   time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"15s"`
}

// The gateway mock is switched on by either variable and accepts loose truthy values.
type mockSwitches struct {
	Gateway     string `env:"PAYMENT_GATEWAY_MOCK"`
	MercadoPago string `env:"MERCADOPAGO_MOCK"`
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	var mocks mockSwitches
	if err := env.Parse(&mocks); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":" + cfg.Port
	}
	cfg.PaymentCurrency = strings.ToUpper(cfg.PaymentCurrency)
	cfg.PaymentGatewayMock = truthy(mocks.Gateway) || truthy(mocks.MercadoPago)

	if cfg.ReconcileRetries < 0 {
		return nil, fmt.Errorf("RECONCILE_MAX_RETRIES must be >= 0, got %d", cfg.ReconcileRetries)
	}
	if cfg.EventBufferSize <= 0 {
		return nil, fmt.Errorf("EVENT_BUFFER_SIZE must be > 0, got %d", cfg.EventBufferSize)
	}
	return cfg, nil
}

// ValidateServer checks the settings only the HTTP service needs.
func (c *Config) ValidateServer() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on", "mock":
		return true
	}
	return false
}
