package config

import (
	"os"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Gateway   GatewayConfig
	Reconcile ReconcileConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// GatewayConfig points at the external payment provider's merchant API.
type GatewayConfig struct {
	BaseURL        string
	ClientID       string
	ClientSecret   string
	CallTimeout    time.Duration
	PaymentMethods []string
	UseStub        bool
}

type ReconcileConfig struct {
	Interval    time.Duration
	CallTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8088"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envOr("DATABASE_DSN", "drivehub:drivehub@tcp(localhost:3306)/drivehub?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  envOr("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envOr("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "drivehub",
		},
		Gateway: GatewayConfig{
			BaseURL:        envOr("GATEWAY_BASE_URL", "https://api.pagfacil.example.com"),
			ClientID:       os.Getenv("GATEWAY_CLIENT_ID"),
			ClientSecret:   os.Getenv("GATEWAY_CLIENT_SECRET"),
			CallTimeout:    30 * time.Second,
			PaymentMethods: []string{"PIX", "BOLETO", "CARD"},
			UseStub:        os.Getenv("GATEWAY_CLIENT_ID") == "",
		},
		Reconcile: ReconcileConfig{
			Interval:    5 * time.Minute,
			CallTimeout: 15 * time.Second,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
