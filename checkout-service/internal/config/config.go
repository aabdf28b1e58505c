package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort        string
	GRPCPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	MigrationsPath string

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	KafkaBrokers []string
	EmailTopic   string

	// PaymentGatewayURL empty runs the in-process simulator.
	PaymentGatewayURL string
	PaymentAPIKey     string
	PaymentTimeout    time.Duration

	JWTSecret string

	LocationID            int64
	Currency              string
	FlatShipping          decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

func Load() (*Config, error) {
	var errs []string
	fail := func(key string, err error) {
		errs = append(errs, fmt.Sprintf("%s: %v", key, err))
	}

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "local"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		GRPCPort:          getEnv("GRPC_PORT", "50056"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "ecommerce"),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           getEnv("MONGO_DB", "cartdb"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "")),
		EmailTopic:        getEnv("EMAIL_TOPIC", "checkout.email-requested"),
		PaymentGatewayURL: getEnv("PAYMENT_GATEWAY_URL", ""),
		PaymentAPIKey:     getEnv("PAYMENT_API_KEY", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		Currency:          strings.ToUpper(getEnv("CURRENCY", "CAD")),
	}

	var err error
	if cfg.DBPort, err = getInt("DB_PORT", 5432); err != nil {
		fail("DB_PORT", err)
	}
	if cfg.LocationID, err = getInt64("LOCATION_ID", 1); err != nil {
		fail("LOCATION_ID", err)
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		fail("REQUEST_TIMEOUT", err)
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		fail("SHUTDOWN_TIMEOUT", err)
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		fail("SESSION_TTL", err)
	}
	if cfg.PaymentTimeout, err = getDuration("PAYMENT_TIMEOUT", 10*time.Second); err != nil {
		fail("PAYMENT_TIMEOUT", err)
	}
	if cfg.FlatShipping, err = getDecimal("FLAT_SHIPPING", "0"); err != nil {
		fail("FLAT_SHIPPING", err)
	}
	if cfg.FreeShippingThreshold, err = getDecimal("FREE_SHIPPING_THRESHOLD", "0"); err != nil {
		fail("FREE_SHIPPING_THRESHOLD", err)
	}

	if cfg.JWTSecret == "" && cfg.AppEnv != "local" {
		errs = append(errs, "JWT_SECRET: required outside local")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "local-dev-secret"
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultValue int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(v)
}

func getDecimal(key, defaultValue string) (decimal.Decimal, error) {
	return decimal.NewFromString(getEnv(key, defaultValue))
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
