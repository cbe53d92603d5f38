package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	S3       S3Config
	Cart     CartConfig
	Coupon   CouponConfig
	CORS     CORSConfig
	Tracing  TracingConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type LogConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Store backends for persisted carts
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreS3       = "s3"
)

type CartConfig struct {
	Store         string
	KeyPrefix     string
	SessionSecret string
	SessionTTL    time.Duration
	// Engines untouched for IdleTimeout are dropped from memory; their
	// persisted blob stays.
	IdleTimeout   time.Duration
	BlobRetention time.Duration
	BlobTTL       time.Duration
	ShippingBase  float64
	ShippingRate  float64
}

type CouponConfig struct {
	// Empty ValidatorURL validates against the local coupons table.
	ValidatorURL string
	Timeout      time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type TracingConfig struct {
	ServiceName string
	// Empty JaegerEndpoint keeps spans in-process: context still
	// propagates to the coupon service but nothing is exported.
	JaegerEndpoint string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", ""),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "verdantia"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "verdantia-carts"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Prefix:          getEnv("AWS_S3_PREFIX", "carts"),
		},
		Cart: CartConfig{
			Store:         getEnv("CART_STORE", StorePostgres),
			KeyPrefix:     getEnv("CART_KEY_PREFIX", "verdantia:cart"),
			SessionSecret: getEnv("CART_SESSION_SECRET", "change-me"),
			SessionTTL:    parseDuration(getEnv("CART_SESSION_TTL", "720h"), 720*time.Hour),
			IdleTimeout:   parseDuration(getEnv("CART_IDLE_TIMEOUT", "30m"), 30*time.Minute),
			BlobRetention: parseDuration(getEnv("CART_BLOB_RETENTION", "720h"), 720*time.Hour),
			BlobTTL:       parseDuration(getEnv("CART_BLOB_TTL", "720h"), 720*time.Hour),
			ShippingBase:  parseFloat(getEnv("SHIPPING_BASE", "5000"), 5000),
			ShippingRate:  parseFloat(getEnv("SHIPPING_RATE_PER_KG", "2500"), 2500),
		},
		Coupon: CouponConfig{
			ValidatorURL: getEnv("COUPON_VALIDATOR_URL", ""),
			Timeout:      parseDuration(getEnv("COUPON_VALIDATOR_TIMEOUT", "5s"), 5*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Tracing: TracingConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "storefront-backend"),
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Cart.Store {
	case StoreMemory, StoreRedis, StorePostgres, StoreS3:
	default:
		return fmt.Errorf("unknown CART_STORE %q", c.Cart.Store)
	}
	if c.Cart.SessionSecret == "" {
		return fmt.Errorf("CART_SESSION_SECRET must not be empty")
	}
	if c.Cart.ShippingBase < 0 || c.Cart.ShippingRate < 0 {
		return fmt.Errorf("shipping rates must not be negative")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Invalid number %s, using default %v", s, fallback)
		return fallback
	}
	return f
}

func parseSlice(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
