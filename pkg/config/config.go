package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	Catalog     CatalogConfig
	Paystack    PaystackConfig
	Delivery    DeliveryConfig
	Entitlement EntitlementConfig
	Device      DeviceConfig
	Admin       AdminConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig controls how the project catalog is fetched and refreshed.
type CatalogConfig struct {
	SourceURL       string
	SheetID         string
	SheetName       string
	DefaultPrice    int
	FetchTimeout    time.Duration
	FetchRetries    int
	RefreshInterval time.Duration
	CacheKey        string
}

// PaystackConfig holds the payment gateway keys and verification settings.
type PaystackConfig struct {
	PublicKey         string
	FallbackPublicKey string
	SecretKey         string
	BaseURL           string
	Currency          string
	VerifyTimeout     time.Duration
}

// DeliveryConfig tunes download dispatch and signed download tokens.
type DeliveryConfig struct {
	SignedURLSecret string
	SignedURLTTL    time.Duration
	DispatchDelay   time.Duration
	Workers         int
}

// EntitlementConfig controls device-scoped purchase persistence.
type EntitlementConfig struct {
	StorageKeyPrefix string
	LastPurchaseTTL  time.Duration
}

// DeviceConfig signs the device identity cookie.
type DeviceConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	CookieName  string
}

// AdminConfig guards operator-only endpoints with a bcrypt-hashed key.
type AdminConfig struct {
	APIKeyHash string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Catalog = CatalogConfig{
		SourceURL:       v.GetString("CATALOG_SOURCE_URL"),
		SheetID:         v.GetString("CATALOG_SHEET_ID"),
		SheetName:       v.GetString("CATALOG_SHEET_NAME"),
		DefaultPrice:    v.GetInt("CATALOG_DEFAULT_PRICE"),
		FetchTimeout:    parseDuration(v.GetString("CATALOG_FETCH_TIMEOUT"), 15*time.Second),
		FetchRetries:    v.GetInt("CATALOG_FETCH_RETRIES"),
		RefreshInterval: parseDuration(v.GetString("CATALOG_REFRESH_INTERVAL"), 10*time.Minute),
		CacheKey:        v.GetString("CATALOG_CACHE_KEY"),
	}

	cfg.Paystack = PaystackConfig{
		PublicKey:         v.GetString("PAYSTACK_PUBLIC_KEY"),
		FallbackPublicKey: v.GetString("PAYSTACK_FALLBACK_PUBLIC_KEY"),
		SecretKey:         v.GetString("PAYSTACK_SECRET_KEY"),
		BaseURL:           v.GetString("PAYSTACK_BASE_URL"),
		Currency:          v.GetString("PAYSTACK_CURRENCY"),
		VerifyTimeout:     parseDuration(v.GetString("PAYSTACK_VERIFY_TIMEOUT"), 10*time.Second),
	}

	cfg.Delivery = DeliveryConfig{
		SignedURLSecret: v.GetString("DELIVERY_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("DELIVERY_SIGNED_URL_TTL"), 30*time.Minute),
		DispatchDelay:   parseDuration(v.GetString("DELIVERY_DISPATCH_DELAY"), time.Second),
		Workers:         v.GetInt("DELIVERY_WORKERS"),
	}

	cfg.Entitlement = EntitlementConfig{
		StorageKeyPrefix: v.GetString("ENTITLEMENT_KEY_PREFIX"),
		LastPurchaseTTL:  parseDuration(v.GetString("ENTITLEMENT_LAST_PURCHASE_TTL"), 24*time.Hour),
	}

	cfg.Device = DeviceConfig{
		TokenSecret: v.GetString("DEVICE_TOKEN_SECRET"),
		TokenTTL:    parseDuration(v.GetString("DEVICE_TOKEN_TTL"), 365*24*time.Hour),
		CookieName:  v.GetString("DEVICE_COOKIE_NAME"),
	}

	cfg.Admin = AdminConfig{
		APIKeyHash: v.GetString("ADMIN_API_KEY_HASH"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sweeft_store")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CATALOG_SOURCE_URL", "")
	v.SetDefault("CATALOG_SHEET_ID", "")
	v.SetDefault("CATALOG_SHEET_NAME", "sweeft projects")
	v.SetDefault("CATALOG_DEFAULT_PRICE", 2500)
	v.SetDefault("CATALOG_FETCH_TIMEOUT", "15s")
	v.SetDefault("CATALOG_FETCH_RETRIES", 2)
	v.SetDefault("CATALOG_REFRESH_INTERVAL", "10m")
	v.SetDefault("CATALOG_CACHE_KEY", "catalog:snapshot:v1")

	v.SetDefault("PAYSTACK_PUBLIC_KEY", "")
	v.SetDefault("PAYSTACK_FALLBACK_PUBLIC_KEY", "")
	v.SetDefault("PAYSTACK_SECRET_KEY", "")
	v.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	v.SetDefault("PAYSTACK_CURRENCY", "NGN")
	v.SetDefault("PAYSTACK_VERIFY_TIMEOUT", "10s")

	v.SetDefault("DELIVERY_SIGNED_URL_SECRET", "dev_delivery_secret")
	v.SetDefault("DELIVERY_SIGNED_URL_TTL", "30m")
	v.SetDefault("DELIVERY_DISPATCH_DELAY", "1s")
	v.SetDefault("DELIVERY_WORKERS", 2)

	v.SetDefault("ENTITLEMENT_KEY_PREFIX", "cybersweeft_purchases_v1")
	v.SetDefault("ENTITLEMENT_LAST_PURCHASE_TTL", "24h")

	v.SetDefault("DEVICE_TOKEN_SECRET", "dev_device_secret")
	v.SetDefault("DEVICE_TOKEN_TTL", "8760h")
	v.SetDefault("DEVICE_COOKIE_NAME", "sweeft_device")

	v.SetDefault("ADMIN_API_KEY_HASH", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
