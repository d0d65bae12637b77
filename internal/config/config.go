package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Backend-as-a-service (identity provider + object storage).
	// Отсутствие этих двух значений переводит репортинг в выключенное
	// состояние, но не валит процесс.
	SupabaseURL     string `env:"SUPABASE_URL"`
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY"`
	MediaBucket     string `env:"MEDIA_BUCKET" envDefault:"incidentmedia"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Reverse geocoding Config
	GeocoderURL    string `env:"GEOCODER_URL" envDefault:"https://geocode.maps.co"`
	GeocoderAPIKey string `env:"GEOCODER_API_KEY"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Feed cache Config
	FeedCacheTTL time.Duration `env:"FEED_CACHE_TTL" envDefault:"5m"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:   os.Getenv("SUPABASE_ANON_KEY"),
		MediaBucket:       getEnv("MEDIA_BUCKET", "incidentmedia"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		GeocoderURL:       getEnv("GEOCODER_URL", "https://geocode.maps.co"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries: getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:  getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		FeedCacheTTL:      getEnvAsDuration("FEED_CACHE_TTL", 5*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// BackendConfigured сообщает, заданы ли оба обязательных значения внешнего
// бэкенда (identity provider + object storage). Без них репортинг отключен.
func (c *Config) BackendConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != ""
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
