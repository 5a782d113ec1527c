// Файл: pkg/config/config.go
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type OdooConfig struct {
	URL       string `key:"url" validate:"required,url"`
	DB        string `key:"db" validate:"required"`
	Username  string `key:"username" validate:"required"`
	APIKey    string `key:"api_key" validate:"required"`
	Timeout   time.Duration
	RateLimit float64 // запросов в секунду, 0 - без ограничения
}

type PostgresConfig struct {
	Host     string `key:"host" validate:"required"`
	Port     int    `key:"port" validate:"required,gt=0"`
	Database string `key:"database" validate:"required"`
	User     string `key:"user" validate:"required"`
	Password string `key:"password" validate:"required"`
	SSLMode  string
}

// DSN собирает строку подключения для pgx и goose.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:   "/" + p.Database,
	}
	if p.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(p.SSLMode)
	}
	return u.String()
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type ServerConfig struct {
	Port string
}

type LogConfig struct {
	Level string
	File  string
}

type SyncConfig struct {
	MinScore int
	N8NURL   string
}

// StripeConfig - ключи для включения провайдера оплаты в Odoo.
type StripeConfig struct {
	SecretKey      string `key:"secret_key" validate:"required"`
	PublishableKey string `key:"publishable_key" validate:"required"`
	CompanyID      int64
}

type Config struct {
	Odoo     OdooConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Server   ServerConfig
	Log      LogConfig
	Sync     SyncConfig
	Stripe   StripeConfig
}

func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Предупреждение: .env файл не найден или не удалось его загрузить.")
	}

	return &Config{
		Odoo: OdooConfig{
			URL:       getEnv("ODOO_URL", "http://localhost:8069"),
			DB:        getEnv("ODOO_DB", ""),
			Username:  getEnv("ODOO_USERNAME", ""),
			APIKey:    getEnv("ODOO_API_KEY", ""),
			Timeout:   getEnvDuration("ODOO_TIMEOUT", 60*time.Second),
			RateLimit: getEnvFloat("ODOO_RATE_LIMIT", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5433),
			Database: getEnv("POSTGRES_DB", "permits_db"),
			User:     getEnv("POSTGRES_USER", "permits"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8070"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Sync: SyncConfig{
			MinScore: getEnvInt("SYNC_MIN_SCORE", 50),
			N8NURL:   getEnv("N8N_URL", "https://automation.aiqso.io"),
		},
		Stripe: StripeConfig{
			SecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			PublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
			CompanyID:      int64(getEnvInt("STRIPE_COMPANY_ID", 1)),
		},
	}
}

// getEnv считает пустую переменную окружения незаданной.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Предупреждение: %s=%q не является числом, используется %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("Предупреждение: %s=%q не является числом, используется %v", key, v, fallback)
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Предупреждение: %s=%q не является длительностью, используется %s", key, v, fallback)
		return fallback
	}
	return d
}
