package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageBackendPostgres = "postgres"
	StorageBackendFile     = "file"
)

type StorageConfig struct {
	Backend     string
	DatabaseURL string
	MaxConns    int
	FilePath    string
}

type RESTconfig struct {
	Port            string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type RabbitMQConfig struct {
	Enabled       bool
	URL           string
	PrefetchCount int
	RetryTTL      time.Duration
	MaxRetries    int
}

type StdoutLogConfig struct {
	Level  string
	Format string // text | json | color
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

type AuthConfig struct {
	JWTSigningKey string
}

type ListingsConfig struct {
	ExpirySchedule   string
	DefaultListLimit int
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Storage      StorageConfig
	Rest         RESTconfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
	Auth         AuthConfig
	Listings     ListingsConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// .env необязателен: без него значения берутся только из окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not parse .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: .env file not found (path: %v), using process environment\n", envPath)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "listing-service")

	cfg.Storage.Backend = strings.ToLower(getEnvAsString("STORAGE_BACKEND", StorageBackendFile))
	switch cfg.Storage.Backend {
	case StorageBackendPostgres:
		cfg.Storage.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.Storage.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for the postgres backend")
		}
		cfg.Storage.MaxConns = getEnvAsInt("DB_MAX_CONNS", 10)
	case StorageBackendFile:
		cfg.Storage.FilePath = getEnvAsString("FILE_STORE_PATH", "data/properties.json")
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (expected %q or %q)", cfg.Storage.Backend, StorageBackendPostgres, StorageBackendFile)
	}

	cfg.Rest.Port = getEnvAsString("PORT", "8080")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	cfg.Rest.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second)
	cfg.Rest.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
		}
		cfg.RabbitMQ.PrefetchCount = getEnvAsInt("RABBITMQ_PREFETCH", 10)
		cfg.RabbitMQ.RetryTTL = getEnvAsDuration("RABBITMQ_RETRY_TTL", 30*time.Second)
		cfg.RabbitMQ.MaxRetries = getEnvAsInt("RABBITMQ_MAX_RETRIES", 3)
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.Format = strings.ToLower(getEnvAsString("STDOUT_LOG_FORMAT", "color"))

	cfg.Auth.JWTSigningKey = os.Getenv("JWT_SIGNING_KEY")
	if cfg.Auth.JWTSigningKey == "" {
		return nil, fmt.Errorf("JWT_SIGNING_KEY environment variable is required")
	}

	cfg.Listings.ExpirySchedule = getEnvAsString("LISTING_EXPIRY_SCHEDULE", "@every 1h")
	cfg.Listings.DefaultListLimit = getEnvAsInt("DEFAULT_LIST_LIMIT", 20)

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList читает список через запятую
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
