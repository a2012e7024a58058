package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Режимы запуска бинарника
const (
	ModeServer = "server"
	ModeWorker = "worker"
	ModeSeed   = "seed"
)

// Драйверы хранилища
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Режимы аутентификации
const (
	AuthModeJWT   = "jwt"
	AuthModeFixed = "fixed"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	StorageDriver  string        `env:"STORAGE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`

	Auth struct {
		Mode       string        `env:"AUTH_MODE" envDefault:"jwt"`
		JWTSecret  string        `env:"JWT_SECRET"`
		JWTIssuer  string        `env:"JWT_ISSUER" envDefault:"ecofinds"`
		TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
		BcryptCost int           `env:"BCRYPT_COST"`
		DemoUserID string        `env:"DEMO_USER_ID"`
		RatePerSec float64       `env:"AUTH_RATE_PER_SEC" envDefault:"5"`
		RateBurst  int           `env:"AUTH_RATE_BURST" envDefault:"10"`
	}

	MarkSoldOnCheckout bool     `env:"MARK_SOLD_ON_CHECKOUT"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	// X-Forwarded-For и X-Real-IP учитываются только за доверенным прокси
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"checkout_events"`
	}

	// Настройки для MinIO, нужны только воркеру
	Minio struct {
		Endpoint        string `env:"MINIO_ENDPOINT"`
		AccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
		SecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
		UseSSL          bool   `env:"MINIO_USE_SSL"`
		BucketName      string `env:"MINIO_BUCKET_NAME" envDefault:"receipts"`
		Region          string `env:"MINIO_REGION" envDefault:"us-east-1"`
		PublicURL       string `env:"MINIO_PUBLIC_URL"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.Auth.Mode = strings.ToLower(strings.TrimSpace(cfg.Auth.Mode))

	return &cfg, nil
}

// Validate проверяет параметры, обязательные для выбранного режима запуска.
// Возвращает все найденные проблемы разом.
func (c *Config) Validate(mode string) error {
	var errs []error

	switch mode {
	case ModeServer, ModeWorker, ModeSeed:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q (use server, worker or seed)", mode))
	}

	// воркер не открывает базу
	if mode != ModeWorker {
		switch c.StorageDriver {
		case StoragePostgres:
			if c.DatabaseURL == "" {
				errs = append(errs, errors.New("DATABASE_URL is required for the postgres storage driver"))
			}
		case StorageMemory:
			if mode == ModeSeed {
				errs = append(errs, errors.New("seed mode requires the postgres storage driver"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
		}
	}

	if mode == ModeServer {
		switch c.Auth.Mode {
		case AuthModeJWT:
			if c.Auth.JWTSecret == "" {
				errs = append(errs, errors.New("JWT_SECRET is required when AUTH_MODE=jwt"))
			}
		case AuthModeFixed:
			if _, err := c.DemoUserID(); err != nil {
				errs = append(errs, err)
			}
		default:
			errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode))
		}
		if c.Auth.TokenTTL <= 0 {
			errs = append(errs, errors.New("TOKEN_TTL must be positive"))
		}
	}

	if mode == ModeWorker {
		if c.RabbitMQ.RabbitMQURL == "" {
			errs = append(errs, errors.New("RABBITMQ_URL is required in worker mode"))
		}
		if c.Minio.Endpoint == "" || c.Minio.AccessKeyID == "" || c.Minio.SecretAccessKey == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY_ID and MINIO_SECRET_ACCESS_KEY are required in worker mode"))
		}
	}

	return errors.Join(errs...)
}

// DemoUserID разбирает DEMO_USER_ID для AUTH_MODE=fixed
func (c *Config) DemoUserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Auth.DemoUserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("DEMO_USER_ID must be a valid UUID when AUTH_MODE=fixed: %w", err)
	}
	return id, nil
}

// MinioEndpointURL возвращает адрес MinIO со схемой
func (c *Config) MinioEndpointURL() string {
	if c.Minio.UseSSL {
		return "https://" + c.Minio.Endpoint
	}
	return "http://" + c.Minio.Endpoint
}
