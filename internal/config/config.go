// Package config читает настройки сервиса из окружения и .env файлов.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMongoDB  = "mongodb"
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"

	BusRedis  = "redis"
	BusMemory = "memory"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`

	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"matchmaker"`

	AWSRegion             string `env:"AWS_REGION" envDefault:"us-east-1"`
	DynamoDBEndpoint      string `env:"DYNAMODB_ENDPOINT"`
	DynamoDBMatchesTable  string `env:"DYNAMODB_MATCHES_TABLE" envDefault:"matches"`
	DynamoDBMessagesTable string `env:"DYNAMODB_MESSAGES_TABLE" envDefault:"chat_messages"`

	BusDriver string `env:"BUS_DRIVER" envDefault:"redis"`
	RedisURL  string `env:"REDIS_URL"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	RecommenderURL     string        `env:"RECOMMENDER_URL,required"`
	RecommenderTimeout time.Duration `env:"RECOMMENDER_TIMEOUT" envDefault:"5s"`
	PublishTimeout     time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"2s"`

	MatchTerminalGuard bool `env:"MATCH_TERMINAL_GUARD" envDefault:"false"`

	WSMessageRate  float64 `env:"WS_MESSAGE_RATE" envDefault:"5"`
	WSMessageBurst int     `env:"WS_MESSAGE_BURST" envDefault:"10"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load подхватывает .env.local, затем .env, и разбирает окружение.
// Отсутствие файлов не ошибка.
func Load() (*Config, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			slog.Debug(".env not found, using environment variables")
		}
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет, что для выбранных драйверов заданы нужные параметры
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case StoreMongoDB:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongodb store"))
		}
	case StoreDynamoDB:
		if c.DynamoDBMatchesTable == "" || c.DynamoDBMessagesTable == "" {
			errs = append(errs, errors.New("DynamoDB table names must not be empty"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.BusDriver {
	case BusRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis bus"))
		}
	case BusMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown BUS_DRIVER %q", c.BusDriver))
	}

	if c.RecommenderTimeout <= 0 {
		errs = append(errs, errors.New("RECOMMENDER_TIMEOUT must be positive"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// SlogLevel переводит LOG_LEVEL в уровень slog, по умолчанию info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AllowsAnyOrigin сообщает, что CORS и WebSocket открыты для всех origin
func (c *Config) AllowsAnyOrigin() bool {
	for _, o := range c.CORSAllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}
