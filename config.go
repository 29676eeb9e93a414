package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/subosito/gotenv"
)

type Config struct {
	ListenAddr      string
	DatabaseURL     string
	AdminSecretKey  string
	WebhookURL      string
	ThemeServiceURL string
	ValkeyAddress   string

	LogDebug       bool
	LogFormat      string // "json" or "text"
	Logger         *slog.Logger
	ServiceName    string
	ServiceVersion string

	TraceMaxBatchSize int
	TraceSampleRate   float64
	OTLP              bool

	// Submission rate limit applied to /api/ routes, per client IP.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present, the way local dev runs.
func LoadConfig() (*Config, error) {
	if err := gotenv.Load(); err != nil {
		slog.Debug("no .env file found, using OS environment")
	}

	config := &Config{
		ListenAddr:      envOr("LISTEN_ADDR", ":8080"),
		DatabaseURL:     envOr("DATABASE_URL", ""),
		AdminSecretKey:  envOr("ADMIN_SECRET_KEY", ""),
		WebhookURL:      envOr("DISCORD_WEBHOOK_URL", ""),
		ThemeServiceURL: envOr("TOPIC_MODELING_URL", "http://localhost:8000"),
		ValkeyAddress:   envOr("VALKEY_ADDRESS", ""),

		LogFormat:      envOr("LOG_FORMAT", "json"),
		ServiceName:    "topicboard",
		ServiceVersion: version,

		TraceMaxBatchSize: 512,
		TraceSampleRate:   1.0,
		OTLP:              envOr("OTLP", "") == "true",

		// ~30 requests/minute with a small burst, same budget as the
		// original deployment's middleware.
		RateLimitPerSecond: 0.5,
		RateLimitBurst:     5,
	}

	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return config, nil
}

// PoolConfig builds the pgx pool configuration for the topic store.
func PoolConfig(dsn string, logger *slog.Logger) (*pgxpool.Config, error) {
	const defaultMaxConns = int32(4)
	const defaultMinConns = int32(0)
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 15
	const defaultHealthCheckPeriod = time.Minute
	const defaultConnectTimeout = time.Second * 5

	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database configuration: %w", err)
	}

	dbConfig.MaxConns = defaultMaxConns
	dbConfig.MinConns = defaultMinConns
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	dbConfig.BeforeConnect = func(ctx context.Context, c *pgx.ConnConfig) error {
		logger.Debug("creating connection")
		return nil
	}

	dbConfig.AfterConnect = func(ctx context.Context, c *pgx.Conn) error {
		logger.Debug("connection created")
		return nil
	}

	return dbConfig, nil
}
