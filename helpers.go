package main

import (
	"context"
	"html/template"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lmittmann/tint"
)

func envOr(key, defaultVal string) string {
	if result, ok := os.LookupEnv(key); ok {
		return result
	}
	return defaultVal
}

func newLogger(format string, logLevel *slog.Level) *slog.Logger {
	var handler slog.Handler
	if format == "text" {
		// Colorized single-line output for local development.
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: true,
			Level:     logLevel,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

func setupLogger(config *Config) *slog.Logger {
	if *debug {
		logLevel = slog.LevelDebug
		config.LogDebug = true
	}
	return newLogger(config.LogFormat, &logLevel)
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func setupTemplates() *template.Template {
	return template.Must(template.New("any").Funcs(template.FuncMap{
		"formatTimestamp": formatTimestamp,
	}).ParseFS(templateFiles, "tmpl/*html"))
}

func setupDatabase(ctx context.Context, config *Config) *pgxpool.Pool {
	dbCtx, dbCancel := context.WithTimeout(ctx, 5*time.Second)
	defer dbCancel()

	poolConfig, err := PoolConfig(config.DatabaseURL, config.Logger)
	if err != nil {
		config.Logger.Error("invalid database configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbconn, err := pgxpool.NewWithConfig(dbCtx, poolConfig)
	if err != nil {
		config.Logger.Error("unable to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	return dbconn
}

// setupThemeCache picks the shared valkey cache when an address is configured,
// falling back to the in-process cache when valkey is absent or unreachable.
func setupThemeCache(config *Config) ThemeCache {
	if config.ValkeyAddress == "" {
		return NewMemoryThemeCache()
	}

	cache, err := NewValkeyThemeCache(config.ValkeyAddress, config.Logger)
	if err != nil {
		config.Logger.Warn("valkey unavailable, using in-process theme cache",
			slog.String("address", config.ValkeyAddress),
			slog.String("error", err.Error()))
		return NewMemoryThemeCache()
	}
	return cache
}
