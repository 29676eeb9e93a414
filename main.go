package main

import (
	"context"
	"embed"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
)

//go:embed tmpl/*.html
var templateFiles embed.FS

//go:embed static/style.css
var staticFiles embed.FS

var (
	debug               = flag.Bool("debug", false, "Enable debug logging")
	version  string     = "dev"
	gitSha   string     = "no-commit"
	logLevel slog.Level = slog.LevelInfo
)

func main() {
	flag.Parse()

	versionGauge.With(prometheus.Labels{"version": version, "git_commit": gitSha}).Set(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	config, err := LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := setupLogger(config)
	config.Logger = logger

	telemetry, cleanup, err := setupTelemetry(ctx, config)
	if err != nil {
		logger.Error("error setting up telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := cleanup(ctx); err != nil {
			logger.Error("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	if config.OTLP {
		logger = slog.New(telemetry.LogHandler)
		slog.SetDefault(logger)
		config.Logger = logger
	}

	dbconn := setupDatabase(ctx, config)
	defer dbconn.Close()

	tmpls := setupTemplates()

	queries := NewTracedQueries(NewTopicQueries(dbconn), telemetry)

	svc := NewTopicService(
		logger,
		dbconn,
		queries,
		tmpls,
		NewThemeClient(config.ThemeServiceURL, logger),
		setupThemeCache(config),
		NewWebhookNotifier(config.WebhookURL, logger),
		config.AdminSecretKey,
		version,
		gitSha,
		telemetry,
	)

	limiter := NewRateLimiter(config.RateLimitPerSecond, config.RateLimitBurst, logger)

	mux := setupMux(svc, limiter)

	server := createHTTPServer(config.ListenAddr, mux)

	go startServer(server, logger)

	waitForShutdown(sigChan, ctx, logger, server)
}
