package main

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const SITE_TITLE = "All The Vibes"

// TopicService carries everything the handlers need. queries is the
// AdminQuerier tier because the purge endpoint lives on the same mux; the
// submission and read handlers only ever call the Querier subset.
type TopicService struct {
	logger    *slog.Logger
	dbconn    *pgxpool.Pool
	queries   AdminQuerier
	tmpls     *template.Template
	themes    *ThemeClient
	cache     ThemeCache
	notifier  Notifier
	adminKey  string
	version   string
	gitSha    string
	telemetry *TelemetryConfig
}

func NewTopicService(
	logger *slog.Logger,
	dbconn *pgxpool.Pool,
	queries AdminQuerier,
	tmpls *template.Template,
	themes *ThemeClient,
	cache ThemeCache,
	notifier Notifier,
	adminKey string,
	version string,
	gitSha string,
	telemetry *TelemetryConfig,
) *TopicService {
	return &TopicService{
		logger:    logger,
		dbconn:    dbconn,
		queries:   queries,
		tmpls:     tmpls,
		themes:    themes,
		cache:     cache,
		notifier:  notifier,
		adminKey:  adminKey,
		version:   version,
		gitSha:    gitSha,
		telemetry: telemetry,
	}
}

func setupMux(svc *TopicService, limiter *RateLimiter) http.Handler {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		svc.logger.Error("error creating fs for static assets", slog.String("error", err.Error()))
		return nil
	}

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/topics", svc.ListTopicsJSON)
	apiMux.HandleFunc("POST /api/topics", svc.SubmitTopic)
	apiMux.HandleFunc("GET /api/words", svc.TopicWords)
	apiMux.HandleFunc("GET /api/themes", svc.TopicThemes)
	apiMux.HandleFunc("POST /api/admin/clear", svc.PurgeTopics)

	mux := http.NewServeMux()
	mux.Handle("/api/", limiter.RateLimitMiddleware(apiMux))
	mux.HandleFunc("GET /{$}", svc.TopicsPage)
	mux.HandleFunc("GET /topics", svc.TopicsPage)
	mux.HandleFunc("GET /healthz", svc.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	return HistogramHttpHandler(SecurityHeadersMiddleware(RequestIDMiddleware(mux)))
}

func createHTTPServer(addr string, mux http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
}

func startServer(server *http.Server, logger *slog.Logger) {
	logger.Info("listening", slog.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", slog.String("error", err.Error()))
	}
}

func waitForShutdown(sigChan chan os.Signal, ctx context.Context, logger *slog.Logger, server *http.Server) {
	sig := <-sigChan
	logger.Info("shutting down gracefully", slog.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to gracefully shutdown HTTP server", slog.String("error", err.Error()))
	}

	if sigNum, ok := sig.(syscall.Signal); ok {
		s := 128 + int(sigNum)
		os.Exit(s)
	}
}
