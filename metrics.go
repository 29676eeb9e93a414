package main

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	versionGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "topicboard_build_info",
		Help: "A gauge with version and git commit information",
	}, []string{"version", "git_commit"})

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "topicboard",
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of response latency (seconds) for HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "code"},
	)

	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topicboard",
			Name:      "submissions_total",
			Help:      "Topic submissions by outcome.",
		},
		[]string{"outcome"}, // accepted, rejected, bot, failed
	)

	topicsPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "topicboard",
			Name:      "topics_purged_total",
			Help:      "Total number of submissions removed by admin purges.",
		},
	)

	themeExtractionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "topicboard",
			Name:      "theme_extraction_failures_total",
			Help:      "Failed calls to the external theme-extraction service.",
		},
	)
)

func init() {
	prometheus.MustRegister(versionGauge)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(submissionsTotal)
	prometheus.MustRegister(topicsPurgedTotal)
	prometheus.MustRegister(themeExtractionFailures)
}

var pathIDPattern = regexp.MustCompile(`/(\d+)`)

func HistogramHttpHandler(next http.Handler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a ResponseWriter that captures the status code
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		sanitizedPath := pathIDPattern.ReplaceAllString(r.URL.Path, "/:id")

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		httpRequestDuration.WithLabelValues(sanitizedPath, r.Method, strconv.Itoa(rw.statusCode)).Observe(duration)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}
