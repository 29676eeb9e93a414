package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Client-facing failure messages. Backend detail stays in the logs.
const (
	submitFailedMessage = "Failed to submit topic. Please try again."
	purgeFailedMessage  = "Failed to clear topics. Please try again."
	themesFailedMessage = "Topic analysis is temporarily unavailable."
)

// submitRequest is the submission payload. Website is the honeypot: hidden on
// the real form, so any non-empty value marks an automated submitter.
type submitRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Website     string `json:"website"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	TopicID int64  `json:"topicId,omitempty"`
	Error   string `json:"error,omitempty"`
}

type purgeResponse struct {
	Success bool   `json:"success"`
	Deleted int64  `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

type themesEnvelope struct {
	Themes     []Theme `json:"themes"`
	TopicCount int     `json:"topicCount"`
	Error      string  `json:"error,omitempty"`
}

func (s *TopicService) writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding response", slog.String("error", err.Error()))
	}
}

// parseSubmitRequest accepts both the JSON body the page script sends and a
// plain form post, so the page degrades without javascript.
func parseSubmitRequest(r *http.Request) (submitRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return submitRequest{}, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return submitRequest{}, err
	}
	return submitRequest{
		Name:        r.Form.Get("name"),
		Email:       r.Form.Get("email"),
		Topic:       r.Form.Get("topic"),
		Description: r.Form.Get("description"),
		Priority:    r.Form.Get("priority"),
		Website:     r.Form.Get("website"),
	}, nil
}

// SubmitTopic runs the submission pipeline: honeypot, validation, insert,
// fire-and-forget notification, cache invalidation.
func (s *TopicService) SubmitTopic(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.telemetry.Tracer.Start(r.Context(), "SubmitTopic")
	defer span.End()
	r = r.WithContext(ctx)

	req, err := parseSubmitRequest(r)
	if err != nil {
		submissionsTotal.WithLabelValues("rejected").Inc()
		s.writeJSON(w, r, http.StatusBadRequest, submitResponse{Success: false, Error: "Invalid request body"})
		return
	}

	// Bots fill every field. Answer exactly like a success so the form looks
	// accepted, but touch nothing.
	if req.Website != "" {
		submissionsTotal.WithLabelValues("bot").Inc()
		s.logger.InfoContext(r.Context(), "honeypot tripped",
			slog.String("ip", clientIP(r)),
			slog.String("request_id", GetRequestID(r.Context())))
		span.SetAttributes(attribute.Bool("submission.bot", true))
		s.writeJSON(w, r, http.StatusOK, submitResponse{Success: true})
		return
	}

	params, err := ValidateTopicForm(TopicForm{
		Name:        req.Name,
		Email:       req.Email,
		Topic:       req.Topic,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		submissionsTotal.WithLabelValues("rejected").Inc()
		s.writeJSON(w, r, http.StatusBadRequest, submitResponse{Success: false, Error: err.Error()})
		return
	}

	id, err := s.queries.InsertTopic(r.Context(), params)
	if err != nil {
		submissionsTotal.WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(r.Context(), "insert topic failed",
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(r.Context())))
		s.writeJSON(w, r, http.StatusInternalServerError, submitResponse{Success: false, Error: submitFailedMessage})
		return
	}

	// Notify off the request path. The request context dies when the handler
	// returns, so the goroutine gets its own deadline.
	go func(topic InsertTopicParams) {
		notifyCtx, cancel := context.WithTimeout(context.Background(), notifyRequestTimeout)
		defer cancel()

		if err := s.notifier.NotifyNewTopic(notifyCtx, topic); err != nil {
			s.logger.Warn("topic notification failed", slog.String("error", err.Error()))
		}
	}(params)

	s.cache.Invalidate(r.Context())

	submissionsTotal.WithLabelValues("accepted").Inc()
	span.SetAttributes(attribute.Int64("topic.id", id))
	s.logger.InfoContext(r.Context(), "topic submitted",
		slog.Int64("id", id),
		slog.String("priority", string(params.Priority)),
		slog.String("email", maskEmailPtr(params.Email)))

	s.writeJSON(w, r, http.StatusOK, submitResponse{Success: true, TopicID: id})
}

// ListTopicsJSON returns every submission, newest first. A store failure
// degrades to an empty list so pollers keep rendering.
func (s *TopicService) ListTopicsJSON(w http.ResponseWriter, r *http.Request) {
	topics, err := s.queries.ListTopics(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list topics failed", slog.String("error", err.Error()))
		topics = []TopicSubmission{}
	}
	if topics == nil {
		topics = []TopicSubmission{}
	}

	s.writeJSON(w, r, http.StatusOK, topics)
}

// TopicWords returns the word-frequency aggregation over all topic text.
func (s *TopicService) TopicWords(w http.ResponseWriter, r *http.Request) {
	texts, err := s.queries.ListTopicTexts(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list topic texts failed", slog.String("error", err.Error()))
		texts = nil
	}

	s.writeJSON(w, r, http.StatusOK, ComputeWordFrequencies(texts))
}

// TopicThemes serves the cached analysis when fresh, otherwise gathers the
// current topic text and asks the theme service.
func (s *TopicService) TopicThemes(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.telemetry.Tracer.Start(r.Context(), "TopicThemes")
	defer span.End()
	r = r.WithContext(ctx)

	if cached, ok := s.cache.Get(r.Context()); ok {
		span.SetAttributes(attribute.Bool("themes.cached", true))
		s.writeJSON(w, r, http.StatusOK, themesEnvelope{Themes: cached.Themes, TopicCount: cached.TopicCount})
		return
	}

	texts, err := s.queries.ListTopicTexts(r.Context())
	if err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(r.Context(), "list topic texts failed", slog.String("error", err.Error()))
		s.writeJSON(w, r, http.StatusInternalServerError, themesEnvelope{
			Themes: []Theme{}, TopicCount: 0, Error: themesFailedMessage,
		})
		return
	}

	if len(texts) == 0 {
		s.writeJSON(w, r, http.StatusOK, themesEnvelope{Themes: []Theme{}, TopicCount: 0})
		return
	}

	themes, err := s.themes.ExtractThemes(r.Context(), texts)
	if err != nil {
		themeExtractionFailures.Inc()
		span.RecordError(err)
		s.logger.ErrorContext(r.Context(), "theme extraction failed", slog.String("error", err.Error()))
		s.writeJSON(w, r, http.StatusInternalServerError, themesEnvelope{
			Themes: []Theme{}, TopicCount: 0, Error: themesFailedMessage,
		})
		return
	}

	result := CachedThemes{Themes: themes, TopicCount: len(texts)}
	s.cache.Set(r.Context(), result)

	span.SetAttributes(attribute.Int("themes.count", len(themes)))
	s.writeJSON(w, r, http.StatusOK, themesEnvelope{Themes: result.Themes, TopicCount: result.TopicCount})
}

// PurgeTopics deletes every submission. Guarded by the shared admin secret in
// the X-Admin-Key header, compared in constant time.
func (s *TopicService) PurgeTopics(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.telemetry.Tracer.Start(r.Context(), "PurgeTopics")
	defer span.End()
	r = r.WithContext(ctx)

	key := r.Header.Get("X-Admin-Key")
	if s.adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.adminKey)) != 1 {
		s.logger.WarnContext(r.Context(), "unauthorized purge attempt",
			slog.String("ip", clientIP(r)),
			slog.String("request_id", GetRequestID(r.Context())))
		s.writeJSON(w, r, http.StatusUnauthorized, purgeResponse{Success: false, Deleted: 0, Error: "Unauthorized"})
		return
	}

	deleted, err := s.queries.DeleteAllTopics(r.Context())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(r.Context(), "purge failed", slog.String("error", err.Error()))
		s.writeJSON(w, r, http.StatusInternalServerError, purgeResponse{Success: false, Deleted: 0, Error: purgeFailedMessage})
		return
	}

	topicsPurgedTotal.Add(float64(deleted))
	s.cache.Invalidate(r.Context())

	s.logger.InfoContext(r.Context(), "topics purged",
		slog.Int64("deleted", deleted),
		slog.String("request_id", GetRequestID(r.Context())))
	span.SetAttributes(attribute.Int64("topics.deleted", deleted))

	s.writeJSON(w, r, http.StatusOK, purgeResponse{Success: true, Deleted: deleted})
}

// Healthz reports store and theme-service reachability. The theme service
// being down degrades the status but keeps the instance in rotation.
func (s *TopicService) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := "ok"
	statusCode := http.StatusOK

	database := "up"
	if err := s.dbconn.Ping(ctx); err != nil {
		database = "down"
		status = "unavailable"
		statusCode = http.StatusServiceUnavailable
	}

	themeService := "up"
	if !s.themes.Healthy(ctx) {
		themeService = "down"
		if status == "ok" {
			status = "degraded"
		}
	}

	s.writeJSON(w, r, statusCode, map[string]string{
		"status":       status,
		"database":     database,
		"themeService": themeService,
	})
}

type topicTemplateData struct {
	ID          int64
	Name        string
	Topic       string
	Description template.HTML
	Priority    Priority
	CreatedAt   time.Time
}

// TopicsPage renders the submission form and the recent-topics list. The page
// script polls the JSON endpoints every 30 seconds for live updates.
func (s *TopicService) TopicsPage(w http.ResponseWriter, r *http.Request) {
	topics, err := s.queries.ListTopics(r.Context())
	if err != nil {
		if !errors.Is(err, ErrBackendUnavailable) {
			s.renderError(w, r, err, http.StatusInternalServerError)
			return
		}
		// Store down: render the page with an empty list rather than a 500.
		s.logger.ErrorContext(r.Context(), "list topics failed", slog.String("error", err.Error()))
		topics = nil
	}

	topicsParsed := make([]topicTemplateData, len(topics))
	for i, topic := range topics {
		var description template.HTML
		if topic.Description != nil {
			// nosemgrep
			description = template.HTML(sanitizeDescriptionHTML(parseMarkdownToHTML(*topic.Description)))
		}

		topicsParsed[i] = topicTemplateData{
			ID:          topic.ID,
			Name:        sanitizePlainText(topic.Name),
			Topic:       sanitizePlainText(topic.Topic),
			Description: description,
			Priority:    topic.Priority,
			CreatedAt:   topic.CreatedAt,
		}
	}

	s.renderTemplate(w, r, "topics.html", map[string]interface{}{
		"Title":   SITE_TITLE,
		"Topics":  topicsParsed,
		"Count":   len(topicsParsed),
		"Version": s.version,
		"GitSha":  s.gitSha,
	})
}

func (s *TopicService) renderTemplate(w http.ResponseWriter, r *http.Request, tmpl string, data map[string]interface{}) {
	if err := s.tmpls.ExecuteTemplate(w, tmpl, data); err != nil {
		s.logger.ErrorContext(r.Context(), err.Error())
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

func (s *TopicService) renderError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	s.logger.ErrorContext(r.Context(), err.Error())
	http.Error(w, http.StatusText(statusCode), statusCode)
}

func maskEmailPtr(email *string) string {
	if email == nil {
		return ""
	}
	return maskEmail(*email)
}
