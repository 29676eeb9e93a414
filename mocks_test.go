package main

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace/noop"
)

type MockQueries struct {
	InsertTopicFunc     func(ctx context.Context, arg InsertTopicParams) (int64, error)
	ListTopicsFunc      func(ctx context.Context) ([]TopicSubmission, error)
	ListTopicTextsFunc  func(ctx context.Context) ([]string, error)
	CountTopicsFunc     func(ctx context.Context) (int64, error)
	DeleteAllTopicsFunc func(ctx context.Context) (int64, error)

	mu          sync.Mutex
	insertCalls int
	deleteCalls int
}

func (m *MockQueries) InsertTopic(ctx context.Context, arg InsertTopicParams) (int64, error) {
	m.mu.Lock()
	m.insertCalls++
	m.mu.Unlock()

	if m.InsertTopicFunc != nil {
		return m.InsertTopicFunc(ctx, arg)
	}

	return 1, nil
}

func (m *MockQueries) ListTopics(ctx context.Context) ([]TopicSubmission, error) {
	if m.ListTopicsFunc != nil {
		return m.ListTopicsFunc(ctx)
	}

	email := "mock@example.com"
	description := "A mock description"

	return []TopicSubmission{
		{
			ID:        2,
			Name:      "Mock Submitter",
			Email:     &email,
			Topic:     "Advanced TypeScript patterns",
			Priority:  PriorityHigh,
			CreatedAt: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:          1,
			Name:        AnonymousName,
			Topic:       "typescript tips and tricks",
			Description: &description,
			Priority:    PriorityMedium,
			CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}, nil
}

func (m *MockQueries) ListTopicTexts(ctx context.Context) ([]string, error) {
	if m.ListTopicTextsFunc != nil {
		return m.ListTopicTextsFunc(ctx)
	}

	return []string{"Advanced TypeScript patterns", "typescript tips and tricks"}, nil
}

func (m *MockQueries) CountTopics(ctx context.Context) (int64, error) {
	if m.CountTopicsFunc != nil {
		return m.CountTopicsFunc(ctx)
	}

	return 2, nil
}

func (m *MockQueries) DeleteAllTopics(ctx context.Context) (int64, error) {
	m.mu.Lock()
	m.deleteCalls++
	m.mu.Unlock()

	if m.DeleteAllTopicsFunc != nil {
		return m.DeleteAllTopicsFunc(ctx)
	}

	return 2, nil
}

func (m *MockQueries) InsertCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertCalls
}

func (m *MockQueries) DeleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteCalls
}

type MockNotifier struct {
	NotifyNewTopicFunc func(ctx context.Context, topic InsertTopicParams) error

	mu    sync.Mutex
	calls int
}

func (m *MockNotifier) NotifyNewTopic(ctx context.Context, topic InsertTopicParams) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.NotifyNewTopicFunc != nil {
		return m.NotifyNewTopicFunc(ctx, topic)
	}

	return nil
}

func (m *MockNotifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type MockThemeCache struct {
	GetFunc func(ctx context.Context) (CachedThemes, bool)
	SetFunc func(ctx context.Context, themes CachedThemes)

	mu              sync.Mutex
	setCalls        int
	invalidateCalls int
}

func (m *MockThemeCache) Get(ctx context.Context) (CachedThemes, bool) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}

	return CachedThemes{}, false
}

func (m *MockThemeCache) Set(ctx context.Context, themes CachedThemes) {
	m.mu.Lock()
	m.setCalls++
	m.mu.Unlock()

	if m.SetFunc != nil {
		m.SetFunc(ctx, themes)
	}
}

func (m *MockThemeCache) Invalidate(ctx context.Context) {
	m.mu.Lock()
	m.invalidateCalls++
	m.mu.Unlock()
}

func (m *MockThemeCache) InvalidateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invalidateCalls
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTelemetry() *TelemetryConfig {
	return &TelemetryConfig{
		Tracer: noop.NewTracerProvider().Tracer("test"),
	}
}

func newTestService(queries AdminQuerier, themes *ThemeClient, cache ThemeCache, notifier Notifier) *TopicService {
	logger := newTestLogger()

	if themes == nil {
		themes = NewThemeClient("http://theme-service.invalid", logger)
	}
	if cache == nil {
		cache = &MockThemeCache{}
	}
	if notifier == nil {
		notifier = &MockNotifier{}
	}

	return NewTopicService(
		logger,
		nil,
		queries,
		setupTemplates(),
		themes,
		cache,
		notifier,
		"test-admin-key",
		"test",
		"test",
		newTestTelemetry(),
	)
}
