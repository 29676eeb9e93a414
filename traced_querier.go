package main

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// TracedQueries decorates an AdminQuerier with spans and query-duration
// metrics. Errors pass through unchanged so callers can still match on
// ErrBackendUnavailable.
type TracedQueries struct {
	wrapped   AdminQuerier
	telemetry *TelemetryConfig
}

func NewTracedQueries(wrapped AdminQuerier, telemetry *TelemetryConfig) *TracedQueries {
	return &TracedQueries{
		wrapped:   wrapped,
		telemetry: telemetry,
	}
}

// recordMetrics is a helper method to record query duration metrics
func (t *TracedQueries) recordMetrics(ctx context.Context, queryName string, duration float64) {
	if t.telemetry.Metrics.DBQueryDuration != nil {
		t.telemetry.Metrics.DBQueryDuration.Record(ctx, duration,
			metric.WithAttributes(
				attribute.String("query", queryName),
			),
		)
	}
}

func (t *TracedQueries) InsertTopic(ctx context.Context, arg InsertTopicParams) (int64, error) {
	ctx, span := t.telemetry.Tracer.Start(ctx, "InsertTopic(query)")
	defer span.End()

	start := time.Now()
	id, err := t.wrapped.InsertTopic(ctx, arg)
	duration := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(
		attribute.Int64("topic.id", id),
		attribute.String("topic.priority", string(arg.Priority)),
		attribute.Float64("query.duration", duration),
	)

	t.recordMetrics(ctx, "InsertTopic", duration)
	span.SetStatus(codes.Ok, "")

	return id, nil
}

func (t *TracedQueries) ListTopics(ctx context.Context) ([]TopicSubmission, error) {
	ctx, span := t.telemetry.Tracer.Start(ctx, "ListTopics(query)")
	defer span.End()

	start := time.Now()
	topics, err := t.wrapped.ListTopics(ctx)
	duration := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("topic.count", len(topics)),
		attribute.Float64("query.duration", duration),
	)

	t.recordMetrics(ctx, "ListTopics", duration)
	span.SetStatus(codes.Ok, "")

	return topics, nil
}

func (t *TracedQueries) ListTopicTexts(ctx context.Context) ([]string, error) {
	ctx, span := t.telemetry.Tracer.Start(ctx, "ListTopicTexts(query)")
	defer span.End()

	start := time.Now()
	texts, err := t.wrapped.ListTopicTexts(ctx)
	duration := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("topic.count", len(texts)),
		attribute.Float64("query.duration", duration),
	)

	t.recordMetrics(ctx, "ListTopicTexts", duration)
	span.SetStatus(codes.Ok, "")

	return texts, nil
}

func (t *TracedQueries) CountTopics(ctx context.Context) (int64, error) {
	ctx, span := t.telemetry.Tracer.Start(ctx, "CountTopics(query)")
	defer span.End()

	start := time.Now()
	count, err := t.wrapped.CountTopics(ctx)
	duration := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(
		attribute.Int64("topic.count", count),
		attribute.Float64("query.duration", duration),
	)

	t.recordMetrics(ctx, "CountTopics", duration)
	span.SetStatus(codes.Ok, "")

	return count, nil
}

func (t *TracedQueries) DeleteAllTopics(ctx context.Context) (int64, error) {
	ctx, span := t.telemetry.Tracer.Start(ctx, "DeleteAllTopics(query)")
	defer span.End()

	start := time.Now()
	deleted, err := t.wrapped.DeleteAllTopics(ctx)
	duration := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(
		attribute.Int64("topic.deleted", deleted),
		attribute.Float64("query.duration", duration),
	)

	t.recordMetrics(ctx, "DeleteAllTopics", duration)
	span.SetStatus(codes.Ok, "")

	return deleted, nil
}
