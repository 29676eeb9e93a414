package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrBackendUnavailable marks store connectivity/config failures so callers
// can degrade (read path) or return a generic message (write path) without
// leaking backend detail to clients.
var ErrBackendUnavailable = errors.New("backend unavailable")

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TopicSubmission is the one persistent entity. Rows are append-only: created
// through the submission pipeline, never updated, removed only by a full purge.
type TopicSubmission struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email"`
	Topic       string    `json:"topic"`
	Description *string   `json:"description"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

type InsertTopicParams struct {
	Name        string
	Email       *string
	Topic       string
	Description *string
	Priority    Priority
}

// Querier is the restricted capability tier used by the submission and read
// paths: insert and select only.
type Querier interface {
	InsertTopic(ctx context.Context, arg InsertTopicParams) (int64, error)
	ListTopics(ctx context.Context) ([]TopicSubmission, error)
	ListTopicTexts(ctx context.Context) ([]string, error)
	CountTopics(ctx context.Context) (int64, error)
}

// AdminQuerier adds the privileged bulk delete used by the purge endpoint and
// the clear-topics CLI.
type AdminQuerier interface {
	Querier
	DeleteAllTopics(ctx context.Context) (int64, error)
}

const (
	insertTopic = `INSERT INTO topic_requests (name, email, topic, description, priority)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	listTopics = `SELECT id, name, email, topic, description, priority, created_at
FROM topic_requests
ORDER BY created_at DESC, id DESC`

	listTopicTexts = `SELECT topic FROM topic_requests ORDER BY created_at DESC, id DESC`

	countTopics = `SELECT count(*) FROM topic_requests`

	deleteAllTopics = `DELETE FROM topic_requests`
)

// TopicQueries is the pgx-backed store.
type TopicQueries struct {
	db *pgxpool.Pool
}

func NewTopicQueries(db *pgxpool.Pool) *TopicQueries {
	return &TopicQueries{db: db}
}

// InsertTopic appends a validated submission. id and created_at are assigned
// by the database; caller-supplied values for either are never consulted.
func (q *TopicQueries) InsertTopic(ctx context.Context, arg InsertTopicParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, insertTopic,
		arg.Name, arg.Email, arg.Topic, arg.Description, arg.Priority,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert topic: %v", ErrBackendUnavailable, err)
	}
	return id, nil
}

// ListTopics returns every submission, newest first. Ties on created_at fall
// back to id descending so insertion order is preserved.
func (q *TopicQueries) ListTopics(ctx context.Context) ([]TopicSubmission, error) {
	rows, err := q.db.Query(ctx, listTopics)
	if err != nil {
		return nil, fmt.Errorf("%w: list topics: %v", ErrBackendUnavailable, err)
	}
	defer rows.Close()

	var topics []TopicSubmission
	for rows.Next() {
		var t TopicSubmission
		if err := rows.Scan(&t.ID, &t.Name, &t.Email, &t.Topic, &t.Description, &t.Priority, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan topic: %v", ErrBackendUnavailable, err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list topics: %v", ErrBackendUnavailable, err)
	}
	return topics, nil
}

// ListTopicTexts returns just the topic text of every submission, newest
// first. This is the input to word-frequency and theme analysis.
func (q *TopicQueries) ListTopicTexts(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listTopicTexts)
	if err != nil {
		return nil, fmt.Errorf("%w: list topic texts: %v", ErrBackendUnavailable, err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("%w: scan topic text: %v", ErrBackendUnavailable, err)
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list topic texts: %v", ErrBackendUnavailable, err)
	}
	return texts, nil
}

func (q *TopicQueries) CountTopics(ctx context.Context) (int64, error) {
	var count int64
	if err := q.db.QueryRow(ctx, countTopics).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count topics: %v", ErrBackendUnavailable, err)
	}
	return count, nil
}

// DeleteAllTopics removes every submission and reports how many rows existed
// immediately before the delete. An insert landing between the count and the
// delete skews the reported number; that race is accepted.
func (q *TopicQueries) DeleteAllTopics(ctx context.Context) (int64, error) {
	count, err := q.CountTopics(ctx)
	if err != nil {
		return 0, err
	}

	if _, err := q.db.Exec(ctx, deleteAllTopics); err != nil {
		return 0, fmt.Errorf("%w: delete all topics: %v", ErrBackendUnavailable, err)
	}

	return count, nil
}
