package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	notifyRequestTimeout   = 10 * time.Second
	notifyDescriptionLimit = 200
)

// Notifier announces a freshly persisted submission on a side channel.
// Delivery is best effort: failures are logged by the caller and never
// surfaced to the submitter.
type Notifier interface {
	NotifyNewTopic(ctx context.Context, topic InsertTopicParams) error
}

var priorityColors = map[Priority]int{
	PriorityHigh:   0xFF6B6B,
	PriorityMedium: 0xFFD93D,
	PriorityLow:    0x6BCB77,
}

var priorityEmoji = map[Priority]string{
	PriorityHigh:   "🔴",
	PriorityMedium: "🟡",
	PriorityLow:    "🟢",
}

type webhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookFooter struct {
	Text string `json:"text"`
}

type webhookEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []webhookField `json:"fields"`
	Timestamp   string         `json:"timestamp"`
	Footer      webhookFooter  `json:"footer"`
}

type webhookMessage struct {
	Embeds []webhookEmbed `json:"embeds"`
}

// WebhookNotifier posts a Discord-shaped embed to a chat webhook. A notifier
// with an empty URL is a no-op, matching a deployment without the webhook
// configured.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewWebhookNotifier(url string, logger *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: notifyRequestTimeout},
		logger: logger,
		now:    time.Now,
	}
}

func (n *WebhookNotifier) NotifyNewTopic(ctx context.Context, topic InsertTopicParams) error {
	if n.url == "" {
		return nil
	}

	fields := make([]webhookField, 0, 3)
	if topic.Description != nil {
		fields = append(fields, webhookField{
			Name:  "Description",
			Value: truncateRunes(*topic.Description, notifyDescriptionLimit),
		})
	}
	fields = append(fields,
		webhookField{
			Name:   "Priority",
			Value:  fmt.Sprintf("%s %s", priorityEmoji[topic.Priority], topic.Priority),
			Inline: true,
		},
		webhookField{
			Name:   "Submitted by",
			Value:  topic.Name,
			Inline: true,
		},
	)

	msg := webhookMessage{
		Embeds: []webhookEmbed{{
			Title:       "📣 New Topic Submitted",
			Description: topic.Topic,
			Color:       priorityColors[topic.Priority],
			Fields:      fields,
			Timestamp:   n.now().UTC().Format(time.RFC3339),
			Footer:      webhookFooter{Text: "All The Vibes Community"},
		}},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}

	return nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
