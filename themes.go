package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrAnalysisUnavailable marks theme service failures. The read path renders
// a fallback instead of propagating the failure to the visitor.
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

const themeRequestTimeout = 30 * time.Second

// Theme is a named cluster of semantically related submissions, produced by
// the external analysis service. Derived, never persisted.
type Theme struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	RelatedTopics []int64 `json:"related_topics"`
}

type themeRequest struct {
	Topics []string `json:"topics"`
}

type themeResponse struct {
	Themes []Theme `json:"themes"`
}

// ThemeClient talks to the external theme-extraction service. The service is
// a black box: POST a list of topic strings, get back clusters.
type ThemeClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewThemeClient(baseURL string, logger *slog.Logger) *ThemeClient {
	return &ThemeClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: themeRequestTimeout},
		logger:  logger,
	}
}

// ExtractThemes sends all current topic texts to the analysis service. Empty
// input short-circuits without a network call. At most one attempt is made
// per call; no retries.
func (c *ThemeClient) ExtractThemes(ctx context.Context, topics []string) ([]Theme, error) {
	if len(topics) == 0 {
		return []Theme{}, nil
	}

	body, err := json.Marshal(themeRequest{Topics: topics})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrAnalysisUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/themes", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrAnalysisUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: theme service returned %d: %s", ErrAnalysisUnavailable, resp.StatusCode, detail)
	}

	var parsed themeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrAnalysisUnavailable, err)
	}

	c.logger.DebugContext(ctx, "extracted themes",
		slog.Int("topics", len(topics)),
		slog.Int("themes", len(parsed.Themes)),
		slog.Duration("elapsed", time.Since(start)))

	if parsed.Themes == nil {
		parsed.Themes = []Theme{}
	}

	return parsed.Themes, nil
}

// Healthy probes the theme service's health endpoint. Used by /healthz only;
// the read path never gates on it.
func (c *ThemeClient) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
