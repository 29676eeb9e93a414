package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

// themeCacheTTL matches the fastest client poll interval; a stale entry is at
// most one refresh cycle behind.
const themeCacheTTL = 30 * time.Second

const themeCacheKey = "topicboard:themes:v1"

// CachedThemes is the unit stored in the theme cache: the last successful
// analysis result for the current set of submissions.
type CachedThemes struct {
	Themes     []Theme `json:"themes"`
	TopicCount int     `json:"topicCount"`
}

// ThemeCache bounds the cost of the external analysis service under polling
// readers. Submissions and purges invalidate it so the next read observes the
// new record set.
type ThemeCache interface {
	Get(ctx context.Context) (CachedThemes, bool)
	Set(ctx context.Context, themes CachedThemes)
	Invalidate(ctx context.Context)
}

// memoryThemeCache is the default single-instance cache.
type memoryThemeCache struct {
	mu      sync.Mutex
	cached  CachedThemes
	expires time.Time
}

func NewMemoryThemeCache() ThemeCache {
	return &memoryThemeCache{}
}

func (c *memoryThemeCache) Get(ctx context.Context) (CachedThemes, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.expires.IsZero() || time.Now().After(c.expires) {
		return CachedThemes{}, false
	}
	return c.cached, true
}

func (c *memoryThemeCache) Set(ctx context.Context, themes CachedThemes) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cached = themes
	c.expires = time.Now().Add(themeCacheTTL)
}

func (c *memoryThemeCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expires = time.Time{}
}

// valkeyThemeCache shares the cached analysis across server instances. Cache
// errors are logged and treated as misses; the cache is never load-bearing.
type valkeyThemeCache struct {
	client valkey.Client
	logger *slog.Logger
}

func NewValkeyThemeCache(address string, logger *slog.Logger) (ThemeCache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:      []string{address},
		ConnWriteTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("connected to valkey", slog.String("address", address))

	return &valkeyThemeCache{client: client, logger: logger}, nil
}

func (c *valkeyThemeCache) Get(ctx context.Context) (CachedThemes, bool) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(themeCacheKey).Build()).AsBytes()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			c.logger.WarnContext(ctx, "theme cache get failed", slog.String("error", err.Error()))
		}
		return CachedThemes{}, false
	}

	var cached CachedThemes
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.logger.WarnContext(ctx, "theme cache entry corrupt", slog.String("error", err.Error()))
		return CachedThemes{}, false
	}
	return cached, true
}

func (c *valkeyThemeCache) Set(ctx context.Context, themes CachedThemes) {
	raw, err := json.Marshal(themes)
	if err != nil {
		c.logger.WarnContext(ctx, "theme cache marshal failed", slog.String("error", err.Error()))
		return
	}

	cmd := c.client.B().Set().Key(themeCacheKey).Value(string(raw)).
		Ex(themeCacheTTL).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.WarnContext(ctx, "theme cache set failed", slog.String("error", err.Error()))
	}
}

func (c *valkeyThemeCache) Invalidate(ctx context.Context) {
	cmd := c.client.B().Del().Key(themeCacheKey).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.WarnContext(ctx, "theme cache invalidate failed", slog.String("error", err.Error()))
	}
}
