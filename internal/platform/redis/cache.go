// Package redis provides a Redis-backed cache for finished translations.
// The cache is an optimization only: a miss or a Redis outage degrades to
// running the translation, never to a user-visible failure.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hanseo/rosetta-api/internal/config"
	"github.com/hanseo/rosetta-api/internal/domain"
)

// DefaultTTL is how long a cached translation stays valid.
const DefaultTTL = time.Hour

// CachedTranslation is the stored payload for one finished translation.
type CachedTranslation struct {
	DetectedLang domain.LanguageCode `json:"detected_lang"`
	Text         string              `json:"text"`
}

// Cache stores finished translations keyed by the request content.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache creates a cache from configuration and verifies connectivity.
func NewCache(cfg config.RedisConfig, logger *slog.Logger) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "translation_cache")),
	}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// Get returns the cached translation for a request, or false on a miss.
// Redis errors are logged and reported as a miss.
func (c *Cache) Get(ctx context.Context, req domain.TranslationRequest) (CachedTranslation, bool) {
	data, err := c.rdb.Get(ctx, cacheKey(req)).Bytes()
	if errors.Is(err, redis.Nil) {
		return CachedTranslation{}, false
	}
	if err != nil {
		c.logger.Warn("cache read failed", slog.String("error", err.Error()))
		return CachedTranslation{}, false
	}

	var cached CachedTranslation
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Warn("cache entry is corrupt, dropping it", slog.String("error", err.Error()))
		_ = c.rdb.Del(ctx, cacheKey(req)).Err()
		return CachedTranslation{}, false
	}
	return cached, true
}

// Set stores a finished translation. Failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, req domain.TranslationRequest, result CachedTranslation) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("failed to marshal cache entry", slog.String("error", err.Error()))
		return
	}

	if err := c.rdb.Set(ctx, cacheKey(req), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", slog.String("error", err.Error()))
	}
}

// cacheKey derives a stable key from the request content. Hashing keeps
// arbitrary user text out of the Redis keyspace.
func cacheKey(req domain.TranslationRequest) string {
	sum := sha256.Sum256([]byte(
		string(req.SourceLang) + "|" + string(req.TargetLang) + "|" + req.Text,
	))
	return "translation:" + hex.EncodeToString(sum[:])
}
