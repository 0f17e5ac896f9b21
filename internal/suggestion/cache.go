package suggestion

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rxreplenish/rde/internal/config"
	"github.com/rxreplenish/rde/internal/domain"
)

const (
	listKeyPrefix     = "suggestions:list"
	summaryKeyPrefix  = "suggestions:summary"
	invalidateScan    = 100
	defaultListTTL    = 30 * time.Second
	defaultSummaryTTL = 5 * time.Minute
)

// ListCache caches suggestion listings keyed by filter, invalidated
// per-store on any write. Grounded on the teacher's
// internal/cache/dashboard.go redis-backed summary cache.
type ListCache interface {
	Get(ctx context.Context, filter domain.SuggestionFilter) ([]domain.Suggestion, bool, error)
	Set(ctx context.Context, filter domain.SuggestionFilter, results []domain.Suggestion) error
	InvalidateStore(ctx context.Context, storeID uuid.UUID) error
}

type redisListCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopListCache struct{}

// NewCache builds a redis-backed ListCache, or a noop implementation
// when caching is disabled.
func NewCache(cfg config.CacheConfig) (ListCache, error) {
	if !cfg.Enabled {
		return &noopListCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.DashboardTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultListTTL
	}

	return &redisListCache{client: client, ttl: ttl}, nil
}

// NewNoopCache returns a cache that never stores anything, used in
// tests and when redis is unavailable.
func NewNoopCache() ListCache {
	return &noopListCache{}
}

func (c *redisListCache) Get(ctx context.Context, filter domain.SuggestionFilter) ([]domain.Suggestion, bool, error) {
	key := buildListKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var results []domain.Suggestion
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, false, fmt.Errorf("decode suggestion list cache: %w", err)
	}
	return results, true, nil
}

func (c *redisListCache) Set(ctx context.Context, filter domain.SuggestionFilter, results []domain.Suggestion) error {
	key := buildListKey(filter)
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode suggestion list cache: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisListCache) InvalidateStore(ctx context.Context, storeID uuid.UUID) error {
	prefix := fmt.Sprintf("%s:%s:", listKeyPrefix, storeID)

	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, prefix+"*", invalidateScan).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

func (n *noopListCache) Get(ctx context.Context, filter domain.SuggestionFilter) ([]domain.Suggestion, bool, error) {
	return nil, false, nil
}

func (n *noopListCache) Set(ctx context.Context, filter domain.SuggestionFilter, results []domain.Suggestion) error {
	return nil
}

func (n *noopListCache) InvalidateStore(ctx context.Context, storeID uuid.UUID) error {
	return nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

// SummaryCache caches the most recent generation summary per store, so
// a dashboard can show "last run" counts without re-running the
// Assembler. Grounded on the same internal/cache/dashboard.go idiom as
// ListCache, keyed by store rather than filter hash.
type SummaryCache interface {
	Get(ctx context.Context, storeID uuid.UUID) (domain.GenerationSummary, bool, error)
	Set(ctx context.Context, storeID uuid.UUID, summary domain.GenerationSummary) error
}

type redisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSummaryCache struct{}

// NewSummaryCache builds a redis-backed SummaryCache, or a noop
// implementation when caching is disabled.
func NewSummaryCache(cfg config.CacheConfig) (SummaryCache, error) {
	if !cfg.Enabled {
		return &noopSummaryCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &redisSummaryCache{client: client, ttl: defaultSummaryTTL}, nil
}

// NewNoopSummaryCache returns a cache that never stores anything, used
// in tests and when redis is unavailable.
func NewNoopSummaryCache() SummaryCache {
	return &noopSummaryCache{}
}

func (c *redisSummaryCache) Get(ctx context.Context, storeID uuid.UUID) (domain.GenerationSummary, bool, error) {
	payload, err := c.client.Get(ctx, buildSummaryKey(storeID)).Bytes()
	if err == redis.Nil {
		return domain.GenerationSummary{}, false, nil
	}
	if err != nil {
		return domain.GenerationSummary{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.GenerationSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return domain.GenerationSummary{}, false, fmt.Errorf("decode generation summary cache: %w", err)
	}
	return summary, true, nil
}

func (c *redisSummaryCache) Set(ctx context.Context, storeID uuid.UUID, summary domain.GenerationSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode generation summary cache: %w", err)
	}
	if err := c.client.Set(ctx, buildSummaryKey(storeID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopSummaryCache) Get(ctx context.Context, storeID uuid.UUID) (domain.GenerationSummary, bool, error) {
	return domain.GenerationSummary{}, false, nil
}

func (n *noopSummaryCache) Set(ctx context.Context, storeID uuid.UUID, summary domain.GenerationSummary) error {
	return nil
}

func buildSummaryKey(storeID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", summaryKeyPrefix, storeID)
}

func buildListKey(filter domain.SuggestionFilter) string {
	var parts []string
	if filter.Status != nil {
		parts = append(parts, "status="+filter.Status.String())
	}
	if filter.ProductID != nil {
		parts = append(parts, "product_id="+filter.ProductID.String())
	}
	parts = append(parts, fmt.Sprintf("page=%d", filter.Page), fmt.Sprintf("page_size=%d", filter.PageSize))

	raw := strings.Join(parts, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s:%s", listKeyPrefix, filter.StoreID, hex.EncodeToString(hash[:]))
}
