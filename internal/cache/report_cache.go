package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wearella/marketpulse/internal/config"
	"github.com/wearella/marketpulse/internal/domain"
)

const (
	summaryKeyPrefix    = "report:summary"
	projectionKeyPrefix = "report:projection"
	scanBatchSize       = 100

	defaultSummaryTTL = time.Minute
	// Projections are invalidated on every write like summaries, but cost a
	// full engine run to rebuild; their TTL is a longer backstop.
	projectionTTLFactor = 5
)

// ReportCache fronts the computed dashboard summary and projection
// responses. Writes through the upload path invalidate everything; the
// rollups are cheap enough to rebuild on the next read.
type ReportCache interface {
	GetSummary(ctx context.Context, filter domain.RecordFilter) (*domain.DashboardSummary, bool, error)
	SetSummary(ctx context.Context, filter domain.RecordFilter, summary *domain.DashboardSummary) error
	GetProjection(ctx context.Context, sku string, horizonDays int, platform domain.Platform) (*domain.ProjectionResult, bool, error)
	SetProjection(ctx context.Context, sku string, horizonDays int, platform domain.Platform, result *domain.ProjectionResult) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client        *redis.Client
	summaryTTL    time.Duration
	projectionTTL time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, err := dialRedis(cfg)
	if err != nil {
		return nil, err
	}

	summaryTTL, projectionTTL := cacheTTLs(cfg.ReportTTLSeconds)
	return &redisReportCache{
		client:        client,
		summaryTTL:    summaryTTL,
		projectionTTL: projectionTTL,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func dialRedis(cfg config.CacheConfig) (*redis.Client, error) {
	var opts *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		host := cfg.RedisHost
		if host == "" {
			host = "127.0.0.1"
		}
		port := cfg.RedisPort
		if port == "" {
			port = "6379"
		}
		opts = &redis.Options{
			Addr:     net.JoinHostPort(host, port),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// cacheTTLs derives the per-prefix expirations from the configured report
// TTL (seconds; <=0 falls back to the default).
func cacheTTLs(reportTTLSeconds int) (summary, projection time.Duration) {
	summary = time.Duration(reportTTLSeconds) * time.Second
	if summary <= 0 {
		summary = defaultSummaryTTL
	}
	return summary, summary * projectionTTLFactor
}

func (c *redisReportCache) GetSummary(ctx context.Context, filter domain.RecordFilter) (*domain.DashboardSummary, bool, error) {
	var summary domain.DashboardSummary
	found, err := c.get(ctx, buildSummaryKey(filter), &summary)
	if !found || err != nil {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *redisReportCache) SetSummary(ctx context.Context, filter domain.RecordFilter, summary *domain.DashboardSummary) error {
	return c.set(ctx, buildSummaryKey(filter), summary, c.summaryTTL)
}

func (c *redisReportCache) GetProjection(ctx context.Context, sku string, horizonDays int, platform domain.Platform) (*domain.ProjectionResult, bool, error) {
	var result domain.ProjectionResult
	found, err := c.get(ctx, buildProjectionKey(sku, horizonDays, platform), &result)
	if !found || err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *redisReportCache) SetProjection(ctx context.Context, sku string, horizonDays int, platform domain.Platform, result *domain.ProjectionResult) error {
	return c.set(ctx, buildProjectionKey(sku, horizonDays, platform), result, c.projectionTTL)
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	if err := c.scanDelete(ctx, summaryKeyPrefix); err != nil {
		return err
	}
	return c.scanDelete(ctx, projectionKeyPrefix)
}

// scanDelete removes every key under the prefix in SCAN batches, never
// blocking redis on one large KEYS sweep.
func (c *redisReportCache) scanDelete(ctx context.Context, prefix string) error {
	var cursor uint64
	pattern := prefix + "*"
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
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
			return nil
		}
	}
}

func (c *redisReportCache) get(ctx context.Context, key string, out any) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode report cache entry: %w", err)
	}
	return true, nil
}

func (c *redisReportCache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopReportCache) GetSummary(ctx context.Context, filter domain.RecordFilter) (*domain.DashboardSummary, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetSummary(ctx context.Context, filter domain.RecordFilter, summary *domain.DashboardSummary) error {
	return nil
}

func (n *noopReportCache) GetProjection(ctx context.Context, sku string, horizonDays int, platform domain.Platform) (*domain.ProjectionResult, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetProjection(ctx context.Context, sku string, horizonDays int, platform domain.Platform, result *domain.ProjectionResult) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildSummaryKey(filter domain.RecordFilter) string {
	var parts []string
	if filter.Platform != "" {
		parts = append(parts, "platform="+string(filter.Platform))
	}
	if filter.ReportType != "" {
		parts = append(parts, "report_type="+string(filter.ReportType))
	}
	if !filter.From.IsZero() {
		parts = append(parts, "from="+filter.From.Format(domain.DateRangeLayout))
	}
	if !filter.To.IsZero() {
		parts = append(parts, "to="+filter.To.Format(domain.DateRangeLayout))
	}
	if filter.Limit > 0 {
		parts = append(parts, "limit="+strconv.Itoa(filter.Limit))
	}

	if len(parts) == 0 {
		return summaryKeyPrefix + ":default"
	}
	return summaryKeyPrefix + ":" + hashParts(parts)
}

func buildProjectionKey(sku string, horizonDays int, platform domain.Platform) string {
	parts := []string{
		"sku=" + strings.ToLower(sku),
		"horizon=" + strconv.Itoa(horizonDays),
		"platform=" + string(platform),
	}
	return projectionKeyPrefix + ":" + hashParts(parts)
}

func hashParts(parts []string) string {
	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}
