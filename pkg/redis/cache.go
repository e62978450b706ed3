package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides typed JSON caching utilities
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Enabled reports whether the cache stores anything
func (c *Cache) Enabled() bool {
	return c.client != nil && c.client.Enabled()
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value; found is false on a miss
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}

	return c.client.Redis().Del(ctx, c.fullKey(key)).Err()
}

// Predefined TTLs
const (
	TTLQuote        = 1 * time.Minute // 현재가
	TTLPrices       = 6 * time.Hour   // 일봉 시계열
	TTLFundamentals = 24 * time.Hour  // 분기 실적/재무비율
)

// Common cache key generators

// SeriesKey is keyed by ticker, lookback and trading date so a new session refetches
func SeriesKey(ticker string, lookbackDays int, date string) string {
	return fmt.Sprintf("series:%s:%d:%s", strings.ToUpper(ticker), lookbackDays, date)
}

// ATHKey is keyed by date like SeriesKey
func ATHKey(ticker, date string) string {
	return fmt.Sprintf("ath:%s:%s", strings.ToUpper(ticker), date)
}

func QuoteKey(ticker string) string {
	return fmt.Sprintf("quote:%s", strings.ToUpper(ticker))
}

func FundamentalsKey(source, ticker string) string {
	return fmt.Sprintf("fundamentals:%s:%s", source, strings.ToUpper(ticker))
}
