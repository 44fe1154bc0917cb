package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Cache key construction
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err() // Delete key from Redis
}

// AccountCacheKey builds the cache key for a rider's account view
func AccountCacheKey(riderID uint) string {
	return "account:rider:" + strconv.Itoa(int(riderID))
}

// HistoryCacheKey builds the cache key for one page of a rider's transaction history
func HistoryCacheKey(riderID uint, page, pageSize int) string {
	return "txhistory:rider:" + strconv.Itoa(int(riderID)) + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
}

// InvalidateRiderCache drops the account view and the first few history pages
// for a rider after a balance mutation (simple version: delete first 5 pages)
func InvalidateRiderCache(ctx context.Context, rdb *redis.Client, riderID uint) {
	_ = DeleteCache(ctx, rdb, AccountCacheKey(riderID)) // Invalidate account cache
	for i := 1; i <= 5; i++ {
		// Delete paginated history cache entries
		_ = DeleteCache(ctx, rdb, HistoryCacheKey(riderID, i, 20))
	}
}
