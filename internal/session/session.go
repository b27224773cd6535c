package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"profilingpoll/internal/config"
)

// Visitor sessions map an anonymous visitor id to the id of their
// in-progress walkthrough, so a returning visitor resumes instead of
// starting over. Entries expire after the configured TTL.

const visitorKeyFmt = "visitor:%s"

func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func SetWalkthrough(rdb *redis.Client, visitorID string, walkthroughID uint, ttl time.Duration) error {
	ctx := context.Background()
	key := fmt.Sprintf(visitorKeyFmt, visitorID)
	return rdb.Set(ctx, key, strconv.FormatUint(uint64(walkthroughID), 10), ttl).Err()
}

func GetWalkthrough(rdb *redis.Client, visitorID string) (uint, error) {
	ctx := context.Background()
	key := fmt.Sprintf(visitorKeyFmt, visitorID)
	val, err := rdb.Get(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func DeleteWalkthrough(rdb *redis.Client, visitorID string) error {
	ctx := context.Background()
	key := fmt.Sprintf(visitorKeyFmt, visitorID)
	return rdb.Del(ctx, key).Err()
}

// ActiveVisitorCount returns the number of visitors with a live session.
func ActiveVisitorCount(rdb *redis.Client) (int, error) {
	ctx := context.Background()
	var cursor uint64
	count := 0
	for {
		keys, newCursor, err := rdb.Scan(ctx, cursor, "visitor:*", 100).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		if newCursor == 0 {
			break
		}
		cursor = newCursor
	}
	return count, nil
}
