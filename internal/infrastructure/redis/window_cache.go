package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vehicle-auctions/internal/domain"

	"github.com/go-redis/redis/v8"
)

// Windows only ever change through admin edits, so a short TTL keeps the
// alerts loop from re-reading hot auctions every tick without risking
// stale boundaries.
const windowTTL = time.Minute

type RedisWindowCache struct {
	client *redis.Client
}

func NewRedisWindowCache(client *redis.Client) *RedisWindowCache {
	return &RedisWindowCache{client: client}
}

func windowKey(auctionID int64) string {
	return fmt.Sprintf("auction:%d:window", auctionID)
}

// GetWindow returns the cached window, or (nil, nil) on a miss.
func (r *RedisWindowCache) GetWindow(ctx context.Context, auctionID int64) (*domain.AuctionWindow, error) {
	result, err := r.client.Get(ctx, windowKey(auctionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var window domain.AuctionWindow
	if err := json.Unmarshal([]byte(result), &window); err != nil {
		return nil, err
	}

	return &window, nil
}

func (r *RedisWindowCache) SetWindow(ctx context.Context, window *domain.AuctionWindow) error {
	data, err := json.Marshal(window)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, windowKey(window.AuctionID), data, windowTTL).Err()
}
