package redis

import (
	"context"
	"encoding/json"
	"time"

	"vehicle-auctions/internal/domain"
	"vehicle-auctions/pkg/utils"

	"github.com/go-redis/redis/v8"
)

const userEventsChannel = "user_events"

// RedisEventPublisher publishes user events on a shared channel so every
// service instance can deliver them to its local websocket connections.
// It doubles as the core's UserDispatcher: a push is one published envelope.
type RedisEventPublisher struct {
	client *redis.Client
}

func NewRedisEventPublisher(client *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{client: client}
}

func (r *RedisEventPublisher) PublishUserEvent(ctx context.Context, event *domain.UserEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, userEventsChannel, data).Err()
}

func (r *RedisEventPublisher) PushToUser(ctx context.Context, userID int64, eventName string, payload interface{}) error {
	return r.PublishUserEvent(ctx, &domain.UserEvent{
		ID:        utils.GenerateID("evt"),
		UserID:    userID,
		Name:      eventName,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}
