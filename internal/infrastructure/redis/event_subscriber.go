package redis

import (
	"context"
	"encoding/json"

	"vehicle-auctions/internal/domain"
	"vehicle-auctions/pkg/logger"

	"github.com/go-redis/redis/v8"
)

type RedisEventSubscriber struct {
	client *redis.Client
	log    logger.Logger
}

func NewRedisEventSubscriber(client *redis.Client, log logger.Logger) *RedisEventSubscriber {
	return &RedisEventSubscriber{
		client: client,
		log:    log,
	}
}

func (r *RedisEventSubscriber) SubscribeToUserEvents(ctx context.Context, handler domain.UserEventHandler) error {
	pubsub := r.client.Subscribe(ctx, userEventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	r.log.Info("Subscribed to user events")

	for {
		select {
		case msg := <-ch:
			var event domain.UserEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.log.Error("Failed to parse user event", "payload", msg.Payload, "error", err)
				continue
			}

			if err := handler(&event); err != nil {
				r.log.Error("Failed to handle user event", "event_id", event.ID,
					"user_id", event.UserID, "error", err)
			}

		case <-ctx.Done():
			r.log.Info("User event subscriber stopped")
			return ctx.Err()
		}
	}
}
