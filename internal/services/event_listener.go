package services

import (
	"context"

	"vehicle-auctions/internal/domain"
	"vehicle-auctions/pkg/logger"
)

// EventListener bridges the shared user-event channel to this instance's
// websocket connections. Every instance runs one; whichever instance holds
// the user's connections delivers, the rest no-op.
type EventListener struct {
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewEventListener(connManager domain.ConnectionManager, log logger.Logger) *EventListener {
	return &EventListener{
		connManager: connManager,
		log:         log,
	}
}

func (el *EventListener) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	el.log.Info("Starting user event listener")
	return subscriber.SubscribeToUserEvents(ctx, el.handleUserEvent)
}

func (el *EventListener) handleUserEvent(event *domain.UserEvent) error {
	return el.connManager.NotifyUser(event.UserID, map[string]interface{}{
		"event": event.Name,
		"data":  event.Payload,
	})
}
