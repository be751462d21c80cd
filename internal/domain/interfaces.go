package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository interfaces. Lookup methods that can reasonably miss return
// (nil, nil) when the row does not exist; callers treat a missing reference
// as "nothing to do", not as an error.

// BidRepository is the bid ledger. SubmitBid is the commit point: the ledger
// alone decides the persisted status of the new bid and transitions the
// previous winner.
type BidRepository interface {
	GetLotBidHistory(ctx context.Context, lotID int64) ([]*Bid, error)
	SubmitBid(ctx context.Context, bid *Bid) (*Bid, error)
}

type AuctionRepository interface {
	GetAuctionWindow(ctx context.Context, auctionID int64) (*AuctionWindow, error)
	// RecalculateStatuses advances every auction's status against the wall
	// clock in one idempotent bulk statement and reports rows changed.
	RecalculateStatuses(ctx context.Context) (int64, error)
}

type LotRepository interface {
	GetLot(ctx context.Context, lotID int64) (*Lot, error)
}

type NotificationRepository interface {
	ListRecent(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*Notification, error)
	Create(ctx context.Context, n *Notification) (int64, error)
	CreateAdmin(ctx context.Context, n *AdminNotification) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	Clear(ctx context.Context, userID int64) error
}

type FavouriteRepository interface {
	ListActive(ctx context.Context) ([]*Favourite, error)
	GetFavourite(ctx context.Context, favouriteID int64) (*Favourite, error)
	SetActive(ctx context.Context, favouriteID int64, active bool) error
}

// Cache interfaces
type HighBidCache interface {
	// UpdateHighBid records amount as the lot's high bid only if it exceeds
	// the cached amount, and reports whether the cache changed.
	UpdateHighBid(ctx context.Context, lotID int64, amount decimal.Decimal, bidderID int64) (bool, error)
	GetHighBid(ctx context.Context, lotID int64) (*LotHighBid, error)
}

type WindowCache interface {
	GetWindow(ctx context.Context, auctionID int64) (*AuctionWindow, error)
	SetWindow(ctx context.Context, window *AuctionWindow) error
}

// UserDispatcher fans an event out to every live connection of one user.
// Having no live connection is a no-op, not an error; callers treat any
// returned error as best-effort and never fail a persisted write on it.
type UserDispatcher interface {
	PushToUser(ctx context.Context, userID int64, eventName string, payload interface{}) error
}

// Event interfaces
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, event *UserEvent) error
}

type EventSubscriber interface {
	SubscribeToUserEvents(ctx context.Context, handler UserEventHandler) error
}

type UserEventHandler func(event *UserEvent) error

// Leader election interface
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}

// WebSocket interfaces
type WebSocketConnection interface {
	Send(message interface{}) error
	Close() error
	ID() string
	UserID() int64
}

type ConnectionManager interface {
	RegisterConnection(conn WebSocketConnection) error
	UnregisterConnection(userID int64, connID string) error
	GetConnectionsForUser(userID int64) []WebSocketConnection
	NotifyUser(userID int64, message interface{}) error
	CloseUserConnections(userID int64) error
}
