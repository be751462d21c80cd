package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Auction struct {
	ID           int64
	Name         string
	StartTime    time.Time
	EndTime      time.Time
	Status       AuctionStatus
	BidIncrement decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AuctionStatus int

const (
	AuctionDraft AuctionStatus = iota
	AuctionScheduled
	AuctionLive
	AuctionEnded
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionDraft:
		return "draft"
	case AuctionScheduled:
		return "scheduled"
	case AuctionLive:
		return "live"
	case AuctionEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// AuctionWindow is the snapshot of an auction's time window read once per
// evaluation cycle. Start and end travel as UTC epoch milliseconds; a value
// of zero or less means the window has not been populated yet.
type AuctionWindow struct {
	AuctionID int64         `json:"auction_id"`
	Name      string        `json:"name"`
	StartMs   int64         `json:"start_ms"`
	EndMs     int64         `json:"end_ms"`
	Status    AuctionStatus `json:"status"`
}

// Lot is an inventory item attached to one auction window. Its status is
// derived from the parent auction.
type Lot struct {
	ID           int64
	AuctionID    int64
	InventoryID  int64
	Status       AuctionStatus
	BuyNowPrice  decimal.NullDecimal
	ReservePrice decimal.NullDecimal
	CreatedAt    time.Time
}

// Bid statuses as persisted by the ledger. The ledger is the sole authority
// for these; matching is always case-insensitive.
const (
	BidStatusWinning = "Winning"
	BidStatusOutbid  = "Outbid"
)

type Bid struct {
	ID        int64           `json:"id"`
	LotID     int64           `json:"lot_id"`
	CreatedBy int64           `json:"created_by"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// Notification type tags. These are persisted and matched during
// deduplication, so they must stay stable.
const (
	NotificationBidOutbid            = "bid-outbid"
	NotificationBidWinning           = "bid-winning"
	NotificationFavouriteAdded       = "favourite-added"
	NotificationFavouriteDeactivated = "favourite-deactivated"
	NotificationAuctionStartingSoon  = "auction-starting-soon"
	NotificationAuctionStarted       = "auction-started"
	NotificationAuctionEndingSoon    = "auction-ending-soon"
	NotificationAuctionEnded         = "auction-ended"
)

// Notification is a persisted per-user alert. AuctionID and LotID are zero
// when the notification is not scoped to an auction or lot.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	AuctionID int64     `json:"auction_id,omitempty"`
	LotID     int64     `json:"lot_id,omitempty"`
	CreatedBy int64     `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminNotification is the global mirror of a Notification, kept for
// operational visibility. AffectedUserID is the user the mirrored
// notification was delivered to, zero when not applicable.
type AdminNotification struct {
	ID             int64     `json:"id"`
	AffectedUserID int64     `json:"affected_user_id,omitempty"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	IsRead         bool      `json:"is_read"`
	AuctionID      int64     `json:"auction_id,omitempty"`
	LotID          int64     `json:"lot_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Favourite struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	LotID     int64     `json:"lot_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Real-time event names pushed to user connections. Existing clients match
// on these strings verbatim.
const (
	EventNotificationCreated  = "NotificationCreated"
	EventFavouriteAdded       = "FavouriteAdded"
	EventFavouriteDeactivated = "FavouriteDeactivated"
)

// UserEvent is the envelope published on the fan-out channel and delivered
// to every live connection of the target user.
type UserEvent struct {
	ID        string      `json:"id"`
	UserID    int64       `json:"user_id"`
	Name      string      `json:"name"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// LotHighBid is the cached current high bid for a lot, maintained after
// ledger commits and served on the read path.
type LotHighBid struct {
	LotID     int64           `json:"lot_id"`
	Amount    decimal.Decimal `json:"amount"`
	BidderID  int64           `json:"bidder_id"`
	UpdatedAt time.Time       `json:"updated_at"`
}
