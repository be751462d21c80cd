package services

import (
	"context"
	"strings"
	"time"

	"vehicle-auctions/internal/domain"
	"vehicle-auctions/pkg/logger"
)

// DedupScanLimit is how many of a user's most recent notifications are
// scanned before emitting a new one. Anything older than the window may be
// re-notified; that is the accepted trade for not locking the history.
const DedupScanLimit = 200

// NotificationService is the deduplication guard in front of the
// notification store and the real-time dispatcher. Both the bid engine and
// the lifecycle scheduler emit through it, possibly concurrently; the
// check-then-write pair is deliberately not atomic (see EnsureNotified).
type NotificationService struct {
	notifRepo  domain.NotificationRepository
	dispatcher domain.UserDispatcher
	log        logger.Logger
}

func NewNotificationService(
	notifRepo domain.NotificationRepository,
	dispatcher domain.UserDispatcher,
	log logger.Logger,
) *NotificationService {
	return &NotificationService{
		notifRepo:  notifRepo,
		dispatcher: dispatcher,
		log:        log,
	}
}

// EnsureNotified creates and pushes a notification unless an equal one
// (type case-insensitive, same auction and lot) already exists in the
// user's recent history. Returns true when a new notification was created.
//
// The history read and the write are two steps with no lock between them:
// a truly concurrent emitter can produce a duplicate. Notifications are
// advisory, so rare duplicates are tolerated over serializing every caller.
func (s *NotificationService) EnsureNotified(ctx context.Context, userID int64, ntype string,
	auctionID, lotID int64, title, message string, createdBy int64) (bool, error) {

	recent, err := s.notifRepo.ListRecent(ctx, userID, false, DedupScanLimit)
	if err != nil {
		return false, err
	}

	if AlreadyNotified(recent, ntype, auctionID, lotID) {
		return false, nil
	}

	n := &domain.Notification{
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Message:   message,
		AuctionID: auctionID,
		LotID:     lotID,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.Record(ctx, n); err != nil {
		return false, err
	}

	return true, nil
}

// AlreadyNotified reports whether recent contains a notification of the
// same type for the same (auction, lot) pair. Type matching is
// case-insensitive because historical rows were written with mixed casing.
func AlreadyNotified(recent []*domain.Notification, ntype string, auctionID, lotID int64) bool {
	for _, n := range recent {
		if strings.EqualFold(n.Type, ntype) && n.AuctionID == auctionID && n.LotID == lotID {
			return true
		}
	}
	return false
}

// Record persists the notification and pushes it to the user's live
// connections. The push is best effort: a dispatch failure is logged and
// never surfaces to the caller once the write succeeded.
func (s *NotificationService) Record(ctx context.Context, n *domain.Notification) error {
	id, err := s.notifRepo.Create(ctx, n)
	if err != nil {
		return err
	}
	n.ID = id

	if err := s.dispatcher.PushToUser(ctx, n.UserID, domain.EventNotificationCreated, n); err != nil {
		s.log.Error("Failed to push notification", "user_id", n.UserID,
			"notification_id", n.ID, "type", n.Type, "error", err)
	}

	return nil
}

// RecordAdmin mirrors a notification into the global operator feed.
func (s *NotificationService) RecordAdmin(ctx context.Context, n *domain.AdminNotification) error {
	id, err := s.notifRepo.CreateAdmin(ctx, n)
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

// RecentNotifications is the read passthrough used by the API and by the
// alerts loop, which loads one snapshot per user per tick.
func (s *NotificationService) RecentNotifications(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	if limit <= 0 || limit > DedupScanLimit {
		limit = DedupScanLimit
	}
	return s.notifRepo.ListRecent(ctx, userID, unreadOnly, limit)
}

// Mark-read and clear operations are passthroughs to the store.

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.notifRepo.MarkRead(ctx, userID, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.notifRepo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Clear(ctx context.Context, userID int64) error {
	return s.notifRepo.Clear(ctx, userID)
}
