package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vehicle-auctions/internal/domain"
	"vehicle-auctions/pkg/logger"

	"github.com/shopspring/decimal"
)

// BidService is the bid transition engine. It captures who was winning a
// lot before a new bid is committed, hands the bid to the ledger (the sole
// status authority), and drives the outbid/winning notifications from the
// resulting transition.
type BidService struct {
	bidRepo       domain.BidRepository
	lotRepo       domain.LotRepository
	notifications *NotificationService
	highBids      domain.HighBidCache
	log           logger.Logger
}

func NewBidService(
	bidRepo domain.BidRepository,
	lotRepo domain.LotRepository,
	notifications *NotificationService,
	highBids domain.HighBidCache,
	log logger.Logger,
) *BidService {
	return &BidService{
		bidRepo:       bidRepo,
		lotRepo:       lotRepo,
		notifications: notifications,
		highBids:      highBids,
		log:           log,
	}
}

// PlaceBid submits a bid for a lot and returns it with the status the
// ledger assigned. The previous-winner capture is best effort: if the
// history lookup fails the submission still proceeds, at worst missing one
// outbid notification, never duplicating one. Failures at or after the
// ledger call propagate to the caller; notification failures do not.
func (s *BidService) PlaceBid(ctx context.Context, lotID, bidderID int64, amount decimal.Decimal) (*domain.Bid, error) {
	s.log.Info("Placing bid", "lot_id", lotID, "bidder_id", bidderID, "amount", amount.StringFixed(2))

	var prevWinner *domain.Bid
	if lotID > 0 {
		history, err := s.bidRepo.GetLotBidHistory(ctx, lotID)
		if err != nil {
			s.log.Error("Failed to load bid history, proceeding without previous winner",
				"lot_id", lotID, "error", err)
		} else {
			prevWinner = CurrentWinningBid(history, lotID)
		}
	}

	bid := &domain.Bid{
		LotID:     lotID,
		CreatedBy: bidderID,
		Amount:    amount,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	placed, err := s.bidRepo.SubmitBid(ctx, bid)
	if err != nil {
		return nil, fmt.Errorf("submit bid: %w", err)
	}

	if lotID > 0 {
		s.notifyBidTransition(ctx, placed, prevWinner)
		s.refreshHighBid(ctx, placed)
	}

	return placed, nil
}

// CurrentWinningBid picks the winning bid for the lot among active bids.
// The ledger guarantees at most one, but if several qualify the most recent
// by creation time wins, ties broken by the highest id.
func CurrentWinningBid(history []*domain.Bid, lotID int64) *domain.Bid {
	var winner *domain.Bid
	for _, b := range history {
		if b.LotID != lotID || !b.Active || !strings.EqualFold(b.Status, domain.BidStatusWinning) {
			continue
		}
		if winner == nil || moreRecent(b, winner) {
			winner = b
		}
	}
	return winner
}

func moreRecent(a, b *domain.Bid) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func (s *BidService) notifyBidTransition(ctx context.Context, placed, prevWinner *domain.Bid) {
	lot, err := s.lotRepo.GetLot(ctx, placed.LotID)
	if err != nil {
		s.log.Error("Failed to load lot for bid notification", "lot_id", placed.LotID, "error", err)
		return
	}
	if lot == nil {
		// Nothing to notify against.
		return
	}

	newWinning := strings.EqualFold(placed.Status, domain.BidStatusWinning)

	if prevWinner != nil && prevWinner.CreatedBy != placed.CreatedBy && newWinning {
		_, err := s.notifications.EnsureNotified(ctx,
			prevWinner.CreatedBy, domain.NotificationBidOutbid, lot.AuctionID, placed.LotID,
			"You have been outbid",
			fmt.Sprintf("Your bid of %s on lot %d has been outbid.", prevWinner.Amount.StringFixed(2), placed.LotID),
			placed.CreatedBy)
		if err != nil {
			s.log.Error("Failed to emit outbid notification", "user_id", prevWinner.CreatedBy,
				"lot_id", placed.LotID, "error", err)
		}
	}

	if newWinning {
		_, err := s.notifications.EnsureNotified(ctx,
			placed.CreatedBy, domain.NotificationBidWinning, lot.AuctionID, placed.LotID,
			"You are the highest bidder",
			fmt.Sprintf("Your bid of %s is currently winning lot %d.", placed.Amount.StringFixed(2), placed.LotID),
			placed.CreatedBy)
		if err != nil {
			s.log.Error("Failed to emit winning notification", "user_id", placed.CreatedBy,
				"lot_id", placed.LotID, "error", err)
		}
	}
}

func (s *BidService) refreshHighBid(ctx context.Context, placed *domain.Bid) {
	if !strings.EqualFold(placed.Status, domain.BidStatusWinning) {
		return
	}
	if _, err := s.highBids.UpdateHighBid(ctx, placed.LotID, placed.Amount, placed.CreatedBy); err != nil {
		s.log.Error("Failed to refresh high bid cache", "lot_id", placed.LotID, "error", err)
	}
}

// CurrentHighBid serves the cached high bid for a lot, falling back to the
// ledger when the cache is cold.
func (s *BidService) CurrentHighBid(ctx context.Context, lotID int64) (*domain.LotHighBid, error) {
	high, err := s.highBids.GetHighBid(ctx, lotID)
	if err != nil {
		s.log.Error("Failed to read high bid cache", "lot_id", lotID, "error", err)
	}
	if high != nil {
		return high, nil
	}

	history, err := s.bidRepo.GetLotBidHistory(ctx, lotID)
	if err != nil {
		return nil, err
	}
	winner := CurrentWinningBid(history, lotID)
	if winner == nil {
		return nil, nil
	}

	high = &domain.LotHighBid{
		LotID:     lotID,
		Amount:    winner.Amount,
		BidderID:  winner.CreatedBy,
		UpdatedAt: winner.CreatedAt,
	}

	if _, err := s.highBids.UpdateHighBid(ctx, lotID, winner.Amount, winner.CreatedBy); err != nil {
		s.log.Error("Failed to warm high bid cache", "lot_id", lotID, "error", err)
	}

	return high, nil
}
