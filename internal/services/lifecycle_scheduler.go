package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vehicle-auctions/internal/config"
	"vehicle-auctions/internal/domain"
	"vehicle-auctions/pkg/logger"

	"github.com/robfig/cron/v3"
)

// LifecycleScheduler runs the two time-driven loops: the auction status
// recalculation and the favourite lifecycle alerts. Auction timing is wall
// clock driven with no external signal, so both are fixed-interval pollers
// over idempotent, re-evaluatable predicates; firing up to one interval
// late is accepted.
//
// The loops share no mutable state. A failure or panic inside one tick is
// logged and never stops subsequent ticks. Ticks are gated on leadership so
// only one instance emits alerts.
type LifecycleScheduler struct {
	cron           *cron.Cron
	auctionRepo    domain.AuctionRepository
	lotRepo        domain.LotRepository
	favRepo        domain.FavouriteRepository
	notifications  *NotificationService
	windows        domain.WindowCache
	leaderElection domain.LeaderElection
	instanceID     string
	cfg            config.SchedulerConfig
	log            logger.Logger

	// now is replaceable so window boundaries can be tested exactly.
	now func() time.Time
}

func NewLifecycleScheduler(
	auctionRepo domain.AuctionRepository,
	lotRepo domain.LotRepository,
	favRepo domain.FavouriteRepository,
	notifications *NotificationService,
	windows domain.WindowCache,
	leaderElection domain.LeaderElection,
	instanceID string,
	cfg config.SchedulerConfig,
	log logger.Logger,
) *LifecycleScheduler {
	return &LifecycleScheduler{
		cron:           cron.New(cron.WithSeconds()),
		auctionRepo:    auctionRepo,
		lotRepo:        lotRepo,
		favRepo:        favRepo,
		notifications:  notifications,
		windows:        windows,
		leaderElection: leaderElection,
		instanceID:     instanceID,
		cfg:            cfg.Clamped(),
		log:            log,
		now:            time.Now,
	}
}

func (s *LifecycleScheduler) Start(ctx context.Context) error {
	s.log.Info("Starting lifecycle scheduler",
		"status_interval", s.cfg.StatusInterval, "alerts_interval", s.cfg.AlertsInterval)

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.cfg.StatusInterval), func() {
		s.runStatusTick(ctx)
	})
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc(fmt.Sprintf("@every %s", s.cfg.AlertsInterval), func() {
		s.runAlertsTick(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the loops and waits for a running tick to finish.
func (s *LifecycleScheduler) Stop() error {
	s.log.Info("Stopping lifecycle scheduler")
	<-s.cron.Stop().Done()
	return nil
}

func (s *LifecycleScheduler) runStatusTick(ctx context.Context) {
	defer s.recoverTick("auction status recalculation")

	if !s.isLeader(ctx) {
		return
	}

	rows, err := s.auctionRepo.RecalculateStatuses(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.log.Error("Auction status recalculation failed", "error", err)
		return
	}

	s.log.Info("Auction statuses recalculated", "rows_changed", rows)
}

func (s *LifecycleScheduler) runAlertsTick(ctx context.Context) {
	defer s.recoverTick("favourite alerts")

	if !s.isLeader(ctx) {
		return
	}

	favourites, err := s.favRepo.ListActive(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.log.Error("Failed to list active favourites", "error", err)
		return
	}

	byUser := make(map[int64][]*domain.Favourite)
	for _, fav := range favourites {
		byUser[fav.UserID] = append(byUser[fav.UserID], fav)
	}

	for userID, favs := range byUser {
		if ctx.Err() != nil {
			return
		}

		// One history load serves every favourite of this user in the tick.
		recent, err := s.notifications.RecentNotifications(ctx, userID, false, DedupScanLimit)
		if err != nil {
			s.log.Error("Failed to load recent notifications", "user_id", userID, "error", err)
			continue
		}

		for _, fav := range favs {
			recent = s.evaluateFavourite(ctx, fav, recent)
		}
	}
}

// evaluateFavourite checks the favourite's lot against the four lifecycle
// windows and emits whatever fired and has not been seen. It returns the
// recent-notification snapshot extended with anything it created, so later
// favourites of the same user dedup against this tick's own output.
func (s *LifecycleScheduler) evaluateFavourite(ctx context.Context, fav *domain.Favourite,
	recent []*domain.Notification) []*domain.Notification {

	lot, err := s.lotRepo.GetLot(ctx, fav.LotID)
	if err != nil {
		s.log.Error("Failed to load lot", "lot_id", fav.LotID, "error", err)
		return recent
	}
	if lot == nil {
		return recent
	}

	window, err := s.auctionWindow(ctx, lot.AuctionID)
	if err != nil {
		s.log.Error("Failed to load auction window", "auction_id", lot.AuctionID, "error", err)
		return recent
	}
	if window == nil || window.StartMs <= 0 || window.EndMs <= 0 {
		return recent
	}

	nowMs := s.now().UTC().UnixMilli()
	name := window.Name
	if name == "" {
		name = fmt.Sprintf("Auction %d", window.AuctionID)
	}

	// Evaluated in lifecycle order so one tick over a pathologically short
	// auction cannot emit a later state before an earlier one.
	alerts := []struct {
		ntype   string
		title   string
		message string
		fires   bool
	}{
		{
			ntype:   domain.NotificationAuctionStartingSoon,
			title:   "Auction starting soon",
			message: fmt.Sprintf("%s is starting soon. Lot %d is up.", name, fav.LotID),
			fires:   window.StartMs-s.cfg.StartingSoonWindow.Milliseconds() <= nowMs && nowMs < window.StartMs,
		},
		{
			ntype:   domain.NotificationAuctionStarted,
			title:   "Auction live",
			message: fmt.Sprintf("%s is now live. Bidding is open on lot %d.", name, fav.LotID),
			fires:   window.StartMs <= nowMs && nowMs < window.StartMs+s.cfg.StartedGraceWindow.Milliseconds(),
		},
		{
			ntype:   domain.NotificationAuctionEndingSoon,
			title:   "Auction ending soon",
			message: fmt.Sprintf("%s is ending soon. Last chance to bid on lot %d.", name, fav.LotID),
			fires:   window.EndMs-s.cfg.EndingSoonWindow.Milliseconds() <= nowMs && nowMs < window.EndMs,
		},
		{
			ntype:   domain.NotificationAuctionEnded,
			title:   "Auction ended",
			message: fmt.Sprintf("%s has ended. Lot %d is closed for bidding.", name, fav.LotID),
			fires:   nowMs >= window.EndMs,
		},
	}

	for _, alert := range alerts {
		if !alert.fires {
			continue
		}
		if AlreadyNotified(recent, alert.ntype, window.AuctionID, fav.LotID) {
			continue
		}

		n := &domain.Notification{
			UserID:    fav.UserID,
			Type:      alert.ntype,
			Title:     alert.title,
			Message:   alert.message,
			AuctionID: window.AuctionID,
			LotID:     fav.LotID,
			CreatedAt: s.now().UTC(),
		}

		if err := s.notifications.Record(ctx, n); err != nil {
			s.log.Error("Failed to record lifecycle alert", "user_id", fav.UserID,
				"type", alert.ntype, "lot_id", fav.LotID, "error", err)
			continue
		}
		recent = append(recent, n)

		admin := &domain.AdminNotification{
			AffectedUserID: fav.UserID,
			Type:           alert.ntype,
			Title:          alert.title,
			Message:        fmt.Sprintf("%s (user %d, lot %d)", alert.title, fav.UserID, fav.LotID),
			AuctionID:      window.AuctionID,
			LotID:          fav.LotID,
			CreatedAt:      s.now().UTC(),
		}
		if err := s.notifications.RecordAdmin(ctx, admin); err != nil {
			s.log.Error("Failed to mirror lifecycle alert", "type", alert.ntype,
				"auction_id", window.AuctionID, "error", err)
		}
	}

	return recent
}

func (s *LifecycleScheduler) auctionWindow(ctx context.Context, auctionID int64) (*domain.AuctionWindow, error) {
	window, err := s.windows.GetWindow(ctx, auctionID)
	if err != nil {
		s.log.Error("Window cache read failed", "auction_id", auctionID, "error", err)
	}
	if window != nil {
		return window, nil
	}

	window, err = s.auctionRepo.GetAuctionWindow(ctx, auctionID)
	if err != nil || window == nil {
		return nil, err
	}

	if err := s.windows.SetWindow(ctx, window); err != nil {
		s.log.Error("Window cache write failed", "auction_id", auctionID, "error", err)
	}

	return window, nil
}

func (s *LifecycleScheduler) isLeader(ctx context.Context) bool {
	isLeader, err := s.leaderElection.IsLeader(ctx, s.instanceID)
	if err != nil {
		s.log.Error("Leadership check failed, skipping tick", "error", err)
		return false
	}
	return isLeader
}

func (s *LifecycleScheduler) recoverTick(loop string) {
	if r := recover(); r != nil {
		s.log.Error("Scheduler tick panicked", "loop", loop, "panic", r)
	}
}
