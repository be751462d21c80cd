package services

import (
	"context"
	"errors"
	"fmt"

	"vehicle-auctions/internal/domain"
	"vehicle-auctions/pkg/logger"
)

var (
	ErrFavouriteNotFound = errors.New("favourite not found")
	ErrFavouriteNotOwned = errors.New("favourite does not belong to user")
)

// FavouriteService toggles favourites and emits the matching notification
// and real-time event. A toggle is already a discrete user action, so the
// notification is unconditional, but it still goes through the dedup guard
// for uniform delivery semantics.
type FavouriteService struct {
	favRepo       domain.FavouriteRepository
	lotRepo       domain.LotRepository
	notifications *NotificationService
	dispatcher    domain.UserDispatcher
	log           logger.Logger
}

func NewFavouriteService(
	favRepo domain.FavouriteRepository,
	lotRepo domain.LotRepository,
	notifications *NotificationService,
	dispatcher domain.UserDispatcher,
	log logger.Logger,
) *FavouriteService {
	return &FavouriteService{
		favRepo:       favRepo,
		lotRepo:       lotRepo,
		notifications: notifications,
		dispatcher:    dispatcher,
		log:           log,
	}
}

// Toggle flips the favourite's active flag and reports whether the toggle
// was applied. Notification side effects are best effort and never fail a
// toggle that persisted.
func (s *FavouriteService) Toggle(ctx context.Context, favouriteID int64, active bool, userID int64) (bool, error) {
	fav, err := s.favRepo.GetFavourite(ctx, favouriteID)
	if err != nil {
		return false, err
	}
	if fav == nil {
		return false, ErrFavouriteNotFound
	}
	if fav.UserID != userID {
		return false, ErrFavouriteNotOwned
	}

	if err := s.favRepo.SetActive(ctx, favouriteID, active); err != nil {
		return false, err
	}

	s.notifyToggle(ctx, fav, active, userID)
	return true, nil
}

func (s *FavouriteService) notifyToggle(ctx context.Context, fav *domain.Favourite, active bool, userID int64) {
	lot, err := s.lotRepo.GetLot(ctx, fav.LotID)
	if err != nil {
		s.log.Error("Failed to load lot for favourite notification",
			"favourite_id", fav.ID, "lot_id", fav.LotID, "error", err)
		return
	}
	if lot == nil {
		// Lot is gone; nothing to notify against.
		return
	}

	ntype := domain.NotificationFavouriteAdded
	event := domain.EventFavouriteAdded
	title := "Favourite added"
	message := fmt.Sprintf("Lot %d has been added to your favourites.", fav.LotID)
	if !active {
		ntype = domain.NotificationFavouriteDeactivated
		event = domain.EventFavouriteDeactivated
		title = "Favourite removed"
		message = fmt.Sprintf("Lot %d has been removed from your favourites.", fav.LotID)
	}

	if _, err := s.notifications.EnsureNotified(ctx, userID, ntype,
		lot.AuctionID, fav.LotID, title, message, userID); err != nil {
		s.log.Error("Failed to emit favourite notification", "favourite_id", fav.ID,
			"user_id", userID, "error", err)
	}

	payload := map[string]interface{}{
		"favourite_id": fav.ID,
		"lot_id":       fav.LotID,
		"active":       active,
	}
	if err := s.dispatcher.PushToUser(ctx, userID, event, payload); err != nil {
		s.log.Error("Failed to push favourite event", "favourite_id", fav.ID,
			"user_id", userID, "event", event, "error", err)
	}
}
