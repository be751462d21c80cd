package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"vehicle-auctions/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestEnsureNotified_CreatesThenDedups(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	dispatcher := &fakeDispatcher{}
	svc := NewNotificationService(notifRepo, dispatcher, testLogger{})

	created, err := svc.EnsureNotified(context.Background(),
		100, domain.NotificationAuctionStartingSoon, 5, 10, "Auction starting soon", "Auction 5 starts in 15 minutes.", 0)
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.EnsureNotified(context.Background(),
		100, domain.NotificationAuctionStartingSoon, 5, 10, "Auction starting soon", "Auction 5 starts in 15 minutes.", 0)
	require.NoError(t, err)
	require.False(t, created)

	require.Len(t, notifRepo.ofType(100, domain.NotificationAuctionStartingSoon), 1)
	require.Len(t, dispatcher.events(domain.EventNotificationCreated), 1)
}

func TestEnsureNotified_TypeMatchIsCaseInsensitive(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	svc := NewNotificationService(notifRepo, &fakeDispatcher{}, testLogger{})

	_, err := notifRepo.Create(context.Background(), &domain.Notification{
		UserID:    100,
		Type:      "Bid-Outbid",
		AuctionID: 5,
		LotID:     10,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	created, err := svc.EnsureNotified(context.Background(),
		100, domain.NotificationBidOutbid, 5, 10, "You have been outbid", "outbid", 200)
	require.NoError(t, err)
	require.False(t, created)
}

func TestEnsureNotified_DifferentLotCreatesNew(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	svc := NewNotificationService(notifRepo, &fakeDispatcher{}, testLogger{})

	created, err := svc.EnsureNotified(context.Background(),
		100, domain.NotificationBidWinning, 5, 10, "t", "m", 100)
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.EnsureNotified(context.Background(),
		100, domain.NotificationBidWinning, 5, 11, "t", "m", 100)
	require.NoError(t, err)
	require.True(t, created)

	require.Len(t, notifRepo.ofType(100, domain.NotificationBidWinning), 2)
}

func TestEnsureNotified_HistoryReadFailure(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	notifRepo.listErr = errors.New("store down")
	svc := NewNotificationService(notifRepo, &fakeDispatcher{}, testLogger{})

	created, err := svc.EnsureNotified(context.Background(),
		100, domain.NotificationBidWinning, 5, 10, "t", "m", 100)
	require.Error(t, err)
	require.False(t, created)
	require.Empty(t, notifRepo.forUser(100))
}

func TestRecord_PushFailureDoesNotSurface(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	dispatcher := &fakeDispatcher{pushErr: errors.New("socket gone")}
	svc := NewNotificationService(notifRepo, dispatcher, testLogger{})

	n := &domain.Notification{UserID: 100, Type: domain.NotificationBidWinning, AuctionID: 5, LotID: 10}
	require.NoError(t, svc.Record(context.Background(), n))
	require.NotZero(t, n.ID)
	require.Len(t, notifRepo.forUser(100), 1)
}

func TestRecord_CreateFailurePropagates(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	notifRepo.createErr = errors.New("store down")
	dispatcher := &fakeDispatcher{}
	svc := NewNotificationService(notifRepo, dispatcher, testLogger{})

	n := &domain.Notification{UserID: 100, Type: domain.NotificationBidWinning}
	require.Error(t, svc.Record(context.Background(), n))
	require.Empty(t, dispatcher.pushes)
}

func TestAlreadyNotified(t *testing.T) {
	recent := []*domain.Notification{
		{Type: "auction-ended", AuctionID: 5, LotID: 10},
		{Type: "AUCTION-STARTED", AuctionID: 5, LotID: 10},
	}

	require.True(t, AlreadyNotified(recent, domain.NotificationAuctionEnded, 5, 10))
	require.True(t, AlreadyNotified(recent, domain.NotificationAuctionStarted, 5, 10))
	require.False(t, AlreadyNotified(recent, domain.NotificationAuctionEndingSoon, 5, 10))
	require.False(t, AlreadyNotified(recent, domain.NotificationAuctionEnded, 6, 10))
	require.False(t, AlreadyNotified(recent, domain.NotificationAuctionEnded, 5, 11))
	require.False(t, AlreadyNotified(nil, domain.NotificationAuctionEnded, 5, 10))
}

func TestRecentNotifications_LimitClamped(t *testing.T) {
	notifRepo := newFakeNotificationRepo()
	svc := NewNotificationService(notifRepo, &fakeDispatcher{}, testLogger{})

	for i := 0; i < 5; i++ {
		_, err := notifRepo.Create(context.Background(), &domain.Notification{
			UserID: 100, Type: domain.NotificationBidWinning, LotID: int64(i),
			CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	got, err := svc.RecentNotifications(context.Background(), 100, false, 0)
	require.NoError(t, err)
	require.Len(t, got, 5)

	got, err = svc.RecentNotifications(context.Background(), 100, false, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
}
