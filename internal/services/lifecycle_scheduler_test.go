package services

import (
	"context"
	"testing"
	"time"

	"vehicle-auctions/internal/config"
	"vehicle-auctions/internal/domain"

	"github.com/stretchr/testify/require"
)

type schedulerFixture struct {
	scheduler   *LifecycleScheduler
	auctionRepo *fakeAuctionRepo
	lotRepo     *fakeLotRepo
	favRepo     *fakeFavouriteRepo
	notifRepo   *fakeNotificationRepo
	dispatcher  *fakeDispatcher
	leader      *fakeLeader
}

func newSchedulerFixture(now time.Time) *schedulerFixture {
	f := &schedulerFixture{
		auctionRepo: &fakeAuctionRepo{windows: make(map[int64]*domain.AuctionWindow)},
		lotRepo:     &fakeLotRepo{lots: make(map[int64]*domain.Lot)},
		favRepo:     &fakeFavouriteRepo{favourites: make(map[int64]*domain.Favourite)},
		notifRepo:   newFakeNotificationRepo(),
		dispatcher:  &fakeDispatcher{},
		leader:      &fakeLeader{leader: true},
	}

	notifications := NewNotificationService(f.notifRepo, f.dispatcher, testLogger{})
	f.scheduler = NewLifecycleScheduler(
		f.auctionRepo, f.lotRepo, f.favRepo, notifications,
		newFakeWindowCache(), f.leader, "test-instance",
		config.SchedulerConfig{
			StatusInterval:     time.Minute,
			AlertsInterval:     time.Minute,
			StartingSoonWindow: 15 * time.Minute,
			EndingSoonWindow:   10 * time.Minute,
			StartedGraceWindow: 5 * time.Minute,
		},
		testLogger{},
	)
	f.scheduler.now = func() time.Time { return now }
	return f
}

func (f *schedulerFixture) addFavourite(favID, userID, lotID, auctionID int64, start, end time.Time) {
	f.favRepo.favourites[favID] = &domain.Favourite{ID: favID, UserID: userID, LotID: lotID, Active: true}
	f.lotRepo.lots[lotID] = &domain.Lot{ID: lotID, AuctionID: auctionID}
	f.auctionRepo.windows[auctionID] = &domain.AuctionWindow{
		AuctionID: auctionID,
		Name:      "Saturday Classics",
		StartMs:   start.UnixMilli(),
		EndMs:     end.UnixMilli(),
	}
}

func (f *schedulerFixture) alertTypes(userID int64) []string {
	var types []string
	for _, n := range f.notifRepo.forUser(userID) {
		types = append(types, n.Type)
	}
	return types
}

func TestAlertsTick_StartingSoonBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		start   time.Time
		expects bool
	}{
		{"one_minute_before_start", now.Add(time.Minute), true},
		{"exactly_window_edge", now.Add(15 * time.Minute), true},
		{"sixteen_minutes_before_start", now.Add(16 * time.Minute), false},
		{"already_started", now.Add(-time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSchedulerFixture(now)
			f.addFavourite(1, 100, 10, 5, tt.start, tt.start.Add(2*time.Hour))

			f.scheduler.runAlertsTick(context.Background())

			got := f.notifRepo.ofType(100, domain.NotificationAuctionStartingSoon)
			if tt.expects {
				require.Len(t, got, 1)
				require.Contains(t, got[0].Message, "Saturday Classics")
			} else {
				require.Empty(t, got)
			}
		})
	}
}

func TestAlertsTick_StartedGraceWindow(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		start   time.Time
		expects bool
	}{
		{"at_start", now, true},
		{"inside_grace", now.Add(-4 * time.Minute), true},
		{"past_grace", now.Add(-6 * time.Minute), false},
		{"not_started_yet", now.Add(time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSchedulerFixture(now)
			f.addFavourite(1, 100, 10, 5, tt.start, tt.start.Add(2*time.Hour))

			f.scheduler.runAlertsTick(context.Background())

			got := f.notifRepo.ofType(100, domain.NotificationAuctionStarted)
			if tt.expects {
				require.Len(t, got, 1)
			} else {
				require.Empty(t, got)
			}
		})
	}
}

func TestAlertsTick_EndingSoonAndEnded(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	t.Run("ending_soon", func(t *testing.T) {
		f := newSchedulerFixture(now)
		f.addFavourite(1, 100, 10, 5, now.Add(-2*time.Hour), now.Add(5*time.Minute))

		f.scheduler.runAlertsTick(context.Background())

		require.Len(t, f.notifRepo.ofType(100, domain.NotificationAuctionEndingSoon), 1)
		require.Empty(t, f.notifRepo.ofType(100, domain.NotificationAuctionEnded))
	})

	t.Run("ended", func(t *testing.T) {
		f := newSchedulerFixture(now)
		f.addFavourite(1, 100, 10, 5, now.Add(-2*time.Hour), now.Add(-time.Minute))

		f.scheduler.runAlertsTick(context.Background())

		require.Len(t, f.notifRepo.ofType(100, domain.NotificationAuctionEnded), 1)
		require.Empty(t, f.notifRepo.ofType(100, domain.NotificationAuctionEndingSoon))
	})
}

func TestAlertsTick_ProgressionAcrossTicks(t *testing.T) {
	base := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	start := base.Add(10 * time.Minute)
	end := base.Add(70 * time.Minute)

	f := newSchedulerFixture(base)
	f.addFavourite(1, 100, 10, 5, start, end)

	// First tick: 10 minutes out, inside the starting-soon window.
	f.scheduler.runAlertsTick(context.Background())
	require.Equal(t, []string{domain.NotificationAuctionStartingSoon}, f.alertTypes(100))

	// Second tick: one minute after start. Starting-soon must not repeat
	// and must not fire retroactively.
	f.scheduler.now = func() time.Time { return base.Add(11 * time.Minute) }
	f.scheduler.runAlertsTick(context.Background())
	require.Equal(t, []string{
		domain.NotificationAuctionStartingSoon,
		domain.NotificationAuctionStarted,
	}, f.alertTypes(100))

	// Third tick: same instant, nothing new.
	f.scheduler.runAlertsTick(context.Background())
	require.Len(t, f.notifRepo.forUser(100), 2)
}

func TestAlertsTick_ShortAuctionFiresInLifecycleOrder(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	// A three-minute auction observed mid-flight satisfies both the started
	// grace and the ending-soon window in the same tick.
	f := newSchedulerFixture(now)
	f.addFavourite(1, 100, 10, 5, now.Add(-time.Minute), now.Add(2*time.Minute))

	f.scheduler.runAlertsTick(context.Background())

	require.Equal(t, []string{
		domain.NotificationAuctionStarted,
		domain.NotificationAuctionEndingSoon,
	}, f.alertTypes(100))
}

func TestAlertsTick_UnpopulatedWindowSkipped(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	f := newSchedulerFixture(now)
	f.addFavourite(1, 100, 10, 5, now.Add(-2*time.Hour), now.Add(-time.Minute))
	f.auctionRepo.windows[5].EndMs = 0

	f.scheduler.runAlertsTick(context.Background())

	require.Empty(t, f.notifRepo.forUser(100))
}

func TestAlertsTick_DedupSharedAcrossUsersFavourites(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	// Two favourites on the same lot for the same user: the snapshot handed
	// to the second evaluation already carries the first one's output.
	f := newSchedulerFixture(now)
	f.addFavourite(1, 100, 10, 5, now.Add(-time.Minute), now.Add(2*time.Hour))
	f.favRepo.favourites[2] = &domain.Favourite{ID: 2, UserID: 100, LotID: 10, Active: true}

	f.scheduler.runAlertsTick(context.Background())

	require.Len(t, f.notifRepo.ofType(100, domain.NotificationAuctionStarted), 1)
}

func TestAlertsTick_AdminMirror(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	f := newSchedulerFixture(now)
	f.addFavourite(1, 100, 10, 5, now.Add(-time.Minute), now.Add(2*time.Hour))

	f.scheduler.runAlertsTick(context.Background())

	require.Len(t, f.notifRepo.admins, 1)
	require.Equal(t, int64(100), f.notifRepo.admins[0].AffectedUserID)
	require.Equal(t, domain.NotificationAuctionStarted, f.notifRepo.admins[0].Type)
}

func TestAlertsTick_NotLeaderSkips(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	f := newSchedulerFixture(now)
	f.addFavourite(1, 100, 10, 5, now.Add(-time.Minute), now.Add(2*time.Hour))
	f.leader.leader = false

	f.scheduler.runAlertsTick(context.Background())

	require.Empty(t, f.notifRepo.forUser(100))
}

func TestStatusTick_Recalculates(t *testing.T) {
	f := newSchedulerFixture(time.Now().UTC())
	f.auctionRepo.recalcRows = 3

	f.scheduler.runStatusTick(context.Background())
	require.Equal(t, 1, f.auctionRepo.recalcCalls)

	f.leader.leader = false
	f.scheduler.runStatusTick(context.Background())
	require.Equal(t, 1, f.auctionRepo.recalcCalls)
}

func TestSchedulerConfig_Clamped(t *testing.T) {
	cfg := config.SchedulerConfig{
		StatusInterval:     time.Second,
		AlertsInterval:     2 * time.Second,
		StartingSoonWindow: 15 * time.Minute,
		EndingSoonWindow:   10 * time.Minute,
		StartedGraceWindow: 5 * time.Minute,
	}

	clamped := cfg.Clamped()
	require.Equal(t, config.MinStatusInterval, clamped.StatusInterval)
	require.Equal(t, config.MinAlertsInterval, clamped.AlertsInterval)
	require.Equal(t, 15*time.Minute, clamped.StartingSoonWindow)
}
