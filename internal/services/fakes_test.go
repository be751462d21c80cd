package services

import (
	"context"
	"sync"

	"vehicle-auctions/internal/domain"

	"github.com/shopspring/decimal"
)

// In-memory collaborators used across the service tests.

type testLogger struct{}

func (testLogger) Info(msg string, keysAndValues ...interface{})  {}
func (testLogger) Error(msg string, keysAndValues ...interface{}) {}
func (testLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (testLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (testLogger) Fatal(msg string, keysAndValues ...interface{}) {}

type fakeBidRepo struct {
	history    []*domain.Bid
	historyErr error
	submitErr  error
	submitFn   func(bid *domain.Bid) *domain.Bid
	submitted  []*domain.Bid
}

func (r *fakeBidRepo) GetLotBidHistory(ctx context.Context, lotID int64) ([]*domain.Bid, error) {
	if r.historyErr != nil {
		return nil, r.historyErr
	}
	var bids []*domain.Bid
	for _, b := range r.history {
		if b.LotID == lotID {
			bids = append(bids, b)
		}
	}
	return bids, nil
}

func (r *fakeBidRepo) SubmitBid(ctx context.Context, bid *domain.Bid) (*domain.Bid, error) {
	if r.submitErr != nil {
		return nil, r.submitErr
	}
	placed := r.submitFn(bid)
	r.submitted = append(r.submitted, placed)
	return placed, nil
}

type fakeLotRepo struct {
	lots   map[int64]*domain.Lot
	getErr error
}

func (r *fakeLotRepo) GetLot(ctx context.Context, lotID int64) (*domain.Lot, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.lots[lotID], nil
}

type fakeAuctionRepo struct {
	windows     map[int64]*domain.AuctionWindow
	recalcRows  int64
	recalcCalls int
	recalcErr   error
}

func (r *fakeAuctionRepo) GetAuctionWindow(ctx context.Context, auctionID int64) (*domain.AuctionWindow, error) {
	return r.windows[auctionID], nil
}

func (r *fakeAuctionRepo) RecalculateStatuses(ctx context.Context) (int64, error) {
	r.recalcCalls++
	if r.recalcErr != nil {
		return 0, r.recalcErr
	}
	return r.recalcRows, nil
}

type fakeNotificationRepo struct {
	mu        sync.Mutex
	nextID    int64
	byUser    map[int64][]*domain.Notification
	admins    []*domain.AdminNotification
	createErr error
	listErr   error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{byUser: make(map[int64][]*domain.Notification)}
}

func (r *fakeNotificationRepo) ListRecent(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.Notification
	for _, n := range r.byUser[userID] {
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, n)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *n
	stored.ID = r.nextID
	r.byUser[n.UserID] = append(r.byUser[n.UserID], &stored)
	return r.nextID, nil
}

func (r *fakeNotificationRepo) CreateAdmin(ctx context.Context, n *domain.AdminNotification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *n
	stored.ID = r.nextID
	r.admins = append(r.admins, &stored)
	return r.nextID, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, userID, notificationID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.byUser[userID] {
		if n.ID == notificationID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.byUser[userID] {
		n.IsRead = true
	}
	return nil
}

func (r *fakeNotificationRepo) Clear(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
	return nil
}

func (r *fakeNotificationRepo) forUser(userID int64) []*domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Notification(nil), r.byUser[userID]...)
}

func (r *fakeNotificationRepo) ofType(userID int64, ntype string) []*domain.Notification {
	var result []*domain.Notification
	for _, n := range r.forUser(userID) {
		if n.Type == ntype {
			result = append(result, n)
		}
	}
	return result
}

type fakeFavouriteRepo struct {
	favourites map[int64]*domain.Favourite
	setActive  []int64
}

func (r *fakeFavouriteRepo) ListActive(ctx context.Context) ([]*domain.Favourite, error) {
	var result []*domain.Favourite
	for _, f := range r.favourites {
		if f.Active {
			result = append(result, f)
		}
	}
	return result, nil
}

func (r *fakeFavouriteRepo) GetFavourite(ctx context.Context, favouriteID int64) (*domain.Favourite, error) {
	return r.favourites[favouriteID], nil
}

func (r *fakeFavouriteRepo) SetActive(ctx context.Context, favouriteID int64, active bool) error {
	if f, ok := r.favourites[favouriteID]; ok {
		f.Active = active
	}
	r.setActive = append(r.setActive, favouriteID)
	return nil
}

type pushedEvent struct {
	userID  int64
	name    string
	payload interface{}
}

type fakeDispatcher struct {
	mu      sync.Mutex
	pushes  []pushedEvent
	pushErr error
}

func (d *fakeDispatcher) PushToUser(ctx context.Context, userID int64, eventName string, payload interface{}) error {
	if d.pushErr != nil {
		return d.pushErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pushes = append(d.pushes, pushedEvent{userID: userID, name: eventName, payload: payload})
	return nil
}

func (d *fakeDispatcher) events(name string) []pushedEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []pushedEvent
	for _, p := range d.pushes {
		if p.name == name {
			result = append(result, p)
		}
	}
	return result
}

type fakeHighBidCache struct {
	current *domain.LotHighBid
	updates int
}

func (c *fakeHighBidCache) UpdateHighBid(ctx context.Context, lotID int64, amount decimal.Decimal, bidderID int64) (bool, error) {
	c.updates++
	if c.current == nil || amount.GreaterThan(c.current.Amount) {
		c.current = &domain.LotHighBid{LotID: lotID, Amount: amount, BidderID: bidderID}
		return true, nil
	}
	return false, nil
}

func (c *fakeHighBidCache) GetHighBid(ctx context.Context, lotID int64) (*domain.LotHighBid, error) {
	if c.current == nil || c.current.LotID != lotID {
		return nil, nil
	}
	return c.current, nil
}

type fakeWindowCache struct {
	windows map[int64]*domain.AuctionWindow
}

func newFakeWindowCache() *fakeWindowCache {
	return &fakeWindowCache{windows: make(map[int64]*domain.AuctionWindow)}
}

func (c *fakeWindowCache) GetWindow(ctx context.Context, auctionID int64) (*domain.AuctionWindow, error) {
	return c.windows[auctionID], nil
}

func (c *fakeWindowCache) SetWindow(ctx context.Context, window *domain.AuctionWindow) error {
	c.windows[window.AuctionID] = window
	return nil
}

type fakeLeader struct {
	leader bool
	err    error
}

func (l *fakeLeader) BecomeLeader(ctx context.Context, instanceID string) (bool, error) {
	return l.leader, l.err
}

func (l *fakeLeader) IsLeader(ctx context.Context, instanceID string) (bool, error) {
	return l.leader, l.err
}

func (l *fakeLeader) ReleaseLeadership(ctx context.Context, instanceID string) error {
	return nil
}
