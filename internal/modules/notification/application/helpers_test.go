package application

import (
	"context"
	"sync"
	"time"

	"github.com/saransh1220/panchakarma/internal/modules/notification/domain"
	"github.com/stretchr/testify/mock"
)

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

// fakeClock drives AfterFunc callbacks deterministically.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return &fakeTimerHandle{clock: c, t: t}
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()

	for _, f := range due {
		f()
	}
}

type fakeTimerHandle struct {
	clock *fakeClock
	t     *fakeTimer
}

func (h *fakeTimerHandle) Stop() bool {
	h.clock.mu.Lock()
	defer h.clock.mu.Unlock()
	active := !h.t.stopped && !h.t.fired
	h.t.stopped = true
	return active
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, e domain.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type repoStub struct {
	insertFn        func(context.Context, *domain.Notification) error
	getFn           func(context.Context, string) (*domain.Notification, error)
	listFn          func(context.Context, domain.Query) ([]domain.Notification, error)
	unreadCountFn   func(context.Context) (int, error)
	markAsReadFn    func(context.Context, string) (bool, error)
	markAllAsReadFn func(context.Context) (int, error)
}

func (r repoStub) Insert(ctx context.Context, n *domain.Notification) error {
	if r.insertFn == nil {
		return nil
	}
	return r.insertFn(ctx, n)
}

func (r repoStub) Get(ctx context.Context, id string) (*domain.Notification, error) {
	if r.getFn == nil {
		return nil, domain.ErrNotificationNotFound
	}
	return r.getFn(ctx, id)
}

func (r repoStub) List(ctx context.Context, q domain.Query) ([]domain.Notification, error) {
	if r.listFn == nil {
		return nil, nil
	}
	return r.listFn(ctx, q)
}

func (r repoStub) UnreadCount(ctx context.Context) (int, error) {
	if r.unreadCountFn == nil {
		return 0, nil
	}
	return r.unreadCountFn(ctx)
}

func (r repoStub) MarkAsRead(ctx context.Context, id string) (bool, error) {
	if r.markAsReadFn == nil {
		return false, nil
	}
	return r.markAsReadFn(ctx, id)
}

func (r repoStub) MarkAllAsRead(ctx context.Context) (int, error) {
	if r.markAllAsReadFn == nil {
		return 0, nil
	}
	return r.markAllAsReadFn(ctx)
}

func (r repoStub) Len(context.Context) (int, error) { return 0, nil }
