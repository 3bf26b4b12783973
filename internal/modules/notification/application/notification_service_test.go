package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/saransh1220/panchakarma/internal/modules/notification/domain"
	"github.com/saransh1220/panchakarma/internal/modules/notification/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedNotifications_UnifiedAndOrdered(t *testing.T) {
	clock := newFakeClock()
	svc, _ := newSeededService(t, clock)
	ctx := context.Background()

	items, err := svc.List(ctx, domain.Query{})
	require.NoError(t, err)
	require.Len(t, items, 8)

	var ids []string
	for _, n := range items {
		ids = append(ids, n.ID)
		require.NoError(t, n.Validate())
	}
	assert.Equal(t, []string{"7", "8", "1", "2", "3", "4", "5", "6"}, ids)

	unread, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, unread)

	inserted, err := svc.Seed(ctx, SeedNotifications(clock.Now()))
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestNotificationService_Create(t *testing.T) {
	clock := newFakeClock()
	pub := &mockPublisher{}
	svc, _ := newSeededService(t, clock, WithPublishers(pub))
	ctx := context.Background()

	recipient := uuid.New()
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Kind == domain.EventCreated &&
			e.UnreadCount == 6 &&
			e.Notification != nil &&
			e.Notification.UserID == recipient
	})).Return(nil).Once()

	n, err := svc.Create(ctx, CreateInput{
		UserID:   recipient,
		Title:    "  Nasya prep  ",
		Message:  "Avoid cold drinks tonight",
		Type:     "warning",
		Channels: []string{"sms"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "Nasya prep", n.Title)
	assert.Equal(t, domain.NotificationTypeAlert, n.Type)
	assert.Equal(t, domain.CategorySystem, n.Category)
	assert.Equal(t, domain.Channels{domain.ChannelSMS}, n.Channels)
	assert.Equal(t, clock.Now(), n.CreatedAt)
	assert.False(t, n.Read)
	pub.AssertExpectations(t)

	got, err := svc.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.Title, got.Title)
}

func TestNotificationService_Create_Validation(t *testing.T) {
	svc := NewNotificationService(memory.NewStore())

	tests := []struct {
		name string
		in   CreateInput
		err  error
	}{
		{"missing title", CreateInput{Type: "info"}, domain.ErrMissingTitle},
		{"bad type", CreateInput{Title: "x", Type: "urgent"}, domain.ErrInvalidType},
		{"bad category", CreateInput{Title: "x", Type: "info", Category: "billing"}, domain.ErrInvalidCategory},
		{"bad channel", CreateInput{Title: "x", Type: "info", Channels: []string{"fax"}}, domain.ErrInvalidChannel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNotificationService_Insert_DuplicateID(t *testing.T) {
	clock := newFakeClock()
	svc, _ := newSeededService(t, clock)

	n := domain.Notification{ID: "3", Title: "dup", Type: domain.NotificationTypeInfo}
	err := svc.Insert(context.Background(), &n)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestNotificationService_Insert_HonorsReadFlag(t *testing.T) {
	svc := NewNotificationService(memory.NewStore())
	ctx := context.Background()

	read := domain.Notification{ID: "x", Title: "Basti schedule", Type: domain.NotificationTypeReminder, Read: true}
	require.NoError(t, svc.Insert(ctx, &read))
	count, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	unread := domain.Notification{ID: "y", Title: "Nasya schedule", Type: domain.NotificationTypeReminder}
	require.NoError(t, svc.Insert(ctx, &unread))
	count, err = svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	clock := newFakeClock()
	pub := &mockPublisher{}
	svc, _ := newSeededService(t, clock, WithPublishers(pub))
	ctx := context.Background()

	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Kind == domain.EventRead && e.Notification.ID == "1" && e.Notification.Read && e.UnreadCount == 4
	})).Return(nil).Once()

	require.NoError(t, svc.MarkAsRead(ctx, "1"))

	// Already read and unknown ids publish nothing.
	require.NoError(t, svc.MarkAsRead(ctx, "1"))
	require.NoError(t, svc.MarkAsRead(ctx, "does-not-exist"))
	pub.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestNotificationService_MarkAsRead_Strict(t *testing.T) {
	svc := NewNotificationService(memory.NewStore(memory.WithStrictMode(true)))
	err := svc.MarkAsRead(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
}

func TestNotificationService_MarkAllAsRead(t *testing.T) {
	clock := newFakeClock()
	pub := &mockPublisher{}
	svc, _ := newSeededService(t, clock, WithPublishers(pub))
	ctx := context.Background()

	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Kind == domain.EventReadAll && e.Notification == nil && e.UnreadCount == 0
	})).Return(nil).Once()

	changed, err := svc.MarkAllAsRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, changed)

	changed, err = svc.MarkAllAsRead(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)

	unread, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, unread)
	pub.AssertExpectations(t)
}

func TestNotificationService_PublisherErrorsAreNotReturned(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("hub closed"))

	svc := NewNotificationService(memory.NewStore(), WithPublishers(pub), WithLogger(zap.NewNop()))
	_, err := svc.Create(context.Background(), CreateInput{Title: "Virechana", Type: "info"})
	require.NoError(t, err)
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestNotificationService_RepositoryErrors(t *testing.T) {
	boom := errors.New("db down")
	repo := repoStub{
		insertFn:        func(context.Context, *domain.Notification) error { return boom },
		markAsReadFn:    func(context.Context, string) (bool, error) { return false, boom },
		markAllAsReadFn: func(context.Context) (int, error) { return 0, boom },
		unreadCountFn:   func(context.Context) (int, error) { return 0, boom },
		listFn:          func(context.Context, domain.Query) ([]domain.Notification, error) { return nil, boom },
	}
	svc := NewNotificationService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Title: "x", Type: "info"})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, svc.MarkAsRead(ctx, "1"), boom)
	_, err = svc.MarkAllAsRead(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = svc.UnreadCount(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = svc.List(ctx, domain.Query{})
	assert.ErrorIs(t, err, boom)

	_, err = svc.Seed(ctx, SeedNotifications(time.Now()))
	assert.ErrorIs(t, err, boom)
}

func TestNotificationService_UnreadGauge(t *testing.T) {
	clock := newFakeClock()
	metrics := NewMetrics(prometheus.NewRegistry())
	svc, _ := newSeededService(t, clock, WithMetrics(metrics))

	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.unread))

	require.NoError(t, svc.MarkAsRead(context.Background(), "5"))
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.unread))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.setUnread(3)
		m.arrival(OutcomeDelivered)
	})
}
