package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saransh1220/panchakarma/internal/modules/notification/domain"
	"go.uber.org/zap"
)

// CreateInput carries unvalidated notification fields from a caller. Empty
// ID and zero CreatedAt are filled in.
type CreateInput struct {
	ID           string
	UserID       uuid.UUID
	Title        string
	Message      string
	Type         string
	Category     string
	CreatedAt    time.Time
	ScheduledFor *time.Time
	Channels     []string
}

type Option func(*NotificationService)

func WithPublishers(publishers ...domain.EventPublisher) Option {
	return func(s *NotificationService) { s.publishers = append(s.publishers, publishers...) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *NotificationService) { s.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(s *NotificationService) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *NotificationService) { s.now = now }
}

func WithAfterFunc(fn AfterFunc) Option {
	return func(s *NotificationService) { s.afterFunc = fn }
}

type NotificationService struct {
	repo       domain.NotificationRepository
	publishers []domain.EventPublisher
	scheduler  *ArrivalScheduler
	metrics    *Metrics
	logger     *zap.Logger
	now        func() time.Time
	afterFunc  AfterFunc
}

func NewNotificationService(repo domain.NotificationRepository, opts ...Option) *NotificationService {
	s := &NotificationService{
		repo:      repo,
		logger:    zap.NewNop(),
		now:       time.Now,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("notification")
	s.scheduler = newArrivalScheduler(s.deliverArrival, s.afterFunc, s.now, s.metrics, s.logger)
	return s
}

// Build turns caller input into a valid notification without storing it.
func (s *NotificationService) Build(in CreateInput) (domain.Notification, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Notification{}, domain.ErrMissingTitle
	}
	typ, err := domain.ParseType(in.Type)
	if err != nil {
		return domain.Notification{}, err
	}
	category, err := domain.ParseCategory(in.Category)
	if err != nil {
		return domain.Notification{}, err
	}
	channels, err := domain.ParseChannels(in.Channels)
	if err != nil {
		return domain.Notification{}, err
	}

	n := domain.Notification{
		ID:           strings.TrimSpace(in.ID),
		UserID:       in.UserID,
		Title:        title,
		Message:      in.Message,
		Type:         typ,
		Category:     category,
		CreatedAt:    in.CreatedAt,
		ScheduledFor: in.ScheduledFor,
		Channels:     channels,
	}
	return n, nil
}

// Create builds a notification from input and inserts it.
func (s *NotificationService) Create(ctx context.Context, in CreateInput) (*domain.Notification, error) {
	n, err := s.Build(in)
	if err != nil {
		return nil, err
	}
	if err := s.Insert(ctx, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Insert stores n and notifies subscribers. Read stays false unless the
// caller set it.
func (s *NotificationService) Insert(ctx context.Context, n *domain.Notification) error {
	s.fillDefaults(n)
	if err := n.Validate(); err != nil {
		return err
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return err
	}
	s.logger.Info("notification inserted",
		zap.String("id", n.ID),
		zap.String("type", string(n.Type)),
		zap.String("category", string(n.Category)),
	)
	s.publish(ctx, domain.EventCreated, n)
	return nil
}

// Seed inserts records as given, read state included, without publishing
// events. Records that already exist are skipped.
func (s *NotificationService) Seed(ctx context.Context, items []domain.Notification) (int, error) {
	inserted := 0
	for i := range items {
		n := items[i]
		s.fillDefaults(&n)
		if err := s.repo.Insert(ctx, &n); err != nil {
			if errors.Is(err, domain.ErrDuplicateID) {
				continue
			}
			return inserted, err
		}
		inserted++
	}
	s.refreshUnread(ctx)
	return inserted, nil
}

func (s *NotificationService) fillDefaults(n *domain.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if n.Category == "" {
		n.Category = domain.CategorySystem
	}
	if len(n.Channels) == 0 {
		n.Channels = domain.Channels{domain.ChannelInApp}
	}
}

func (s *NotificationService) List(ctx context.Context, q domain.Query) ([]domain.Notification, error) {
	return s.repo.List(ctx, q)
}

func (s *NotificationService) Get(ctx context.Context, id string) (*domain.Notification, error) {
	return s.repo.Get(ctx, id)
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	return s.repo.UnreadCount(ctx)
}

// MarkAsRead ignores unknown ids unless the repository is strict. Only an
// unread to read transition is published.
func (s *NotificationService) MarkAsRead(ctx context.Context, id string) error {
	changed, err := s.repo.MarkAsRead(ctx, id)
	if err != nil || !changed {
		return err
	}
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil
	}
	s.publish(ctx, domain.EventRead, n)
	return nil
}

// MarkAllAsRead returns how many notifications changed state.
func (s *NotificationService) MarkAllAsRead(ctx context.Context) (int, error) {
	changed, err := s.repo.MarkAllAsRead(ctx)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.publish(ctx, domain.EventReadAll, nil)
	}
	return changed, nil
}

// SimulateArrival validates input now and inserts it after delay.
func (s *NotificationService) SimulateArrival(in CreateInput, delay time.Duration) (*Arrival, error) {
	n, err := s.Build(in)
	if err != nil {
		return nil, err
	}
	return s.scheduler.Schedule(n, delay)
}

func (s *NotificationService) CancelArrival(id string) error {
	return s.scheduler.Cancel(id)
}

func (s *NotificationService) PendingArrivals() []Arrival {
	return s.scheduler.Pending()
}

// Shutdown cancels pending arrivals. It is safe to call more than once.
func (s *NotificationService) Shutdown() {
	s.scheduler.Dispose()
}

func (s *NotificationService) deliverArrival(ctx context.Context, n domain.Notification) error {
	// Arrivals are stamped when they land, not when they were scheduled.
	n.CreatedAt = time.Time{}
	return s.Insert(ctx, &n)
}

func (s *NotificationService) refreshUnread(ctx context.Context) int {
	count, err := s.repo.UnreadCount(ctx)
	if err != nil {
		s.logger.Warn("unread count failed", zap.Error(err))
		return 0
	}
	s.metrics.setUnread(count)
	return count
}

func (s *NotificationService) publish(ctx context.Context, kind domain.EventKind, n *domain.Notification) {
	event := domain.Event{Kind: kind, UnreadCount: s.refreshUnread(ctx)}
	if n != nil {
		c := n.Clone()
		event.Notification = &c
	}
	for _, p := range s.publishers {
		if err := p.Publish(ctx, event); err != nil {
			s.logger.Warn("publish event failed",
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
		}
	}
}
