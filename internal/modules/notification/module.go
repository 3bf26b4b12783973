package notification

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/panchakarma/internal/modules/notification/application"
	"github.com/saransh1220/panchakarma/internal/modules/notification/domain"
	"github.com/saransh1220/panchakarma/internal/modules/notification/infrastructure/memory"
	"github.com/saransh1220/panchakarma/internal/modules/notification/infrastructure/persistence/postgres"
	"github.com/saransh1220/panchakarma/internal/modules/notification/infrastructure/pubsub"
	"github.com/saransh1220/panchakarma/internal/modules/notification/infrastructure/websocket"
	notification_http "github.com/saransh1220/panchakarma/internal/modules/notification/interfaces/http"
	"go.uber.org/zap"
)

// Config selects the module's backends. A nil DB keeps notifications in
// memory; a nil Redis client disables cross-instance fan-out.
type Config struct {
	DB           *sqlx.DB
	Strict       bool
	Redis        *redis.Client
	RedisChannel string
	InstanceID   string
	ArrivalDelay time.Duration
	Registerer   prometheus.Registerer
	Logger       *zap.Logger
}

type Module struct {
	service    *application.NotificationService
	handler    *notification_http.NotificationHandler
	hub        *websocket.Hub
	subscriber *pubsub.RedisSubscriber
	logger     *zap.Logger
}

func NewModule(cfg Config) *Module {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var repo domain.NotificationRepository
	if cfg.DB != nil {
		repo = postgres.NewPgNotificationRepository(cfg.DB, cfg.Strict)
	} else {
		repo = memory.NewStore(memory.WithStrictMode(cfg.Strict))
	}

	hub := websocket.NewHub(logger)
	go hub.Run()

	publishers := []domain.EventPublisher{hub}
	var subscriber *pubsub.RedisSubscriber
	if cfg.Redis != nil {
		channel := cfg.RedisChannel
		if channel == "" {
			channel = pubsub.DefaultChannel
		}
		publishers = append(publishers, pubsub.NewRedisPublisher(cfg.Redis, channel, cfg.InstanceID))
		subscriber = pubsub.NewRedisSubscriber(cfg.Redis, channel, cfg.InstanceID, hub, logger)
	}

	var metrics *application.Metrics
	if cfg.Registerer != nil {
		metrics = application.NewMetrics(cfg.Registerer)
		websocket.NewConnectionsGauge(cfg.Registerer, hub)
	}

	service := application.NewNotificationService(repo,
		application.WithPublishers(publishers...),
		application.WithLogger(logger),
		application.WithMetrics(metrics),
	)

	return &Module{
		service:    service,
		handler:    notification_http.NewNotificationHandler(service, hub, logger, cfg.ArrivalDelay),
		hub:        hub,
		subscriber: subscriber,
		logger:     logger,
	}
}

// Start relays events from other instances until ctx is cancelled. It is a
// no-op when Redis is not configured.
func (m *Module) Start(ctx context.Context) {
	if m.subscriber == nil {
		return
	}
	go func() {
		if err := m.subscriber.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Error("redis relay stopped", zap.Error(err))
		}
	}()
}

// SeedDemo loads the demo notifications. Records already present are kept.
func (m *Module) SeedDemo(ctx context.Context) (int, error) {
	return m.service.Seed(ctx, application.SeedNotifications(time.Now()))
}

// ScheduleDemoArrival queues the demo message. A non-positive delay skips it.
func (m *Module) ScheduleDemoArrival(delay time.Duration) (*application.Arrival, error) {
	if delay <= 0 {
		return nil, nil
	}
	return m.service.SimulateArrival(application.DemoArrival(), delay)
}

func (m *Module) HTTPHandler() *notification_http.NotificationHandler {
	return m.handler
}

func (m *Module) Service() *application.NotificationService {
	return m.service
}

func (m *Module) Hub() *websocket.Hub {
	return m.hub
}

// Shutdown cancels pending arrivals and closes client connections.
func (m *Module) Shutdown() {
	m.service.Shutdown()
	m.hub.Stop()
}
