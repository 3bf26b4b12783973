package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/panchakarma/internal/gateway"
	"github.com/saransh1220/panchakarma/internal/gateway/middleware"
	"github.com/saransh1220/panchakarma/internal/modules/auth"
	"github.com/saransh1220/panchakarma/internal/modules/filestorage"
	"github.com/saransh1220/panchakarma/internal/modules/notification"
	"github.com/saransh1220/panchakarma/internal/shared/infrastructure/config"
	"github.com/saransh1220/panchakarma/internal/shared/infrastructure/database"
	"github.com/saransh1220/panchakarma/internal/shared/infrastructure/logger"
	"github.com/saransh1220/panchakarma/pkg/migration"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		File:        cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	server := gateway.NewServer(cfg.Server.Port, a.handler, log)
	server.RegisterOnShutdown(a.notifications.Shutdown)
	return server.Run(ctx)
}

// app owns every long-lived dependency of the server.
type app struct {
	handler       http.Handler
	notifications *notification.Module
	db            *sqlx.DB
	redis         *redis.Client
	logger        *zap.Logger
}

func newApp(ctx context.Context, cfg config.Config, log *zap.Logger) (_ *app, err error) {
	a := &app{logger: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	files, err := filestorage.NewModule(ctx, cfg.FileStorage)
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Driver == "postgres" {
		log.Info("connecting to postgres", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))
		if a.db, err = database.NewPostgresDB(cfg.Database); err != nil {
			return nil, err
		}
		if err := migration.AutoMigrate(cfg.Database.URL(), cfg.Storage.MigrationsPath, log); err != nil {
			return nil, err
		}
	} else if cfg.Storage.Driver != "memory" {
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Redis.Enabled {
		if a.redis, err = database.NewRedis(cfg.Redis.RedisConfig); err != nil {
			return nil, err
		}
		log.Info("redis fan-out enabled", zap.String("addr", cfg.Redis.Addr()))
	}

	authModule := auth.NewModule(cfg.JWT.Secret, cfg.JWT.Expiry, files.Service(), cfg.Google.ClientID, log)

	a.notifications = notification.NewModule(notification.Config{
		DB:           a.db,
		Strict:       cfg.Notification.Strict,
		Redis:        a.redis,
		InstanceID:   uuid.NewString(),
		ArrivalDelay: cfg.Notification.DemoArrivalDelay,
		Registerer:   reg,
		Logger:       log,
	})
	a.notifications.Start(ctx)

	if cfg.Notification.SeedDemo {
		n, err := a.notifications.SeedDemo(ctx)
		if err != nil {
			return nil, fmt.Errorf("seed notifications: %w", err)
		}
		log.Info("seeded demo notifications", zap.Int("inserted", n))
	}

	arrival, err := a.notifications.ScheduleDemoArrival(cfg.Notification.DemoArrivalDelay)
	if err != nil {
		return nil, err
	}
	if arrival != nil {
		log.Info("demo arrival scheduled", zap.Time("due_at", arrival.DueAt))
	}

	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthHandler:         authModule.HTTPHandler(),
		AuthMiddleware:      authModule.Middleware(),
		NotificationHandler: a.notifications.HTTPHandler(),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		UploadsHandler:      files.StaticHandler(),
		UploadsPrefix:       filestorage.UploadsPrefix,
	})

	router := gateway.NewRouter(mux)
	router.Use(
		func(next http.Handler) http.Handler { return middleware.CORSMiddleware(next, cfg.Server.AllowedOrigins) },
		middleware.NewHTTPMetrics(reg).Middleware,
	)
	a.handler = router.Handler()
	return a, nil
}

// Close disposes the notification module and releases connections. It is
// safe on a partially built app.
func (a *app) Close() {
	if a.notifications != nil {
		a.notifications.Shutdown()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("closing redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("closing postgres", zap.Error(err))
		}
	}
}
