package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/Domenick1991/flightbooking/internal/notify"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/auth"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New("flightbooking", cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		lg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			lg.Fatal("migrate schema", zap.Error(err))
		}
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.FlightsCacheTTLDuration())
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		lg.Warn("redis unavailable, flight list served from postgres", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, lg)
	defer producer.Close()
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := producer.CheckConnection(checkCtx); err != nil {
		lg.Warn("kafka unavailable, notifications will be dropped", zap.Error(err))
	}
	cancel()

	dispatcher := notify.NewDispatcher(producer, cfg.Kafka.NotificationsTopic, lg,
		notify.WithQueueSize(cfg.Booking.NotificationQueueSize),
		notify.WithPublishTimeout(cfg.Booking.NotificationTimeout()),
	)

	lockTimeout := repository.WithLockTimeout(cfg.Database.LockTimeout())
	flightRepo := repository.NewFlightRepository(pool, lockTimeout)
	bookingRepo := repository.NewBookingRepository(pool, lockTimeout)
	userRepo := repository.NewUserRepository(pool)

	flightService := flights.NewFlightService(flightRepo, redisCache, lg)
	bookingService := booking.NewBookingService(bookingRepo, lg,
		booking.WithCache(redisCache),
		booking.WithNotifier(dispatcher),
	)
	authService := auth.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL(),
		auth.WithAdminSecret(cfg.Auth.AdminRegistrationSecret),
	)

	metrics.Register()

	err = bootstrap.Run(ctx, cfg, bootstrap.Deps{
		Log:      lg,
		Flights:  flightService,
		Bookings: bookingService,
		Auth:     authService,
		Probes: map[string]bootstrap.Probe{
			"postgres": pool.Ping,
		},
		Workers: []func(context.Context) error{dispatcher.Run},
	})
	if err != nil {
		lg.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
	lg.Info("server stopped")
}
