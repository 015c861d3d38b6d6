package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
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

	lg, err := logger.New("flightbooking-worker", cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, lg)
	defer consumer.Close()

	sender := email.NewSender(lg)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("notification worker started",
			zap.String("topic", cfg.Kafka.NotificationsTopic),
			zap.String("group", cfg.Kafka.GroupID),
		)
		return consumer.Consume(ctx, func(ctx context.Context, n domain.Notification) error {
			if err := sender.Send(ctx, n); err != nil {
				return err
			}
			metrics.IncNotificationProcessed()
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		lg.Error("worker stopped", zap.Error(err))
		os.Exit(1)
	}
	lg.Info("worker stopped")
}
