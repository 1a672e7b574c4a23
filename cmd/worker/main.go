package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voyagent/voyagent/config"
	"github.com/voyagent/voyagent/internal/amadeus"
	"github.com/voyagent/voyagent/internal/cache"
	"github.com/voyagent/voyagent/internal/kafka"
	"github.com/voyagent/voyagent/internal/logging"
	"github.com/voyagent/voyagent/internal/repository"
	"github.com/voyagent/voyagent/internal/service/reservation"
	"go.uber.org/zap"
)

// The worker consumes payment confirmations and flips the reservation's
// payment flag. This is the only path that marks a reservation as paid.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis,
		time.Duration(cfg.Cache.LookupTTLSeconds)*time.Second,
		time.Duration(cfg.Cache.OfferTTLMinutes)*time.Minute,
	)
	amadeusClient := amadeus.NewClient(cfg.Amadeus, logger)

	reservationRepo := repository.NewReservationRepository(pool)
	reservationService := reservation.NewReservationService(
		reservationRepo,
		redisCache,
		amadeusClient,
		nil,
		"",
		logger,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.PaymentsTopic, logger)
	defer consumer.Close()

	err = consumer.ConsumePayments(ctx, func(ctx context.Context, event kafka.PaymentEvent) error {
		if err := reservationService.ConfirmPayment(ctx, event.ReservationID); err != nil {
			logger.Error("confirm payment failed",
				zap.String("reservation_id", event.ReservationID),
				zap.Error(err))
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("consumer error: %v", err)
	}
}
