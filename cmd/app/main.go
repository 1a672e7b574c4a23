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
	"github.com/voyagent/voyagent/internal/bootstrap"
	"github.com/voyagent/voyagent/internal/cache"
	"github.com/voyagent/voyagent/internal/chat"
	"github.com/voyagent/voyagent/internal/kafka"
	"github.com/voyagent/voyagent/internal/logging"
	"github.com/voyagent/voyagent/internal/repository"
	"github.com/voyagent/voyagent/internal/service/reservation"
	"github.com/voyagent/voyagent/internal/service/trips"
	"github.com/voyagent/voyagent/internal/tools"
	"github.com/voyagent/voyagent/internal/weather"
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
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	amadeusClient := amadeus.NewClient(cfg.Amadeus, logger)
	weatherClient := weather.NewClient()

	reservationRepo := repository.NewReservationRepository(pool)
	chatRepo := repository.NewChatRepository(pool)

	tripService := trips.NewTripService(amadeusClient, redisCache, logger)
	reservationService := reservation.NewReservationService(
		reservationRepo,
		redisCache,
		amadeusClient,
		producer,
		cfg.Kafka.ReservationsTopic,
		logger,
	)

	registry := tools.NewRegistry(tripService, reservationService, weatherClient, logger)
	model := chat.NewOpenAIModel(cfg.OpenAI)
	orchestrator := chat.NewOrchestrator(model, registry, chatRepo, logger)

	if err := bootstrap.Run(ctx, cfg, orchestrator, reservationService, logger); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
