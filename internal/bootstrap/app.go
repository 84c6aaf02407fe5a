package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/busalert/config"
	healthapi "github.com/Domenick1991/busalert/internal/api/health_service_api"
	"github.com/Domenick1991/busalert/internal/cache"
	"github.com/Domenick1991/busalert/internal/eta"
	"github.com/Domenick1991/busalert/internal/kafka"
	"github.com/Domenick1991/busalert/internal/repository"
	"github.com/Domenick1991/busalert/internal/service/approach"
	"github.com/Domenick1991/busalert/internal/service/location"
	"github.com/Domenick1991/busalert/internal/service/notification"
	"github.com/Domenick1991/busalert/internal/service/passengers"
	"github.com/Domenick1991/busalert/internal/twilio"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App holds the components shared by the API and the worker.
type App struct {
	Pool       *pgxpool.Pool
	Cache      *cache.RedisCache
	Producer   *kafka.Producer
	Passengers *passengers.PassengerService
	Pipeline   *approach.Pipeline
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	app := &App{Pool: pool}

	var (
		etaCache eta.Cache
		locker   approach.Locker
	)
	if cfg.Redis.Enabled() {
		app.Cache = cache.NewRedisCache(cfg.Redis, cfg.Lock)
		etaCache = app.Cache
		locker = app.Cache
	} else {
		log.Println("redis not configured, using in-process bus locks")
		locker = approach.NewLocalLocker()
	}

	reservationRepo := repository.NewReservationRepository(pool)
	passengerRepo := repository.NewPassengerRepository(pool)
	app.Passengers = passengers.NewPassengerService(reservationRepo, passengerRepo)

	processor := location.NewProcessor(
		app.Passengers,
		eta.New(cfg.ETA, etaCache),
		location.WithThreshold(cfg.Notification.ThresholdMinutes),
		location.WithConcurrency(cfg.ETA.Concurrency),
	)

	channel := twilio.NewChannel(cfg.Twilio)
	if !channel.Configured() {
		log.Println("twilio not configured, sms and voice delivery will fail and be logged")
	}
	var coordinatorOpts []notification.CoordinatorOption
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.NotificationsTopic != "" {
		app.Producer = kafka.NewProducer(cfg.Kafka.Brokers)
		coordinatorOpts = append(coordinatorOpts, notification.WithEvents(app.Producer, cfg.Kafka.NotificationsTopic))
	}
	coordinator := notification.NewCoordinator(channel, passengerRepo, coordinatorOpts...)

	app.Pipeline = approach.NewPipeline(processor, coordinator, locker)
	return app, nil
}

// HealthProbes lists a check per configured dependency.
func (a *App) HealthProbes() map[string]healthapi.Probe {
	probes := map[string]healthapi.Probe{
		"postgres": a.Pool.Ping,
	}
	if a.Cache != nil {
		probes["redis"] = a.Cache.Ping
	}
	if a.Producer != nil {
		probes["kafka"] = a.Producer.CheckConnection
	}
	return probes
}

func (a *App) Close() {
	if a.Producer != nil {
		if err := a.Producer.Close(); err != nil {
			log.Printf("close kafka producer: %v", err)
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			log.Printf("close redis: %v", err)
		}
	}
	a.Pool.Close()
}
