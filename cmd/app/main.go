package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/busalert/api"
	"github.com/Domenick1991/busalert/config"
	healthapi "github.com/Domenick1991/busalert/internal/api/health_service_api"
	"github.com/Domenick1991/busalert/internal/bootstrap"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer app.Close()

	router := api.NewRouter(
		api.NewBusLocationHandler(app.Pipeline, cfg.HTTP.ServiceName),
		api.NewPassengerHandler(app.Passengers),
	)
	health := healthapi.NewServer(app.HealthProbes())

	log.Printf("starting http=%s grpc=%s threshold_minutes=%d", cfg.HTTP.Address, cfg.GRPC.Address, cfg.Notification.ThresholdMinutes)
	if err := bootstrap.Run(ctx, cfg, router, health); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
