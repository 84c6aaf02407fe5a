package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/busalert/config"
	"github.com/Domenick1991/busalert/internal/bootstrap"
	"github.com/Domenick1991/busalert/internal/kafka"
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
	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatalf("kafka.brokers is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer app.Close()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BusLocationTopic)
	defer consumer.Close()

	log.Printf("consuming topic=%s group=%s", cfg.Kafka.BusLocationTopic, cfg.Kafka.GroupID)
	if err := consumer.Consume(ctx, bootstrap.LocationMessageHandler(app.Pipeline)); err != nil {
		log.Printf("consumer stopped: %v", err)
	}
	log.Println("worker shut down")
}
