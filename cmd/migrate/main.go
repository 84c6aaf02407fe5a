package main

import (
	"log"
	"os"

	"github.com/Domenick1991/busalert/config"
	"github.com/Domenick1991/busalert/internal/migrations"
	flag "github.com/spf13/pflag"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	url := cfg.Database.URL("pgx5")
	if *down > 0 {
		if err := migrations.Down(url, *down); err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		log.Printf("rolled back %d migrations", *down)
		return
	}
	if err := migrations.Up(url); err != nil {
		log.Fatalf("migrate up: %v", err)
	}
}
