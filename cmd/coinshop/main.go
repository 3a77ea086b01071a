package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ectroshop9/coinshop/internal/app"
	"github.com/ectroshop9/coinshop/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, errLoad := config.Load(*configPath)
	if errLoad != nil {
		log.Fatalf("load config: %v", errLoad)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if errRun := app.Run(ctx, cfg); errRun != nil {
		log.Fatalf("server: %v", errRun)
	}
}
