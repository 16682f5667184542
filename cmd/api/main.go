package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bryanwahyu/codelens/internal/bootstrap"
	"github.com/bryanwahyu/codelens/internal/config"
)

func main() {
	// load config (CONFIG_PATH atau config.yaml)
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, true)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}

	if err := app.Serve(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
