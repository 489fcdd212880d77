package main

import (
	"context"
	"log"
	"os"

	"docqa/internal/activities"
	"docqa/internal/app"
	"docqa/internal/config"
	"docqa/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)
	if cfg.Store != config.StorePostgres {
		log.Fatalf("worker needs the postgres store, got %q", cfg.Store)
	}

	c, err := client.Dial(client.Options{
		HostPort: cfg.TemporalAddress,
		Logger:   tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	core, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer core.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	activities.Register(w, activities.New(core.Docs, core.Pipeline))

	logger.Info("docqa worker listening", "temporal", cfg.TemporalAddress, "queue", cfg.TemporalTaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal(err)
	}
}
