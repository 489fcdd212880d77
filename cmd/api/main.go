package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docqa/internal/api"
	"docqa/internal/app"
	"docqa/internal/config"
	"docqa/internal/ingest"
	"docqa/internal/rag"
	"docqa/internal/util"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := util.EnsureDir(cfg.UploadDir); err != nil {
		log.Fatal(err)
	}
	core, err := app.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer core.Close()

	var (
		dispatcher rag.Dispatcher
		local      *ingest.LocalQueue
	)
	switch cfg.IngestBackend {
	case config.IngestTemporal:
		c, err := client.Dial(client.Options{
			HostPort: cfg.TemporalAddress,
			Logger:   tlog.NewStructuredLogger(logger),
		})
		if err != nil {
			log.Fatal(err)
		}
		defer c.Close()
		dispatcher = ingest.NewTemporalQueue(c, cfg.TemporalTaskQueue, cfg.IngestConcurrency, logger)
	case config.IngestLocal:
		local = ingest.NewLocalQueue(core.Pipeline, ingest.LocalQueueOptions{
			Workers:   cfg.IngestWorkers,
			QueueSize: cfg.IngestQueueSize,
			Logger:    logger,
		})
		dispatcher = local
	}

	svc := rag.NewService(core.Docs, core.Chunks, core.Orchestrator, dispatcher, logger)
	srv := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           api.NewServer(cfg, svc, logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if local != nil {
			if err := local.Close(shutdownCtx); err != nil {
				logger.Warn("ingest queue did not drain", "error", err)
			}
		}
	}()

	logger.Info("docqa api listening", "addr", cfg.APIAddr, "ingest_backend", cfg.IngestBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	<-drained
}
