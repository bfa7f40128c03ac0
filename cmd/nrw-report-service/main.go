package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"nrw-report-service/internal/config"
	"nrw-report-service/internal/confirmation"
	"nrw-report-service/internal/db"
	"nrw-report-service/internal/events"
	"nrw-report-service/internal/geo"
	httphandler "nrw-report-service/internal/http"
	"nrw-report-service/internal/logger"
	"nrw-report-service/internal/model"
	"nrw-report-service/internal/realtime"
	"nrw-report-service/internal/repository"
	"nrw-report-service/internal/service"
	"nrw-report-service/internal/storage"
)

const startupTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	objects, err := storage.New(startCtx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up object storage")
	}
	if err := objects.EnsureBucket(startCtx); err != nil {
		log.Warn().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("storage bucket not ready")
	}

	var reports service.ReportRepository = repository.NewReportRepository(database)
	feed, closeFeed := changeFeed(cfg, log)
	if local, ok := feed.(*realtime.LocalFeed); ok {
		reports = service.NotifyingRepository(reports, local)
	}
	defer closeFeed()

	publisher := eventPublisher(cfg, log)
	defer publisher.Close()

	hub := realtime.NewHub()
	store := service.NewAdminStore(reports, feed, log)
	store.OnRefresh(func(r []model.Report) {
		hub.Broadcast(realtime.Event{Type: "refresh", Count: len(r), Timestamp: time.Now()})
	})
	if err := store.Start(startCtx); err != nil {
		log.Error().Err(err).Msg("initial report load failed")
	}
	defer store.Close()

	submissions := service.NewSubmissionService(reports, objects, publisher, log)
	actions := service.NewDetailActions(reports, objects, store, publisher, log)
	signer := confirmation.NewSigner(cfg.Confirmation.Secret, cfg.Confirmation.TTL)

	handler := httphandler.NewHandler(submissions, store, actions, signer, hub, httphandler.Options{
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Location:       cfg.Timezone,
		Geolocation:    geo.Options{HighAccuracy: true, Timeout: 10 * time.Second},
		HealthCheck: func(ctx context.Context) error {
			return db.HealthCheck(ctx, database)
		},
	}, log)
	router := httphandler.NewRouter(handler, log, cfg.Environment)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting nrw report service")
		errCh <- router.Run(addr)
	}()

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server stopped")
	}
}

// changeFeed prefers the database listener and falls back to an in-process
// feed fed by the repository.
func changeFeed(cfg *config.Config, log zerolog.Logger) (realtime.ChangeFeed, func()) {
	feed, err := realtime.NewPostgresFeed(cfg.DB.DSN, cfg.Realtime.Channel, log)
	if err != nil {
		log.Warn().Err(err).Msg("database change feed unavailable, using local feed")
		return realtime.NewLocalFeed(), func() {}
	}
	return feed, func() {
		if err := feed.Close(); err != nil {
			log.Warn().Err(err).Msg("close change feed")
		}
	}
}

func eventPublisher(cfg *config.Config, log zerolog.Logger) events.Publisher {
	if cfg.Broker.URL == "" {
		return events.NewNoopPublisher()
	}
	publisher, err := events.NewRabbitPublisher(cfg.Broker.URL, log)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq unavailable, report events disabled")
		return events.NewNoopPublisher()
	}
	return publisher
}
