package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/aew-track-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/aew-track-map/internal/adapter/kafka"
	"github.com/couchcryptid/aew-track-map/internal/adapter/trackstore"
	"github.com/couchcryptid/aew-track-map/internal/config"
	"github.com/couchcryptid/aew-track-map/internal/controller"
	"github.com/couchcryptid/aew-track-map/internal/observability"
	"github.com/couchcryptid/aew-track-map/internal/render"
	"github.com/couchcryptid/aew-track-map/internal/sse"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	surface := render.NewSurface(logger, metrics)
	store := trackstore.NewClient(cfg.DataBaseURL, cfg.DataPathTemplate, cfg.FetchTimeout, logger)
	hub := sse.NewHub(clockwork.NewRealClock(), logger, metrics)

	opts := []controller.Option{
		controller.WithNotifier(controller.NotifierFunc(func(v controller.View) {
			hub.Broadcast(sse.Message{Type: "view", Data: v})
		})),
	}

	// Interaction events are feature-flagged via KAFKA_ENABLED.
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		opts = append(opts, controller.WithEventSink(publisher))
		logger.Info("kafka interaction events enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka interaction events disabled")
	}

	ctrl := controller.New(surface, store, logger, metrics, opts...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, ctrl, surface, httpadapter.Options{
		Events:  hub.Handler(),
		DataDir: cfg.DataDir,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load the default year, as the page does on startup. Failures are
	// reported through the status line; the user can pick another year.
	go func() {
		if err := ctrl.LoadDataForYear(ctx, cfg.DefaultYear); err != nil {
			logger.Warn("initial dataset load failed", "year", cfg.DefaultYear, "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
