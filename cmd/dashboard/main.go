package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/disaster-relief/internal/adapter/csvstore"
	"github.com/couchcryptid/disaster-relief/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/disaster-relief/internal/adapter/kafka"
	"github.com/couchcryptid/disaster-relief/internal/adapter/watson"
	"github.com/couchcryptid/disaster-relief/internal/config"
	"github.com/couchcryptid/disaster-relief/internal/domain"
	"github.com/couchcryptid/disaster-relief/internal/observability"
	"github.com/couchcryptid/disaster-relief/internal/service"
	"github.com/couchcryptid/disaster-relief/internal/session"
)

const sessionSweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Scoring client (feature-flagged via PREDICTION_ENABLED / WATSON_API_KEY).
	var scorer domain.Scorer
	if cfg.PredictionEnabled {
		auth := watson.NewAuthenticator(cfg.WatsonIAMURL, cfg.WatsonAPIKey, cfg.WatsonTimeout, clock, metrics, logger)
		scorer = watson.NewClient(auth, map[domain.Model]string{
			domain.ModelFlood:      cfg.WatsonFloodEndpoint,
			domain.ModelEarthquake: cfg.WatsonEarthquakeEndpoint,
		}, cfg.WatsonTimeout, logger)
		logger.Info("predictions enabled", "timeout", cfg.WatsonTimeout)
	} else {
		logger.Info("predictions disabled")
	}

	// Allocation events (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var publisher service.Publisher = service.NopPublisher{}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("allocation events enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	sessions := session.NewManager(cfg.SessionTTL, clock, metrics)
	stock := service.NewStockService(csvstore.New(cfg.StockFile, logger), publisher, logger, metrics)
	predictions := service.NewPredictionService(scorer, sessions, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A bad file does not stop the service; /readyz reports it until fixed.
	if c, err := stock.Catalog(ctx); err != nil {
		logger.Warn("initial stock catalog load failed", "path", cfg.StockFile, "error", err)
	} else {
		logger.Info("stock catalog loaded", "path", cfg.StockFile, "records", c.Len())
	}

	router := httpadapter.NewRouter(httpadapter.NewHandler(stock, predictions, sessions), logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, stock, router, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Expire idle sessions.
	go sessions.Run(ctx, sessionSweepInterval)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
