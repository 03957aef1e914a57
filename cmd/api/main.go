package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/devialdimp/bank-ledger/internal/api"
	"github.com/devialdimp/bank-ledger/internal/auth"
	"github.com/devialdimp/bank-ledger/internal/config"
	"github.com/devialdimp/bank-ledger/internal/db"
	"github.com/devialdimp/bank-ledger/internal/metrics"
	"github.com/devialdimp/bank-ledger/internal/queue"
	"github.com/devialdimp/bank-ledger/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load(logger)

	// Connecting to Postgres
	logger.Info("connecting to PostgreSQL")
	postgres, err := db.NewPostgres(cfg.PostgresURI, cfg.LockTimeout)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer postgres.Close()

	// Create schema
	logger.Info("creating the schema")
	if err := postgres.InitSchema(ctx); err != nil {
		logger.Fatal("failed to create schema", zap.Error(err))
	}

	// Connect to MongoDB
	logger.Info("connecting to MongoDB")
	mongodb, err := db.NewMongoDB(cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongodb.Close(ctx)

	// Connect to RabbitMQ
	logger.Info("connecting to RabbitMQ")
	rabbitmq, err := queue.NewRabbitMQ(cfg.RabbitMQURI, logger)
	if err != nil {
		logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rabbitmq.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	transferMetrics := metrics.NewTransferMetrics(registry)

	// Create services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	userService := service.NewUserService(postgres, tokens)
	accountService := service.NewAccountService(postgres)
	transferService := service.NewTransferService(postgres, rabbitmq, transferMetrics, logger)
	ledgerService := service.NewLedgerService(postgres)

	// Start the statement archive processor
	logger.Info("starting archive processor")
	processor := service.NewArchiveProcessor(rabbitmq, mongodb, logger)
	if err := processor.Start(ctx); err != nil {
		logger.Fatal("failed to start archive processor", zap.Error(err))
	}

	// Create router and set up routes
	router := mux.NewRouter()
	handler := api.NewHandler(userService, accountService, transferService, ledgerService, mongodb, logger)
	restrict := auth.Middleware(tokens, postgres, logger)
	api.SetupRoutes(router, handler, restrict, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-gctx.Done():
		case <-sigChan:
			logger.Info("shutting down server")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}

	logger.Info("server shut down successfully")
}
