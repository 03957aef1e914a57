package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/devialdimp/bank-ledger/internal/config"
	"github.com/devialdimp/bank-ledger/internal/db"
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

	// Start the statement archive processor
	logger.Info("starting archive processor")
	processor := service.NewArchiveProcessor(rabbitmq, mongodb, logger)
	if err := processor.Start(ctx); err != nil {
		logger.Fatal("failed to start archive processor", zap.Error(err))
	}

	logger.Info("archive processor started")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down processor")
	cancel() // Cancel context to stop processor
	logger.Info("processor shut down successfully")
}
