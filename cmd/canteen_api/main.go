package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/campus-canteen-ledger/internal/canteen_api"
	"github.com/campus-canteen-ledger/internal/config"
	"github.com/campus-canteen-ledger/internal/data/mongo"
	"github.com/campus-canteen-ledger/internal/data/postgres"
	"github.com/campus-canteen-ledger/internal/engine"
	"github.com/campus-canteen-ledger/internal/ledgerstore"
	"github.com/campus-canteen-ledger/internal/logger"
	"github.com/campus-canteen-ledger/internal/platform/messaging/producers"
	"github.com/campus-canteen-ledger/internal/platform/persistence"
	"github.com/campus-canteen-ledger/internal/receipts"
	"github.com/campus-canteen-ledger/internal/terminal"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("canteen_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting canteen POS service",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	cardRepo := postgres.NewCardRepository(log, postgresDB)
	historyRepo := postgres.NewLedgerRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	catalog := mongo.NewMenuRepository(log, mongoDB.Database())

	// Initialize Kafka producers
	snapshotProducer, err := producers.NewTopicProducer(appCtx, log, &cfg.Kafka, cfg.Kafka.SnapshotTopic)
	if err != nil {
		log.Error("Failed to initialize snapshot Kafka producer", "error", err)
		os.Exit(1)
	}

	receiptProducer, err := producers.NewTopicProducer(appCtx, log, &cfg.Kafka, cfg.Kafka.ReceiptTopic)
	if err != nil {
		log.Error("Failed to initialize receipt Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize services
	store := ledgerstore.NewStore(postgresDB, cardRepo, historyRepo, log)

	baseEngine := engine.NewEngine(postgresDB, store, catalog, transactionRepo, outboxRepo, log)
	pooledEngine, err := engine.NewWorkerPoolEngine(baseEngine, engine.WorkerPoolConfig{Size: cfg.WorkerPool.Size}, log)
	if err != nil {
		log.Error("Failed to initialize capture worker pool", "error", err)
		os.Exit(1)
	}

	sink := producers.NewSnapshotSink(snapshotProducer)
	registry := terminal.NewRegistry(func(terminalID string) *terminal.Machine {
		return terminal.NewMachine(terminalID, catalog, cardRepo, pooledEngine, sink, log)
	})

	// Initialize receipt outbox poller
	receiptPublisher := receipts.NewReceiptPublisher(outboxRepo, receiptProducer, log)
	poller := receipts.NewPoller(&cfg.Outbox, outboxRepo, receiptPublisher, log)

	// Initialize REST server
	server := canteen_api.NewServer(log, cfg, store, cardRepo, catalog, registry)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Start receipt poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so no new charges start
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Drain the capture worker pool
	pooledEngine.Shutdown()

	// Wait for the poller to stop
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()
	select {
	case <-wgChan:
		log.Info("Background services stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close Kafka producers
	if err = snapshotProducer.Close(); err != nil {
		log.Error("Error closing snapshot Kafka producer", "error", err)
	}
	if err = receiptProducer.Close(); err != nil {
		log.Error("Error closing receipt Kafka producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
