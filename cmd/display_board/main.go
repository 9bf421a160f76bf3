package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/campus-canteen-ledger/internal/config"
	"github.com/campus-canteen-ledger/internal/displayboard"
	"github.com/campus-canteen-ledger/internal/logger"
	"github.com/campus-canteen-ledger/internal/platform/messaging/consumers"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("display_board")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting display board",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize the board projection and its snapshot consumer
	board := displayboard.NewBoard(log)
	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka, cfg.Kafka.SnapshotTopic)

	if err := kafkaConsumer.Subscribe(appCtx, board.Handle); err != nil {
		log.Error("Failed to subscribe to snapshot topic", "error", err)
		os.Exit(1)
	}

	// Initialize the read-only HTTP view
	server := displayboard.NewServer(log, cfg, board)

	// Create error channel for server errors
	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting display HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("display HTTP server error: %w", err)
		}
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

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("Display board shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Display board shutdown completed with errors")
	} else {
		log.Info("Display board shutdown completed successfully")
	}
}
