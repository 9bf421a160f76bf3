// Package canteen_api exposes the point-of-sale HTTP surface: card
// issuance and top-ups, menu lookups, and the per-terminal checkout
// workflow.
package canteen_api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/campus-canteen-ledger/internal/canteen_api/handler"
	"github.com/campus-canteen-ledger/internal/config"
	"github.com/campus-canteen-ledger/internal/domain/menu"
	"github.com/campus-canteen-ledger/internal/ledgerstore"
	"github.com/campus-canteen-ledger/internal/terminal"
	"github.com/gin-gonic/gin"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// NewServer creates and configures a new HTTP server over the ledger store,
// the menu catalog, and the terminal registry
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	store *ledgerstore.Store,
	cards handler.CardFinder,
	catalog menu.Catalog,
	registry *terminal.Registry,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	cardHandler := handler.NewCardHandler(log, store, cards)
	menuHandler := handler.NewMenuHandler(log, catalog)
	terminalHandler := handler.NewTerminalHandler(log, registry)

	setupRouter(log, httpRouter, cardHandler, menuHandler, terminalHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
