package displayboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/campus-canteen-ledger/internal/config"
	"github.com/gin-gonic/gin"
)

// Server exposes the board's projections over HTTP for the actual screens
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates the read-only display HTTP server
func NewServer(log *slog.Logger, cfg *config.Config, board *Board) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/terminals", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": board.All()})
	})

	router.GET("/terminals/:id", func(c *gin.Context) {
		snapshot := board.Get(c.Param("id"))
		if snapshot == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{"code": "TERMINAL_NOT_FOUND", "message": "No snapshot seen for terminal"},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": snapshot})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	return &Server{
		logger: log,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start display HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping display HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop display HTTP server: %w", err)
	}
	return nil
}
