package canteen_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/campus-canteen-ledger/internal/canteen_api/handler"
	"github.com/campus-canteen-ledger/internal/canteen_api/middleware"
	"github.com/gin-gonic/gin"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	cardHandler *handler.CardHandler,
	menuHandler *handler.MenuHandler,
	terminalHandler *handler.TerminalHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Card operations
		cards := v1.Group("/cards")
		{
			cards.POST("", cardHandler.Issue)
			cards.GET("/:cardholderId", cardHandler.Get)
			cards.GET("/:cardholderId/history", cardHandler.History)
			cards.POST("/:cardholderId/topup", cardHandler.TopUp)
		}

		// Menu operations
		menu := v1.Group("/menu")
		{
			menu.GET("", menuHandler.List)
			menu.POST("/items", menuHandler.UpsertItem)
			menu.PATCH("/items/:id/availability", menuHandler.SetAvailability)
		}

		// Terminal checkout workflow
		terminals := v1.Group("/terminals")
		{
			terminals.GET("/:id", terminalHandler.Get)
			terminals.POST("/:id/cart/items", terminalHandler.AddCartItem)
			terminals.DELETE("/:id/cart/items/:itemId", terminalHandler.RemoveCartItem)
			terminals.POST("/:id/checkout", terminalHandler.Checkout)
			terminals.POST("/:id/card", terminalHandler.PresentCard)
			terminals.POST("/:id/manual", terminalHandler.ManualPayment)
			terminals.POST("/:id/reset", terminalHandler.Reset)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
