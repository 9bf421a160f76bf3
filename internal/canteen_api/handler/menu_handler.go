package handler

import (
	"log/slog"
	"time"

	"github.com/campus-canteen-ledger/internal/domain/menu"
	"github.com/gin-gonic/gin"
)

// MenuHandler handles HTTP requests for menu operations
type MenuHandler struct {
	catalog menu.Catalog
	logger  *slog.Logger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(logger *slog.Logger, catalog menu.Catalog) *MenuHandler {
	return &MenuHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// List retrieves all purchasable items
func (h *MenuHandler) List(c *gin.Context) {
	items, err := h.catalog.ListAvailable(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list menu items", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, items)
}

// UpsertItem creates or replaces a menu item
func (h *MenuHandler) UpsertItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item := &menu.Item{
		ID:        req.ID,
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		Available: req.Available,
		Active:    true,
		UpdatedAt: time.Now(),
	}

	if err := h.catalog.Upsert(c.Request.Context(), item); err != nil {
		h.logger.Error("Failed to upsert menu item", "item_id", req.ID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, item)
}

// SetAvailability flips the availability flag on an existing item
func (h *MenuHandler) SetAvailability(c *gin.Context) {
	itemID := c.Param("id")

	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.catalog.SetAvailability(c.Request.Context(), itemID, *req.Available); err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}
