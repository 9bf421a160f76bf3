package handler

import (
	"log/slog"

	"github.com/campus-canteen-ledger/internal/terminal"
	"github.com/gin-gonic/gin"
)

// TerminalHandler handles HTTP requests driving the checkout workflow
type TerminalHandler struct {
	registry *terminal.Registry
	logger   *slog.Logger
}

// NewTerminalHandler creates a new terminal handler
func NewTerminalHandler(logger *slog.Logger, registry *terminal.Registry) *TerminalHandler {
	return &TerminalHandler{
		registry: registry,
		logger:   logger,
	}
}

// Get returns the terminal's current snapshot
func (h *TerminalHandler) Get(c *gin.Context) {
	machine := h.registry.Get(c.Param("id"))
	RespondOK(c, machine.Snapshot())
}

// AddCartItem adds a line to the terminal's cart
func (h *TerminalHandler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	machine := h.registry.Get(c.Param("id"))
	snapshot, err := machine.AddItem(c.Request.Context(), req.ItemID, req.Quantity)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, snapshot)
}

// RemoveCartItem removes a line from the terminal's cart
func (h *TerminalHandler) RemoveCartItem(c *gin.Context) {
	machine := h.registry.Get(c.Param("id"))
	snapshot, err := machine.RemoveItem(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, snapshot)
}

// Checkout freezes the cart and starts waiting for a card
func (h *TerminalHandler) Checkout(c *gin.Context) {
	machine := h.registry.Get(c.Param("id"))
	snapshot, err := machine.Ready(c.Request.Context())
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, snapshot)
}

// PresentCard resolves a card read and attempts the capture. A failed capture
// is not an HTTP error: the terminal lands in FAILED and the snapshot carries
// the failure message, so the response reports the workflow outcome.
func (h *TerminalHandler) PresentCard(c *gin.Context) {
	var req PresentCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	machine := h.registry.Get(c.Param("id"))
	snapshot, err := machine.PresentCard(c.Request.Context(), req.CardID)
	if err != nil {
		if snapshot != nil {
			// Capture ran and failed; the machine state is the answer
			RespondOK(c, snapshot)
			return
		}
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, snapshot)
}

// ManualPayment records a staff-collected cash settlement after a failed capture
func (h *TerminalHandler) ManualPayment(c *gin.Context) {
	var req ManualPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	machine := h.registry.Get(c.Param("id"))
	snapshot, err := machine.RecordManualPayment(c.Request.Context(), req.Amount)
	if err != nil {
		if snapshot != nil {
			RespondOK(c, snapshot)
			return
		}
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, snapshot)
}

// Reset clears the terminal for a new sale
func (h *TerminalHandler) Reset(c *gin.Context) {
	machine := h.registry.Get(c.Param("id"))
	snapshot, err := machine.Reset(c.Request.Context())
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, snapshot)
}
