package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/campus-canteen-ledger/internal/domain/card"
	"github.com/campus-canteen-ledger/internal/domain/ledger"
	"github.com/campus-canteen-ledger/internal/ledgerstore"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerService is the subset of the ledger store the card endpoints use
type LedgerService interface {
	IssueCard(ctx context.Context, cardID string, initialBalance int64) (*card.Card, error)
	ApplyDelta(ctx context.Context, cardholderID uuid.UUID, delta int64, description string, transactionID *uuid.UUID) (*ledgerstore.DeltaResult, error)
	History(ctx context.Context, cardholderID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error)
}

// CardFinder looks up a cardholder's active card
type CardFinder interface {
	GetActiveByCardholder(ctx context.Context, cardholderID uuid.UUID) (*card.Card, error)
}

// CardHandler handles HTTP requests for card operations
type CardHandler struct {
	store  LedgerService
	cards  CardFinder
	logger *slog.Logger
}

// NewCardHandler creates a new card handler
func NewCardHandler(logger *slog.Logger, store LedgerService, cards CardFinder) *CardHandler {
	return &CardHandler{
		store:  store,
		cards:  cards,
		logger: logger,
	}
}

// Issue handles issuance of a new stored-value card
func (h *CardHandler) Issue(c *gin.Context) {
	var req IssueCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	issued, err := h.store.IssueCard(c.Request.Context(), req.CardID, req.InitialBalance)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapCardToResponse(issued))
}

// Get retrieves a cardholder's active card with its current balance
func (h *CardHandler) Get(c *gin.Context) {
	cardholderID, ok := parseCardholderID(c)
	if !ok {
		return
	}

	found, err := h.cards.GetActiveByCardholder(c.Request.Context(), cardholderID)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapCardToResponse(found))
}

// TopUp credits a cardholder's balance
func (h *CardHandler) TopUp(c *gin.Context) {
	cardholderID, ok := parseCardholderID(c)
	if !ok {
		return
	}

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	description := req.Description
	if description == "" {
		description = "Balance top-up"
	}

	result, err := h.store.ApplyDelta(c.Request.Context(), cardholderID, req.Amount, description, nil)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, TopUpResponse{
		CardholderID:    cardholderID.String(),
		PreviousBalance: result.PreviousBalance,
		NewBalance:      result.NewBalance,
	})
}

// History retrieves the cardholder's paginated balance history, oldest first
func (h *CardHandler) History(c *gin.Context) {
	cardholderID, ok := parseCardholderID(c)
	if !ok {
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, total, err := h.store.History(c.Request.Context(), cardholderID, params.Page, params.PerPage)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	responses := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

func parseCardholderID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("cardholderId")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid cardholder ID")
		return uuid.Nil, false
	}
	return id, true
}

func mapCardToResponse(c *card.Card) CardResponse {
	return CardResponse{
		CardID:       c.CardID,
		CardholderID: c.CardholderID.String(),
		Status:       string(c.Status),
		Balance:      c.Balance,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
	}
}

func mapEntryToResponse(entry *ledger.Entry) HistoryEntryResponse {
	response := HistoryEntryResponse{
		ID:            entry.ID.String(),
		CardID:        entry.CardID,
		Delta:         entry.Delta,
		BalanceBefore: entry.BalanceBefore,
		BalanceAfter:  entry.BalanceAfter,
		Description:   entry.Description,
		CreatedAt:     entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.TransactionID != nil {
		response.TransactionID = entry.TransactionID.String()
	}
	return response
}
