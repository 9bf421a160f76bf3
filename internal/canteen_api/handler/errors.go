package handler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/campus-canteen-ledger/internal/domain/card"
	"github.com/campus-canteen-ledger/internal/domain/menu"
	"github.com/campus-canteen-ledger/internal/domain/transaction"
	"github.com/campus-canteen-ledger/internal/terminal"
	"github.com/gin-gonic/gin"
)

// respondDomainError maps domain errors onto HTTP responses. Anything not in
// the taxonomy is treated as a persistence failure and returned as a 500.
func respondDomainError(c *gin.Context, logger *slog.Logger, err error) {
	var cardNotFound card.ErrCardNotFound
	if errors.As(err, &cardNotFound) {
		RespondNotFound(c, "CARD_NOT_FOUND", "No active card found")
		return
	}

	var cardNotActive card.ErrCardNotActive
	if errors.As(err, &cardNotActive) {
		RespondUnprocessable(c, "CARD_NOT_ACTIVE", cardNotActive.Error())
		return
	}

	var insufficient card.ErrInsufficientBalance
	if errors.As(err, &insufficient) {
		message := fmt.Sprintf("Insufficient balance: need %d more", insufficient.Shortfall())
		RespondUnprocessable(c, "INSUFFICIENT_BALANCE", message)
		return
	}

	var duplicate card.ErrDuplicateCardID
	if errors.As(err, &duplicate) {
		RespondConflict(c, "DUPLICATE_CARD_ID", duplicate.Error())
		return
	}

	var unavailable menu.ErrItemUnavailable
	if errors.As(err, &unavailable) {
		RespondUnprocessable(c, "ITEM_UNAVAILABLE", unavailable.Error())
		return
	}

	var itemNotFound menu.ErrItemNotFound
	if errors.As(err, &itemNotFound) {
		RespondNotFound(c, "ITEM_NOT_FOUND", itemNotFound.Error())
		return
	}

	var invalidState terminal.ErrInvalidState
	if errors.As(err, &invalidState) {
		RespondConflict(c, "INVALID_CART_STATE", invalidState.Error())
		return
	}

	var noCardholder terminal.ErrNoCardholder
	if errors.As(err, &noCardholder) {
		RespondConflict(c, "INVALID_CART_STATE", noCardholder.Error())
		return
	}

	var txnNotFound transaction.ErrTransactionNotFound
	if errors.As(err, &txnNotFound) {
		RespondNotFound(c, "TRANSACTION_NOT_FOUND", txnNotFound.Error())
		return
	}

	switch {
	case errors.Is(err, transaction.ErrEmptyCart),
		errors.Is(err, transaction.ErrInvalidQuantity),
		errors.Is(err, transaction.ErrNegativeManualAmount),
		errors.Is(err, card.ErrEmptyCardID),
		errors.Is(err, card.ErrNegativeIssue),
		errors.Is(err, card.ErrInvalidAmount):
		RespondBadRequest(c, err.Error())
		return
	}

	logger.Error("Unhandled domain error", "error", err)
	RespondInternalError(c)
}
