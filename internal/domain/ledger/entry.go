package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable balance change in a cardholder's history.
// Replaying all entries for a cardholder in creation order must
// reproduce the card's current balance exactly. Entries are never
// updated or deleted; corrections are new entries.
type Entry struct {
	ID            uuid.UUID  `json:"id"`
	CardholderID  uuid.UUID  `json:"cardholder_id"`
	CardID        string     `json:"card_id"`
	Delta         int64      `json:"delta"` // Signed, minor units; negative = debit
	BalanceBefore int64      `json:"balance_before"`
	BalanceAfter  int64      `json:"balance_after"`
	Description   string     `json:"description"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewEntry builds a history entry for a delta applied to a card
func NewEntry(cardholderID uuid.UUID, cardID string, delta, balanceBefore int64, description string, transactionID *uuid.UUID) *Entry {
	return &Entry{
		ID:            uuid.New(),
		CardholderID:  cardholderID,
		CardID:        cardID,
		Delta:         delta,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore + delta,
		Description:   description,
		TransactionID: transactionID,
		CreatedAt:     time.Now(),
	}
}
