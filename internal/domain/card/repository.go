package card

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines card persistence operations. The balance column is
// written only through UpdateBalance, and only by the ledger store.
type Repository interface {
	Create(ctx context.Context, c *Card) error
	GetByCardID(ctx context.Context, cardID string) (*Card, error)
	GetActiveByCardholder(ctx context.Context, cardholderID uuid.UUID) (*Card, error)

	// LockActiveByCardholder acquires a row lock on the cardholder's
	// ACTIVE card for the duration of the surrounding transaction
	LockActiveByCardholder(ctx context.Context, cardholderID uuid.UUID) (*Card, error)

	// UpdateBalance persists a new balance using optimistic locking
	UpdateBalance(ctx context.Context, cardID string, newBalance int64, version int) error

	WithTx(tx pgx.Tx) Repository
}

// ErrCardNotFound indicates no active card is bound to the cardholder
type ErrCardNotFound struct {
	CardholderID uuid.UUID
	CardID       string
}

func (e ErrCardNotFound) Error() string {
	if e.CardID != "" {
		return "no active card found: " + e.CardID
	}
	return "no active card for cardholder: " + e.CardholderID.String()
}

// ErrCardNotActive indicates the card exists but cannot pay
type ErrCardNotActive struct {
	CardID string
	Status Status
}

func (e ErrCardNotActive) Error() string {
	return fmt.Sprintf("card %s is %s", e.CardID, e.Status)
}

// ErrInsufficientBalance indicates a debit would drive the balance negative
type ErrInsufficientBalance struct {
	Required  int64 // The full debit amount
	Available int64 // The balance at the time of the attempt
}

func (e ErrInsufficientBalance) Error() string {
	return fmt.Sprintf("insufficient balance: required %d, available %d", e.Required, e.Available)
}

// Shortfall is the additional amount needed for the debit to succeed
func (e ErrInsufficientBalance) Shortfall() int64 {
	return e.Required - e.Available
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	CardID string
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for card: " + e.CardID
}

// ErrDuplicateCardID indicates card identifier uniqueness violation
type ErrDuplicateCardID struct {
	CardID string
}

func (e ErrDuplicateCardID) Error() string {
	return "card already issued: " + e.CardID
}
