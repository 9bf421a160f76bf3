package card

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrEmptyCardID   = errors.New("card identifier cannot be empty")
	ErrNegativeIssue = errors.New("initial balance cannot be negative")
)

// Status is the lifecycle state of a physical card
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusLost     Status = "LOST"
	StatusDamaged  Status = "DAMAGED"
)

// Card is a stored-value credential bound to one cardholder.
// Balance is held in minor units (paise) and is only ever written
// through the ledger store's atomic update.
type Card struct {
	CardID       string    `json:"card_id"`
	CardholderID uuid.UUID `json:"cardholder_id"`
	Status       Status    `json:"status"`
	Balance      int64     `json:"balance"`
	Version      int       `json:"version"` // For optimistic locking
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Issue creates a new active card bound to a fresh cardholder id
func Issue(cardID string, initialBalance int64) (*Card, error) {
	if cardID == "" {
		return nil, ErrEmptyCardID
	}
	if initialBalance < 0 {
		return nil, ErrNegativeIssue
	}

	return &Card{
		CardID:       cardID,
		CardholderID: uuid.New(),
		Status:       StatusActive,
		Balance:      initialBalance,
		Version:      1,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}, nil
}

// ApplyDelta adjusts the balance by a signed amount. A zero delta is
// legal (audit-only entries); a delta that would drive the balance
// negative is rejected without mutating the card.
func (c *Card) ApplyDelta(delta int64) error {
	newBalance := c.Balance + delta
	if newBalance < 0 {
		return ErrInsufficientBalance{Required: -delta, Available: c.Balance}
	}

	c.Balance = newBalance
	c.UpdatedAt = time.Now()
	c.Version++
	return nil
}

// IsActive reports whether the card may participate in payments
func (c *Card) IsActive() bool {
	return c.Status == StatusActive
}
