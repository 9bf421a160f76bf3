// Package postgres provides PostgreSQL implementations of the domain
// repositories. The cards, balance_history, transactions and receipt_outbox
// tables live in the same database so one unit of work can span all of them.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campus-canteen-ledger/internal/domain/card"
	"github.com/campus-canteen-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CardRepository implements the card.Repository interface for PostgreSQL
type CardRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewCardRepository creates a new PostgreSQL card repository
func NewCardRepository(logger *slog.Logger, db *persistence.PostgresDB) card.Repository {
	return &CardRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *CardRepository) WithTx(tx pgx.Tx) card.Repository {
	return &CardRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a newly issued card. A duplicate card identifier hits the
// primary key constraint.
func (r *CardRepository) Create(ctx context.Context, c *card.Card) error {
	query := `
		INSERT INTO cards (card_id, cardholder_id, status, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		c.CardID,
		c.CardholderID,
		c.Status,
		c.Balance,
		c.Version,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create card", "card_id", c.CardID, "error", err)
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// GetByCardID retrieves a card by its physical identifier regardless of status
func (r *CardRepository) GetByCardID(ctx context.Context, cardID string) (*card.Card, error) {
	query := `
		SELECT card_id, cardholder_id, status, balance, version, created_at, updated_at
		FROM cards
		WHERE card_id = $1
	`

	var c card.Card
	err := r.querier.QueryRow(ctx, query, cardID).Scan(
		&c.CardID,
		&c.CardholderID,
		&c.Status,
		&c.Balance,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, card.ErrCardNotFound{CardID: cardID}
		}
		r.logger.Error("Failed to get card", "card_id", cardID, "error", err)
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return &c, nil
}

// GetActiveByCardholder retrieves the cardholder's ACTIVE card
func (r *CardRepository) GetActiveByCardholder(ctx context.Context, cardholderID uuid.UUID) (*card.Card, error) {
	query := `
		SELECT card_id, cardholder_id, status, balance, version, created_at, updated_at
		FROM cards
		WHERE cardholder_id = $1 AND status = $2
	`

	var c card.Card
	err := r.querier.QueryRow(ctx, query, cardholderID, card.StatusActive).Scan(
		&c.CardID,
		&c.CardholderID,
		&c.Status,
		&c.Balance,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, card.ErrCardNotFound{CardholderID: cardholderID}
		}
		r.logger.Error("Failed to get active card", "cardholder_id", cardholderID.String(), "error", err)
		return nil, fmt.Errorf("failed to get active card: %w", err)
	}

	return &c, nil
}

// LockActiveByCardholder obtains a row lock on the cardholder's ACTIVE card
// and returns its current state. This must be used within a transaction;
// holding the lock serializes concurrent deltas on the same cardholder.
func (r *CardRepository) LockActiveByCardholder(ctx context.Context, cardholderID uuid.UUID) (*card.Card, error) {
	query := `
		SELECT card_id, cardholder_id, status, balance, version, created_at, updated_at
		FROM cards
		WHERE cardholder_id = $1 AND status = $2
		FOR UPDATE
	`

	var c card.Card
	err := r.querier.QueryRow(ctx, query, cardholderID, card.StatusActive).Scan(
		&c.CardID,
		&c.CardholderID,
		&c.Status,
		&c.Balance,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, card.ErrCardNotFound{CardholderID: cardholderID}
		}
		r.logger.Error("Failed to lock card for update", "cardholder_id", cardholderID.String(), "error", err)
		return nil, fmt.Errorf("failed to lock card for update: %w", err)
	}

	return &c, nil
}

// UpdateBalance persists a new balance using optimistic locking.
// Returns ErrConcurrentModification if the card was modified between read and update.
func (r *CardRepository) UpdateBalance(ctx context.Context, cardID string, newBalance int64, version int) error {
	query := `
		UPDATE cards
		SET balance = $1, version = version + 1, updated_at = NOW()
		WHERE card_id = $2 AND version = $3
	`

	result, err := r.querier.Exec(ctx, query, newBalance, cardID, version)
	if err != nil {
		r.logger.Error("Failed to update card balance", "card_id", cardID, "error", err)
		return fmt.Errorf("failed to update card balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return card.ErrConcurrentModification{CardID: cardID}
	}

	return nil
}
