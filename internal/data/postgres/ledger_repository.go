package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-canteen-ledger/internal/domain/ledger"
	"github.com/campus-canteen-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepository implements the ledger.Repository interface for PostgreSQL.
// The balance_history table is append-only: this type exposes no update or
// delete operation, and none exists elsewhere.
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL balance history repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so history entries commit
// atomically with the balance write they describe.
func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append stores one immutable history entry
func (r *LedgerRepository) Append(ctx context.Context, entry *ledger.Entry) error {
	query := `
		INSERT INTO balance_history (id, cardholder_id, card_id, delta, balance_before, balance_after, description, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.CardholderID,
		entry.CardID,
		entry.Delta,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.Description,
		entry.TransactionID,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append balance history entry",
			"cardholder_id", entry.CardholderID.String(),
			"error", err)
		return fmt.Errorf("failed to append balance history entry: %w", err)
	}

	return nil
}

// GetByCardholder retrieves paginated history entries for a cardholder,
// oldest first so replaying them reproduces the current balance.
func (r *LedgerRepository) GetByCardholder(ctx context.Context, cardholderID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	query := `
		SELECT id, cardholder_id, card_id, delta, balance_before, balance_after, description, transaction_id, created_at
		FROM balance_history
		WHERE cardholder_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, cardholderID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to get balance history", "cardholder_id", cardholderID.String(), "error", err)
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		var entry ledger.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.CardholderID,
			&entry.CardID,
			&entry.Delta,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.Description,
			&entry.TransactionID,
			&entry.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan balance history entry", "error", err)
			return nil, fmt.Errorf("failed to scan balance history entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over balance history", "error", err)
		return nil, fmt.Errorf("error iterating over balance history: %w", err)
	}

	return entries, nil
}

// CountByCardholder counts the total number of history entries for a cardholder
func (r *LedgerRepository) CountByCardholder(ctx context.Context, cardholderID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM balance_history
		WHERE cardholder_id = $1
	`

	var count int64
	err := r.querier.QueryRow(ctx, query, cardholderID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count balance history entries", "cardholder_id", cardholderID.String(), "error", err)
		return 0, fmt.Errorf("failed to count balance history entries: %w", err)
	}

	return count, nil
}
