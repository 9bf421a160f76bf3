package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campus-canteen-ledger/internal/domain/transaction"
	"github.com/campus-canteen-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the transaction row, its
// line items, and the ledger delta commit or roll back together.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts the transaction row plus one row per line item
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, reference, cardholder_id, card_id, amount, payment_method, status, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.Reference,
		txn.CardholderID,
		txn.CardID,
		txn.Amount,
		txn.PaymentMethod,
		txn.Status,
		txn.Description,
		txn.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "transaction_id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	lineQuery := `
		INSERT INTO transaction_items (transaction_id, item_id, item_name, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, line := range txn.Lines {
		_, err := r.querier.Exec(ctx, lineQuery,
			txn.ID,
			line.ItemID,
			line.ItemName,
			line.Quantity,
			line.UnitPrice,
			line.LineTotal,
		)
		if err != nil {
			r.logger.Error("Failed to create transaction line item",
				"transaction_id", txn.ID.String(),
				"item_id", line.ItemID,
				"error", err)
			return fmt.Errorf("failed to create transaction line item: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a transaction with its line items
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT id, reference, cardholder_id, card_id, amount, payment_method, status, description, created_at
		FROM transactions
		WHERE id = $1
	`

	var txn transaction.Transaction
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&txn.ID,
		&txn.Reference,
		&txn.CardholderID,
		&txn.CardID,
		&txn.Amount,
		&txn.PaymentMethod,
		&txn.Status,
		&txn.Description,
		&txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "transaction_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	lines, err := r.getLines(ctx, id)
	if err != nil {
		return nil, err
	}
	txn.Lines = lines

	return &txn, nil
}

// GetByCardholder retrieves paginated transactions for a cardholder, newest first
func (r *TransactionRepository) GetByCardholder(ctx context.Context, cardholderID uuid.UUID, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT id, reference, cardholder_id, card_id, amount, payment_method, status, description, created_at
		FROM transactions
		WHERE cardholder_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, cardholderID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to get transactions", "cardholder_id", cardholderID.String(), "error", err)
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer rows.Close()

	var txns []*transaction.Transaction
	for rows.Next() {
		var txn transaction.Transaction
		err := rows.Scan(
			&txn.ID,
			&txn.Reference,
			&txn.CardholderID,
			&txn.CardID,
			&txn.Amount,
			&txn.PaymentMethod,
			&txn.Status,
			&txn.Description,
			&txn.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return txns, nil
}

func (r *TransactionRepository) getLines(ctx context.Context, transactionID uuid.UUID) ([]transaction.LineItem, error) {
	query := `
		SELECT transaction_id, item_id, item_name, quantity, unit_price, line_total
		FROM transaction_items
		WHERE transaction_id = $1
		ORDER BY id ASC
	`

	rows, err := r.querier.Query(ctx, query, transactionID)
	if err != nil {
		r.logger.Error("Failed to get transaction line items", "transaction_id", transactionID.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction line items: %w", err)
	}
	defer rows.Close()

	var lines []transaction.LineItem
	for rows.Next() {
		var line transaction.LineItem
		err := rows.Scan(
			&line.TransactionID,
			&line.ItemID,
			&line.ItemName,
			&line.Quantity,
			&line.UnitPrice,
			&line.LineTotal,
		)
		if err != nil {
			r.logger.Error("Failed to scan transaction line item", "error", err)
			return nil, fmt.Errorf("failed to scan transaction line item: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transaction line items: %w", err)
	}

	return lines, nil
}
