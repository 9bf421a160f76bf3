package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campus-canteen-ledger/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_Append(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LedgerRepository{querier: mock, logger: logger}

	txnID := uuid.New()
	entry := ledger.NewEntry(uuid.New(), "RFID-001", -8000, 10000, "Canteen purchase TXN-9F86D081", &txnID)

	query := `
		INSERT INTO balance_history \(id, cardholder_id, card_id, delta, balance_before, balance_after, description, transaction_id, created_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(entry.ID, entry.CardholderID, entry.CardID, entry.Delta, entry.BalanceBefore, entry.BalanceAfter, entry.Description, entry.TransactionID, entry.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Append(ctx, entry)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(entry.ID, entry.CardholderID, entry.CardID, entry.Delta, entry.BalanceBefore, entry.BalanceAfter, entry.Description, entry.TransactionID, entry.CreatedAt).
			WillReturnError(dbErr)

		err := repo.Append(ctx, entry)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to append balance history entry")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_GetByCardholder(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LedgerRepository{querier: mock, logger: logger}
	cardholderID := uuid.New()
	now := time.Now()

	query := `
		SELECT id, cardholder_id, card_id, delta, balance_before, balance_after, description, transaction_id, created_at
		FROM balance_history
		WHERE cardholder_id = \$1
		ORDER BY created_at ASC, id ASC
		LIMIT \$2 OFFSET \$3
	`

	t.Run("returns entries oldest first", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "cardholder_id", "card_id", "delta", "balance_before", "balance_after", "description", "transaction_id", "created_at"}).
			AddRow(uuid.New(), cardholderID, "RFID-001", int64(10000), int64(0), int64(10000), "Opening balance", nil, now.Add(-time.Hour)).
			AddRow(uuid.New(), cardholderID, "RFID-001", int64(-8000), int64(10000), int64(2000), "Canteen purchase", nil, now)

		mock.ExpectQuery(query).WithArgs(cardholderID, 10, 0).WillReturnRows(rows)

		entries, err := repo.GetByCardholder(ctx, cardholderID, 10, 0)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, int64(10000), entries[0].Delta)
		assert.Equal(t, entries[0].BalanceAfter, entries[1].BalanceBefore)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectQuery(query).WithArgs(cardholderID, 10, 0).WillReturnError(dbErr)

		entries, err := repo.GetByCardholder(ctx, cardholderID, 10, 0)
		assert.Error(t, err)
		assert.Nil(t, entries)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_CountByCardholder(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LedgerRepository{querier: mock, logger: logger}
	cardholderID := uuid.New()

	query := `
		SELECT COUNT\(\*\)
		FROM balance_history
		WHERE cardholder_id = \$1
	`

	mock.ExpectQuery(query).WithArgs(cardholderID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := repo.CountByCardholder(ctx, cardholderID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
