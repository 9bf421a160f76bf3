// Package ledgerstore owns cardholder balances and their audit trail. It is
// the only writer of the cards.balance column: every change goes through
// ApplyDelta, which locks the card row, checks non-negativity, persists the
// new balance, and appends one history entry in a single unit of work.
package ledgerstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-canteen-ledger/internal/domain/card"
	"github.com/campus-canteen-ledger/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxRunner begins and resolves a database unit of work.
// *persistence.PostgresDB satisfies it.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// DeltaResult reports the balance movement of one applied delta
type DeltaResult struct {
	PreviousBalance int64
	NewBalance      int64
	Entry           *ledger.Entry
}

// Store applies balance deltas and serves balance/history reads
type Store struct {
	db      TxRunner
	cards   card.Repository
	history ledger.Repository
	logger  *slog.Logger
}

// NewStore creates a ledger store over the given repositories
func NewStore(db TxRunner, cards card.Repository, history ledger.Repository, logger *slog.Logger) *Store {
	return &Store{
		db:      db,
		cards:   cards,
		history: history,
		logger:  logger,
	}
}

// ApplyDelta applies a signed amount to the cardholder's balance in its own
// unit of work. Fails with card.ErrCardNotFound when no ACTIVE card is bound
// to the cardholder and card.ErrInsufficientBalance when the delta would
// drive the balance negative; in both cases nothing is written.
func (s *Store) ApplyDelta(ctx context.Context, cardholderID uuid.UUID, delta int64, description string, transactionID *uuid.UUID) (*DeltaResult, error) {
	var result *DeltaResult
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		r, err := s.ApplyDeltaTx(ctx, tx, cardholderID, delta, description, transactionID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyDeltaTx is ApplyDelta inside a caller-owned transaction. The
// transaction engine uses it so the ledger change commits or rolls back
// together with the transaction record.
//
// The balance read, the non-negativity check, and both writes happen while
// holding a row lock on the card, so concurrent deltas on the same
// cardholder serialize; deltas on different cardholders proceed in parallel.
func (s *Store) ApplyDeltaTx(ctx context.Context, tx pgx.Tx, cardholderID uuid.UUID, delta int64, description string, transactionID *uuid.UUID) (*DeltaResult, error) {
	cards := s.cards.WithTx(tx)

	locked, err := cards.LockActiveByCardholder(ctx, cardholderID)
	if err != nil {
		return nil, err
	}

	previousBalance := locked.Balance
	previousVersion := locked.Version

	if err := locked.ApplyDelta(delta); err != nil {
		s.logger.Warn("Delta rejected",
			"cardholder_id", cardholderID.String(),
			"delta", delta,
			"balance", previousBalance,
		)
		return nil, err
	}

	if err := cards.UpdateBalance(ctx, locked.CardID, locked.Balance, previousVersion); err != nil {
		return nil, err
	}

	entry := ledger.NewEntry(cardholderID, locked.CardID, delta, previousBalance, description, transactionID)
	if err := s.history.WithTx(tx).Append(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Applied balance delta",
		"cardholder_id", cardholderID.String(),
		"card_id", locked.CardID,
		"delta", delta,
		"balance_before", previousBalance,
		"balance_after", locked.Balance,
	)

	return &DeltaResult{
		PreviousBalance: previousBalance,
		NewBalance:      locked.Balance,
		Entry:           entry,
	}, nil
}

// Balance returns the cardholder's current balance. Pure read.
func (s *Store) Balance(ctx context.Context, cardholderID uuid.UUID) (int64, error) {
	c, err := s.cards.GetActiveByCardholder(ctx, cardholderID)
	if err != nil {
		return 0, err
	}
	return c.Balance, nil
}

// History returns paginated history entries plus the total count
func (s *Store) History(ctx context.Context, cardholderID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error) {
	offset := (page - 1) * perPage

	entries, err := s.history.GetByCardholder(ctx, cardholderID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.history.CountByCardholder(ctx, cardholderID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// IssueCard creates a new active card and, when the initial balance is
// positive, records the opening credit as the card's first history entry.
func (s *Store) IssueCard(ctx context.Context, cardID string, initialBalance int64) (*card.Card, error) {
	newCard, err := card.Issue(cardID, initialBalance)
	if err != nil {
		return nil, err
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.cards.WithTx(tx).Create(ctx, newCard); err != nil {
			return err
		}
		if newCard.Balance > 0 {
			entry := ledger.NewEntry(newCard.CardholderID, newCard.CardID, newCard.Balance, 0, "Opening balance", nil)
			if err := s.history.WithTx(tx).Append(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue card %s: %w", cardID, err)
	}

	return newCard, nil
}
