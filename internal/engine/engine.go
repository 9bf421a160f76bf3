// Package engine executes checkout charges. A charge resolves cart lines
// against the menu catalog, debits the cardholder through the ledger store,
// and records the transaction with its line items and a receipt outbox row,
// all inside one database transaction. Either everything commits or nothing
// does; a failed charge leaves no partial rows behind.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-canteen-ledger/internal/domain/menu"
	"github.com/campus-canteen-ledger/internal/domain/outbox"
	"github.com/campus-canteen-ledger/internal/domain/shared"
	"github.com/campus-canteen-ledger/internal/domain/transaction"
	"github.com/campus-canteen-ledger/internal/ledgerstore"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxRunner begins and resolves a database unit of work
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// LedgerStore applies balance deltas inside a caller-owned transaction
type LedgerStore interface {
	ApplyDeltaTx(ctx context.Context, tx pgx.Tx, cardholderID uuid.UUID, delta int64, description string, transactionID *uuid.UUID) (*ledgerstore.DeltaResult, error)
}

// CartLine is one requested item with its quantity. Prices are never
// client-supplied; the engine resolves them from the catalog.
type CartLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// ChargeRequest describes one checkout to settle
type ChargeRequest struct {
	CardholderID  uuid.UUID
	Lines         []CartLine
	PaymentMethod shared.PaymentMethod

	// ManualAmount is the cash amount tendered for MANUAL settlements.
	// Ignored for CARD payments.
	ManualAmount int64
}

// ChargeResult reports a committed charge
type ChargeResult struct {
	Transaction     *transaction.Transaction
	PreviousBalance int64
	NewBalance      int64
}

// Engine coordinates catalog resolution, the ledger debit, and the
// transaction record
type Engine struct {
	db      TxRunner
	store   LedgerStore
	catalog menu.Catalog
	txns    transaction.Repository
	outbox  outbox.Repository
	logger  *slog.Logger
}

// NewEngine creates a transaction engine
func NewEngine(db TxRunner, store LedgerStore, catalog menu.Catalog, txns transaction.Repository, outboxRepo outbox.Repository, logger *slog.Logger) *Engine {
	return &Engine{
		db:      db,
		store:   store,
		catalog: catalog,
		txns:    txns,
		outbox:  outboxRepo,
		logger:  logger,
	}
}

// Charge settles one checkout. Cart lines are resolved against the catalog
// before any database work starts, so an unavailable item never touches the
// ledger. CARD payments debit the full cart total; MANUAL payments record the
// cash amount tendered and apply a zero delta so the sale still lands in the
// cardholder's history with the balance unchanged.
func (e *Engine) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	lines, total, err := e.resolveCart(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	var amount, delta int64
	var description string
	switch req.PaymentMethod {
	case shared.PaymentMethodManual:
		if req.ManualAmount < 0 {
			return nil, transaction.ErrNegativeManualAmount
		}
		amount = req.ManualAmount
		delta = 0
		description = "Manual cash settlement"
	default:
		amount = total
		delta = -total
		description = "Canteen purchase"
	}

	txn := transaction.New(req.CardholderID, "", amount, req.PaymentMethod, description)
	txn.Lines = lines
	for i := range txn.Lines {
		txn.Lines[i].TransactionID = txn.ID
	}

	var result *ledgerstore.DeltaResult
	err = e.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		r, err := e.store.ApplyDeltaTx(ctx, tx, req.CardholderID, delta, description+" "+txn.Reference, &txn.ID)
		if err != nil {
			return err
		}
		result = r
		txn.CardID = r.Entry.CardID

		if err := e.txns.WithTx(tx).Create(ctx, txn); err != nil {
			return err
		}

		receipt, err := outbox.NewMessage(txn)
		if err != nil {
			return fmt.Errorf("failed to build receipt message: %w", err)
		}
		return e.outbox.WithTx(tx).Create(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Charge completed",
		"transaction_id", txn.ID.String(),
		"reference", txn.Reference,
		"cardholder_id", req.CardholderID.String(),
		"payment_method", string(req.PaymentMethod),
		"amount", amount,
		"balance_after", result.NewBalance,
	)

	return &ChargeResult{
		Transaction:     txn,
		PreviousBalance: result.PreviousBalance,
		NewBalance:      result.NewBalance,
	}, nil
}

// resolveCart validates the cart and prices every line from the catalog.
// The first unresolvable item aborts the whole charge.
func (e *Engine) resolveCart(ctx context.Context, lines []CartLine) ([]transaction.LineItem, int64, error) {
	if len(lines) == 0 {
		return nil, 0, transaction.ErrEmptyCart
	}

	itemIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, 0, transaction.ErrInvalidQuantity
		}
		itemIDs = append(itemIDs, line.ItemID)
	}

	items, err := e.catalog.ResolveItems(ctx, itemIDs)
	if err != nil {
		return nil, 0, err
	}

	resolved := make([]transaction.LineItem, 0, len(lines))
	var total int64
	for _, line := range lines {
		item, ok := items[line.ItemID]
		if !ok {
			return nil, 0, menu.ErrItemUnavailable{ItemID: line.ItemID}
		}

		lineTotal := item.Price * int64(line.Quantity)
		resolved = append(resolved, transaction.LineItem{
			ItemID:    item.ID,
			ItemName:  item.Name,
			Quantity:  line.Quantity,
			UnitPrice: item.Price,
			LineTotal: lineTotal,
		})
		total += lineTotal
	}

	return resolved, total, nil
}

// Transactions returns paginated transactions for a cardholder
func (e *Engine) Transactions(ctx context.Context, cardholderID uuid.UUID, page, perPage int) ([]*transaction.Transaction, error) {
	offset := (page - 1) * perPage
	return e.txns.GetByCardholder(ctx, cardholderID, perPage, offset)
}

// Transaction returns one transaction by id with its line items
func (e *Engine) Transaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return e.txns.GetByID(ctx, id)
}
