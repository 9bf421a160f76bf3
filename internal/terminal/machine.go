// Package terminal drives the per-terminal checkout workflow: cart assembly,
// card presentment, payment capture, and outcome display. A machine holds one
// active order at a time; the order lives only in memory, and only the
// resulting transaction and history entries are durable.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campus-canteen-ledger/internal/domain/card"
	"github.com/campus-canteen-ledger/internal/domain/menu"
	"github.com/campus-canteen-ledger/internal/domain/shared"
	"github.com/campus-canteen-ledger/internal/engine"
	"github.com/google/uuid"
)

// ErrInvalidState indicates an operation the current workflow state forbids
type ErrInvalidState struct {
	TerminalID string
	Op         string
	State      State
}

func (e ErrInvalidState) Error() string {
	return fmt.Sprintf("terminal %s: cannot %s in state %s", e.TerminalID, e.Op, e.State)
}

// ErrNoCardholder indicates a manual payment with no card ever resolved
type ErrNoCardholder struct {
	TerminalID string
}

func (e ErrNoCardholder) Error() string {
	return "terminal " + e.TerminalID + ": no resolved cardholder for manual payment"
}

// CardResolver looks up a card by its identifier
type CardResolver interface {
	GetByCardID(ctx context.Context, cardID string) (*card.Card, error)
}

type cartLine struct {
	itemID    string
	itemName  string
	quantity  int
	unitPrice int64
	lineTotal int64
}

// Machine is the order state machine for one terminal. One operator drives
// one machine, but HTTP delivery means calls may still overlap, so every
// operation holds the machine's mutex.
type Machine struct {
	terminalID string

	catalog menu.Catalog
	cards   CardResolver
	charger engine.Charger
	sink    Sink
	logger  *slog.Logger

	mu           sync.Mutex
	state        State
	cart         []cartLine
	total        int64
	cardholderID *uuid.UUID
	cardID       string
	balance      *int64
	message      string
}

// NewMachine creates a machine in BUILDING with an empty cart
func NewMachine(terminalID string, catalog menu.Catalog, cards CardResolver, charger engine.Charger, sink Sink, logger *slog.Logger) *Machine {
	return &Machine{
		terminalID: terminalID,
		catalog:    catalog,
		cards:      cards,
		charger:    charger,
		sink:       sink,
		logger:     logger.With("terminal_id", terminalID),
		state:      StateBuilding,
	}
}

// AddItem adds a line to the cart or raises the quantity of an existing one.
// The whole cart is repriced from the catalog afterwards so a mid-sale price
// edit is reflected immediately.
func (m *Machine) AddItem(ctx context.Context, itemID string, quantity int) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateBuilding {
		return nil, ErrInvalidState{TerminalID: m.terminalID, Op: "add item", State: m.state}
	}
	if quantity <= 0 {
		return nil, menu.ErrItemUnavailable{ItemID: itemID}
	}

	next := make([]cartLine, len(m.cart))
	copy(next, m.cart)

	found := false
	for i := range next {
		if next[i].itemID == itemID {
			next[i].quantity += quantity
			found = true
			break
		}
	}
	if !found {
		next = append(next, cartLine{itemID: itemID, quantity: quantity})
	}

	if err := m.reprice(ctx, next); err != nil {
		return nil, err
	}
	m.cart = next

	return m.publish(ctx), nil
}

// RemoveItem drops a cart line entirely
func (m *Machine) RemoveItem(ctx context.Context, itemID string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateBuilding {
		return nil, ErrInvalidState{TerminalID: m.terminalID, Op: "remove item", State: m.state}
	}

	next := make([]cartLine, 0, len(m.cart))
	for _, line := range m.cart {
		if line.itemID != itemID {
			next = append(next, line)
		}
	}

	if err := m.reprice(ctx, next); err != nil {
		return nil, err
	}
	m.cart = next

	return m.publish(ctx), nil
}

// Ready freezes the cart and starts waiting for a card. Requires a non-empty
// cart; no cart mutation is accepted until the order resolves or is reset.
func (m *Machine) Ready(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateBuilding {
		return nil, ErrInvalidState{TerminalID: m.terminalID, Op: "ready", State: m.state}
	}
	if len(m.cart) == 0 {
		return nil, ErrInvalidState{TerminalID: m.terminalID, Op: "ready with empty cart", State: m.state}
	}

	// Reprice once more so the frozen total reflects current catalog prices
	if err := m.reprice(ctx, m.cart); err != nil {
		return nil, err
	}

	m.state = StateAwaitingCard
	m.message = "Please present card"
	return m.publish(ctx), nil
}

// PresentCard resolves the card and, on success, captures the payment. A
// misread (unknown or inactive card) keeps the machine in AWAITING_CARD so
// the operator can retry; only a successful read advances to CAPTURING.
// Once capture begins the attempt always resolves to COMPLETED or FAILED.
func (m *Machine) PresentCard(ctx context.Context, cardID string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAwaitingCard {
		return nil, ErrInvalidState{TerminalID: m.terminalID, Op: "present card", State: m.state}
	}

	c, err := m.cards.GetByCardID(ctx, cardID)
	if err != nil {
		m.message = "Card not recognized, please retry"
		m.publish(ctx)
		return nil, err
	}
	if !c.IsActive() {
		m.message = fmt.Sprintf("Card is %s, please retry", c.Status)
		m.publish(ctx)
		return nil, card.ErrCardNotActive{CardID: c.CardID, Status: c.Status}
	}

	cardholderID := c.CardholderID
	m.cardholderID = &cardholderID
	m.cardID = c.CardID
	m.balance = &c.Balance
	m.state = StateCapturing
	m.message = "Capturing payment"
	m.publish(ctx)

	return m.capture(ctx, shared.PaymentMethodCard, 0)
}

// RecordManualPayment settles a failed card attempt with staff-collected
// cash. The amount is staff-supplied and need not equal the cart total; the
// ledger records a zero-delta audit entry so the sale appears in history
// with the balance untouched.
func (m *Machine) RecordManualPayment(ctx context.Context, amount int64) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateFailed {
		return nil, ErrInvalidState{TerminalID: m.terminalID, Op: "record manual payment", State: m.state}
	}
	if m.cardholderID == nil {
		return nil, ErrNoCardholder{TerminalID: m.terminalID}
	}

	m.state = StateCapturing
	m.message = "Recording manual payment"
	m.publish(ctx)

	return m.capture(ctx, shared.PaymentMethodManual, amount)
}

// Reset clears the order and returns to BUILDING. Allowed from any state
// except CAPTURING, where the unit of work is already committing and must be
// left to resolve.
func (m *Machine) Reset(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateCapturing {
		return nil, ErrInvalidState{TerminalID: m.terminalID, Op: "reset", State: m.state}
	}

	m.state = StateBuilding
	m.cart = nil
	m.total = 0
	m.cardholderID = nil
	m.cardID = ""
	m.balance = nil
	m.message = "New sale"
	return m.publish(ctx), nil
}

// Snapshot returns the current display projection without changing state
func (m *Machine) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// capture runs the charge and lands the machine in COMPLETED or FAILED.
// Caller holds the mutex and has already transitioned to CAPTURING.
func (m *Machine) capture(ctx context.Context, method shared.PaymentMethod, manualAmount int64) (*Snapshot, error) {
	lines := make([]engine.CartLine, 0, len(m.cart))
	for _, line := range m.cart {
		lines = append(lines, engine.CartLine{ItemID: line.itemID, Quantity: line.quantity})
	}

	result, err := m.charger.Charge(ctx, &engine.ChargeRequest{
		CardholderID:  *m.cardholderID,
		Lines:         lines,
		PaymentMethod: method,
		ManualAmount:  manualAmount,
	})
	if err != nil {
		m.state = StateFailed
		m.message = failureMessage(err)

		var insufficient card.ErrInsufficientBalance
		if errors.As(err, &insufficient) {
			balance := insufficient.Available
			m.balance = &balance
		}

		m.logger.Warn("Capture failed", "payment_method", string(method), "error", err)
		return m.publish(ctx), err
	}

	m.state = StateCompleted
	m.balance = &result.NewBalance
	m.message = "Payment " + result.Transaction.Reference + " completed"

	m.logger.Info("Capture completed",
		"transaction_id", result.Transaction.ID.String(),
		"reference", result.Transaction.Reference,
		"amount", result.Transaction.Amount,
	)
	return m.publish(ctx), nil
}

// reprice resolves every line's current catalog price and recomputes the
// total. The first unresolvable item fails the whole mutation.
func (m *Machine) reprice(ctx context.Context, lines []cartLine) error {
	if len(lines) == 0 {
		m.total = 0
		return nil
	}

	itemIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		itemIDs = append(itemIDs, line.itemID)
	}

	items, err := m.catalog.ResolveItems(ctx, itemIDs)
	if err != nil {
		return err
	}

	var total int64
	for i := range lines {
		item, ok := items[lines[i].itemID]
		if !ok {
			return menu.ErrItemUnavailable{ItemID: lines[i].itemID}
		}
		lines[i].itemName = item.Name
		lines[i].unitPrice = item.Price
		lines[i].lineTotal = item.Price * int64(lines[i].quantity)
		total += lines[i].lineTotal
	}

	m.total = total
	return nil
}

// publish emits the current snapshot to the sink. A sink failure is logged
// and swallowed; the display is a projection, never a participant.
func (m *Machine) publish(ctx context.Context) *Snapshot {
	snapshot := m.snapshotLocked()
	if err := m.sink.Publish(ctx, snapshot); err != nil {
		m.logger.Error("Failed to publish terminal snapshot", "status", string(snapshot.Status), "error", err)
	}
	return snapshot
}

func (m *Machine) snapshotLocked() *Snapshot {
	cart := make([]SnapshotLine, 0, len(m.cart))
	for _, line := range m.cart {
		cart = append(cart, SnapshotLine{
			ItemID:    line.itemID,
			ItemName:  line.itemName,
			Quantity:  line.quantity,
			UnitPrice: line.unitPrice,
			LineTotal: line.lineTotal,
		})
	}

	snapshot := &Snapshot{
		TerminalID: m.terminalID,
		Status:     m.state,
		Cart:       cart,
		Total:      m.total,
		Message:    m.message,
		UpdatedAt:  time.Now(),
	}
	if m.cardholderID != nil {
		id := *m.cardholderID
		snapshot.CardholderID = &id
	}
	if m.balance != nil {
		balance := *m.balance
		snapshot.Balance = &balance
	}
	return snapshot
}

func failureMessage(err error) string {
	var insufficient card.ErrInsufficientBalance
	if errors.As(err, &insufficient) {
		return fmt.Sprintf("Insufficient balance, need %d more", insufficient.Shortfall())
	}

	var unavailable menu.ErrItemUnavailable
	if errors.As(err, &unavailable) {
		return "Item no longer available: " + unavailable.ItemID
	}

	return "Payment failed"
}
