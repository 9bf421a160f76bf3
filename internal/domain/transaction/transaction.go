package transaction

import (
	"errors"
	"strings"
	"time"

	"github.com/campus-canteen-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyCart            = errors.New("cart must contain at least one line")
	ErrInvalidQuantity      = errors.New("line quantity must be positive")
	ErrNegativeManualAmount = errors.New("manual amount cannot be negative")
)

// LineItem snapshots one cart line at charge time. The unit price is
// copied from the catalog so later price edits never retroactively
// alter a recorded transaction.
type LineItem struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	ItemID        string    `json:"item_id"`
	ItemName      string    `json:"item_name"`
	Quantity      int       `json:"quantity"`
	UnitPrice     int64     `json:"unit_price"`
	LineTotal     int64     `json:"line_total"`
}

// Transaction is the durable record of one completed charge
type Transaction struct {
	ID            uuid.UUID                `json:"id"`
	Reference     string                   `json:"reference"`
	CardholderID  uuid.UUID                `json:"cardholder_id"`
	CardID        string                   `json:"card_id"`
	Amount        int64                    `json:"amount"`
	PaymentMethod shared.PaymentMethod     `json:"payment_method"`
	Status        shared.TransactionStatus `json:"status"`
	Description   string                   `json:"description"`
	Lines         []LineItem               `json:"lines"`
	CreatedAt     time.Time                `json:"created_at"`
}

// New builds a completed transaction with a generated reference
func New(cardholderID uuid.UUID, cardID string, amount int64, method shared.PaymentMethod, description string) *Transaction {
	id := uuid.New()
	return &Transaction{
		ID:            id,
		Reference:     NewReference(id),
		CardholderID:  cardholderID,
		CardID:        cardID,
		Amount:        amount,
		PaymentMethod: method,
		Status:        shared.TransactionStatusCompleted,
		Description:   description,
		CreatedAt:     time.Now(),
	}
}

// NewReference derives a short human-readable receipt reference from a
// transaction id, e.g. "TXN-9F86D081"
func NewReference(id uuid.UUID) string {
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return "TXN-" + hex[:8]
}
