package outbox

import (
	"encoding/json"
	"time"

	"github.com/campus-canteen-ledger/internal/domain/shared"
	"github.com/campus-canteen-ledger/internal/domain/transaction"
	"github.com/google/uuid"
)

// Message stores a committed transaction receipt for reliable
// publishing. Rows are written in the same unit of work as the
// transaction itself, so a receipt exists exactly when the charge does.
type Message struct {
	ID            int64               `json:"id"`
	TransactionID uuid.UUID           `json:"transaction_id"`
	CardholderID  uuid.UUID           `json:"cardholder_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(txn *transaction.Transaction) (*Message, error) {
	payload, err := json.Marshal(txn)
	if err != nil {
		return nil, err
	}

	return &Message{
		TransactionID: txn.ID,
		CardholderID:  txn.CardholderID,
		Payload:       payload,
		Status:        shared.OutboxStatusPending,
		Attempts:      0,
		CreatedAt:     time.Now(),
	}, nil
}

// Receipt extracts the transaction from the payload
func (m *Message) Receipt() (*transaction.Transaction, error) {
	var txn transaction.Transaction
	if err := json.Unmarshal(m.Payload, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}
