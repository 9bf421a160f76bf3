package terminal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// State is the checkout workflow position of one terminal
type State string

const (
	StateBuilding     State = "BUILDING"
	StateAwaitingCard State = "AWAITING_CARD"
	StateCapturing    State = "CAPTURING"
	StateCompleted    State = "COMPLETED"
	StateFailed       State = "FAILED"
)

// SnapshotLine is one cart line as shown on the display
type SnapshotLine struct {
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// Snapshot is the full display projection of a terminal, emitted on every
// state transition. It is self-contained and idempotent: re-delivering the
// same snapshot leaves the display unchanged.
type Snapshot struct {
	TerminalID   string         `json:"terminal_id"`
	Status       State          `json:"status"`
	Cart         []SnapshotLine `json:"cart"`
	Total        int64          `json:"total"`
	CardholderID *uuid.UUID     `json:"cardholder_id,omitempty"`
	Balance      *int64         `json:"balance,omitempty"`
	Message      string         `json:"message"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Sink receives terminal snapshots for projection. Implementations must be
// passive consumers with no way to mutate terminal state.
type Sink interface {
	Publish(ctx context.Context, snapshot *Snapshot) error
}
