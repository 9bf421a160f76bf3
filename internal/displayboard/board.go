// Package displayboard projects terminal snapshots for secondary screens.
// The board is a passive read model: it keeps the latest snapshot per
// terminal and has no path back into the checkout workflow.
package displayboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/campus-canteen-ledger/internal/terminal"
)

// Board holds the latest snapshot per terminal
type Board struct {
	logger *slog.Logger

	mu        sync.RWMutex
	terminals map[string]*terminal.Snapshot
}

// NewBoard creates an empty display board
func NewBoard(logger *slog.Logger) *Board {
	return &Board{
		logger:    logger,
		terminals: make(map[string]*terminal.Snapshot),
	}
}

// Handle applies one snapshot message. Snapshots carry their emission time,
// so re-delivered or out-of-order messages older than the current projection
// are dropped; applying the same snapshot twice is a no-op.
func (b *Board) Handle(ctx context.Context, key []byte, value []byte) error {
	var snapshot terminal.Snapshot
	if err := json.Unmarshal(value, &snapshot); err != nil {
		return fmt.Errorf("failed to decode terminal snapshot: %w", err)
	}
	if snapshot.TerminalID == "" {
		return fmt.Errorf("terminal snapshot missing terminal id")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.terminals[snapshot.TerminalID]
	if ok && current.UpdatedAt.After(snapshot.UpdatedAt) {
		b.logger.Debug("Ignoring stale terminal snapshot",
			"terminal_id", snapshot.TerminalID,
			"snapshot_at", snapshot.UpdatedAt,
		)
		return nil
	}

	b.terminals[snapshot.TerminalID] = &snapshot

	if !ok || current.Status != snapshot.Status {
		b.logger.Info("Terminal state changed",
			"terminal_id", snapshot.TerminalID,
			"status", string(snapshot.Status),
			"total", snapshot.Total,
			"message", snapshot.Message,
		)
	}
	return nil
}

// Get returns the latest snapshot for a terminal, or nil if none seen yet
func (b *Board) Get(terminalID string) *terminal.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.terminals[terminalID]
}

// All returns the latest snapshot of every known terminal
func (b *Board) All() []*terminal.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snapshots := make([]*terminal.Snapshot, 0, len(b.terminals))
	for _, snapshot := range b.terminals {
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}
