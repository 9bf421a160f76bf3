package producers

import (
	"context"

	"github.com/campus-canteen-ledger/internal/terminal"
)

// SnapshotSink forwards terminal snapshots to the snapshot topic, keyed by
// terminal id so each display board sees its terminal's transitions in order
type SnapshotSink struct {
	publisher MessagePublisher
}

// NewSnapshotSink wraps a publisher as a terminal snapshot sink
func NewSnapshotSink(publisher MessagePublisher) *SnapshotSink {
	return &SnapshotSink{publisher: publisher}
}

func (s *SnapshotSink) Publish(ctx context.Context, snapshot *terminal.Snapshot) error {
	return s.publisher.Publish(ctx, snapshot.TerminalID, snapshot)
}
