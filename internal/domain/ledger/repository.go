package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines the append-only history store. There are
// deliberately no update or delete operations.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	GetByCardholder(ctx context.Context, cardholderID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByCardholder(ctx context.Context, cardholderID uuid.UUID) (int64, error)
	WithTx(tx pgx.Tx) Repository
}
