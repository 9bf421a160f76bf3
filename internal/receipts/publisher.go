// Package receipts drains the transactional receipt outbox. Receipt rows are
// written in the same unit of work as the charge itself, so this package only
// has to move already-committed receipts onto the broker, at least once.
// Downstream consumers dedupe on transaction id.
package receipts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-canteen-ledger/internal/domain/outbox"
	"github.com/campus-canteen-ledger/internal/domain/shared"
	"github.com/campus-canteen-ledger/internal/platform/messaging/producers"
)

// ReceiptPublisher publishes one outbox message to the receipt topic
type ReceiptPublisher interface {
	PublishReceipt(ctx context.Context, message *outbox.Message) error
}

// KafkaReceiptPublisher implements ReceiptPublisher over a topic producer
type KafkaReceiptPublisher struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewReceiptPublisher creates a new publisher
func NewReceiptPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) ReceiptPublisher {
	return &KafkaReceiptPublisher{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishReceipt publishes the receipt payload keyed by cardholder id and
// marks the outbox row PROCESSED. A row whose payload cannot be decoded is
// unpublishable and goes straight to FAILED_TO_PUBLISH.
func (p *KafkaReceiptPublisher) PublishReceipt(ctx context.Context, message *outbox.Message) error {
	receipt, err := message.Receipt()
	if err != nil {
		p.logger.Error("Failed to decode receipt from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after decode error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	if err := p.producer.Publish(ctx, message.CardholderID.String(), receipt); err != nil {
		return fmt.Errorf("failed to publish receipt %s: %w", receipt.Reference, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		p.logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("receipt %s published, but failed to mark outbox %d as PROCESSED: %w", receipt.Reference, message.ID, err)
	}

	p.logger.Info("Receipt published and marked as PROCESSED",
		"outbox_id", message.ID, "transaction_id", message.TransactionID, "reference", receipt.Reference,
	)
	return nil
}
