package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/devialdimp/bank-ledger/internal/models"
)

// EventSource delivers committed transfer events.
type EventSource interface {
	ConsumeTransfers(ctx context.Context) (<-chan models.TransferEvent, error)
}

// ArchiveStore persists statement entries for committed transfers.
type ArchiveStore interface {
	ArchiveTransfer(ctx context.Context, ev *models.TransferEvent) error
}

// ArchiveProcessor drains committed transfer events into the statement
// archive. It only ever sees transfers that already committed, so archiving
// is a pure projection with no effect on balances or the ledger of record.
type ArchiveProcessor struct {
	source  EventSource
	archive ArchiveStore
	logger  *zap.Logger
}

// creates a new ArchiveProcessor
func NewArchiveProcessor(source EventSource, archive ArchiveStore, logger *zap.Logger) *ArchiveProcessor {
	return &ArchiveProcessor{
		source:  source,
		archive: archive,
		logger:  logger,
	}
}

// Start consumes events in a goroutine until ctx is cancelled.
func (p *ArchiveProcessor) Start(ctx context.Context) error {
	evChan, err := p.source.ConsumeTransfers(ctx)
	if err != nil {
		return fmt.Errorf("failed to consume transfer events: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-evChan:
				if !ok {
					return
				}

				if err := p.archive.ArchiveTransfer(ctx, &ev); err != nil {
					p.logger.Error("failed to archive transfer",
						zap.Int64("transaction_id", ev.TransactionID),
						zap.String("reference", ev.Reference),
						zap.Error(err),
					)
				} else {
					p.logger.Info("archived transfer",
						zap.Int64("transaction_id", ev.TransactionID),
					)
				}
			}
		}
	}()

	return nil
}
