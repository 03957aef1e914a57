package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/devialdimp/bank-ledger/internal/metrics"
	"github.com/devialdimp/bank-ledger/internal/models"
)

// TransferStore is the slice of the account store a transfer needs: party
// resolution plus the atomic debit+credit+append commit.
type TransferStore interface {
	AccountByUserID(ctx context.Context, userID int64) (*models.Account, error)
	TransferFunds(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal) (*models.Transaction, error)
}

// EventPublisher hands committed transfers to the statement archive pipeline.
type EventPublisher interface {
	PublishTransfer(ctx context.Context, ev *models.TransferEvent) error
}

// TransferService validates and executes transfers. Validation never writes;
// the mutation is a single atomic unit inside the store, and the funds check
// is repeated there under the account locks.
type TransferService struct {
	store       TransferStore
	events      EventPublisher
	metrics     *metrics.TransferMetrics
	logger      *zap.Logger
	maxAttempts int
	retryDelay  time.Duration
}

// creates a new TransferService
func NewTransferService(store TransferStore, events EventPublisher, m *metrics.TransferMetrics, logger *zap.Logger) *TransferService {
	return &TransferService{
		store:       store,
		events:      events,
		metrics:     m,
		logger:      logger,
		maxAttempts: 3,
		retryDelay:  50 * time.Millisecond,
	}
}

// validate resolves both parties and checks the business rules. It has no
// side effects and is safe to call repeatedly. The balance check here is
// advisory: the commit re-checks under the lock.
func (s *TransferService) validate(ctx context.Context, senderUserID, receiverUserID int64, amount decimal.Decimal) (sender, receiver *models.Account, err error) {
	if amount.Sign() <= 0 {
		return nil, nil, models.ErrInvalidAmount
	}

	sender, err = s.store.AccountByUserID(ctx, senderUserID)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			return nil, nil, models.ErrSenderAccountNotFound
		}
		return nil, nil, err
	}

	receiver, err = s.store.AccountByUserID(ctx, receiverUserID)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			return nil, nil, models.ErrReceiverAccountNotFound
		}
		return nil, nil, err
	}

	if sender.Balance.LessThan(amount) {
		return nil, nil, models.ErrInsufficientFunds
	}

	return sender, receiver, nil
}

// Transfer moves amount from the sender user's account to the receiver
// user's account. On success exactly one ledger entry exists for the call;
// on any failure none does.
func (s *TransferService) Transfer(ctx context.Context, req *models.TransferRequest) (*models.TransferResult, error) {
	start := time.Now()

	sender, receiver, err := s.validate(ctx, req.SenderID, req.ReceiverID, req.Amount)
	if err != nil {
		s.metrics.Observe(metrics.OutcomeRejected, time.Since(start))
		return nil, err
	}

	tr, err := s.commit(ctx, sender.ID, receiver.ID, req.Amount)
	if err != nil {
		s.metrics.Observe(outcomeFor(err), time.Since(start))
		return nil, err
	}
	s.metrics.Observe(metrics.OutcomeCommitted, time.Since(start))

	s.publish(ctx, tr)

	return &models.TransferResult{
		ID:        tr.ID,
		Amount:    tr.Amount,
		CreatedAt: tr.CreatedAt,
		Sender:    models.AccountRef{ID: sender.ID, AccountNumber: sender.AccountNumber},
		Receiver:  models.AccountRef{ID: receiver.ID, AccountNumber: receiver.AccountNumber},
	}, nil
}

// commit drives the store's atomic unit, retrying bounded-wait conflicts. A
// conflicted attempt left no visible mutation, so the whole transfer can be
// replayed blindly.
func (s *TransferService) commit(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal) (*models.Transaction, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		tr, err := s.store.TransferFunds(ctx, senderID, receiverID, amount)
		if err == nil {
			return tr, nil
		}
		if !errors.Is(err, models.ErrTxConflict) {
			return nil, err
		}

		lastErr = err
		s.logger.Warn("transfer conflict, retrying",
			zap.Int64("sender_account", senderID),
			zap.Int64("receiver_account", receiverID),
			zap.Int("attempt", attempt),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
	return nil, lastErr
}

// publish is best effort: the transfer is already committed, so an archive
// event that cannot be queued is logged and dropped rather than failing the
// call.
func (s *TransferService) publish(ctx context.Context, tr *models.Transaction) {
	if s.events == nil {
		return
	}
	ev := &models.TransferEvent{
		Reference:         uuid.New().String(),
		TransactionID:     tr.ID,
		SenderAccountID:   tr.SenderID,
		ReceiverAccountID: tr.ReceiverID,
		Amount:            tr.Amount,
		CreatedAt:         tr.CreatedAt,
	}
	if err := s.events.PublishTransfer(ctx, ev); err != nil {
		s.logger.Warn("failed to publish transfer event",
			zap.Int64("transaction_id", tr.ID), zap.Error(err))
	}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, models.ErrTxConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, models.ErrStoreUnavailable):
		return metrics.OutcomeStoreFailure
	default:
		return metrics.OutcomeRejected
	}
}
