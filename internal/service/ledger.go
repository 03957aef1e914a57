package service

import (
	"context"

	"github.com/devialdimp/bank-ledger/internal/models"
)

// LedgerStore is the read-only slice of the store the ledger views need.
type LedgerStore interface {
	Transactions(ctx context.Context) ([]models.TransactionSummary, error)
	TransactionByID(ctx context.Context, id int64) (*models.TransactionDetail, error)
}

// LedgerService answers history queries over committed ledger entries. It
// never mutates state.
type LedgerService struct {
	store LedgerStore
}

// creates a new LedgerService
func NewLedgerService(store LedgerStore) *LedgerService {
	return &LedgerService{store: store}
}

// ListTransactions returns every ledger entry with party summaries, ordered
// by id.
func (s *LedgerService) ListTransactions(ctx context.Context) ([]models.TransactionSummary, error) {
	return s.store.Transactions(ctx)
}

// GetTransaction returns one entry expanded with party account numbers and
// owner names.
func (s *LedgerService) GetTransaction(ctx context.Context, id int64) (*models.TransactionDetail, error) {
	return s.store.TransactionByID(ctx, id)
}
