package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/devialdimp/bank-ledger/internal/models"
)

// AccountStore is the directory slice of the store. Note the absence of any
// balance write: balances change only through the transfer commit.
type AccountStore interface {
	CreateAccount(ctx context.Context, userID int64, accountNumber string, balance decimal.Decimal) (*models.Account, error)
	Accounts(ctx context.Context) ([]models.Account, error)
	AccountByID(ctx context.Context, id int64) (*models.Account, error)
	AccountDetail(ctx context.Context, id int64) (*models.AccountDetail, error)
	UpdateAccount(ctx context.Context, id int64, userID int64, accountNumber string) (*models.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// AccountService is the thin directory over account records.
type AccountService struct {
	store AccountStore
}

// creates a new AccountService
func NewAccountService(store AccountStore) *AccountService {
	return &AccountService{store: store}
}

// CreateAccount opens an account for an existing user with a non-negative
// opening balance.
func (s *AccountService) CreateAccount(ctx context.Context, req *models.CreateAccountRequest) (*models.Account, error) {
	if strings.TrimSpace(req.AccountNumber) == "" {
		return nil, models.ErrBadAccountNumber
	}
	if req.Balance.Sign() < 0 {
		return nil, models.ErrInvalidAmount
	}
	if _, err := s.store.UserByID(ctx, req.UserID); err != nil {
		return nil, err
	}
	return s.store.CreateAccount(ctx, req.UserID, req.AccountNumber, req.Balance)
}

// ListAccounts returns all accounts.
func (s *AccountService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.store.Accounts(ctx)
}

// GetAccount returns the expanded directory view of one account.
func (s *AccountService) GetAccount(ctx context.Context, id int64) (*models.AccountDetail, error) {
	return s.store.AccountDetail(ctx, id)
}

// UpdateAccount renames the account or reassigns its owner. The owner must
// exist; balances are not touched here.
func (s *AccountService) UpdateAccount(ctx context.Context, id int64, req *models.UpdateAccountRequest) (*models.Account, error) {
	if _, err := s.store.AccountByID(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.store.UserByID(ctx, req.UserID); err != nil {
		return nil, err
	}
	return s.store.UpdateAccount(ctx, id, req.UserID, req.AccountNumber)
}

// DeleteAccount removes the account and, in the same storage transaction,
// every ledger entry naming it on either side.
func (s *AccountService) DeleteAccount(ctx context.Context, id int64) error {
	return s.store.DeleteAccount(ctx, id)
}
