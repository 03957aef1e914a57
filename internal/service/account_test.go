package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/devialdimp/bank-ledger/internal/metrics"
	"github.com/devialdimp/bank-ledger/internal/models"
)

func TestCreateAccount(t *testing.T) {
	store := newMemStore()
	svc := NewAccountService(store)
	alice := store.addUser("alice")

	tests := []struct {
		name    string
		req     models.CreateAccountRequest
		wantErr error
	}{
		{
			name: "ok",
			req:  models.CreateAccountRequest{UserID: alice.ID, AccountNumber: "ACC-100", Balance: dec(50)},
		},
		{
			name:    "unknown user",
			req:     models.CreateAccountRequest{UserID: 999, AccountNumber: "ACC-101", Balance: dec(0)},
			wantErr: models.ErrUserNotFound,
		},
		{
			name:    "negative opening balance",
			req:     models.CreateAccountRequest{UserID: alice.ID, AccountNumber: "ACC-102", Balance: dec(-1)},
			wantErr: models.ErrInvalidAmount,
		},
		{
			name:    "blank account number",
			req:     models.CreateAccountRequest{UserID: alice.ID, AccountNumber: "  ", Balance: dec(0)},
			wantErr: models.ErrBadAccountNumber,
		},
		{
			name:    "duplicate account number",
			req:     models.CreateAccountRequest{UserID: alice.ID, AccountNumber: "ACC-100", Balance: dec(0)},
			wantErr: models.ErrDuplicateAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := svc.CreateAccount(context.Background(), &tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateAccount() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateAccount() error = %v", err)
			}
			if account.AccountNumber != tt.req.AccountNumber {
				t.Errorf("account number = %q, want %q", account.AccountNumber, tt.req.AccountNumber)
			}
			if !account.Balance.Equal(tt.req.Balance) {
				t.Errorf("balance = %s, want %s", account.Balance, tt.req.Balance)
			}
		})
	}
}

func TestUpdateAccount(t *testing.T) {
	store := newMemStore()
	svc := NewAccountService(store)
	alice := store.addUser("alice")
	bob := store.addUser("bob")
	acc := store.addAccount(alice.ID, "ACC-001", 100)

	updated, err := svc.UpdateAccount(context.Background(), acc.ID, &models.UpdateAccountRequest{
		UserID: bob.ID, AccountNumber: "ACC-001-R",
	})
	if err != nil {
		t.Fatalf("UpdateAccount() error = %v", err)
	}
	if updated.UserID != bob.ID || updated.AccountNumber != "ACC-001-R" {
		t.Errorf("updated = %+v", updated)
	}
	if !updated.Balance.Equal(dec(100)) {
		t.Errorf("balance changed by update: %s", updated.Balance)
	}

	if _, err := svc.UpdateAccount(context.Background(), 999, &models.UpdateAccountRequest{
		UserID: bob.ID, AccountNumber: "X",
	}); !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("unknown account error = %v, want ErrAccountNotFound", err)
	}

	if _, err := svc.UpdateAccount(context.Background(), acc.ID, &models.UpdateAccountRequest{
		UserID: 999, AccountNumber: "X",
	}); !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("unknown owner error = %v, want ErrUserNotFound", err)
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	store := newMemStore()
	svc := NewAccountService(store)
	alice := store.addUser("alice")
	bob := store.addUser("bob")
	carol := store.addUser("carol")
	a := store.addAccount(alice.ID, "ACC-001", 1000)
	store.addAccount(bob.ID, "ACC-002", 1000)
	store.addAccount(carol.ID, "ACC-003", 1000)

	transfers := NewTransferService(store, nil, metrics.NewTransferMetrics(prometheus.NewRegistry()), zap.NewNop())
	ctx := context.Background()
	// A sends to B, C sends to A, B sends to C
	mustTransfer(t, transfers, alice.ID, bob.ID, 10)
	mustTransfer(t, transfers, carol.ID, alice.ID, 20)
	mustTransfer(t, transfers, bob.ID, carol.ID, 30)

	if err := svc.DeleteAccount(ctx, a.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}

	// entries naming A on either side are gone, the unrelated one survives
	ledger := NewLedgerService(store)
	txs, err := ledger.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("surviving entries = %d, want 1", len(txs))
	}
	if txs[0].Sender.AccountNumber != "ACC-002" || txs[0].Receiver.AccountNumber != "ACC-003" {
		t.Errorf("surviving entry parties = %+v / %+v", txs[0].Sender, txs[0].Receiver)
	}

	if _, err := svc.GetAccount(ctx, a.ID); !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("GetAccount(deleted) error = %v, want ErrAccountNotFound", err)
	}
	if err := svc.DeleteAccount(ctx, a.ID); !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("second delete error = %v, want ErrAccountNotFound", err)
	}
}

func TestGetAccountDetail(t *testing.T) {
	store := newMemStore()
	svc := NewAccountService(store)
	alice := store.addUser("alice")
	bob := store.addUser("bob")
	a := store.addAccount(alice.ID, "ACC-001", 1000)
	store.addAccount(bob.ID, "ACC-002", 1000)

	transfers := NewTransferService(store, nil, metrics.NewTransferMetrics(prometheus.NewRegistry()), zap.NewNop())
	mustTransfer(t, transfers, alice.ID, bob.ID, 10)
	mustTransfer(t, transfers, bob.ID, alice.ID, 5)

	detail, err := svc.GetAccount(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if detail.Owner == nil || detail.Owner.Name != "alice" {
		t.Errorf("owner = %+v, want alice", detail.Owner)
	}
	if len(detail.SentTransactions) != 1 || len(detail.ReceivedTransactions) != 1 {
		t.Errorf("history = %d sent, %d received, want 1 and 1",
			len(detail.SentTransactions), len(detail.ReceivedTransactions))
	}
}

func mustTransfer(t *testing.T, svc *TransferService, senderUserID, receiverUserID, amount int64) {
	t.Helper()
	if _, err := svc.Transfer(context.Background(), &models.TransferRequest{
		SenderID: senderUserID, ReceiverID: receiverUserID, Amount: dec(amount),
	}); err != nil {
		t.Fatalf("transfer %d->%d: %v", senderUserID, receiverUserID, err)
	}
}
