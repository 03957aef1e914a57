package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/devialdimp/bank-ledger/internal/models"
)

// TransferFunds applies a debit+credit pair and appends the ledger entry as a
// single database transaction. Either all three writes commit or none do.
//
// Both account rows are locked with SELECT ... FOR UPDATE in ascending id
// order, regardless of which side is the sender, so two concurrent opposite
// transfers (A->B and B->A) can never hold one lock each and wait on the
// other. The lock wait is bounded by lock_timeout; hitting it aborts the
// attempt with models.ErrTxConflict and no visible mutation.
//
// Sufficiency of funds is checked here, under the lock, against the current
// balance. Any earlier check was advisory only.
func (p *Postgres) TransferFunds(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal) (tr *models.Transaction, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("failed to begin transfer", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", p.lockTimeout.Milliseconds()),
	); err != nil {
		return nil, storeErr("failed to set lock timeout", err)
	}

	// Lock both rows in ascending id order. A self-transfer locks one row.
	balances := make(map[int64]decimal.Decimal, 2)
	for _, id := range lockOrder(senderID, receiverID) {
		var balance decimal.Decimal
		err = tx.QueryRowContext(ctx,
			`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, id,
		).Scan(&balance)
		if err != nil {
			if err == sql.ErrNoRows {
				// the account disappeared between validation and commit
				if id == senderID {
					err = models.ErrSenderAccountNotFound
				} else {
					err = models.ErrReceiverAccountNotFound
				}
				return nil, err
			}
			return nil, storeErr("failed to lock account", err)
		}
		balances[id] = balance
	}

	if balances[senderID].LessThan(amount) {
		err = models.ErrInsufficientFunds
		return nil, err
	}

	// A self-transfer nets to zero, so the balance rows stay untouched; the
	// ledger entry below is still written.
	if senderID != receiverID {
		if _, err = tx.ExecContext(ctx,
			`UPDATE accounts SET balance = balance - $1, updated_at = now() WHERE id = $2`,
			amount, senderID,
		); err != nil {
			return nil, storeErr("failed to debit sender", err)
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE accounts SET balance = balance + $1, updated_at = now() WHERE id = $2`,
			amount, receiverID,
		); err != nil {
			return nil, storeErr("failed to credit receiver", err)
		}
	}

	var t models.Transaction
	err = tx.QueryRowContext(ctx,
		`INSERT INTO transactions (sender_id, receiver_id, amount)
		 VALUES ($1, $2, $3)
		 RETURNING id, sender_id, receiver_id, amount, created_at`,
		senderID, receiverID, amount,
	).Scan(&t.ID, &t.SenderID, &t.ReceiverID, &t.Amount, &t.CreatedAt)
	if err != nil {
		return nil, storeErr("failed to append transaction", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, storeErr("failed to commit transfer", err)
	}

	return &t, nil
}

// lockOrder returns the distinct account ids in ascending order.
func lockOrder(a, b int64) []int64 {
	if a == b {
		return []int64{a}
	}
	if a < b {
		return []int64{a, b}
	}
	return []int64{b, a}
}
