package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/devialdimp/bank-ledger/internal/models"
)

// creates a new account for a user with an opening balance
func (p *Postgres) CreateAccount(ctx context.Context, userID int64, accountNumber string, balance decimal.Decimal) (*models.Account, error) {
	query := `
	INSERT INTO accounts (user_id, account_number, balance)
	VALUES ($1, $2, $3)
	RETURNING id, user_id, account_number, balance, created_at, updated_at`

	var account models.Account
	err := p.db.QueryRowContext(ctx, query, userID, accountNumber, balance).Scan(
		&account.ID, &account.UserID, &account.AccountNumber, &account.Balance,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "accounts_account_number_key") {
			return nil, models.ErrDuplicateAccount
		}
		return nil, storeErr("failed to create account", err)
	}

	return &account, nil
}

// retrieves an account by ID
func (p *Postgres) AccountByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `
	SELECT id, user_id, account_number, balance, created_at, updated_at
	FROM accounts
	WHERE id = $1`

	var account models.Account
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID, &account.UserID, &account.AccountNumber, &account.Balance,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrAccountNotFound
		}
		return nil, storeErr("failed to get account", err)
	}

	return &account, nil
}

// AccountByUserID resolves a user to their account. When a user holds several
// accounts the lowest id wins, which keeps the transfer resolution policy
// deterministic.
func (p *Postgres) AccountByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	query := `
	SELECT id, user_id, account_number, balance, created_at, updated_at
	FROM accounts
	WHERE user_id = $1
	ORDER BY id
	LIMIT 1`

	var account models.Account
	err := p.db.QueryRowContext(ctx, query, userID).Scan(
		&account.ID, &account.UserID, &account.AccountNumber, &account.Balance,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrAccountNotFound
		}
		return nil, storeErr("failed to get account for user", err)
	}

	return &account, nil
}

// retrieves all accounts
func (p *Postgres) Accounts(ctx context.Context) ([]models.Account, error) {
	query := `
	SELECT id, user_id, account_number, balance, created_at, updated_at
	FROM accounts
	ORDER BY id`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("failed to list accounts", err)
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(
			&account.ID, &account.UserID, &account.AccountNumber, &account.Balance,
			&account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to list accounts", err)
	}

	return accounts, nil
}

// AccountDetail loads an account with its owner and both sides of its
// transaction history.
func (p *Postgres) AccountDetail(ctx context.Context, id int64) (*models.AccountDetail, error) {
	account, err := p.AccountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := p.UserByID(ctx, account.UserID)
	if err != nil {
		return nil, err
	}

	sent, err := p.transactionsBySide(ctx, "sender_id", id)
	if err != nil {
		return nil, err
	}
	received, err := p.transactionsBySide(ctx, "receiver_id", id)
	if err != nil {
		return nil, err
	}

	return &models.AccountDetail{
		Account:              *account,
		Owner:                owner,
		SentTransactions:     sent,
		ReceivedTransactions: received,
	}, nil
}

// UpdateAccount changes the account number or reassigns ownership. Balances
// are deliberately not writable here; only a transfer commit mutates them.
func (p *Postgres) UpdateAccount(ctx context.Context, id int64, userID int64, accountNumber string) (*models.Account, error) {
	query := `
	UPDATE accounts
	SET user_id = $1, account_number = $2, updated_at = now()
	WHERE id = $3
	RETURNING id, user_id, account_number, balance, created_at, updated_at`

	var account models.Account
	err := p.db.QueryRowContext(ctx, query, userID, accountNumber, id).Scan(
		&account.ID, &account.UserID, &account.AccountNumber, &account.Balance,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrAccountNotFound
		}
		if isUniqueViolation(err, "accounts_account_number_key") {
			return nil, models.ErrDuplicateAccount
		}
		return nil, storeErr("failed to update account", err)
	}

	return &account, nil
}

// DeleteAccount removes the account together with every transaction that
// references it, in one database transaction. Either all of it goes or none
// of it does, so an interrupted delete cannot orphan ledger entries.
func (p *Postgres) DeleteAccount(ctx context.Context, id int64) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("failed to begin delete", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE sender_id = $1 OR receiver_id = $1`, id,
	); err != nil {
		return storeErr("failed to delete account transactions", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return storeErr("failed to delete account", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("failed to delete account", err)
	}
	if affected == 0 {
		err = models.ErrAccountNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return storeErr("failed to commit delete", err)
	}
	return nil
}

func (p *Postgres) transactionsBySide(ctx context.Context, column string, accountID int64) ([]models.Transaction, error) {
	// column is always one of the two fixed identifiers above, never input
	query := fmt.Sprintf(`
	SELECT id, sender_id, receiver_id, amount, created_at
	FROM transactions
	WHERE %s = $1
	ORDER BY id`, column)

	rows, err := p.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, storeErr("failed to list account transactions", err)
	}
	defer rows.Close()

	txs := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.SenderID, &t.ReceiverID, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to list account transactions", err)
	}

	return txs, nil
}
