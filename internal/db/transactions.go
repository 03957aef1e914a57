package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/devialdimp/bank-ledger/internal/models"
)

// Transactions lists every committed ledger entry with both parties' account
// numbers, ordered by id. Reads run outside any write transaction, so only
// committed entries are visible.
func (p *Postgres) Transactions(ctx context.Context) ([]models.TransactionSummary, error) {
	query := `
	SELECT t.id, t.amount, t.created_at,
	       s.id, s.account_number,
	       r.id, r.account_number
	FROM transactions t
	JOIN accounts s ON s.id = t.sender_id
	JOIN accounts r ON r.id = t.receiver_id
	ORDER BY t.id`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("failed to list transactions", err)
	}
	defer rows.Close()

	txs := make([]models.TransactionSummary, 0)
	for rows.Next() {
		var t models.TransactionSummary
		if err := rows.Scan(
			&t.ID, &t.Amount, &t.CreatedAt,
			&t.Sender.ID, &t.Sender.AccountNumber,
			&t.Receiver.ID, &t.Receiver.AccountNumber,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to list transactions", err)
	}

	return txs, nil
}

// TransactionByID loads one ledger entry expanded with each party's account
// number and owner display name.
func (p *Postgres) TransactionByID(ctx context.Context, id int64) (*models.TransactionDetail, error) {
	query := `
	SELECT t.id, t.amount, t.created_at,
	       s.id, s.account_number, su.name,
	       r.id, r.account_number, ru.name
	FROM transactions t
	JOIN accounts s ON s.id = t.sender_id
	JOIN users su ON su.id = s.user_id
	JOIN accounts r ON r.id = t.receiver_id
	JOIN users ru ON ru.id = r.user_id
	WHERE t.id = $1`

	var t models.TransactionDetail
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Amount, &t.CreatedAt,
		&t.Sender.ID, &t.Sender.AccountNumber, &t.Sender.SenderName,
		&t.Receiver.ID, &t.Receiver.AccountNumber, &t.Receiver.ReceiverName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTransactionNotFound
		}
		return nil, storeErr("failed to get transaction", err)
	}

	return &t, nil
}
