package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a single user's balance. The balance column is NUMERIC and is
// carried as decimal.Decimal end to end; it is never represented as a float.
type Account struct {
	ID            int64           `json:"id" db:"id"`
	UserID        int64           `json:"userId" db:"user_id"`
	AccountNumber string          `json:"accountNumber" db:"account_number"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// AccountDetail is the expanded directory view: the owner plus the account's
// transaction history on both sides.
type AccountDetail struct {
	Account
	Owner                *User         `json:"user,omitempty"`
	SentTransactions     []Transaction `json:"sentTransactions"`
	ReceivedTransactions []Transaction `json:"receivedTransactions"`
}

type CreateAccountRequest struct {
	UserID        int64           `json:"userId"`
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
}

type UpdateAccountRequest struct {
	UserID        int64  `json:"userId"`
	AccountNumber string `json:"accountNumber"`
}
