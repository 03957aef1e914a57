package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one committed ledger entry. Entries are append-only: they are
// created by a successful transfer commit and removed only when one of their
// accounts is deleted. There is no update path.
type Transaction struct {
	ID         int64           `json:"id" db:"id"`
	SenderID   int64           `json:"senderId" db:"sender_id"`
	ReceiverID int64           `json:"receiverId" db:"receiver_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// TransferRequest moves an amount between the first accounts of two users.
// The sender and receiver are user ids, not account ids; resolution policy is
// the lowest-id account held by each user.
type TransferRequest struct {
	SenderID   int64           `json:"senderId"`
	ReceiverID int64           `json:"receiverId"`
	Amount     decimal.Decimal `json:"amount"`
}

// AccountRef is the compact party summary used in transfer results and the
// transaction listing.
type AccountRef struct {
	ID            int64  `json:"id"`
	AccountNumber string `json:"accountNumber"`
}

// TransferResult is returned to the caller of a successful transfer.
type TransferResult struct {
	ID        int64           `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
	Sender    AccountRef      `json:"sender"`
	Receiver  AccountRef      `json:"receiver"`
}

// TransactionSummary is one row of the ledger listing.
type TransactionSummary struct {
	ID        int64           `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
	Sender    AccountRef      `json:"sender"`
	Receiver  AccountRef      `json:"receiver"`
}

// SenderDetail and ReceiverDetail carry the owner display name under the field
// names the API has always used for the single-transaction view.
type SenderDetail struct {
	ID            int64  `json:"id"`
	AccountNumber string `json:"accountNumber"`
	SenderName    string `json:"senderName"`
}

type ReceiverDetail struct {
	ID            int64  `json:"id"`
	AccountNumber string `json:"accountNumber"`
	ReceiverName  string `json:"receiverName"`
}

// TransactionDetail is the expanded single-transaction view.
type TransactionDetail struct {
	ID        int64           `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
	Sender    SenderDetail    `json:"sender"`
	Receiver  ReceiverDetail  `json:"receiver"`
}
