package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferEvent is published after a transfer commits and feeds the statement
// archive. The reference is unique per committed transfer so redelivery by the
// broker stays idempotent on the archive side.
type TransferEvent struct {
	Reference         string          `json:"reference"`
	TransactionID     int64           `json:"transaction_id"`
	SenderAccountID   int64           `json:"sender_account_id"`
	ReceiverAccountID int64           `json:"receiver_account_id"`
	Amount            decimal.Decimal `json:"amount"`
	CreatedAt         time.Time       `json:"created_at"`
}

// StatementEntry is one archived, per-account view of a committed transfer.
// A transfer yields a debit entry for the sender and a credit entry for the
// receiver. Amounts are archived as strings to keep them exact in BSON.
type StatementEntry struct {
	TransactionID  int64     `json:"transaction_id" bson:"transaction_id"`
	AccountID      int64     `json:"account_id" bson:"account_id"`
	CounterpartyID int64     `json:"counterparty_id" bson:"counterparty_id"`
	Direction      string    `json:"direction" bson:"direction"`
	Amount         string    `json:"amount" bson:"amount"`
	Reference      string    `json:"reference" bson:"reference"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

const (
	// statement entry directions
	DirectionDebit  = "debit"
	DirectionCredit = "credit"
)
