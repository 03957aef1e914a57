package models

import "errors"

// Domain errors. Handlers map these to HTTP status codes with errors.Is;
// the store and services wrap them with context but never replace them.
var (
	// transfer validation
	ErrSenderAccountNotFound   = errors.New("sender account not found")
	ErrReceiverAccountNotFound = errors.New("receiver account not found")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrInsufficientFunds       = errors.New("insufficient funds")

	// ledger lookups
	ErrTransactionNotFound = errors.New("transaction not found")

	// directory and users
	ErrAccountNotFound  = errors.New("account not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrDuplicateAccount = errors.New("account number already in use")
	ErrBadAccountNumber = errors.New("account number must not be empty")
	ErrMissingField     = errors.New("required field missing")

	// auth
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")

	// ErrTxConflict is returned when a transfer could not acquire its account
	// locks within the bounded wait, or lost a serialization conflict. The
	// attempt left no visible mutation and is safe to retry as a whole.
	ErrTxConflict = errors.New("transfer conflict, retry")

	// ErrStoreUnavailable is returned when the backing store cannot be reached
	// or cannot commit. A failed commit rolls back completely, so retrying the
	// whole transfer is safe.
	ErrStoreUnavailable = errors.New("store unavailable")
)
