package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/lib/pq"

	"github.com/devialdimp/bank-ledger/internal/models"
)

// Postgres is the authoritative store: users, accounts, and the transaction
// ledger all live here so a transfer can commit as one database transaction.
type Postgres struct {
	db          *sql.DB
	lockTimeout time.Duration
}

// DefaultLockTimeout bounds how long a transfer waits for its account locks
// before aborting with models.ErrTxConflict.
const DefaultLockTimeout = 5 * time.Second

// creates a new Postgres instance
func NewPostgres(connStr string, lockTimeout time.Duration) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Postgres{db: db, lockTimeout: lockTimeout}, nil
}

// closes the database connection
func (p *Postgres) Close() error {
	return p.db.Close()
}

// initialize the database schema
func (p *Postgres) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			bio TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT users_email_key UNIQUE (email)
		);`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users (id),
			account_number TEXT NOT NULL,
			balance NUMERIC(20, 2) NOT NULL CHECK (balance >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT accounts_account_number_key UNIQUE (account_number)
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			sender_id BIGINT NOT NULL REFERENCES accounts (id),
			receiver_id BIGINT NOT NULL REFERENCES accounts (id),
			amount NUMERIC(20, 2) NOT NULL CHECK (amount > 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_sender ON transactions (sender_id);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_receiver ON transactions (receiver_id);`,
	}

	for _, q := range queries {
		if _, err := p.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// postgres error codes that classify a failed attempt
const (
	pqUniqueViolation   = "23505"
	pqLockNotAvailable  = "55P03"
	pqSerializationFail = "40001"
	pqDeadlockDetected  = "40P01"
)

// storeErr maps driver failures onto the domain taxonomy. Lock waits and
// serialization losses are retryable conflicts; anything that looks like a
// connectivity or commit problem is ErrStoreUnavailable.
func storeErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqLockNotAvailable, pqSerializationFail, pqDeadlockDetected:
			return fmt.Errorf("%s: %w", op, models.ErrTxConflict)
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %v: %w", op, err, models.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueViolation reports whether err is a unique violation on the named
// constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation && pqErr.Constraint == constraint
}
