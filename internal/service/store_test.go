package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/devialdimp/bank-ledger/internal/models"
)

// memStore is an in-memory stand-in for the Postgres store with the same
// contract: per-account locks taken in ascending id order, and a transfer
// commit that applies debit, credit, and ledger append as one unit or not at
// all. failCommits and conflicts inject failures before anything is applied.
type memStore struct {
	mu       sync.Mutex
	users    map[int64]*models.User
	accounts map[int64]*models.Account
	txs      []models.Transaction

	nextUserID    int64
	nextAccountID int64
	nextTxID      int64

	locks map[int64]*sync.Mutex

	failCommits int // next N commits fail with ErrStoreUnavailable
	conflicts   int // next N commits fail with ErrTxConflict
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]*models.User),
		accounts: make(map[int64]*models.Account),
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (m *memStore) addUser(name string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	u := &models.User{
		ID:        m.nextUserID,
		Name:      name,
		Email:     fmt.Sprintf("%s@example.com", name),
		CreatedAt: time.Now(),
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addAccount(userID int64, number string, balance int64) *models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAccountID++
	a := &models.Account{
		ID:            m.nextAccountID,
		UserID:        userID,
		AccountNumber: number,
		Balance:       decimal.NewFromInt(balance),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.accounts[a.ID] = a
	m.locks[a.ID] = &sync.Mutex{}
	return a
}

func (m *memStore) balance(accountID int64) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[accountID].Balance
}

func (m *memStore) ledgerLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txs)
}

// --- TransferStore ---

func (m *memStore) AccountByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *models.Account
	for _, a := range m.accounts {
		if a.UserID != userID {
			continue
		}
		if best == nil || a.ID < best.ID {
			best = a
		}
	}
	if best == nil {
		return nil, models.ErrAccountNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *memStore) lockPair(a, b int64) (unlock func()) {
	m.mu.Lock()
	la, lb := m.locks[a], m.locks[b]
	m.mu.Unlock()

	if a == b {
		la.Lock()
		return la.Unlock
	}
	// ascending id order, same rule as the SQL store
	if a < b {
		la.Lock()
		lb.Lock()
	} else {
		lb.Lock()
		la.Lock()
	}
	return func() {
		la.Unlock()
		lb.Unlock()
	}
}

func (m *memStore) TransferFunds(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal) (*models.Transaction, error) {
	m.mu.Lock()
	if m.conflicts > 0 {
		m.conflicts--
		m.mu.Unlock()
		return nil, fmt.Errorf("lock wait exceeded: %w", models.ErrTxConflict)
	}
	if m.failCommits > 0 {
		m.failCommits--
		m.mu.Unlock()
		return nil, fmt.Errorf("commit failed: %w", models.ErrStoreUnavailable)
	}
	_, senderOK := m.accounts[senderID]
	_, receiverOK := m.accounts[receiverID]
	m.mu.Unlock()

	if !senderOK {
		return nil, models.ErrSenderAccountNotFound
	}
	if !receiverOK {
		return nil, models.ErrReceiverAccountNotFound
	}

	unlock := m.lockPair(senderID, receiverID)
	defer unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	sender := m.accounts[senderID]
	receiver := m.accounts[receiverID]

	if sender.Balance.LessThan(amount) {
		return nil, models.ErrInsufficientFunds
	}

	if senderID != receiverID {
		sender.Balance = sender.Balance.Sub(amount)
		receiver.Balance = receiver.Balance.Add(amount)
	}

	m.nextTxID++
	t := models.Transaction{
		ID:         m.nextTxID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
		CreatedAt:  time.Now(),
	}
	m.txs = append(m.txs, t)
	return &t, nil
}

// --- LedgerStore ---

func (m *memStore) Transactions(ctx context.Context) ([]models.TransactionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.TransactionSummary, 0, len(m.txs))
	for _, t := range m.txs {
		out = append(out, models.TransactionSummary{
			ID:        t.ID,
			Amount:    t.Amount,
			CreatedAt: t.CreatedAt,
			Sender:    m.refLocked(t.SenderID),
			Receiver:  m.refLocked(t.ReceiverID),
		})
	}
	return out, nil
}

func (m *memStore) TransactionByID(ctx context.Context, id int64) (*models.TransactionDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txs {
		if t.ID != id {
			continue
		}
		sender := m.accounts[t.SenderID]
		receiver := m.accounts[t.ReceiverID]
		return &models.TransactionDetail{
			ID:        t.ID,
			Amount:    t.Amount,
			CreatedAt: t.CreatedAt,
			Sender: models.SenderDetail{
				ID:            sender.ID,
				AccountNumber: sender.AccountNumber,
				SenderName:    m.users[sender.UserID].Name,
			},
			Receiver: models.ReceiverDetail{
				ID:            receiver.ID,
				AccountNumber: receiver.AccountNumber,
				ReceiverName:  m.users[receiver.UserID].Name,
			},
		}, nil
	}
	return nil, models.ErrTransactionNotFound
}

func (m *memStore) refLocked(accountID int64) models.AccountRef {
	a := m.accounts[accountID]
	return models.AccountRef{ID: a.ID, AccountNumber: a.AccountNumber}
}

// --- AccountStore ---

func (m *memStore) CreateAccount(ctx context.Context, userID int64, accountNumber string, balance decimal.Decimal) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.AccountNumber == accountNumber {
			return nil, models.ErrDuplicateAccount
		}
	}
	m.nextAccountID++
	a := &models.Account{
		ID:            m.nextAccountID,
		UserID:        userID,
		AccountNumber: accountNumber,
		Balance:       balance,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.accounts[a.ID] = a
	m.locks[a.ID] = &sync.Mutex{}
	cp := *a
	return &cp, nil
}

func (m *memStore) Accounts(ctx context.Context) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Account, 0, len(m.accounts))
	for id := int64(1); id <= m.nextAccountID; id++ {
		if a, ok := m.accounts[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) AccountByID(ctx context.Context, id int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) AccountDetail(ctx context.Context, id int64) (*models.AccountDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	detail := &models.AccountDetail{
		Account:              *a,
		Owner:                m.users[a.UserID],
		SentTransactions:     make([]models.Transaction, 0),
		ReceivedTransactions: make([]models.Transaction, 0),
	}
	for _, t := range m.txs {
		if t.SenderID == id {
			detail.SentTransactions = append(detail.SentTransactions, t)
		}
		if t.ReceiverID == id {
			detail.ReceivedTransactions = append(detail.ReceivedTransactions, t)
		}
	}
	return detail, nil
}

func (m *memStore) UpdateAccount(ctx context.Context, id int64, userID int64, accountNumber string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	a.UserID = userID
	a.AccountNumber = accountNumber
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (m *memStore) DeleteAccount(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return models.ErrAccountNotFound
	}
	kept := m.txs[:0]
	for _, t := range m.txs {
		if t.SenderID != id && t.ReceiverID != id {
			kept = append(kept, t)
		}
	}
	m.txs = kept
	delete(m.accounts, id)
	delete(m.locks, id)
	return nil
}

// --- UserStore ---

func (m *memStore) CreateUser(ctx context.Context, name, email, passwordHash, bio string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return nil, models.ErrEmailTaken
		}
	}
	m.nextUserID++
	u := &models.User{
		ID:           m.nextUserID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Bio:          bio,
		CreatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memStore) Users(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for id := int64(1); id <= m.nextUserID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memStore) UserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

// memPublisher records published transfer events.
type memPublisher struct {
	mu     sync.Mutex
	events []models.TransferEvent
}

func (p *memPublisher) PublishTransfer(ctx context.Context, ev *models.TransferEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *ev)
	return nil
}

func (p *memPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
