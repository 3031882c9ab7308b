// Package ledger holds the users and transactions of a group and answers
// balance and settlement queries over them.
//
// The ledger is append-only: users and transactions are added, never changed
// or removed. The pairwise balance matrix is cached and recomputed from
// scratch on the first read after any mutation.
package ledger

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// Journal persists ledger mutations. It is called after validation and before
// the mutation becomes visible; an error aborts the mutation.
type Journal interface {
	AppendUser(ctx context.Context, user *models.User) error
	AppendTransaction(ctx context.Context, tx *models.Transaction) error
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithIDGenerator sets the source of user and transaction IDs.
func WithIDGenerator(g IDGenerator) Option {
	return func(l *Ledger) { l.ids = g }
}

// WithClock sets the function used to timestamp new users and transactions.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithJournal persists every mutation through j.
func WithJournal(j Journal) Option {
	return func(l *Ledger) { l.journal = j }
}

// WithObserver reports ledger activity to o.
func WithObserver(o Observer) Option {
	return func(l *Ledger) { l.observer = o }
}

// Ledger is the in-memory store of users and transactions.
// It is safe for concurrent use; a single mutex serializes all access.
type Ledger struct {
	ids      IDGenerator
	now      func() time.Time
	journal  Journal
	observer Observer

	mu           sync.Mutex
	users        map[string]*models.User
	userOrder    []string
	transactions map[string]*models.Transaction
	txOrder      []string
	// userTransactions indexes transaction IDs by every payer and participant.
	userTransactions map[string][]string
	cache            balanceCache
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		ids:              UUIDGenerator(),
		now:              time.Now,
		observer:         nopObserver{},
		users:            make(map[string]*models.User),
		transactions:     make(map[string]*models.Transaction),
		userTransactions: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddUser registers a new user with a fresh ID.
// Without a journal it never fails.
func (l *Ledger) AddUser(ctx context.Context, name, contact string) (*models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	user := &models.User{
		ID:        l.ids.NewID(),
		Name:      name,
		Contact:   contact,
		CreatedAt: l.now(),
	}

	if l.journal != nil {
		if err := l.journal.AppendUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to persist user: %w", err)
		}
	}

	l.insertUser(user)
	l.cache.invalidate()
	l.observer.UserAdded()

	return user, nil
}

// AddTransaction records a new expense.
//
// Every payer and participant must be a known user (ErrReferential otherwise)
// and the transaction must pass validation (models.ErrValidation otherwise).
// Nothing is stored when an error is returned.
func (l *Ledger) AddTransaction(
	ctx context.Context,
	description string,
	payers map[string]decimal.Decimal,
	participants []string,
	split models.SplitRule,
) (*models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, userID := range slices.Sorted(maps.Keys(payers)) {
		if _, ok := l.users[userID]; !ok {
			return nil, fmt.Errorf("%w: user %s does not exist", ErrReferential, userID)
		}
	}
	for _, userID := range participants {
		if _, ok := l.users[userID]; !ok {
			return nil, fmt.Errorf("%w: user %s does not exist", ErrReferential, userID)
		}
	}

	tx, err := models.NewTransaction(l.ids.NewID(), description, l.now(), payers, participants, split)
	if err != nil {
		return nil, err
	}

	if l.journal != nil {
		if err := l.journal.AppendTransaction(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to persist transaction: %w", err)
		}
	}

	l.insertTransaction(tx)
	l.cache.invalidate()
	l.observer.TransactionAdded(tx.Split.Kind())

	return tx, nil
}

func (l *Ledger) insertUser(user *models.User) {
	l.users[user.ID] = user
	l.userOrder = append(l.userOrder, user.ID)
	if _, ok := l.userTransactions[user.ID]; !ok {
		l.userTransactions[user.ID] = nil
	}
}

func (l *Ledger) insertTransaction(tx *models.Transaction) {
	l.transactions[tx.ID] = tx
	l.txOrder = append(l.txOrder, tx.ID)
	for _, userID := range tx.InvolvedUserIDs() {
		l.userTransactions[userID] = append(l.userTransactions[userID], tx.ID)
	}
}

// GetUser returns the user with the given ID.
func (l *Ledger) GetUser(userID string) (*models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	user, ok := l.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return user, nil
}

// ListUsers returns all users in registration order.
func (l *Ledger) ListUsers() []*models.User {
	l.mu.Lock()
	defer l.mu.Unlock()

	users := make([]*models.User, 0, len(l.userOrder))
	for _, id := range l.userOrder {
		users = append(users, l.users[id])
	}
	return users
}

// GetTransaction returns the transaction with the given ID.
func (l *Ledger) GetTransaction(txID string) (*models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, ok := l.transactions[txID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, txID)
	}
	return tx, nil
}

// ListTransactions returns all transactions in the order they were added.
func (l *Ledger) ListTransactions() []*models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.orderedTransactions()
}

// TransactionCount returns the number of stored transactions.
func (l *Ledger) TransactionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.txOrder)
}

// ListUserTransactions returns every transaction userID pays for or shares,
// in the order they were added. Unknown users get an empty slice.
func (l *Ledger) ListUserTransactions(userID string) []*models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := l.userTransactions[userID]
	txs := make([]*models.Transaction, 0, len(ids))
	for _, id := range ids {
		if tx, ok := l.transactions[id]; ok {
			txs = append(txs, tx)
		}
	}
	return txs
}

// GetBalances returns the pairwise debt matrix across all transactions.
// The matrix is recomputed only when a mutation happened since the last call.
// The caller owns the returned copy.
func (l *Ledger) GetBalances() calculator.Matrix {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances().Clone()
}

// balances returns the cached matrix, recomputing it when stale.
// Callers must hold l.mu and must not modify the result.
func (l *Ledger) balances() calculator.Matrix {
	if matrix, ok := l.cache.fresh(); ok {
		l.observer.BalanceCacheHit()
		return matrix
	}

	start := time.Now()
	matrix := calculator.PairwiseBalances(l.userOrder, l.orderedTransactions())
	l.cache.store(matrix)
	l.observer.BalanceRecomputed(time.Since(start), len(l.txOrder))

	return matrix
}

// GetUserBalance returns userID's net position against every other user,
// derived from the pairwise matrix. Positive = the other user owes userID.
func (l *Ledger) GetUserBalance(userID string) (map[string]money.Amount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.users[userID]; !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return calculator.CounterpartyBalances(l.balances(), l.userOrder, userID), nil
}

// GetNetBalances returns every user's balance summed over all transactions,
// in registration order.
func (l *Ledger) GetNetBalances() []calculator.NetBalance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return calculator.NetBalances(l.userOrder, l.orderedTransactions())
}

// GetSimplifiedSettlements returns payments that settle every net balance.
// It works from per-user net sums, independently of the pairwise matrix.
func (l *Ledger) GetSimplifiedSettlements() []calculator.Settlement {
	l.mu.Lock()
	defer l.mu.Unlock()

	balances := calculator.NetBalances(l.userOrder, l.orderedTransactions())
	return calculator.SimplifySettlements(balances)
}

func (l *Ledger) orderedTransactions() []*models.Transaction {
	txs := make([]*models.Transaction, 0, len(l.txOrder))
	for _, id := range l.txOrder {
		txs = append(txs, l.transactions[id])
	}
	return txs
}
