package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// countingObserver records observer callbacks.
type countingObserver struct {
	mu           sync.Mutex
	users        int
	transactions map[models.SplitKind]int
	hits         int
	recomputes   int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{transactions: make(map[models.SplitKind]int)}
}

func (o *countingObserver) UserAdded() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.users++
}

func (o *countingObserver) TransactionAdded(kind models.SplitKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transactions[kind]++
}

func (o *countingObserver) BalanceCacheHit() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits++
}

func (o *countingObserver) BalanceRecomputed(time.Duration, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recomputes++
}

// failingJournal rejects every append.
type failingJournal struct{}

func (failingJournal) AppendUser(context.Context, *models.User) error {
	return errors.New("disk full")
}

func (failingJournal) AppendTransaction(context.Context, *models.Transaction) error {
	return errors.New("disk full")
}

// memoryJournal keeps appended records in order.
type memoryJournal struct {
	users        []*models.User
	transactions []*models.Transaction
}

func (j *memoryJournal) AppendUser(_ context.Context, u *models.User) error {
	j.users = append(j.users, u)
	return nil
}

func (j *memoryJournal) AppendTransaction(_ context.Context, tx *models.Transaction) error {
	j.transactions = append(j.transactions, tx)
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got money.Amount) {
	t.Helper()
	assert.True(t, got.Equal(money.MustParse(want)), "want %s, got %s", want, got)
}

func assertSameMatrix(t *testing.T, want, got calculator.Matrix) {
	t.Helper()
	require.Len(t, got, len(want))
	for debtor, row := range want {
		require.Len(t, got[debtor], len(row), "row %s", debtor)
		for creditor, amount := range row {
			assert.True(t, amount.Equal(got.Owed(debtor, creditor)),
				"%s owes %s: want %s, got %s", debtor, creditor, amount, got.Owed(debtor, creditor))
		}
	}
}

func assertSameSettlements(t *testing.T, want, got []calculator.Settlement) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].From, got[i].From)
		assert.Equal(t, want[i].To, got[i].To)
		assert.True(t, want[i].Amount.Equal(got[i].Amount), "settlement %d: want %s, got %s", i, want[i].Amount, got[i].Amount)
	}
}

type fixture struct {
	ledger   *Ledger
	observer *countingObserver
	a, b, c  *models.User
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	observer := newCountingObserver()
	opts = append([]Option{
		WithIDGenerator(SequentialIDs("id")),
		WithClock(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }),
		WithObserver(observer),
	}, opts...)
	l := New(opts...)

	ctx := context.Background()
	a, err := l.AddUser(ctx, "Alice", "alice@example.com")
	require.NoError(t, err)
	b, err := l.AddUser(ctx, "Bob", "bob@example.com")
	require.NoError(t, err)
	c, err := l.AddUser(ctx, "Charlie", "charlie@example.com")
	require.NoError(t, err)

	return &fixture{ledger: l, observer: observer, a: a, b: b, c: c}
}

func (f *fixture) dinner(t *testing.T) *models.Transaction {
	t.Helper()
	tx, err := f.ledger.AddTransaction(context.Background(), "Dinner",
		map[string]decimal.Decimal{f.a.ID: dec("90")},
		[]string{f.a.ID, f.b.ID, f.c.ID},
		models.EqualSplit{},
	)
	require.NoError(t, err)
	return tx
}

func TestAddUser(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "id-1", f.a.ID)
	assert.Equal(t, "Bob", f.b.Name)
	assert.Equal(t, "charlie@example.com", f.c.Contact)
	assert.False(t, f.a.CreatedAt.IsZero())
	assert.Equal(t, 3, f.observer.users)

	got, err := f.ledger.GetUser(f.b.ID)
	require.NoError(t, err)
	assert.Same(t, f.b, got)

	users := f.ledger.ListUsers()
	require.Len(t, users, 3)
	assert.Equal(t, []string{f.a.ID, f.b.ID, f.c.ID}, []string{users[0].ID, users[1].ID, users[2].ID})

	_, err = f.ledger.GetUser("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddUser_DefaultIDsAreUnique(t *testing.T) {
	l := New()
	ctx := context.Background()
	u1, err := l.AddUser(ctx, "x", "")
	require.NoError(t, err)
	u2, err := l.AddUser(ctx, "x", "")
	require.NoError(t, err)
	assert.NotEqual(t, u1.ID, u2.ID)
	assert.Len(t, u1.ID, 36)
}

func TestAddTransaction_IndexesPayersAndParticipants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dinner := f.dinner(t)
	taxi, err := f.ledger.AddTransaction(ctx, "Taxi",
		map[string]decimal.Decimal{f.c.ID: dec("20")},
		[]string{f.a.ID, f.b.ID},
		nil,
	)
	require.NoError(t, err)

	assert.NotEqual(t, dinner.ID, taxi.ID)
	assert.Equal(t, "Taxi", taxi.Description)
	assert.Equal(t, 2, f.ledger.TransactionCount())
	assert.Equal(t, 2, f.observer.transactions[models.SplitEqual])

	// Charlie only paid for the taxi but is still indexed
	cTxs := f.ledger.ListUserTransactions(f.c.ID)
	require.Len(t, cTxs, 2)
	assert.Equal(t, dinner.ID, cTxs[0].ID)
	assert.Equal(t, taxi.ID, cTxs[1].ID)

	got, err := f.ledger.GetTransaction(taxi.ID)
	require.NoError(t, err)
	assert.Same(t, taxi, got)

	_, err = f.ledger.GetTransaction("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	all := f.ledger.ListTransactions()
	require.Len(t, all, 2)
	assert.Equal(t, dinner.ID, all[0].ID)
}

func TestListUserTransactions_UnknownUser(t *testing.T) {
	f := newFixture(t)
	f.dinner(t)

	txs := f.ledger.ListUserTransactions("ghost")
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestAddTransaction_ReferentialError(t *testing.T) {
	f := newFixture(t)
	before := f.ledger.TransactionCount()

	_, err := f.ledger.AddTransaction(context.Background(), "Lunch",
		map[string]decimal.Decimal{f.a.ID: dec("30")},
		[]string{f.a.ID, "ghost"},
		nil,
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReferential)
	assert.Contains(t, err.Error(), "ghost")
	assert.Equal(t, before, f.ledger.TransactionCount())
	assert.Empty(t, f.ledger.ListUserTransactions(f.a.ID))
}

func TestAddTransaction_UnknownPayer(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.AddTransaction(context.Background(), "Lunch",
		map[string]decimal.Decimal{"ghost": dec("30")},
		[]string{f.a.ID},
		nil,
	)

	assert.ErrorIs(t, err, ErrReferential)
	assert.Contains(t, err.Error(), "ghost")
	assert.Zero(t, f.ledger.TransactionCount())
}

func TestAddTransaction_ValidationError(t *testing.T) {
	f := newFixture(t)
	balancesBefore := f.ledger.GetBalances()

	tx, err := f.ledger.AddTransaction(context.Background(), "Groceries",
		map[string]decimal.Decimal{f.a.ID: dec("100")},
		[]string{f.a.ID, f.b.ID},
		models.PercentageSplit{Percentages: map[string]decimal.Decimal{f.a.ID: dec("51"), f.b.ID: dec("50")}},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Nil(t, tx)
	assert.Zero(t, f.ledger.TransactionCount())
	assert.Empty(t, f.ledger.ListUserTransactions(f.a.ID))
	assert.Empty(t, f.ledger.ListUserTransactions(f.b.ID))

	// A failed add does not invalidate the cache
	recomputes := f.observer.recomputes
	assertSameMatrix(t, balancesBefore, f.ledger.GetBalances())
	assert.Equal(t, recomputes, f.observer.recomputes)
}

func TestAddTransaction_JournalFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.ledger.journal = failingJournal{}

	_, err := f.ledger.AddTransaction(context.Background(), "Dinner",
		map[string]decimal.Decimal{f.a.ID: dec("90")},
		[]string{f.a.ID, f.b.ID},
		nil,
	)
	require.Error(t, err)
	assert.Zero(t, f.ledger.TransactionCount())

	_, err = f.ledger.AddUser(context.Background(), "Dave", "")
	require.Error(t, err)
	assert.Len(t, f.ledger.ListUsers(), 3)
}

func TestJournalReceivesMutationsInOrder(t *testing.T) {
	j := &memoryJournal{}
	f := newFixture(t, WithJournal(j))
	tx := f.dinner(t)

	require.Len(t, j.users, 3)
	assert.Equal(t, f.a.ID, j.users[0].ID)
	require.Len(t, j.transactions, 1)
	assert.Equal(t, tx.ID, j.transactions[0].ID)
}

func TestGetBalances_CachesUntilMutation(t *testing.T) {
	f := newFixture(t)
	f.dinner(t)

	first := f.ledger.GetBalances()
	require.Equal(t, 1, f.observer.recomputes)

	second := f.ledger.GetBalances()
	assert.Equal(t, 1, f.observer.recomputes, "second read must be served from cache")
	assert.Equal(t, 1, f.observer.hits)
	assertSameMatrix(t, first, second)

	assertAmount(t, "30", first.Owed(f.b.ID, f.a.ID))
	assertAmount(t, "30", first.Owed(f.c.ID, f.a.ID))

	// Mutating the returned copy must not leak into the cache
	first[f.b.ID][f.a.ID] = money.FromInt(999)
	assertAmount(t, "30", f.ledger.GetBalances().Owed(f.b.ID, f.a.ID))

	// A new transaction makes the cache stale
	_, err := f.ledger.AddTransaction(context.Background(), "Coffee",
		map[string]decimal.Decimal{f.b.ID: dec("10")},
		[]string{f.a.ID, f.b.ID},
		nil,
	)
	require.NoError(t, err)

	third := f.ledger.GetBalances()
	assert.Equal(t, 2, f.observer.recomputes)
	assertAmount(t, "5", third.Owed(f.a.ID, f.b.ID))
	assertAmount(t, "30", third.Owed(f.b.ID, f.a.ID))

	// So does a new user
	_, err = f.ledger.AddUser(context.Background(), "Dave", "")
	require.NoError(t, err)
	f.ledger.GetBalances()
	assert.Equal(t, 3, f.observer.recomputes)
}

func TestGetUserBalance(t *testing.T) {
	f := newFixture(t)
	f.dinner(t)

	alice, err := f.ledger.GetUserBalance(f.a.ID)
	require.NoError(t, err)
	require.Len(t, alice, 2)
	assertAmount(t, "30", alice[f.b.ID])
	assertAmount(t, "30", alice[f.c.ID])

	bob, err := f.ledger.GetUserBalance(f.b.ID)
	require.NoError(t, err)
	require.Len(t, bob, 1)
	assertAmount(t, "-30", bob[f.a.ID])

	_, err = f.ledger.GetUserBalance("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetSimplifiedSettlements_DinnerScenario(t *testing.T) {
	f := newFixture(t)
	f.dinner(t)

	net := f.ledger.GetNetBalances()
	require.Len(t, net, 3)
	assertAmount(t, "60", net[0].Amount)
	assertAmount(t, "-30", net[1].Amount)
	assertAmount(t, "-30", net[2].Amount)

	settlements := f.ledger.GetSimplifiedSettlements()
	require.Len(t, settlements, 2)
	assert.Equal(t, f.b.ID, settlements[0].From)
	assert.Equal(t, f.a.ID, settlements[0].To)
	assertAmount(t, "30", settlements[0].Amount)
	assert.Equal(t, f.c.ID, settlements[1].From)
	assert.Equal(t, f.a.ID, settlements[1].To)
	assertAmount(t, "30", settlements[1].Amount)
}

func TestGetSimplifiedSettlements_EmptyLedger(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, f.ledger.GetSimplifiedSettlements())
}

func TestSnapshotRestore(t *testing.T) {
	f := newFixture(t)
	f.dinner(t)
	_, err := f.ledger.AddTransaction(context.Background(), "Hotel",
		map[string]decimal.Decimal{f.b.ID: dec("250"), f.c.ID: dec("50")},
		[]string{f.a.ID, f.b.ID, f.c.ID},
		models.ExactSplit{Amounts: map[string]decimal.Decimal{f.a.ID: dec("100"), f.b.ID: dec("100"), f.c.ID: dec("100")}},
	)
	require.NoError(t, err)

	restored := New()
	require.NoError(t, restored.Restore(f.ledger.Snapshot()))

	assertSameMatrix(t, f.ledger.GetBalances(), restored.GetBalances())
	assertSameSettlements(t, f.ledger.GetSimplifiedSettlements(), restored.GetSimplifiedSettlements())
	assert.Len(t, restored.ListUserTransactions(f.c.ID), 2)
}

func TestRestore_RejectsDanglingReference(t *testing.T) {
	f := newFixture(t)
	f.dinner(t)

	snapshot := f.ledger.Snapshot()
	snapshot.Users = snapshot.Users[:1]

	l := New()
	err := l.Restore(snapshot)
	assert.ErrorIs(t, err, ErrReferential)
	assert.Empty(t, l.ListUsers())
}

func TestConcurrentAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.ledger.AddTransaction(ctx, "Snack",
				map[string]decimal.Decimal{f.a.ID: dec("3")},
				[]string{f.a.ID, f.b.ID, f.c.ID},
				nil,
			)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			f.ledger.GetBalances()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, f.ledger.TransactionCount())
	assertAmount(t, "20", f.ledger.GetBalances().Owed(f.b.ID, f.a.ID))
}
