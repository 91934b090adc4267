package transfer_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/custodia/pkg/currency"
	"github.com/amirasaad/custodia/pkg/domain"
	"github.com/amirasaad/custodia/pkg/dto"
	"github.com/amirasaad/custodia/pkg/money"
	"github.com/amirasaad/custodia/pkg/repository"
	"github.com/amirasaad/custodia/pkg/service/transfer"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger holds in-memory ledger state. Do serializes transactions and
// rolls the whole state back when fn fails, mirroring the storage
// guarantees the orchestrator relies on.
type fakeLedger struct {
	mu   sync.Mutex
	doMu sync.Mutex

	users        map[string]*domain.User
	accounts     map[uuid.UUID]*domain.Account
	transactions map[uuid.UUID]*domain.Transaction

	creditErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		users:        make(map[string]*domain.User),
		accounts:     make(map[uuid.UUID]*domain.Account),
		transactions: make(map[uuid.UUID]*domain.Transaction),
	}
}

func (l *fakeLedger) addUser(email string, accounts ...domain.Account) *domain.User {
	l.mu.Lock()
	defer l.mu.Unlock()
	u := &domain.User{ID: uuid.New(), Email: email}
	for i := range accounts {
		accounts[i].UserID = u.ID
		a := accounts[i]
		l.accounts[a.ID] = &a
	}
	l.users[email] = u
	return u
}

func (l *fakeLedger) snapshot() (map[uuid.UUID]domain.Account, map[uuid.UUID]domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts := make(map[uuid.UUID]domain.Account, len(l.accounts))
	for id, a := range l.accounts {
		accounts[id] = *a
	}
	transactions := make(map[uuid.UUID]domain.Transaction, len(l.transactions))
	for id, t := range l.transactions {
		transactions[id] = *t
	}
	return accounts, transactions
}

func (l *fakeLedger) restore(accounts map[uuid.UUID]domain.Account, transactions map[uuid.UUID]domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts = make(map[uuid.UUID]*domain.Account, len(accounts))
	for id := range accounts {
		a := accounts[id]
		l.accounts[id] = &a
	}
	l.transactions = make(map[uuid.UUID]*domain.Transaction, len(transactions))
	for id := range transactions {
		t := transactions[id]
		l.transactions[id] = &t
	}
}

func (l *fakeLedger) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	l.doMu.Lock()
	defer l.doMu.Unlock()
	accounts, transactions := l.snapshot()
	if err := fn(ledgerUoW{l}); err != nil {
		l.restore(accounts, transactions)
		return err
	}
	return nil
}

func (l *fakeLedger) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	resolved := *u
	resolved.Accounts = nil
	for _, a := range l.accounts {
		if a.UserID == u.ID {
			resolved.Accounts = append(resolved.Accounts, *a)
		}
	}
	return &resolved, nil
}

func (l *fakeLedger) Get(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	copied := *a
	return &copied, nil
}

func (l *fakeLedger) DebitBalance(_ context.Context, id uuid.UUID, amount money.Money) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	sufficient, err := a.Balance.GreaterThanOrEqual(amount)
	if err != nil {
		return err
	}
	if !sufficient {
		return domain.ErrInsufficientBalance
	}
	a.Balance, err = a.Balance.Subtract(amount)
	return err
}

func (l *fakeLedger) CreditBalance(_ context.Context, id uuid.UUID, amount money.Money) error {
	if l.creditErr != nil {
		return l.creditErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	var err error
	a.Balance, err = a.Balance.Add(amount)
	return err
}

func (l *fakeLedger) ListByUser(_ context.Context, userID uuid.UUID, _ repository.ListQuery) ([]domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Account
	for _, a := range l.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (l *fakeLedger) createTransaction(t *domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := *t
	l.transactions[t.ID] = &copied
}

func (l *fakeLedger) UpdateStatus(_ context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.transactions[id]
	if !ok || t.Status.IsTerminal() {
		return nil
	}
	t.Status = status
	return nil
}

func (l *fakeLedger) ListByAccount(_ context.Context, accountID uuid.UUID, _ repository.ListQuery) ([]domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Transaction
	for _, t := range l.transactions {
		if t.AccountID == accountID || (t.ToAccountID != nil && *t.ToAccountID == accountID) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (l *fakeLedger) storedTransactions() []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Transaction
	for _, t := range l.transactions {
		out = append(out, *t)
	}
	return out
}

func (l *fakeLedger) balance(t *testing.T, id uuid.UUID) money.Money {
	t.Helper()
	a, err := l.Get(context.Background(), id)
	require.NoError(t, err)
	return a.Balance
}

// transactionCreator adapts fakeLedger's untyped Create for the
// transaction repository interface.
type transactionCreator struct{ *fakeLedger }

func (c transactionCreator) Create(_ context.Context, t *domain.Transaction) error {
	c.createTransaction(t)
	return nil
}

func (c transactionCreator) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

// userCreator adapts fakeLedger's untyped Create for the user repository
// interface.
type userCreator struct{ *fakeLedger }

func (c userCreator) Create(_ context.Context, u *domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[u.Email] = u
	return nil
}

type stubSettlement struct {
	err   error
	block bool
}

func (s *stubSettlement) Settle(ctx context.Context, _ *domain.Transaction) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) Get(context.Context, string) ([]dto.AccountRead, bool, error) {
	return nil, false, nil
}

func (c *recordingCache) Set(context.Context, string, []dto.AccountRead, time.Duration) error {
	return nil
}

func (c *recordingCache) InvalidateUser(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, email)
	return nil
}

func mustMoney(t *testing.T, amount float64, code currency.Code) money.Money {
	t.Helper()
	m, err := money.New(amount, code)
	require.NoError(t, err)
	return m
}

func newAccount(t *testing.T, kind domain.AccountKind, balance float64, code currency.Code) domain.Account {
	t.Helper()
	return domain.Account{ID: uuid.New(), Kind: kind, Balance: mustMoney(t, balance, code)}
}

type fixture struct {
	ledger   *fakeLedger
	rail     *stubSettlement
	listings *recordingCache
	svc      *transfer.Service
}

// ledgerUoW wires the fake's typed Create adapters into the UnitOfWork
// surface the orchestrator consumes. Do is promoted from the fake and
// yields this wrapper, so repositories obtained inside the boundary see
// the same state and rollback semantics.
type ledgerUoW struct{ *fakeLedger }

var _ repository.UnitOfWork = ledgerUoW{}

func (u ledgerUoW) AccountRepository() repository.AccountRepository { return u.fakeLedger }

func (u ledgerUoW) TransactionRepository() repository.TransactionRepository {
	return transactionCreator{u.fakeLedger}
}

func (u ledgerUoW) UserRepository() repository.UserRepository {
	return userCreator{u.fakeLedger}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ledger := newFakeLedger()
	rail := &stubSettlement{}
	listings := &recordingCache{}
	svc := transfer.New(ledgerUoW{ledger}, rail, listings, 50*time.Millisecond, slog.Default())
	return &fixture{ledger: ledger, rail: rail, listings: listings, svc: svc}
}

func identityOf(u *domain.User) transfer.Identity {
	return transfer.Identity{UserID: u.ID, Email: u.Email}
}

func TestWithdraw_DebitsBalanceAndCompletes(t *testing.T) {
	f := newFixture(t)
	account := newAccount(t, domain.AccountKindDebit, 100, currency.USD)
	user := f.ledger.addUser("alice@example.com", account)

	tx, err := f.svc.Withdraw(context.Background(), identityOf(user), 40, account.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionTypeWithdraw, tx.Type)
	assert.Equal(t, domain.TransactionStatusCompleted, tx.Status)
	assert.True(t, f.ledger.balance(t, account.ID).Equals(mustMoney(t, 60, currency.USD)))
	assert.Contains(t, f.listings.invalidated, "alice@example.com")
}

func TestWithdraw_InsufficientBalance(t *testing.T) {
	f := newFixture(t)
	account := newAccount(t, domain.AccountKindDebit, 60, currency.USD)
	user := f.ledger.addUser("alice@example.com", account)

	_, err := f.svc.Withdraw(context.Background(), identityOf(user), 70, account.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	assert.True(t, f.ledger.balance(t, account.ID).Equals(mustMoney(t, 60, currency.USD)))
	assert.Empty(t, f.ledger.storedTransactions())
}

func TestWithdraw_ExactBalanceAllowed(t *testing.T) {
	f := newFixture(t)
	account := newAccount(t, domain.AccountKindDebit, 60, currency.USD)
	user := f.ledger.addUser("alice@example.com", account)

	_, err := f.svc.Withdraw(context.Background(), identityOf(user), 60, account.ID)
	require.NoError(t, err)
	assert.True(t, f.ledger.balance(t, account.ID).IsZero())
}

func TestWithdraw_NonPositiveAmount(t *testing.T) {
	f := newFixture(t)
	account := newAccount(t, domain.AccountKindDebit, 100, currency.USD)
	user := f.ledger.addUser("alice@example.com", account)

	_, err := f.svc.Withdraw(context.Background(), identityOf(user), 0, account.ID)
	assert.ErrorIs(t, err, domain.ErrAmountMustBePositive)

	_, err = f.svc.Withdraw(context.Background(), identityOf(user), -5, account.ID)
	assert.ErrorIs(t, err, domain.ErrAmountMustBePositive)
}

func TestSend_ConvertsIntoDestinationCurrency(t *testing.T) {
	f := newFixture(t)
	src := newAccount(t, domain.AccountKindDebit, 100, currency.USD)
	dest := newAccount(t, domain.AccountKindDebit, 0, currency.VND)
	alice := f.ledger.addUser("alice@example.com", src)
	f.ledger.addUser("bob@example.com", dest)

	tx, err := f.svc.Send(context.Background(), identityOf(alice), 50, src.ID, dest.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionStatusCompleted, tx.Status)
	assert.Equal(t, currency.VND, tx.Currency())
	assert.InDelta(t, 1_250_000, tx.Amount.AmountFloat(), 0.001)
	require.NotNil(t, tx.OriginalAmount)
	assert.True(t, tx.OriginalAmount.Equals(mustMoney(t, 50, currency.USD)))

	assert.True(t, f.ledger.balance(t, src.ID).Equals(mustMoney(t, 50, currency.USD)))
	assert.True(t, f.ledger.balance(t, dest.ID).Equals(mustMoney(t, 1_250_000, currency.VND)))
}

func TestSend_SameCurrencyKeepsNoAudit(t *testing.T) {
	f := newFixture(t)
	src := newAccount(t, domain.AccountKindDebit, 100, currency.USD)
	dest := newAccount(t, domain.AccountKindDebit, 10, currency.USD)
	alice := f.ledger.addUser("alice@example.com", src)
	f.ledger.addUser("bob@example.com", dest)

	tx, err := f.svc.Send(context.Background(), identityOf(alice), 25.50, src.ID, dest.ID)
	require.NoError(t, err)

	assert.Nil(t, tx.OriginalAmount)
	assert.True(t, f.ledger.balance(t, src.ID).Equals(mustMoney(t, 74.50, currency.USD)))
	assert.True(t, f.ledger.balance(t, dest.ID).Equals(mustMoney(t, 35.50, currency.USD)))
}

func TestSend_SelfTransferRejected(t *testing.T) {
	f := newFixture(t)
	account := newAccount(t, domain.AccountKindDebit, 100, currency.USD)
	user := f.ledger.addUser("alice@example.com", account)

	_, err := f.svc.Send(context.Background(), identityOf(user), 10, account.ID, account.ID)
	assert.ErrorIs(t, err, domain.ErrSelfTransfer)
	assert.Empty(t, f.ledger.storedTransactions())
}

func TestSend_DestinationMissing(t *testing.T) {
	f := newFixture(t)
	account := newAccount(t, domain.AccountKindDebit, 100, currency.USD)
	user := f.ledger.addUser("alice@example.com", account)

	_, err := f.svc.Send(context.Background(), identityOf(user), 10, account.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	assert.Empty(t, f.ledger.storedTransactions())
	assert.True(t, f.ledger.balance(t, account.ID).Equals(mustMoney(t, 100, currency.USD)))
}

func TestSend_SourceNotOwned(t *testing.T) {
	f := newFixture(t)
	aliceAccount := newAccount(t, domain.AccountKindDebit, 100, currency.USD)
	bobAccount := newAccount(t, domain.AccountKindDebit, 100, currency.USD)
	alice := f.ledger.addUser("alice@example.com", aliceAccount)
	f.ledger.addUser("bob@example.com", bobAccount)

	_, err := f.svc.Send(context.Background(), identityOf(alice), 10, bobAccount.ID, aliceAccount.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.Empty(t, f.ledger.storedTransactions())
}

func TestSend_SettlementRejectionCancels(t *testing.T) {
	f := newFixture(t)
	src := newAccount(t, domain.AccountKindDebit, 100, currency.USD)
	dest := newAccount(t, domain.AccountKindDebit, 0, currency.VND)
	alice := f.ledger.addUser("alice@example.com", src)
	f.ledger.addUser("bob@example.com", dest)
	f.rail.err = errors.New("rail declined")

	_, err := f.svc.Send(context.Background(), identityOf(alice), 50, src.ID, dest.ID)
	assert.ErrorIs(t, err, domain.ErrSettlementFailed)

	stored := f.ledger.storedTransactions()
	require.Len(t, stored, 1)
	assert.Equal(t, domain.TransactionStatusCancelled, stored[0].Status)
	assert.True(t, f.ledger.balance(t, src.ID).Equals(mustMoney(t, 100, currency.USD)))
	assert.True(t, f.ledger.balance(t, dest.ID).IsZero())
}

func TestSend_SettlementTimeoutCancels(t *testing.T) {
	f := newFixture(t)
	src := newAccount(t, domain.AccountKindDebit, 100, currency.USD)
	dest := newAccount(t, domain.AccountKindDebit, 0, currency.USD)
	alice := f.ledger.addUser("alice@example.com", src)
	f.ledger.addUser("bob@example.com", dest)
	f.rail.block = true

	_, err := f.svc.Send(context.Background(), identityOf(alice), 50, src.ID, dest.ID)
	assert.ErrorIs(t, err, domain.ErrSettlementFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	stored := f.ledger.storedTransactions()
	require.Len(t, stored, 1)
	assert.Equal(t, domain.TransactionStatusCancelled, stored[0].Status)
}

func TestSend_CommitFailureRollsBackAndCancels(t *testing.T) {
	f := newFixture(t)
	src := newAccount(t, domain.AccountKindDebit, 100, currency.USD)
	dest := newAccount(t, domain.AccountKindDebit, 0, currency.USD)
	alice := f.ledger.addUser("alice@example.com", src)
	f.ledger.addUser("bob@example.com", dest)
	f.ledger.creditErr = errors.New("credit write failed")

	_, err := f.svc.Send(context.Background(), identityOf(alice), 50, src.ID, dest.ID)
	require.Error(t, err)

	assert.True(t, f.ledger.balance(t, src.ID).Equals(mustMoney(t, 100, currency.USD)))
	assert.True(t, f.ledger.balance(t, dest.ID).IsZero())
	stored := f.ledger.storedTransactions()
	require.Len(t, stored, 1)
	assert.Equal(t, domain.TransactionStatusCancelled, stored[0].Status)
}

// Concurrent withdrawals exceeding the balance in aggregate must never
// overdraw: the conditional decrement, not the advisory check, decides.
func TestWithdraw_ConcurrentNeverOverdraws(t *testing.T) {
	f := newFixture(t)
	account := newAccount(t, domain.AccountKindDebit, 100, currency.USD)
	user := f.ledger.addUser("alice@example.com", account)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Withdraw(context.Background(), identityOf(user), 30, account.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 3, successes)
	assert.True(t, f.ledger.balance(t, account.ID).Equals(mustMoney(t, 10, currency.USD)))

	for _, tx := range f.ledger.storedTransactions() {
		assert.True(t, tx.Status.IsTerminal(), "transaction %s left in %s", tx.ID, tx.Status)
	}
}
