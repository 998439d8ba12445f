package ledger

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"

	"pactify/internal/errors"
	"pactify/internal/models"
	"pactify/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWalletRepo struct {
	mu      sync.Mutex
	wallets map[string]*models.WalletBalance
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[string]*models.WalletBalance)}
}

func key(userID uint, currency string) string { return fmt.Sprintf("%d|%s", userID, currency) }

func (f *fakeWalletRepo) seed(userID uint, currency string, available, pending int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets[key(userID, currency)] = &models.WalletBalance{
		UserID: userID, Currency: currency,
		Available: available, Pending: pending,
		LifetimeCredited: available + pending,
	}
}

func (f *fakeWalletRepo) GetByUserCurrency(_ context.Context, userID uint, currency string) (*models.WalletBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[key(userID, currency)]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	clone := *w
	return &clone, nil
}

func (f *fakeWalletRepo) Create(w *models.WalletBalance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets[key(w.UserID, w.Currency)] = w
	return nil
}

func (f *fakeWalletRepo) Reserve(_ context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[key(userID, currency)]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	if w.Available < amount {
		return nil, repositories.ErrInsufficientBalance
	}
	w.Available -= amount
	w.Pending += amount
	clone := *w
	return &clone, nil
}

func (f *fakeWalletRepo) SettleSuccess(_ context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.wallets[key(userID, currency)]
	if w.Pending < amount {
		return nil, repositories.ErrInsufficientPending
	}
	w.Pending -= amount
	w.Withdrawn += amount
	clone := *w
	return &clone, nil
}

func (f *fakeWalletRepo) SettleFailure(_ context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.wallets[key(userID, currency)]
	if w.Pending < amount {
		return nil, repositories.ErrInsufficientPending
	}
	w.Pending -= amount
	w.Available += amount
	clone := *w
	return &clone, nil
}

func (f *fakeWalletRepo) Credit(_ context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[key(userID, currency)]
	if !ok {
		w = &models.WalletBalance{UserID: userID, Currency: currency}
		f.wallets[key(userID, currency)] = w
	}
	w.Available += amount
	w.LifetimeCredited += amount
	clone := *w
	return &clone, nil
}

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries []*models.ReconciliationEntry
}

func (f *fakeEntryRepo) CreateEntry(e *models.ReconciliationEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeEntryRepo) ListByPayout(uint) ([]*models.ReconciliationEntry, error) { return nil, nil }

func newLedger() (Service, *fakeWalletRepo, *fakeEntryRepo) {
	wallets := newFakeWalletRepo()
	entries := &fakeEntryRepo{}
	repos := repositories.NewFakeManager(nil, wallets, entries, nil, nil, nil, nil)
	return NewService(repos, repositories.NoopCache{}), wallets, entries
}

func TestLedger_Reserve(t *testing.T) {
	svc, wallets, _ := newLedger()
	wallets.seed(1, "USD", 100_000, 0)

	t.Run("moves available to pending", func(t *testing.T) {
		w, err := svc.Reserve(context.Background(), 1, "USD", 40_000)
		require.NoError(t, err)
		assert.Equal(t, int64(60_000), w.Available)
		assert.Equal(t, int64(40_000), w.Pending)
	})

	t.Run("refuses more than available", func(t *testing.T) {
		_, err := svc.Reserve(context.Background(), 1, "USD", 70_000)
		assert.True(t, stderrors.Is(err, errors.ErrInsufficientBalance))
	})

	t.Run("missing wallet reads as insufficient", func(t *testing.T) {
		_, err := svc.Reserve(context.Background(), 9, "USD", 100)
		assert.True(t, stderrors.Is(err, errors.ErrInsufficientBalance))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := svc.Reserve(context.Background(), 1, "USD", 0)
		assert.True(t, stderrors.Is(err, errors.ErrInvalidAmount))
	})
}

func TestLedger_Settle(t *testing.T) {
	payout := &models.Payout{PublicID: "p-1", UserID: 1, Currency: "USD", Amount: 40_000}

	t.Run("success moves pending to withdrawn", func(t *testing.T) {
		svc, wallets, _ := newLedger()
		wallets.seed(1, "USD", 60_000, 40_000)

		w, err := svc.Settle(context.Background(), payout, true)
		require.NoError(t, err)
		assert.Equal(t, int64(60_000), w.Available)
		assert.Equal(t, int64(0), w.Pending)
		assert.Equal(t, int64(40_000), w.Withdrawn)
		assert.Equal(t, w.LifetimeCredited, w.Available+w.Pending+w.Withdrawn)
	})

	t.Run("failure restores pending to available", func(t *testing.T) {
		svc, wallets, _ := newLedger()
		wallets.seed(1, "USD", 60_000, 40_000)

		w, err := svc.Settle(context.Background(), payout, false)
		require.NoError(t, err)
		assert.Equal(t, int64(100_000), w.Available)
		assert.Equal(t, int64(0), w.Pending)
	})
}

func TestLedger_Credit(t *testing.T) {
	svc, wallets, entries := newLedger()

	t.Run("creates wallet on first credit", func(t *testing.T) {
		w, err := svc.Credit(context.Background(), 5, "USD", 25_000, "contract #42 completed")
		require.NoError(t, err)
		assert.Equal(t, int64(25_000), w.Available)
		assert.Equal(t, int64(25_000), w.LifetimeCredited)
	})

	t.Run("audits the movement", func(t *testing.T) {
		entries.mu.Lock()
		defer entries.mu.Unlock()
		require.Len(t, entries.entries, 1)
		e := entries.entries[0]
		assert.Equal(t, models.ReconActionCredit, e.Action)
		assert.Equal(t, "contract #42 completed", e.Note)
		require.NotNil(t, e.BalanceBefore)
		require.NotNil(t, e.BalanceAfter)
		assert.Equal(t, int64(0), *e.BalanceBefore)
		assert.Equal(t, int64(25_000), *e.BalanceAfter)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := svc.Credit(context.Background(), 5, "USD", -1, "")
		assert.True(t, stderrors.Is(err, errors.ErrInvalidAmount))
	})

	_ = wallets
}

func TestLedger_GetBalance(t *testing.T) {
	svc, wallets, _ := newLedger()
	wallets.seed(1, "USD", 12_345, 0)

	w, err := svc.GetBalance(context.Background(), 1, "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(12_345), w.Available)

	_, err = svc.GetBalance(context.Background(), 2, "USD")
	assert.True(t, stderrors.Is(err, errors.ErrWalletNotFound))
}
