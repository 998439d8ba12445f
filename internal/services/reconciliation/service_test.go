package reconciliation

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"pactify/internal/models"
	"pactify/internal/repositories"
	"pactify/internal/services/payout"
	"pactify/internal/services/webhook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayoutRepo struct {
	mu      sync.Mutex
	nextID  uint
	payouts map[uint]*models.Payout
}

func newFakePayoutRepo() *fakePayoutRepo {
	return &fakePayoutRepo{payouts: make(map[uint]*models.Payout)}
}

func (f *fakePayoutRepo) Create(p *models.Payout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.payouts {
		if existing.TraceKey == p.TraceKey {
			return stderrors.New("duplicate trace key")
		}
	}
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now().UTC()
	clone := *p
	f.payouts[p.ID] = &clone
	return nil
}

func (f *fakePayoutRepo) get(match func(*models.Payout) bool) (*models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payouts {
		if match(p) {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repositories.ErrPayoutNotFound
}

func (f *fakePayoutRepo) GetByID(id uint) (*models.Payout, error) {
	return f.get(func(p *models.Payout) bool { return p.ID == id })
}

func (f *fakePayoutRepo) GetByPublicID(publicID string) (*models.Payout, error) {
	return f.get(func(p *models.Payout) bool { return p.PublicID == publicID })
}

func (f *fakePayoutRepo) GetByTraceKey(traceKey string) (*models.Payout, error) {
	return f.get(func(p *models.Payout) bool { return p.TraceKey == traceKey })
}

func (f *fakePayoutRepo) GetByProviderRef(rail, ref string) (*models.Payout, error) {
	return f.get(func(p *models.Payout) bool { return p.Rail == rail && p.ProviderRef == ref })
}

func (f *fakePayoutRepo) GetForUpdate(id uint) (*models.Payout, error) {
	return f.GetByID(id)
}

func (f *fakePayoutRepo) Update(p *models.Payout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *p
	f.payouts[p.ID] = &clone
	return nil
}

func (f *fakePayoutRepo) ListByUser(_ context.Context, userID uint, limit, offset int) ([]*models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Payout
	for _, p := range f.payouts {
		if p.UserID == userID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakePayoutRepo) ListByRailAndDay(rail string, day time.Time) ([]*models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Payout
	for _, p := range f.payouts {
		if p.Rail == rail {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakePayoutRepo) TotalsByRailSince(userID uint, since time.Time) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	totals := make(map[string]int64)
	for _, p := range f.payouts {
		if p.UserID != userID || p.CreatedAt.Before(since) {
			continue
		}
		switch p.Status {
		case models.PayoutStatusFailed, models.PayoutStatusCancelled, models.PayoutStatusReturned:
			continue
		}
		totals[p.Rail] += p.Amount
	}
	return totals, nil
}

func (f *fakePayoutRepo) Summaries(from, to time.Time, rail string) ([]models.ReconciliationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byKey := make(map[string]*models.ReconciliationSummary)
	var order []string
	for _, p := range f.payouts {
		if rail != "" && p.Rail != rail {
			continue
		}
		key := p.Rail + "|" + p.Status
		s, ok := byKey[key]
		if !ok {
			s = &models.ReconciliationSummary{Rail: p.Rail, Status: p.Status}
			byKey[key] = s
			order = append(order, key)
		}
		s.Count++
		s.TotalAmount += p.Amount
		s.TotalFees += p.PlatformFee + p.ProviderFee
	}
	out := make([]models.ReconciliationSummary, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out, nil
}

type fakeWalletRepo struct {
	mu      sync.Mutex
	wallets map[string]*models.WalletBalance
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[string]*models.WalletBalance)}
}

func walletID(userID uint, currency string) string {
	return fmt.Sprintf("%d|%s", userID, currency)
}

func (f *fakeWalletRepo) seed(userID uint, currency string, available, pending int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets[walletID(userID, currency)] = &models.WalletBalance{
		UserID: userID, Currency: currency,
		Available: available, Pending: pending,
		LifetimeCredited: available + pending,
	}
}

func (f *fakeWalletRepo) GetByUserCurrency(_ context.Context, userID uint, currency string) (*models.WalletBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[walletID(userID, currency)]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	clone := *w
	return &clone, nil
}

func (f *fakeWalletRepo) Create(w *models.WalletBalance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets[walletID(w.UserID, w.Currency)] = w
	return nil
}

func (f *fakeWalletRepo) Reserve(_ context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[walletID(userID, currency)]
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
	w, ok := f.wallets[walletID(userID, currency)]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
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
	w, ok := f.wallets[walletID(userID, currency)]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
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
	w, ok := f.wallets[walletID(userID, currency)]
	if !ok {
		w = &models.WalletBalance{UserID: userID, Currency: currency}
		f.wallets[walletID(userID, currency)] = w
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
	e.ID = uint(len(f.entries) + 1)
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeEntryRepo) ListByPayout(payoutID uint) ([]*models.ReconciliationEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ReconciliationEntry
	for _, e := range f.entries {
		if e.PayoutID == payoutID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntryRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type testEnv struct {
	payouts *fakePayoutRepo
	wallets *fakeWalletRepo
	entries *fakeEntryRepo
	manager *Manager
}

func newTestEnv() *testEnv {
	payouts := newFakePayoutRepo()
	wallets := newFakeWalletRepo()
	entries := &fakeEntryRepo{}
	repos := repositories.NewFakeManager(payouts, wallets, entries, nil, nil, nil, nil)
	return &testEnv{
		payouts: payouts,
		wallets: wallets,
		entries: entries,
		manager: NewManager(repos, repositories.NoopCache{}, nil),
	}
}

func (env *testEnv) seedPayout(status string) *models.Payout {
	env.wallets.seed(1, "USD", 50_000, 50_000)
	p := &models.Payout{
		PublicID:    "pub-1",
		UserID:      1,
		Rail:        models.RailStripe,
		Amount:      50_000,
		Currency:    "USD",
		NetAmount:   49_350,
		Status:      status,
		ProviderRef: "po_1",
		TraceKey:    "trace-1",
	}
	if err := env.payouts.Create(p); err != nil {
		panic(err)
	}
	return p
}

func TestUpdateStatus_SuccessSettlement(t *testing.T) {
	env := newTestEnv()
	p := env.seedPayout(models.PayoutStatusProcessing)

	err := env.manager.UpdateStatus(context.Background(), p.ID, payout.StatusTransition{
		ToStatus: models.PayoutStatusPaid,
		Actor:    models.ReconActorWebhook,
	})
	require.NoError(t, err)

	updated, err := env.payouts.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPaid, updated.Status)
	assert.NotNil(t, updated.CompletedAt)

	wallet, err := env.wallets.GetByUserCurrency(context.Background(), 1, "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(50_000), wallet.Available)
	assert.Equal(t, int64(0), wallet.Pending)
	assert.Equal(t, int64(50_000), wallet.Withdrawn)
	// Conservation across buckets survives settlement.
	assert.Equal(t, wallet.LifetimeCredited, wallet.Available+wallet.Pending+wallet.Withdrawn)

	entries, err := env.entries.ListByPayout(p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ReconActionSettleSuccess, entries[0].Action)
	assert.Equal(t, models.PayoutStatusProcessing, entries[0].FromStatus)
	assert.Equal(t, models.PayoutStatusPaid, entries[0].ToStatus)
}

func TestUpdateStatus_FailureRestoresFunds(t *testing.T) {
	env := newTestEnv()
	p := env.seedPayout(models.PayoutStatusProcessing)

	err := env.manager.UpdateStatus(context.Background(), p.ID, payout.StatusTransition{
		ToStatus:      models.PayoutStatusFailed,
		FailureReason: "account closed",
		Actor:         models.ReconActorWebhook,
	})
	require.NoError(t, err)

	updated, _ := env.payouts.GetByID(p.ID)
	assert.Equal(t, models.PayoutStatusFailed, updated.Status)
	assert.Equal(t, "account closed", updated.FailureReason)

	wallet, _ := env.wallets.GetByUserCurrency(context.Background(), 1, "USD")
	assert.Equal(t, int64(100_000), wallet.Available)
	assert.Equal(t, int64(0), wallet.Pending)
	assert.Equal(t, int64(0), wallet.Withdrawn)
}

func TestUpdateStatus_ReturnedSettlesAsFailure(t *testing.T) {
	env := newTestEnv()
	p := env.seedPayout(models.PayoutStatusProcessing)

	err := env.manager.UpdateStatus(context.Background(), p.ID, payout.StatusTransition{
		ToStatus: models.PayoutStatusReturned,
		Actor:    models.ReconActorWebhook,
	})
	require.NoError(t, err)

	wallet, _ := env.wallets.GetByUserCurrency(context.Background(), 1, "USD")
	assert.Equal(t, int64(100_000), wallet.Available)
	assert.Equal(t, int64(0), wallet.Withdrawn)
}

func TestUpdateStatus_TerminalRedeliveryIsNoop(t *testing.T) {
	env := newTestEnv()
	p := env.seedPayout(models.PayoutStatusProcessing)

	require.NoError(t, env.manager.UpdateStatus(context.Background(), p.ID, payout.StatusTransition{
		ToStatus: models.PayoutStatusPaid,
		Actor:    models.ReconActorWebhook,
	}))
	entriesAfterFirst := env.entries.count()
	walletAfterFirst, _ := env.wallets.GetByUserCurrency(context.Background(), 1, "USD")

	// Redelivered and contradictory events against a terminal payout are
	// absorbed without error, entry, or balance movement.
	for _, status := range []string{models.PayoutStatusPaid, models.PayoutStatusFailed} {
		require.NoError(t, env.manager.UpdateStatus(context.Background(), p.ID, payout.StatusTransition{
			ToStatus: status,
			Actor:    models.ReconActorWebhook,
		}))
	}

	assert.Equal(t, entriesAfterFirst, env.entries.count())
	wallet, _ := env.wallets.GetByUserCurrency(context.Background(), 1, "USD")
	assert.Equal(t, walletAfterFirst, wallet)
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
	ch    chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ch: make(chan struct{}, 8)}
}

func (f *fakeNotifier) NotifyStatusChange(_ context.Context, p *models.Payout, fromStatus string) {
	f.mu.Lock()
	f.calls = append(f.calls, fromStatus+"->"+p.Status)
	f.mu.Unlock()
	f.ch <- struct{}{}
}

func (f *fakeNotifier) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestUpdateStatus_NotifiesOnTerminalOnly(t *testing.T) {
	payouts := newFakePayoutRepo()
	wallets := newFakeWalletRepo()
	entries := &fakeEntryRepo{}
	notifier := newFakeNotifier()
	repos := repositories.NewFakeManager(payouts, wallets, entries, nil, nil, nil, nil)
	manager := NewManager(repos, repositories.NoopCache{}, notifier)

	wallets.seed(1, "USD", 50_000, 50_000)
	p := &models.Payout{
		PublicID: "pub-n", UserID: 1, Rail: models.RailStripe,
		Amount: 50_000, Currency: "USD", Status: models.PayoutStatusQueued,
		TraceKey: "trace-n",
	}
	require.NoError(t, payouts.Create(p))

	require.NoError(t, manager.UpdateStatus(context.Background(), p.ID, payout.StatusTransition{
		ToStatus: models.PayoutStatusProcessing,
		Actor:    models.ReconActorSystem,
	}))
	require.NoError(t, manager.UpdateStatus(context.Background(), p.ID, payout.StatusTransition{
		ToStatus: models.PayoutStatusPaid,
		Actor:    models.ReconActorWebhook,
	}))

	select {
	case <-notifier.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("terminal transition produced no notification")
	}
	// Give a stray intermediate-transition notification time to surface.
	time.Sleep(20 * time.Millisecond)

	calls := notifier.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, models.PayoutStatusProcessing+"->"+models.PayoutStatusPaid, calls[0])
}

func TestUpdateStatus_OutOfOrderTerminalFromQueued(t *testing.T) {
	env := newTestEnv()
	p := env.seedPayout(models.PayoutStatusQueued)

	// A webhook can land before the processing transition commits.
	err := env.manager.UpdateStatus(context.Background(), p.ID, payout.StatusTransition{
		ToStatus: models.PayoutStatusPaid,
		Actor:    models.ReconActorWebhook,
	})
	require.NoError(t, err)

	updated, _ := env.payouts.GetByID(p.ID)
	assert.Equal(t, models.PayoutStatusPaid, updated.Status)
}

func TestUpdateStatus_InvalidTransitionRejected(t *testing.T) {
	env := newTestEnv()
	p := env.seedPayout(models.PayoutStatusQueued)

	err := env.manager.UpdateStatus(context.Background(), p.ID, payout.StatusTransition{
		ToStatus: "requested",
		Actor:    models.ReconActorSystem,
	})
	assert.Error(t, err)
	assert.Equal(t, 0, env.entries.count())
}

func TestUpdateStatus_ProcessingSetsTimestampOnce(t *testing.T) {
	env := newTestEnv()
	p := env.seedPayout(models.PayoutStatusQueued)

	require.NoError(t, env.manager.UpdateStatus(context.Background(), p.ID, payout.StatusTransition{
		ToStatus:    models.PayoutStatusProcessing,
		ProviderRef: "po_1",
		Actor:       models.ReconActorSystem,
	}))

	updated, _ := env.payouts.GetByID(p.ID)
	require.NotNil(t, updated.ProcessingStartedAt)
	assert.Nil(t, updated.CompletedAt)

	entries, _ := env.entries.ListByPayout(p.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ReconActionProviderCall, entries[0].Action)
}

func TestProcessProviderEvent(t *testing.T) {
	t.Run("matched event transitions the payout", func(t *testing.T) {
		env := newTestEnv()
		p := env.seedPayout(models.PayoutStatusProcessing)

		matched, err := env.manager.ProcessProviderEvent(context.Background(), &webhook.Normalized{
			Rail:        models.RailStripe,
			EventID:     "evt_1",
			EventType:   "payout.paid",
			Status:      models.PayoutStatusPaid,
			ProviderRef: "po_1",
		}, []byte(`{"id":"evt_1"}`))
		require.NoError(t, err)
		assert.True(t, matched)

		updated, _ := env.payouts.GetByID(p.ID)
		assert.Equal(t, models.PayoutStatusPaid, updated.Status)
	})

	t.Run("unknown reference acknowledged without error", func(t *testing.T) {
		env := newTestEnv()
		env.seedPayout(models.PayoutStatusProcessing)

		matched, err := env.manager.ProcessProviderEvent(context.Background(), &webhook.Normalized{
			Rail:        models.RailStripe,
			EventID:     "evt_2",
			Status:      models.PayoutStatusPaid,
			ProviderRef: "po_unknown",
		}, nil)
		require.NoError(t, err)
		assert.False(t, matched)
	})
}

func TestReconcileStatement(t *testing.T) {
	env := newTestEnv()
	p := env.seedPayout(models.PayoutStatusPaid)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("clean statement has no discrepancies", func(t *testing.T) {
		discrepancies, err := env.manager.ReconcileStatement(models.RailStripe, day, []models.StatementRecord{
			{ProviderRef: "po_1", Status: models.PayoutStatusPaid, Amount: p.NetAmount, Currency: "USD"},
		})
		require.NoError(t, err)
		assert.Empty(t, discrepancies)
	})

	t.Run("mismatches are reported", func(t *testing.T) {
		discrepancies, err := env.manager.ReconcileStatement(models.RailStripe, day, []models.StatementRecord{
			{ProviderRef: "po_1", Status: models.PayoutStatusFailed, Amount: p.NetAmount + 1, Currency: "USD"},
			{ProviderRef: "po_ghost", Status: models.PayoutStatusPaid, Amount: 100, Currency: "USD"},
		})
		require.NoError(t, err)

		types := make([]string, 0, len(discrepancies))
		for _, d := range discrepancies {
			types = append(types, d.Type)
		}
		assert.ElementsMatch(t, []string{
			models.DiscrepancyStatusMismatch,
			models.DiscrepancyAmountMismatch,
			models.DiscrepancyMissing,
		}, types)
	})

	t.Run("payout absent from statement is reported", func(t *testing.T) {
		discrepancies, err := env.manager.ReconcileStatement(models.RailStripe, day, nil)
		require.NoError(t, err)
		require.Len(t, discrepancies, 1)
		assert.Equal(t, models.DiscrepancyUnreported, discrepancies[0].Type)
		assert.Equal(t, p.PublicID, discrepancies[0].PayoutPublicID)
	})
}

func TestGenerateReport(t *testing.T) {
	env := newTestEnv()
	env.seedPayout(models.PayoutStatusPaid)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	report, err := env.manager.GenerateReport(from, to, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.TotalCount)
	assert.Equal(t, int64(50_000), report.TotalAmount)

	_, err = env.manager.GenerateReport(to, from, "")
	assert.Error(t, err)
}
