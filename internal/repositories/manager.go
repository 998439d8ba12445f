package repositories

import "gorm.io/gorm"

// Manager bundles every repository over one connection so services can run
// multi-aggregate work inside a single database transaction. The payout
// status update, the ledger settlement and the audit entry must commit or
// roll back together; Manager is the boundary that guarantees it.
type Manager struct {
	db *gorm.DB

	Payouts       PayoutRepository
	Wallets       WalletRepository
	Entries       ReconciliationRepository
	SecurityLogs  SecurityLogRepository
	Methods       MethodRepository
	WebhookEvents WebhookEventRepository
	KYC           KYCRepository
}

// NewManager creates a repository manager over the given connection.
func NewManager(db *gorm.DB) *Manager {
	return &Manager{
		db:            db,
		Payouts:       NewPayoutRepository(db),
		Wallets:       NewWalletRepository(db),
		Entries:       NewReconciliationRepository(db),
		SecurityLogs:  NewSecurityLogRepository(db),
		Methods:       NewMethodRepository(db),
		WebhookEvents: NewWebhookEventRepository(db),
		KYC:           NewKYCRepository(db),
	}
}

// NewFakeManager builds a manager from caller-supplied repositories, without
// a database. ExecuteInTransaction then runs the callback directly; fakes
// are expected to be internally consistent on their own.
func NewFakeManager(payouts PayoutRepository, wallets WalletRepository, entries ReconciliationRepository, securityLogs SecurityLogRepository, methods MethodRepository, events WebhookEventRepository, kyc KYCRepository) *Manager {
	return &Manager{
		Payouts:       payouts,
		Wallets:       wallets,
		Entries:       entries,
		SecurityLogs:  securityLogs,
		Methods:       methods,
		WebhookEvents: events,
		KYC:           kyc,
	}
}

// ExecuteInTransaction runs fn against a manager whose repositories all share
// one database transaction. Returning an error rolls everything back.
func (m *Manager) ExecuteInTransaction(fn func(*Manager) error) error {
	if m.db == nil {
		return fn(m)
	}
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewManager(tx))
	})
}
