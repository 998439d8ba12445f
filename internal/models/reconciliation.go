package models

import "time"

// Reconciliation entry actions
const (
	ReconActionReserve       = "reserve"
	ReconActionProviderCall  = "provider_call"
	ReconActionWebhookUpdate = "webhook_update"
	ReconActionSettleSuccess = "settle_success"
	ReconActionSettleFailure = "settle_failure"
	ReconActionCredit        = "credit"
	ReconActionNoop          = "noop"
)

// Reconciliation entry actors
const (
	ReconActorSystem  = "system"
	ReconActorWebhook = "webhook"
	ReconActorBatch   = "batch"
)

// ReconciliationEntry is an immutable audit row, one per state transition or
// ledger movement. Rows are only ever inserted; they are the source of truth
// for what happened independent of the mutable payout record.
type ReconciliationEntry struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	PayoutID       uint      `gorm:"not null;index" json:"payout_id"`
	Rail           string    `gorm:"not null" json:"rail"`
	Action         string    `gorm:"not null" json:"action"`
	FromStatus     string    `json:"from_status"`
	ToStatus       string    `json:"to_status"`
	Amount         int64     `gorm:"not null" json:"amount"`
	Currency       string    `gorm:"not null;size:3" json:"currency"`
	BalanceBefore  *int64    `json:"balance_before,omitempty"`
	BalanceAfter   *int64    `json:"balance_after,omitempty"`
	ProviderRef    string    `json:"provider_ref,omitempty"`
	ProviderStatus string    `json:"provider_status,omitempty"`
	RawPayload     JSON      `gorm:"type:jsonb" json:"raw_payload,omitempty"`
	Note           string    `json:"note,omitempty"`
	Actor          string    `gorm:"not null" json:"actor"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReconciliationSummary aggregates payouts by rail and status for a window.
type ReconciliationSummary struct {
	Rail        string `json:"rail"`
	Status      string `json:"status"`
	Count       int64  `json:"count"`
	TotalAmount int64  `json:"total_amount"`
	TotalFees   int64  `json:"total_fees"`
}

// Discrepancy types found when comparing internal records against a
// provider statement.
const (
	DiscrepancyStatusMismatch = "status_mismatch"
	DiscrepancyAmountMismatch = "amount_mismatch"
	DiscrepancyMissing        = "missing_internal"
	DiscrepancyUnreported     = "missing_in_statement"
)

// Discrepancy is one per-payout mismatch from a reconciliation batch run.
type Discrepancy struct {
	Type           string `json:"type"`
	PayoutPublicID string `json:"payout_id,omitempty"`
	ProviderRef    string `json:"provider_ref"`
	InternalStatus string `json:"internal_status,omitempty"`
	ProviderStatus string `json:"provider_status,omitempty"`
	InternalAmount int64  `json:"internal_amount,omitempty"`
	ProviderAmount int64  `json:"provider_amount,omitempty"`
	Description    string `json:"description"`
}

// StatementRecord is one row of an external provider statement for a day.
type StatementRecord struct {
	ProviderRef string `json:"provider_ref"`
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}
