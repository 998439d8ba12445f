package payout

import (
	"context"

	"pactify/internal/models"
)

// StatusTransition carries everything a lifecycle transition needs to be
// applied and audited in one place.
type StatusTransition struct {
	ToStatus       string
	ProviderRef    string
	ProviderStatus string
	FailureReason  string
	Actor          string
	RawPayload     models.JSON
	Note           string
}

// StatusUpdater applies payout lifecycle transitions atomically: the status
// change, the ledger settlement and the audit entry commit together.
// Implemented by the reconciliation manager; the orchestrator depends on
// this interface so provider-call compensation and webhook updates go
// through the same code path.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, payoutID uint, transition StatusTransition) error
}
