// Package reconciliation owns the payout state machine's write path and the
// audit trail around it. Every transition, whether driven by a provider
// webhook, an orchestrator compensation or a batch run, lands here so the
// status change, the ledger settlement and the audit entry always commit in
// one transaction.
package reconciliation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pactify/internal/models"
	"pactify/internal/repositories"
	"pactify/internal/services/notification"
	"pactify/internal/services/payout"
	"pactify/internal/services/webhook"
)

// Manager applies transitions and reconciles internal records against
// provider statements.
type Manager struct {
	repos    *repositories.Manager
	cache    repositories.Cache
	notifier notification.Service
}

// NewManager creates the reconciliation manager.
func NewManager(repos *repositories.Manager, cache repositories.Cache, notifier notification.Service) *Manager {
	if repos == nil {
		panic("repository manager is required")
	}
	if cache == nil {
		cache = repositories.NoopCache{}
	}
	if notifier == nil {
		notifier = notification.NewService()
	}
	return &Manager{repos: repos, cache: cache, notifier: notifier}
}

var _ payout.StatusUpdater = (*Manager)(nil)

// UpdateStatus moves a payout to a new status. Terminal payouts absorb any
// further update as a logged no-op, which makes webhook redelivery and
// out-of-order events safe to replay. Reaching a terminal status settles
// the reserved funds in the same transaction.
func (m *Manager) UpdateStatus(ctx context.Context, payoutID uint, t payout.StatusTransition) error {
	var updated *models.Payout
	var fromStatus string

	err := m.repos.ExecuteInTransaction(func(tx *repositories.Manager) error {
		p, err := tx.Payouts.GetForUpdate(payoutID)
		if err != nil {
			return err
		}
		fromStatus = p.Status

		if p.IsTerminal() {
			log.Printf("payout %s already terminal (%s), ignoring transition to %s",
				p.PublicID, p.Status, t.ToStatus)
			return nil
		}
		if p.Status == t.ToStatus {
			log.Printf("payout %s already %s, ignoring duplicate transition", p.PublicID, p.Status)
			return nil
		}
		if !payout.CanTransition(p.Status, t.ToStatus) {
			return fmt.Errorf("invalid payout transition %s -> %s for %s",
				p.Status, t.ToStatus, p.PublicID)
		}

		now := time.Now().UTC()
		p.Status = t.ToStatus
		if t.ProviderRef != "" {
			p.ProviderRef = t.ProviderRef
		}
		if t.ProviderStatus != "" {
			p.ProviderStatus = t.ProviderStatus
		}
		if t.FailureReason != "" {
			p.FailureReason = t.FailureReason
		}
		if t.ToStatus == models.PayoutStatusProcessing && p.ProcessingStartedAt == nil {
			p.ProcessingStartedAt = &now
		}
		if p.IsTerminal() && p.CompletedAt == nil {
			p.CompletedAt = &now
		}
		if err := tx.Payouts.Update(p); err != nil {
			return err
		}

		entry := &models.ReconciliationEntry{
			PayoutID:       p.ID,
			Rail:           p.Rail,
			FromStatus:     fromStatus,
			ToStatus:       p.Status,
			Amount:         p.Amount,
			Currency:       p.Currency,
			ProviderRef:    p.ProviderRef,
			ProviderStatus: p.ProviderStatus,
			RawPayload:     t.RawPayload,
			Note:           t.Note,
			Actor:          t.Actor,
		}

		if p.IsTerminal() {
			success := p.Status == models.PayoutStatusPaid
			wallet, err := m.settle(ctx, tx, p, success)
			if err != nil {
				return err
			}
			if success {
				entry.Action = models.ReconActionSettleSuccess
			} else {
				entry.Action = models.ReconActionSettleFailure
			}
			// The pending bucket is what both settlement paths drain.
			before := wallet.Pending + p.Amount
			after := wallet.Pending
			entry.BalanceBefore = &before
			entry.BalanceAfter = &after
		} else if t.Actor == models.ReconActorWebhook {
			entry.Action = models.ReconActionWebhookUpdate
		} else {
			entry.Action = models.ReconActionProviderCall
		}

		if err := tx.Entries.CreateEntry(entry); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return err
	}
	if updated == nil {
		// Terminal or duplicate no-op; nothing changed.
		return nil
	}

	// Only terminal states settle funds and reach the user; intermediate
	// transitions change neither balances nor anything worth notifying.
	if updated.IsTerminal() {
		if err := m.cache.InvalidateWallet(ctx, updated.UserID, updated.Currency); err != nil {
			log.Printf("wallet cache invalidation failed for user %d: %v", updated.UserID, err)
		}
		// Notification runs after the commit; its failure never unwinds the
		// transition.
		go m.notifier.NotifyStatusChange(context.WithoutCancel(ctx), updated, fromStatus)
	}
	return nil
}

func (m *Manager) settle(ctx context.Context, tx *repositories.Manager, p *models.Payout, success bool) (*models.WalletBalance, error) {
	if success {
		return tx.Wallets.SettleSuccess(ctx, p.UserID, p.Currency, p.Amount)
	}
	return tx.Wallets.SettleFailure(ctx, p.UserID, p.Currency, p.Amount)
}

// ProcessProviderEvent applies one normalized webhook event. Events whose
// provider reference matches no payout are acknowledged and logged rather
// than failed, so the provider does not retry something we can never match.
func (m *Manager) ProcessProviderEvent(ctx context.Context, event *webhook.Normalized, raw []byte) (bool, error) {
	p, err := m.repos.Payouts.GetByProviderRef(event.Rail, event.ProviderRef)
	if err != nil {
		if err == repositories.ErrPayoutNotFound {
			log.Printf("%s event %s references unknown payout ref %s",
				event.Rail, event.EventID, event.ProviderRef)
			return false, nil
		}
		return false, err
	}

	var payload models.JSON
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			payload = nil
		}
	}
	err = m.UpdateStatus(ctx, p.ID, payout.StatusTransition{
		ToStatus:       event.Status,
		ProviderRef:    event.ProviderRef,
		ProviderStatus: event.ProviderStatus,
		FailureReason:  event.FailureReason,
		Actor:          models.ReconActorWebhook,
		RawPayload:     payload,
		Note:           event.EventType,
	})
	if err != nil {
		return true, err
	}
	return true, nil
}

// ListAuditTrail returns the immutable entry history for one payout.
func (m *Manager) ListAuditTrail(payoutID uint) ([]*models.ReconciliationEntry, error) {
	return m.repos.Entries.ListByPayout(payoutID)
}
