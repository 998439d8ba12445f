package reconciliation

import (
	"fmt"
	"log"
	"time"

	"pactify/internal/models"
)

// Report aggregates payout activity by rail and status over a window.
type Report struct {
	GeneratedAt time.Time                      `json:"generated_at"`
	From        time.Time                      `json:"from"`
	To          time.Time                      `json:"to"`
	Rail        string                         `json:"rail,omitempty"`
	Summaries   []models.ReconciliationSummary `json:"summaries"`
	TotalCount  int64                          `json:"total_count"`
	TotalAmount int64                          `json:"total_amount"`
	TotalFees   int64                          `json:"total_fees"`
}

// GenerateReport builds the aggregate view for a window, optionally filtered
// to one rail.
func (m *Manager) GenerateReport(from, to time.Time, rail string) (*Report, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("report window end must be after start")
	}
	summaries, err := m.repos.Payouts.Summaries(from, to, rail)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize payouts: %w", err)
	}

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		From:        from,
		To:          to,
		Rail:        rail,
		Summaries:   summaries,
	}
	for _, s := range summaries {
		report.TotalCount += s.Count
		report.TotalAmount += s.TotalAmount
		report.TotalFees += s.TotalFees
	}
	return report, nil
}

// ReconcileStatement compares one day of internal payouts for a rail against
// the provider's statement and returns every mismatch. Nothing is mutated;
// discrepancies are surfaced for operator review.
func (m *Manager) ReconcileStatement(rail string, day time.Time, statement []models.StatementRecord) ([]models.Discrepancy, error) {
	internal, err := m.repos.Payouts.ListByRailAndDay(rail, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load payouts for %s on %s: %w",
			rail, day.Format("2006-01-02"), err)
	}

	byRef := make(map[string]*models.Payout, len(internal))
	for _, p := range internal {
		if p.ProviderRef != "" {
			byRef[p.ProviderRef] = p
		}
	}

	var discrepancies []models.Discrepancy
	seen := make(map[string]bool, len(statement))

	for _, record := range statement {
		seen[record.ProviderRef] = true
		p, ok := byRef[record.ProviderRef]
		if !ok {
			discrepancies = append(discrepancies, models.Discrepancy{
				Type:           models.DiscrepancyMissing,
				ProviderRef:    record.ProviderRef,
				ProviderStatus: record.Status,
				ProviderAmount: record.Amount,
				Description:    "provider statement row has no matching payout",
			})
			continue
		}
		if p.Status != record.Status {
			discrepancies = append(discrepancies, models.Discrepancy{
				Type:           models.DiscrepancyStatusMismatch,
				PayoutPublicID: p.PublicID,
				ProviderRef:    record.ProviderRef,
				InternalStatus: p.Status,
				ProviderStatus: record.Status,
				Description:    "internal status disagrees with provider statement",
			})
		}
		if p.NetAmount != record.Amount {
			discrepancies = append(discrepancies, models.Discrepancy{
				Type:           models.DiscrepancyAmountMismatch,
				PayoutPublicID: p.PublicID,
				ProviderRef:    record.ProviderRef,
				InternalAmount: p.NetAmount,
				ProviderAmount: record.Amount,
				Description:    "net amount disagrees with provider statement",
			})
		}
	}

	for _, p := range internal {
		if p.ProviderRef == "" || seen[p.ProviderRef] {
			continue
		}
		discrepancies = append(discrepancies, models.Discrepancy{
			Type:           models.DiscrepancyUnreported,
			PayoutPublicID: p.PublicID,
			ProviderRef:    p.ProviderRef,
			InternalStatus: p.Status,
			InternalAmount: p.NetAmount,
			Description:    "payout sent to provider but absent from statement",
		})
	}

	log.Printf("reconciled %s for %s: %d internal, %d statement rows, %d discrepancies",
		rail, day.Format("2006-01-02"), len(internal), len(statement), len(discrepancies))
	return discrepancies, nil
}
