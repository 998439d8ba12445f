package repositories

import (
	"context"
	"errors"
	"time"

	"pactify/internal/models"
)

var ErrPayoutNotFound = errors.New("payout not found")

// PayoutRepository defines payout persistence operations.
type PayoutRepository interface {
	Create(payout *models.Payout) error
	GetByID(id uint) (*models.Payout, error)
	GetByPublicID(publicID string) (*models.Payout, error)
	GetByTraceKey(traceKey string) (*models.Payout, error)
	GetByProviderRef(rail, providerRef string) (*models.Payout, error)

	// GetForUpdate acquires a row lock; only valid inside a transaction.
	GetForUpdate(id uint) (*models.Payout, error)

	Update(payout *models.Payout) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Payout, error)
	ListByRailAndDay(rail string, day time.Time) ([]*models.Payout, error)
	Summaries(from, to time.Time, rail string) ([]models.ReconciliationSummary, error)

	// TotalsByRailSince sums the user's withdrawal volume per rail since the
	// given time. Payouts whose funds came back (failed, cancelled, returned)
	// do not count against rail volume limits.
	TotalsByRailSince(userID uint, since time.Time) (map[string]int64, error)
}
