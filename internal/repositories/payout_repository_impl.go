package repositories

import (
	"context"
	"fmt"
	"time"

	"pactify/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type payoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository creates the gorm-backed payout repository.
func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) Create(payout *models.Payout) error {
	if err := r.db.Create(payout).Error; err != nil {
		return fmt.Errorf("failed to create payout: %w", err)
	}
	return nil
}

func (r *payoutRepository) getOne(query string, args ...interface{}) (*models.Payout, error) {
	var payout models.Payout
	if err := r.db.Where(query, args...).First(&payout).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}
	return &payout, nil
}

func (r *payoutRepository) GetByID(id uint) (*models.Payout, error) {
	return r.getOne("id = ?", id)
}

func (r *payoutRepository) GetByPublicID(publicID string) (*models.Payout, error) {
	return r.getOne("public_id = ?", publicID)
}

func (r *payoutRepository) GetByTraceKey(traceKey string) (*models.Payout, error) {
	return r.getOne("trace_key = ?", traceKey)
}

func (r *payoutRepository) GetByProviderRef(rail, providerRef string) (*models.Payout, error) {
	return r.getOne("rail = ? AND provider_ref = ?", rail, providerRef)
}

func (r *payoutRepository) GetForUpdate(id uint) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&payout).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("failed to lock payout: %w", err)
	}
	return &payout, nil
}

func (r *payoutRepository) Update(payout *models.Payout) error {
	if err := r.db.Save(payout).Error; err != nil {
		return fmt.Errorf("failed to update payout: %w", err)
	}
	return nil
}

func (r *payoutRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Payout, error) {
	var payouts []*models.Payout
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&payouts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	return payouts, nil
}

func (r *payoutRepository) ListByRailAndDay(rail string, day time.Time) ([]*models.Payout, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	var payouts []*models.Payout
	err := r.db.
		Where("rail = ? AND created_at >= ? AND created_at < ?", rail, start, end).
		Order("created_at ASC").
		Find(&payouts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts for reconciliation: %w", err)
	}
	return payouts, nil
}

func (r *payoutRepository) TotalsByRailSince(userID uint, since time.Time) (map[string]int64, error) {
	var rows []struct {
		Rail  string
		Total int64
	}
	err := r.db.Model(&models.Payout{}).
		Select("rail, COALESCE(SUM(amount), 0) as total").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Where("status NOT IN ?", []string{
			models.PayoutStatusFailed,
			models.PayoutStatusCancelled,
			models.PayoutStatusReturned,
		}).
		Group("rail").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to total payouts by rail: %w", err)
	}

	totals := make(map[string]int64, len(rows))
	for _, row := range rows {
		totals[row.Rail] = row.Total
	}
	return totals, nil
}

func (r *payoutRepository) Summaries(from, to time.Time, rail string) ([]models.ReconciliationSummary, error) {
	query := r.db.Model(&models.Payout{}).
		Select(`rail, status,
			COUNT(*) as count,
			COALESCE(SUM(amount), 0) as total_amount,
			COALESCE(SUM(platform_fee + provider_fee), 0) as total_fees`).
		Where("created_at >= ? AND created_at < ?", from, to)
	if rail != "" {
		query = query.Where("rail = ?", rail)
	}

	var summaries []models.ReconciliationSummary
	if err := query.Group("rail, status").Order("rail, status").Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate payouts: %w", err)
	}
	return summaries, nil
}
