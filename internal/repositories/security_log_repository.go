package repositories

import (
	"fmt"
	"time"

	"pactify/internal/models"

	"gorm.io/gorm"
)

// SecurityLogRepository records risk events and answers the windowed counts
// the rate limiter and the repeated-amount check need.
type SecurityLogRepository interface {
	Create(entry *models.WithdrawalSecurityLog) error
	CountSince(userID uint, since time.Time) (int64, error)
	CountAmountSince(userID uint, amount int64, since time.Time) (int64, error)
	ListByUser(userID uint, limit int) ([]*models.WithdrawalSecurityLog, error)
}

type securityLogRepository struct {
	db *gorm.DB
}

// NewSecurityLogRepository creates the gorm-backed security log repository.
func NewSecurityLogRepository(db *gorm.DB) SecurityLogRepository {
	return &securityLogRepository{db: db}
}

func (r *securityLogRepository) Create(entry *models.WithdrawalSecurityLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create security log: %w", err)
	}
	return nil
}

func (r *securityLogRepository) CountSince(userID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.WithdrawalSecurityLog{}).
		Where("user_id = ? AND event = ? AND created_at >= ?",
			userID, models.SecurityEventAttempt, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}

func (r *securityLogRepository) CountAmountSince(userID uint, amount int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.WithdrawalSecurityLog{}).
		Where("user_id = ? AND amount = ? AND created_at >= ?", userID, amount, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count repeated amounts: %w", err)
	}
	return count, nil
}

func (r *securityLogRepository) ListByUser(userID uint, limit int) ([]*models.WithdrawalSecurityLog, error) {
	var entries []*models.WithdrawalSecurityLog
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list security logs: %w", err)
	}
	return entries, nil
}
