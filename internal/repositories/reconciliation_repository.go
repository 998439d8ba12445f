package repositories

import (
	"fmt"

	"pactify/internal/models"

	"gorm.io/gorm"
)

// ReconciliationRepository appends and reads immutable audit entries.
// There is deliberately no update or delete.
type ReconciliationRepository interface {
	CreateEntry(entry *models.ReconciliationEntry) error
	ListByPayout(payoutID uint) ([]*models.ReconciliationEntry, error)
}

type reconciliationRepository struct {
	db *gorm.DB
}

// NewReconciliationRepository creates the gorm-backed audit repository.
func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

func (r *reconciliationRepository) CreateEntry(entry *models.ReconciliationEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append reconciliation entry: %w", err)
	}
	return nil
}

func (r *reconciliationRepository) ListByPayout(payoutID uint) ([]*models.ReconciliationEntry, error) {
	var entries []*models.ReconciliationEntry
	err := r.db.Where("payout_id = ?", payoutID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliation entries: %w", err)
	}
	return entries, nil
}
