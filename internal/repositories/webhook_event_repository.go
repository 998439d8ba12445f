package repositories

import (
	"fmt"
	"time"

	"pactify/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WebhookEventRepository persists received provider events before they are
// acknowledged, deduplicating on (provider, provider_event_id).
type WebhookEventRepository interface {
	// Record inserts the event, returning created=false when the same
	// provider event id was already stored.
	Record(event *models.WebhookEvent) (created bool, err error)
	GetByProviderEvent(provider, providerEventID string) (*models.WebhookEvent, error)
	MarkProcessed(id uint, matched bool, processingError string) error
}

type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates the gorm-backed webhook event repository.
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Record(event *models.WebhookEvent) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_event_id"}},
		DoNothing: true,
	}).Create(event)
	if res.Error != nil {
		return false, fmt.Errorf("failed to record webhook event: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *webhookEventRepository) GetByProviderEvent(provider, providerEventID string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	err := r.db.
		Where("provider = ? AND provider_event_id = ?", provider, providerEventID).
		First(&event).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load webhook event: %w", err)
	}
	return &event, nil
}

func (r *webhookEventRepository) MarkProcessed(id uint, matched bool, processingError string) error {
	now := time.Now().UTC()
	err := r.db.Model(&models.WebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"matched":          matched,
			"processed_at":     &now,
			"processing_error": processingError,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark webhook event processed: %w", err)
	}
	return nil
}
