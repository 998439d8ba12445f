package models

import "time"

// WebhookEvent stores every received provider webhook with deduplication
// metadata. A row is written before the event is acknowledged, so "received
// and logged" is durable even when the referenced payout is unknown.
type WebhookEvent struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	Provider        string     `gorm:"not null;uniqueIndex:idx_webhook_provider_event" json:"provider"`
	ProviderEventID string     `gorm:"not null;uniqueIndex:idx_webhook_provider_event" json:"provider_event_id"`
	EventType       string     `gorm:"not null;index" json:"event_type"`
	Payload         JSON       `gorm:"type:jsonb" json:"payload"`
	SignatureValid  bool       `gorm:"default:false" json:"signature_valid"`
	Matched         bool       `gorm:"default:false" json:"matched"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	ProcessingError string     `json:"processing_error,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
}
