package webhook

import (
	"encoding/json"
	"fmt"
	"strings"

	"pactify/internal/models"
)

// PayPalNormalizer maps PayPal payout-item events onto the canonical
// lifecycle. PayPal reports per-item transaction status in the event
// resource, so both the event name and the item status are consulted.
type PayPalNormalizer struct {
	webhookSecret string
}

func NewPayPalNormalizer(webhookSecret string) *PayPalNormalizer {
	return &PayPalNormalizer{webhookSecret: webhookSecret}
}

func (n *PayPalNormalizer) Rail() string { return models.RailPayPal }

func (n *PayPalNormalizer) Verify(payload []byte, signature string) error {
	return verifyHMAC(payload, signature, n.webhookSecret)
}

type paypalEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		PayoutItemID      string `json:"payout_item_id"`
		TransactionID     string `json:"transaction_id"`
		TransactionStatus string `json:"transaction_status"`
		Errors            struct {
			Message string `json:"message"`
		} `json:"errors"`
		BatchHeader struct {
			PayoutBatchID string `json:"payout_batch_id"`
			BatchStatus   string `json:"batch_status"`
		} `json:"batch_header"`
	} `json:"resource"`
}

func (n *PayPalNormalizer) Normalize(payload []byte) (*Normalized, error) {
	var event paypalEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("paypal event malformed: %w", err)
	}

	out := &Normalized{
		Rail:           models.RailPayPal,
		EventID:        event.ID,
		EventType:      event.EventType,
		ProviderRef:    event.Resource.PayoutItemID,
		ProviderStatus: event.Resource.TransactionStatus,
	}

	switch event.EventType {
	case "PAYMENT.PAYOUTS-ITEM.SUCCEEDED":
		out.Status = models.PayoutStatusPaid
	case "PAYMENT.PAYOUTS-ITEM.FAILED", "PAYMENT.PAYOUTS-ITEM.DENIED",
		"PAYMENT.PAYOUTS-ITEM.BLOCKED":
		out.Status = models.PayoutStatusFailed
		out.FailureReason = event.Resource.Errors.Message
		if out.FailureReason == "" {
			out.FailureReason = strings.ToLower(event.Resource.TransactionStatus)
		}
	case "PAYMENT.PAYOUTS-ITEM.RETURNED":
		out.Status = models.PayoutStatusReturned
		out.FailureReason = "recipient could not claim funds"
	case "PAYMENT.PAYOUTS-ITEM.CANCELED":
		out.Status = models.PayoutStatusCancelled
	case "PAYMENT.PAYOUTSBATCH.DENIED":
		// Whole batch denied before items were created; the only ref we
		// have is the batch id, which matches payouts whose provider call
		// returned a batch-level reference.
		out.Status = models.PayoutStatusFailed
		out.ProviderRef = event.Resource.BatchHeader.PayoutBatchID
		out.ProviderStatus = event.Resource.BatchHeader.BatchStatus
		out.FailureReason = "payout batch denied"
	default:
		return nil, ErrEventIgnored
	}
	return out, nil
}
