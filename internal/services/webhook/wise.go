package webhook

import (
	"encoding/json"
	"fmt"

	"pactify/internal/models"
)

// WiseNormalizer maps Wise transfer state-change events onto the canonical
// lifecycle. Wise sends one event type whose current_state field carries
// the transition.
type WiseNormalizer struct {
	webhookSecret string
}

func NewWiseNormalizer(webhookSecret string) *WiseNormalizer {
	return &WiseNormalizer{webhookSecret: webhookSecret}
}

func (n *WiseNormalizer) Rail() string { return models.RailWise }

func (n *WiseNormalizer) Verify(payload []byte, signature string) error {
	return verifyHMAC(payload, signature, n.webhookSecret)
}

type wiseEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		Resource struct {
			ID json.Number `json:"id"`
		} `json:"resource"`
		CurrentState string `json:"current_state"`
	} `json:"data"`
	SentAt string `json:"sent_at"`
}

func (n *WiseNormalizer) Normalize(payload []byte) (*Normalized, error) {
	var event wiseEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("wise event malformed: %w", err)
	}
	if event.EventType != "transfers#state-change" {
		return nil, ErrEventIgnored
	}

	out := &Normalized{
		Rail:      models.RailWise,
		EventType: event.EventType,
		// Wise has no per-event id; the transfer id plus state is the
		// natural dedup key since each state is reached at most once.
		EventID:        event.Data.Resource.ID.String() + ":" + event.Data.CurrentState,
		ProviderRef:    event.Data.Resource.ID.String(),
		ProviderStatus: event.Data.CurrentState,
	}

	switch event.Data.CurrentState {
	case "outgoing_payment_sent":
		out.Status = models.PayoutStatusPaid
	case "processing", "funds_converted":
		out.Status = models.PayoutStatusProcessing
	case "cancelled":
		out.Status = models.PayoutStatusCancelled
	case "funds_refunded":
		out.Status = models.PayoutStatusFailed
		out.FailureReason = "transfer refunded by provider"
	case "bounced_back":
		out.Status = models.PayoutStatusReturned
		out.FailureReason = "transfer bounced back from recipient bank"
	default:
		// Intermediate states (incoming_payment_waiting etc.) carry no
		// transition for an already-processing payout.
		return nil, ErrEventIgnored
	}
	return out, nil
}
