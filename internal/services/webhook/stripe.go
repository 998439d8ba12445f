package webhook

import (
	"encoding/json"
	"fmt"

	"pactify/internal/errors"
	"pactify/internal/models"

	stripewebhook "github.com/stripe/stripe-go/v72/webhook"
)

// StripeNormalizer maps Stripe payout events onto the canonical lifecycle.
type StripeNormalizer struct {
	signingSecret string
}

func NewStripeNormalizer(signingSecret string) *StripeNormalizer {
	return &StripeNormalizer{signingSecret: signingSecret}
}

func (n *StripeNormalizer) Rail() string { return models.RailStripe }

func (n *StripeNormalizer) Verify(payload []byte, signature string) error {
	if _, err := stripewebhook.ConstructEvent(payload, signature, n.signingSecret); err != nil {
		return errors.ErrSignatureInvalid
	}
	return nil
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID             string `json:"id"`
			Status         string `json:"status"`
			FailureMessage string `json:"failure_message"`
		} `json:"object"`
	} `json:"data"`
}

func (n *StripeNormalizer) Normalize(payload []byte) (*Normalized, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("stripe event malformed: %w", err)
	}

	out := &Normalized{
		Rail:           models.RailStripe,
		EventID:        event.ID,
		EventType:      event.Type,
		ProviderRef:    event.Data.Object.ID,
		ProviderStatus: event.Data.Object.Status,
	}

	switch event.Type {
	case "payout.paid":
		out.Status = models.PayoutStatusPaid
	case "payout.failed":
		out.Status = models.PayoutStatusFailed
		out.FailureReason = event.Data.Object.FailureMessage
	case "payout.canceled":
		out.Status = models.PayoutStatusCancelled
	case "payout.created":
		out.Status = models.PayoutStatusProcessing
	default:
		// payout.updated and non-payout events carry no transition.
		return nil, ErrEventIgnored
	}
	return out, nil
}
