package providers

import (
	"context"
	"fmt"
	"strings"

	"pactify/internal/models"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// StripeClient submits card-processor payouts through the Stripe API.
type StripeClient struct {
	api *client.API
}

// NewStripeClient creates a Stripe rail client with the given secret key.
func NewStripeClient(secretKey string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api}
}

func (c *StripeClient) Rail() string { return models.RailStripe }

func (c *StripeClient) CreatePayout(ctx context.Context, payout *models.Payout, method *models.PayoutMethod) (*CreateResponse, error) {
	params := &stripe.PayoutParams{
		Amount:      stripe.Int64(payout.NetAmount),
		Currency:    stripe.String(strings.ToLower(payout.Currency)),
		Destination: stripe.String(method.Destination),
		Description: stripe.String("Pactify payout " + payout.PublicID),
	}
	if payout.Urgency == models.UrgencyInstant {
		params.Method = stripe.String("instant")
	}
	params.Context = ctx
	params.SetIdempotencyKey(payout.TraceKey)

	p, err := c.api.Payouts.New(params)
	if err != nil {
		// Surface only the stripe error code; the raw message may carry
		// request details that must not reach callers.
		if stripeErr, ok := err.(*stripe.Error); ok {
			return nil, fmt.Errorf("stripe payout rejected: %s", stripeErr.Code)
		}
		return nil, fmt.Errorf("stripe payout request failed")
	}
	return &CreateResponse{
		ProviderRef:    p.ID,
		ProviderStatus: string(p.Status),
	}, nil
}
