// Package providers holds one outbound client per payout rail. Clients
// translate a payout into the provider's submission API and report back the
// provider reference; they never touch the ledger or payout state.
package providers

import (
	"context"
	"fmt"

	"pactify/internal/models"
)

// CreateResponse is the provider's acknowledgment of a submitted payout.
type CreateResponse struct {
	ProviderRef    string
	ProviderStatus string
}

// Client submits payouts to one external rail.
type Client interface {
	Rail() string
	CreatePayout(ctx context.Context, payout *models.Payout, method *models.PayoutMethod) (*CreateResponse, error)
}

// Registry maps rail name to client.
type Registry map[string]Client

// NewRegistry indexes clients by rail.
func NewRegistry(clients ...Client) Registry {
	reg := make(Registry, len(clients))
	for _, c := range clients {
		reg[c.Rail()] = c
	}
	return reg
}

// Get returns the client for a rail.
func (r Registry) Get(rail string) (Client, error) {
	c, ok := r[rail]
	if !ok {
		return nil, fmt.Errorf("no provider client for rail %q", rail)
	}
	return c, nil
}
