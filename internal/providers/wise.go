package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"pactify/internal/models"
)

// WiseClient submits international transfers through the Wise API.
type WiseClient struct {
	baseURL    string
	apiToken   string
	profileID  string
	httpClient *http.Client
}

// NewWiseClient creates a Wise rail client.
func NewWiseClient(baseURL, apiToken, profileID string, timeout time.Duration) *WiseClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &WiseClient{
		baseURL:    baseURL,
		apiToken:   apiToken,
		profileID:  profileID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *WiseClient) Rail() string { return models.RailWise }

type wiseTransferRequest struct {
	Profile       string `json:"profile"`
	TargetAccount string `json:"targetAccount"`
	Reference     string `json:"reference"`
	AmountMinor   int64  `json:"amountMinor"`
	Currency      string `json:"currency"`
	TraceKey      string `json:"customerTransactionId"`
}

type wiseTransferResponse struct {
	ID     json.Number `json:"id"`
	Status string      `json:"status"`
}

func (c *WiseClient) CreatePayout(ctx context.Context, payout *models.Payout, method *models.PayoutMethod) (*CreateResponse, error) {
	req := wiseTransferRequest{
		Profile:       c.profileID,
		TargetAccount: method.Destination,
		Reference:     payout.PublicID,
		AmountMinor:   payout.NetAmount,
		Currency:      payout.Currency,
		TraceKey:      payout.TraceKey,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/transfers", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("wise transfer request failed: %w", sanitizeTransportError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("wise transfer rejected with status %d", resp.StatusCode)
	}

	var out wiseTransferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("wise transfer response malformed: %w", err)
	}
	return &CreateResponse{
		ProviderRef:    out.ID.String(),
		ProviderStatus: out.Status,
	}, nil
}

// sanitizeTransportError strips URL details (which can embed credentials)
// from transport errors before they propagate.
func sanitizeTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return errors.New("request timed out")
		}
		return errors.New("transport error")
	}
	return err
}
