package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pactify/internal/models"
)

// PayPalClient submits wallet payouts through the PayPal Payouts API.
type PayPalClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewPayPalClient creates a PayPal rail client.
func NewPayPalClient(baseURL, accessToken string, timeout time.Duration) *PayPalClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &PayPalClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *PayPalClient) Rail() string { return models.RailPayPal }

type paypalPayoutRequest struct {
	SenderBatchHeader struct {
		SenderBatchID string `json:"sender_batch_id"`
		EmailSubject  string `json:"email_subject"`
	} `json:"sender_batch_header"`
	Items []paypalPayoutItem `json:"items"`
}

type paypalPayoutItem struct {
	RecipientType string `json:"recipient_type"`
	Amount        struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"amount"`
	Receiver     string `json:"receiver"`
	SenderItemID string `json:"sender_item_id"`
}

type paypalPayoutResponse struct {
	BatchHeader struct {
		PayoutBatchID string `json:"payout_batch_id"`
		BatchStatus   string `json:"batch_status"`
	} `json:"batch_header"`
	Items []struct {
		PayoutItemID string `json:"payout_item_id"`
	} `json:"items"`
}

func (c *PayPalClient) CreatePayout(ctx context.Context, payout *models.Payout, method *models.PayoutMethod) (*CreateResponse, error) {
	var req paypalPayoutRequest
	req.SenderBatchHeader.SenderBatchID = payout.TraceKey
	req.SenderBatchHeader.EmailSubject = "You have a payout from Pactify"

	var item paypalPayoutItem
	item.RecipientType = "EMAIL"
	item.Amount.Value = fmt.Sprintf("%d.%02d", payout.NetAmount/100, payout.NetAmount%100)
	item.Amount.Currency = payout.Currency
	item.Receiver = method.Destination
	item.SenderItemID = payout.PublicID
	req.Items = []paypalPayoutItem{item}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payments/payouts", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("paypal payout request failed: %w", sanitizeTransportError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paypal payout rejected with status %d", resp.StatusCode)
	}

	var out paypalPayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("paypal payout response malformed: %w", err)
	}

	ref := out.BatchHeader.PayoutBatchID
	if len(out.Items) > 0 && out.Items[0].PayoutItemID != "" {
		ref = out.Items[0].PayoutItemID
	}
	return &CreateResponse{
		ProviderRef:    ref,
		ProviderStatus: out.BatchHeader.BatchStatus,
	}, nil
}
