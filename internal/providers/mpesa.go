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

// MpesaClient submits mobile-money payouts through the M-Pesa B2C API.
type MpesaClient struct {
	baseURL    string
	apiToken   string
	shortCode  string
	resultURL  string
	httpClient *http.Client
}

// NewMpesaClient creates an M-Pesa rail client. resultURL is where the
// provider posts the asynchronous B2C result callback.
func NewMpesaClient(baseURL, apiToken, shortCode, resultURL string, timeout time.Duration) *MpesaClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &MpesaClient{
		baseURL:    baseURL,
		apiToken:   apiToken,
		shortCode:  shortCode,
		resultURL:  resultURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *MpesaClient) Rail() string { return models.RailMpesa }

type mpesaB2CRequest struct {
	OriginatorConversationID string `json:"OriginatorConversationID"`
	CommandID                string `json:"CommandID"`
	PartyA                   string `json:"PartyA"`
	PartyB                   string `json:"PartyB"`
	Amount                   int64  `json:"Amount"`
	Remarks                  string `json:"Remarks"`
	ResultURL                string `json:"ResultURL"`
	QueueTimeOutURL          string `json:"QueueTimeOutURL"`
}

type mpesaB2CResponse struct {
	ConversationID           string `json:"ConversationID"`
	OriginatorConversationID string `json:"OriginatorConversationID"`
	ResponseCode             string `json:"ResponseCode"`
	ResponseDescription      string `json:"ResponseDescription"`
}

func (c *MpesaClient) CreatePayout(ctx context.Context, payout *models.Payout, method *models.PayoutMethod) (*CreateResponse, error) {
	// M-Pesa amounts are whole currency units.
	req := mpesaB2CRequest{
		OriginatorConversationID: payout.TraceKey,
		CommandID:                "BusinessPayment",
		PartyA:                   c.shortCode,
		PartyB:                   method.Destination,
		Amount:                   payout.NetAmount / 100,
		Remarks:                  "Pactify payout " + payout.PublicID,
		ResultURL:                c.resultURL,
		QueueTimeOutURL:          c.resultURL,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/mpesa/b2c/v1/paymentrequest", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mpesa b2c request failed: %w", sanitizeTransportError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mpesa b2c rejected with status %d", resp.StatusCode)
	}

	var out mpesaB2CResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("mpesa b2c response malformed: %w", err)
	}
	if out.ResponseCode != "0" {
		return nil, fmt.Errorf("mpesa b2c rejected: code %s", out.ResponseCode)
	}
	return &CreateResponse{
		ProviderRef:    out.ConversationID,
		ProviderStatus: out.ResponseDescription,
	}, nil
}
