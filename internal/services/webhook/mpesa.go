package webhook

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"

	"pactify/internal/errors"
	"pactify/internal/models"
)

// MpesaNormalizer maps M-Pesa B2C result callbacks onto the canonical
// lifecycle. The result callback is the only status signal the rail
// sends; ResultCode 0 means the money moved.
type MpesaNormalizer struct {
	callbackToken string
}

func NewMpesaNormalizer(callbackToken string) *MpesaNormalizer {
	return &MpesaNormalizer{callbackToken: callbackToken}
}

func (n *MpesaNormalizer) Rail() string { return models.RailMpesa }

// Verify checks the shared callback token. M-Pesa does not sign payloads;
// authenticity rests on the secret result URL plus this token.
func (n *MpesaNormalizer) Verify(payload []byte, signature string) error {
	if subtle.ConstantTimeCompare([]byte(signature), []byte(n.callbackToken)) != 1 {
		return errors.ErrSignatureInvalid
	}
	return nil
}

type mpesaResult struct {
	Result struct {
		ResultType               int    `json:"ResultType"`
		ResultCode               int    `json:"ResultCode"`
		ResultDesc               string `json:"ResultDesc"`
		OriginatorConversationID string `json:"OriginatorConversationID"`
		ConversationID           string `json:"ConversationID"`
		TransactionID            string `json:"TransactionID"`
	} `json:"Result"`
}

func (n *MpesaNormalizer) Normalize(payload []byte) (*Normalized, error) {
	var event mpesaResult
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("mpesa result malformed: %w", err)
	}
	if event.Result.ConversationID == "" {
		return nil, fmt.Errorf("mpesa result missing conversation id")
	}

	out := &Normalized{
		Rail:           models.RailMpesa,
		EventID:        event.Result.ConversationID,
		EventType:      "b2c.result",
		ProviderRef:    event.Result.ConversationID,
		ProviderStatus: fmt.Sprintf("%d", event.Result.ResultCode),
	}

	if event.Result.ResultCode == 0 {
		out.Status = models.PayoutStatusPaid
	} else {
		out.Status = models.PayoutStatusFailed
		out.FailureReason = event.Result.ResultDesc
	}
	return out, nil
}
