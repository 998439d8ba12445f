package webhook

import (
	"fmt"
	"testing"
	"time"

	"pactify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripewebhook "github.com/stripe/stripe-go/v72/webhook"
)

func stripeHeader(payload []byte, secret string) string {
	now := time.Now()
	sig := stripewebhook.ComputeSignature(now, payload, secret)
	return fmt.Sprintf("t=%d,v1=%x", now.Unix(), sig)
}

func TestStripeNormalizer(t *testing.T) {
	n := NewStripeNormalizer("whsec_test")

	t.Run("verify accepts signed payload", func(t *testing.T) {
		payload := []byte(`{"id":"evt_1","type":"payout.paid","data":{"object":{"id":"po_1","status":"paid"}}}`)
		assert.NoError(t, n.Verify(payload, stripeHeader(payload, "whsec_test")))
	})

	t.Run("verify rejects wrong secret", func(t *testing.T) {
		payload := []byte(`{"id":"evt_1","type":"payout.paid"}`)
		assert.Error(t, n.Verify(payload, stripeHeader(payload, "whsec_other")))
	})

	tests := []struct {
		name       string
		payload    string
		wantStatus string
		wantReason string
	}{
		{
			name:       "payout.paid",
			payload:    `{"id":"evt_1","type":"payout.paid","data":{"object":{"id":"po_1","status":"paid"}}}`,
			wantStatus: models.PayoutStatusPaid,
		},
		{
			name:       "payout.failed carries failure message",
			payload:    `{"id":"evt_2","type":"payout.failed","data":{"object":{"id":"po_2","status":"failed","failure_message":"account closed"}}}`,
			wantStatus: models.PayoutStatusFailed,
			wantReason: "account closed",
		},
		{
			name:       "payout.canceled",
			payload:    `{"id":"evt_3","type":"payout.canceled","data":{"object":{"id":"po_3","status":"canceled"}}}`,
			wantStatus: models.PayoutStatusCancelled,
		},
		{
			name:       "payout.created maps to processing",
			payload:    `{"id":"evt_4","type":"payout.created","data":{"object":{"id":"po_4","status":"pending"}}}`,
			wantStatus: models.PayoutStatusProcessing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := n.Normalize([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, models.RailStripe, out.Rail)
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, tt.wantReason, out.FailureReason)
			assert.NotEmpty(t, out.EventID)
			assert.NotEmpty(t, out.ProviderRef)
		})
	}

	t.Run("payout.updated is ignored", func(t *testing.T) {
		_, err := n.Normalize([]byte(`{"id":"evt_5","type":"payout.updated"}`))
		assert.ErrorIs(t, err, ErrEventIgnored)
	})
}

func TestPayPalNormalizer(t *testing.T) {
	n := NewPayPalNormalizer("pp-secret")

	t.Run("hmac verify", func(t *testing.T) {
		payload := []byte(`{"id":"WH-1"}`)
		assert.NoError(t, n.Verify(payload, SignHMAC(payload, "pp-secret")))
		assert.Error(t, n.Verify(payload, SignHMAC(payload, "wrong")))
		assert.Error(t, n.Verify(payload, "not-hex"))
	})

	tests := []struct {
		name       string
		eventType  string
		wantStatus string
	}{
		{"item succeeded", "PAYMENT.PAYOUTS-ITEM.SUCCEEDED", models.PayoutStatusPaid},
		{"item failed", "PAYMENT.PAYOUTS-ITEM.FAILED", models.PayoutStatusFailed},
		{"item denied", "PAYMENT.PAYOUTS-ITEM.DENIED", models.PayoutStatusFailed},
		{"item blocked", "PAYMENT.PAYOUTS-ITEM.BLOCKED", models.PayoutStatusFailed},
		{"item returned", "PAYMENT.PAYOUTS-ITEM.RETURNED", models.PayoutStatusReturned},
		{"item canceled", "PAYMENT.PAYOUTS-ITEM.CANCELED", models.PayoutStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := fmt.Sprintf(
				`{"id":"WH-2","event_type":%q,"resource":{"payout_item_id":"ITEM-1","transaction_status":"X"}}`,
				tt.eventType)
			out, err := n.Normalize([]byte(payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, "ITEM-1", out.ProviderRef)
		})
	}

	t.Run("batch denied uses batch reference", func(t *testing.T) {
		payload := `{"id":"WH-3","event_type":"PAYMENT.PAYOUTSBATCH.DENIED","resource":{"batch_header":{"payout_batch_id":"BATCH-1","batch_status":"DENIED"}}}`
		out, err := n.Normalize([]byte(payload))
		require.NoError(t, err)
		assert.Equal(t, models.PayoutStatusFailed, out.Status)
		assert.Equal(t, "BATCH-1", out.ProviderRef)
	})

	t.Run("unrelated event ignored", func(t *testing.T) {
		_, err := n.Normalize([]byte(`{"id":"WH-4","event_type":"BILLING.SUBSCRIPTION.CREATED"}`))
		assert.ErrorIs(t, err, ErrEventIgnored)
	})
}

func TestWiseNormalizer(t *testing.T) {
	n := NewWiseNormalizer("wise-secret")

	wiseEventJSON := func(state string) string {
		return fmt.Sprintf(
			`{"event_type":"transfers#state-change","data":{"resource":{"id":16521632},"current_state":%q}}`,
			state)
	}

	tests := []struct {
		name       string
		state      string
		wantStatus string
	}{
		{"sent", "outgoing_payment_sent", models.PayoutStatusPaid},
		{"processing", "processing", models.PayoutStatusProcessing},
		{"converted", "funds_converted", models.PayoutStatusProcessing},
		{"cancelled", "cancelled", models.PayoutStatusCancelled},
		{"refunded", "funds_refunded", models.PayoutStatusFailed},
		{"bounced", "bounced_back", models.PayoutStatusReturned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := n.Normalize([]byte(wiseEventJSON(tt.state)))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, "16521632", out.ProviderRef)
			// Transfer id plus state is the dedup key; each state happens
			// at most once per transfer.
			assert.Equal(t, "16521632:"+tt.state, out.EventID)
		})
	}

	t.Run("intermediate state ignored", func(t *testing.T) {
		_, err := n.Normalize([]byte(wiseEventJSON("incoming_payment_waiting")))
		assert.ErrorIs(t, err, ErrEventIgnored)
	})

	t.Run("other event type ignored", func(t *testing.T) {
		_, err := n.Normalize([]byte(`{"event_type":"balances#credit","data":{}}`))
		assert.ErrorIs(t, err, ErrEventIgnored)
	})
}

func TestMpesaNormalizer(t *testing.T) {
	n := NewMpesaNormalizer("callback-token")

	t.Run("verify compares token", func(t *testing.T) {
		assert.NoError(t, n.Verify(nil, "callback-token"))
		assert.Error(t, n.Verify(nil, "wrong"))
	})

	t.Run("result code zero is paid", func(t *testing.T) {
		payload := `{"Result":{"ResultCode":0,"ResultDesc":"processed","ConversationID":"AG_1","TransactionID":"TX1"}}`
		out, err := n.Normalize([]byte(payload))
		require.NoError(t, err)
		assert.Equal(t, models.PayoutStatusPaid, out.Status)
		assert.Equal(t, "AG_1", out.ProviderRef)
	})

	t.Run("nonzero result code is failed", func(t *testing.T) {
		payload := `{"Result":{"ResultCode":2001,"ResultDesc":"initiator credentials invalid","ConversationID":"AG_2"}}`
		out, err := n.Normalize([]byte(payload))
		require.NoError(t, err)
		assert.Equal(t, models.PayoutStatusFailed, out.Status)
		assert.Equal(t, "initiator credentials invalid", out.FailureReason)
	})

	t.Run("missing conversation id rejected", func(t *testing.T) {
		_, err := n.Normalize([]byte(`{"Result":{"ResultCode":0}}`))
		assert.Error(t, err)
	})
}
