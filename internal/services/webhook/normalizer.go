// Package webhook translates provider event vocabularies into canonical
// payout state transitions. Normalizers are pure: verify the signature,
// map the payload, hand the result to the reconciliation manager. No
// provider-specific branching exists outside this package.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"

	"pactify/internal/errors"
)

// ErrEventIgnored marks event types that carry no state transition
// (informational provider chatter). Callers acknowledge and move on.
var ErrEventIgnored = stderrors.New("event type carries no payout transition")

// Normalized is the canonical form of one provider event.
type Normalized struct {
	Rail           string
	EventID        string
	EventType      string
	Status         string // canonical payout status
	ProviderRef    string
	ProviderStatus string
	FailureReason  string
}

// Normalizer is one rail's webhook translation layer.
type Normalizer interface {
	Rail() string
	// Verify checks message authenticity before anything else runs.
	// An unverifiable event never reaches the state machine.
	Verify(payload []byte, signature string) error
	// Normalize maps the raw event onto the canonical vocabulary.
	Normalize(payload []byte) (*Normalized, error)
}

// verifyHMAC compares an HMAC-SHA256 hex signature in constant time.
func verifyHMAC(payload []byte, signature, secret string) error {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(expected, provided) {
		return errors.ErrSignatureInvalid
	}
	return nil
}

// SignHMAC produces the hex HMAC-SHA256 signature for a payload. Exposed for
// tests and local webhook simulation.
func SignHMAC(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
