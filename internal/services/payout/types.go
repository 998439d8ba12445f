package payout

import (
	"time"

	"pactify/internal/models"
	"pactify/internal/services/quote"
)

// Config holds the orchestrator's operational settings.
type Config struct {
	DefaultCurrency string
	ProviderTimeout time.Duration
	// IdempotencyClaimTTL bounds the fast-path duplicate claim in redis; the
	// unique trace key on the payout row is the durable guarantee.
	IdempotencyClaimTTL time.Duration
}

// DefaultConfig returns defaulted orchestrator settings.
func DefaultConfig() Config {
	return Config{
		DefaultCurrency:     "USD",
		ProviderTimeout:     30 * time.Second,
		IdempotencyClaimTTL: 30 * time.Minute,
	}
}

// WithdrawalRequest is one inbound withdrawal creation.
type WithdrawalRequest struct {
	UserID         uint
	Amount         int64
	Currency       string
	MethodID       uint
	Urgency        string
	PreferredRails []string
	IP             string
	UserAgent      string
}

// WithdrawalResult is the successful response payload.
type WithdrawalResult struct {
	Payout         *models.Payout `json:"payout"`
	Quote          quote.Quote    `json:"quote"`
	Alternatives   []quote.Quote  `json:"alternatives,omitempty"`
	RequiresReview bool           `json:"requires_review"`
	Duplicate      bool           `json:"duplicate,omitempty"`
}

// Eligibility is the read-only withdrawal readiness check.
type Eligibility struct {
	CanWithdraw      bool     `json:"can_withdraw"`
	AvailableBalance int64    `json:"available_balance"`
	Currency         string   `json:"currency"`
	VerifiedMethods  int64    `json:"verified_methods"`
	AttemptsLastHour int64    `json:"attempts_last_hour"`
	AttemptsLastDay  int64    `json:"attempts_last_day"`
	HourlyLimit      int      `json:"hourly_limit"`
	DailyLimit       int      `json:"daily_limit"`
	Reasons          []string `json:"reasons,omitempty"`
}
