// Package quote computes fee breakdowns for payout rails. The calculator is
// a pure function of its inputs: identical capability, amount and clock give
// identical quotes, which the tests rely on.
package quote

import (
	"fmt"
	"math"
	"time"

	"pactify/internal/services/catalog"
)

// Quote is an ephemeral fee computation for one rail and amount. It is never
// persisted standalone; a committed payout carries it as a snapshot.
type Quote struct {
	Rail             string    `json:"rail"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	PlatformFee      int64     `json:"platform_fee"`
	ProviderFee      int64     `json:"provider_fee"`
	NetAmount        int64     `json:"net_amount"`
	FXRate           *float64  `json:"fx_rate,omitempty"`
	ProcessingTime   string    `json:"processing_time"`
	EstimatedArrival time.Time `json:"estimated_arrival"`
	SupportsInstant  bool      `json:"supports_instant"`
}

// Config holds the platform's own fee policy and static FX reference rates.
type Config struct {
	PlatformFeePercent float64
	FXRates            map[string]float64 // base-currency units per quoted currency
}

// DefaultConfig returns default quote policy values.
func DefaultConfig() Config {
	return Config{
		PlatformFeePercent: 0.01,
		FXRates: map[string]float64{
			"USD": 1.0,
			"EUR": 1.08,
			"GBP": 1.27,
			"CAD": 0.73,
			"AUD": 0.65,
			"MXN": 0.058,
			"BRL": 0.18,
			"INR": 0.012,
			"PHP": 0.017,
			"KES": 0.0077,
			"NGN": 0.00065,
			"ZAR": 0.055,
			"TZS": 0.00040,
			"GHS": 0.065,
			"UGX": 0.00027,
		},
	}
}

// Calculator computes quotes. It has no side effects.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with defaulted config.
func NewCalculator(cfg Config) *Calculator {
	if cfg.PlatformFeePercent == 0 {
		cfg.PlatformFeePercent = DefaultConfig().PlatformFeePercent
	}
	if cfg.FXRates == nil {
		cfg.FXRates = DefaultConfig().FXRates
	}
	return &Calculator{cfg: cfg}
}

// Compute builds the quote for one rail capability and amount. The provider
// fee is fixed + amount*percent clamped to [min, max]; the platform fee is a
// flat percentage of the amount. An FX rate is attached only when the payout
// currency differs from the rail's base currency.
func (c *Calculator) Compute(cap catalog.Capability, amount int64, currency string, now time.Time) Quote {
	providerFee := cap.FixedFee + int64(math.Round(float64(amount)*cap.PercentFee))
	if providerFee < cap.MinFee {
		providerFee = cap.MinFee
	}
	if cap.MaxFee > 0 && providerFee > cap.MaxFee {
		providerFee = cap.MaxFee
	}

	platformFee := int64(math.Round(float64(amount) * c.cfg.PlatformFeePercent))
	net := amount - platformFee - providerFee
	if net < 0 {
		net = 0
	}

	q := Quote{
		Rail:             cap.Rail,
		Amount:           amount,
		Currency:         currency,
		PlatformFee:      platformFee,
		ProviderFee:      providerFee,
		NetAmount:        net,
		ProcessingTime:   FormatProcessingTime(cap.ProcessingMinMinutes, cap.ProcessingMaxMinutes),
		EstimatedArrival: now.Add(time.Duration(cap.ProcessingMaxMinutes) * time.Minute),
		SupportsInstant:  cap.SupportsInstant,
	}
	if currency != cap.BaseCurrency {
		if rate, ok := c.cfg.FXRates[currency]; ok {
			q.FXRate = &rate
		}
	}
	return q
}

// FormatProcessingTime buckets a minute range into human-readable text.
func FormatProcessingTime(minMinutes, maxMinutes int) string {
	switch {
	case maxMinutes < 60:
		if minMinutes == maxMinutes {
			return fmt.Sprintf("%d minutes", maxMinutes)
		}
		return fmt.Sprintf("%d-%d minutes", minMinutes, maxMinutes)
	case maxMinutes < 1440:
		minH := ceilDiv(minMinutes, 60)
		maxH := ceilDiv(maxMinutes, 60)
		if minH == maxH {
			return fmt.Sprintf("%d hours", maxH)
		}
		return fmt.Sprintf("%d-%d hours", minH, maxH)
	default:
		minD := ceilDiv(minMinutes, 1440)
		maxD := ceilDiv(maxMinutes, 1440)
		if minD == maxD {
			if maxD == 1 {
				return "1 business day"
			}
			return fmt.Sprintf("%d business days", maxD)
		}
		return fmt.Sprintf("%d-%d business days", minD, maxD)
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
