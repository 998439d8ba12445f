package quote

import (
	"testing"
	"time"

	"pactify/internal/services/catalog"

	"github.com/stretchr/testify/assert"
)

func stripeCap() catalog.Capability {
	return catalog.Capability{
		Rail:                 "stripe",
		Supported:            true,
		FixedFee:             25,
		PercentFee:           0.0025,
		MinFee:               25,
		MaxFee:               2000,
		ProcessingMinMinutes: 1440,
		ProcessingMaxMinutes: 2880,
		BaseCurrency:         "USD",
	}
}

func TestCalculator_Compute(t *testing.T) {
	calc := NewCalculator(Config{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fee breakdown sums to amount", func(t *testing.T) {
		q := calc.Compute(stripeCap(), 50_000, "USD", now)

		// $500: provider 25 + round(50000*0.0025) = 150, platform 1% = 500.
		assert.Equal(t, int64(150), q.ProviderFee)
		assert.Equal(t, int64(500), q.PlatformFee)
		assert.Equal(t, int64(49_350), q.NetAmount)
		assert.Equal(t, q.Amount, q.PlatformFee+q.ProviderFee+q.NetAmount)
	})

	t.Run("provider fee clamps to min", func(t *testing.T) {
		q := calc.Compute(stripeCap(), 200, "USD", now)
		assert.Equal(t, int64(25), q.ProviderFee)
	})

	t.Run("provider fee clamps to max", func(t *testing.T) {
		q := calc.Compute(stripeCap(), 1_000_000, "USD", now)
		assert.Equal(t, int64(2000), q.ProviderFee)
	})

	t.Run("net amount never negative", func(t *testing.T) {
		q := calc.Compute(stripeCap(), 10, "USD", now)
		assert.Equal(t, int64(0), q.NetAmount)
	})

	t.Run("fx rate only on cross-currency", func(t *testing.T) {
		q := calc.Compute(stripeCap(), 50_000, "USD", now)
		assert.Nil(t, q.FXRate)

		q = calc.Compute(stripeCap(), 50_000, "EUR", now)
		if assert.NotNil(t, q.FXRate) {
			assert.InDelta(t, 1.08, *q.FXRate, 0.001)
		}
	})

	t.Run("estimated arrival uses max processing time", func(t *testing.T) {
		q := calc.Compute(stripeCap(), 50_000, "USD", now)
		assert.Equal(t, now.Add(2880*time.Minute), q.EstimatedArrival)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		first := calc.Compute(stripeCap(), 123_456, "USD", now)
		second := calc.Compute(stripeCap(), 123_456, "USD", now)
		assert.Equal(t, first, second)
	})
}

func TestFormatProcessingTime(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		want     string
	}{
		{"minutes range", 1, 30, "1-30 minutes"},
		{"single hour", 45, 60, "1 hours"},
		{"hours range", 60, 720, "1-12 hours"},
		{"single business day", 1440, 1440, "1 business day"},
		{"business day range", 1440, 2880, "1-2 business days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatProcessingTime(tt.min, tt.max))
		})
	}
}
