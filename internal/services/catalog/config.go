package catalog

import "pactify/internal/models"

// RailConfig holds one rail's support matrix and fee formula parameters.
// Amounts and fees are minor currency units; PercentFee is a fraction.
type RailConfig struct {
	Countries            []string
	Currencies           []string
	MinAmount            int64
	MaxAmount            int64
	DailyLimit           int64
	MonthlyLimit         int64
	FixedFee             int64
	PercentFee           float64
	MinFee               int64
	MaxFee               int64
	ProcessingMinMinutes int
	ProcessingMaxMinutes int
	SupportsInstant      bool
	RequiresEnhancedKYC  bool
	BaseCurrency         string
	LowFXCost            bool
}

// Config is the full rail capability table.
type Config struct {
	Rails map[string]RailConfig
}

// DefaultConfig returns the default capability table. These are policy
// defaults; deployments override them rather than editing code.
func DefaultConfig() Config {
	return Config{
		Rails: map[string]RailConfig{
			models.RailStripe: {
				Countries:            []string{"US", "GB", "CA", "AU", "DE", "FR", "ES", "IT", "NL", "IE", "PT"},
				Currencies:           []string{"USD", "EUR", "GBP", "CAD", "AUD"},
				MinAmount:            100,
				MaxAmount:            1_000_000,
				DailyLimit:           2_000_000,
				MonthlyLimit:         10_000_000,
				FixedFee:             25,
				PercentFee:           0.0025,
				MinFee:               25,
				MaxFee:               2_000,
				ProcessingMinMinutes: 1440,
				ProcessingMaxMinutes: 2880,
				SupportsInstant:      true,
				BaseCurrency:         "USD",
			},
			models.RailPayPal: {
				Countries: []string{
					"US", "GB", "CA", "AU", "DE", "FR", "ES", "IT", "NL",
					"MX", "BR", "IN", "PH", "KE", "NG", "ZA",
				},
				Currencies:           []string{"USD", "EUR", "GBP"},
				MinAmount:            100,
				MaxAmount:            500_000,
				DailyLimit:           1_000_000,
				MonthlyLimit:         5_000_000,
				FixedFee:             25,
				PercentFee:           0.02,
				MinFee:               25,
				MaxFee:               2_000,
				ProcessingMinMinutes: 30,
				ProcessingMaxMinutes: 720,
				SupportsInstant:      true,
				BaseCurrency:         "USD",
			},
			models.RailWise: {
				Countries: []string{
					"US", "GB", "CA", "AU", "DE", "FR", "ES", "IT", "NL", "IE", "PT",
					"MX", "BR", "IN", "PH", "KE", "NG", "ZA", "TR", "PL", "RO",
				},
				Currencies: []string{
					"USD", "EUR", "GBP", "CAD", "AUD", "MXN", "BRL", "INR", "PHP", "KES", "NGN", "ZAR",
				},
				MinAmount:            500,
				MaxAmount:            2_000_000,
				DailyLimit:           5_000_000,
				MonthlyLimit:         20_000_000,
				FixedFee:             80,
				PercentFee:           0.0045,
				MinFee:               80,
				MaxFee:               5_000,
				ProcessingMinMinutes: 60,
				ProcessingMaxMinutes: 2880,
				RequiresEnhancedKYC:  true,
				BaseCurrency:         "USD",
				LowFXCost:            true,
			},
			models.RailMpesa: {
				Countries:            []string{"KE", "TZ", "GH", "UG"},
				Currencies:           []string{"KES", "TZS", "GHS", "UGX"},
				MinAmount:            1_000,
				MaxAmount:            15_000_000,
				DailyLimit:           30_000_000,
				MonthlyLimit:         100_000_000,
				FixedFee:             0,
				PercentFee:           0.01,
				MinFee:               10,
				MaxFee:               2_500,
				ProcessingMinMinutes: 1,
				ProcessingMaxMinutes: 30,
				SupportsInstant:      true,
				BaseCurrency:         "KES",
			},
		},
	}
}
