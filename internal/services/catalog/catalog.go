// Package catalog is the rail capability lookup: which payout rails support
// a given (country, currency, amount) and on what fee and timing terms.
// Values are product policy, loaded from config with defaults, and change
// rarely; nothing here is persisted per request.
package catalog

import "pactify/internal/models"

// Capability is the result of a rail lookup for one destination.
type Capability struct {
	Rail                 string
	Supported            bool
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

// Catalog answers capability lookups from its configuration.
type Catalog struct {
	cfg Config
}

// New creates a catalog, filling in default rail configs where absent.
func New(cfg Config) *Catalog {
	if cfg.Rails == nil {
		cfg.Rails = DefaultConfig().Rails
	}
	return &Catalog{cfg: cfg}
}

// Rails returns all configured rails in stable priority order.
func (c *Catalog) Rails() []string {
	rails := make([]string, 0, len(railOrder))
	for _, rail := range railOrder {
		if _, ok := c.cfg.Rails[rail]; ok {
			rails = append(rails, rail)
		}
	}
	return rails
}

// Lookup resolves the capability of one rail for a destination. A rail that
// does not serve the country or currency comes back with Supported=false;
// amount bounds are reported for the caller to enforce.
func (c *Catalog) Lookup(rail, country, currency string) Capability {
	rc, ok := c.cfg.Rails[rail]
	if !ok {
		return Capability{Rail: rail}
	}

	cap := Capability{
		Rail:                 rail,
		Supported:            contains(rc.Countries, country) && contains(rc.Currencies, currency),
		MinAmount:            rc.MinAmount,
		MaxAmount:            rc.MaxAmount,
		DailyLimit:           rc.DailyLimit,
		MonthlyLimit:         rc.MonthlyLimit,
		FixedFee:             rc.FixedFee,
		PercentFee:           rc.PercentFee,
		MinFee:               rc.MinFee,
		MaxFee:               rc.MaxFee,
		ProcessingMinMinutes: rc.ProcessingMinMinutes,
		ProcessingMaxMinutes: rc.ProcessingMaxMinutes,
		SupportsInstant:      rc.SupportsInstant,
		RequiresEnhancedKYC:  rc.RequiresEnhancedKYC,
		BaseCurrency:         rc.BaseCurrency,
		LowFXCost:            rc.LowFXCost,
	}
	return cap
}

// AmountInBounds reports whether the amount fits the rail's limits.
func (cap Capability) AmountInBounds(amount int64) bool {
	return amount >= cap.MinAmount && amount <= cap.MaxAmount
}

// railOrder fixes iteration order so rail selection stays deterministic.
var railOrder = []string{
	models.RailStripe,
	models.RailPayPal,
	models.RailWise,
	models.RailMpesa,
}

func contains(list []string, s string) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
