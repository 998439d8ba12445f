// Package decision selects the payout rail for a withdrawal request and
// produces ranked quotes across all eligible rails. Selection is a pure
// function of the input; repeated calls with identical input always return
// the same rail.
package decision

import (
	"sort"
	"time"

	"pactify/internal/errors"
	"pactify/internal/models"
	"pactify/internal/services/catalog"
	"pactify/internal/services/quote"
)

// Config holds the decision engine's policy thresholds.
type Config struct {
	// EnhancedKYCAmountThreshold forces the enhanced tier above this amount.
	EnhancedKYCAmountThreshold int64
	// RestrictedCountries force the enhanced tier regardless of amount.
	RestrictedCountries []string
	// CrossBorderFXThreshold is the mid threshold above which a cross-border
	// bank transfer prefers the low-FX-cost rail.
	CrossBorderFXThreshold int64
	// HomeCountry anchors the cross-border judgment.
	HomeCountry string
	// EnabledRails limits selection; empty means every catalog rail.
	EnabledRails []string
}

// DefaultConfig returns default policy thresholds.
func DefaultConfig() Config {
	return Config{
		EnhancedKYCAmountThreshold: 300_000,
		RestrictedCountries:        []string{"NG", "BD", "PK"},
		CrossBorderFXThreshold:     100_000,
		HomeCountry:                "US",
	}
}

// Input is everything rail selection depends on. The per-rail totals are the
// user's rolling withdrawal volume, supplied by the caller so selection
// itself stays a pure function.
type Input struct {
	UserID         uint
	BasicKYC       bool
	EnhancedKYC    bool
	Country        string
	Currency       string
	MethodType     string
	Amount         int64
	Urgency        string
	PreferredRails []string

	// DailyRailTotals and MonthlyRailTotals hold the amount already moved
	// per rail inside the rolling 24-hour and 30-day windows.
	DailyRailTotals   map[string]int64
	MonthlyRailTotals map[string]int64
}

// Service is the decision engine.
type Service struct {
	catalog *catalog.Catalog
	quotes  *quote.Calculator
	cfg     Config
}

// NewService creates a decision engine.
func NewService(cat *catalog.Catalog, calc *quote.Calculator, cfg Config) *Service {
	if cat == nil {
		panic("catalog is required")
	}
	if calc == nil {
		panic("quote calculator is required")
	}
	if cfg.EnhancedKYCAmountThreshold == 0 {
		cfg.EnhancedKYCAmountThreshold = DefaultConfig().EnhancedKYCAmountThreshold
	}
	if cfg.CrossBorderFXThreshold == 0 {
		cfg.CrossBorderFXThreshold = DefaultConfig().CrossBorderFXThreshold
	}
	if cfg.HomeCountry == "" {
		cfg.HomeCountry = DefaultConfig().HomeCountry
	}
	if cfg.RestrictedCountries == nil {
		cfg.RestrictedCountries = DefaultConfig().RestrictedCountries
	}
	return &Service{catalog: cat, quotes: calc, cfg: cfg}
}

// ChooseRail picks exactly one rail for the request.
func (s *Service) ChooseRail(in Input) (string, error) {
	caps, err := s.eligible(in)
	if err != nil {
		return "", err
	}

	// An eligible user preference short-circuits everything after the
	// eligibility intersection, including the instant filter.
	for _, pref := range in.PreferredRails {
		for _, c := range caps {
			if c.Rail == pref {
				return pref, nil
			}
		}
	}

	// Instant requests narrow to instant-capable rails; when none qualify
	// the fastest candidate wins instead of failing.
	if in.Urgency == models.UrgencyInstant {
		instant := filterCaps(caps, func(c catalog.Capability) bool { return c.SupportsInstant })
		if len(instant) > 0 {
			caps = instant
		} else {
			return fastest(caps).Rail, nil
		}
	}

	return s.rankByMethod(in, caps).Rail, nil
}

// GetQuotes computes a quote for every eligible rail, best net amount first,
// so callers can present alternatives alongside the chosen rail.
func (s *Service) GetQuotes(in Input, now time.Time) ([]quote.Quote, error) {
	caps, err := s.eligible(in)
	if err != nil {
		return nil, err
	}
	quotes := make([]quote.Quote, 0, len(caps))
	for _, c := range caps {
		quotes = append(quotes, s.quotes.Compute(c, in.Amount, in.Currency, now))
	}
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].NetAmount > quotes[j].NetAmount
	})
	return quotes, nil
}

// eligible validates KYC and intersects enabled rails with destination
// support and amount bounds.
func (s *Service) eligible(in Input) ([]catalog.Capability, error) {
	if !in.BasicKYC {
		return nil, errors.ErrKYCRequired.WithDetails(map[string]interface{}{
			"required_tier": models.KYCTierBasic,
		})
	}
	needsEnhanced := in.Amount > s.cfg.EnhancedKYCAmountThreshold ||
		containsString(s.cfg.RestrictedCountries, in.Country)
	if needsEnhanced && !in.EnhancedKYC {
		return nil, errors.ErrKYCRequired.WithDetails(map[string]interface{}{
			"required_tier": models.KYCTierEnhanced,
		})
	}

	enabled := s.cfg.EnabledRails
	if len(enabled) == 0 {
		enabled = s.catalog.Rails()
	}

	var caps []catalog.Capability
	supportedAny := false
	var belowMin, aboveMax, overVolume bool
	for _, rail := range enabled {
		c := s.catalog.Lookup(rail, in.Country, in.Currency)
		if !c.Supported {
			continue
		}
		if c.RequiresEnhancedKYC && !in.EnhancedKYC {
			continue
		}
		supportedAny = true
		if in.Amount < c.MinAmount {
			belowMin = true
			continue
		}
		if in.Amount > c.MaxAmount {
			aboveMax = true
			continue
		}
		if c.DailyLimit > 0 && in.Amount+in.DailyRailTotals[rail] > c.DailyLimit {
			overVolume = true
			continue
		}
		if c.MonthlyLimit > 0 && in.Amount+in.MonthlyRailTotals[rail] > c.MonthlyLimit {
			overVolume = true
			continue
		}
		caps = append(caps, c)
	}

	if len(caps) == 0 {
		if supportedAny && belowMin && !aboveMax && !overVolume {
			return nil, errors.ErrAmountTooLow.WithDetails(map[string]interface{}{
				"amount": in.Amount, "country": in.Country, "currency": in.Currency,
			})
		}
		if supportedAny && aboveMax {
			return nil, errors.ErrAmountTooHigh.WithDetails(map[string]interface{}{
				"amount": in.Amount, "country": in.Country, "currency": in.Currency,
			})
		}
		if supportedAny && overVolume {
			return nil, errors.ErrAmountTooHigh.WithDetails(map[string]interface{}{
				"amount": in.Amount, "country": in.Country, "currency": in.Currency,
				"reason": "rolling rail volume limit reached",
			})
		}
		return nil, errors.ErrRailNotSupported.WithDetails(map[string]interface{}{
			"country": in.Country, "currency": in.Currency,
		})
	}
	return caps, nil
}

// rankByMethod applies the method-aware tie-break logic over the candidate
// set. The set is never empty here.
func (s *Service) rankByMethod(in Input, caps []catalog.Capability) catalog.Capability {
	find := func(rail string) *catalog.Capability {
		for i := range caps {
			if caps[i].Rail == rail {
				return &caps[i]
			}
		}
		return nil
	}

	switch in.MethodType {
	case models.MethodTypeWallet:
		if c := find(models.RailPayPal); c != nil {
			return *c
		}
	case models.MethodTypeMobile:
		if c := find(models.RailMpesa); c != nil {
			return *c
		}
	case models.MethodTypeBank:
		crossBorder := in.Country != s.cfg.HomeCountry && in.Amount > s.cfg.CrossBorderFXThreshold
		if crossBorder {
			if c := lowestBy(caps, func(c catalog.Capability) bool { return c.LowFXCost }); c != nil {
				return *c
			}
		}
		if c := s.lowestFixedFee(in, caps); c != nil {
			return *c
		}
	}
	return s.lowestEstimatedFee(in, caps)
}

// lowestFixedFee picks the rail with the smallest fixed fee; a tie falls
// through to the lowest estimated total fee among the tied rails.
func (s *Service) lowestFixedFee(in Input, caps []catalog.Capability) *catalog.Capability {
	best := caps[0].FixedFee
	for _, c := range caps[1:] {
		if c.FixedFee < best {
			best = c.FixedFee
		}
	}
	tied := filterCaps(caps, func(c catalog.Capability) bool { return c.FixedFee == best })
	if len(tied) == 1 {
		return &tied[0]
	}
	return s.lowestEstimatedFeeOf(in, tied)
}

func (s *Service) lowestEstimatedFee(in Input, caps []catalog.Capability) catalog.Capability {
	return *s.lowestEstimatedFeeOf(in, caps)
}

func (s *Service) lowestEstimatedFeeOf(in Input, caps []catalog.Capability) *catalog.Capability {
	ref := time.Unix(0, 0).UTC() // fee comparison ignores the clock
	bestIdx := 0
	bestFee := s.totalFee(caps[0], in, ref)
	for i, c := range caps[1:] {
		if fee := s.totalFee(c, in, ref); fee < bestFee {
			bestFee = fee
			bestIdx = i + 1
		}
	}
	return &caps[bestIdx]
}

func (s *Service) totalFee(c catalog.Capability, in Input, now time.Time) int64 {
	q := s.quotes.Compute(c, in.Amount, in.Currency, now)
	return q.PlatformFee + q.ProviderFee
}

func fastest(caps []catalog.Capability) catalog.Capability {
	best := caps[0]
	for _, c := range caps[1:] {
		if c.ProcessingMaxMinutes < best.ProcessingMaxMinutes {
			best = c
		}
	}
	return best
}

func filterCaps(caps []catalog.Capability, keep func(catalog.Capability) bool) []catalog.Capability {
	var out []catalog.Capability
	for _, c := range caps {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func lowestBy(caps []catalog.Capability, match func(catalog.Capability) bool) *catalog.Capability {
	for i := range caps {
		if match(caps[i]) {
			return &caps[i]
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
