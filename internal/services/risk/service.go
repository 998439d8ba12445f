// Package risk scores withdrawal requests, enforces attempt rate limits and
// account holds, and derives the idempotency trace key that collapses
// duplicate submissions.
package risk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"time"

	"pactify/internal/errors"
	"pactify/internal/models"
	"pactify/internal/repositories"
	"pactify/internal/services/kyc"
)

// Config holds the risk guard's policy values. Weights and thresholds are
// product policy, not structural invariants, so everything is overridable.
type Config struct {
	HighAmountThreshold  int64
	HighAmountWeight     int
	NewMethodWindow      time.Duration
	NewMethodWeight      int
	RepeatedAmountWindow time.Duration
	RepeatedAmountMin    int64
	RepeatedAmountWeight int
	SuspiciousIPWeight   int

	ReviewThreshold    int
	AlwaysReviewAmount int64

	HourlyAttemptLimit int
	DailyAttemptLimit  int

	IdempotencyWindow time.Duration
}

// DefaultConfig returns default policy values.
func DefaultConfig() Config {
	return Config{
		HighAmountThreshold:  100_000,
		HighAmountWeight:     30,
		NewMethodWindow:      72 * time.Hour,
		NewMethodWeight:      25,
		RepeatedAmountWindow: 24 * time.Hour,
		RepeatedAmountMin:    3,
		RepeatedAmountWeight: 20,
		SuspiciousIPWeight:   25,
		ReviewThreshold:      50,
		AlwaysReviewAmount:   500_000,
		HourlyAttemptLimit:   5,
		DailyAttemptLimit:    20,
		IdempotencyWindow:    15 * time.Minute,
	}
}

// Request is one withdrawal attempt plus its request context.
type Request struct {
	UserID        uint
	Amount        int64
	Currency      string
	MethodID      uint
	MethodAddedAt time.Time
	IP            string
	UserAgent     string
}

// Assessment is the guard's verdict for an allowed attempt.
type Assessment struct {
	Score          int
	Flags          []string
	RequiresReview bool
	TraceKey       string
}

// Service is the risk and idempotency guard.
type Service struct {
	logs repositories.SecurityLogRepository
	kyc  kyc.Verifier
	cfg  Config
	now  func() time.Time
}

// NewService creates the guard. The clock is injectable for tests.
func NewService(logs repositories.SecurityLogRepository, verifier kyc.Verifier, cfg Config, now func() time.Time) *Service {
	if logs == nil {
		panic("security log repository is required")
	}
	if verifier == nil {
		panic("kyc verifier is required")
	}
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{logs: logs, kyc: verifier, cfg: cfg, now: now}
}

// Evaluate gates one withdrawal attempt. On success it records the attempt
// in the security log and returns the assessment; on refusal it records the
// failure and returns the matching domain error.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Assessment, error) {
	now := s.now().UTC()

	verified, err := s.kyc.IsBasicVerified(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("kyc lookup failed: %w", err)
	}
	if !verified {
		s.logEvent(req, models.SecurityEventFailure, 0, nil, "kyc_unverified")
		return nil, errors.ErrKYCRequired.WithDetails(map[string]interface{}{
			"required_tier": models.KYCTierBasic,
		})
	}

	holdUntil, err := s.kyc.WithdrawalHoldUntil(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("hold lookup failed: %w", err)
	}
	if holdUntil != nil && now.Before(*holdUntil) {
		s.logEvent(req, models.SecurityEventFailure, 0, nil, "withdrawal_hold")
		return nil, errors.ErrWithdrawalHold.WithDetails(map[string]interface{}{
			"hold_until": holdUntil.Format(time.RFC3339),
		})
	}

	if err := s.checkRateLimits(req, now); err != nil {
		return nil, err
	}

	score, flags, err := s.score(req, now)
	if err != nil {
		return nil, err
	}
	requiresReview := score >= s.cfg.ReviewThreshold || req.Amount >= s.cfg.AlwaysReviewAmount

	event := models.SecurityEventAttempt
	s.logEvent(req, event, score, flags, "")
	if requiresReview {
		s.logEvent(req, models.SecurityEventReview, score, flags, "review_threshold")
	}

	return &Assessment{
		Score:          score,
		Flags:          flags,
		RequiresReview: requiresReview,
		TraceKey:       s.IdempotencyKey(req.UserID, req.Amount, req.MethodID, now),
	}, nil
}

// AttemptCounts returns the current hourly and daily attempt counts, used by
// the eligibility check to surface active rate-limit windows.
func (s *Service) AttemptCounts(userID uint) (hourly, daily int64, err error) {
	now := s.now().UTC()
	hourly, err = s.logs.CountSince(userID, now.Add(-time.Hour))
	if err != nil {
		return 0, 0, err
	}
	daily, err = s.logs.CountSince(userID, now.Add(-24*time.Hour))
	if err != nil {
		return 0, 0, err
	}
	return hourly, daily, nil
}

// Limits exposes the configured attempt limits.
func (s *Service) Limits() (hourly, daily int) {
	return s.cfg.HourlyAttemptLimit, s.cfg.DailyAttemptLimit
}

// IdempotencyKey derives a stable key from the request identity and a coarse
// time bucket, so network retries of the same logical attempt hash alike.
func (s *Service) IdempotencyKey(userID uint, amount int64, methodID uint, at time.Time) string {
	bucket := at.UTC().Truncate(s.cfg.IdempotencyWindow).Unix()
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%d|%d|%d", userID, amount, methodID, bucket)))
	return hex.EncodeToString(sum[:])
}

func (s *Service) checkRateLimits(req Request, now time.Time) error {
	hourly, err := s.logs.CountSince(req.UserID, now.Add(-time.Hour))
	if err != nil {
		return fmt.Errorf("rate limit check failed: %w", err)
	}
	if hourly >= int64(s.cfg.HourlyAttemptLimit) {
		s.logEvent(req, models.SecurityEventFailure, 0, nil, "rate_limited_hourly")
		return errors.ErrRateLimited.WithDetails(map[string]interface{}{
			"window": "hour", "limit": s.cfg.HourlyAttemptLimit, "retryable": true,
		})
	}
	daily, err := s.logs.CountSince(req.UserID, now.Add(-24*time.Hour))
	if err != nil {
		return fmt.Errorf("rate limit check failed: %w", err)
	}
	if daily >= int64(s.cfg.DailyAttemptLimit) {
		s.logEvent(req, models.SecurityEventFailure, 0, nil, "rate_limited_daily")
		return errors.ErrRateLimited.WithDetails(map[string]interface{}{
			"window": "day", "limit": s.cfg.DailyAttemptLimit, "retryable": true,
		})
	}
	return nil
}

func (s *Service) score(req Request, now time.Time) (int, []string, error) {
	score := 0
	var flags []string

	if req.Amount >= s.cfg.HighAmountThreshold {
		score += s.cfg.HighAmountWeight
		flags = append(flags, models.RiskFlagHighAmount)
	}
	if !req.MethodAddedAt.IsZero() && now.Sub(req.MethodAddedAt) < s.cfg.NewMethodWindow {
		score += s.cfg.NewMethodWeight
		flags = append(flags, models.RiskFlagNewMethod)
	}
	repeats, err := s.logs.CountAmountSince(req.UserID, req.Amount, now.Add(-s.cfg.RepeatedAmountWindow))
	if err != nil {
		return 0, nil, fmt.Errorf("pattern check failed: %w", err)
	}
	if repeats >= s.cfg.RepeatedAmountMin {
		score += s.cfg.RepeatedAmountWeight
		flags = append(flags, models.RiskFlagRepeatedAmount)
	}
	if suspiciousIP(req.IP) {
		score += s.cfg.SuspiciousIPWeight
		flags = append(flags, models.RiskFlagSuspiciousIP)
	}
	return score, flags, nil
}

func (s *Service) logEvent(req Request, event string, score int, flags []string, reason string) {
	entry := &models.WithdrawalSecurityLog{
		UserID:    req.UserID,
		Event:     event,
		Amount:    req.Amount,
		Currency:  req.Currency,
		IP:        req.IP,
		UserAgent: req.UserAgent,
		RiskScore: score,
	}
	if len(flags) > 0 {
		flagged := make([]interface{}, len(flags))
		for i, f := range flags {
			flagged[i] = f
		}
		entry.Flags = models.JSON{"flags": flagged}
	}
	if reason != "" {
		entry.Metadata = models.JSON{"reason": reason}
	}
	// Audit writes never fail the attempt on their own.
	_ = s.logs.Create(entry)
}

func suspiciousIP(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return addr != ""
	}
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsUnspecified()
}
