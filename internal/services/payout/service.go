// Package payout orchestrates the withdrawal pipeline: validation, risk
// gating, idempotency, rail selection, the atomic reserve, and the provider
// submission with failure compensation.
package payout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pactify/internal/errors"
	"pactify/internal/models"
	"pactify/internal/providers"
	"pactify/internal/repositories"
	"pactify/internal/services/decision"
	"pactify/internal/services/kyc"
	"pactify/internal/services/ledger"
	"pactify/internal/services/quote"
	"pactify/internal/services/risk"

	"github.com/google/uuid"
)

// Service is the withdrawal orchestrator's public surface.
type Service interface {
	CreateWithdrawal(ctx context.Context, req WithdrawalRequest) (*WithdrawalResult, error)
	CheckEligibility(ctx context.Context, userID uint, currency string) (*Eligibility, error)
	GetQuotes(ctx context.Context, userID uint, amount int64, currency string, methodID uint) ([]quote.Quote, error)
	GetPayout(ctx context.Context, userID uint, publicID string) (*models.Payout, error)
	ListPayouts(ctx context.Context, userID uint, limit, offset int) ([]*models.Payout, error)
	ListMethods(ctx context.Context, userID uint) ([]*models.PayoutMethod, error)
}

type service struct {
	repos    *repositories.Manager
	cache    repositories.Cache
	ledger   ledger.Service
	risk     *risk.Service
	decision *decision.Service
	kyc      kyc.Verifier
	registry providers.Registry
	updater  StatusUpdater
	cfg      Config
}

// NewService creates the orchestrator.
func NewService(
	repos *repositories.Manager,
	cache repositories.Cache,
	ledgerSvc ledger.Service,
	riskSvc *risk.Service,
	decisionSvc *decision.Service,
	verifier kyc.Verifier,
	registry providers.Registry,
	updater StatusUpdater,
	cfg Config,
) Service {
	if repos == nil {
		panic("repository manager is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	if riskSvc == nil {
		panic("risk service is required")
	}
	if decisionSvc == nil {
		panic("decision service is required")
	}
	if verifier == nil {
		panic("kyc verifier is required")
	}
	if updater == nil {
		panic("status updater is required")
	}
	if cache == nil {
		cache = repositories.NoopCache{}
	}
	defaults := DefaultConfig()
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = defaults.DefaultCurrency
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaults.ProviderTimeout
	}
	if cfg.IdempotencyClaimTTL <= 0 {
		cfg.IdempotencyClaimTTL = defaults.IdempotencyClaimTTL
	}
	return &service{
		repos:    repos,
		cache:    cache,
		ledger:   ledgerSvc,
		risk:     riskSvc,
		decision: decisionSvc,
		kyc:      verifier,
		registry: registry,
		updater:  updater,
		cfg:      cfg,
	}
}

// CreateWithdrawal runs the full pipeline. Funds are reserved and the payout
// committed as queued before any provider traffic; a provider failure is
// compensated through the same transition path webhooks use, so the money
// always lands back in available.
func (s *service) CreateWithdrawal(ctx context.Context, req WithdrawalRequest) (*WithdrawalResult, error) {
	if req.Amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}
	if req.Currency == "" {
		req.Currency = s.cfg.DefaultCurrency
	}
	if req.Urgency == "" {
		req.Urgency = models.UrgencyStandard
	}

	method, err := s.verifiedMethod(req.UserID, req.MethodID)
	if err != nil {
		return nil, err
	}

	assessment, err := s.risk.Evaluate(ctx, risk.Request{
		UserID:        req.UserID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		MethodID:      req.MethodID,
		MethodAddedAt: method.CreatedAt,
		IP:            req.IP,
		UserAgent:     req.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	publicID := uuid.NewString()
	claimed, _, err := s.cache.ClaimKey(ctx, "payout:trace:"+assessment.TraceKey,
		publicID, s.cfg.IdempotencyClaimTTL)
	if err != nil {
		log.Printf("idempotency claim failed, relying on trace key index: %v", err)
		claimed = true
	}
	if !claimed {
		if existing, err := s.repos.Payouts.GetByTraceKey(assessment.TraceKey); err == nil {
			return &WithdrawalResult{Payout: existing, Duplicate: true}, nil
		}
		// The claim is held but no row exists; the earlier attempt died
		// before commit, so this one proceeds.
	}

	in, err := s.decisionInput(ctx, req, method)
	if err != nil {
		return nil, err
	}
	rail, err := s.decision.ChooseRail(in)
	if err != nil {
		return nil, err
	}
	quotes, err := s.decision.GetQuotes(in, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	chosen, alternatives := splitQuotes(quotes, rail)

	payout := &models.Payout{
		PublicID:       publicID,
		UserID:         req.UserID,
		MethodID:       method.ID,
		Rail:           rail,
		Amount:         req.Amount,
		Currency:       req.Currency,
		PlatformFee:    chosen.PlatformFee,
		ProviderFee:    chosen.ProviderFee,
		NetAmount:      chosen.NetAmount,
		FXRate:         chosen.FXRate,
		Status:         models.PayoutStatusQueued,
		TraceKey:       assessment.TraceKey,
		RequiresReview: assessment.RequiresReview,
		RiskScore:      assessment.Score,
		Urgency:        req.Urgency,
		QuoteSnapshot:  snapshotQuote(chosen),
	}

	err = s.repos.ExecuteInTransaction(func(tx *repositories.Manager) error {
		wallet, err := tx.Wallets.Reserve(ctx, req.UserID, req.Currency, req.Amount)
		if err != nil {
			return err
		}
		if err := tx.Payouts.Create(payout); err != nil {
			return err
		}
		before := wallet.Available + req.Amount
		after := wallet.Available
		return tx.Entries.CreateEntry(&models.ReconciliationEntry{
			PayoutID:      payout.ID,
			Rail:          rail,
			Action:        models.ReconActionReserve,
			FromStatus:    models.PayoutStatusRequested,
			ToStatus:      models.PayoutStatusQueued,
			Amount:        req.Amount,
			Currency:      req.Currency,
			BalanceBefore: &before,
			BalanceAfter:  &after,
			Actor:         models.ReconActorSystem,
		})
	})
	if err != nil {
		return nil, s.mapReserveError(ctx, req, err)
	}
	s.invalidate(ctx, req.UserID, req.Currency)

	result := &WithdrawalResult{
		Payout:         payout,
		Quote:          chosen,
		Alternatives:   alternatives,
		RequiresReview: assessment.RequiresReview,
	}

	// Flagged payouts wait for an operator; the reservation stands but no
	// provider traffic happens.
	if assessment.RequiresReview {
		log.Printf("payout %s held for review (score %d)", publicID, assessment.Score)
		return result, nil
	}

	if err := s.submitToProvider(ctx, payout, method); err != nil {
		return nil, err
	}
	if refreshed, err := s.repos.Payouts.GetByID(payout.ID); err == nil {
		result.Payout = refreshed
	}
	s.logSuccess(req, assessment.Score)
	return result, nil
}

// submitToProvider sends the payout to its rail and applies the resulting
// transition. Any provider failure settles the reservation back through the
// shared transition path.
func (s *service) submitToProvider(ctx context.Context, payout *models.Payout, method *models.PayoutMethod) error {
	client, err := s.registry.Get(payout.Rail)
	if err != nil {
		return s.compensate(ctx, payout, "no provider client for rail")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	resp, err := client.CreatePayout(callCtx, payout, method)
	if err != nil {
		log.Printf("provider call failed for payout %s on %s: %v", payout.PublicID, payout.Rail, err)
		return s.compensate(ctx, payout, err.Error())
	}

	err = s.updater.UpdateStatus(ctx, payout.ID, StatusTransition{
		ToStatus:       models.PayoutStatusProcessing,
		ProviderRef:    resp.ProviderRef,
		ProviderStatus: resp.ProviderStatus,
		Actor:          models.ReconActorSystem,
		Note:           "provider accepted payout",
	})
	if err != nil {
		// The provider accepted; the webhook will carry the payout forward
		// even though the local processing transition failed.
		log.Printf("processing transition failed for payout %s: %v", payout.PublicID, err)
	}
	return nil
}

func (s *service) compensate(ctx context.Context, payout *models.Payout, reason string) error {
	err := s.updater.UpdateStatus(ctx, payout.ID, StatusTransition{
		ToStatus:      models.PayoutStatusFailed,
		FailureReason: reason,
		Actor:         models.ReconActorSystem,
		Note:          "provider submission failed",
	})
	if err != nil {
		log.Printf("compensation failed for payout %s: %v", payout.PublicID, err)
	}
	return errors.ErrProvider.WithDetails(map[string]interface{}{
		"payout_id": payout.PublicID,
		"retryable": true,
	})
}

// CheckEligibility is the read-only readiness probe for the withdrawal form.
func (s *service) CheckEligibility(ctx context.Context, userID uint, currency string) (*Eligibility, error) {
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	out := &Eligibility{Currency: currency}
	out.HourlyLimit, out.DailyLimit = s.risk.Limits()

	if wallet, err := s.ledger.GetBalance(ctx, userID, currency); err == nil {
		out.AvailableBalance = wallet.Available
	} else if !errors.ErrWalletNotFound.Is(err) {
		return nil, err
	}

	verified, err := s.kyc.IsBasicVerified(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !verified {
		out.Reasons = append(out.Reasons, "identity verification required")
	}

	if holdUntil, err := s.kyc.WithdrawalHoldUntil(ctx, userID); err != nil {
		return nil, err
	} else if holdUntil != nil && time.Now().UTC().Before(*holdUntil) {
		out.Reasons = append(out.Reasons, "withdrawals are on hold for this account")
	}

	out.VerifiedMethods, err = s.repos.Methods.CountVerifiedByUser(userID)
	if err != nil {
		return nil, err
	}
	if out.VerifiedMethods == 0 {
		out.Reasons = append(out.Reasons, "no verified payout method")
	}

	out.AttemptsLastHour, out.AttemptsLastDay, err = s.risk.AttemptCounts(userID)
	if err != nil {
		return nil, err
	}
	if out.AttemptsLastHour >= int64(out.HourlyLimit) || out.AttemptsLastDay >= int64(out.DailyLimit) {
		out.Reasons = append(out.Reasons, "withdrawal attempt limit reached")
	}

	if out.AvailableBalance <= 0 {
		out.Reasons = append(out.Reasons, "no available balance")
	}

	out.CanWithdraw = len(out.Reasons) == 0
	return out, nil
}

// GetQuotes prices a prospective withdrawal across every eligible rail.
func (s *service) GetQuotes(ctx context.Context, userID uint, amount int64, currency string, methodID uint) ([]quote.Quote, error) {
	if amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	method, err := s.verifiedMethod(userID, methodID)
	if err != nil {
		return nil, err
	}
	in, err := s.decisionInput(ctx, WithdrawalRequest{
		UserID: userID, Amount: amount, Currency: currency,
	}, method)
	if err != nil {
		return nil, err
	}
	return s.decision.GetQuotes(in, time.Now().UTC())
}

func (s *service) GetPayout(ctx context.Context, userID uint, publicID string) (*models.Payout, error) {
	payout, err := s.repos.Payouts.GetByPublicID(publicID)
	if err != nil {
		if err == repositories.ErrPayoutNotFound {
			return nil, errors.ErrPayoutNotFound
		}
		return nil, err
	}
	// Ownership mismatch reads as not-found so ids cannot be probed.
	if payout.UserID != userID {
		return nil, errors.ErrPayoutNotFound
	}
	return payout, nil
}

func (s *service) ListPayouts(ctx context.Context, userID uint, limit, offset int) ([]*models.Payout, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repos.Payouts.ListByUser(ctx, userID, limit, offset)
}

func (s *service) ListMethods(ctx context.Context, userID uint) ([]*models.PayoutMethod, error) {
	return s.repos.Methods.ListByUser(userID)
}

func (s *service) verifiedMethod(userID, methodID uint) (*models.PayoutMethod, error) {
	method, err := s.repos.Methods.GetByID(methodID)
	if err != nil {
		if err == repositories.ErrMethodNotFound {
			return nil, errors.ErrInvalidPayoutMethod
		}
		return nil, err
	}
	if method.UserID != userID {
		return nil, errors.ErrInvalidPayoutMethod
	}
	if !method.IsVerified() {
		return nil, errors.ErrInvalidPayoutMethod.WithDetails(map[string]interface{}{
			"verification_status": method.VerificationStatus,
		})
	}
	return method, nil
}

func (s *service) decisionInput(ctx context.Context, req WithdrawalRequest, method *models.PayoutMethod) (decision.Input, error) {
	basic, err := s.kyc.IsBasicVerified(ctx, req.UserID)
	if err != nil {
		return decision.Input{}, err
	}
	enhanced, err := s.kyc.IsEnhancedVerified(ctx, req.UserID)
	if err != nil {
		return decision.Input{}, err
	}

	now := time.Now().UTC()
	daily, err := s.repos.Payouts.TotalsByRailSince(req.UserID, now.Add(-24*time.Hour))
	if err != nil {
		return decision.Input{}, fmt.Errorf("failed to load daily rail totals: %w", err)
	}
	monthly, err := s.repos.Payouts.TotalsByRailSince(req.UserID, now.AddDate(0, 0, -30))
	if err != nil {
		return decision.Input{}, fmt.Errorf("failed to load monthly rail totals: %w", err)
	}

	return decision.Input{
		UserID:            req.UserID,
		BasicKYC:          basic,
		EnhancedKYC:       enhanced,
		Country:           method.Country,
		Currency:          req.Currency,
		MethodType:        method.Type,
		Amount:            req.Amount,
		Urgency:           req.Urgency,
		PreferredRails:    req.PreferredRails,
		DailyRailTotals:   daily,
		MonthlyRailTotals: monthly,
	}, nil
}

func (s *service) mapReserveError(ctx context.Context, req WithdrawalRequest, err error) error {
	if err == repositories.ErrInsufficientBalance || err == repositories.ErrWalletNotFound {
		details := map[string]interface{}{"requested": req.Amount}
		if wallet, werr := s.repos.Wallets.GetByUserCurrency(ctx, req.UserID, req.Currency); werr == nil {
			details["available"] = wallet.Available
		} else {
			details["available"] = int64(0)
		}
		return errors.ErrInsufficientBalance.WithDetails(details)
	}
	return fmt.Errorf("withdrawal creation failed: %w", err)
}

func (s *service) logSuccess(req WithdrawalRequest, score int) {
	err := s.repos.SecurityLogs.Create(&models.WithdrawalSecurityLog{
		UserID:    req.UserID,
		Event:     models.SecurityEventSuccess,
		Amount:    req.Amount,
		Currency:  req.Currency,
		IP:        req.IP,
		UserAgent: req.UserAgent,
		RiskScore: score,
	})
	if err != nil {
		log.Printf("security log write failed for user %d: %v", req.UserID, err)
	}
}

func (s *service) invalidate(ctx context.Context, userID uint, currency string) {
	if err := s.cache.InvalidateWallet(ctx, userID, currency); err != nil {
		log.Printf("wallet cache invalidation failed for user %d: %v", userID, err)
	}
}

func splitQuotes(quotes []quote.Quote, rail string) (quote.Quote, []quote.Quote) {
	var chosen quote.Quote
	alternatives := make([]quote.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Rail == rail {
			chosen = q
			continue
		}
		alternatives = append(alternatives, q)
	}
	return chosen, alternatives
}

func snapshotQuote(q quote.Quote) models.JSON {
	data, err := json.Marshal(q)
	if err != nil {
		return nil
	}
	var snapshot models.JSON
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil
	}
	return snapshot
}
