// Package ledger is the facade over the bucketed wallet balance. Every
// mutation is one atomic conditional update in the repository; this service
// adds caching, auditing and the payout-oriented settle semantics.
package ledger

import (
	"context"
	"fmt"
	"log"

	"pactify/internal/errors"
	"pactify/internal/models"
	"pactify/internal/repositories"
)

// Service exposes the ledger's read and movement operations.
type Service interface {
	GetBalance(ctx context.Context, userID uint, currency string) (*models.WalletBalance, error)

	// Reserve moves amount from available to pending ahead of a payout.
	Reserve(ctx context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error)

	// Settle releases a payout's pending funds: to withdrawn on success,
	// back to available on failure.
	Settle(ctx context.Context, payout *models.Payout, success bool) (*models.WalletBalance, error)

	// Credit adds completed-contract proceeds to available. Called by the
	// contracts subsystem.
	Credit(ctx context.Context, userID uint, currency string, amount int64, description string) (*models.WalletBalance, error)
}

type service struct {
	repos *repositories.Manager
	cache repositories.Cache
}

// NewService creates the ledger service.
func NewService(repos *repositories.Manager, cache repositories.Cache) Service {
	if repos == nil {
		panic("repository manager is required")
	}
	if cache == nil {
		cache = repositories.NoopCache{}
	}
	return &service{repos: repos, cache: cache}
}

func (s *service) GetBalance(ctx context.Context, userID uint, currency string) (*models.WalletBalance, error) {
	if wallet, err := s.cache.GetWallet(ctx, userID, currency); err == nil {
		return wallet, nil
	}
	wallet, err := s.repos.Wallets.GetByUserCurrency(ctx, userID, currency)
	if err != nil {
		if err == repositories.ErrWalletNotFound {
			return nil, errors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	if err := s.cache.SetWallet(ctx, wallet); err != nil {
		log.Printf("wallet cache set failed for user %d: %v", userID, err)
	}
	return wallet, nil
}

func (s *service) Reserve(ctx context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error) {
	if amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}
	wallet, err := s.repos.Wallets.Reserve(ctx, userID, currency, amount)
	if err != nil {
		if err == repositories.ErrInsufficientBalance || err == repositories.ErrWalletNotFound {
			return nil, errors.ErrInsufficientBalance
		}
		return nil, fmt.Errorf("reserve failed: %w", err)
	}
	s.invalidate(ctx, userID, currency)
	return wallet, nil
}

func (s *service) Settle(ctx context.Context, payout *models.Payout, success bool) (*models.WalletBalance, error) {
	var wallet *models.WalletBalance
	var err error
	if success {
		wallet, err = s.repos.Wallets.SettleSuccess(ctx, payout.UserID, payout.Currency, payout.Amount)
	} else {
		wallet, err = s.repos.Wallets.SettleFailure(ctx, payout.UserID, payout.Currency, payout.Amount)
	}
	if err != nil {
		return nil, fmt.Errorf("settle failed for payout %s: %w", payout.PublicID, err)
	}
	s.invalidate(ctx, payout.UserID, payout.Currency)
	return wallet, nil
}

func (s *service) Credit(ctx context.Context, userID uint, currency string, amount int64, description string) (*models.WalletBalance, error) {
	if amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}

	var wallet *models.WalletBalance
	err := s.repos.ExecuteInTransaction(func(tx *repositories.Manager) error {
		var before int64
		if existing, err := tx.Wallets.GetByUserCurrency(ctx, userID, currency); err == nil {
			before = existing.Available
		}

		credited, err := tx.Wallets.Credit(ctx, userID, currency, amount)
		if err != nil {
			return err
		}
		wallet = credited

		after := credited.Available
		return tx.Entries.CreateEntry(&models.ReconciliationEntry{
			Action:        models.ReconActionCredit,
			Amount:        amount,
			Currency:      currency,
			BalanceBefore: &before,
			BalanceAfter:  &after,
			Note:          description,
			Actor:         models.ReconActorSystem,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("credit failed: %w", err)
	}
	s.invalidate(ctx, userID, currency)
	return wallet, nil
}

func (s *service) invalidate(ctx context.Context, userID uint, currency string) {
	if err := s.cache.InvalidateWallet(ctx, userID, currency); err != nil {
		log.Printf("wallet cache invalidation failed for user %d: %v", userID, err)
	}
}
