// Package kyc is the engine's view of the identity subsystem. Verification
// itself happens elsewhere; the engine only consumes the tier verdicts and
// any withdrawal hold.
package kyc

import (
	"context"
	"time"

	"pactify/internal/repositories"
)

// Verifier exposes the verification verdicts the engine depends on.
type Verifier interface {
	IsBasicVerified(ctx context.Context, userID uint) (bool, error)
	IsEnhancedVerified(ctx context.Context, userID uint) (bool, error)
	WithdrawalHoldUntil(ctx context.Context, userID uint) (*time.Time, error)
}

type verifier struct {
	repo repositories.KYCRepository
}

// NewVerifier creates the repository-backed verifier. A user without a
// profile row is simply unverified, not an error.
func NewVerifier(repo repositories.KYCRepository) Verifier {
	if repo == nil {
		panic("kyc repository is required")
	}
	return &verifier{repo: repo}
}

func (v *verifier) IsBasicVerified(ctx context.Context, userID uint) (bool, error) {
	profile, err := v.repo.GetByUserID(userID)
	if err != nil {
		if err == repositories.ErrKYCProfileNotFound {
			return false, nil
		}
		return false, err
	}
	return profile.BasicVerified, nil
}

func (v *verifier) IsEnhancedVerified(ctx context.Context, userID uint) (bool, error) {
	profile, err := v.repo.GetByUserID(userID)
	if err != nil {
		if err == repositories.ErrKYCProfileNotFound {
			return false, nil
		}
		return false, err
	}
	return profile.EnhancedVerified, nil
}

func (v *verifier) WithdrawalHoldUntil(ctx context.Context, userID uint) (*time.Time, error) {
	profile, err := v.repo.GetByUserID(userID)
	if err != nil {
		if err == repositories.ErrKYCProfileNotFound {
			return nil, nil
		}
		return nil, err
	}
	return profile.WithdrawalHoldUntil, nil
}
