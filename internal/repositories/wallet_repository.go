package repositories

import (
	"context"
	"errors"

	"pactify/internal/models"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrInsufficientPending = errors.New("pending bucket smaller than settlement amount")
)

// WalletRepository exposes the three atomic balance movements. Each mutation
// is a single conditional UPDATE, never a read-then-write pair, so concurrent
// withdrawals for the same (user, currency) serialize on the row itself.
type WalletRepository interface {
	GetByUserCurrency(ctx context.Context, userID uint, currency string) (*models.WalletBalance, error)
	Create(wallet *models.WalletBalance) error

	// Reserve moves amount from available to pending. Fails with
	// ErrInsufficientBalance when available < amount; never partial.
	Reserve(ctx context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error)

	// SettleSuccess moves amount from pending to withdrawn.
	SettleSuccess(ctx context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error)

	// SettleFailure moves amount from pending back to available.
	SettleFailure(ctx context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error)

	// Credit adds amount to available and lifetime credited, creating the
	// wallet row on first credit.
	Credit(ctx context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error)
}
