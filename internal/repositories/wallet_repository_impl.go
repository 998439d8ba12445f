package repositories

import (
	"context"
	"fmt"

	"pactify/internal/models"

	"gorm.io/gorm"
)

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates the gorm-backed wallet repository.
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) GetByUserCurrency(ctx context.Context, userID uint, currency string) (*models.WalletBalance, error) {
	var wallet models.WalletBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND currency = ?", userID, currency).
		First(&wallet).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) Create(wallet *models.WalletBalance) error {
	if err := r.db.Create(wallet).Error; err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) Reserve(ctx context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WalletBalance{}).
		Where("user_id = ? AND currency = ? AND available >= ?", userID, currency, amount).
		Updates(map[string]interface{}{
			"available": gorm.Expr("available - ?", amount),
			"pending":   gorm.Expr("pending + ?", amount),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to reserve funds: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing wallet from a short balance.
		if _, err := r.GetByUserCurrency(ctx, userID, currency); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientBalance
	}
	return r.GetByUserCurrency(ctx, userID, currency)
}

func (r *walletRepository) SettleSuccess(ctx context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error) {
	return r.settle(ctx, userID, currency, amount, map[string]interface{}{
		"pending":   gorm.Expr("pending - ?", amount),
		"withdrawn": gorm.Expr("withdrawn + ?", amount),
	})
}

func (r *walletRepository) SettleFailure(ctx context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error) {
	return r.settle(ctx, userID, currency, amount, map[string]interface{}{
		"pending":   gorm.Expr("pending - ?", amount),
		"available": gorm.Expr("available + ?", amount),
	})
}

func (r *walletRepository) settle(ctx context.Context, userID uint, currency string, amount int64, updates map[string]interface{}) (*models.WalletBalance, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WalletBalance{}).
		Where("user_id = ? AND currency = ? AND pending >= ?", userID, currency, amount).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to settle funds: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByUserCurrency(ctx, userID, currency); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientPending
	}
	return r.GetByUserCurrency(ctx, userID, currency)
}

func (r *walletRepository) Credit(ctx context.Context, userID uint, currency string, amount int64) (*models.WalletBalance, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WalletBalance{}).
		Where("user_id = ? AND currency = ?", userID, currency).
		Updates(map[string]interface{}{
			"available":         gorm.Expr("available + ?", amount),
			"lifetime_credited": gorm.Expr("lifetime_credited + ?", amount),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		wallet := &models.WalletBalance{
			UserID:           userID,
			Currency:         currency,
			Available:        amount,
			LifetimeCredited: amount,
		}
		if err := r.Create(wallet); err != nil {
			return nil, err
		}
		return wallet, nil
	}
	return r.GetByUserCurrency(ctx, userID, currency)
}
