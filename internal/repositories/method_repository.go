package repositories

import (
	"errors"
	"fmt"

	"pactify/internal/models"

	"gorm.io/gorm"
)

var ErrMethodNotFound = errors.New("payout method not found")

// MethodRepository reads a user's saved payout destinations. The engine
// never creates methods; the verification flow owns that.
type MethodRepository interface {
	GetByID(id uint) (*models.PayoutMethod, error)
	ListByUser(userID uint) ([]*models.PayoutMethod, error)
	CountVerifiedByUser(userID uint) (int64, error)
}

type methodRepository struct {
	db *gorm.DB
}

// NewMethodRepository creates the gorm-backed payout method repository.
func NewMethodRepository(db *gorm.DB) MethodRepository {
	return &methodRepository{db: db}
}

func (r *methodRepository) GetByID(id uint) (*models.PayoutMethod, error) {
	var method models.PayoutMethod
	if err := r.db.First(&method, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMethodNotFound
		}
		return nil, fmt.Errorf("failed to get payout method: %w", err)
	}
	return &method, nil
}

func (r *methodRepository) ListByUser(userID uint) ([]*models.PayoutMethod, error) {
	var methods []*models.PayoutMethod
	err := r.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&methods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payout methods: %w", err)
	}
	return methods, nil
}

func (r *methodRepository) CountVerifiedByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PayoutMethod{}).
		Where("user_id = ? AND verification_status = ?", userID, models.MethodStatusVerified).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count payout methods: %w", err)
	}
	return count, nil
}
