package repositories

import (
	"errors"
	"fmt"

	"pactify/internal/models"

	"gorm.io/gorm"
)

var ErrKYCProfileNotFound = errors.New("kyc profile not found")

// KYCRepository reads the identity subsystem's verdict for a user.
type KYCRepository interface {
	GetByUserID(userID uint) (*models.KYCProfile, error)
}

type kycRepository struct {
	db *gorm.DB
}

// NewKYCRepository creates the gorm-backed KYC repository.
func NewKYCRepository(db *gorm.DB) KYCRepository {
	return &kycRepository{db: db}
}

func (r *kycRepository) GetByUserID(userID uint) (*models.KYCProfile, error) {
	var profile models.KYCProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrKYCProfileNotFound
		}
		return nil, fmt.Errorf("failed to get kyc profile: %w", err)
	}
	return &profile, nil
}
