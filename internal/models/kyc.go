package models

import "time"

// KYC tiers
const (
	KYCTierBasic    = "basic"
	KYCTierEnhanced = "enhanced"
	KYCTierBusiness = "business"
)

// KYCProfile is the engine's read-only view of the identity subsystem's
// verdict. Document collection and human review happen elsewhere; only the
// boolean tier results and any withdrawal hold matter here.
type KYCProfile struct {
	ID                  uint       `gorm:"primarykey" json:"id"`
	UserID              uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	BasicVerified       bool       `gorm:"default:false" json:"basic_verified"`
	EnhancedVerified    bool       `gorm:"default:false" json:"enhanced_verified"`
	WithdrawalHoldUntil *time.Time `json:"withdrawal_hold_until,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
