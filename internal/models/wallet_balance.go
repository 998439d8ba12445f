package models

import "time"

// WalletBalance is the bucketed balance per user and currency. All amounts
// are non-negative integers in minor units. The conservation invariant is
// Available + Pending + Withdrawn == LifetimeCredited at all times; the only
// writers are the ledger's reserve, settle and credit operations.
type WalletBalance struct {
	ID               uint      `gorm:"primarykey" json:"-"`
	UserID           uint      `gorm:"not null;uniqueIndex:idx_wallet_user_currency" json:"user_id"`
	Currency         string    `gorm:"not null;size:3;uniqueIndex:idx_wallet_user_currency" json:"currency"`
	Available        int64     `gorm:"not null;default:0" json:"available"`
	Pending          int64     `gorm:"not null;default:0" json:"pending"`
	Withdrawn        int64     `gorm:"not null;default:0" json:"withdrawn"`
	LifetimeCredited int64     `gorm:"not null;default:0" json:"lifetime_credited"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
