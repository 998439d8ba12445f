package models

import "time"

// Payout method types. The type drives the decision engine's rail preference.
const (
	MethodTypeBank   = "bank"
	MethodTypeWallet = "wallet"
	MethodTypeMobile = "mobile"
	MethodTypeCard   = "card"
)

// Method verification statuses
const (
	MethodStatusPending  = "pending"
	MethodStatusVerified = "verified"
	MethodStatusRejected = "rejected"
)

// PayoutMethod is a user's saved destination: a bank account token, a wallet
// email, or a mobile number. Created by the verification flow; the engine
// reads it and never mutates anything except verification status.
type PayoutMethod struct {
	ID                 uint      `gorm:"primarykey" json:"id"`
	UserID             uint      `gorm:"not null;index" json:"user_id"`
	Type               string    `gorm:"not null" json:"type"`
	Rail               string    `gorm:"not null" json:"rail"`
	Country            string    `gorm:"not null;size:2" json:"country"`
	Currency           string    `gorm:"not null;size:3" json:"currency"`
	Destination        string    `gorm:"not null" json:"-"` // tokenized account / wallet email / msisdn
	Label              string    `json:"label"`
	VerificationStatus string    `gorm:"not null;default:'pending'" json:"verification_status"`
	IsDefault          bool      `gorm:"default:false" json:"is_default"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsVerified reports whether the method may receive payouts.
func (m *PayoutMethod) IsVerified() bool {
	return m.VerificationStatus == MethodStatusVerified
}
