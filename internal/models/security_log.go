package models

import "time"

// Security log event types
const (
	SecurityEventAttempt = "withdrawal_attempt"
	SecurityEventSuccess = "withdrawal_success"
	SecurityEventFailure = "withdrawal_failure"
	SecurityEventReview  = "withdrawal_review_flagged"
)

// Risk flags attached to scored withdrawal attempts
const (
	RiskFlagHighAmount     = "high_amount"
	RiskFlagNewMethod      = "new_payout_method"
	RiskFlagRepeatedAmount = "repeated_amount_pattern"
	RiskFlagSuspiciousIP   = "suspicious_ip"
)

// WithdrawalSecurityLog records one risk-relevant event per row. Write-once;
// the risk guard reads it back for rate-limit windowing and pattern checks.
type WithdrawalSecurityLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_seclog_user_time" json:"user_id"`
	Event     string    `gorm:"not null" json:"event"`
	Amount    int64     `json:"amount"`
	Currency  string    `gorm:"size:3" json:"currency"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	RiskScore int       `json:"risk_score"`
	Flags     JSON      `gorm:"type:jsonb" json:"flags,omitempty"`
	Metadata  JSON      `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_seclog_user_time" json:"created_at"`
}
